// Command shotmaster is the CLI for browsing and editing a shotmaster
// project folder: scenes, shots, media, generation tasks, and the
// project script.
package main
