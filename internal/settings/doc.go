// Package settings persists user-level state that outlives any single
// project: the last opened folder, the recent-folder list, and provider
// API keys.
//
// The backing store is a single-row SQLite database keyed by a fixed
// settings id, holding one JSON payload. It deliberately knows nothing
// about project contents; project data lives in sidecars next to the
// files it describes. The store also serves as the injected credential
// source for generation providers.
package settings
