// Package testsupport provides shared helpers for package tests:
// in-memory project trees, test configs, and settings stores backed by
// temp directories.
package testsupport
