// Package media models the typed media items (image, video, audio) stored
// inside a shot and the folders that collect them.
//
// An Item layers tag and provenance metadata from a JSON sidecar on top of
// an entity-tree file node; the set of kinds is closed and classified by
// file extension. A Folder owns its items, enforces the single-holder rule
// for exclusive tags, and funnels import, paste, and download through one
// write-then-register path. Tag state always derives from the sidecar so
// external edits cannot leave a stale cache behind.
package media
