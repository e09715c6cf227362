// Package sidecar implements the JSON document files stored beside folders
// and media items.
//
// A Document is the only persistence mechanism in the tree: every save
// rewrites the whole file, and a document with no keys has no file at all,
// so absence-of-file always means absence-of-data. Open never fails; any
// read or parse problem degrades to an in-memory document seeded with the
// caller's defaults. Field access is path based, with "/" separating the
// segments of nested objects.
package sidecar
