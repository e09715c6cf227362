// Package storage wraps a billy.Filesystem with the small set of file
// primitives the document and media layers are built on.
//
// A Store scopes all reads and writes to one project root and funnels every
// mutation through a permission Guard, mirroring how the browser directory
// handle API gates writes behind an explicit grant. Operations are
// individually atomic at best; callers that need consistency across several
// calls rely on idempotent delete-then-recreate sequencing instead of
// transactions.
package storage
