// Package fstree mirrors the on-disk folder and file hierarchy in memory.
//
// Nodes are built detached and registered with an explicit Attach step, so
// a parent never observes a partially constructed child. Paths are computed
// from the ancestor chain and stay unique within a tree; lookup walks the
// tree rather than consulting any index. Parent links are set once at
// attach time and there is no re-parenting, which is what rules out cycles.
package fstree
