package fstree

import (
	"path"

	"shotmaster/internal/storage"
)

// Node is any member of the entity tree.
type Node interface {
	Name() string
	Path() string
	Parent() *Folder
	ChildNodes() []Node

	setParent(*Folder)
}

// Entity carries the name and parent link shared by folders and files.
type Entity struct {
	name   string
	parent *Folder
}

func (e *Entity) Name() string { return e.name }

func (e *Entity) Parent() *Folder { return e.parent }

// Path is the concatenation of ancestor names. A node with no parent is
// its own root, so a detached node's path is "/<name>".
func (e *Entity) Path() string {
	if e.parent == nil {
		return "/" + e.name
	}
	return e.parent.Path() + "/" + e.name
}

func (e *Entity) setParent(p *Folder) { e.parent = p }

// Folder wraps one directory of the backing store.
type Folder struct {
	Entity
	store    *storage.Store
	dir      string
	children []Node
}

// NewFolder builds a detached folder node for dir. Register it with Attach.
func NewFolder(store *storage.Store, dir string) *Folder {
	return &Folder{
		Entity: Entity{name: path.Base(dir)},
		store:  store,
		dir:    dir,
	}
}

func (f *Folder) Store() *storage.Store { return f.store }

// Dir is the folder's path within the backing store, as opposed to Path,
// which is its position in the entity tree.
func (f *Folder) Dir() string { return f.dir }

func (f *Folder) ChildNodes() []Node { return f.children }

// Subdir returns a child folder for name, creating the directory on disk
// when missing and attaching the node in one step.
func (f *Folder) Subdir(name string) (*Folder, error) {
	dir := path.Join(f.dir, name)
	if err := f.store.EnsureDir(dir); err != nil {
		return nil, err
	}
	child := NewFolder(f.store, dir)
	Attach(f, child)
	return child, nil
}

// File wraps one file of the backing store and caches its last-read
// content. Content goes stale only on an explicit Refresh.
type File struct {
	Entity
	store *storage.Store
	dir   string

	content []byte
	modTime int64
	loaded  bool
}

// NewFile builds a detached file node for dir/name. Register it with Attach.
func NewFile(store *storage.Store, dir, name string) *File {
	return &File{
		Entity: Entity{name: name},
		store:  store,
		dir:    dir,
	}
}

func (f *File) Store() *storage.Store { return f.store }

func (f *File) Dir() string { return f.dir }

func (f *File) ChildNodes() []Node { return nil }

// Bytes returns the file content, reading it on first use and memoizing.
func (f *File) Bytes() ([]byte, error) {
	if f.loaded {
		return f.content, nil
	}
	return f.Refresh()
}

// Refresh re-reads the file from disk and updates the cached content and
// modification time.
func (f *File) Refresh() ([]byte, error) {
	data, err := f.store.ReadBytes(f.dir, f.name)
	if err != nil {
		return nil, err
	}
	_, mod, err := f.store.Stat(f.dir, f.name)
	if err != nil {
		return nil, err
	}
	f.content = data
	f.modTime = mod
	f.loaded = true
	return f.content, nil
}

// ModTime returns the modification time (unix nanoseconds) captured at the
// last read, or zero when the file has never been read.
func (f *File) ModTime() int64 { return f.modTime }

// Invalidate drops the cached content so the next Bytes call re-reads.
func (f *File) Invalidate() {
	f.content = nil
	f.loaded = false
}

// Attach registers child under parent. Construction and registration are
// deliberately separate steps so the parent never sees a half-built node.
func Attach(parent *Folder, child Node) {
	if parent == nil || child == nil {
		return
	}
	child.setParent(parent)
	parent.children = append(parent.children, child)
}

// Detach removes child from its parent's list and clears the link.
func Detach(child Node) {
	parent := child.Parent()
	if parent == nil {
		return
	}
	kept := parent.children[:0]
	for _, c := range parent.children {
		if c != child {
			kept = append(kept, c)
		}
	}
	parent.children = kept
	child.setParent(nil)
}

// Root walks the parent chain to the tree root. A node with no parent is
// its own root.
func Root(n Node) Node {
	current := n
	for current.Parent() != nil {
		current = current.Parent()
	}
	return current
}

// GetByPath searches depth-first from n for a node whose computed path
// equals target.
func GetByPath(n Node, target string) Node {
	if n.Path() == target {
		return n
	}
	for _, child := range n.ChildNodes() {
		if found := GetByPath(child, target); found != nil {
			return found
		}
	}
	return nil
}

// GetByAbsPath walks to the root first and searches down, resolving paths
// that may point anywhere in the active tree.
func GetByAbsPath(n Node, target string) Node {
	return GetByPath(Root(n), target)
}
