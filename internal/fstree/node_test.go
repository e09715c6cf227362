package fstree_test

import (
	"testing"

	"shotmaster/internal/fstree"
	"shotmaster/internal/storage"
	"shotmaster/internal/testsupport"
)

func newTree(t *testing.T) (*storage.Store, *fstree.Folder) {
	t.Helper()
	store := testsupport.NewStore(t)
	if err := store.EnsureDir("Project"); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	return store, fstree.NewFolder(store, "Project")
}

func TestPathFollowsAncestorChain(t *testing.T) {
	_, root := newTree(t)

	scenes, err := root.Subdir("SCENES")
	if err != nil {
		t.Fatalf("Subdir: %v", err)
	}
	scene, err := scenes.Subdir("SC_010")
	if err != nil {
		t.Fatalf("Subdir: %v", err)
	}

	if got := root.Path(); got != "/Project" {
		t.Fatalf("root path %q", got)
	}
	if got := scene.Path(); got != "/Project/SCENES/SC_010" {
		t.Fatalf("scene path %q", got)
	}
}

func TestGetByPathReturnsMatchingNode(t *testing.T) {
	store, root := newTree(t)
	scenes, _ := root.Subdir("SCENES")
	scene, _ := scenes.Subdir("SC_010")

	file := fstree.NewFile(store, scene.Dir(), "sceneinfo.json")
	fstree.Attach(scene, file)

	found := fstree.GetByPath(root, "/Project/SCENES/SC_010/sceneinfo.json")
	if found == nil {
		t.Fatal("expected node for path")
	}
	if found.Path() != "/Project/SCENES/SC_010/sceneinfo.json" {
		t.Fatalf("found node path %q", found.Path())
	}
	if found != fstree.Node(file) {
		t.Fatal("expected the attached file node")
	}
}

func TestGetByAbsPathResolvesFromLeaf(t *testing.T) {
	store, root := newTree(t)
	scenes, _ := root.Subdir("SCENES")
	scene, _ := scenes.Subdir("SC_010")
	refs, _ := root.Subdir("REFS")

	file := fstree.NewFile(store, refs.Dir(), "hero.png")
	fstree.Attach(refs, file)

	found := fstree.GetByAbsPath(scene, "/Project/REFS/hero.png")
	if found == nil || found.Name() != "hero.png" {
		t.Fatalf("abs lookup from leaf failed: %v", found)
	}
}

func TestDetachedNodeIsItsOwnRoot(t *testing.T) {
	store, _ := newTree(t)
	lone := fstree.NewFile(store, "Project", "script.txt")
	if got := fstree.Root(lone); got != fstree.Node(lone) {
		t.Fatal("detached node should be its own root")
	}
	if got := lone.Path(); got != "/script.txt" {
		t.Fatalf("detached path %q", got)
	}
}

func TestDetachRemovesChild(t *testing.T) {
	store, root := newTree(t)
	file := fstree.NewFile(store, root.Dir(), "script.txt")
	fstree.Attach(root, file)

	fstree.Detach(file)
	if len(root.ChildNodes()) != 0 {
		t.Fatalf("expected no children, got %d", len(root.ChildNodes()))
	}
	if file.Parent() != nil {
		t.Fatal("detached file still has a parent")
	}
}

func TestFileContentMemoized(t *testing.T) {
	store, root := newTree(t)
	if err := store.WriteText(root.Dir(), "script.txt", "v1"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	file := fstree.NewFile(store, root.Dir(), "script.txt")
	fstree.Attach(root, file)

	data, err := file.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(data) != "v1" {
		t.Fatalf("content %q", data)
	}

	if err := store.WriteText(root.Dir(), "script.txt", "v2"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	data, _ = file.Bytes()
	if string(data) != "v1" {
		t.Fatal("cached content should survive external writes")
	}
	data, err = file.Refresh()
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if string(data) != "v2" {
		t.Fatalf("refreshed content %q", data)
	}
}
