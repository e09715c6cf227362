package testsupport

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"

	"shotmaster/internal/storage"
)

// NewStore returns a storage.Store over a fresh in-memory filesystem.
func NewStore(t testing.TB) *storage.Store {
	t.Helper()
	return storage.New(memfs.New(), nil, nil)
}

// TreeFile seeds one file of a project tree.
type TreeFile struct {
	Dir     string
	Name    string
	Content string
}

// SeedTree writes a set of files into the store, creating directories
// as needed.
func SeedTree(t testing.TB, store *storage.Store, files []TreeFile) {
	t.Helper()
	for _, f := range files {
		if err := store.WriteText(f.Dir, f.Name, f.Content); err != nil {
			t.Fatalf("seed %s/%s: %v", f.Dir, f.Name, err)
		}
	}
}

// MinimalProject seeds the smallest useful project: one scene, one
// shot with a result frame, one artbook image, and a script. It
// returns the project root directory.
func MinimalProject(t testing.TB, store *storage.Store) string {
	t.Helper()
	SeedTree(t, store, []TreeFile{
		{"Film", "projinfo.json", `{"title": "Test Film"}`},
		{"Film", "script.txt", "SC_010\nINT. KITCHEN - DAY\n"},
		{"Film/SCENES/SC_010", "sceneinfo.json", `{"tags": [], "shotsjson": "", "script": "SC_010\nINT. KITCHEN - DAY\n"}`},
		{"Film/SCENES/SC_010/SH_010", "shotinfo.json", `{}`},
		{"Film/SCENES/SC_010/SH_010/results", "frame.png", "png-bytes"},
		{"Film/REFS/CHARACTERS/Hero", "hero.png", "png-bytes"},
	})
	return "Film"
}
