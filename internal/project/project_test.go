package project_test

import (
	"context"
	"testing"

	"shotmaster/internal/project"
	"shotmaster/internal/providers"
	"shotmaster/internal/storage"
	"shotmaster/internal/testsupport"
)

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	return testsupport.NewStore(t)
}

func seed(t *testing.T, store *storage.Store, dir, name, content string) {
	t.Helper()
	testsupport.SeedTree(t, store, []testsupport.TreeFile{{Dir: dir, Name: name, Content: content}})
}

func openProject(t *testing.T, store *storage.Store) *project.Project {
	t.Helper()
	p, err := project.Open(context.Background(), store, "Film", project.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestOpenMinimalProjectWiresEverySubtree(t *testing.T) {
	store := newStore(t)
	root := testsupport.MinimalProject(t, store)

	p, err := project.Open(context.Background(), store, root, project.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(p.Close)

	scenes := p.Scenes()
	if len(scenes) != 1 || scenes[0].Name() != "SC_010" {
		t.Fatalf("scenes = %v", scenes)
	}
	if shots := scenes[0].Shots(); len(shots) != 1 || len(shots[0].Results().Items()) != 1 {
		t.Fatal("expected one shot with one result frame")
	}
	if arts := p.Artbook().Arts("CHARACTERS", "Hero"); len(arts) != 1 {
		t.Fatalf("artbook arts = %v", arts)
	}
	if keys := p.Script().SortedKeys(); len(keys) != 2 || keys[1] != "SC_010" {
		t.Fatalf("script keys = %v", keys)
	}
}

func TestOpenLoadsHierarchy(t *testing.T) {
	store := newStore(t)
	seed(t, store, "Film", "projinfo.json", `{"title": "Test Film"}`)
	seed(t, store, "Film/SCENES/SC_020", "sceneinfo.json", `{"tags": [], "shotsjson": "", "script": "SC_020\nnight exterior"}`)
	seed(t, store, "Film/SCENES/SC_010/SH_010/results", "frame.png", "png-bytes")
	seed(t, store, "Film/SCENES/SC_010/SH_010", "shotinfo.json", `{"shot_state": "image"}`)
	seed(t, store, "Film/REFS/CHARACTERS/Hero", "hero.png", "png-bytes")
	seed(t, store, "Film", "script.txt", "intro\nSC_010\nday interior\n")

	p := openProject(t, store)

	scenes := p.Scenes()
	if len(scenes) != 2 {
		t.Fatalf("scenes = %d, want 2", len(scenes))
	}
	if scenes[0].Name() != "SC_010" || scenes[1].Name() != "SC_020" {
		t.Fatalf("scene order = %s, %s", scenes[0].Name(), scenes[1].Name())
	}
	if p.Sidecar().GetString("title") != "Test Film" {
		t.Fatalf("projinfo title = %q", p.Sidecar().GetString("title"))
	}

	shots := scenes[0].Shots()
	if len(shots) != 1 || shots[0].Name() != "SH_010" {
		t.Fatalf("shots = %v", shots)
	}
	shot := shots[0]
	if shot.State() != "image" {
		t.Fatalf("shot state = %q", shot.State())
	}
	if len(shot.Results().Items()) != 1 {
		t.Fatalf("results items = %d", len(shot.Results().Items()))
	}
	if shot.GenVideo() == nil || shot.RefVideo() == nil || shot.Audio() == nil {
		t.Fatal("all four media folders must exist after load")
	}

	if p.Artbook().Lookup("CHARACTERS/Hero/hero.png") == nil {
		t.Fatal("artbook image not indexed")
	}
	if p.Script().SceneText("SC_010") == "" {
		t.Fatal("script scene not split")
	}
}

func TestOpenIsolatesBrokenSubtrees(t *testing.T) {
	// A file where SCENES should be a directory breaks the scene load
	// but must not fail Open or the other subtrees.
	store := newStore(t)
	seed(t, store, "Film", "SCENES", "not a directory")
	seed(t, store, "Film", "script.txt", "SC_010\nline\n")

	p := openProject(t, store)
	if len(p.Scenes()) != 0 {
		t.Fatalf("scenes = %d, want none", len(p.Scenes()))
	}
	if p.Artbook() == nil || p.Script() == nil {
		t.Fatal("artbook and script must still be present")
	}
	if p.Script().SceneText("SC_010") == "" {
		t.Fatal("script subtree should have loaded")
	}
}

func TestCreateSceneIdempotentAndSorted(t *testing.T) {
	store := newStore(t)
	p := openProject(t, store)

	for _, name := range []string{"SC_030", "SC_010", "SC_020"} {
		if _, err := p.CreateScene(name); err != nil {
			t.Fatalf("CreateScene(%s): %v", name, err)
		}
	}
	first, err := p.CreateScene("SC_010")
	if err != nil {
		t.Fatalf("CreateScene repeat: %v", err)
	}
	if first != p.Scenes()[0] {
		t.Fatal("repeated create must return the existing scene")
	}

	var names []string
	for _, s := range p.Scenes() {
		names = append(names, s.Name())
	}
	want := []string{"SC_010", "SC_020", "SC_030"}
	if len(names) != len(want) {
		t.Fatalf("scenes = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("scenes = %v, want %v", names, want)
		}
	}
}

func TestSceneDeleteRemovesDirectoryAndUnlinks(t *testing.T) {
	store := newStore(t)
	p := openProject(t, store)

	scene, err := p.CreateScene("SC_010")
	if err != nil {
		t.Fatalf("CreateScene: %v", err)
	}
	if _, err := scene.CreateShot("SH_010"); err != nil {
		t.Fatalf("CreateShot: %v", err)
	}
	if err := scene.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(p.Scenes()) != 0 {
		t.Fatal("scene still listed after delete")
	}
	if _, err := store.List("Film/SCENES/SC_010"); !storage.IsNotFound(err) {
		t.Fatalf("scene directory should be gone, got %v", err)
	}
}

func TestCreateShotSortedAndIdempotent(t *testing.T) {
	store := newStore(t)
	p := openProject(t, store)
	scene, _ := p.CreateScene("SC_010")

	for _, name := range []string{"SH_020", "SH_010"} {
		if _, err := scene.CreateShot(name); err != nil {
			t.Fatalf("CreateShot(%s): %v", name, err)
		}
	}
	again, err := scene.CreateShot("SH_020")
	if err != nil {
		t.Fatalf("CreateShot repeat: %v", err)
	}
	if again != scene.Shots()[1] {
		t.Fatal("repeated create must return the existing shot")
	}
	if scene.Shots()[0].Name() != "SH_010" {
		t.Fatalf("shot order = %s first", scene.Shots()[0].Name())
	}
}

func TestSceneTagsValidateAgainstArtbook(t *testing.T) {
	store := newStore(t)
	seed(t, store, "Film/REFS/CHARACTERS/Hero", "hero.png", "png-bytes")
	p := openProject(t, store)
	scene, _ := p.CreateScene("SC_010")

	if err := scene.AddTag("CHARACTERS/Hero/hero.png"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if err := scene.AddTag("CHARACTERS/Hero/hero.png"); err != nil {
		t.Fatalf("AddTag repeat: %v", err)
	}
	if err := scene.AddTag("CHARACTERS/Nobody/missing.png"); err == nil {
		t.Fatal("unknown tag path must be rejected")
	}
	if got := scene.Tags(); len(got) != 1 {
		t.Fatalf("tags = %v", got)
	}
	if arts := scene.Arts(); len(arts) != 1 || arts[0].TagPath() != "CHARACTERS/Hero/hero.png" {
		t.Fatalf("arts = %v", arts)
	}

	scene.RemoveTag("CHARACTERS/Hero/hero.png")
	if len(scene.Tags()) != 0 {
		t.Fatal("tag should be removed")
	}
}

func TestCreateShotsFromJSON(t *testing.T) {
	store := newStore(t)
	p := openProject(t, store)
	scene, _ := p.CreateScene("SC_010")

	scene.Sidecar().Set("shotsjson", `{
		"SH_020": {"description": "close-up", "shot_state": "image"},
		"SH_010": {"description": "wide establishing"},
		"broken": "not an object"
	}`)
	if err := scene.CreateShotsFromJSON(); err != nil {
		t.Fatalf("CreateShotsFromJSON: %v", err)
	}

	shots := scene.Shots()
	if len(shots) != 2 {
		t.Fatalf("shots = %d, want 2 (non-object entries skipped)", len(shots))
	}
	if shots[0].Name() != "SH_010" || shots[1].Name() != "SH_020" {
		t.Fatalf("shot order = %s, %s", shots[0].Name(), shots[1].Name())
	}
	if shots[0].Sidecar().GetString("description") != "wide establishing" {
		t.Fatalf("description = %q", shots[0].Sidecar().GetString("description"))
	}
	if shots[1].State() != "image" {
		t.Fatalf("state = %q", shots[1].State())
	}
}

func TestShotsWithStatusCounters(t *testing.T) {
	store := newStore(t)
	p := openProject(t, store)
	scene, _ := p.CreateScene("SC_010")

	states := []string{"todo", "image", "video", "done"}
	for i, state := range states {
		shot, err := scene.CreateShot("SH_0" + string(rune('1'+i)) + "0")
		if err != nil {
			t.Fatalf("CreateShot: %v", err)
		}
		if err := shot.SetState(state); err != nil {
			t.Fatalf("SetState(%s): %v", state, err)
		}
	}

	tests := []struct {
		status string
		exact  bool
		want   int
	}{
		{"todo", false, 4},
		{"image", false, 3},
		{"image", true, 1},
		{"done", false, 1},
		{"nonsense", false, 0},
	}
	for _, tt := range tests {
		if got := scene.ShotsWithStatus(tt.status, tt.exact); got != tt.want {
			t.Errorf("ShotsWithStatus(%q, %v) = %d, want %d", tt.status, tt.exact, got, tt.want)
		}
	}
	if scene.FinishedShots() != 1 {
		t.Fatalf("FinishedShots = %d", scene.FinishedShots())
	}
}

func TestShotTaskLifecycle(t *testing.T) {
	store := newStore(t)
	p := openProject(t, store)
	scene, _ := p.CreateScene("SC_010")
	shot, _ := scene.CreateShot("SH_010")

	task := shot.AddTask("abc-123", map[string]any{"workflow": "image2video"})
	if task.Status() != providers.StateSubmitted {
		t.Fatalf("status = %q", task.Status())
	}
	if again := shot.AddTask("abc-123", nil); again != task {
		t.Fatal("same id must return the existing task")
	}
	shot.AddTask("def-456", map[string]any{"status": "failed"})

	// Reload the shot from disk: tasks come back from the sidecar map.
	if err := shot.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(shot.Tasks()) != 2 {
		t.Fatalf("tasks after reload = %d", len(shot.Tasks()))
	}

	if removed := shot.RemoveTasksByStatus(providers.StateFailed); removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	if len(shot.Tasks()) != 1 || shot.Tasks()[0].ID() != "abc-123" {
		t.Fatalf("tasks = %v", shot.Tasks())
	}
	if shot.Sidecar().Get("tasks/def-456") != nil {
		t.Fatal("removed task must leave the sidecar map")
	}
}

func TestPathUniquenessAcrossTree(t *testing.T) {
	store := newStore(t)
	seed(t, store, "Film/SCENES/SC_010/SH_010/results", "frame.png", "png-bytes")
	p := openProject(t, store)

	item := p.Scenes()[0].Shots()[0].Results().Items()[0]
	path := item.Path()
	found := p.Find(path)
	if found == nil {
		t.Fatalf("Find(%q) = nil", path)
	}
	if found.Path() != path {
		t.Fatalf("found path = %q, want %q", found.Path(), path)
	}
}
