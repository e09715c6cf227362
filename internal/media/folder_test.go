package media_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"

	"shotmaster/internal/fstree"
	"shotmaster/internal/media"
	"shotmaster/internal/notify"
	"shotmaster/internal/storage"
)

// pngBytes is a minimal stand-in payload; content is never decoded.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}

type toggleGuard struct{ deny bool }

func (g *toggleGuard) EnsureWritable(string) error {
	if g.deny {
		return storage.ErrPermission
	}
	return nil
}

func newShotFolder(t *testing.T, guard storage.Guard, center *notify.Center) *media.Folder {
	t.Helper()
	store := storage.New(memfs.New(), guard, nil)
	if err := store.EnsureDir("Project/SCENES/SC_010/SH_010"); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	shot := fstree.NewFolder(store, "Project/SCENES/SC_010/SH_010")
	folder, err := media.NewFolder(shot, media.Config{
		Name:          "results",
		ExclusiveTags: []string{"picked", "start_frame", "end_frame", "motion_ref"},
		MultiTags:     []string{"ref_frame"},
		Notifier:      center,
	})
	if err != nil {
		t.Fatalf("NewFolder: %v", err)
	}
	return folder
}

func importOne(t *testing.T, folder *media.Folder, name string) *media.Item {
	t.Helper()
	items := folder.SaveFiles([]media.ImportFile{{Name: name, Data: pngBytes}})
	if len(items) != 1 {
		t.Fatalf("import %s: got %d items", name, len(items))
	}
	return items[0]
}

func TestAddItemRegistersExistingFile(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	if err := folder.Store().WriteBytes(folder.Dir(), "b.png", pngBytes); err != nil {
		t.Fatalf("seed: %v", err)
	}

	item, err := folder.AddItem("b.png")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.Kind() != media.KindImage || folder.ByName("b.png") != item {
		t.Fatal("item not registered")
	}
	if _, err := folder.AddItem("notes.txt"); err == nil {
		t.Fatal("expected error for unrecognized file")
	}
}

func TestLoadClassifiesAndSkipsSidecars(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	store := folder.Store()
	for _, name := range []string{"a.png", "b.mp4", "c.mp3", "notes.txt", "a.png.json"} {
		if err := store.WriteBytes(folder.Dir(), name, pngBytes); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	if err := folder.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	items := folder.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 media items, got %d", len(items))
	}
	kinds := map[string]media.Kind{}
	for _, item := range items {
		kinds[item.Name()] = item.Kind()
	}
	if kinds["a.png"] != media.KindImage || kinds["b.mp4"] != media.KindVideo || kinds["c.mp3"] != media.KindAudio {
		t.Fatalf("unexpected classification: %v", kinds)
	}
}

func TestExclusiveTagSingleHolder(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")
	b := importOne(t, folder, "b.png")
	c := importOne(t, folder, "c.png")

	a.AddTag("start_frame")
	b.AddTag("start_frame")
	c.AddTag("start_frame")

	holders := folder.WithTag("start_frame")
	if len(holders) != 1 {
		t.Fatalf("expected one holder, got %d", len(holders))
	}
	if holders[0] != c {
		t.Fatalf("most recently tagged item should hold the tag, got %s", holders[0].Name())
	}
}

func TestMultiTagHasNoExclusivity(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")
	b := importOne(t, folder, "b.png")

	a.AddTag("ref_frame")
	b.AddTag("ref_frame")
	if got := len(folder.WithTag("ref_frame")); got != 2 {
		t.Fatalf("expected both items tagged, got %d", got)
	}
}

func TestAggregateProjectionTracksHolders(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")
	a.AddTag("picked")

	store := folder.Store()
	if !store.Exists("Project/SCENES/SC_010/SH_010", "results.json") {
		t.Fatal("expected folder aggregate sidecar")
	}

	a.RemoveTag("picked")
	if store.Exists("Project/SCENES/SC_010/SH_010", "results.json") {
		t.Fatal("aggregate sidecar should disappear when nothing is tagged")
	}
}

func TestTagsSurviveReload(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")
	a.AddTag("end_frame")

	reloaded := newFolderSameDisk(t, folder)
	item := reloaded.ByName("a.png")
	if item == nil || !item.HasTag("end_frame") {
		t.Fatal("tag lost across reload")
	}
}

// newFolderSameDisk rebuilds a media folder over the same filesystem, the
// way a project reload does.
func newFolderSameDisk(t *testing.T, prev *media.Folder) *media.Folder {
	t.Helper()
	shot := fstree.NewFolder(prev.Store(), "Project/SCENES/SC_010/SH_010")
	folder, err := media.NewFolder(shot, media.Config{
		Name:          "results",
		ExclusiveTags: prev.ExclusiveTags(),
		MultiTags:     prev.MultiTags(),
	})
	if err != nil {
		t.Fatalf("NewFolder: %v", err)
	}
	if err := folder.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return folder
}

func TestReverseProvenanceLookup(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")
	b := importOne(t, folder, "b.png")

	b.SetGenInfo(map[string]any{"workflow": "image2video", "source": a.Path()})

	generated := a.GeneratedMedia()
	if len(generated) != 1 || generated[0] != b {
		t.Fatalf("GeneratedMedia = %v", generated)
	}
	if src := b.SourceMedia(); src != a {
		t.Fatalf("SourceMedia = %v", src)
	}
}

func TestDownloadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	folder := newShotFolder(t, nil, nil)
	item, err := folder.DownloadFromURL(context.Background(), server.URL+"/gen/result.png?sig=abc")
	if err != nil {
		t.Fatalf("DownloadFromURL: %v", err)
	}
	if item.Name() != "result.png" {
		t.Fatalf("derived name %q", item.Name())
	}
	if item.Kind() != media.KindImage {
		t.Fatalf("kind %q", item.Kind())
	}
}

func TestDownloadDerivesExtensionFromMIME(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	folder := newShotFolder(t, nil, nil)
	item, err := folder.DownloadFromURL(context.Background(), server.URL+"/artifact")
	if err != nil {
		t.Fatalf("DownloadFromURL: %v", err)
	}
	if item.Name() != "artifact.mp4" {
		t.Fatalf("derived name %q", item.Name())
	}
}

type fakeClipboard struct {
	entries []media.ClipboardEntry
	err     error
}

func (c fakeClipboard) Read(context.Context) ([]media.ClipboardEntry, error) {
	return c.entries, c.err
}

func TestClipboardImportFiltersMIMETypes(t *testing.T) {
	center := notify.NewCenter()
	folder := newShotFolder(t, nil, center)

	items, err := folder.ImportClipboard(context.Background(), fakeClipboard{entries: []media.ClipboardEntry{
		{MIME: "image/png", Data: pngBytes},
		{MIME: "text/plain", Data: []byte("nope")},
	}})
	if err != nil {
		t.Fatalf("ImportClipboard: %v", err)
	}
	if len(items) != 1 || items[0].Kind() != media.KindImage {
		t.Fatalf("expected one imported image, got %v", items)
	}
	if center.Len() != 0 {
		t.Fatal("no warning expected when something imports")
	}
}

func TestClipboardImportWarnsWhenNothingImportable(t *testing.T) {
	center := notify.NewCenter()
	folder := newShotFolder(t, nil, center)

	items, err := folder.ImportClipboard(context.Background(), fakeClipboard{entries: []media.ClipboardEntry{
		{MIME: "text/plain", Data: []byte("nope")},
	}})
	if err != nil {
		t.Fatalf("ImportClipboard: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected nothing imported, got %d", len(items))
	}
	entries := center.List()
	if len(entries) != 1 || entries[0].Severity != notify.SeverityWarning {
		t.Fatalf("expected one warning notification, got %+v", entries)
	}
}

func TestDeleteRemovesItemAndFile(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")

	if err := folder.DeleteItem(a, nil); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if len(folder.Items()) != 0 {
		t.Fatal("item still listed")
	}
	if folder.Store().Exists(folder.Dir(), "a.png") {
		t.Fatal("file still on disk")
	}
}

func TestDeleteConfirmDeclineKeepsItem(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")

	if err := folder.DeleteItem(a, func(string) bool { return false }); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if len(folder.Items()) != 1 {
		t.Fatal("declined delete dropped the item")
	}
}

func TestDeleteFailureKeepsItemListed(t *testing.T) {
	guard := &toggleGuard{}
	center := notify.NewCenter()
	folder := newShotFolder(t, guard, center)
	a := importOne(t, folder, "a.png")

	guard.deny = true
	err := folder.DeleteItem(a, nil)
	if err == nil {
		t.Fatal("expected delete failure")
	}
	if !errors.Is(err, storage.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if len(folder.Items()) != 1 {
		t.Fatal("failed delete must keep the item listed")
	}
	if center.Len() != 1 {
		t.Fatal("expected an error notification")
	}
}
