package settings_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"shotmaster/internal/providers"
	"shotmaster/internal/settings"
)

func newStore(t *testing.T) *settings.Store {
	t.Helper()
	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadEmptyReturnsZeroData(t *testing.T) {
	store := newStore(t)
	data, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data.LastOpenedFolder != "" || len(data.RecentFolders) != 0 {
		t.Fatalf("expected zero data, got %+v", data)
	}
	if data.APIKeys == nil {
		t.Fatal("APIKeys should be initialized")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	in := settings.Data{
		LastOpenedFolder: "/film/act1",
		RecentFolders:    []string{"/film/act1", "/film/act2"},
		APIKeys: map[string]map[string]string{
			"kling": {"access_key": "ak", "secret_key": "sk"},
		},
	}
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in %+v\nout %+v", in, out)
	}
}

func TestUpdateMutates(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.Update(ctx, func(d *settings.Data) {
		d.RecordRecent("/film/act1")
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	data, _ := store.Load(ctx)
	if data.LastOpenedFolder != "/film/act1" {
		t.Fatalf("data = %+v", data)
	}
}

func TestRecordRecentDedupesAndCaps(t *testing.T) {
	var d settings.Data
	for _, p := range []string{"/a", "/b", "/c", "/d", "/e", "/f", "/b"} {
		d.RecordRecent(p)
	}
	want := []string{"/b", "/f", "/e", "/d", "/c"}
	if !reflect.DeepEqual(d.RecentFolders, want) {
		t.Fatalf("recents = %v, want %v", d.RecentFolders, want)
	}
	if d.LastOpenedFolder != "/b" {
		t.Fatalf("last opened = %q", d.LastOpenedFolder)
	}
}

func TestProviderKeys(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.ProviderKeys("kling"); !errors.Is(err, providers.ErrMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}

	_ = store.Update(ctx, func(d *settings.Data) {
		d.APIKeys["kling"] = map[string]string{"access_key": "ak", "secret_key": "sk"}
	})
	keys, err := store.ProviderKeys("kling")
	if err != nil {
		t.Fatalf("ProviderKeys: %v", err)
	}
	if keys["access_key"] != "ak" {
		t.Fatalf("keys = %v", keys)
	}
}
