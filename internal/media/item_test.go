package media_test

import (
	"encoding/base64"
	"testing"

	"shotmaster/internal/media"
)

func TestSetTagsDedupes(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")

	a.SetTags([]string{"ref_frame", "", "ref_frame", "picked"})
	tags := a.Tags()
	if len(tags) != 2 || tags[0] != "ref_frame" || tags[1] != "picked" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestEmptyTagsDeleteSidecar(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")

	a.AddTag("picked")
	if !folder.Store().Exists(folder.Dir(), "a.png.json") {
		t.Fatal("expected item sidecar after tagging")
	}
	a.RemoveTag("picked")
	if folder.Store().Exists(folder.Dir(), "a.png.json") {
		t.Fatal("empty sidecar should be deleted")
	}
}

func TestToggleTag(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")

	a.ToggleTag("picked")
	if !a.HasTag("picked") {
		t.Fatal("toggle on failed")
	}
	a.ToggleTag("picked")
	if a.HasTag("picked") {
		t.Fatal("toggle off failed")
	}
}

func TestBytesCachedUntilInvalidate(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")

	first, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(first) != string(pngBytes) {
		t.Fatal("content mismatch")
	}
	url, err := a.DisplayURL()
	if err != nil {
		t.Fatalf("DisplayURL: %v", err)
	}

	updated := append(append([]byte(nil), pngBytes...), 0x00)
	if err := folder.Store().WriteBytes(folder.Dir(), "a.png", updated); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if cached, _ := a.Bytes(); string(cached) != string(pngBytes) {
		t.Fatal("expected cached content before invalidate")
	}

	a.Invalidate()
	if _, ok := media.ResolveDisplayURL(url); ok {
		t.Fatal("invalidate should revoke the display handle")
	}
	fresh, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes after invalidate: %v", err)
	}
	if string(fresh) != string(updated) {
		t.Fatal("expected re-read content after invalidate")
	}
}

func TestBase64Memoized(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")

	payload, mime, err := a.Base64()
	if err != nil {
		t.Fatalf("Base64: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("mime %q", mime)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("payload not base64: %v", err)
	}
	if string(decoded) != string(pngBytes) {
		t.Fatal("payload does not round-trip")
	}

	again, _, err := a.Base64()
	if err != nil || again != payload {
		t.Fatal("expected memoized payload")
	}
}

func TestDisplayURLLifecycle(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")

	url, err := a.DisplayURL()
	if err != nil {
		t.Fatalf("DisplayURL: %v", err)
	}
	data, ok := media.ResolveDisplayURL(url)
	if !ok || string(data) != string(pngBytes) {
		t.Fatal("display URL does not resolve to content")
	}

	same, _ := a.DisplayURL()
	if same != url {
		t.Fatal("expected stable handle until revoked")
	}

	a.RevokeDisplayURL()
	if _, ok := media.ResolveDisplayURL(url); ok {
		t.Fatal("revoked handle still resolves")
	}
}

func TestGenInfoMerge(t *testing.T) {
	folder := newShotFolder(t, nil, nil)
	a := importOne(t, folder, "a.png")

	a.SetGenInfo(map[string]any{"workflow": "text2video", "prompt": "dawn"})
	a.SetGenInfo(map[string]any{"model": "kling-v2-6"})

	info := a.GenInfo()
	if info["workflow"] != "text2video" || info["prompt"] != "dawn" || info["model"] != "kling-v2-6" {
		t.Fatalf("geninfo = %v", info)
	}
}
