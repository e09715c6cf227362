package media

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"shotmaster/internal/fstree"
	"shotmaster/internal/sidecar"
)

// Item is one media file plus its tag and provenance sidecar. The kind is
// fixed at classification time; everything else derives from the sidecar
// on each read.
type Item struct {
	*fstree.File

	kind   Kind
	folder *Folder
	doc    *sidecar.Document

	onTagChanged func(item *Item, tag string, added bool)

	displayURL    string
	base64Payload string
	base64MIME    string
}

func newItem(file *fstree.File, kind Kind, folder *Folder, logger *slog.Logger) *Item {
	item := &Item{File: file, kind: kind, folder: folder}
	item.doc = sidecar.Open(file.Store(), file.Dir(), file.Name()+".json", nil, logger)
	return item
}

func (i *Item) Kind() Kind { return i.kind }

// Folder returns the media folder that owns this item.
func (i *Item) Folder() *Folder { return i.folder }

// Sidecar exposes the item's metadata document.
func (i *Item) Sidecar() *sidecar.Document { return i.doc }

// Tags returns the item's tag list as recorded in the sidecar.
func (i *Item) Tags() []string {
	raw, _ := i.doc.Get("tags").([]any)
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// SetTags replaces the tag list, dropping empties and duplicates. An empty
// result removes the key entirely so an unused sidecar can disappear.
func (i *Item) SetTags(tags []string) {
	seen := make(map[string]struct{}, len(tags))
	cleaned := make([]any, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	if len(cleaned) == 0 {
		i.doc.Unset("tags")
		return
	}
	i.doc.Set("tags", cleaned)
}

func (i *Item) HasTag(tag string) bool {
	for _, t := range i.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends tag and notifies the owning folder, which is where
// exclusive-tag stripping happens; items do not know about siblings.
func (i *Item) AddTag(tag string) {
	if tag == "" || i.HasTag(tag) {
		return
	}
	i.SetTags(append(i.Tags(), tag))
	if i.onTagChanged != nil {
		i.onTagChanged(i, tag, true)
	}
}

func (i *Item) RemoveTag(tag string) {
	if !i.HasTag(tag) {
		return
	}
	kept := make([]string, 0)
	for _, t := range i.Tags() {
		if t != tag {
			kept = append(kept, t)
		}
	}
	i.SetTags(kept)
	if i.onTagChanged != nil {
		i.onTagChanged(i, tag, false)
	}
}

func (i *Item) ToggleTag(tag string) {
	if tag == "" {
		return
	}
	if i.HasTag(tag) {
		i.RemoveTag(tag)
		return
	}
	i.AddTag(tag)
}

// GenInfo returns the generation provenance recorded for this item, or nil.
func (i *Item) GenInfo() map[string]any {
	info, _ := i.doc.Get("geninfo").(map[string]any)
	return info
}

// SetGenInfo merges provenance fields into the sidecar.
func (i *Item) SetGenInfo(fields map[string]any) {
	i.doc.Merge("geninfo", fields)
}

// SourcePath returns the tree path of the media this item was generated
// from, or "".
func (i *Item) SourcePath() string {
	return i.doc.GetString("geninfo/source")
}

// SourceMedia resolves the generation source by absolute path lookup
// through the entity tree.
func (i *Item) SourceMedia() *Item {
	src := i.SourcePath()
	if src == "" {
		return nil
	}
	node := fstree.GetByAbsPath(i, src)
	if item, ok := node.(*Item); ok {
		return item
	}
	return nil
}

// GeneratedMedia returns the sibling items whose provenance source is this
// item's path.
func (i *Item) GeneratedMedia() []*Item {
	if i.folder == nil {
		return nil
	}
	var out []*Item
	for _, sibling := range i.folder.Items() {
		if sibling != i && sibling.SourcePath() == i.Path() {
			out = append(out, sibling)
		}
	}
	return out
}

// Invalidate drops the cached content plus every encoding derived from
// it. The display handle is revoked because it points at stale bytes.
func (i *Item) Invalidate() {
	i.File.Invalidate()
	i.base64Payload = ""
	i.base64MIME = ""
	i.RevokeDisplayURL()
}

// Base64 returns the file content as a base64 payload plus MIME type, for
// providers that accept inline media. The transcoding is memoized.
func (i *Item) Base64() (string, string, error) {
	if i.base64Payload != "" {
		return i.base64Payload, i.base64MIME, nil
	}
	data, err := i.Bytes()
	if err != nil {
		return "", "", fmt.Errorf("read media %s: %w", i.Path(), err)
	}
	i.base64Payload = base64.StdEncoding.EncodeToString(data)
	i.base64MIME = MIMEForName(i.Name())
	return i.base64Payload, i.base64MIME, nil
}

// DisplayURL returns a revocable process-local handle to the byte content.
// Callers own the handle and must revoke it when it leaves the screen.
func (i *Item) DisplayURL() (string, error) {
	if i.displayURL != "" {
		return i.displayURL, nil
	}
	data, err := i.Bytes()
	if err != nil {
		return "", fmt.Errorf("read media %s: %w", i.Path(), err)
	}
	i.displayURL = display.register(data)
	return i.displayURL, nil
}

// RevokeDisplayURL releases the display handle, if one exists.
func (i *Item) RevokeDisplayURL() {
	if i.displayURL == "" {
		return
	}
	display.revoke(i.displayURL)
	i.displayURL = ""
}

// Delete revokes any display handle and removes the underlying file. The
// error propagates so the caller can keep the item listed when the disk
// delete fails.
func (i *Item) Delete() error {
	i.RevokeDisplayURL()
	if err := i.Store().Remove(i.Dir(), i.Name()); err != nil {
		return fmt.Errorf("delete media %s: %w", i.Path(), err)
	}
	i.doc.Replace(nil)
	return nil
}
