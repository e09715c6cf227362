package project

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"shotmaster/internal/fstree"
	"shotmaster/internal/media"
	"shotmaster/internal/sidecar"
	"shotmaster/internal/storage"
)

// Art is one reference image in the artbook, addressed by its
// TYPE/ITEM/FILE tag path. Metadata lives in a lazily opened sidecar
// next to the image.
type Art struct {
	*fstree.File

	tagPath string
	info    *sidecar.Document
}

// TagPath is the TYPE/ITEM/FILE address scenes reference the art by.
func (a *Art) TagPath() string { return a.tagPath }

// Info opens the art's metadata sidecar on first use.
func (a *Art) Info() *sidecar.Document {
	if a.info == nil {
		a.info = sidecar.Open(a.Store(), a.Dir(), a.Name()+".json", nil, nil)
	}
	return a.info
}

// Artbook is the REFS/ catalog: two directory levels (type, then item)
// of reference images.
type Artbook struct {
	*fstree.Folder

	project *Project
	// data maps type name to item name to that item's art, in listing
	// order.
	data map[string]map[string][]*Art
}

func newArtbook(p *Project) *Artbook {
	book := &Artbook{
		Folder:  fstree.NewFolder(p.Store(), path.Join(p.Dir(), RefsDirName)),
		project: p,
		data:    map[string]map[string][]*Art{},
	}
	fstree.Attach(p.Folder, book)
	return book
}

func (b *Artbook) reset() { b.data = map[string]map[string][]*Art{} }

// Load walks REFS/<Type>/<Item>/ and indexes every image file found.
// Non-image files and stray files at the type or item level are
// skipped.
func (b *Artbook) Load() error {
	if err := b.Store().EnsureDir(b.Dir()); err != nil {
		return err
	}
	types, err := b.Store().List(b.Dir())
	if err != nil {
		return fmt.Errorf("load artbook: %w", err)
	}

	result := map[string]map[string][]*Art{}
	for _, typeEntry := range types {
		if typeEntry.Kind != storage.KindDir {
			continue
		}
		typeFolder := fstree.NewFolder(b.Store(), path.Join(b.Dir(), typeEntry.Name))
		fstree.Attach(b.Folder, typeFolder)

		items, err := b.Store().List(typeFolder.Dir())
		if err != nil {
			return fmt.Errorf("load artbook type %s: %w", typeEntry.Name, err)
		}
		result[typeEntry.Name] = map[string][]*Art{}

		for _, itemEntry := range items {
			if itemEntry.Kind != storage.KindDir {
				continue
			}
			itemFolder := fstree.NewFolder(b.Store(), path.Join(typeFolder.Dir(), itemEntry.Name))
			fstree.Attach(typeFolder, itemFolder)

			files, err := b.Store().List(itemFolder.Dir())
			if err != nil {
				return fmt.Errorf("load artbook item %s/%s: %w", typeEntry.Name, itemEntry.Name, err)
			}
			arts := []*Art{}
			for _, fileEntry := range files {
				if fileEntry.Kind != storage.KindFile {
					continue
				}
				if kind, ok := media.ClassifyName(fileEntry.Name); !ok || kind != media.KindImage {
					continue
				}
				art := &Art{
					File:    fstree.NewFile(b.Store(), itemFolder.Dir(), fileEntry.Name),
					tagPath: typeEntry.Name + "/" + itemEntry.Name + "/" + fileEntry.Name,
				}
				fstree.Attach(itemFolder, art)
				arts = append(arts, art)
			}
			result[typeEntry.Name][itemEntry.Name] = arts
		}
	}
	b.data = result
	return nil
}

// Lookup resolves a TYPE/ITEM/FILE tag path to its art, or nil.
func (b *Artbook) Lookup(tagPath string) *Art {
	parts := strings.SplitN(tagPath, "/", 3)
	if len(parts) < 3 {
		return nil
	}
	items, ok := b.data[parts[0]]
	if !ok {
		return nil
	}
	arts, ok := items[parts[1]]
	if !ok {
		return nil
	}
	for _, art := range arts {
		if art.Name() == parts[2] {
			return art
		}
	}
	return nil
}

// Types returns the type names in sorted order.
func (b *Artbook) Types() []string {
	names := make([]string, 0, len(b.data))
	for name := range b.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items returns the item names under a type in sorted order.
func (b *Artbook) Items(typeName string) []string {
	items, ok := b.data[typeName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Arts returns the art under type/item in listing order.
func (b *Artbook) Arts(typeName, itemName string) []*Art {
	items, ok := b.data[typeName]
	if !ok {
		return nil
	}
	return items[itemName]
}

// Snapshot is a names-only projection of the whole catalog, the shape
// prompt assembly embeds as the refs dictionary.
func (b *Artbook) Snapshot() map[string]map[string][]string {
	out := map[string]map[string][]string{}
	for typeName, items := range b.data {
		out[typeName] = map[string][]string{}
		for itemName, arts := range items {
			names := make([]string, len(arts))
			for i, art := range arts {
				names[i] = art.Name()
			}
			out[typeName][itemName] = names
		}
	}
	return out
}
