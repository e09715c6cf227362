package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"shotmaster/internal/fstree"
	"shotmaster/internal/logging"
	"shotmaster/internal/notify"
	"shotmaster/internal/sidecar"
	"shotmaster/internal/storage"
)

const defaultFetchTimeout = 60 * time.Second

// Config describes one well-known media folder inside a shot.
type Config struct {
	Name string
	// ExclusiveTags may be held by at most one item in the folder.
	ExclusiveTags []string
	// MultiTags carry no exclusivity constraint.
	MultiTags []string

	Notifier *notify.Center
	Logger   *slog.Logger
	Client   *http.Client
}

// Folder owns an ordered list of media items and their tag invariants.
type Folder struct {
	*fstree.Folder

	exclusiveTags []string
	multiTags     []string
	items         []*Item

	// doc is the folder-level {filename: [tags]} projection, kept beside
	// the folder so the UI can render holders without opening every item
	// sidecar.
	doc      *sidecar.Document
	notifier *notify.Center
	log      *slog.Logger
	client   *http.Client

	// OnChange fires after every mutation of the item list or tag state.
	OnChange func()
}

// NewFolder builds the media folder under parent and attaches it to the
// entity tree. Call Load to populate it.
func NewFolder(parent *fstree.Folder, cfg Config) (*Folder, error) {
	dir := path.Join(parent.Dir(), cfg.Name)
	store := parent.Store()
	if err := store.EnsureDir(dir); err != nil {
		return nil, err
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	f := &Folder{
		Folder:        fstree.NewFolder(store, dir),
		exclusiveTags: cfg.ExclusiveTags,
		multiTags:     cfg.MultiTags,
		notifier:      cfg.Notifier,
		log:           logging.NewComponentLogger(cfg.Logger, "media"),
		client:        client,
	}
	f.doc = sidecar.Open(store, parent.Dir(), cfg.Name+".json", nil, cfg.Logger)
	fstree.Attach(parent, f)
	return f, nil
}

// Load enumerates the directory and wraps every recognized media file.
// Sidecar files and unknown extensions are skipped.
func (f *Folder) Load() error {
	entries, err := f.Store().List(f.Dir())
	if err != nil {
		f.items = nil
		return fmt.Errorf("load media folder %s: %w", f.Dir(), err)
	}
	for _, entry := range entries {
		if entry.Kind != storage.KindFile {
			continue
		}
		kind, ok := ClassifyName(entry.Name)
		if !ok {
			continue
		}
		f.register(entry.Name, kind)
	}
	f.changed()
	return nil
}

// Items returns the live item list in registration order.
func (f *Folder) Items() []*Item { return f.items }

// ExclusiveTags returns the folder's single-holder tag catalog.
func (f *Folder) ExclusiveTags() []string { return f.exclusiveTags }

// MultiTags returns the folder's unconstrained tag catalog.
func (f *Folder) MultiTags() []string { return f.multiTags }

func (f *Folder) isMultiTag(tag string) bool {
	for _, t := range f.multiTags {
		if t == tag {
			return true
		}
	}
	return false
}

// register wraps an on-disk file as an Item and wires the tag-changed
// hook. Re-registering an existing name refreshes the cached content
// instead of duplicating the entry.
func (f *Folder) register(name string, kind Kind) *Item {
	if existing := f.ByName(name); existing != nil {
		existing.Invalidate()
		return existing
	}
	file := fstree.NewFile(f.Store(), f.Dir(), name)
	item := newItem(file, kind, f, f.log)
	item.onTagChanged = f.tagChanged
	fstree.Attach(f.Folder, item)
	f.items = append(f.items, item)
	return item
}

// tagChanged enforces the exclusive-tag invariant: when a non-multi tag is
// added, every other holder loses it. Afterwards the aggregate projection
// is persisted.
func (f *Folder) tagChanged(item *Item, tag string, added bool) {
	if added && !f.isMultiTag(tag) {
		for _, other := range f.items {
			if other != item && other.HasTag(tag) {
				// Strip without re-entering this hook.
				kept := make([]string, 0)
				for _, t := range other.Tags() {
					if t != tag {
						kept = append(kept, t)
					}
				}
				other.SetTags(kept)
			}
		}
	}
	f.saveAggregate()
	f.changed()
}

// saveAggregate writes the {filename: [tags]} projection to the folder's
// own sidecar, decoupled from the per-item sidecars.
func (f *Folder) saveAggregate() {
	projection := make(map[string]any)
	for _, item := range f.items {
		tags := item.Tags()
		if len(tags) == 0 {
			continue
		}
		values := make([]any, len(tags))
		for i, t := range tags {
			values[i] = t
		}
		projection[item.Name()] = values
	}
	f.doc.Replace(projection)
}

func (f *Folder) changed() {
	if f.OnChange != nil {
		f.OnChange()
	}
}

// ImportFile is one named payload destined for the folder.
type ImportFile struct {
	Name string
	Data []byte
}

// AddItem registers a file that already exists in the folder's
// directory. The name must classify to a known media kind.
func (f *Folder) AddItem(name string) (*Item, error) {
	kind, ok := ClassifyName(name)
	if !ok {
		return nil, fmt.Errorf("add media: %q is not a recognized media file", name)
	}
	item := f.register(name, kind)
	f.changed()
	return item, nil
}

// SaveFiles imports payloads into the folder, overwriting by name, and
// registers each recognized media file. Individual failures are logged and
// skipped so a bad file does not abort the batch.
func (f *Folder) SaveFiles(files []ImportFile) []*Item {
	var imported []*Item
	for _, file := range files {
		name := normalizeFilename(file.Name)
		if name == "" {
			continue
		}
		kind, ok := ClassifyName(name)
		if !ok {
			f.log.Warn("skipping unrecognized media file", logging.String("name", name))
			continue
		}
		if err := f.Store().WriteBytes(f.Dir(), name, file.Data); err != nil {
			f.log.Error("media import failed",
				logging.String("name", name), logging.Error(err))
			continue
		}
		imported = append(imported, f.register(name, kind))
	}
	if len(imported) > 0 {
		f.changed()
	}
	return imported
}

// DownloadFromURL fetches a remote artifact into the folder, deriving the
// filename from the URL path and falling back to the response MIME type
// for the extension.
func (f *Folder) DownloadFromURL(ctx context.Context, rawURL string) (*Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download media: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download media: read body: %w", err)
	}

	name := filenameFromURL(rawURL)
	if !strings.Contains(name, ".") {
		mime := strings.Split(resp.Header.Get("Content-Type"), ";")[0]
		if ext, ok := ExtForMIME(mime); ok {
			name += ext
		}
	}
	kind, ok := ClassifyName(name)
	if !ok {
		return nil, fmt.Errorf("download media: %q is not a recognized media file", name)
	}
	if err := f.Store().WriteBytes(f.Dir(), name, data); err != nil {
		return nil, err
	}
	item := f.register(name, kind)
	f.changed()
	f.log.Info("media downloaded",
		logging.String(logging.FieldMedia, item.Path()),
		logging.String("url", rawURL))
	return item, nil
}

// FromBase64 decodes an inline payload into the folder under name.
func (f *Folder) FromBase64(name, payload string) (*Item, error) {
	data, err := base64Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode media payload: %w", err)
	}
	items := f.SaveFiles([]ImportFile{{Name: name, Data: data}})
	if len(items) == 0 {
		return nil, fmt.Errorf("import media %q failed", name)
	}
	return items[0], nil
}

// DeleteItem removes the item from disk and the in-memory list together.
// When confirm is non-nil and declines, nothing happens. A disk failure
// keeps the item in the list: the UI must not drop entries the filesystem
// still has.
func (f *Folder) DeleteItem(item *Item, confirm func(string) bool) error {
	if confirm != nil && !confirm(fmt.Sprintf("Delete this %s?", item.Kind())) {
		return nil
	}
	if err := item.Delete(); err != nil {
		f.log.Error("media delete failed",
			logging.String(logging.FieldMedia, item.Path()), logging.Error(err))
		if f.notifier != nil {
			f.notifier.Add(fmt.Sprintf("Failed to delete %s", item.Name()), notify.SeverityError)
		}
		return err
	}
	kept := f.items[:0]
	for _, i := range f.items {
		if i != item {
			kept = append(kept, i)
		}
	}
	f.items = kept
	fstree.Detach(item)
	f.saveAggregate()
	f.changed()
	return nil
}

// WithTag returns every item holding tag.
func (f *Folder) WithTag(tag string) []*Item {
	if tag == "" {
		return nil
	}
	var out []*Item
	for _, item := range f.items {
		if item.HasTag(tag) {
			out = append(out, item)
		}
	}
	return out
}

// FirstWithTag returns the first item holding tag, or nil.
func (f *Folder) FirstWithTag(tag string) *Item {
	for _, item := range f.items {
		if item.HasTag(tag) {
			return item
		}
	}
	return nil
}

// HasAnyWithTag reports whether any item holds tag.
func (f *Folder) HasAnyWithTag(tag string) bool {
	return f.FirstWithTag(tag) != nil
}

// ByName returns the item with the given filename, or nil.
func (f *Folder) ByName(name string) *Item {
	if name == "" {
		return nil
	}
	for _, item := range f.items {
		if item.Name() == name {
			return item
		}
	}
	return nil
}

func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return normalizeFilename(path.Base(rawURL))
	}
	return normalizeFilename(path.Base(parsed.Path))
}

// normalizeFilename NFC-normalizes names coming from URLs and clipboard
// payloads so the same asset cannot appear under two byte spellings.
func normalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return ""
	}
	return norm.NFC.String(name)
}
