package sidecar

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/ohler55/ojg/oj"

	"shotmaster/internal/logging"
	"shotmaster/internal/storage"
)

// Document is a JSON sidecar file mapped into memory. Mutations update the
// in-memory tree synchronously; persistence is a best-effort full-document
// overwrite.
type Document struct {
	store *storage.Store
	dir   string
	name  string
	data  map[string]any
	log   *slog.Logger
}

// Open reads dir/filename and shallow-merges its keys over defaults (file
// values win). Any read or parse failure, including a missing file, yields
// an in-memory-only document seeded with defaults. Open never fails.
func Open(store *storage.Store, dir, filename string, defaults map[string]any, logger *slog.Logger) *Document {
	log := logging.NewComponentLogger(logger, "sidecar")
	data := make(map[string]any, len(defaults))
	for k, v := range defaults {
		data[k] = v
	}

	text, err := store.ReadText(dir, filename)
	if err != nil {
		if !storage.IsNotFound(err) {
			log.Warn("sidecar read failed, using defaults",
				logging.String(logging.FieldSidecar, dir+"/"+filename),
				logging.Error(err))
		}
		return &Document{store: store, dir: dir, name: filename, data: data, log: log}
	}

	if strings.TrimSpace(text) != "" {
		parsed, perr := oj.ParseString(text)
		if obj, ok := parsed.(map[string]any); perr == nil && ok {
			for k, v := range obj {
				data[k] = v
			}
		} else {
			log.Warn("sidecar parse failed, using defaults",
				logging.String(logging.FieldSidecar, dir+"/"+filename),
				logging.Error(perr))
		}
	}
	return &Document{store: store, dir: dir, name: filename, data: data, log: log}
}

// Path returns the location of the backing file.
func (d *Document) Path() string { return d.dir + "/" + d.name }

// Len returns the number of top-level keys.
func (d *Document) Len() int { return len(d.data) }

// Keys returns the top-level keys, sorted.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.data))
	for k := range d.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Exists reports whether the backing file is currently on disk.
func (d *Document) Exists() bool {
	return d.store.Exists(d.dir, d.name)
}

// Get reads the value at a "/"-delimited path. It performs no I/O and
// returns nil when any segment is absent.
func (d *Document) Get(path string) any {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil
	}
	current := any(d.data)
	for _, seg := range segments {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = obj[seg]
		if !ok {
			return nil
		}
	}
	return current
}

// GetString reads a string value at path, or "" when absent or mistyped.
func (d *Document) GetString(path string) string {
	s, _ := d.Get(path).(string)
	return s
}

// Set writes value at path and persists immediately.
func (d *Document) Set(path string, value any) {
	d.Put(path, value, true)
}

// Put writes value at path, auto-creating intermediate objects and
// overwriting intermediate non-object values with empty objects. When
// persist is true the whole document is saved afterwards.
func (d *Document) Put(path string, value any, persist bool) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return
	}
	obj := d.data
	for _, seg := range segments[:len(segments)-1] {
		next, ok := obj[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			obj[seg] = next
		}
		obj = next
	}
	obj[segments[len(segments)-1]] = value
	if persist {
		d.Save()
	}
}

// Unset deletes the leaf key at path and persists. Missing intermediate
// segments make it a no-op.
func (d *Document) Unset(path string) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return
	}
	obj := d.data
	for _, seg := range segments[:len(segments)-1] {
		next, ok := obj[seg].(map[string]any)
		if !ok {
			return
		}
		obj = next
	}
	if _, ok := obj[segments[len(segments)-1]]; !ok {
		return
	}
	delete(obj, segments[len(segments)-1])
	d.Save()
}

// Merge shallow-merges fields into the object at path and persists once.
func (d *Document) Merge(path string, fields map[string]any) {
	current, _ := d.Get(path).(map[string]any)
	merged := make(map[string]any, len(current)+len(fields))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	d.Put(path, merged, true)
}

// Replace swaps the entire document content and persists. An empty map
// deletes the backing file through the usual Save path.
func (d *Document) Replace(data map[string]any) {
	next := make(map[string]any, len(data))
	for k, v := range data {
		next[k] = v
	}
	d.data = next
	d.Save()
}

// Save persists the document. An empty document deletes the backing file;
// otherwise the full document is serialized as indented JSON and
// overwritten. Failures are logged, never propagated: the UI must not
// block on a sidecar write.
func (d *Document) Save() {
	if len(d.data) == 0 {
		if err := d.store.Remove(d.dir, d.name); err != nil {
			d.log.Warn("sidecar delete failed",
				logging.String(logging.FieldSidecar, d.Path()),
				logging.Error(err))
		}
		return
	}
	text := oj.JSON(d.data, &oj.Options{Indent: 2, Sort: true})
	if err := d.store.WriteText(d.dir, d.name, text); err != nil {
		d.log.Warn("sidecar save failed",
			logging.String(logging.FieldSidecar, d.Path()),
			logging.Error(err))
	}
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
