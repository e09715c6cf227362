package storage

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"shotmaster/internal/logging"
)

// EntryKind distinguishes directory children.
type EntryKind string

const (
	KindFile EntryKind = "file"
	KindDir  EntryKind = "directory"
)

// Entry describes one child of a directory listing.
type Entry struct {
	Name string
	Kind EntryKind
}

// Store provides the file primitives for one project root.
type Store struct {
	fs    billy.Filesystem
	guard Guard
	log   *slog.Logger
}

// New wraps fs with the given permission guard. A nil guard allows all
// writes; a nil logger discards output.
func New(fs billy.Filesystem, guard Guard, logger *slog.Logger) *Store {
	if guard == nil {
		guard = AllowAll{}
	}
	return &Store{
		fs:    fs,
		guard: guard,
		log:   logging.NewComponentLogger(logger, "storage"),
	}
}

// Filesystem exposes the underlying filesystem for callers that stream
// large payloads themselves.
func (s *Store) Filesystem() billy.Filesystem { return s.fs }

// ReadBytes returns the full content of dir/name.
func (s *Store) ReadBytes(dir, name string) ([]byte, error) {
	target := path.Join(dir, name)
	f, err := s.fs.Open(target)
	if err != nil {
		return nil, wrapNotFound("open", target, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return data, nil
}

// ReadText returns the content of dir/name as a string.
func (s *Store) ReadText(dir, name string) (string, error) {
	data, err := s.ReadBytes(dir, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteBytes creates or overwrites dir/name after the guard approves.
func (s *Store) WriteBytes(dir, name string, data []byte) error {
	target := path.Join(dir, name)
	if err := s.guard.EnsureWritable(target); err != nil {
		return err
	}
	if dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := util.WriteFile(s.fs, target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// WriteText creates or overwrites dir/name with text content.
func (s *Store) WriteText(dir, name, text string) error {
	return s.WriteBytes(dir, name, []byte(text))
}

// Remove deletes dir/name. A missing file is success so delete paths stay
// idempotent under racing callers.
func (s *Store) Remove(dir, name string) error {
	target := path.Join(dir, name)
	if err := s.guard.EnsureWritable(target); err != nil {
		return err
	}
	if err := s.fs.Remove(target); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", target, err)
	}
	return nil
}

// RemoveAll deletes dir and everything beneath it.
func (s *Store) RemoveAll(dir string) error {
	if err := s.guard.EnsureWritable(dir); err != nil {
		return err
	}
	if err := util.RemoveAll(s.fs, dir); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("remove all %s: %w", dir, err)
	}
	return nil
}

// EnsureDir creates dir (and parents) when missing.
func (s *Store) EnsureDir(dir string) error {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// List enumerates the children of dir, sorted by name. Each call re-reads
// the directory; there is no persistent cursor.
func (s *Store) List(dir string) ([]Entry, error) {
	infos, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, wrapNotFound("list", dir, err)
	}
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		kind := KindFile
		if info.IsDir() {
			kind = KindDir
		}
		entries = append(entries, Entry{Name: info.Name(), Kind: kind})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Exists reports whether dir/name is present.
func (s *Store) Exists(dir, name string) bool {
	_, err := s.fs.Stat(path.Join(dir, name))
	return err == nil
}

// Stat returns the size and modification time of dir/name.
func (s *Store) Stat(dir, name string) (int64, int64, error) {
	target := path.Join(dir, name)
	info, err := s.fs.Stat(target)
	if err != nil {
		return 0, 0, wrapNotFound("stat", target, err)
	}
	return info.Size(), info.ModTime().UnixNano(), nil
}
