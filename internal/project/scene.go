package project

import (
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/ohler55/ojg/oj"

	"shotmaster/internal/fstree"
	"shotmaster/internal/logging"
	"shotmaster/internal/sidecar"
	"shotmaster/internal/storage"
)

func sceneDefaults() map[string]any {
	return map[string]any{
		"tags":      []any{},
		"shotsjson": "",
		"script":    "",
	}
}

// Scene is one folder under SCENES/ holding an ordered list of shots.
type Scene struct {
	*fstree.Folder

	project *Project
	doc     *sidecar.Document
	shots   []*Shot
}

func newScene(p *Project, container *fstree.Folder, name string) *Scene {
	s := &Scene{
		Folder:  fstree.NewFolder(p.Store(), path.Join(container.Dir(), name)),
		project: p,
	}
	fstree.Attach(container, s)
	return s
}

// Load opens the scene sidecar and enumerates subdirectories as shots.
// A shot that fails to load is logged and skipped.
func (s *Scene) Load() error {
	s.doc = sidecar.Open(s.Store(), s.Dir(), "sceneinfo.json", sceneDefaults(), s.project.log)

	entries, err := s.Store().List(s.Dir())
	if err != nil {
		s.shots = nil
		return fmt.Errorf("load scene %s: %w", s.Name(), err)
	}
	s.shots = nil
	for _, entry := range entries {
		if entry.Kind != storage.KindDir {
			continue
		}
		shot := newShot(s, entry.Name)
		if err := shot.Load(); err != nil {
			s.project.log.Error("loading shot failed",
				logging.String(logging.FieldScene, s.Name()),
				logging.String(logging.FieldShot, entry.Name),
				logging.Error(err))
			continue
		}
		s.shots = append(s.shots, shot)
	}
	sort.Slice(s.shots, func(i, j int) bool { return s.shots[i].Name() < s.shots[j].Name() })
	return nil
}

// Sidecar returns the sceneinfo.json document.
func (s *Scene) Sidecar() *sidecar.Document { return s.doc }

// Shots returns the shot list sorted by folder name.
func (s *Scene) Shots() []*Shot { return s.shots }

// ShotByName returns the shot with the given folder name, or nil.
func (s *Scene) ShotByName(name string) *Shot {
	for _, shot := range s.shots {
		if shot.Name() == name {
			return shot
		}
	}
	return nil
}

// CreateShot is idempotent and keeps the shot list sorted by name.
func (s *Scene) CreateShot(name string) (*Shot, error) {
	if name == "" {
		return nil, errors.New("shot name must not be empty")
	}
	if existing := s.ShotByName(name); existing != nil {
		return existing, nil
	}
	if err := s.Store().EnsureDir(path.Join(s.Dir(), name)); err != nil {
		return nil, fmt.Errorf("create shot %s: %w", name, err)
	}
	shot := newShot(s, name)
	if err := shot.Load(); err != nil {
		return nil, fmt.Errorf("load shot %s: %w", name, err)
	}
	idx := sort.Search(len(s.shots), func(i int) bool { return s.shots[i].Name() > name })
	s.shots = append(s.shots, nil)
	copy(s.shots[idx+1:], s.shots[idx:])
	s.shots[idx] = shot
	return shot, nil
}

// Delete removes the scene directory recursively and unlinks the scene
// from the project.
func (s *Scene) Delete() error {
	if err := s.Store().RemoveAll(s.Dir()); err != nil {
		return fmt.Errorf("delete scene %s: %w", s.Name(), err)
	}
	s.project.removeScene(s)
	fstree.Detach(s)
	s.shots = nil
	return nil
}

// Script returns this scene's script text from its sidecar.
func (s *Scene) Script() string { return s.doc.GetString("script") }

// SetScript stores the scene's script text and persists it.
func (s *Scene) SetScript(text string) { s.doc.Set("script", text) }

// Tags returns the art tag paths attached to the scene.
func (s *Scene) Tags() []string {
	raw, ok := s.doc.Get("tags").([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if t, ok := v.(string); ok {
			tags = append(tags, t)
		}
	}
	return tags
}

// AddTag attaches an art tag path. Unknown paths are rejected against
// the artbook so a typo never ends up in the sidecar.
func (s *Scene) AddTag(tagPath string) error {
	if s.project.Artbook().Lookup(tagPath) == nil {
		return fmt.Errorf("unknown art tag %q", tagPath)
	}
	tags := s.Tags()
	for _, t := range tags {
		if t == tagPath {
			return nil
		}
	}
	s.setTags(append(tags, tagPath))
	return nil
}

// RemoveTag drops an art tag path, ignoring absent tags.
func (s *Scene) RemoveTag(tagPath string) {
	tags := s.Tags()
	kept := tags[:0]
	for _, t := range tags {
		if t != tagPath {
			kept = append(kept, t)
		}
	}
	s.setTags(kept)
}

// Arts resolves the scene's tag paths against the artbook, skipping
// paths that no longer exist on disk.
func (s *Scene) Arts() []*Art {
	var arts []*Art
	for _, tagPath := range s.Tags() {
		if art := s.project.Artbook().Lookup(tagPath); art != nil {
			arts = append(arts, art)
		}
	}
	return arts
}

func (s *Scene) setTags(tags []string) {
	values := make([]any, len(tags))
	for i, t := range tags {
		values[i] = t
	}
	s.doc.Set("tags", values)
}

// FinishedShots counts shots whose pipeline state is the final one.
func (s *Scene) FinishedShots() int {
	count := 0
	for _, shot := range s.shots {
		if shot.State() == ShotStates[len(ShotStates)-1] {
			count++
		}
	}
	return count
}

// ShotsWithStatus counts shots at the given pipeline state. With exact
// false, shots at or past the state count too, which is what progress
// bars want.
func (s *Scene) ShotsWithStatus(status string, exact bool) int {
	target := shotStateIndex(status)
	if target == -1 {
		return 0
	}
	count := 0
	for _, shot := range s.shots {
		idx := shotStateIndex(shot.State())
		if idx == -1 {
			idx = 0
		}
		if exact && idx == target {
			count++
		} else if !exact && idx >= target {
			count++
		}
	}
	return count
}

// CreateShotsFromJSON materializes shots from the shotsjson breakdown
// stored in the scene sidecar: one shot per top-level key, with that
// key's object merged into the new shot's sidecar. Keys are processed
// in sorted order; entries that are not objects are skipped.
func (s *Scene) CreateShotsFromJSON() error {
	raw := s.doc.GetString("shotsjson")
	if raw == "" {
		return errors.New("scene has no shots breakdown")
	}
	parsed, err := oj.ParseString(raw)
	if err != nil {
		return fmt.Errorf("parse shots breakdown: %w", err)
	}
	breakdown, ok := parsed.(map[string]any)
	if !ok {
		return errors.New("shots breakdown must be a JSON object")
	}

	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fields, ok := breakdown[name].(map[string]any)
		if !ok {
			s.project.log.Warn("skipping non-object shot entry",
				logging.String(logging.FieldShot, name))
			continue
		}
		shot, err := s.CreateShot(name)
		if err != nil {
			s.project.log.Error("creating shot from breakdown failed",
				logging.String(logging.FieldShot, name), logging.Error(err))
			continue
		}
		for key, value := range fields {
			shot.Sidecar().Put(key, value, false)
		}
		shot.Sidecar().Save()
	}
	return nil
}
