package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"sort"

	"github.com/gofrs/flock"

	"shotmaster/internal/fstree"
	"shotmaster/internal/logging"
	"shotmaster/internal/notify"
	"shotmaster/internal/providers"
	"shotmaster/internal/settings"
	"shotmaster/internal/sidecar"
	"shotmaster/internal/storage"
)

// ScenesDirName is the fixed subdirectory holding scene folders.
const ScenesDirName = "SCENES"

// RefsDirName is the fixed subdirectory holding the artbook.
const RefsDirName = "REFS"

// ErrLocked indicates another process holds the project lock.
var ErrLocked = errors.New("project is open in another process")

// Options carries the collaborators a project needs. All fields are
// optional; zero values degrade to no-ops (no lock, no recents, no
// provider).
type Options struct {
	Notifier *notify.Center
	Provider providers.Provider
	Settings *settings.Store
	Logger   *slog.Logger
	Client   *http.Client

	// LockPath, when set, is an OS path used to flock the project so a
	// second process cannot open the same folder.
	LockPath string
}

// Project is the root of the entity tree for one opened folder.
type Project struct {
	*fstree.Folder

	doc     *sidecar.Document
	scenes  []*Scene
	artbook *Artbook
	script  *Script

	notifier *notify.Center
	provider providers.Provider
	client   *http.Client
	log      *slog.Logger
	lock     *flock.Flock
}

// Open loads the project rooted at dir. The recents list is updated,
// projinfo.json is read, then scenes, artbook, and script load in turn.
// A failure in any one subtree is logged and that subtree resets to
// empty; Open itself fails only on the lock.
func Open(ctx context.Context, store *storage.Store, dir string, opts Options) (*Project, error) {
	log := logging.NewComponentLogger(opts.Logger, "project")

	var lock *flock.Flock
	if opts.LockPath != "" {
		lock = flock.New(opts.LockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire project lock: %w", err)
		}
		if !ok {
			return nil, ErrLocked
		}
	}

	if opts.Settings != nil {
		if err := opts.Settings.Update(ctx, func(d *settings.Data) {
			d.RecordRecent(dir)
			d.LastOpenedFolder = dir
		}); err != nil {
			log.Warn("failed to record recent project", logging.Error(err))
		}
	}

	p := &Project{
		Folder:   fstree.NewFolder(store, dir),
		notifier: opts.Notifier,
		provider: opts.Provider,
		client:   opts.Client,
		log:      log,
		lock:     lock,
	}
	p.doc = sidecar.Open(store, dir, "projinfo.json", nil, opts.Logger)

	scenesFolder := fstree.NewFolder(store, p.scenesDir())
	fstree.Attach(p.Folder, scenesFolder)
	p.artbook = newArtbook(p)
	p.script = newScript(p)

	// The three subtrees load one after another. The store makes no
	// thread-safety promises, and nothing here is slow enough to earn a
	// fan-out; what matters is that one broken subtree cannot take the
	// others down with it.
	if err := p.loadScenes(scenesFolder); err != nil {
		p.log.Error("loading scenes failed", logging.Error(err))
		p.scenes = nil
	}
	if err := p.artbook.Load(); err != nil {
		p.log.Error("loading artbook failed", logging.Error(err))
		p.artbook.reset()
	}
	if err := p.script.Load(); err != nil {
		p.log.Error("loading script failed", logging.Error(err))
		p.script.reset()
	}

	p.log.Info("project opened",
		logging.String(logging.FieldProject, dir),
		logging.Int("scenes", len(p.scenes)))
	return p, nil
}

// Sidecar returns the projinfo.json document.
func (p *Project) Sidecar() *sidecar.Document { return p.doc }

// Scenes returns the scene list, lexicographically sorted by name.
func (p *Project) Scenes() []*Scene { return p.scenes }

// Artbook returns the REFS catalog, never nil after Open.
func (p *Project) Artbook() *Artbook { return p.artbook }

// Script returns the project script, never nil after Open.
func (p *Project) Script() *Script { return p.script }

func (p *Project) Notifier() *notify.Center { return p.notifier }

func (p *Project) Provider() providers.Provider { return p.provider }

func (p *Project) scenesDir() string { return path.Join(p.Dir(), ScenesDirName) }

func (p *Project) loadScenes(scenesFolder *fstree.Folder) error {
	if err := p.Store().EnsureDir(p.scenesDir()); err != nil {
		return err
	}
	entries, err := p.Store().List(p.scenesDir())
	if err != nil {
		return err
	}

	var loaded []*Scene
	for _, entry := range entries {
		if entry.Kind != storage.KindDir {
			continue
		}
		scene := newScene(p, scenesFolder, entry.Name)
		if err := scene.Load(); err != nil {
			p.log.Error("loading scene failed",
				logging.String(logging.FieldScene, entry.Name), logging.Error(err))
			continue
		}
		loaded = append(loaded, scene)
	}
	sort.Slice(loaded, func(i, j int) bool { return loaded[i].Name() < loaded[j].Name() })
	p.scenes = loaded
	return nil
}

// Find resolves an entity-tree path to its node anywhere under the
// project root, or nil.
func (p *Project) Find(treePath string) fstree.Node {
	return fstree.GetByPath(p.Folder, treePath)
}

// SceneByName returns the scene with the given folder name, or nil.
func (p *Project) SceneByName(name string) *Scene {
	for _, s := range p.scenes {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// CreateScene is idempotent: an existing scene is returned as-is.
// New scenes are inserted keeping the list sorted by name.
func (p *Project) CreateScene(name string) (*Scene, error) {
	if name == "" {
		return nil, errors.New("scene name must not be empty")
	}
	if existing := p.SceneByName(name); existing != nil {
		return existing, nil
	}
	if err := p.Store().EnsureDir(path.Join(p.scenesDir(), name)); err != nil {
		return nil, fmt.Errorf("create scene %s: %w", name, err)
	}

	scenesFolder := p.sceneContainer()
	scene := newScene(p, scenesFolder, name)
	if err := scene.Load(); err != nil {
		return nil, fmt.Errorf("load scene %s: %w", name, err)
	}

	idx := sort.Search(len(p.scenes), func(i int) bool { return p.scenes[i].Name() > name })
	p.scenes = append(p.scenes, nil)
	copy(p.scenes[idx+1:], p.scenes[idx:])
	p.scenes[idx] = scene
	return scene, nil
}

// sceneContainer returns the SCENES tree node, recreating it when a
// failed load left it behind.
func (p *Project) sceneContainer() *fstree.Folder {
	for _, child := range p.ChildNodes() {
		if folder, ok := child.(*fstree.Folder); ok && folder.Name() == ScenesDirName {
			return folder
		}
	}
	folder := fstree.NewFolder(p.Store(), p.scenesDir())
	fstree.Attach(p.Folder, folder)
	return folder
}

func (p *Project) removeScene(scene *Scene) {
	kept := p.scenes[:0]
	for _, s := range p.scenes {
		if s != scene {
			kept = append(kept, s)
		}
	}
	p.scenes = kept
}

// Close releases the project lock and drops all loaded state. Nothing
// is cached across projects.
func (p *Project) Close() {
	if p.lock != nil {
		if err := p.lock.Unlock(); err != nil {
			p.log.Warn("failed to release project lock", logging.Error(err))
		}
		p.lock = nil
	}
	p.scenes = nil
	p.artbook = nil
	p.script = nil
}
