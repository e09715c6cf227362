package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"

	"shotmaster/internal/config"
	"shotmaster/internal/logging"
	"shotmaster/internal/notify"
	"shotmaster/internal/project"
	"shotmaster/internal/providers"
	"shotmaster/internal/providers/kling"
	"shotmaster/internal/settings"
	"shotmaster/internal/storage"
)

type commandContext struct {
	configFlag  *string
	projectFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger  *slog.Logger
	logOnce sync.Once
}

func newCommandContext(configFlag, projectFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		projectFlag: projectFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
		})
	})
	return c.logger
}

// projectRoot resolves the project folder from the --project flag or
// the config, expanded to an absolute path.
func (c *commandContext) projectRoot() (string, error) {
	root := ""
	if c.projectFlag != nil {
		root = strings.TrimSpace(*c.projectFlag)
	}
	if root == "" {
		cfg, err := c.ensureConfig()
		if err != nil {
			return "", err
		}
		root = cfg.Paths.ProjectRoot
	}
	if root == "" {
		return "", errors.New("no project folder: pass --project or set paths.project_root")
	}
	return config.ExpandPath(root)
}

// openSettings opens the settings database, creating its directory.
func (c *commandContext) openSettings() (*settings.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.SettingsDB), 0o755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}
	return settings.Open(cfg.Paths.SettingsDB)
}

// credentialChain resolves provider keys from the config first and the
// settings database second.
type credentialChain struct {
	cfg   *config.Config
	store *settings.Store
}

func (cc credentialChain) ProviderKeys(provider string) (map[string]string, error) {
	if provider == cc.cfg.Provider.Name && cc.cfg.Provider.AccessKey != "" {
		return map[string]string{
			kling.KeyAccess: cc.cfg.Provider.AccessKey,
			kling.KeySecret: cc.cfg.Provider.SecretKey,
		}, nil
	}
	if cc.store != nil {
		return cc.store.ProviderKeys(provider)
	}
	return nil, fmt.Errorf("%w: no keys configured for %s", providers.ErrMissingCredential, provider)
}

func (c *commandContext) provider(store *settings.Store) (providers.Provider, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Provider.Name != "kling" {
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
	return kling.NewClient(kling.Config{
		BaseURL:        cfg.Provider.BaseURL,
		ProxyURL:       cfg.Provider.ProxyURL,
		TimeoutSeconds: cfg.Provider.TimeoutSeconds,
	}, credentialChain{cfg: cfg, store: store}), nil
}

// session bundles everything an open project needs and how to shut it
// down again.
type session struct {
	Project  *project.Project
	Settings *settings.Store
	Notifier *notify.Center
	Config   *config.Config
}

func (s *session) Close() {
	if s.Project != nil {
		s.Project.Close()
	}
	if s.Settings != nil {
		_ = s.Settings.Close()
	}
}

// withProject opens the configured project, runs fn, and tears the
// session down afterwards.
func (c *commandContext) withProject(ctx context.Context, fn func(*session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	root, err := c.projectRoot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create project folder: %w", err)
	}

	store := storage.New(osfs.New(filepath.Dir(root)), nil, c.log())

	settingsStore, err := c.openSettings()
	if err != nil {
		return err
	}

	prov, err := c.provider(settingsStore)
	if err != nil {
		_ = settingsStore.Close()
		return err
	}

	lockPath := cfg.Paths.LockFile
	if lockPath == "" {
		lockPath = filepath.Join(root, ".shotmaster.lock")
	}

	center := notify.NewCenter()
	proj, err := project.Open(ctx, store, filepath.Base(root), project.Options{
		Notifier: center,
		Provider: prov,
		Settings: settingsStore,
		Logger:   c.log(),
		LockPath: lockPath,
	})
	if err != nil {
		_ = settingsStore.Close()
		return err
	}

	s := &session{Project: proj, Settings: settingsStore, Notifier: center, Config: cfg}
	defer s.Close()
	return fn(s)
}
