package testsupport

import (
	"path/filepath"
	"testing"

	"shotmaster/internal/config"
)

// ConfigOption allows callers to customize the generated test
// configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ProjectRoot = filepath.Join(base, "project")
	cfgVal.Paths.SettingsDB = filepath.Join(base, "settings.db")
	cfgVal.Paths.LockFile = filepath.Join(base, "project.lock")
	cfgVal.Polling.MaxRetries = 2
	cfgVal.Polling.DelaySeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithProviderKeys sets the provider credentials on the test config.
func WithProviderKeys(access, secret string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Provider.AccessKey = access
		b.cfg.Provider.SecretKey = secret
	}
}

// WithProviderBaseURL points the provider at a test server.
func WithProviderBaseURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Provider.BaseURL = baseURL
	}
}
