package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shotmaster/internal/config"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("KLING_ACCESS_KEY", "")
	t.Setenv("KLING_SECRET_KEY", "")

	cfg, resolved, exists, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if cfg.Provider.Name != "kling" {
		t.Fatalf("unexpected provider name: %q", cfg.Provider.Name)
	}
	if cfg.Provider.BaseURL != "https://api-singapore.klingai.com" {
		t.Fatalf("unexpected base url: %q", cfg.Provider.BaseURL)
	}
	if cfg.Polling.MaxRetries != 30 || cfg.Polling.DelaySeconds != 15 {
		t.Fatalf("unexpected polling defaults: %+v", cfg.Polling)
	}
	wantDB := filepath.Join(tempHome, ".local", "share", "shotmaster", "settings.db")
	if cfg.Paths.SettingsDB != wantDB {
		t.Fatalf("settings db = %q, want %q", cfg.Paths.SettingsDB, wantDB)
	}
}

func TestLoadParsesFileAndDerivesLockFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(tempHome, "config.toml")
	content := strings.Join([]string{
		`[paths]`,
		`project_root = "~/projects/film"`,
		``,
		`[provider]`,
		`proxy_url = "http://localhost:5173/"`,
		`access_key = "ak"`,
		`secret_key = "sk"`,
		``,
		`[polling]`,
		`max_retries = 3`,
		`delay_seconds = 1`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	wantRoot := filepath.Join(tempHome, "projects", "film")
	if cfg.Paths.ProjectRoot != wantRoot {
		t.Fatalf("project root = %q, want %q", cfg.Paths.ProjectRoot, wantRoot)
	}
	if cfg.Paths.LockFile != filepath.Join(wantRoot, ".shotmaster.lock") {
		t.Fatalf("lock file = %q", cfg.Paths.LockFile)
	}
	if cfg.Provider.ProxyURL != "http://localhost:5173" {
		t.Fatalf("proxy url = %q, trailing slash should be trimmed", cfg.Provider.ProxyURL)
	}
	if cfg.Polling.MaxRetries != 3 {
		t.Fatalf("max retries = %d", cfg.Polling.MaxRetries)
	}
}

func TestProviderCredentialsFromEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("KLING_ACCESS_KEY", "env-access")
	t.Setenv("KLING_SECRET_KEY", "env-secret")

	cfg, _, _, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Provider.AccessKey != "env-access" || cfg.Provider.SecretKey != "env-secret" {
		t.Fatalf("credentials not taken from env: %+v", cfg.Provider)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty provider name", func(c *config.Config) { c.Provider.Name = "" }, "provider.name"},
		{"empty base url", func(c *config.Config) { c.Provider.BaseURL = "" }, "provider.base_url"},
		{"zero timeout", func(c *config.Config) { c.Provider.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"negative retries", func(c *config.Config) { c.Polling.MaxRetries = -1 }, "max_retries"},
		{"zero delay", func(c *config.Config) { c.Polling.DelaySeconds = 0 }, "delay_seconds"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(tempHome, "cfg", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample file should exist")
	}
	if cfg.Provider.Name != "kling" {
		t.Fatalf("sample provider = %q", cfg.Provider.Name)
	}
}
