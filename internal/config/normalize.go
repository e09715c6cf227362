package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProvider()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ProjectRoot != "" {
		if c.Paths.ProjectRoot, err = expandPath(c.Paths.ProjectRoot); err != nil {
			return fmt.Errorf("paths.project_root: %w", err)
		}
	}
	if c.Paths.SettingsDB, err = expandPath(c.Paths.SettingsDB); err != nil {
		return fmt.Errorf("paths.settings_db: %w", err)
	}
	if c.Paths.LockFile == "" && c.Paths.ProjectRoot != "" {
		c.Paths.LockFile = filepath.Join(c.Paths.ProjectRoot, ".shotmaster.lock")
	} else if c.Paths.LockFile != "" {
		if c.Paths.LockFile, err = expandPath(c.Paths.LockFile); err != nil {
			return fmt.Errorf("paths.lock_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeProvider() {
	c.Provider.Name = strings.ToLower(strings.TrimSpace(c.Provider.Name))
	c.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.BaseURL), "/")
	c.Provider.ProxyURL = strings.TrimRight(strings.TrimSpace(c.Provider.ProxyURL), "/")
	if c.Provider.AccessKey == "" {
		c.Provider.AccessKey = strings.TrimSpace(os.Getenv("KLING_ACCESS_KEY"))
	}
	if c.Provider.SecretKey == "" {
		c.Provider.SecretKey = strings.TrimSpace(os.Getenv("KLING_SECRET_KEY"))
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
