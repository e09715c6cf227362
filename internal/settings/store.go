package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"shotmaster/internal/providers"
)

// settingsID is the fixed primary key of the single settings row.
const settingsID = "settings"

const maxRecentFolders = 5

// Data is the persisted settings payload.
type Data struct {
	LastOpenedFolder string                       `json:"last_opened_folder"`
	RecentFolders    []string                     `json:"recent_folders"`
	APIKeys          map[string]map[string]string `json:"api_keys"`
}

// RecordRecent moves path to the front of the recents list, deduplicated
// and capped to the last five folders.
func (d *Data) RecordRecent(path string) {
	if path == "" {
		return
	}
	next := make([]string, 0, maxRecentFolders)
	next = append(next, path)
	for _, p := range d.RecentFolders {
		if p == path {
			continue
		}
		next = append(next, p)
		if len(next) == maxRecentFolders {
			break
		}
	}
	d.RecentFolders = next
	d.LastOpenedFolder = path
}

// Store manages settings persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the settings database.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure settings directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS settings (
        id TEXT PRIMARY KEY,
        payload TEXT NOT NULL,
        updated_at TEXT NOT NULL
    )`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Load reads the settings row, returning zero-value data when none exists.
func (s *Store) Load(ctx context.Context) (Data, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM settings WHERE id = ?`, settingsID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Data{APIKeys: make(map[string]map[string]string)}, nil
	}
	if err != nil {
		return Data{}, fmt.Errorf("load settings: %w", err)
	}

	var data Data
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return Data{}, fmt.Errorf("parse settings payload: %w", err)
	}
	if data.APIKeys == nil {
		data.APIKeys = make(map[string]map[string]string)
	}
	return data, nil
}

// Save overwrites the settings row with data.
func (s *Store) Save(ctx context.Context, data Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode settings payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (id, payload, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		settingsID,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Update loads the current data, applies mutator, and saves the result.
func (s *Store) Update(ctx context.Context, mutator func(*Data)) error {
	data, err := s.Load(ctx)
	if err != nil {
		return err
	}
	mutator(&data)
	return s.Save(ctx, data)
}

// ProviderKeys implements providers.Credentials from the stored API keys.
func (s *Store) ProviderKeys(provider string) (map[string]string, error) {
	data, err := s.Load(context.Background())
	if err != nil {
		return nil, err
	}
	keys, ok := data.APIKeys[provider]
	if !ok || len(keys) == 0 {
		return nil, providers.Wrap(providers.ErrMissingCredential, provider, "keys", "no stored credentials", nil)
	}
	return keys, nil
}
