package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentgpt/agentgpt/internal/config"
	"github.com/agentgpt/agentgpt/internal/vault"
	_ "modernc.org/sqlite"
)

// Store persists the durable subset of the gateway state: the current agent
// configuration and the named saved-configuration list. Tasks, logs and the
// execution flag are session state and never touch the database.
type Store struct {
	db    *sql.DB
	vault *vault.Vault
}

// New opens (creating if needed) the SQLite database. v may be nil, in
// which case API keys are stored in the clear.
func New(cfg config.StoreConfig, v *vault.Vault) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Enable WAL mode for concurrent read/write access and set a busy
	// timeout so writers retry instead of immediately returning SQLITE_BUSY.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("exec %s: %w", p, err)
		}
	}

	s := &Store{db: db, vault: v}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS current_agent (
			id             INTEGER PRIMARY KEY CHECK (id = 1),
			name           TEXT NOT NULL,
			goal           TEXT NOT NULL,
			provider       TEXT NOT NULL,
			model          TEXT NOT NULL,
			api_key        TEXT NOT NULL,
			max_iterations INTEGER NOT NULL,
			temperature    REAL NOT NULL,
			updated_at     DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS saved_agents (
			name           TEXT PRIMARY KEY,
			goal           TEXT NOT NULL,
			provider       TEXT NOT NULL,
			model          TEXT NOT NULL,
			api_key        TEXT NOT NULL,
			max_iterations INTEGER NOT NULL,
			temperature    REAL NOT NULL,
			position       INTEGER NOT NULL,
			updated_at     DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_saved_agents_position ON saved_agents(position)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}

	return nil
}

func (s *Store) sealKey(plaintext string) (string, error) {
	if s.vault == nil {
		return plaintext, nil
	}
	return s.vault.Seal(plaintext)
}

func (s *Store) openKey(token string) (string, error) {
	if s.vault == nil {
		return token, nil
	}
	return s.vault.Open(token)
}
