// Package settings provides spoolguard's durable local state: a small
// namespaced key/value store (notably the active spool id) and a log of past
// check sessions. Backed by SQLite with WAL mode so the CLI can read while a
// check is writing.
package settings

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Namespace and key of the active spool setting. The names mirror the
// Moonraker database entry maintained by its Spoolman component, so the value
// is portable between the two stores.
const (
	NamespaceMoonraker = "moonraker"
	ActiveSpoolKey     = "spoolman.spool_id"
)

// Store is a handle to the settings database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the settings database at path.
// Applies pragmas and the schema automatically; safe to call repeatedly.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect settings database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// GetItem reads a JSON-decoded value from a namespace.
// The boolean return is false when the key is absent.
func (s *Store) GetItem(ctx context.Context, namespace, key string, out any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE namespace = ? AND key = ?
	`, namespace, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read setting %s/%s: %w", namespace, key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode setting %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

// SetItem writes a JSON-encoded value into a namespace, replacing any
// previous value.
func (s *Store) SetItem(ctx context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s/%s: %w", namespace, key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (namespace, key, value) VALUES (?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value
	`, namespace, key, string(raw))
	if err != nil {
		return fmt.Errorf("write setting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// DeleteItem removes a key. Deleting an absent key is not an error.
func (s *Store) DeleteItem(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM settings WHERE namespace = ? AND key = ?
	`, namespace, key)
	if err != nil {
		return fmt.Errorf("delete setting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// ActiveSpoolID returns the currently active spool id.
// The boolean return is false when no active spool is set.
func (s *Store) ActiveSpoolID(ctx context.Context) (int, bool, error) {
	var id int
	ok, err := s.GetItem(ctx, NamespaceMoonraker, ActiveSpoolKey, &id)
	if err != nil {
		return 0, false, err
	}
	return id, ok, nil
}

// SetActiveSpoolID records the active spool id.
func (s *Store) SetActiveSpoolID(ctx context.Context, id int) error {
	return s.SetItem(ctx, NamespaceMoonraker, ActiveSpoolKey, id)
}

// ClearActiveSpoolID removes the active spool setting.
func (s *Store) ClearActiveSpoolID(ctx context.Context) error {
	return s.DeleteItem(ctx, NamespaceMoonraker, ActiveSpoolKey)
}
