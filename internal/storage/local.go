package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// LocalStore is the local fallback backend, a prefix-keyed key-value
// table in SQLite standing in for the browser's localStorage:
//
//	<prefix>_<entity>
//	<prefix>_<entity>_<filename>
//	<prefix>_<entity>_backup_<unix-ms>
type LocalStore struct {
	db     *sqlx.DB
	prefix string
}

// NewLocalStore opens (or creates) the SQLite database at dbPath and
// applies the schema. Use ":memory:" for an ephemeral store.
func NewLocalStore(dbPath, prefix string) (*LocalStore, error) {
	if prefix == "" || !ValidName(prefix) {
		return nil, fmt.Errorf("%w: prefix %q", ErrInvalidEntity, prefix)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening local store %s: %w", dbPath, err)
	}

	// A single connection keeps ":memory:" databases coherent across
	// queries.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &LocalStore{db: db, prefix: prefix}, nil
}

// Close closes the underlying database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// key resolves and validates the storage key for an entity document.
func (s *LocalStore) key(entity, filename string) (string, error) {
	if !ValidName(entity) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntity, entity)
	}
	key := s.prefix + "_" + entity
	if filename != "" {
		if !ValidName(filename) {
			return "", fmt.Errorf("%w: file %q", ErrInvalidEntity, filename)
		}
		key += "_" + filename
	}
	return key, nil
}

// Read returns the raw document bytes, or ErrNotFound when the key has
// never been written.
func (s *LocalStore) Read(ctx context.Context, entity, filename string) ([]byte, error) {
	key, err := s.key(entity, filename)
	if err != nil {
		return nil, err
	}
	var value []byte
	err = s.db.GetContext(ctx, &value, "SELECT value FROM kv WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, entity)
		}
		return nil, fmt.Errorf("reading key %s: %w", key, err)
	}
	return value, nil
}

// Write replaces the document under the entity's key.
func (s *LocalStore) Write(ctx context.Context, entity, filename string, data []byte) error {
	key, err := s.key(entity, filename)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the entity document has been persisted.
func (s *LocalStore) Exists(ctx context.Context, entity, filename string) (bool, error) {
	key, err := s.key(entity, filename)
	if err != nil {
		return false, err
	}
	var count int
	if err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM kv WHERE key = ?", key); err != nil {
		return false, fmt.Errorf("checking key %s: %w", key, err)
	}
	return count > 0, nil
}

// CreateBackup snapshots the current document under a timestamped
// backup key and returns the backup id.
func (s *LocalStore) CreateBackup(ctx context.Context, entity, filename string) (string, error) {
	data, err := s.Read(ctx, entity, filename)
	if err != nil {
		return "", fmt.Errorf("backing up %s: %w", entity, err)
	}
	backupID := fmt.Sprintf("backup_%d", time.Now().UnixMilli())
	if err := s.Write(ctx, entity, backupID, data); err != nil {
		return "", fmt.Errorf("backing up %s: %w", entity, err)
	}
	return backupID, nil
}

// RestoreFromBackup writes a previously created backup back over the
// entity's default document.
func (s *LocalStore) RestoreFromBackup(ctx context.Context, entity, backupID string) error {
	if !backupIDRe.MatchString(backupID) {
		return fmt.Errorf("%w: backup id %q", ErrInvalidEntity, backupID)
	}
	data, err := s.Read(ctx, entity, backupID)
	if err != nil {
		return fmt.Errorf("restoring %s from %s: %w", entity, backupID, err)
	}
	if err := s.Write(ctx, entity, "", data); err != nil {
		return fmt.Errorf("restoring %s from %s: %w", entity, backupID, err)
	}
	return nil
}
