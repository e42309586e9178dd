package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// defaultDocument is the file name used when no filename is given.
const defaultDocument = "data"

var backupIDRe = regexp.MustCompile(`^backup_[0-9]+$`)

// FileBackend persists each entity as a JSON file under its own
// directory inside a data root:
//
//	<root>/<entity>/data.json
//	<root>/<entity>/<filename>.json
//	<root>/<entity>/backup_<unix-ms>.json
//
// This is the server-side durable layout behind the storage API.
type FileBackend struct {
	root string
}

// NewFileBackend creates the data root if needed and returns a backend
// rooted there.
func NewFileBackend(root string) (*FileBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating data root %s: %w", root, err)
	}
	return &FileBackend{root: root}, nil
}

// path resolves and validates the file path for an entity document.
func (b *FileBackend) path(entity, filename string) (string, error) {
	if !ValidName(entity) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntity, entity)
	}
	if filename == "" {
		filename = defaultDocument
	} else if !ValidName(filename) {
		return "", fmt.Errorf("%w: file %q", ErrInvalidEntity, filename)
	}
	return filepath.Join(b.root, entity, filename+".json"), nil
}

// Read returns the raw document bytes, or ErrNotFound when the file
// does not exist.
func (b *FileBackend) Read(ctx context.Context, entity, filename string) ([]byte, error) {
	path, err := b.path(entity, filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, entity)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Write replaces the document, creating the entity directory on first
// use. The write goes through a temp file and rename so a crashed
// write never leaves a truncated document behind.
func (b *FileBackend) Write(ctx context.Context, entity, filename string, data []byte) error {
	path, err := b.path(entity, filename)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating entity directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Exists reports whether the entity document has been persisted.
func (b *FileBackend) Exists(ctx context.Context, entity, filename string) (bool, error) {
	path, err := b.path(entity, filename)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	return true, nil
}

// CreateBackup snapshots the current document under a timestamped
// backup id and returns that id.
func (b *FileBackend) CreateBackup(ctx context.Context, entity, filename string) (string, error) {
	data, err := b.Read(ctx, entity, filename)
	if err != nil {
		return "", fmt.Errorf("backing up %s: %w", entity, err)
	}
	backupID := fmt.Sprintf("backup_%d", time.Now().UnixMilli())
	if err := b.Write(ctx, entity, backupID, data); err != nil {
		return "", fmt.Errorf("backing up %s: %w", entity, err)
	}
	return backupID, nil
}

// RestoreFromBackup writes a previously created backup back over the
// entity's default document.
func (b *FileBackend) RestoreFromBackup(ctx context.Context, entity, backupID string) error {
	if !backupIDRe.MatchString(backupID) {
		return fmt.Errorf("%w: backup id %q", ErrInvalidEntity, backupID)
	}
	data, err := b.Read(ctx, entity, backupID)
	if err != nil {
		return fmt.Errorf("restoring %s from %s: %w", entity, backupID, err)
	}
	if err := b.Write(ctx, entity, "", data); err != nil {
		return fmt.Errorf("restoring %s from %s: %w", entity, backupID, err)
	}
	return nil
}
