package storage

import (
	"context"
	"errors"
	"regexp"
)

// Sentinel errors shared by all backends.
var (
	// ErrNotFound is returned by Read when no data has been persisted
	// for the addressed entity. Callers translate it into a
	// type-appropriate default value rather than surfacing it.
	ErrNotFound = errors.New("storage: not found")

	// ErrWriteFailed wraps any persist failure that could not be
	// absorbed by the fallback path.
	ErrWriteFailed = errors.New("storage: write failed")

	// ErrInvalidEntity is returned for entity or file names outside
	// the allowed character set.
	ErrInvalidEntity = errors.New("storage: invalid entity name")
)

// MetadataEntity is the reserved entity holding gateway bookkeeping
// such as the lastSync timestamp.
const MetadataEntity = "metadata"

// IsNotFound reports whether err represents a storage miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidName reports whether name is a legal entity or file name.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// Backend is the storage strategy interface. An empty filename
// addresses the entity's default document.
//
// Read returns ErrNotFound when nothing has been persisted; Write
// replaces the whole document; CreateBackup snapshots the current
// document under a timestamped backup id; RestoreFromBackup writes a
// previously created backup back over the default document.
type Backend interface {
	Read(ctx context.Context, entity, filename string) ([]byte, error)
	Write(ctx context.Context, entity, filename string, data []byte) error
	Exists(ctx context.Context, entity, filename string) (bool, error)
	CreateBackup(ctx context.Context, entity, filename string) (string, error)
	RestoreFromBackup(ctx context.Context, entity, backupID string) error
}
