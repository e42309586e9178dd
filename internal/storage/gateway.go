package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Options configures a Gateway.
type Options struct {
	// UseServer routes operations to the remote backend when true,
	// otherwise directly to the local store.
	UseServer bool

	// LocalFallback enables the one-shot degrade to the local store
	// when a remote call fails. It is a single fallback, not a retry
	// loop.
	LocalFallback bool
}

// Metadata is the bookkeeping document kept under MetadataEntity.
type Metadata struct {
	LastSync time.Time `json:"lastSync"`
}

// Gateway sits between the entity services and durable storage. It
// selects the primary backend (remote vs local), encodes the fallback
// policy explicitly, snapshots the previous value before every write,
// and maintains the lastSync metadata.
//
// Writes are last-writer-wins: overlapping read-modify-write cycles
// from separate processes have no conflict detection.
type Gateway struct {
	mu        sync.RWMutex
	remote    Backend
	local     Backend
	useServer bool
	fallback  bool

	// Logf receives fallback warnings. Defaults to log.Printf.
	Logf func(format string, args ...interface{})
}

// NewGateway builds a gateway over a remote backend and a local store.
// remote may be nil when UseServer is false.
func NewGateway(remote, local Backend, opts Options) *Gateway {
	return &Gateway{
		remote:    remote,
		local:     local,
		useServer: opts.UseServer && remote != nil,
		fallback:  opts.LocalFallback,
		Logf:      log.Printf,
	}
}

// SetUseServerStorage flips the primary backend at runtime.
func (g *Gateway) SetUseServerStorage(useServer bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.useServer = useServer && g.remote != nil
}

// UseServerStorage reports whether the remote backend is primary.
func (g *Gateway) UseServerStorage() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.useServer
}

// primary returns the currently selected backend and whether a
// fallback to the local store is applicable.
func (g *Gateway) primary() (Backend, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.useServer {
		return g.remote, g.fallback
	}
	return g.local, false
}

// Read returns the raw entity document. A miss is reported as
// ErrNotFound so callers can degrade to a default value; any other
// primary failure retries once against the local store when fallback
// is enabled.
func (g *Gateway) Read(ctx context.Context, entity, filename string) ([]byte, error) {
	primary, canFallback := g.primary()

	data, err := primary.Read(ctx, entity, filename)
	if err == nil {
		return data, nil
	}
	if IsNotFound(err) || !canFallback {
		return nil, err
	}

	g.Logf("storage: read %s via server failed, falling back to local store: %v", entity, err)
	return g.local.Read(ctx, entity, filename)
}

// Write snapshots the previous value into the single-slot backup,
// replaces the document, and touches the lastSync metadata. A primary
// failure degrades to the local store with a warning when fallback is
// enabled; otherwise the returned error wraps ErrWriteFailed.
func (g *Gateway) Write(ctx context.Context, entity, filename string, data []byte) error {
	primary, canFallback := g.primary()

	if entity != MetadataEntity {
		g.snapshot(ctx, primary, entity, filename)
	}

	err := primary.Write(ctx, entity, filename, data)
	if err != nil && canFallback {
		g.Logf("storage: write %s via server failed, falling back to local store: %v", entity, err)
		err = g.local.Write(ctx, entity, filename, data)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteFailed, entity, err)
	}

	if entity != MetadataEntity {
		g.touchLastSync(ctx)
	}
	return nil
}

// snapshot copies the current document into the single-slot backup.
// Best effort: a failed snapshot never blocks the write itself.
func (g *Gateway) snapshot(ctx context.Context, primary Backend, entity, filename string) {
	cur, err := primary.Read(ctx, entity, filename)
	if err != nil {
		return
	}
	if err := primary.Write(ctx, entity, snapshotName(filename), cur); err != nil {
		g.Logf("storage: snapshotting %s before write failed: %v", entity, err)
	}
}

// snapshotName returns the single-slot backup document name for a
// given filename.
func snapshotName(filename string) string {
	if filename == "" {
		return "_backup"
	}
	return filename + "_backup"
}

// touchLastSync records the time of the last successful non-metadata
// write. Best effort.
func (g *Gateway) touchLastSync(ctx context.Context) {
	payload, err := json.Marshal(Metadata{LastSync: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := g.Write(ctx, MetadataEntity, "", payload); err != nil {
		g.Logf("storage: updating lastSync metadata failed: %v", err)
	}
}

// Exists reports whether the entity document has been persisted,
// consulting the local store when the primary fails.
func (g *Gateway) Exists(ctx context.Context, entity, filename string) (bool, error) {
	primary, canFallback := g.primary()

	exists, err := primary.Exists(ctx, entity, filename)
	if err != nil && canFallback {
		g.Logf("storage: exists check for %s via server failed, falling back to local store: %v", entity, err)
		return g.local.Exists(ctx, entity, filename)
	}
	return exists, err
}

// CreateBackup snapshots the entity document on the primary backend.
func (g *Gateway) CreateBackup(ctx context.Context, entity, filename string) (string, error) {
	primary, canFallback := g.primary()

	id, err := primary.CreateBackup(ctx, entity, filename)
	if err != nil && canFallback && !IsNotFound(err) {
		g.Logf("storage: backup of %s via server failed, falling back to local store: %v", entity, err)
		return g.local.CreateBackup(ctx, entity, filename)
	}
	return id, err
}

// RestoreFromBackup restores a backup on the primary backend.
func (g *Gateway) RestoreFromBackup(ctx context.Context, entity, backupID string) error {
	primary, canFallback := g.primary()

	err := primary.RestoreFromBackup(ctx, entity, backupID)
	if err != nil && canFallback && !IsNotFound(err) {
		g.Logf("storage: restore of %s via server failed, falling back to local store: %v", entity, err)
		return g.local.RestoreFromBackup(ctx, entity, backupID)
	}
	return err
}

// LastSync returns the recorded lastSync metadata, zero when none has
// been written yet.
func (g *Gateway) LastSync(ctx context.Context) (time.Time, error) {
	data, err := g.Read(ctx, MetadataEntity, "")
	if err != nil {
		if IsNotFound(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return time.Time{}, fmt.Errorf("decoding metadata: %w", err)
	}
	return meta.LastSync, nil
}
