package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// failingBackend simulates an unreachable storage server.
type failingBackend struct{}

var errUnreachable = errors.New("connection refused")

func (failingBackend) Read(ctx context.Context, entity, filename string) ([]byte, error) {
	return nil, errUnreachable
}

func (failingBackend) Write(ctx context.Context, entity, filename string, data []byte) error {
	return errUnreachable
}

func (failingBackend) Exists(ctx context.Context, entity, filename string) (bool, error) {
	return false, errUnreachable
}

func (failingBackend) CreateBackup(ctx context.Context, entity, filename string) (string, error) {
	return "", errUnreachable
}

func (failingBackend) RestoreFromBackup(ctx context.Context, entity, backupID string) error {
	return errUnreachable
}

func TestGatewayLocalRoundTrip(t *testing.T) {
	local := newTestLocalStore(t)
	gw := NewGateway(nil, local, Options{})
	ctx := context.Background()

	payload := []byte(`[{"id":"a"}]`)
	if err := gw.Write(ctx, "todos", "", payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := gw.Read(ctx, "todos", "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("round trip mismatch: got %s, want %s", got, payload)
	}
}

func TestGatewayReadMissIsNotFound(t *testing.T) {
	gw := NewGateway(nil, newTestLocalStore(t), Options{})

	_, err := gw.Read(context.Background(), "notes", "")
	if !IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGatewayWriteFallsBackToLocal(t *testing.T) {
	local := newTestLocalStore(t)
	gw := NewGateway(failingBackend{}, local, Options{UseServer: true, LocalFallback: true})

	var warnings []string
	gw.Logf = func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	ctx := context.Background()
	payload := []byte(`[{"id":"a"}]`)
	if err := gw.Write(ctx, "todos", "", payload); err != nil {
		t.Fatalf("expected fallback write to succeed, got %v", err)
	}

	// The write must have landed in the local store.
	got, err := local.Read(ctx, "todos", "")
	if err != nil {
		t.Fatalf("reading local store: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("local store content mismatch: got %s, want %s", got, payload)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "falling back") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a fallback warning, got %q", warnings)
	}
}

func TestGatewayWriteFailsWithoutFallback(t *testing.T) {
	gw := NewGateway(failingBackend{}, newTestLocalStore(t), Options{UseServer: true})
	gw.Logf = func(string, ...interface{}) {}

	err := gw.Write(context.Background(), "todos", "", []byte("[]"))
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("expected ErrWriteFailed, got %v", err)
	}
}

func TestGatewayReadFallsBackToLocal(t *testing.T) {
	local := newTestLocalStore(t)
	gw := NewGateway(failingBackend{}, local, Options{UseServer: true, LocalFallback: true})
	gw.Logf = func(string, ...interface{}) {}
	ctx := context.Background()

	if err := local.Write(ctx, "notes", "", []byte(`["cached"]`)); err != nil {
		t.Fatalf("seeding local store: %v", err)
	}

	got, err := gw.Read(ctx, "notes", "")
	if err != nil {
		t.Fatalf("expected fallback read to succeed, got %v", err)
	}
	if string(got) != `["cached"]` {
		t.Errorf("fallback read mismatch: got %s", got)
	}
}

func TestGatewayWriteSnapshotsPreviousValue(t *testing.T) {
	local := newTestLocalStore(t)
	gw := NewGateway(nil, local, Options{})
	ctx := context.Background()

	if err := gw.Write(ctx, "todos", "", []byte(`["v1"]`)); err != nil {
		t.Fatalf("write v1: %v", err)
	}
	if err := gw.Write(ctx, "todos", "", []byte(`["v2"]`)); err != nil {
		t.Fatalf("write v2: %v", err)
	}

	snap, err := local.Read(ctx, "todos", "_backup")
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if string(snap) != `["v1"]` {
		t.Errorf("snapshot mismatch: got %s, want [\"v1\"]", snap)
	}
}

func TestGatewayWriteTouchesLastSync(t *testing.T) {
	gw := NewGateway(nil, newTestLocalStore(t), Options{})
	ctx := context.Background()

	before, err := gw.LastSync(ctx)
	if err != nil {
		t.Fatalf("lastSync before write: %v", err)
	}
	if !before.IsZero() {
		t.Errorf("expected zero lastSync before any write, got %v", before)
	}

	if err := gw.Write(ctx, "todos", "", []byte("[]")); err != nil {
		t.Fatalf("write: %v", err)
	}
	after, err := gw.LastSync(ctx)
	if err != nil {
		t.Fatalf("lastSync after write: %v", err)
	}
	if after.IsZero() {
		t.Error("expected lastSync to be set after a write")
	}
}

func TestGatewaySetUseServerStorageWithoutRemote(t *testing.T) {
	gw := NewGateway(nil, newTestLocalStore(t), Options{UseServer: true})

	// With no remote configured the gateway must stay on local.
	if gw.UseServerStorage() {
		t.Error("expected local mode when no remote backend is configured")
	}
	gw.SetUseServerStorage(true)
	if gw.UseServerStorage() {
		t.Error("expected SetUseServerStorage(true) to be ignored without a remote")
	}

	if err := gw.Write(context.Background(), "todos", "", []byte("[]")); err != nil {
		t.Errorf("local write: %v", err)
	}
}
