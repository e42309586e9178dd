package storage

import (
	"context"
	"errors"
	"testing"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(":memory:", "prodman")
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLocalStoreRoundTrip(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	payload := []byte(`{"theme":"dark"}`)
	if err := s.Write(ctx, "settings", "", payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := s.Read(ctx, "settings", "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("round trip mismatch: got %s, want %s", got, payload)
	}

	// Overwrite replaces, not appends.
	updated := []byte(`{"theme":"light"}`)
	if err := s.Write(ctx, "settings", "", updated); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = s.Read(ctx, "settings", "")
	if err != nil {
		t.Fatalf("read after overwrite: %v", err)
	}
	if string(got) != string(updated) {
		t.Errorf("overwrite mismatch: got %s, want %s", got, updated)
	}
}

func TestLocalStoreReadMissing(t *testing.T) {
	s := newTestLocalStore(t)

	_, err := s.Read(context.Background(), "todos", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStoreNamedFilesAreSeparateKeys(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, "notes", "", []byte(`["main"]`)); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if err := s.Write(ctx, "notes", "draft", []byte(`["draft"]`)); err != nil {
		t.Fatalf("write named: %v", err)
	}

	got, err := s.Read(ctx, "notes", "")
	if err != nil {
		t.Fatalf("read default: %v", err)
	}
	if string(got) != `["main"]` {
		t.Errorf("default document clobbered: got %s", got)
	}
}

func TestLocalStoreBackupRestore(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	v1 := []byte(`["v1"]`)
	if err := s.Write(ctx, "todos", "", v1); err != nil {
		t.Fatalf("write: %v", err)
	}
	backupID, err := s.CreateBackup(ctx, "todos", "")
	if err != nil {
		t.Fatalf("backup: %v", err)
	}

	if err := s.Write(ctx, "todos", "", []byte(`["v2"]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.RestoreFromBackup(ctx, "todos", backupID); err != nil {
		t.Fatalf("restore: %v", err)
	}

	got, err := s.Read(ctx, "todos", "")
	if err != nil {
		t.Fatalf("read after restore: %v", err)
	}
	if string(got) != string(v1) {
		t.Errorf("restore mismatch: got %s, want %s", got, v1)
	}
}

func TestLocalStoreInvalidPrefix(t *testing.T) {
	if _, err := NewLocalStore(":memory:", "bad prefix"); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("expected ErrInvalidEntity, got %v", err)
	}
}
