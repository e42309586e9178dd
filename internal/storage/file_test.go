package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileBackend(t *testing.T) *FileBackend {
	t.Helper()
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	return b
}

func TestFileBackendRoundTrip(t *testing.T) {
	b := newTestFileBackend(t)
	ctx := context.Background()

	payload := []byte(`[{"id":"1","title":"water the plants"}]`)
	if err := b.Write(ctx, "todos", "", payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := b.Read(ctx, "todos", "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("round trip mismatch: got %s, want %s", got, payload)
	}
}

func TestFileBackendReadMissing(t *testing.T) {
	b := newTestFileBackend(t)

	_, err := b.Read(context.Background(), "todos", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileBackendInvalidNames(t *testing.T) {
	b := newTestFileBackend(t)
	ctx := context.Background()

	for _, entity := range []string{"", "../etc", "a b", "todos/x"} {
		if err := b.Write(ctx, entity, "", []byte("{}")); !errors.Is(err, ErrInvalidEntity) {
			t.Errorf("entity %q: expected ErrInvalidEntity, got %v", entity, err)
		}
	}
	if _, err := b.Read(ctx, "todos", "../secret"); !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("expected ErrInvalidEntity for bad filename, got %v", err)
	}
}

func TestFileBackendExists(t *testing.T) {
	b := newTestFileBackend(t)
	ctx := context.Background()

	exists, err := b.Exists(ctx, "notes", "")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("expected missing entity to not exist")
	}

	if err := b.Write(ctx, "notes", "", []byte("[]")); err != nil {
		t.Fatalf("write: %v", err)
	}
	exists, err = b.Exists(ctx, "notes", "")
	if err != nil {
		t.Fatalf("exists after write: %v", err)
	}
	if !exists {
		t.Error("expected entity to exist after write")
	}
}

func TestFileBackendBackupRestore(t *testing.T) {
	b := newTestFileBackend(t)
	ctx := context.Background()

	v1 := []byte(`["first"]`)
	v2 := []byte(`["second"]`)
	if err := b.Write(ctx, "todos", "", v1); err != nil {
		t.Fatalf("write v1: %v", err)
	}

	backupID, err := b.CreateBackup(ctx, "todos", "")
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if backupID == "" {
		t.Fatal("empty backup id")
	}

	if err := b.Write(ctx, "todos", "", v2); err != nil {
		t.Fatalf("write v2: %v", err)
	}
	if err := b.RestoreFromBackup(ctx, "todos", backupID); err != nil {
		t.Fatalf("restore: %v", err)
	}

	got, err := b.Read(ctx, "todos", "")
	if err != nil {
		t.Fatalf("read after restore: %v", err)
	}
	if string(got) != string(v1) {
		t.Errorf("restore mismatch: got %s, want %s", got, v1)
	}
}

func TestFileBackendBackupMissing(t *testing.T) {
	b := newTestFileBackend(t)

	if _, err := b.CreateBackup(context.Background(), "todos", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound backing up missing entity, got %v", err)
	}
}

func TestFileBackendRestoreBadBackupID(t *testing.T) {
	b := newTestFileBackend(t)

	err := b.RestoreFromBackup(context.Background(), "todos", "../../etc/passwd")
	if !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("expected ErrInvalidEntity, got %v", err)
	}
}

func TestFileBackendLayout(t *testing.T) {
	root := t.TempDir()
	b, err := NewFileBackend(root)
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	ctx := context.Background()

	if err := b.Write(ctx, "projects", "", []byte("[]")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "projects", "data.json")); err != nil {
		t.Errorf("expected projects/data.json on disk: %v", err)
	}

	if err := b.Write(ctx, "projects", "archive", []byte("[]")); err != nil {
		t.Fatalf("write named file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "projects", "archive.json")); err != nil {
		t.Errorf("expected projects/archive.json on disk: %v", err)
	}
}
