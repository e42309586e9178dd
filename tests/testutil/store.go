package testutil

import (
	"testing"

	"github.com/megactek/productivity-management/internal/storage"
)

// NewLocalStore creates an in-memory LocalStore. It automatically
// closes the store when the test completes.
func NewLocalStore(t *testing.T) *storage.LocalStore {
	t.Helper()

	s, err := storage.NewLocalStore(":memory:", "test")
	if err != nil {
		t.Fatalf("creating test local store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test local store: %v", err)
		}
	})

	return s
}

// NewGateway creates a gateway backed only by an in-memory local
// store.
func NewGateway(t *testing.T) *storage.Gateway {
	t.Helper()
	return storage.NewGateway(nil, NewLocalStore(t), storage.Options{})
}

// NewFileBackend creates a FileBackend rooted in a temp directory.
func NewFileBackend(t *testing.T) *storage.FileBackend {
	t.Helper()

	b, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("creating test file backend: %v", err)
	}
	return b
}
