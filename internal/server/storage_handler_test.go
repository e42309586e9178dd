package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/megactek/productivity-management/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("creating file backend: %v", err)
	}
	return New(backend)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decodeBody(t, w)["status"]; got != "ok" {
		t.Errorf("expected status ok, got %v", got)
	}
}

func TestStorageWriteThenRead(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/storage/todos?operation=write",
		`{"data":[{"id":"1","title":"from api"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("write: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodGet, "/api/storage/todos?operation=read", "")
	if w.Code != http.StatusOK {
		t.Fatalf("read: expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != `[{"id":"1","title":"from api"}]` {
		t.Errorf("read mismatch: got %s", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}

func TestStorageReadMissing(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/storage/todos", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if _, ok := decodeBody(t, w)["error"]; !ok {
		t.Error("expected an error body")
	}
}

func TestStorageInvalidEntity(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/storage/bad.name", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad entity name, got %d", w.Code)
	}

	w = do(t, s, http.MethodGet, "/api/storage/todos?filename=bad.name", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad filename, got %d", w.Code)
	}
}

func TestStorageUnsupportedOperation(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/storage/todos?operation=peek", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unsupported GET operation, got %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/api/storage/todos?operation=truncate", "{}")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unsupported POST operation, got %d", w.Code)
	}
}

func TestStorageWriteMissingData(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/storage/todos?operation=write", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when data is missing, got %d", w.Code)
	}
}

func TestStorageExists(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/storage/notes?operation=exists", "")
	if w.Code != http.StatusOK {
		t.Fatalf("exists: expected 200, got %d", w.Code)
	}
	if got := decodeBody(t, w)["exists"]; got != false {
		t.Errorf("expected exists false, got %v", got)
	}

	if w := do(t, s, http.MethodPost, "/api/storage/notes?operation=write", `{"data":[]}`); w.Code != http.StatusOK {
		t.Fatalf("write: expected 200, got %d", w.Code)
	}

	w = do(t, s, http.MethodGet, "/api/storage/notes?operation=exists", "")
	if got := decodeBody(t, w)["exists"]; got != true {
		t.Errorf("expected exists true, got %v", got)
	}
}

func TestStorageBackupRestore(t *testing.T) {
	s := newTestServer(t)

	if w := do(t, s, http.MethodPost, "/api/storage/projects?operation=write", `{"data":["v1"]}`); w.Code != http.StatusOK {
		t.Fatalf("write v1: expected 200, got %d", w.Code)
	}

	w := do(t, s, http.MethodPost, "/api/storage/projects?operation=backup", "")
	if w.Code != http.StatusOK {
		t.Fatalf("backup: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	backupID, _ := decodeBody(t, w)["backupId"].(string)
	if backupID == "" {
		t.Fatal("expected a backupId")
	}

	if w := do(t, s, http.MethodPost, "/api/storage/projects?operation=write", `{"data":["v2"]}`); w.Code != http.StatusOK {
		t.Fatalf("write v2: expected 200, got %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/api/storage/projects?operation=restore",
		`{"backupId":"`+backupID+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("restore: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodGet, "/api/storage/projects", "")
	if got := w.Body.String(); got != `["v1"]` {
		t.Errorf("expected restored content, got %s", got)
	}
}

func TestStorageBackupMissingEntity(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/storage/ghost?operation=backup", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 backing up a missing entity, got %d", w.Code)
	}
}

func TestStorageRestoreMissingBackupID(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/storage/todos?operation=restore", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when backupId is missing, got %d", w.Code)
	}
}
