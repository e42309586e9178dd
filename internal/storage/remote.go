package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RemoteBackend is a thin HTTP client for the storage API:
//
//	GET  /api/storage/{entity}?operation=read|exists&filename=
//	POST /api/storage/{entity}?operation=write|backup|restore
//
// It handles JSON marshaling and maps a 404 on read to ErrNotFound.
type RemoteBackend struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteBackend creates a storage API client. The baseURL should be
// the root URL of the storage server (e.g. http://localhost:8420).
func NewRemoteBackend(baseURL string, timeout time.Duration) *RemoteBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// endpoint builds the request URL for an entity and operation.
func (b *RemoteBackend) endpoint(entity, operation, filename string) string {
	q := url.Values{}
	q.Set("operation", operation)
	if filename != "" {
		q.Set("filename", filename)
	}
	return b.baseURL + "/api/storage/" + url.PathEscape(entity) + "?" + q.Encode()
}

// do executes the request and returns the response body for 2xx
// statuses. Error bodies of the form {"error": "..."} are unwrapped
// into the returned error.
func (b *RemoteBackend) do(ctx context.Context, method, reqURL string, body interface{}) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing %s %s: %w", method, reqURL, err)
	}
	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return nil, resp.StatusCode, fmt.Errorf(
				"storage api %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, resp.StatusCode, fmt.Errorf(
			"storage api returned status %d", resp.StatusCode)
	}

	return respBody, resp.StatusCode, nil
}

// Read fetches the raw entity document. A 404 maps to ErrNotFound.
func (b *RemoteBackend) Read(ctx context.Context, entity, filename string) ([]byte, error) {
	body, status, err := b.do(ctx, http.MethodGet, b.endpoint(entity, "read", filename), nil)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, entity)
		}
		return nil, err
	}
	return body, nil
}

// Write replaces the entity document on the server.
func (b *RemoteBackend) Write(ctx context.Context, entity, filename string, data []byte) error {
	payload := map[string]json.RawMessage{"data": json.RawMessage(data)}
	_, _, err := b.do(ctx, http.MethodPost, b.endpoint(entity, "write", filename), payload)
	if err != nil {
		return fmt.Errorf("writing %s: %w", entity, err)
	}
	return nil
}

// Exists asks the server whether the entity document has been
// persisted.
func (b *RemoteBackend) Exists(ctx context.Context, entity, filename string) (bool, error) {
	body, _, err := b.do(ctx, http.MethodGet, b.endpoint(entity, "exists", filename), nil)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", entity, err)
	}
	var result struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("decoding exists response for %s: %w", entity, err)
	}
	return result.Exists, nil
}

// CreateBackup asks the server to snapshot the entity document.
func (b *RemoteBackend) CreateBackup(ctx context.Context, entity, filename string) (string, error) {
	payload := map[string]string{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	body, _, err := b.do(ctx, http.MethodPost, b.endpoint(entity, "backup", filename), payload)
	if err != nil {
		return "", fmt.Errorf("backing up %s: %w", entity, err)
	}
	var result struct {
		BackupID string `json:"backupId"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding backup response for %s: %w", entity, err)
	}
	return result.BackupID, nil
}

// RestoreFromBackup asks the server to restore a previous backup over
// the entity's default document.
func (b *RemoteBackend) RestoreFromBackup(ctx context.Context, entity, backupID string) error {
	payload := map[string]string{"backupId": backupID}
	_, _, err := b.do(ctx, http.MethodPost, b.endpoint(entity, "restore", ""), payload)
	if err != nil {
		return fmt.Errorf("restoring %s from %s: %w", entity, backupID, err)
	}
	return nil
}
