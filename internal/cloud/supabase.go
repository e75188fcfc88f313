package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SupabaseStore talks to the Supabase Storage REST API for one bucket.
type SupabaseStore struct {
	BaseURL string
	APIKey  string
	Bucket  string
	HTTP    *http.Client
}

// NewSupabaseStore creates a client for bucket at baseURL
// (e.g. https://xyz.supabase.co).
func NewSupabaseStore(baseURL, apiKey, bucket string) (*SupabaseStore, error) {
	if baseURL == "" || bucket == "" {
		return nil, errors.New("supabase: url and bucket are required")
	}
	return &SupabaseStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Bucket:  bucket,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// storageError is the error body returned by the storage API. StatusCode
// is a string and may differ from the HTTP status (a missing object comes
// back as HTTP 400 with statusCode "404").
type storageError struct {
	StatusCode string `json:"statusCode"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *storageError) Error() string {
	return fmt.Sprintf("storage %s: %s", e.Code, e.Message)
}

// Upload implements BlobStore.
func (s *SupabaseStore) Upload(ctx context.Context, key string, data []byte, overwrite bool) error {
	path := "/storage/v1/object/" + url.PathEscape(s.Bucket) + "/" + escapeKey(key)
	header := http.Header{}
	header.Set("Content-Type", "application/octet-stream")
	header.Set("x-upsert", strconv.FormatBool(overwrite))
	_, err := s.doRequest(ctx, http.MethodPost, path, header, data)
	return err
}

// Download implements BlobStore.
func (s *SupabaseStore) Download(ctx context.Context, key string) ([]byte, error) {
	path := "/storage/v1/object/authenticated/" + url.PathEscape(s.Bucket) + "/" + escapeKey(key)
	return s.doRequest(ctx, http.MethodGet, path, nil, nil)
}

func (s *SupabaseStore) doRequest(ctx context.Context, method, path string, header http.Header, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
		req.Header.Set("apikey", s.APIKey)
	}

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		status := resp.StatusCode
		var apiErr storageError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			if n, err := strconv.Atoi(apiErr.StatusCode); err == nil {
				status = n
			}
			switch status {
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
			case http.StatusNotFound:
				return nil, fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
			case http.StatusConflict:
				return nil, fmt.Errorf("%w: %s", ErrExists, apiErr.Message)
			default:
				return nil, &apiErr
			}
		}
		switch status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, ErrUnauthorized
		case http.StatusNotFound:
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("HTTP %d: %s", status, string(respBody))
	}

	return respBody, nil
}

func escapeKey(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
