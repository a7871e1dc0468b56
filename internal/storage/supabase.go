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

	"server/internal/domain"
	"server/internal/imageproc"
)

// supabaseStore talks to the Supabase Storage REST API with a service-role
// key. Uploads go into the "uploads" and "generated" buckets; reads use the
// authenticated object endpoint so the proxy can serve private buckets.
type supabaseStore struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	privateACL bool
}

func newSupabaseStore(opts Options) (*supabaseStore, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(opts.SupabaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("storage: supabase url is required")
	}
	return &supabaseStore{
		baseURL:    baseURL,
		serviceKey: opts.SupabaseServiceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		privateACL: opts.PrivateACL,
	}, nil
}

func (s *supabaseStore) Backend() Backend { return BackendSupabase }

func (s *supabaseStore) SaveOriginal(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error) {
	return s.save(ctx, objectKey(uploadsPrefix, "upload", extension, false), data, extension)
}

func (s *supabaseStore) SaveGenerated(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error) {
	return s.save(ctx, objectKey(generatedPrefix, "generated", extension, false), data, extension)
}

// save uploads to /storage/v1/object/{bucket}/{file} without upsert, so an
// unexpected key collision fails loudly instead of overwriting.
func (s *supabaseStore) save(ctx context.Context, key string, data []byte, extension string) (domain.StoredArtifact, error) {
	endpoint := s.baseURL + "/storage/v1/object/" + escapeKey(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return domain.StoredArtifact{}, &domain.StorageWriteError{Backend: string(BackendSupabase), Key: key, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", imageproc.MIMETypeFor("."+extension))
	req.Header.Set("x-upsert", "false")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.StoredArtifact{}, &domain.StorageWriteError{Backend: string(BackendSupabase), Key: key, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return domain.StoredArtifact{}, &domain.StorageWriteError{
			Backend: string(BackendSupabase),
			Key:     key,
			Err:     apiError(resp),
		}
	}

	url := s.baseURL + "/storage/v1/object/public/" + escapeKey(key)
	if s.privateACL {
		url = proxyURL(key)
	}
	return domain.StoredArtifact{URL: url, Backend: string(BackendSupabase)}, nil
}

func (s *supabaseStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	endpoint := s.baseURL + "/storage/v1/object/" + escapeKey(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", &domain.StorageReadError{Backend: string(BackendSupabase), Key: key, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", &domain.StorageReadError{Backend: string(BackendSupabase), Key: key, Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, "", &domain.StorageReadError{Backend: string(BackendSupabase), Key: key, Err: domain.ErrObjectNotFound}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, "", &domain.StorageReadError{Backend: string(BackendSupabase), Key: key, Err: apiError(resp)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = imageproc.MIMETypeFor(key)
	}
	return resp.Body, contentType, nil
}

// escapeKey escapes each path segment while keeping the bucket/file shape.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func apiError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Message != "" {
			return fmt.Errorf("supabase status %d: %s", resp.StatusCode, payload.Message)
		}
		if payload.Error != "" {
			return fmt.Errorf("supabase status %d: %s", resp.StatusCode, payload.Error)
		}
	}
	return fmt.Errorf("supabase status %d", resp.StatusCode)
}
