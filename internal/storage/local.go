package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"server/internal/domain"
	"server/internal/imageproc"
)

// localStore persists artifacts under a public/ directory on the local
// filesystem. Intended for development and test environments where no object
// storage service is available.
type localStore struct {
	baseDir    string
	privateACL bool
}

func newLocalStore(opts Options) (*localStore, error) {
	baseDir := strings.TrimSpace(opts.LocalDir)
	if baseDir == "" {
		baseDir = "public"
	}
	for _, sub := range []string{uploadsPrefix, generatedPrefix} {
		if err := os.MkdirAll(filepath.Join(baseDir, filepath.FromSlash(strings.TrimSuffix(sub, "/"))), 0o755); err != nil {
			return nil, fmt.Errorf("storage: ensure %s: %w", sub, err)
		}
	}
	return &localStore{baseDir: baseDir, privateACL: opts.PrivateACL}, nil
}

func (s *localStore) Backend() Backend { return BackendLocal }

func (s *localStore) SaveOriginal(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error) {
	return s.save(ctx, objectKey(uploadsPrefix, "upload", extension, false), data)
}

func (s *localStore) SaveGenerated(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error) {
	return s.save(ctx, objectKey(generatedPrefix, "generated", extension, false), data)
}

func (s *localStore) save(ctx context.Context, key string, data []byte) (domain.StoredArtifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredArtifact{}, &domain.StorageWriteError{Backend: string(BackendLocal), Key: key, Err: err}
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return domain.StoredArtifact{}, &domain.StorageWriteError{Backend: string(BackendLocal), Key: key, Err: err}
	}
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return domain.StoredArtifact{}, &domain.StorageWriteError{Backend: string(BackendLocal), Key: cleanKey, Err: err}
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return domain.StoredArtifact{}, &domain.StorageWriteError{Backend: string(BackendLocal), Key: cleanKey, Err: err}
	}
	url := "/" + cleanKey
	if s.privateACL {
		url = proxyURL(cleanKey)
	}
	return domain.StoredArtifact{URL: url, Backend: string(BackendLocal)}, nil
}

func (s *localStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, "", &domain.StorageReadError{Backend: string(BackendLocal), Key: key, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, "", &domain.StorageReadError{Backend: string(BackendLocal), Key: cleanKey, Err: err}
	}
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(cleanKey))
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			err = domain.ErrObjectNotFound
		}
		return nil, "", &domain.StorageReadError{Backend: string(BackendLocal), Key: cleanKey, Err: err}
	}
	return f, imageproc.MIMETypeFor(cleanKey), nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
