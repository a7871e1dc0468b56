// Package storage persists pipeline artifacts across three interchangeable
// backends: the local filesystem (development), an S3-compatible public
// object store, and a Supabase-style keyed storage service.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
)

// Backend identifies one of the persistence strategies.
type Backend string

const (
	BackendLocal    Backend = "local-filesystem"
	BackendS3       Backend = "public-object-store"
	BackendSupabase Backend = "private-object-store"
)

// Store is the persistence surface the pipeline depends on. Save calls
// return a StoredArtifact naming the URL under which the object is reachable
// and the backend that holds it; Open streams an object back for the blob
// proxy.
type Store interface {
	Backend() Backend
	SaveOriginal(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error)
	SaveGenerated(ctx context.Context, data []byte, extension string) (domain.StoredArtifact, error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// Options is the configuration snapshot that drives backend selection.
type Options struct {
	// S3 (public object store). Selected when bucket and both credentials
	// are present.
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKeyID   string
	S3SecretKey     string
	S3PublicBaseURL string
	S3UsePathStyle  bool

	// Supabase-style keyed storage. Selected when URL and service key are
	// present and S3 is not configured.
	SupabaseURL        string
	SupabaseServiceKey string

	// Local fallback.
	LocalDir string

	// PrivateACL makes Save calls hand out proxy URLs (/api/blob?pathname=)
	// instead of direct object URLs.
	PrivateACL bool

	// ReadOnlyFS marks deployment targets without a writable filesystem;
	// falling back to local storage there is a configuration error.
	ReadOnlyFS bool
}

// ErrNoWritableBackend is returned when neither object store is configured
// and the execution environment cannot write locally.
var ErrNoWritableBackend = errors.New("storage: no object store configured and filesystem is read-only")

// ChooseBackend is a pure function of the configuration snapshot: S3 wins
// when its write credentials are set, then Supabase, then the local
// filesystem unless the deployment target is read-only.
func ChooseBackend(opts Options) (Backend, error) {
	if opts.S3Bucket != "" && opts.S3AccessKeyID != "" && opts.S3SecretKey != "" {
		return BackendS3, nil
	}
	if opts.SupabaseURL != "" && opts.SupabaseServiceKey != "" {
		return BackendSupabase, nil
	}
	if opts.ReadOnlyFS {
		return "", ErrNoWritableBackend
	}
	return BackendLocal, nil
}

// Resolve builds the Store for the current configuration snapshot. Called
// once per process start; the returned handle is injected everywhere a
// backend is needed.
func Resolve(ctx context.Context, opts Options) (Store, error) {
	backend, err := ChooseBackend(opts)
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendS3:
		return newS3Store(ctx, opts)
	case BackendSupabase:
		return newSupabaseStore(opts)
	default:
		return newLocalStore(opts)
	}
}

// Artifact key prefixes. Filenames are never derived from user input.
const (
	uploadsPrefix   = "uploads/"
	generatedPrefix = "generated/"
)

// objectKey builds `{prefix}{kind}-{millis}.{ext}`, optionally with a random
// suffix for backends where millisecond timestamps alone can collide.
func objectKey(prefix, kind, extension string, unique bool) string {
	name := fmt.Sprintf("%s-%d", kind, time.Now().UnixMilli())
	if unique {
		name += "-" + uuid.NewString()[:8]
	}
	return prefix + name + "." + extension
}

func proxyURL(key string) string {
	return "/api/blob?pathname=" + key
}
