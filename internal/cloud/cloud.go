// Package cloud is the remote blob channel: an opaque key-addressed byte
// store used for cross-device backup of the menu. Backends are S3-compatible
// object storage (AWS, Cloudflare R2, MinIO), Supabase Storage, a local
// directory, and an in-memory store.
package cloud

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared by all backends.
var (
	ErrNotFound     = errors.New("object not found")
	ErrExists       = errors.New("object already exists")
	ErrUnauthorized = errors.New("unauthorized")
)

// BlobStore uploads and downloads whole objects by key.
type BlobStore interface {
	// Upload writes data under key. With overwrite false an existing
	// object is left in place and ErrExists is returned.
	Upload(ctx context.Context, key string, data []byte, overwrite bool) error
	// Download returns the object stored under key, or ErrNotFound.
	Download(ctx context.Context, key string) ([]byte, error)
}

// Backend names accepted by configuration.
const (
	BackendS3       = "s3"
	BackendSupabase = "supabase"
	BackendDir      = "dir"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	Bucket      string
	Dir         string
	S3          S3Options
	SupabaseURL string
	SupabaseKey string
}

// Open builds the configured backend. An empty Backend returns nil, nil:
// cloud backup is off.
func Open(ctx context.Context, o Options) (BlobStore, error) {
	var (
		store BlobStore
		err   error
	)
	switch o.Backend {
	case "":
		return nil, nil
	case BackendS3:
		s3opts := o.S3
		if s3opts.Bucket == "" {
			s3opts.Bucket = o.Bucket
		}
		var s *S3Store
		if s, err = NewS3Store(ctx, s3opts); err == nil {
			store = s
		}
	case BackendSupabase:
		var s *SupabaseStore
		if s, err = NewSupabaseStore(o.SupabaseURL, o.SupabaseKey, o.Bucket); err == nil {
			store = s
		}
	case BackendDir:
		var s *DirStore
		if s, err = NewDirStore(o.Dir); err == nil {
			store = s
		}
	default:
		return nil, fmt.Errorf("unknown cloud backend %q", o.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
