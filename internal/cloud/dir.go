package cloud

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirStore keeps objects as files below a root directory, for a synced
// folder or a mounted share.
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at root, creating it if needed.
func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		return nil, errors.New("dir store: root is empty")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("dir store: %w", err)
	}
	return &DirStore{root: root}, nil
}

func (d *DirStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || filepath.IsAbs(clean) ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("dir store: invalid key %q", key)
	}
	return filepath.Join(d.root, clean), nil
}

// Upload implements BlobStore. The object is written to a temp file and
// renamed into place.
func (d *DirStore) Upload(ctx context.Context, key string, data []byte, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(p); err == nil {
			return ErrExists
		}
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, p)
}

// Download implements BlobStore.
func (d *DirStore) Download(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}
