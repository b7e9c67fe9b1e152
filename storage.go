package brandsite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStorage is the binary side of an image: bucket-scoped keys holding
// the encoded payload. The metadata row in the Store references the object
// by (bucket, path).
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string, upsert bool) error
	Remove(ctx context.Context, bucket string, keys []string) error
}

// DiskStorage implements ObjectStorage on the local filesystem: each bucket
// is a subdirectory of Root, each key a file path below it.
type DiskStorage struct {
	Root string
}

// NewDiskStorage returns a DiskStorage rooted at dir.
func NewDiskStorage(dir string) *DiskStorage {
	return &DiskStorage{Root: dir}
}

func (d *DiskStorage) objectPath(bucket, key string) (string, error) {
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("invalid object key %q", key)
		}
	}
	if bucket == "" || strings.ContainsAny(bucket, "/\\") {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	return filepath.Join(d.Root, bucket, filepath.FromSlash(key)), nil
}

// Upload writes an object. Without upsert, an existing key is an error.
func (d *DiskStorage) Upload(_ context.Context, bucket, key string, data []byte, _ string, upsert bool) error {
	path, err := d.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if !upsert {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("object %s/%s already exists", bucket, key)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// Remove deletes objects. Keys that are already gone are not an error.
func (d *DiskStorage) Remove(_ context.Context, bucket string, keys []string) error {
	for _, key := range keys {
		path, err := d.objectPath(bucket, key)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove object: %w", err)
		}
	}
	return nil
}

// PublicURL builds the public URL for an object:
// {base}/storage/v1/object/public/{bucket}/{percent-encoded path segments}.
func PublicURL(baseURL, bucket, objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimSuffix(baseURL, "/") +
		"/storage/v1/object/public/" +
		url.PathEscape(bucket) + "/" +
		strings.Join(segments, "/")
}
