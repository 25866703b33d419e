package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// LocalPublicPrefix is the route under which the API serves local objects
const LocalPublicPrefix = "/storage/v1/object/public"

// LocalBucket implements Bucket on the local filesystem
type LocalBucket struct {
	basePath      string
	publicBaseURL string
}

// NewLocalBucket creates a local bucket rooted at basePath/tool-files
func NewLocalBucket(basePath, publicBaseURL string) (*LocalBucket, error) {
	root := filepath.Join(basePath, BucketName)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalBucket{
		basePath:      root,
		publicBaseURL: publicBaseURL,
	}, nil
}

// Upload writes the object, refusing to replace an existing file
func (b *LocalBucket) Upload(ctx context.Context, objectName, contentType string, data io.Reader) (int64, error) {
	if err := validateObjectName(objectName); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fullPath := filepath.Join(b.basePath, objectName)
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, fmt.Errorf("%w: %s", ErrObjectExists, objectName)
		}
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, data)
	if err != nil {
		os.Remove(fullPath) // Cleanup on error
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return size, nil
}

// PublicURL returns the URL the API serves this object under
func (b *LocalBucket) PublicURL(objectName string) string {
	return publicObjectURL(b.publicBaseURL, objectName)
}

// Remove deletes every named file. Missing files are ignored.
func (b *LocalBucket) Remove(ctx context.Context, objectNames []string) error {
	var errs []error
	for _, name := range objectNames {
		if err := validateObjectName(name); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(filepath.Join(b.basePath, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to delete file %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// List returns every file in the bucket sorted by name
func (b *LocalBucket) List(ctx context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(b.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage directory: %w", err)
	}

	objects := make([]ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		objects = append(objects, ObjectInfo{
			Name:         entry.Name(),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

// Open opens a stored file for reading
func (b *LocalBucket) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	if err := validateObjectName(objectName); err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(b.basePath, objectName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, objectName)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Ping checks that the bucket directory is still there
func (b *LocalBucket) Ping(ctx context.Context) error {
	info, err := os.Stat(b.basePath)
	if err != nil {
		return fmt.Errorf("storage directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", b.basePath)
	}
	return nil
}
