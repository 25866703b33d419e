package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/straye-as/toolshelf/internal/config"
	"go.uber.org/zap"
)

// BucketName is the logical bucket every tool file lives in. Public URLs
// embed it as a path segment, which is how object names are recovered.
const BucketName = "tool-files"

var (
	// ErrObjectExists is returned when an upload would overwrite an object
	ErrObjectExists = errors.New("object already exists")
	// ErrObjectNotFound is returned when an object does not exist
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidObjectName is returned for names that would escape the bucket
	ErrInvalidObjectName = errors.New("invalid object name")
)

// ObjectInfo describes one stored object
type ObjectInfo struct {
	Name         string
	Size         int64
	LastModified time.Time
}

// Bucket is the blob half of the storage adapter
type Bucket interface {
	// Upload stores data under objectName. It never overwrites: an existing
	// object yields ErrObjectExists. Returns the number of bytes stored.
	Upload(ctx context.Context, objectName, contentType string, data io.Reader) (int64, error)
	// PublicURL resolves the public URL of an object
	PublicURL(objectName string) string
	// Remove deletes all named objects in one request. Missing objects are ignored.
	Remove(ctx context.Context, objectNames []string) error
	// List enumerates every object in the bucket
	List(ctx context.Context) ([]ObjectInfo, error)
	// Open streams an object's content
	Open(ctx context.Context, objectName string) (io.ReadCloser, error)
	// Ping checks that the bucket is reachable
	Ping(ctx context.Context) error
}

// NewBucket creates the bucket driver selected by cfg.Mode
func NewBucket(ctx context.Context, cfg *config.StorageConfig, publicURL string, logger *zap.Logger) (Bucket, error) {
	switch cfg.Mode {
	case "local", "":
		return NewLocalBucket(cfg.LocalBasePath, publicURL+LocalPublicPrefix)
	case "azure", "cloud":
		if cfg.AzureConnectionString == "" {
			return nil, fmt.Errorf("azure connection string required for azure storage")
		}
		return NewAzureBlobBucket(ctx, cfg.AzureConnectionString, cfg.AzurePublicBaseURL, logger)
	case "s3":
		return NewS3Bucket(ctx, S3Options{
			Endpoint:       cfg.S3Endpoint,
			Region:         cfg.S3Region,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			PublicBaseURL:  cfg.S3PublicBaseURL,
			ForcePathStyle: cfg.S3ForcePathStyle,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// countingReader wraps an io.Reader and counts the number of bytes read
type countingReader struct {
	r     io.Reader
	count int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}
