package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// S3Options configures an S3-compatible bucket (AWS, MinIO, R2)
type S3Options struct {
	Endpoint       string
	Region         string
	AccessKey      string
	SecretKey      string
	PublicBaseURL  string
	ForcePathStyle bool
}

// S3Bucket implements Bucket on an S3-compatible object store
type S3Bucket struct {
	client        *s3.Client
	publicBaseURL string
	logger        *zap.Logger
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3Bucket builds an S3 client from static credentials
func NewS3Bucket(ctx context.Context, opts S3Options, logger *zap.Logger) (*S3Bucket, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})

	publicBaseURL := opts.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = strings.TrimRight(opts.Endpoint, "/")
	}

	logger.Info("S3 storage initialized",
		zap.String("bucket", BucketName),
		zap.String("endpoint", opts.Endpoint),
		zap.String("region", opts.Region),
	)

	return newS3BucketWithClient(client, publicBaseURL, logger), nil
}

func newS3BucketWithClient(client *s3.Client, publicBaseURL string, logger *zap.Logger) *S3Bucket {
	return &S3Bucket{
		client:        client,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// Upload puts the object with If-None-Match: * so existing keys are never replaced.
// The body is buffered because request signing needs a seekable payload.
func (b *S3Bucket) Upload(ctx context.Context, objectName, contentType string, data io.Reader) (int64, error) {
	if err := validateObjectName(objectName); err != nil {
		return 0, err
	}

	body, err := io.ReadAll(data)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload body: %w", err)
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(BucketName),
		Key:           aws.String(objectName),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "PreconditionFailed" || apiErr.ErrorCode() == "ConditionalRequestConflict") {
			return 0, fmt.Errorf("%w: %s", ErrObjectExists, objectName)
		}
		return 0, fmt.Errorf("failed to put object: %w", err)
	}

	b.logger.Info("File uploaded to S3",
		zap.String("key", objectName),
		zap.String("contentType", contentType),
		zap.Int("size", len(body)),
	)

	return int64(len(body)), nil
}

// PublicURL returns the public URL of an object
func (b *S3Bucket) PublicURL(objectName string) string {
	return publicObjectURL(b.publicBaseURL, objectName)
}

// Remove deletes all named objects in a single DeleteObjects request
func (b *S3Bucket) Remove(ctx context.Context, objectNames []string) error {
	if len(objectNames) == 0 {
		return nil
	}

	ids := make([]types.ObjectIdentifier, 0, len(objectNames))
	for _, name := range objectNames {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(name)})
	}

	out, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(BucketName),
		Delete: &types.Delete{
			Objects: ids,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}

	var errs []error
	for _, e := range out.Errors {
		if aws.ToString(e.Code) == "NoSuchKey" {
			continue
		}
		errs = append(errs, fmt.Errorf("failed to delete object %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
	}
	return errors.Join(errs...)
}

// List pages through every object in the bucket
func (b *S3Bucket) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(BucketName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			info := ObjectInfo{
				Name: aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}

	return objects, nil
}

// Open streams an object body
func (b *S3Bucket) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(BucketName),
		Key:    aws.String(objectName),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, objectName)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return out.Body, nil
}

// Ping issues a HeadBucket request
func (b *S3Bucket) Ping(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(BucketName)})
	if err != nil {
		return fmt.Errorf("s3 bucket unavailable: %w", err)
	}
	return nil
}
