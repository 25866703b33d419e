package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"go.uber.org/zap"
)

// AzureBlobBucket implements Bucket on an Azure Blob Storage container
type AzureBlobBucket struct {
	client        *azblob.Client
	publicBaseURL string
	logger        *zap.Logger
}

// NewAzureBlobBucket connects to the storage account and makes sure the
// tool-files container exists with anonymous blob read access.
func NewAzureBlobBucket(ctx context.Context, connectionString, publicBaseURL string, logger *zap.Logger) (*AzureBlobBucket, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	_, err = client.CreateContainer(ctx, BucketName, &azblob.CreateContainerOptions{
		Access: to.Ptr(container.PublicAccessTypeBlob),
	})
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	if publicBaseURL == "" {
		publicBaseURL = strings.TrimRight(client.URL(), "/")
	}

	logger.Info("Azure Blob Storage initialized",
		zap.String("container", BucketName),
		zap.String("publicBaseURL", publicBaseURL),
	)

	return &AzureBlobBucket{
		client:        client,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}, nil
}

// Upload streams the blob with If-None-Match: * so existing blobs are never replaced
func (b *AzureBlobBucket) Upload(ctx context.Context, objectName, contentType string, data io.Reader) (int64, error) {
	if err := validateObjectName(objectName); err != nil {
		return 0, err
	}

	uploadOptions := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: to.Ptr(contentType),
		},
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{
				IfNoneMatch: to.Ptr(azcore.ETagAny),
			},
		},
	}

	reader := &countingReader{r: data}

	_, err := b.client.UploadStream(ctx, BucketName, objectName, reader, uploadOptions)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
			return 0, fmt.Errorf("%w: %s", ErrObjectExists, objectName)
		}
		return 0, fmt.Errorf("failed to upload blob: %w", err)
	}

	b.logger.Info("File uploaded to Azure Blob Storage",
		zap.String("blobName", objectName),
		zap.String("contentType", contentType),
		zap.Int64("size", reader.count),
	)

	return reader.count, nil
}

// PublicURL returns the anonymous-read URL of a blob
func (b *AzureBlobBucket) PublicURL(objectName string) string {
	return publicObjectURL(b.publicBaseURL, objectName)
}

// Remove deletes every named blob. Blobs that are already gone are ignored.
func (b *AzureBlobBucket) Remove(ctx context.Context, objectNames []string) error {
	var errs []error
	for _, name := range objectNames {
		_, err := b.client.DeleteBlob(ctx, BucketName, name, nil)
		if err != nil {
			if bloberror.HasCode(err, bloberror.BlobNotFound) {
				b.logger.Debug("Blob already deleted or not found", zap.String("blobName", name))
				continue
			}
			errs = append(errs, fmt.Errorf("failed to delete blob %s: %w", name, err))
			continue
		}
		b.logger.Info("File deleted from Azure Blob Storage", zap.String("blobName", name))
	}
	return errors.Join(errs...)
}

// List enumerates every blob in the container
func (b *AzureBlobBucket) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	pager := b.client.NewListBlobsFlatPager(BucketName, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			info := ObjectInfo{Name: *item.Name}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					info.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					info.LastModified = *item.Properties.LastModified
				}
			}
			objects = append(objects, info)
		}
	}

	return objects, nil
}

// Open downloads a blob as a stream
func (b *AzureBlobBucket) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	resp, err := b.client.DownloadStream(ctx, BucketName, objectName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, objectName)
		}
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	return resp.Body, nil
}

// Ping reads the container properties
func (b *AzureBlobBucket) Ping(ctx context.Context) error {
	_, err := b.client.ServiceClient().NewContainerClient(BucketName).GetProperties(ctx, nil)
	if err != nil {
		return fmt.Errorf("blob container unavailable: %w", err)
	}
	return nil
}
