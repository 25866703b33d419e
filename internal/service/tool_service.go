package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/metrics"
	"github.com/straye-as/toolshelf/internal/repository"
	"github.com/straye-as/toolshelf/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ToolService translates catalog intents into table and bucket calls
type ToolService struct {
	toolRepo *repository.ToolRepository
	bucket   storage.Bucket
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewToolService creates a new ToolService. metrics may be nil.
func NewToolService(
	toolRepo *repository.ToolRepository,
	bucket storage.Bucket,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *ToolService {
	return &ToolService{
		toolRepo: toolRepo,
		bucket:   bucket,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// FetchAll returns every tool, newest first. A failed read is logged and
// answered with an empty list.
func (s *ToolService) FetchAll(ctx context.Context) []domain.Tool {
	tools, err := s.toolRepo.List(ctx)
	if err != nil {
		s.logger.Error("failed to fetch tools", zap.Error(err))
		s.metrics.IncReadFailure("fetch_all")
		return []domain.Tool{}
	}
	return tools
}

// GetByID returns a single tool
func (s *ToolService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tool, error) {
	tool, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tool: %w", err)
	}
	return tool, nil
}

// Create inserts a tool and returns the stored row
func (s *ToolService) Create(ctx context.Context, input domain.ToolInput) (*domain.Tool, error) {
	tool := &domain.Tool{}
	input.Patch().Apply(tool)

	if err := validateTool(tool); err != nil {
		return nil, err
	}

	if err := s.toolRepo.Create(ctx, tool); err != nil {
		return nil, fmt.Errorf("failed to create tool: %w", err)
	}

	stored, err := s.toolRepo.GetByID(ctx, tool.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back created tool: %w", err)
	}

	s.logger.Info("tool created",
		zap.String("tool_id", stored.ID.String()),
		zap.String("title", stored.Title),
	)

	return stored, nil
}

// Update applies a partial update to the tool matching id and returns the
// stored row. id and created_at never change.
func (s *ToolService) Update(ctx context.Context, id uuid.UUID, patch domain.ToolPatch) (*domain.Tool, error) {
	tool, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(tool)
	if err := validateTool(tool); err != nil {
		return nil, err
	}

	if err := s.toolRepo.Update(ctx, tool); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update tool: %w", err)
	}

	stored, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read back updated tool: %w", err)
	}

	s.logger.Info("tool updated", zap.String("tool_id", id.String()))

	return stored, nil
}

// Delete removes the bucket objects a tool references, then the tool row.
// Cleanup is best effort: its failure is logged and the row is deleted
// anyway. A failed row delete is returned.
func (s *ToolService) Delete(ctx context.Context, tool *domain.Tool) error {
	paths := storage.ObjectPaths(tool.URL, tool.ImageURL)
	if len(paths) > 0 {
		if err := s.bucket.Remove(ctx, paths); err != nil {
			s.logger.Warn("failed to remove tool files from storage",
				zap.Error(err),
				zap.String("tool_id", tool.ID.String()),
				zap.Strings("paths", paths),
			)
		}
	}

	if err := s.toolRepo.Delete(ctx, tool.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete tool: %w", err)
	}

	s.logger.Info("tool deleted", zap.String("tool_id", tool.ID.String()))

	return nil
}

// DeleteByID loads a tool and deletes it with its files
func (s *ToolService) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tool, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.Delete(ctx, tool)
}

// UploadFile stores a file under "{nameHint}_{unixMillis}.{ext}" and
// returns where it can be fetched from. Existing objects are never replaced.
func (s *ToolService) UploadFile(ctx context.Context, file domain.FileUpload, nameHint string) (*domain.UploadFileResponse, error) {
	if file.Data == nil {
		return nil, fmt.Errorf("%w: file content is required", ErrInvalidInput)
	}

	contentType, data, err := storage.ContentTypeFor(file.Filename, file.ContentType, file.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type: %w", err)
	}

	objectName := storage.ObjectName(nameHint, file.Filename, s.now())

	size, err := s.bucket.Upload(ctx, objectName, contentType, data)
	if err != nil {
		if errors.Is(err, storage.ErrObjectExists) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		if errors.Is(err, storage.ErrInvalidObjectName) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	s.metrics.AddUploadedBytes(size)

	publicURL := s.bucket.PublicURL(objectName)

	s.logger.Info("file uploaded",
		zap.String("object", objectName),
		zap.String("content_type", contentType),
		zap.Int64("size", size),
	)

	return &domain.UploadFileResponse{
		URL:         publicURL,
		ObjectName:  objectName,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// SweepOrphans removes bucket objects that no tool references and that were
// last modified more than olderThan ago. It returns how many were removed.
func (s *ToolService) SweepOrphans(ctx context.Context, olderThan time.Duration) (int, error) {
	urls, err := s.toolRepo.ListURLs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list referenced urls: %w", err)
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, p := range storage.ObjectPaths(urls...) {
		referenced[p] = struct{}{}
	}

	objects, err := s.bucket.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list bucket objects: %w", err)
	}

	cutoff := s.now().Add(-olderThan)
	var orphans []string
	for _, obj := range objects {
		if _, ok := referenced[obj.Name]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		orphans = append(orphans, obj.Name)
	}

	if len(orphans) == 0 {
		return 0, nil
	}

	if err := s.bucket.Remove(ctx, orphans); err != nil {
		return 0, fmt.Errorf("failed to remove orphaned objects: %w", err)
	}
	s.metrics.AddOrphansRemoved(len(orphans))

	s.logger.Info("orphaned objects removed",
		zap.Int("count", len(orphans)),
		zap.Strings("objects", orphans),
	)

	return len(orphans), nil
}

// OpenObject streams a stored object for the local public route
func (s *ToolService) OpenObject(ctx context.Context, objectName string) (io.ReadCloser, error) {
	rc, err := s.bucket.Open(ctx, objectName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidObjectName) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return rc, nil
}

func validateTool(tool *domain.Tool) error {
	switch {
	case strings.TrimSpace(tool.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case strings.TrimSpace(tool.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case strings.TrimSpace(tool.URL) == "":
		return fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	return nil
}
