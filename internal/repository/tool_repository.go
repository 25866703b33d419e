package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/toolshelf/internal/domain"
	"gorm.io/gorm"
)

type ToolRepository struct {
	db *gorm.DB
}

func NewToolRepository(db *gorm.DB) *ToolRepository {
	return &ToolRepository{db: db}
}

// List returns every tool, newest first
func (r *ToolRepository) List(ctx context.Context) ([]domain.Tool, error) {
	var tools []domain.Tool
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&tools).Error
	return tools, err
}

func (r *ToolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tool, error) {
	var tool domain.Tool
	err := r.db.WithContext(ctx).First(&tool, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

func (r *ToolRepository) Create(ctx context.Context, tool *domain.Tool) error {
	return r.db.WithContext(ctx).Create(tool).Error
}

// Update writes every column of an existing tool. It returns
// gorm.ErrRecordNotFound when no row carries the tool's id.
func (r *ToolRepository) Update(ctx context.Context, tool *domain.Tool) error {
	result := r.db.WithContext(ctx).
		Model(tool).
		Select("*").
		Omit("id", "created_at").
		Updates(tool)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a tool by id. It returns gorm.ErrRecordNotFound when no row matched.
func (r *ToolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Tool{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListURLs returns every url and image_url value currently stored
func (r *ToolRepository) ListURLs(ctx context.Context) ([]string, error) {
	var rows []struct {
		URL      string
		ImageURL string
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Tool{}).
		Select("url", "image_url").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(rows)*2)
	for _, row := range rows {
		if row.URL != "" {
			urls = append(urls, row.URL)
		}
		if row.ImageURL != "" {
			urls = append(urls, row.ImageURL)
		}
	}
	return urls, nil
}

// Count returns the number of tools
func (r *ToolRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Tool{}).Count(&count).Error
	return count, err
}
