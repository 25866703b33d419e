package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/repository"
	"github.com/straye-as/toolshelf/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestToolRepository_List_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewToolRepository(db)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	oldest := testutil.CreateTestTool(t, db, "oldest", base)
	newest := testutil.CreateTestTool(t, db, "newest", base.Add(2*time.Hour))
	middle := testutil.CreateTestTool(t, db, "middle", base.Add(time.Hour))

	tools, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, tools, 3)
	assert.Equal(t, newest.ID, tools[0].ID)
	assert.Equal(t, middle.ID, tools[1].ID)
	assert.Equal(t, oldest.ID, tools[2].ID)
}

func TestToolRepository_Create_AssignsIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewToolRepository(db)

	tool := &domain.Tool{
		Title:       "Color Mover",
		Description: "Moves colors",
		URL:         "https://example.com/color",
		Tags:        []string{"design", "css"},
	}

	require.NoError(t, repo.Create(context.Background(), tool))

	assert.NotEqual(t, uuid.Nil, tool.ID)
	assert.False(t, tool.CreatedAt.IsZero())

	stored, err := repo.GetByID(context.Background(), tool.ID)
	require.NoError(t, err)
	assert.Equal(t, "Color Mover", stored.Title)
	assert.Equal(t, []string{"design", "css"}, stored.Tags)
}

func TestToolRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewToolRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestToolRepository_Update_KeepsCreatedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewToolRepository(db)
	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tool := testutil.CreateTestTool(t, db, "before", createdAt)

	tool.Title = "after"
	tool.Tags = []string{"changed"}
	require.NoError(t, repo.Update(context.Background(), tool))

	stored, err := repo.GetByID(context.Background(), tool.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", stored.Title)
	assert.Equal(t, []string{"changed"}, stored.Tags)
	assert.True(t, createdAt.Equal(stored.CreatedAt))
}

func TestToolRepository_Update_MissingRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewToolRepository(db)

	err := repo.Update(context.Background(), &domain.Tool{ID: uuid.New(), Title: "ghost"})

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestToolRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewToolRepository(db)
	keep := testutil.CreateTestTool(t, db, "keep", time.Now())
	drop := testutil.CreateTestTool(t, db, "drop", time.Now())

	require.NoError(t, repo.Delete(context.Background(), drop.ID))

	tools, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, keep.ID, tools[0].ID)

	assert.ErrorIs(t, repo.Delete(context.Background(), drop.ID), gorm.ErrRecordNotFound)
}

func TestToolRepository_ListURLs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewToolRepository(db)

	withImage := &domain.Tool{
		Title:       "a",
		Description: "a",
		URL:         "https://cdn.example.com/tool-files/a_1.html",
		ImageURL:    "https://cdn.example.com/tool-files/a_1.png",
	}
	withoutImage := &domain.Tool{Title: "b", Description: "b", URL: "https://external.example.org"}
	require.NoError(t, repo.Create(context.Background(), withImage))
	require.NoError(t, repo.Create(context.Background(), withoutImage))

	urls, err := repo.ListURLs(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"https://cdn.example.com/tool-files/a_1.html",
		"https://cdn.example.com/tool-files/a_1.png",
		"https://external.example.org",
	}, urls)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
