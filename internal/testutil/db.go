// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/toolshelf/internal/database"
	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the tools table
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN keeps every pooled connection on the same database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// CreateTestTool inserts a tool with the given title and creation time
func CreateTestTool(t *testing.T, db *gorm.DB, title string, createdAt time.Time) *domain.Tool {
	t.Helper()

	tool := &domain.Tool{
		Title:       title,
		Description: title + " description",
		URL:         "https://example.com/" + title,
		Tags:        []string{"test"},
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(tool).Error)
	return tool
}
