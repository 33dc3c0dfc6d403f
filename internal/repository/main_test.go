package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"nestaway/internal/config"
	"nestaway/internal/database"
	"nestaway/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory sqlite store with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{
		Env:          "test",
		DBDriver:     "sqlite",
		DBSQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.ApplySchema(context.Background(), db, cfg))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, repo UserRepository, email string, verified bool) *models.User {
	t.Helper()
	u := &models.User{FirstName: "Test", LastName: "User", Email: email, Password: "hash", Verified: verified}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}
