// Package testutil provides helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"anoa.com/yamdb/internal/bootstrap"
	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/database"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.Options(false))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps the shared in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given username and role.
func CreateUser(t *testing.T, db *gorm.DB, username string, role entity.Role) *entity.User {
	t.Helper()

	u := &entity.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}
