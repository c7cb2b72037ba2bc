package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/validator"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Genre{},
		&entity.Title{},
		&entity.Review{},
		&entity.Comment{},
	)
}

// CreateSuperuser creates a superuser with the admin role, or promotes the
// existing user with the same username and email.
func CreateSuperuser(ctx context.Context, db *gorm.DB, username, email string) (*entity.User, error) {
	if !validator.ValidUsername(username) {
		return nil, fmt.Errorf("invalid username %q", username)
	}

	var user entity.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = entity.User{
			Username:    username,
			Email:       email,
			Role:        entity.RoleAdmin,
			IsSuperuser: true,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	case err != nil:
		return nil, err
	}

	if user.Email != email {
		return nil, fmt.Errorf("user %q exists with a different email", username)
	}

	user.Role = entity.RoleAdmin
	user.IsSuperuser = true
	if err := db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SeedAdminUser creates the development superuser once.
func SeedAdminUser(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.User{}).
		Where("username = ?", "admin").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}

	if _, err := CreateSuperuser(ctx, db, "admin", "admin@yamdb.local"); err != nil {
		return err
	}

	slog.Info("admin user seeded", "username", "admin", "email", "admin@yamdb.local")
	return nil
}
