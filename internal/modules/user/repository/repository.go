package repository

import (
	"context"
	"time"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.User, int64, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetConfirmationCode(ctx context.Context, id uuid.UUID, hash string, issuedAt time.Time) error
	ConsumeConfirmationCode(ctx context.Context, id uuid.UUID, hash string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.User, int64, error) {
	var users []*entity.User
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			return db.Where(database.LikeContains("username"), database.ContainsPattern(search))
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&entity.User{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Scopes(filter).
		Order("created_at ASC").Order("username ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user with their reviews, the comments on those reviews
// and their own comments.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authored := tx.Model(&entity.Review{}).Select("id").Where("author_id = ?", id)

		if err := tx.Where("author_id = ? OR review_id IN (?)", id, authored).
			Delete(&entity.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&entity.Review{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&entity.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepository) SetConfirmationCode(ctx context.Context, id uuid.UUID, hash string, issuedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"confirmation_code_hash":      hash,
			"confirmation_code_issued_at": issuedAt,
		}).Error
}

// ConsumeConfirmationCode clears the stored code only if it is still hash.
// It reports false when another request consumed or replaced it first.
func (r *userRepository) ConsumeConfirmationCode(ctx context.Context, id uuid.UUID, hash string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ? AND confirmation_code_hash = ?", id, hash).
		Updates(map[string]any{
			"confirmation_code_hash":      "",
			"confirmation_code_issued_at": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
