package repository

import (
	"context"

	"anoa.com/yamdb/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	TitleExists(ctx context.Context, titleID uint) (bool, error)
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, titleID, reviewID uint) (*entity.Review, error)
	FindAll(ctx context.Context, titleID uint, offset, limit int) ([]*entity.Review, int64, error)
	ExistsForAuthor(ctx context.Context, titleID uint, authorID uuid.UUID) (bool, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) TitleExists(ctx context.Context, titleID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Title{}).Where("id = ?", titleID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the review. A second review by the same author on the same
// title fails with gorm.ErrDuplicatedKey.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Omit("Title", "Author").Create(review).Error
}

// FindByID returns the review only if it belongs to titleID.
func (r *reviewRepository) FindByID(ctx context.Context, titleID, reviewID uint) (*entity.Review, error) {
	var review entity.Review
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindAll(ctx context.Context, titleID uint, offset, limit int) ([]*entity.Review, int64, error) {
	var reviews []*entity.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("title_id = ?", titleID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("title_id = ?", titleID).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) ExistsForAuthor(ctx context.Context, titleID uint, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes the mutable columns. pub_date is never changed.
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Model(review).Select("text", "score").Updates(review).Error
}

// Delete removes the review and its comments.
func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&entity.Comment{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Review{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
