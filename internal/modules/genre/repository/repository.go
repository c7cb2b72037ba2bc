package repository

import (
	"context"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/database"
	"gorm.io/gorm"
)

type GenreRepository interface {
	Create(ctx context.Context, genre *entity.Genre) error
	FindBySlug(ctx context.Context, slug string) (*entity.Genre, error)
	FindByName(ctx context.Context, name string) (*entity.Genre, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]entity.Genre, error)
	FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.Genre, int64, error)
	Update(ctx context.Context, genre *entity.Genre) error
	Delete(ctx context.Context, id uint) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *entity.Genre) error {
	return r.db.WithContext(ctx).Create(genre).Error
}

func (r *genreRepository) FindBySlug(ctx context.Context, slug string) (*entity.Genre, error) {
	var genre entity.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepository) FindByName(ctx context.Context, name string) (*entity.Genre, error) {
	var genre entity.Genre
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

// FindBySlugs returns the genres whose slug is in slugs, ordered by id.
// Unknown slugs are skipped.
func (r *genreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]entity.Genre, error) {
	var genres []entity.Genre
	if len(slugs) == 0 {
		return genres, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("id ASC").Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *genreRepository) FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.Genre, int64, error) {
	var genres []*entity.Genre
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if search != "" {
			return db.Where(database.LikeContains("name"), database.ContainsPattern(search))
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&entity.Genre{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Scopes(filter).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&genres).Error; err != nil {
		return nil, 0, err
	}

	return genres, total, nil
}

func (r *genreRepository) Update(ctx context.Context, genre *entity.Genre) error {
	return r.db.WithContext(ctx).Save(genre).Error
}

// Delete removes the genre and its title links. The titles stay.
func (r *genreRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Genre{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
