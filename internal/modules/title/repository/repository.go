package repository

import (
	"context"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/database"
	"gorm.io/gorm"
)

// ratingColumn averages the review scores of each title in the same query
// that lists it. It is NULL for a title without reviews.
const ratingColumn = "(SELECT CAST(AVG(reviews.score) AS FLOAT) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// Query holds the optional title filters. Zero values are ignored.
type Query struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         *int
}

type TitleRepository interface {
	Create(ctx context.Context, title *entity.Title) error
	FindByID(ctx context.Context, id uint) (*entity.Title, error)
	FindAll(ctx context.Context, q Query, offset, limit int) ([]*entity.Title, int64, error)
	Update(ctx context.Context, title *entity.Title, genres []entity.Genre, replaceGenres bool) error
	Delete(ctx context.Context, id uint) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

// Create inserts the title and links it to the already stored title.Genres.
func (r *titleRepository) Create(ctx context.Context, title *entity.Title) error {
	return r.db.WithContext(ctx).Omit("Category", "Genres.*").Create(title).Error
}

func (r *titleRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Select("titles.*, "+ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.id ASC")
		})
}

func (r *titleRepository) FindByID(ctx context.Context, id uint) (*entity.Title, error) {
	var title entity.Title
	if err := r.db.WithContext(ctx).
		Scopes(r.withDetails).
		Where("titles.id = ?", id).
		First(&title).Error; err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *titleRepository) FindAll(ctx context.Context, q Query, offset, limit int) ([]*entity.Title, int64, error) {
	var titles []*entity.Title
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if q.CategorySlug != "" {
			db = db.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", q.CategorySlug)
		}
		if q.GenreSlug != "" {
			db = db.Where(`EXISTS (SELECT 1 FROM title_genres
				JOIN genres ON genres.id = title_genres.genre_id
				WHERE title_genres.title_id = titles.id AND genres.slug = ?)`, q.GenreSlug)
		}
		if q.Name != "" {
			db = db.Where(database.LikeContains("titles.name"), database.ContainsPattern(q.Name))
		}
		if q.Year != nil {
			db = db.Where("titles.year = ?", *q.Year)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&entity.Title{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Scopes(r.withDetails, filter).
		Order("titles.id ASC").
		Offset(offset).Limit(limit).
		Find(&titles).Error; err != nil {
		return nil, 0, err
	}

	return titles, total, nil
}

// Update saves the title's columns. When replaceGenres is set the genre
// links are replaced by genres.
func (r *titleRepository) Update(ctx context.Context, title *entity.Title, genres []entity.Genre, replaceGenres bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(title).
			Select("name", "year", "category_id", "description").
			Updates(title).Error; err != nil {
			return err
		}
		if !replaceGenres {
			return nil
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", title.ID).Error; err != nil {
			return err
		}
		for _, g := range genres {
			if err := tx.Exec("INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?)", title.ID, g.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the title with its reviews, their comments and its genre links.
func (r *titleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := tx.Model(&entity.Review{}).Select("id").Where("title_id = ?", id)

		if err := tx.Where("review_id IN (?)", reviews).Delete(&entity.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&entity.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Title{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
