package title

import (
	"context"
	"errors"
	"time"

	"anoa.com/yamdb/internal/entity"
	categoryRepo "anoa.com/yamdb/internal/modules/category/repository"
	genreRepo "anoa.com/yamdb/internal/modules/genre/repository"
	"anoa.com/yamdb/internal/modules/title/dto"
	"anoa.com/yamdb/internal/modules/title/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TitleService interface {
	CreateTitle(ctx context.Context, actor *policy.Actor, req dto.CreateTitleRequest) (*dto.TitleResponse, error)
	GetAllTitles(ctx context.Context, filter dto.TitleFilter) (*commonDto.Page[dto.TitleResponse], error)
	GetTitle(ctx context.Context, id uint) (*dto.TitleResponse, error)
	UpdateTitle(ctx context.Context, actor *policy.Actor, id uint, req dto.UpdateTitleRequest) (*dto.TitleResponse, error)
	DeleteTitle(ctx context.Context, actor *policy.Actor, id uint) error
}

type titleService struct {
	repo         repository.TitleRepository
	categories   categoryRepo.CategoryRepository
	genres       genreRepo.GenreRepository
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

func NewTitleService(repo repository.TitleRepository, categories categoryRepo.CategoryRepository, genres genreRepo.GenreRepository, defaultLimit, maxLimit int) TitleService {
	return &titleService{
		repo:         repo,
		categories:   categories,
		genres:       genres,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		now:          time.Now,
	}
}

func (s *titleService) CreateTitle(ctx context.Context, actor *policy.Actor, req dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, policy.ResourceTitle, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.validateYear(req.Year); err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	title := &entity.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  categoryID,
		Genres:      genres,
	}
	if err := s.repo.Create(ctx, title); err != nil {
		return nil, apperror.FromDB(err, "title")
	}

	return s.GetTitle(ctx, title.ID)
}

func (s *titleService) GetAllTitles(ctx context.Context, filter dto.TitleFilter) (*commonDto.Page[dto.TitleResponse], error) {
	page := filter.PageQuery.Normalize(s.defaultLimit, s.maxLimit)

	titles, total, err := s.repo.FindAll(ctx, repository.Query{
		CategorySlug: filter.Category,
		GenreSlug:    filter.Genre,
		Name:         filter.Name,
		Year:         filter.Year,
	}, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.TitleResponse, 0, len(titles))
	for _, t := range titles {
		data = append(data, dto.NewTitleResponse(t))
	}
	return commonDto.NewPage(data, total, page), nil
}

func (s *titleService) GetTitle(ctx context.Context, id uint) (*dto.TitleResponse, error) {
	title, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "title")
	}
	res := dto.NewTitleResponse(title)
	return &res, nil
}

func (s *titleService) UpdateTitle(ctx context.Context, actor *policy.Actor, id uint, req dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	if err := policy.Authorize(actor, policy.ActionUpdate, policy.ResourceTitle, uuid.Nil); err != nil {
		return nil, err
	}

	title, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "title")
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := s.validateYear(*req.Year); err != nil {
			return nil, err
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if req.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = categoryID
		title.Category = nil
	}

	var genres []entity.Genre
	if req.Genre != nil {
		genres, err = s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, title, genres, req.Genre != nil); err != nil {
		return nil, apperror.FromDB(err, "title")
	}

	return s.GetTitle(ctx, title.ID)
}

func (s *titleService) DeleteTitle(ctx context.Context, actor *policy.Actor, id uint) error {
	if err := policy.Authorize(actor, policy.ActionDelete, policy.ResourceTitle, uuid.Nil); err != nil {
		return err
	}
	return apperror.FromDB(s.repo.Delete(ctx, id), "title")
}

func (s *titleService) validateYear(year int) error {
	if current := s.now().Year(); year > current {
		return apperror.Validation("year", "year %d is in the future (current year is %d)", year, current)
	}
	return nil
}

// resolveCategory maps a category slug to its id. An empty slug means no category.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*uint, error) {
	if slug == "" {
		return nil, nil
	}
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation("category", "category %q does not exist", slug)
		}
		return nil, err
	}
	return &category.ID, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]entity.Genre, error) {
	genres, err := s.genres.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(genres))
	for _, g := range genres {
		found[g.Slug] = true
	}
	for _, slug := range slugs {
		if !found[slug] {
			return nil, apperror.Validation("genre", "genre %q does not exist", slug)
		}
	}
	return genres, nil
}
