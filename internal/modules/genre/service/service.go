package genre

import (
	"context"
	"errors"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/genre/dto"
	"anoa.com/yamdb/internal/modules/genre/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GenreService interface {
	CreateGenre(ctx context.Context, actor *policy.Actor, req dto.CreateGenreRequest) (*dto.GenreResponse, error)
	GetAllGenres(ctx context.Context, filter dto.GenreFilter) (*commonDto.Page[dto.GenreResponse], error)
	GetGenre(ctx context.Context, slug string) (*dto.GenreResponse, error)
	UpdateGenre(ctx context.Context, actor *policy.Actor, slug string, req dto.UpdateGenreRequest) (*dto.GenreResponse, error)
	DeleteGenre(ctx context.Context, actor *policy.Actor, slug string) error
}

type genreService struct {
	repo         repository.GenreRepository
	defaultLimit int
	maxLimit     int
}

func NewGenreService(repo repository.GenreRepository, defaultLimit, maxLimit int) GenreService {
	return &genreService{repo: repo, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

func (s *genreService) CreateGenre(ctx context.Context, actor *policy.Actor, req dto.CreateGenreRequest) (*dto.GenreResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, policy.ResourceGenre, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, 0, req.Name, req.Slug); err != nil {
		return nil, err
	}

	genre := &entity.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, genre); err != nil {
		return nil, apperror.FromDB(err, "genre")
	}

	res := dto.NewGenreResponse(genre)
	return &res, nil
}

func (s *genreService) GetAllGenres(ctx context.Context, filter dto.GenreFilter) (*commonDto.Page[dto.GenreResponse], error) {
	page := filter.PageQuery.Normalize(s.defaultLimit, s.maxLimit)

	genres, total, err := s.repo.FindAll(ctx, filter.Search, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.GenreResponse, 0, len(genres))
	for _, c := range genres {
		data = append(data, dto.NewGenreResponse(c))
	}
	return commonDto.NewPage(data, total, page), nil
}

func (s *genreService) GetGenre(ctx context.Context, slug string) (*dto.GenreResponse, error) {
	genre, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.FromDB(err, "genre")
	}
	res := dto.NewGenreResponse(genre)
	return &res, nil
}

func (s *genreService) UpdateGenre(ctx context.Context, actor *policy.Actor, slug string, req dto.UpdateGenreRequest) (*dto.GenreResponse, error) {
	if err := policy.Authorize(actor, policy.ActionUpdate, policy.ResourceGenre, uuid.Nil); err != nil {
		return nil, err
	}

	genre, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.FromDB(err, "genre")
	}

	name, newSlug := genre.Name, genre.Slug
	if req.Name != nil {
		name = *req.Name
	}
	if req.Slug != nil {
		newSlug = *req.Slug
	}
	if err := s.ensureUnique(ctx, genre.ID, name, newSlug); err != nil {
		return nil, err
	}

	genre.Name, genre.Slug = name, newSlug
	if err := s.repo.Update(ctx, genre); err != nil {
		return nil, apperror.FromDB(err, "genre")
	}

	res := dto.NewGenreResponse(genre)
	return &res, nil
}

func (s *genreService) DeleteGenre(ctx context.Context, actor *policy.Actor, slug string) error {
	if err := policy.Authorize(actor, policy.ActionDelete, policy.ResourceGenre, uuid.Nil); err != nil {
		return err
	}

	genre, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return apperror.FromDB(err, "genre")
	}
	return apperror.FromDB(s.repo.Delete(ctx, genre.ID), "genre")
}

// ensureUnique rejects a name or slug already used by a genre other than self.
func (s *genreService) ensureUnique(ctx context.Context, self uint, name, slug string) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.Validation("name", "genre with name %q already exists", name)
	}

	existing, err = s.repo.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.Validation("slug", "genre with slug %q already exists", slug)
	}
	return nil
}
