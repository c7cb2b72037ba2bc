package category

import (
	"context"
	"errors"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/category/dto"
	"anoa.com/yamdb/internal/modules/category/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, actor *policy.Actor, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context, filter dto.CategoryFilter) (*commonDto.Page[dto.CategoryResponse], error)
	GetCategory(ctx context.Context, slug string) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, actor *policy.Actor, slug string, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, actor *policy.Actor, slug string) error
}

type categoryService struct {
	repo         repository.CategoryRepository
	defaultLimit int
	maxLimit     int
}

func NewCategoryService(repo repository.CategoryRepository, defaultLimit, maxLimit int) CategoryService {
	return &categoryService{repo: repo, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

func (s *categoryService) CreateCategory(ctx context.Context, actor *policy.Actor, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, policy.ResourceCategory, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, 0, req.Name, req.Slug); err != nil {
		return nil, err
	}

	category := &entity.Category{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, apperror.FromDB(err, "category")
	}

	res := dto.NewCategoryResponse(category)
	return &res, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter dto.CategoryFilter) (*commonDto.Page[dto.CategoryResponse], error) {
	page := filter.PageQuery.Normalize(s.defaultLimit, s.maxLimit)

	categories, total, err := s.repo.FindAll(ctx, filter.Search, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		data = append(data, dto.NewCategoryResponse(c))
	}
	return commonDto.NewPage(data, total, page), nil
}

func (s *categoryService) GetCategory(ctx context.Context, slug string) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.FromDB(err, "category")
	}
	res := dto.NewCategoryResponse(category)
	return &res, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, actor *policy.Actor, slug string, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := policy.Authorize(actor, policy.ActionUpdate, policy.ResourceCategory, uuid.Nil); err != nil {
		return nil, err
	}

	category, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.FromDB(err, "category")
	}

	name, newSlug := category.Name, category.Slug
	if req.Name != nil {
		name = *req.Name
	}
	if req.Slug != nil {
		newSlug = *req.Slug
	}
	if err := s.ensureUnique(ctx, category.ID, name, newSlug); err != nil {
		return nil, err
	}

	category.Name, category.Slug = name, newSlug
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, apperror.FromDB(err, "category")
	}

	res := dto.NewCategoryResponse(category)
	return &res, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, actor *policy.Actor, slug string) error {
	if err := policy.Authorize(actor, policy.ActionDelete, policy.ResourceCategory, uuid.Nil); err != nil {
		return err
	}

	category, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return apperror.FromDB(err, "category")
	}
	return apperror.FromDB(s.repo.Delete(ctx, category.ID), "category")
}

// ensureUnique rejects a name or slug already used by a category other than self.
func (s *categoryService) ensureUnique(ctx context.Context, self uint, name, slug string) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.Validation("name", "category with name %q already exists", name)
	}

	existing, err = s.repo.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.Validation("slug", "category with slug %q already exists", slug)
	}
	return nil
}
