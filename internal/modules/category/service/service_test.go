package category

import (
	"context"
	"testing"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/category/dto"
	"anoa.com/yamdb/internal/modules/category/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/internal/testutil"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory_AdminOnly(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db), 10, 100)
	ctx := context.Background()
	user := policy.ActorFromUser(testutil.CreateUser(t, db, "alice", entity.RoleUser))
	admin := policy.ActorFromUser(testutil.CreateUser(t, db, "root", entity.RoleAdmin))
	req := dto.CreateCategoryRequest{Name: "Sci-Fi", Slug: "scifi"}

	_, err := svc.CreateCategory(ctx, user, req)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.CreateCategory(ctx, nil, req)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	var count int64
	db.Model(&entity.Category{}).Count(&count)
	assert.Zero(t, count)

	res, err := svc.CreateCategory(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, dto.CategoryResponse{Name: "Sci-Fi", Slug: "scifi"}, *res)

	_, err = svc.CreateCategory(ctx, admin, dto.CreateCategoryRequest{Name: "Other", Slug: "scifi"})
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "slug", ve.Field)

	_, err = svc.CreateCategory(ctx, admin, dto.CreateCategoryRequest{Name: "Sci-Fi", Slug: "sf"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func TestDeleteCategory_DetachesTitles(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db), 10, 100)
	ctx := context.Background()
	admin := policy.ActorFromUser(testutil.CreateUser(t, db, "root", entity.RoleAdmin))

	cat := &entity.Category{Name: "Books", Slug: "books"}
	require.NoError(t, db.Create(cat).Error)
	title := &entity.Title{Name: "Dune", Year: 1965, CategoryID: &cat.ID}
	require.NoError(t, db.Create(title).Error)

	require.NoError(t, svc.DeleteCategory(ctx, admin, "books"))

	var got entity.Title
	require.NoError(t, db.First(&got, title.ID).Error)
	assert.Nil(t, got.CategoryID)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, admin, "books"), apperror.ErrNotFound)
}

func TestUpdateCategory(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db), 10, 100)
	ctx := context.Background()
	admin := policy.ActorFromUser(testutil.CreateUser(t, db, "root", entity.RoleAdmin))
	require.NoError(t, db.Create(&entity.Category{Name: "Books", Slug: "books"}).Error)

	name := "Novels"
	res, err := svc.UpdateCategory(ctx, admin, "books", dto.UpdateCategoryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Novels", res.Name)
	assert.Equal(t, "books", res.Slug)

	_, err = svc.UpdateCategory(ctx, admin, "films", dto.UpdateCategoryRequest{Name: &name})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetAllCategories_SearchAndPaging(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db), 2, 3)
	ctx := context.Background()
	for _, c := range []entity.Category{
		{Name: "Films", Slug: "films"},
		{Name: "Books", Slug: "books"},
		{Name: "Short films", Slug: "short-films"},
		{Name: "Music", Slug: "music"},
	} {
		c := c
		require.NoError(t, db.Create(&c).Error)
	}

	page, err := svc.GetAllCategories(ctx, dto.CategoryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Meta.Count)
	assert.Equal(t, 2, page.Meta.Limit)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "films", page.Data[0].Slug)

	page, err = svc.GetAllCategories(ctx, dto.CategoryFilter{PageQuery: commonDto.PageQuery{Limit: 50, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Meta.Limit)
	assert.Len(t, page.Data, 3)

	page, err = svc.GetAllCategories(ctx, dto.CategoryFilter{Search: "FILM"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Count)
}

func TestGetAllCategories_SearchIsLiteral(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCategoryService(repository.NewCategoryRepository(db), 10, 100)
	ctx := context.Background()
	require.NoError(t, db.Create(&entity.Category{Name: "Films", Slug: "films"}).Error)
	require.NoError(t, db.Create(&entity.Category{Name: "Books", Slug: "books"}).Error)
	require.NoError(t, db.Create(&entity.Category{Name: "100% docs", Slug: "docs"}).Error)

	tests := []struct {
		search string
		want   int64
	}{
		{"_", 0},
		{"F_lms", 0},
		{"%", 1},
		{"0% d", 1},
		{"oo", 1},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			page, err := svc.GetAllCategories(ctx, dto.CategoryFilter{Search: tt.search})
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Meta.Count)
		})
	}
}
