package repository

import (
	"context"
	"testing"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDelete_KeepsTitles(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGenreRepository(db)
	ctx := context.Background()

	drama := &entity.Genre{Name: "Drama", Slug: "drama"}
	comedy := &entity.Genre{Name: "Comedy", Slug: "comedy"}
	require.NoError(t, repo.Create(ctx, drama))
	require.NoError(t, repo.Create(ctx, comedy))

	title := &entity.Title{Name: "Dune", Year: 1965, Genres: []entity.Genre{*drama, *comedy}}
	require.NoError(t, db.Create(title).Error)

	require.NoError(t, repo.Delete(ctx, drama.ID))

	var got entity.Title
	require.NoError(t, db.Preload("Genres").First(&got, title.ID).Error)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "comedy", got.Genres[0].Slug)

	assert.ErrorIs(t, repo.Delete(ctx, drama.ID), gorm.ErrRecordNotFound)
}

func TestFindAll_Search(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGenreRepository(db)
	ctx := context.Background()
	for _, g := range []*entity.Genre{{Name: "Drama", Slug: "drama"}, {Name: "Melodrama", Slug: "melodrama"}, {Name: "Horror", Slug: "horror"}} {
		require.NoError(t, repo.Create(ctx, g))
	}

	genres, total, err := repo.FindAll(ctx, "drama", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, genres, 2)

	_, total, err = repo.FindAll(ctx, "dr_ma", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}
