package genre

import (
	"context"
	"testing"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/genre/dto"
	"anoa.com/yamdb/internal/modules/genre/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/internal/testutil"
	"anoa.com/yamdb/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreWrites_AdminOnly(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewGenreService(repository.NewGenreRepository(db), 10, 100)
	ctx := context.Background()
	moderator := policy.ActorFromUser(testutil.CreateUser(t, db, "mod", entity.RoleModerator))
	admin := policy.ActorFromUser(testutil.CreateUser(t, db, "root", entity.RoleAdmin))

	_, err := svc.CreateGenre(ctx, moderator, dto.CreateGenreRequest{Name: "Drama", Slug: "drama"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.CreateGenre(ctx, admin, dto.CreateGenreRequest{Name: "Drama", Slug: "drama"})
	require.NoError(t, err)
	_, err = svc.CreateGenre(ctx, admin, dto.CreateGenreRequest{Name: "Comedy", Slug: "comedy"})
	require.NoError(t, err)

	slug := "comedy"
	_, err = svc.UpdateGenre(ctx, admin, "drama", dto.UpdateGenreRequest{Slug: &slug})
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "slug", ve.Field)

	assert.ErrorIs(t, svc.DeleteGenre(ctx, moderator, "drama"), apperror.ErrForbidden)

	res, err := svc.GetGenre(ctx, "drama")
	require.NoError(t, err)
	assert.Equal(t, "Drama", res.Name)
}

func TestDeleteGenre_KeepsTitles(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewGenreService(repository.NewGenreRepository(db), 10, 100)
	ctx := context.Background()
	admin := policy.ActorFromUser(testutil.CreateUser(t, db, "root", entity.RoleAdmin))

	drama := entity.Genre{Name: "Drama", Slug: "drama"}
	require.NoError(t, db.Create(&drama).Error)
	title := &entity.Title{Name: "Solaris", Year: 1972, Genres: []entity.Genre{drama}}
	require.NoError(t, db.Create(title).Error)

	require.NoError(t, svc.DeleteGenre(ctx, admin, "drama"))

	var got entity.Title
	require.NoError(t, db.Preload("Genres").First(&got, title.ID).Error)
	assert.Empty(t, got.Genres)

	_, err := svc.GetGenre(ctx, "drama")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
