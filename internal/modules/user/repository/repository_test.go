package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConsumeConfirmationCode_OnlyOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "alice", entity.RoleUser)

	require.NoError(t, repo.SetConfirmationCode(ctx, u.ID, "hash-1", time.Now()))

	ok, err := repo.ConsumeConfirmationCode(ctx, u.ID, "hash-0")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ConsumeConfirmationCode(ctx, u.ID, "hash-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeConfirmationCode(ctx, u.ID, "hash-1")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ConfirmationCodeHash)
	assert.Nil(t, got.ConfirmationCodeIssuedAt)
}

func TestDelete_RemovesAuthoredContent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", entity.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", entity.RoleUser)

	title := &entity.Title{Name: "Dune", Year: 1965}
	require.NoError(t, db.Create(title).Error)

	aliceReview := &entity.Review{TitleID: title.ID, AuthorID: alice.ID, Text: "great", Score: 9}
	bobReview := &entity.Review{TitleID: title.ID, AuthorID: bob.ID, Text: "fine", Score: 6}
	require.NoError(t, db.Omit("Title", "Author").Create(aliceReview).Error)
	require.NoError(t, db.Omit("Title", "Author").Create(bobReview).Error)

	comments := []*entity.Comment{
		{ReviewID: aliceReview.ID, AuthorID: bob.ID, Text: "agreed"},
		{ReviewID: bobReview.ID, AuthorID: alice.ID, Text: "disagree"},
		{ReviewID: bobReview.ID, AuthorID: bob.ID, Text: "why"},
	}
	for _, c := range comments {
		require.NoError(t, db.Omit("Review", "Author").Create(c).Error)
	}

	require.NoError(t, repo.Delete(ctx, alice.ID))

	var reviews, remaining int64
	db.Model(&entity.Review{}).Count(&reviews)
	db.Model(&entity.Comment{}).Count(&remaining)
	assert.EqualValues(t, 1, reviews)
	assert.EqualValues(t, 1, remaining)

	_, err := repo.FindByID(ctx, alice.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), gorm.ErrRecordNotFound)
}

func TestFindAll_SearchAndPaging(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	for _, name := range []string{"anna", "annette", "bob", "bo_b"} {
		testutil.CreateUser(t, db, name, entity.RoleUser)
	}

	users, total, err := repo.FindAll(ctx, "ANN", 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 1)

	users, total, err = repo.FindAll(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, users, 4)

	users, total, err = repo.FindAll(ctx, "_", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "bo_b", users[0].Username)

	_, total, err = repo.FindAll(ctx, "%", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}
