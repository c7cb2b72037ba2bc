package review

import (
	"context"
	"testing"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/review/dto"
	"anoa.com/yamdb/internal/modules/review/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/internal/testutil"
	"anoa.com/yamdb/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    ReviewService
	title  *entity.Title
	author *policy.Actor
	other  *policy.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	title := &entity.Title{Name: "Dune", Year: 1965}
	require.NoError(t, db.Create(title).Error)

	return &fixture{
		db:     db,
		svc:    NewReviewService(repository.NewReviewRepository(db), 10, 100),
		title:  title,
		author: policy.ActorFromUser(testutil.CreateUser(t, db, "alice", entity.RoleUser)),
		other:  policy.ActorFromUser(testutil.CreateUser(t, db, "bob", entity.RoleUser)),
	}
}

func score(v int) *int { return &v }

func TestCreateReview_DefaultsAndSanitizes(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CreateReview(context.Background(), f.author, f.title.ID, dto.CreateReviewRequest{
		Text: "<script>alert(1)</script><b>Great</b> book",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultScore, res.Score)
	assert.Equal(t, "Great book", res.Text)
	assert.Equal(t, "alice", res.Author)
	assert.False(t, res.PubDate.IsZero())
}

func TestCreateReview_BoundaryScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	low, err := f.svc.CreateReview(ctx, f.author, f.title.ID, dto.CreateReviewRequest{Text: "dull", Score: score(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, low.Score)

	high, err := f.svc.CreateReview(ctx, f.other, f.title.ID, dto.CreateReviewRequest{Text: "superb", Score: score(10)})
	require.NoError(t, err)
	assert.Equal(t, 10, high.Score)
}

func TestCreateReview_OnePerAuthorAndTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := dto.CreateReviewRequest{Text: "first", Score: score(8)}

	_, err := f.svc.CreateReview(ctx, f.author, f.title.ID, req)
	require.NoError(t, err)

	_, err = f.svc.CreateReview(ctx, f.author, f.title.ID, req)
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	_, err = f.svc.CreateReview(ctx, f.other, f.title.ID, req)
	assert.NoError(t, err)

	second := &entity.Title{Name: "Emma", Year: 1815}
	require.NoError(t, f.db.Create(second).Error)
	_, err = f.svc.CreateReview(ctx, f.author, second.ID, req)
	assert.NoError(t, err)
}

func TestCreateReview_UniqueIndexBackstop(t *testing.T) {
	f := newFixture(t)
	repo := repository.NewReviewRepository(f.db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Review{TitleID: f.title.ID, AuthorID: f.author.ID, Text: "a", Score: 5}))
	err := repo.Create(ctx, &entity.Review{TitleID: f.title.ID, AuthorID: f.author.ID, Text: "b", Score: 6})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreateReview_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ve *apperror.ValidationError

	_, err := f.svc.CreateReview(ctx, nil, f.title.ID, dto.CreateReviewRequest{Text: "x"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = f.svc.CreateReview(ctx, f.author, f.title.ID+1, dto.CreateReviewRequest{Text: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	for _, s := range []int{0, 11} {
		_, err = f.svc.CreateReview(ctx, f.author, f.title.ID, dto.CreateReviewRequest{Text: "x", Score: score(s)})
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "score", ve.Field)
	}

	_, err = f.svc.CreateReview(ctx, f.author, f.title.ID, dto.CreateReviewRequest{Text: "<p></p>"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "text", ve.Field)
}

func TestUpdateReview_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	moderator := policy.ActorFromUser(testutil.CreateUser(t, f.db, "mod", entity.RoleModerator))

	created, err := f.svc.CreateReview(ctx, f.author, f.title.ID, dto.CreateReviewRequest{Text: "ok", Score: score(6)})
	require.NoError(t, err)

	_, err = f.svc.UpdateReview(ctx, f.other, f.title.ID, created.ID, dto.UpdateReviewRequest{Score: score(1)})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	res, err := f.svc.UpdateReview(ctx, f.author, f.title.ID, created.ID, dto.UpdateReviewRequest{Score: score(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, res.Score)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, created.PubDate.Unix(), res.PubDate.Unix())

	text := "edited by staff"
	res, err = f.svc.UpdateReview(ctx, moderator, f.title.ID, created.ID, dto.UpdateReviewRequest{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "edited by staff", res.Text)
	assert.Equal(t, "alice", res.Author)
}

func TestReview_NestedPathNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateReview(ctx, f.author, f.title.ID, dto.CreateReviewRequest{Text: "ok"})
	require.NoError(t, err)

	other := &entity.Title{Name: "Emma", Year: 1815}
	require.NoError(t, f.db.Create(other).Error)

	_, err = f.svc.GetReview(ctx, other.ID, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "review not found", err.Error())

	err = f.svc.DeleteReview(ctx, f.other, f.title.ID+100, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "title not found", err.Error())
}

func TestDeleteReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := policy.ActorFromUser(testutil.CreateUser(t, f.db, "root", entity.RoleAdmin))

	created, err := f.svc.CreateReview(ctx, f.author, f.title.ID, dto.CreateReviewRequest{Text: "ok"})
	require.NoError(t, err)
	require.NoError(t, f.db.Omit("Review", "Author").Create(&entity.Comment{
		ReviewID: created.ID, AuthorID: f.other.ID, Text: "hm",
	}).Error)

	assert.ErrorIs(t, f.svc.DeleteReview(ctx, f.other, f.title.ID, created.ID), apperror.ErrForbidden)
	require.NoError(t, f.svc.DeleteReview(ctx, admin, f.title.ID, created.ID))

	var comments int64
	f.db.Model(&entity.Comment{}).Count(&comments)
	assert.Zero(t, comments)

	page, err := f.svc.GetAllReviews(ctx, f.title.ID, dto.ReviewFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Meta.Count)
	assert.NotNil(t, page.Data)
}
