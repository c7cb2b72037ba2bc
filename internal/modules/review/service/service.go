package review

import (
	"context"
	"errors"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/review/dto"
	"anoa.com/yamdb/internal/modules/review/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/sanitize"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errAlreadyReviewed = apperror.Validation("title", "you have already reviewed this title")

type ReviewService interface {
	CreateReview(ctx context.Context, actor *policy.Actor, titleID uint, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	GetAllReviews(ctx context.Context, titleID uint, filter dto.ReviewFilter) (*commonDto.Page[dto.ReviewResponse], error)
	GetReview(ctx context.Context, titleID, reviewID uint) (*dto.ReviewResponse, error)
	UpdateReview(ctx context.Context, actor *policy.Actor, titleID, reviewID uint, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	DeleteReview(ctx context.Context, actor *policy.Actor, titleID, reviewID uint) error
}

type reviewService struct {
	repo         repository.ReviewRepository
	defaultLimit int
	maxLimit     int
}

func NewReviewService(repo repository.ReviewRepository, defaultLimit, maxLimit int) ReviewService {
	return &reviewService{repo: repo, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

func (s *reviewService) CreateReview(ctx context.Context, actor *policy.Actor, titleID uint, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionCreate, policy.ResourceReview, uuid.Nil); err != nil {
		return nil, err
	}

	score := entity.DefaultScore
	if req.Score != nil {
		score = *req.Score
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}
	text, err := cleanText(req.Text)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForAuthor(ctx, titleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errAlreadyReviewed
	}

	review := &entity.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     text,
		Score:    score,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		// A concurrent create won the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errAlreadyReviewed
		}
		return nil, apperror.FromDB(err, "review")
	}

	return s.GetReview(ctx, titleID, review.ID)
}

func (s *reviewService) GetAllReviews(ctx context.Context, titleID uint, filter dto.ReviewFilter) (*commonDto.Page[dto.ReviewResponse], error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	page := filter.PageQuery.Normalize(s.defaultLimit, s.maxLimit)
	reviews, total, err := s.repo.FindAll(ctx, titleID, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		data = append(data, dto.NewReviewResponse(r))
	}
	return commonDto.NewPage(data, total, page), nil
}

func (s *reviewService) GetReview(ctx context.Context, titleID, reviewID uint) (*dto.ReviewResponse, error) {
	review, err := s.find(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	res := dto.NewReviewResponse(review)
	return &res, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, actor *policy.Actor, titleID, reviewID uint, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.find(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, policy.ResourceReview, review.AuthorID); err != nil {
		return nil, err
	}

	if req.Score != nil {
		if err := validateScore(*req.Score); err != nil {
			return nil, err
		}
		review.Score = *req.Score
	}
	if req.Text != nil {
		text, err := cleanText(*req.Text)
		if err != nil {
			return nil, err
		}
		review.Text = text
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, apperror.FromDB(err, "review")
	}

	res := dto.NewReviewResponse(review)
	return &res, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor *policy.Actor, titleID, reviewID uint) error {
	review, err := s.find(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, policy.ResourceReview, review.AuthorID); err != nil {
		return err
	}
	return apperror.FromDB(s.repo.Delete(ctx, review.ID), "review")
}

func (s *reviewService) ensureTitle(ctx context.Context, titleID uint) error {
	ok, err := s.repo.TitleExists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("title")
	}
	return nil
}

// find resolves the nested path: a missing title is reported before a
// missing review.
func (s *reviewService) find(ctx context.Context, titleID, reviewID uint) (*entity.Review, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}
	review, err := s.repo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, apperror.FromDB(err, "review")
	}
	return review, nil
}

func validateScore(score int) error {
	if score < entity.MinScore || score > entity.MaxScore {
		return apperror.Validation("score", "score must be between %d and %d", entity.MinScore, entity.MaxScore)
	}
	return nil
}

func cleanText(raw string) (string, error) {
	text := sanitize.Text(raw)
	if text == "" {
		return "", apperror.Validation("text", "this field is required")
	}
	return text, nil
}
