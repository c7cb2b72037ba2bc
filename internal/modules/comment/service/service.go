package comment

import (
	"context"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/comment/dto"
	"anoa.com/yamdb/internal/modules/comment/repository"
	reviewRepo "anoa.com/yamdb/internal/modules/review/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/sanitize"
	"github.com/google/uuid"
)

type CommentService interface {
	CreateComment(ctx context.Context, actor *policy.Actor, titleID, reviewID uint, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	GetAllComments(ctx context.Context, titleID, reviewID uint, filter dto.CommentFilter) (*commonDto.Page[dto.CommentResponse], error)
	GetComment(ctx context.Context, titleID, reviewID, commentID uint) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID uint, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID uint) error
}

type commentService struct {
	repo         repository.CommentRepository
	reviews      reviewRepo.ReviewRepository
	defaultLimit int
	maxLimit     int
}

func NewCommentService(repo repository.CommentRepository, reviews reviewRepo.ReviewRepository, defaultLimit, maxLimit int) CommentService {
	return &commentService{repo: repo, reviews: reviews, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

func (s *commentService) CreateComment(ctx context.Context, actor *policy.Actor, titleID, reviewID uint, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionCreate, policy.ResourceComment, uuid.Nil); err != nil {
		return nil, err
	}

	text := sanitize.Text(req.Text)
	if text == "" {
		return nil, apperror.Validation("text", "this field is required")
	}

	comment := &entity.Comment{ReviewID: reviewID, AuthorID: actor.ID, Text: text}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, apperror.FromDB(err, "comment")
	}

	return s.GetComment(ctx, titleID, reviewID, comment.ID)
}

func (s *commentService) GetAllComments(ctx context.Context, titleID, reviewID uint, filter dto.CommentFilter) (*commonDto.Page[dto.CommentResponse], error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	page := filter.PageQuery.Normalize(s.defaultLimit, s.maxLimit)
	comments, total, err := s.repo.FindAll(ctx, reviewID, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		data = append(data, dto.NewCommentResponse(c))
	}
	return commonDto.NewPage(data, total, page), nil
}

func (s *commentService) GetComment(ctx context.Context, titleID, reviewID, commentID uint) (*dto.CommentResponse, error) {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	res := dto.NewCommentResponse(comment)
	return &res, nil
}

func (s *commentService) UpdateComment(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID uint, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, policy.ResourceComment, comment.AuthorID); err != nil {
		return nil, err
	}

	if req.Text != nil {
		text := sanitize.Text(*req.Text)
		if text == "" {
			return nil, apperror.Validation("text", "this field is required")
		}
		comment.Text = text
		if err := s.repo.Update(ctx, comment); err != nil {
			return nil, apperror.FromDB(err, "comment")
		}
	}

	res := dto.NewCommentResponse(comment)
	return &res, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID uint) error {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, policy.ResourceComment, comment.AuthorID); err != nil {
		return err
	}
	return apperror.FromDB(s.repo.Delete(ctx, comment.ID), "comment")
}

// ensureReview checks the title and review path segments in order.
func (s *commentService) ensureReview(ctx context.Context, titleID, reviewID uint) error {
	ok, err := s.reviews.TitleExists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("title")
	}
	if _, err := s.reviews.FindByID(ctx, titleID, reviewID); err != nil {
		return apperror.FromDB(err, "review")
	}
	return nil
}

func (s *commentService) find(ctx context.Context, titleID, reviewID, commentID uint) (*entity.Comment, error) {
	if err := s.ensureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.repo.FindByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, apperror.FromDB(err, "comment")
	}
	return comment, nil
}
