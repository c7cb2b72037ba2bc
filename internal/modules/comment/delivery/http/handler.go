package handler

import (
	"net/http"

	"anoa.com/yamdb/internal/middleware"
	"anoa.com/yamdb/internal/modules/comment/dto"
	comment "anoa.com/yamdb/internal/modules/comment/service"
	"anoa.com/yamdb/pkg/response"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

type commentPath struct {
	titleID, reviewID, commentID uint
}

func parsePath(c *gin.Context, withComment bool) (commentPath, error) {
	var p commentPath
	var err error
	if p.titleID, err = response.PathID(c, "title_id"); err != nil {
		return p, err
	}
	if p.reviewID, err = response.PathID(c, "review_id"); err != nil {
		return p, err
	}
	if withComment {
		if p.commentID, err = response.PathID(c, "comment_id"); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	p, err := parsePath(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.CreateComment(c.Request.Context(), middleware.CurrentActor(c), p.titleID, p.reviewID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *CommentHandler) GetAllComments(c *gin.Context) {
	p, err := parsePath(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	var filter dto.CommentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	comments, err := h.service.GetAllComments(c.Request.Context(), p.titleID, p.reviewID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	p, err := parsePath(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.GetComment(c.Request.Context(), p.titleID, p.reviewID, p.commentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	p, err := parsePath(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateComment(c.Request.Context(), middleware.CurrentActor(c), p.titleID, p.reviewID, p.commentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	p, err := parsePath(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), middleware.CurrentActor(c), p.titleID, p.reviewID, p.commentID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
