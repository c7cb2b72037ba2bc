package handler

import (
	"net/http"

	"anoa.com/yamdb/internal/middleware"
	"anoa.com/yamdb/internal/modules/review/dto"
	review "anoa.com/yamdb/internal/modules/review/service"
	"anoa.com/yamdb/pkg/response"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service review.ReviewService
}

func NewReviewHandler(service review.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// pathIDs parses :title_id and, when withReview is set, :review_id.
func pathIDs(c *gin.Context, withReview bool) (titleID, reviewID uint, err error) {
	if titleID, err = response.PathID(c, "title_id"); err != nil {
		return 0, 0, err
	}
	if withReview {
		if reviewID, err = response.PathID(c, "review_id"); err != nil {
			return 0, 0, err
		}
	}
	return titleID, reviewID, nil
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	titleID, _, err := pathIDs(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.CreateReview(c.Request.Context(), middleware.CurrentActor(c), titleID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ReviewHandler) GetAllReviews(c *gin.Context) {
	titleID, _, err := pathIDs(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	var filter dto.ReviewFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	reviews, err := h.service.GetAllReviews(c.Request.Context(), titleID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	titleID, reviewID, err := pathIDs(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.GetReview(c.Request.Context(), titleID, reviewID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	titleID, reviewID, err := pathIDs(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateReview(c.Request.Context(), middleware.CurrentActor(c), titleID, reviewID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	titleID, reviewID, err := pathIDs(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteReview(c.Request.Context(), middleware.CurrentActor(c), titleID, reviewID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
