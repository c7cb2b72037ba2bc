package dto

import (
	"time"

	"anoa.com/yamdb/internal/entity"
	commonDto "anoa.com/yamdb/pkg/dto"
)

type CreateReviewRequest struct {
	Text  string `json:"text" binding:"required"`
	Score *int   `json:"score" binding:"omitempty,min=1,max=10"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text" binding:"omitempty,min=1"`
	Score *int    `json:"score" binding:"omitempty,min=1,max=10"`
}

type ReviewFilter struct {
	commonDto.PageQuery
}

type ReviewResponse struct {
	ID      uint      `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func NewReviewResponse(r *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Author:  r.Author.Username,
		Text:    r.Text,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
