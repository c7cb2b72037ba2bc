package dto

import (
	"time"

	"anoa.com/yamdb/internal/entity"
	commonDto "anoa.com/yamdb/pkg/dto"
)

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type UpdateCommentRequest struct {
	Text *string `json:"text" binding:"omitempty,min=1"`
}

type CommentFilter struct {
	commonDto.PageQuery
}

type CommentResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func NewCommentResponse(c *entity.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}
