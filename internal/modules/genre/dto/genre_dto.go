package dto

import (
	"anoa.com/yamdb/internal/entity"
	commonDto "anoa.com/yamdb/pkg/dto"
)

type CreateGenreRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type UpdateGenreRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=200"`
	Slug *string `json:"slug" binding:"omitempty,max=50,slug"`
}

type GenreFilter struct {
	Search string `form:"search"`
	commonDto.PageQuery
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func NewGenreResponse(c *entity.Genre) GenreResponse {
	return GenreResponse{Name: c.Name, Slug: c.Slug}
}
