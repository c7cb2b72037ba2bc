package dto

import (
	"anoa.com/yamdb/internal/entity"
	commonDto "anoa.com/yamdb/pkg/dto"
)

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=200"`
	Slug *string `json:"slug" binding:"omitempty,max=50,slug"`
}

type CategoryFilter struct {
	Search string `form:"search"`
	commonDto.PageQuery
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func NewCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{Name: c.Name, Slug: c.Slug}
}
