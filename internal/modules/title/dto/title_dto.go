package dto

import (
	"anoa.com/yamdb/internal/entity"
	categoryDto "anoa.com/yamdb/internal/modules/category/dto"
	genreDto "anoa.com/yamdb/internal/modules/genre/dto"
	commonDto "anoa.com/yamdb/pkg/dto"
)

// CreateTitleRequest names its category and genres by slug.
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description" binding:"max=255"`
	Category    string   `json:"category" binding:"omitempty,slug"`
	Genre       []string `json:"genre" binding:"omitempty,dive,slug"`
}

// UpdateTitleRequest is a partial update. An empty category string detaches
// the category; a genre list replaces the current set.
type UpdateTitleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=200"`
	Year        *int      `json:"year"`
	Description *string   `json:"description" binding:"omitempty,max=255"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

type TitleFilter struct {
	Category string `form:"category"`
	Genre    string `form:"genre"`
	Name     string `form:"name"`
	Year     *int   `form:"year"`
	commonDto.PageQuery
}

type TitleResponse struct {
	ID          uint                          `json:"id"`
	Name        string                        `json:"name"`
	Year        int                           `json:"year"`
	Rating      *int                          `json:"rating"`
	Description string                        `json:"description"`
	Genre       []genreDto.GenreResponse      `json:"genre"`
	Category    *categoryDto.CategoryResponse `json:"category"`
}

func NewTitleResponse(t *entity.Title) TitleResponse {
	res := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       make([]genreDto.GenreResponse, 0, len(t.Genres)),
	}
	if t.Rating != nil {
		rating := int(*t.Rating)
		res.Rating = &rating
	}
	if t.Category != nil {
		category := categoryDto.NewCategoryResponse(t.Category)
		res.Category = &category
	}
	for i := range t.Genres {
		res.Genre = append(res.Genre, genreDto.NewGenreResponse(&t.Genres[i]))
	}
	return res
}
