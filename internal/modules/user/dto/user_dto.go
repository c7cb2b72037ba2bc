package dto

import (
	"anoa.com/yamdb/internal/entity"
	commonDto "anoa.com/yamdb/pkg/dto"
)

type SignupRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type UserFilter struct {
	Search string `form:"search"`
	commonDto.PageQuery
}

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,username"`
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"max=40"`
	LastName  string `json:"last_name" binding:"max=40"`
	Bio       string `json:"bio" binding:"max=100"`
	Role      string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Username  *string `json:"username" binding:"omitempty,username"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=40"`
	LastName  *string `json:"last_name" binding:"omitempty,max=40"`
	Bio       *string `json:"bio" binding:"omitempty,max=100"`
	Role      *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

type UserResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Bio:       u.Bio,
		Email:     u.Email,
		Role:      string(u.Role),
	}
}
