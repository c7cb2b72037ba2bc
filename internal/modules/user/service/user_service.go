package service

import (
	"context"
	"errors"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/user/dto"
	"anoa.com/yamdb/internal/modules/user/repository"
	"anoa.com/yamdb/internal/policy"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	List(ctx context.Context, actor *policy.Actor, filter dto.UserFilter) (*commonDto.Page[dto.UserResponse], error)
	Create(ctx context.Context, actor *policy.Actor, input dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, actor *policy.Actor, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, actor *policy.Actor, username string, input dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor *policy.Actor, username string) error
	Me(ctx context.Context, actor *policy.Actor) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, actor *policy.Actor, input dto.UpdateUserRequest) (*dto.UserResponse, error)
}

// User management is not owned content; policy ignores the owner.
var nilOwner = uuid.Nil

type userService struct {
	repo         repository.UserRepository
	defaultLimit int
	maxLimit     int
}

func NewUserService(repo repository.UserRepository, defaultLimit, maxLimit int) UserService {
	return &userService{repo: repo, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

func (s *userService) List(ctx context.Context, actor *policy.Actor, filter dto.UserFilter) (*commonDto.Page[dto.UserResponse], error) {
	if err := policy.Authorize(actor, policy.ActionRead, policy.ResourceUser, nilOwner); err != nil {
		return nil, err
	}

	page := filter.PageQuery.Normalize(s.defaultLimit, s.maxLimit)
	users, total, err := s.repo.FindAll(ctx, filter.Search, page.Offset, page.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, dto.NewUserResponse(u))
	}
	return commonDto.NewPage(data, total, page), nil
}

func (s *userService) Create(ctx context.Context, actor *policy.Actor, input dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, policy.ResourceUser, nilOwner); err != nil {
		return nil, err
	}
	if validator.IsReservedUsername(input.Username) {
		return nil, apperror.Validation("username", "username %q is reserved", input.Username)
	}
	if err := s.ensureAvailable(ctx, nil, input.Username, input.Email); err != nil {
		return nil, err
	}

	role := entity.Role(input.Role)
	if role == "" {
		role = entity.RoleUser
	}

	user := &entity.User{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		Role:      role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.FromDB(err, "user")
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) Get(ctx context.Context, actor *policy.Actor, username string) (*dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionRead, policy.ResourceUser, nilOwner); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperror.FromDB(err, "user")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, actor *policy.Actor, username string, input dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionUpdate, policy.ResourceUser, nilOwner); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperror.FromDB(err, "user")
	}
	return s.apply(ctx, policy.ResourceUser, user, input)
}

func (s *userService) Delete(ctx context.Context, actor *policy.Actor, username string) error {
	if err := policy.Authorize(actor, policy.ActionDelete, policy.ResourceUser, nilOwner); err != nil {
		return err
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return apperror.FromDB(err, "user")
	}
	return apperror.FromDB(s.repo.Delete(ctx, user.ID), "user")
}

func (s *userService) Me(ctx context.Context, actor *policy.Actor) (*dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionRead, policy.ResourceProfile, nilOwner); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, apperror.FromDB(err, "user")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateMe(ctx context.Context, actor *policy.Actor, input dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionUpdate, policy.ResourceProfile, nilOwner); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, apperror.FromDB(err, "user")
	}
	return s.apply(ctx, policy.ResourceProfile, user, input)
}

// apply copies the fields writable through path onto user and saves it.
// Fields the path may not write are ignored.
func (s *userService) apply(ctx context.Context, path policy.Resource, user *entity.User, input dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if input.Username != nil && *input.Username != user.Username {
		if validator.IsReservedUsername(*input.Username) {
			return nil, apperror.Validation("username", "username %q is reserved", *input.Username)
		}
		if err := s.ensureAvailable(ctx, user, *input.Username, ""); err != nil {
			return nil, err
		}
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != user.Email {
		if err := s.ensureAvailable(ctx, user, "", *input.Email); err != nil {
			return nil, err
		}
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Role != nil && policy.CanWriteUserField(path, "role") {
		role := entity.Role(*input.Role)
		if !role.Valid() {
			return nil, apperror.Validation("role", "%q is not a valid role", *input.Role)
		}
		user.Role = role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperror.FromDB(err, "user")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ensureAvailable checks that username and email are not held by a user
// other than self. Empty values are skipped.
func (s *userService) ensureAvailable(ctx context.Context, self *entity.User, username, email string) error {
	if username != "" {
		other, err := s.repo.FindByUsername(ctx, username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if other != nil && (self == nil || other.ID != self.ID) {
			return apperror.Validation("username", "a user with this username already exists")
		}
	}
	if email != "" {
		other, err := s.repo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if other != nil && (self == nil || other.ID != self.ID) {
			return apperror.Validation("email", "a user with this email already exists")
		}
	}
	return nil
}
