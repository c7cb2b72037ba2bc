package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/user/dto"
	"anoa.com/yamdb/internal/modules/user/repository"
	"anoa.com/yamdb/pkg/apperror"
	"anoa.com/yamdb/pkg/mailer"
	"anoa.com/yamdb/pkg/token"
	"anoa.com/yamdb/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for every failed token exchange so the
// caller cannot tell an unknown username from a bad code.
var ErrInvalidCredentials = &apperror.ValidationError{Message: "invalid username or confirmation code"}

type AuthService interface {
	Signup(ctx context.Context, input dto.SignupRequest) (*dto.SignupResponse, error)
	Token(ctx context.Context, input dto.TokenRequest) (*dto.TokenResponse, error)
}

type AuthOptions struct {
	CodeTTL    time.Duration
	BcryptCost int
}

type authService struct {
	repo   repository.UserRepository
	mail   mailer.Sender
	tokens token.Manager
	opts   AuthOptions
	now    func() time.Time
}

func NewAuthService(repo repository.UserRepository, mail mailer.Sender, tokens token.Manager, opts AuthOptions) AuthService {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		repo:   repo,
		mail:   mail,
		tokens: tokens,
		opts:   opts,
		now:    time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, input dto.SignupRequest) (*dto.SignupResponse, error) {
	if validator.IsReservedUsername(input.Username) {
		return nil, apperror.Validation("username", "username %q is reserved", input.Username)
	}

	user, err := s.findOrCreate(ctx, input.Username, input.Email)
	if err != nil {
		return nil, err
	}

	code := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash confirmation code: %w", err)
	}

	// A new code supersedes any code issued earlier.
	if err := s.repo.SetConfirmationCode(ctx, user.ID, string(hash), s.now()); err != nil {
		return nil, err
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: "YaMDb confirmation code",
		Body: fmt.Sprintf("Hello %s,\n\nYour confirmation code is: %s\nIt is valid for %s and can be used once.\n",
			user.Username, code, s.opts.CodeTTL),
	}
	// Delivery is best effort; the user can sign up again for a new code.
	if err := s.mail.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "send confirmation code failed", "username", user.Username, "error", err)
	}

	return &dto.SignupResponse{Username: user.Username, Email: user.Email}, nil
}

// findOrCreate returns the user registered with exactly this username and
// email, creating it when neither is taken.
func (s *authService) findOrCreate(ctx context.Context, username, email string) (*entity.User, error) {
	byName, err := s.repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if byName != nil {
		if byName.Email != email {
			return nil, apperror.Validation("username", "a user with this username already exists")
		}
		return byName, nil
	}

	byEmail, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if byEmail != nil {
		return nil, apperror.Validation("email", "a user with this email already exists")
	}

	user := &entity.User{Username: username, Email: email, Role: entity.RoleUser}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.FromDB(err, "user")
	}
	return user, nil
}

func (s *authService) Token(ctx context.Context, input dto.TokenRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.ConfirmationCodeHash == "" || user.ConfirmationCodeIssuedAt == nil {
		return nil, ErrInvalidCredentials
	}
	if s.now().Sub(*user.ConfirmationCodeIssuedAt) > s.opts.CodeTTL {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCodeHash), []byte(input.ConfirmationCode)) != nil {
		return nil, ErrInvalidCredentials
	}

	consumed, err := s.repo.ConsumeConfirmationCode(ctx, user.ID, user.ConfirmationCodeHash)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrInvalidCredentials
	}

	signed, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &dto.TokenResponse{Token: signed, ExpiresAt: expiresAt.Unix()}, nil
}
