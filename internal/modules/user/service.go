package user

import (
	"context"
	"net/mail"
	"strings"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service defines the interface for user-related business logic.
type Service interface {
	RegisterUser(ctx context.Context, req RegisterRequest) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
}

const minPasswordLength = 8

type service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RegisterUser(ctx context.Context, req RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || len(username) > 50 {
		return nil, apperr.Invalid("username is required and must be at most 50 characters")
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return nil, apperr.Invalid("email is not a valid address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Invalid("password must be at least %d characters", minPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.ToLower(addr.Address),
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}
