package auth

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login verifies the credentials and returns a signed access token.
	Login(ctx context.Context, username, password string) (*Token, error)
	// ParseToken validates a token and returns the user id it was issued to.
	ParseToken(token string) (uuid.UUID, error)
}

// Token is the response to a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
