package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memRepo struct {
	users map[string]*User
}

func newMemRepo() *memRepo { return &memRepo{users: map[string]*User{}} }

func (m *memRepo) CreateUser(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("user already exists: %w", apperr.ErrConflict)
		}
	}
	m.users[u.ID.String()] = u
	return nil
}

func (m *memRepo) GetUserByID(_ context.Context, id string) (*User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user")
}

func (m *memRepo) GetUserByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	u, err := svc.RegisterUser(ctx, RegisterRequest{Username: " maria ", Email: "Maria@Example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "maria", u.Username)
	assert.Equal(t, "maria@example.com", u.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")))

	got, err := svc.GetUser(ctx, u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.RegisterUser(ctx, RegisterRequest{Username: "maria", Email: "other@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterUserValidation(t *testing.T) {
	svc := NewService(newMemRepo())
	cases := map[string]RegisterRequest{
		"missing username": {Email: "a@b.co", Password: "longenough"},
		"bad email":        {Username: "a", Email: "nope", Password: "longenough"},
		"short password":   {Username: "a", Email: "a@b.co", Password: "short"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.RegisterUser(context.Background(), req)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
}
