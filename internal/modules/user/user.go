package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Lists and price observations are owned by
// the user that created them.
type User struct {
	ID           uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest holds the data for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
