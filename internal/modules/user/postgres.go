package user

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (user_id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash).Scan(&u.CreatedAt)
	return apperr.FromDB(err, "user")
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("user")
	}
	return r.getUser(ctx, `WHERE user_id = $1`, parsedID)
}

func (r *postgresRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.getUser(ctx, `WHERE username = $1`, username)
}

func (r *postgresRepository) getUser(ctx context.Context, where string, arg interface{}) (*User, error) {
	u := &User{}
	query := `
		SELECT user_id, username, email, password_hash, created_at
		FROM users ` + where
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return u, nil
}
