package exchange

import "context"

// Repository defines the data access interface for exchange rates.
type Repository interface {
	Create(ctx context.Context, r *Rate) error
	Latest(ctx context.Context, currency string) (*Rate, error)
	History(ctx context.Context, limit int) ([]*Rate, error)
}
