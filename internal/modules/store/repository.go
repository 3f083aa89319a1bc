package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Repository defines the data access interface for stores.
type Repository interface {
	Create(ctx context.Context, s *Store) error
	GetByID(ctx context.Context, id uuid.UUID) (*Store, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*Store, error)
	// Nearby returns stores within radius meters of center, closest first.
	Nearby(ctx context.Context, center orb.Point, radius float64) ([]*NearbyStore, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
