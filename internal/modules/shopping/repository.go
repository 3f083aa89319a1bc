package shopping

import (
	"context"

	"github.com/georgemunganga/centimos-backend/internal/modules/pricing"
	"github.com/google/uuid"
)

// Repository defines the data access interface for shopping lists. Every
// mutation runs through WithinTx so it can lock the list row first.
type Repository interface {
	CreateList(ctx context.Context, l *ShoppingList) error
	GetList(ctx context.Context, id uuid.UUID) (*ShoppingList, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*ShoppingList, error)

	// WithinTx runs fn in a single transaction, committing only when fn
	// returns nil.
	WithinTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the transactional view of the repository.
type Tx interface {
	// LockList loads the list and its items, holding a row lock on the list
	// until the transaction ends.
	LockList(ctx context.Context, id uuid.UUID) (*ShoppingList, error)
	UpdateList(ctx context.Context, l *ShoppingList) error
	DeleteList(ctx context.Context, id uuid.UUID) error
	ClearPlannedPrices(ctx context.Context, listID uuid.UUID) error

	InsertItem(ctx context.Context, it *ListItem) error
	UpdateItem(ctx context.Context, it *ListItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	ProductExists(ctx context.Context, barcode string) (bool, error)
	StoreExists(ctx context.Context, id uuid.UUID) (bool, error)
	RecordPriceIfAbsent(ctx context.Context, o *pricing.Observation) (bool, error)
}
