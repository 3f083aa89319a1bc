package catalog

import "context"

// Repository defines the data access interface for products.
type Repository interface {
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	// Upsert inserts p or refreshes its metadata, keeping the original
	// created_at on conflict.
	Upsert(ctx context.Context, p *Product) error
	Exists(ctx context.Context, barcode string) (bool, error)
}
