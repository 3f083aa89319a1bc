package pricing

import "context"

// Repository defines the data access interface for the price ledger.
type Repository interface {
	Record(ctx context.Context, o *Observation) error
	// ListByBarcode returns every observation of barcode joined with its
	// store's metadata, oldest first.
	ListByBarcode(ctx context.Context, barcode string) ([]*PriceSummary, error)
}
