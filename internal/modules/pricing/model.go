package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
)

// DefaultCurrency applies when a price is logged without one.
const DefaultCurrency = "USD"

// Observation is one ledger entry: a price seen for a product at a store,
// reported by a user. Observations are never edited; a correction is a new
// observation.
type Observation struct {
	ID         uuid.UUID       `json:"log_id"`
	Barcode    string          `json:"product_barcode"`
	StoreID    uuid.UUID       `json:"store_id"`
	UserID     uuid.UUID       `json:"user_id"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// PriceSummary is the latest observation of a product at one store.
type PriceSummary struct {
	StoreID        uuid.UUID       `json:"store_id"`
	StoreName      string          `json:"store_name"`
	Address        string          `json:"address,omitempty"`
	Location       orb.Point       `json:"-"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	RecordedAt     time.Time       `json:"recorded_at"`
	DistanceMeters *float64        `json:"distance_meters,omitempty"`
}

// LogPriceRequest holds a manually reported price.
type LogPriceRequest struct {
	Barcode  string          `json:"product_barcode"`
	StoreID  uuid.UUID       `json:"store_id"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}
