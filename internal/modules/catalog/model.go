package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataSource records where a product's metadata came from.
type DataSource string

const (
	SourceUser DataSource = "USER"
	SourceOFF  DataSource = "OFF"
)

// Product is a catalog entry keyed by its normalized 13-digit barcode.
type Product struct {
	Barcode    string     `json:"barcode"`
	Name       string     `json:"name"`
	Brand      string     `json:"brand,omitempty"`
	Category   string     `json:"category,omitempty"`
	ImageURL   string     `json:"image_url,omitempty"`
	DataSource DataSource `json:"data_source"`
	CreatedAt  time.Time  `json:"created_at"`

	// Set on reads when the price ledger has usable observations.
	*PriceEstimate
}

// PriceEstimate summarizes what shoppers have paid for a product, in US
// dollars. PredictedPriceUSD only covers recent observations and is nil when
// there are none.
type PriceEstimate struct {
	EstimatedPriceUSD decimal.Decimal  `json:"estimated_price_usd"`
	PredictedPriceUSD *decimal.Decimal `json:"predicted_price_usd,omitempty"`
	LowestPriceUSD    decimal.Decimal  `json:"lowest_price_usd"`
	HighestPriceUSD   decimal.Decimal  `json:"highest_price_usd"`
	DataPoints        int              `json:"data_points"`
}

// CreateProductRequest holds the data for registering a product by hand.
type CreateProductRequest struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
}

// ExternalProduct is product metadata as reported by an external source.
type ExternalProduct struct {
	Barcode  string
	Name     string
	Brand    string
	Category string
	ImageURL string
}

// BarcodeCheck is the result of validating a barcode without looking it up.
type BarcodeCheck struct {
	Barcode    string `json:"barcode"`
	Normalized string `json:"normalized"`
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
}
