package exchange

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyUSD is the only currency the automatic update fetches.
const CurrencyUSD = "USD"

// Rate is the price of one unit of CurrencyCode in bolívares.
type Rate struct {
	ID           uuid.UUID       `json:"rate_id"`
	CurrencyCode string          `json:"currency_code"`
	RateToVES    decimal.Decimal `json:"rate_to_ves"`
	Source       string          `json:"source,omitempty"`
	RecordedAt   time.Time       `json:"recorded_at"`
}

// CreateRateRequest records a rate by hand.
type CreateRateRequest struct {
	CurrencyCode string          `json:"currency_code"`
	RateToVES    decimal.Decimal `json:"rate_to_ves"`
	Source       string          `json:"source"`
}
