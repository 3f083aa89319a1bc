package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/modules/catalog"
	"github.com/georgemunganga/centimos-backend/internal/modules/exchange"
	"github.com/shopspring/decimal"
)

// PredictionWindow is how far back observations count towards a predicted
// price.
const PredictionWindow = 30 * 24 * time.Hour

const currencyVES = "VES"

// RateProvider returns the most recent stored exchange rate for a currency.
type RateProvider interface {
	Latest(ctx context.Context, currency string) (*exchange.Rate, error)
}

// Estimator derives catalog price estimates from the ledger. USD prices are
// used as is and VES prices are converted with the latest USD rate; other
// currencies are ignored.
type Estimator struct {
	repo  Repository
	rates RateProvider
	now   func() time.Time
}

func NewEstimator(repo Repository, rates RateProvider) *Estimator {
	return &Estimator{repo: repo, rates: rates, now: time.Now}
}

func (e *Estimator) Estimate(ctx context.Context, barcode string) (*catalog.PriceEstimate, error) {
	rows, err := e.repo.ListByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}

	var (
		vesPerUSD       *decimal.Decimal
		rateLoaded      bool
		sum, recent     decimal.Decimal
		n, nRecent      int
		lowest, highest decimal.Decimal
	)
	since := e.now().Add(-PredictionWindow)

	for _, ps := range rows {
		usd := ps.Price
		switch ps.Currency {
		case DefaultCurrency:
		case currencyVES:
			if !rateLoaded {
				rateLoaded = true
				if vesPerUSD, err = e.usdRate(ctx); err != nil {
					return nil, err
				}
			}
			if vesPerUSD == nil {
				continue
			}
			usd = ps.Price.Div(*vesPerUSD)
		default:
			continue
		}

		if n == 0 || usd.LessThan(lowest) {
			lowest = usd
		}
		if n == 0 || usd.GreaterThan(highest) {
			highest = usd
		}
		sum = sum.Add(usd)
		n++
		if ps.RecordedAt.After(since) {
			recent = recent.Add(usd)
			nRecent++
		}
	}
	if n == 0 {
		return nil, nil
	}

	est := &catalog.PriceEstimate{
		EstimatedPriceUSD: sum.Div(decimal.NewFromInt(int64(n))).Round(2),
		LowestPriceUSD:    lowest.Round(2),
		HighestPriceUSD:   highest.Round(2),
		DataPoints:        n,
	}
	if nRecent > 0 {
		predicted := recent.Div(decimal.NewFromInt(int64(nRecent))).Round(2)
		est.PredictedPriceUSD = &predicted
	}
	return est, nil
}

// usdRate returns VES per USD, or nil when no rate has been stored yet.
func (e *Estimator) usdRate(ctx context.Context) (*decimal.Decimal, error) {
	if e.rates == nil {
		return nil, nil
	}
	r, err := e.rates.Latest(ctx, exchange.CurrencyUSD)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !r.RateToVES.IsPositive() {
		return nil, nil
	}
	return &r.RateToVES, nil
}
