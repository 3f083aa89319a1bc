package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/modules/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRates struct {
	rate  *exchange.Rate
	err   error
	calls int
}

func (s *stubRates) Latest(context.Context, string) (*exchange.Rate, error) {
	s.calls++
	if s.rate == nil && s.err == nil {
		return nil, apperr.NotFound("exchange rate")
	}
	return s.rate, s.err
}

func newTestEstimator(l *memLedger, rates RateProvider, now time.Time) *Estimator {
	e := NewEstimator(l, rates)
	e.now = func() time.Time { return now }
	return e
}

func TestEstimateConvertsVES(t *testing.T) {
	l := newMemLedger()
	st := l.addStore("A", 0, 0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.seed(st, "2.00", "USD", now.Add(-90*24*time.Hour))
	l.seed(st, "3.00", "USD", now.Add(-24*time.Hour))
	l.seed(st, "400.00", "VES", now.Add(-2*24*time.Hour))
	l.seed(st, "5.00", "EUR", now.Add(-time.Hour))

	rates := &stubRates{rate: &exchange.Rate{CurrencyCode: exchange.CurrencyUSD, RateToVES: decimal.NewFromInt(100)}}
	est, err := newTestEstimator(l, rates, now).Estimate(context.Background(), barcode)
	require.NoError(t, err)
	require.NotNil(t, est)

	assert.Equal(t, 3, est.DataPoints)
	assert.Equal(t, "3", est.EstimatedPriceUSD.String())
	assert.Equal(t, "2", est.LowestPriceUSD.String())
	assert.Equal(t, "4", est.HighestPriceUSD.String())
	require.NotNil(t, est.PredictedPriceUSD)
	assert.Equal(t, "3.5", est.PredictedPriceUSD.String())
	assert.Equal(t, 1, rates.calls)
}

func TestEstimateWithoutRateSkipsVES(t *testing.T) {
	l := newMemLedger()
	st := l.addStore("A", 0, 0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.seed(st, "400.00", "VES", now.Add(-time.Hour))

	est, err := newTestEstimator(l, &stubRates{}, now).Estimate(context.Background(), barcode)
	require.NoError(t, err)
	assert.Nil(t, est)

	l.seed(st, "1.50", "USD", now.Add(-60*24*time.Hour))
	est, err = newTestEstimator(l, nil, now).Estimate(context.Background(), barcode)
	require.NoError(t, err)
	require.NotNil(t, est)
	assert.Equal(t, 1, est.DataPoints)
	assert.Equal(t, "1.5", est.EstimatedPriceUSD.String())
	assert.Nil(t, est.PredictedPriceUSD)
}

func TestEstimateRateFailure(t *testing.T) {
	l := newMemLedger()
	st := l.addStore("A", 0, 0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.seed(st, "400.00", "VES", now)

	_, err := newTestEstimator(l, &stubRates{err: errors.New("db down")}, now).Estimate(context.Background(), barcode)
	assert.Error(t, err)
}

func TestEstimateNoObservations(t *testing.T) {
	est, err := newTestEstimator(newMemLedger(), nil, time.Now()).Estimate(context.Background(), barcode)
	require.NoError(t, err)
	assert.Nil(t, est)
}
