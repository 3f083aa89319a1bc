package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/metrics"
	"github.com/google/uuid"
)

const (
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 365
)

// ErrNoSource is returned by Update when every source failed.
var ErrNoSource = errors.New("exchange rate unavailable from all sources")

// Service defines exchange rate business logic.
type Service interface {
	// Update fetches the USD rate from the first source that answers and
	// stores it.
	Update(ctx context.Context) (*Rate, error)
	Latest(ctx context.Context, currency string) (*Rate, error)
	History(ctx context.Context, limit int) ([]*Rate, error)
	Create(ctx context.Context, req CreateRateRequest) (*Rate, error)
}

type service struct {
	repo    Repository
	sources []Source
	metrics *metrics.Registry
	log     *slog.Logger
}

// NewService creates the service. sources are tried in order.
func NewService(repo Repository, sources []Source, m *metrics.Registry, log *slog.Logger) Service {
	return &service{repo: repo, sources: sources, metrics: m, log: log}
}

func (s *service) Update(ctx context.Context) (*Rate, error) {
	var errs []error
	for _, src := range s.sources {
		value, err := src.FetchUSD(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "exchange rate source failed", "source", src.Name(), "error", err)
			s.count(src.Name(), "error")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		s.count(src.Name(), "ok")

		rate := &Rate{
			ID:           uuid.New(),
			CurrencyCode: CurrencyUSD,
			RateToVES:    value,
			Source:       src.Name(),
		}
		if err := s.repo.Create(ctx, rate); err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "rate updated", "source", rate.Source, "rate_to_ves", rate.RateToVES.String())
		return rate, nil
	}
	s.log.ErrorContext(ctx, "exchange rate update failed", "error", errors.Join(errs...))
	return nil, fmt.Errorf("%w: %w", ErrNoSource, errors.Join(errs...))
}

func (s *service) Latest(ctx context.Context, currency string) (*Rate, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = CurrencyUSD
	}
	return s.repo.Latest(ctx, currency)
}

func (s *service) History(ctx context.Context, limit int) ([]*Rate, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.repo.History(ctx, limit)
}

func (s *service) Create(ctx context.Context, req CreateRateRequest) (*Rate, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == "" || len(currency) > 5 {
		return nil, apperr.Invalid("currency_code is required and must be at most 5 characters")
	}
	if !req.RateToVES.IsPositive() {
		return nil, apperr.Invalid("rate_to_ves must be greater than zero")
	}
	rate := &Rate{
		ID:           uuid.New(),
		CurrencyCode: currency,
		RateToVES:    req.RateToVES,
		Source:       strings.TrimSpace(req.Source),
	}
	if rate.Source == "" {
		rate.Source = "MANUAL"
	}
	if err := s.repo.Create(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *service) count(source, outcome string) {
	if s.metrics != nil {
		s.metrics.RateUpdates.WithLabelValues(source, outcome).Inc()
	}
}
