package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/metrics"
)

// Service defines catalog business logic.
type Service interface {
	GetProduct(ctx context.Context, code string) (*Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	Exists(ctx context.Context, code string) (bool, error)
	CheckBarcode(code string) BarcodeCheck
}

// Estimator prices a product from the price ledger. It returns nil when no
// observation can be used.
type Estimator interface {
	Estimate(ctx context.Context, barcode string) (*PriceEstimate, error)
}

type service struct {
	repo      Repository
	source    Source
	estimator Estimator
	metrics   *metrics.Registry
	log       *slog.Logger
}

// NewService wires the catalog. source may be nil, in which case unknown
// barcodes are simply not found; estimator may be nil to skip estimates.
func NewService(repo Repository, source Source, estimator Estimator, m *metrics.Registry, log *slog.Logger) Service {
	return &service{repo: repo, source: source, estimator: estimator, metrics: m, log: log}
}

func (s *service) GetProduct(ctx context.Context, code string) (*Product, error) {
	barcode, err := ValidateAndNormalize(code)
	if err != nil {
		return nil, err
	}

	p, err := s.resolve(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if s.estimator != nil {
		est, err := s.estimator.Estimate(ctx, barcode)
		if err != nil {
			s.log.WarnContext(ctx, "price estimate failed", "barcode", barcode, "error", err)
		}
		p.PriceEstimate = est
	}
	return p, nil
}

// resolve finds barcode locally, then through the external source, saving
// what the source returns.
func (s *service) resolve(ctx context.Context, barcode string) (*Product, error) {
	p, err := s.repo.GetByBarcode(ctx, barcode)
	if err == nil {
		s.lookup(metrics.LookupLocal)
		return p, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	if s.source == nil {
		s.lookup(metrics.LookupMiss)
		return nil, apperr.NotFound("product")
	}
	ext, err := s.source.Fetch(ctx, barcode)
	if err != nil {
		// Unreachable and absent look the same to callers.
		s.log.WarnContext(ctx, "external product lookup failed", "barcode", barcode, "error", err)
	}
	if err != nil || ext == nil {
		s.lookup(metrics.LookupMiss)
		return nil, apperr.NotFound("product")
	}

	p = &Product{
		Barcode:    barcode,
		Name:       ext.Name,
		Brand:      ext.Brand,
		Category:   ext.Category,
		ImageURL:   ext.ImageURL,
		DataSource: SourceOFF,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.lookup(metrics.LookupExternal)
	s.log.InfoContext(ctx, "product imported", "barcode", barcode, "name", p.Name)
	return p, nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	barcode, err := ValidateAndNormalize(strings.TrimSpace(req.Barcode))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("name is required")
	}

	p := &Product{
		Barcode:    barcode,
		Name:       name,
		Brand:      strings.TrimSpace(req.Brand),
		Category:   strings.TrimSpace(req.Category),
		ImageURL:   strings.TrimSpace(req.ImageURL),
		DataSource: SourceUser,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Exists reports whether the normalized form of code is in the catalog.
func (s *service) Exists(ctx context.Context, code string) (bool, error) {
	return s.repo.Exists(ctx, Normalize(code))
}

func (s *service) CheckBarcode(code string) BarcodeCheck {
	check := BarcodeCheck{Barcode: code, Normalized: Normalize(code), Valid: true}
	if err := Validate(code); err != nil {
		check.Valid = false
		check.Error = err.Error()
	}
	return check
}

func (s *service) lookup(source string) {
	if s.metrics != nil {
		s.metrics.ProductLookups.WithLabelValues(source).Inc()
	}
}
