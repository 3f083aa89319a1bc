package pricing

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/metrics"
	"github.com/georgemunganga/centimos-backend/internal/modules/catalog"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/prometheus/client_golang/prometheus"
)

// DistanceFunc returns the distance in meters between two lon/lat points.
type DistanceFunc func(a, b orb.Point) float64

// ProductChecker and StoreChecker are the catalog and store lookups the
// ledger needs before accepting a manual price.
type ProductChecker interface {
	Exists(ctx context.Context, code string) (bool, error)
}

type StoreChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service defines price ledger and comparison logic.
type Service interface {
	ComparePrices(ctx context.Context, code string, from *orb.Point) ([]*PriceSummary, error)
	LogPrice(ctx context.Context, userID uuid.UUID, req LogPriceRequest) (*Observation, error)
}

type service struct {
	repo     Repository
	products ProductChecker
	stores   StoreChecker
	distance DistanceFunc
	metrics  *metrics.Registry
	log      *slog.Logger
}

// NewService builds the pricing service. A nil distance uses the haversine
// great-circle distance.
func NewService(repo Repository, products ProductChecker, stores StoreChecker, distance DistanceFunc, m *metrics.Registry, log *slog.Logger) Service {
	if distance == nil {
		distance = geo.DistanceHaversine
	}
	return &service{repo: repo, products: products, stores: stores, distance: distance, metrics: m, log: log}
}

func (s *service) ComparePrices(ctx context.Context, code string, from *orb.Point) ([]*PriceSummary, error) {
	barcode, err := catalog.ValidateAndNormalize(code)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		timer := prometheus.NewTimer(s.metrics.ComparisonSeconds)
		defer timer.ObserveDuration()
	}

	rows, err := s.repo.ListByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	summaries := latestPerStore(rows)
	if from != nil {
		for _, ps := range summaries {
			d := s.distance(*from, ps.Location)
			ps.DistanceMeters = &d
		}
	}
	sortSummaries(summaries)
	return summaries, nil
}

// latestPerStore keeps the newest observation of each store. Of two rows
// with the same timestamp the later one in rows wins. Stores keep the order
// of their first row.
func latestPerStore(rows []*PriceSummary) []*PriceSummary {
	latest := map[uuid.UUID]int{}
	out := []*PriceSummary{}
	for _, ps := range rows {
		i, ok := latest[ps.StoreID]
		if !ok {
			latest[ps.StoreID] = len(out)
			out = append(out, ps)
			continue
		}
		if !ps.RecordedAt.Before(out[i].RecordedAt) {
			out[i] = ps
		}
	}
	return out
}

// sortSummaries orders by price, then by distance when one is known.
func sortSummaries(summaries []*PriceSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c < 0
		}
		if a.DistanceMeters != nil && b.DistanceMeters != nil {
			return *a.DistanceMeters < *b.DistanceMeters
		}
		return false
	})
}

func (s *service) LogPrice(ctx context.Context, userID uuid.UUID, req LogPriceRequest) (*Observation, error) {
	barcode, err := catalog.ValidateAndNormalize(req.Barcode)
	if err != nil {
		return nil, err
	}
	if err := CheckPrice("price", req.Price); err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) > 5 {
		return nil, apperr.Invalid("currency must be at most 5 characters")
	}

	if ok, err := s.products.Exists(ctx, barcode); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperr.NotFound("product")
	}
	if ok, err := s.stores.Exists(ctx, req.StoreID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperr.NotFound("store")
	}

	o := &Observation{
		Barcode:  barcode,
		StoreID:  req.StoreID,
		UserID:   userID,
		Price:    req.Price,
		Currency: currency,
	}
	if err := s.repo.Record(ctx, o); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObservationsRecorded.Inc()
	}
	s.log.DebugContext(ctx, "price logged", "barcode", barcode, "store_id", req.StoreID, "price", o.Price.String())
	return o, nil
}
