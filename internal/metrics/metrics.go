package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup sources for ProductLookups.
const (
	LookupLocal    = "local"
	LookupExternal = "external"
	LookupMiss     = "miss"
)

type Registry struct {
	reg *prometheus.Registry

	ObservationsRecorded     prometheus.Counter
	ObservationsDeduplicated prometheus.Counter
	ListsCompleted           prometheus.Counter
	ProductLookups           *prometheus.CounterVec
	RateUpdates              *prometheus.CounterVec
	ComparisonSeconds        prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	recorded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "centimos_price_observations_recorded_total",
		Help: "Price observations appended to the ledger.",
	})
	deduped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "centimos_price_observations_deduplicated_total",
		Help: "Ledger writes skipped because an identical observation already existed.",
	})
	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "centimos_lists_completed_total",
		Help: "Shopping lists moved to COMPLETED.",
	})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "centimos_product_lookups_total",
		Help: "Product lookups by resolution source.",
	}, []string{"source"})
	rates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "centimos_exchange_rate_updates_total",
		Help: "Exchange rate fetch attempts by source and outcome.",
	}, []string{"source", "outcome"})
	comparison := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "centimos_price_comparison_seconds",
		Help:    "Latency of price comparison queries.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(recorded, deduped, completed, lookups, rates, comparison)
	return &Registry{
		reg:                      r,
		ObservationsRecorded:     recorded,
		ObservationsDeduplicated: deduped,
		ListsCompleted:           completed,
		ProductLookups:           lookups,
		RateUpdates:              rates,
		ComparisonSeconds:        comparison,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
