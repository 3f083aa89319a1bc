package cli

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/georgemunganga/centimos-backend/internal/config"
	"github.com/georgemunganga/centimos-backend/internal/metrics"
	"github.com/georgemunganga/centimos-backend/internal/modules/auth"
	"github.com/georgemunganga/centimos-backend/internal/modules/catalog"
	"github.com/georgemunganga/centimos-backend/internal/modules/exchange"
	"github.com/georgemunganga/centimos-backend/internal/modules/pricing"
	"github.com/georgemunganga/centimos-backend/internal/modules/shopping"
	"github.com/georgemunganga/centimos-backend/internal/modules/store"
	"github.com/georgemunganga/centimos-backend/internal/modules/user"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App is the wired application: HTTP routes plus the services background
// jobs need.
type App struct {
	Router http.Handler
	Rates  exchange.Service
}

// NewApp wires every module onto db.
func NewApp(db *sql.DB, cfg *config.Config, reg *metrics.Registry, log *slog.Logger) *App {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.HTTPTimeout))

	router.Get("/health", healthHandler(db))
	router.Handle("/metrics", reg.Handler())

	// ── Identity ─────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	authService := auth.NewService(userRepo, []byte(cfg.JWTSecret), cfg.JWTTTL)
	requireAuth := auth.Middleware(authService)
	user.NewHandler(user.NewService(userRepo)).RegisterRoutes(router, requireAuth)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Exchange rates ───────────────────────────────────────
	ratesService := NewRatesService(db, cfg, reg, log)
	exchange.NewHandler(ratesService).RegisterRoutes(router, requireAuth)

	// ── Catalog & stores ─────────────────────────────────────
	priceRepo := pricing.NewPostgresRepository(db)
	off := catalog.NewOpenFoodFacts(cfg.OFFBaseURL, cfg.OFFUserAgent, cfg.OFFRatePerSecond, cfg.OFFRateBurst, cfg.HTTPTimeout)
	estimator := pricing.NewEstimator(priceRepo, ratesService)
	catalogService := catalog.NewService(catalog.NewPostgresRepository(db), off, estimator, reg, log)
	catalog.NewHandler(catalogService).RegisterRoutes(router, requireAuth)

	storeService := store.NewService(store.NewPostgresRepository(db))
	store.NewHandler(storeService).RegisterRoutes(router, requireAuth)

	// ── Prices & lists ───────────────────────────────────────
	pricingService := pricing.NewService(priceRepo, catalogService, storeService, nil, reg, log)
	pricing.NewHandler(pricingService).RegisterRoutes(router, requireAuth)

	shoppingService := shopping.NewService(shopping.NewPostgresRepository(db), reg, log)
	shopping.NewHandler(shoppingService).RegisterRoutes(router, requireAuth)

	return &App{Router: router, Rates: ratesService}
}

// NewRatesService builds the exchange rate service with its sources in
// fallback order.
func NewRatesService(db *sql.DB, cfg *config.Config, reg *metrics.Registry, log *slog.Logger) exchange.Service {
	sources := []exchange.Source{
		exchange.NewBCV(cfg.BCVURL, cfg.HTTPTimeout, cfg.BCVSkipTLSVerify),
		exchange.NewDolarAPI(cfg.DolarAPIURL, cfg.HTTPTimeout),
	}
	return exchange.NewService(exchange.NewPostgresRepository(db), sources, reg, log)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}
