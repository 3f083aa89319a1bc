package pricing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeMeta struct {
	name     string
	location orb.Point
}

// memLedger keeps observations in memory and returns them oldest first,
// like the SQL does.
type memLedger struct {
	obs     []*Observation
	stores  map[uuid.UUID]storeMeta
	queries int
	clock   time.Time
}

func newMemLedger() *memLedger {
	return &memLedger{stores: map[uuid.UUID]storeMeta{}, clock: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memLedger) addStore(name string, lon, lat float64) uuid.UUID {
	id := uuid.New()
	m.stores[id] = storeMeta{name: name, location: orb.Point{lon, lat}}
	return id
}

func (m *memLedger) Record(_ context.Context, o *Observation) error {
	m.clock = m.clock.Add(time.Second)
	o.ID, o.RecordedAt = uuid.New(), m.clock
	cp := *o
	m.obs = append(m.obs, &cp)
	return nil
}

// seed stores an observation with an explicit timestamp.
func (m *memLedger) seed(store uuid.UUID, price, currency string, at time.Time) {
	m.obs = append(m.obs, &Observation{
		ID: uuid.New(), Barcode: barcode, StoreID: store, UserID: uuid.New(),
		Price: decimal.RequireFromString(price), Currency: currency, RecordedAt: at,
	})
}

func (m *memLedger) ListByBarcode(_ context.Context, code string) ([]*PriceSummary, error) {
	m.queries++
	out := []*PriceSummary{}
	for _, o := range m.obs {
		if o.Barcode != code {
			continue
		}
		meta := m.stores[o.StoreID]
		out = append(out, &PriceSummary{
			StoreID: o.StoreID, StoreName: meta.name, Location: meta.location,
			Price: o.Price, Currency: o.Currency, RecordedAt: o.RecordedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

type allowAll struct{}

func (allowAll) Exists(context.Context, string) (bool, error) { return true, nil }

type knownStores map[uuid.UUID]storeMeta

func (k knownStores) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := k[id]
	return ok, nil
}

const barcode = "7591016000007"

func newTestService(l *memLedger) Service {
	return NewService(l, allowAll{}, knownStores(l.stores), nil, metrics.NewRegistry(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func logPrice(t *testing.T, svc Service, store uuid.UUID, price string) {
	t.Helper()
	_, err := svc.LogPrice(context.Background(), uuid.New(), LogPriceRequest{
		Barcode: barcode, StoreID: store, Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
}

func TestCompareLatestPerStore(t *testing.T) {
	l := newMemLedger()
	svc := newTestService(l)
	a := l.addStore("A", -68.00, 10.20)
	b := l.addStore("B", -68.01, 10.21)

	logPrice(t, svc, a, "4.00")
	logPrice(t, svc, b, "3.00")
	logPrice(t, svc, a, "2.50")
	logPrice(t, svc, b, "3.75")

	got, err := svc.ComparePrices(context.Background(), barcode, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].StoreID)
	assert.Equal(t, "2.5", got[0].Price.String())
	assert.Equal(t, b, got[1].StoreID)
	assert.Equal(t, "3.75", got[1].Price.String())
	for _, ps := range got {
		assert.Nil(t, ps.DistanceMeters)
	}
}

func TestCompareSortsByPriceThenDistance(t *testing.T) {
	l := newMemLedger()
	svc := newTestService(l)
	origin := orb.Point{-68.0053, 10.1989}
	far := l.addStore("far", -67.90, 10.30)
	near := l.addStore("near", -68.0050, 10.1990)
	cheap := l.addStore("cheap", -66.90, 10.50)

	logPrice(t, svc, far, "5.00")
	logPrice(t, svc, near, "5.00")
	logPrice(t, svc, cheap, "1.99")

	got, err := svc.ComparePrices(context.Background(), barcode, &origin)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{cheap, near, far}, []uuid.UUID{got[0].StoreID, got[1].StoreID, got[2].StoreID})

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		require.NotNil(t, cur.DistanceMeters)
		assert.True(t, prev.Price.LessThanOrEqual(cur.Price))
		if prev.Price.Equal(cur.Price) {
			assert.LessOrEqual(t, *prev.DistanceMeters, *cur.DistanceMeters)
		}
	}
	assert.InDelta(t, 35, *got[1].DistanceMeters, 10)
}

func TestCompareUsesInjectedDistance(t *testing.T) {
	l := newMemLedger()
	a := l.addStore("A", 0, 0)
	b := l.addStore("B", 1, 1)
	svc := NewService(l, allowAll{}, knownStores(l.stores), func(_, p orb.Point) float64 {
		return 100 - p.Lon()
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	logPrice(t, svc, a, "1")
	logPrice(t, svc, b, "1")

	got, err := svc.ComparePrices(context.Background(), barcode, &orb.Point{0, 0})
	require.NoError(t, err)
	assert.Equal(t, b, got[0].StoreID)
	assert.Equal(t, 99.0, *got[0].DistanceMeters)
}

func TestCompareEmptyAndInvalid(t *testing.T) {
	l := newMemLedger()
	svc := newTestService(l)

	got, err := svc.ComparePrices(context.Background(), "4006381333931", nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = svc.ComparePrices(context.Background(), "4006381333932", nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidCheckDigit)
	_, err = svc.ComparePrices(context.Background(), "12ab", nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidFormat)
	assert.Equal(t, 1, l.queries)
}

func TestLogPriceValidation(t *testing.T) {
	l := newMemLedger()
	svc := newTestService(l)
	st := l.addStore("A", 0, 0)
	ctx := context.Background()

	o, err := svc.LogPrice(ctx, uuid.New(), LogPriceRequest{Barcode: "96385074", StoreID: st, Price: decimal.NewFromFloat(1.25), Currency: "ves"})
	require.NoError(t, err)
	assert.Equal(t, "0000096385074", o.Barcode)
	assert.Equal(t, "VES", o.Currency)

	o, err = svc.LogPrice(ctx, uuid.New(), LogPriceRequest{Barcode: "96385074", StoreID: st, Price: decimal.NewFromInt(2)})
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, o.Currency)

	_, err = svc.LogPrice(ctx, uuid.New(), LogPriceRequest{Barcode: "96385074", StoreID: st, Price: decimal.Zero})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.LogPrice(ctx, uuid.New(), LogPriceRequest{Barcode: "96385074", StoreID: uuid.New(), Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCompareHandlerRequiresBothCoordinates(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(newTestService(newMemLedger())).RegisterRoutes(router, func(next http.Handler) http.Handler { return next })

	for target, want := range map[string]int{
		"/api/v1/prices/compare/4006381333931":                 http.StatusOK,
		"/api/v1/prices/compare/4006381333931?lat=10.2&lon=-68": http.StatusOK,
		"/api/v1/prices/compare/4006381333931?lat=10.2":         http.StatusBadRequest,
		"/api/v1/prices/compare/4006381333931?lat=95&lon=1":     http.StatusBadRequest,
		"/api/v1/prices/compare/4006381333932":                 http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, want, rec.Code, target)
	}
}

func TestCompareKeepsNewestObservationPerStore(t *testing.T) {
	l := newMemLedger()
	svc := newTestService(l)
	a := l.addStore("A", 0, 0)
	b := l.addStore("B", 0, 0)
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	// inserted out of time order; equal timestamps resolve to the later row
	l.seed(a, "9.00", "USD", t0.Add(2*time.Hour))
	l.seed(a, "1.00", "USD", t0)
	l.seed(b, "4.00", "USD", t0.Add(time.Hour))
	l.seed(b, "5.00", "USD", t0.Add(time.Hour))

	got, err := svc.ComparePrices(context.Background(), barcode, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b, got[0].StoreID)
	assert.Equal(t, "5", got[0].Price.String())
	assert.Equal(t, a, got[1].StoreID)
	assert.Equal(t, "9", got[1].Price.String())
	assert.Equal(t, t0.Add(2*time.Hour), got[1].RecordedAt)
}

func TestLatestPerStoreIgnoresRowOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := []*PriceSummary{
		{StoreID: a, Price: decimal.NewFromInt(3), RecordedAt: t0.Add(time.Hour)},
		{StoreID: b, Price: decimal.NewFromInt(7), RecordedAt: t0},
		{StoreID: a, Price: decimal.NewFromInt(1), RecordedAt: t0},
	}

	got := latestPerStore(rows)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].StoreID)
	assert.Equal(t, "3", got[0].Price.String())
	assert.Equal(t, b, got[1].StoreID)
	assert.Empty(t, latestPerStore(nil))
}

func TestLogPriceRejectsUnstorablePrices(t *testing.T) {
	l := newMemLedger()
	svc := newTestService(l)
	st := l.addStore("A", 0, 0)

	for _, p := range []string{"1.123456789", "10000000000", "-1"} {
		_, err := svc.LogPrice(context.Background(), uuid.New(), LogPriceRequest{
			Barcode: barcode, StoreID: st, Price: decimal.RequireFromString(p),
		})
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, p)
	}
	assert.Empty(t, l.obs)

	_, err := svc.LogPrice(context.Background(), uuid.New(), LogPriceRequest{
		Barcode: barcode, StoreID: st, Price: decimal.RequireFromString("1.12345678"),
	})
	assert.NoError(t, err)
}
