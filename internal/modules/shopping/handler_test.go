package shopping

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/georgemunganga/centimos-backend/internal/identity"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(f *fixture) http.Handler {
	router := chi.NewRouter()
	asUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := uuid.Parse(r.Header.Get("X-Test-User")); err == nil {
				r = r.WithContext(identity.WithUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
	NewHandler(f.svc).RegisterRoutes(router, asUser)
	return router
}

func call(t *testing.T, h http.Handler, user uuid.UUID, method, target, body string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != uuid.Nil {
		req.Header.Set("X-Test-User", user.String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestListLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	var l ShoppingList
	require.Equal(t, http.StatusCreated, call(t, h, f.user, http.MethodPost, "/api/v1/lists", `{"name":"Mercado"}`, &l))
	base := "/api/v1/lists/" + l.ID.String()

	require.Equal(t, http.StatusCreated, call(t, h, f.user, http.MethodPost, base+"/items",
		`{"product_barcode":"`+product+`","quantity":2}`, &l))
	require.Len(t, l.Items, 1)
	itemURL := base + "/items/" + l.Items[0].ID.String()

	var it ListItem
	require.Equal(t, http.StatusOK, call(t, h, f.user, http.MethodPut, itemURL, `{"planned_price":3.50}`, &it))
	assert.Equal(t, "3.5", it.PlannedPrice.String())

	require.Equal(t, http.StatusOK, call(t, h, f.user, http.MethodPost, base+"/complete",
		`{"store_id":"`+f.store.String()+`"}`, &l))
	assert.Equal(t, StatusCompleted, l.Status)
	assert.Len(t, f.repo.observations(product), 1)

	assert.Equal(t, http.StatusConflict, call(t, h, f.user, http.MethodPut, itemURL, `{"planned_price":4}`, nil))
	assert.Equal(t, http.StatusOK, call(t, h, f.user, http.MethodPut, base, `{"status":"ACTIVE"}`, &l))
	assert.Nil(t, l.Items[0].PlannedPrice)

	assert.Equal(t, http.StatusForbidden, call(t, h, uuid.New(), http.MethodGet, base, "", nil))
	assert.Equal(t, http.StatusNotFound, call(t, h, f.user, http.MethodGet, "/api/v1/lists/nope", "", nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, h, uuid.Nil, http.MethodGet, base, "", nil))
	assert.Equal(t, http.StatusBadRequest, call(t, h, f.user, http.MethodPost, base+"/complete", `{}`, nil))

	assert.Equal(t, http.StatusNoContent, call(t, h, f.user, http.MethodDelete, itemURL, "", nil))
	assert.Equal(t, http.StatusNoContent, call(t, h, f.user, http.MethodDelete, base, "", nil))
	assert.Equal(t, http.StatusNotFound, call(t, h, f.user, http.MethodGet, base, "", nil))
}

func TestInternalErrorsAreNotEchoed(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	var l ShoppingList
	require.Equal(t, http.StatusCreated, call(t, h, f.user, http.MethodPost, "/api/v1/lists", `{"name":"Mercado"}`, &l))
	base := "/api/v1/lists/" + l.ID.String()
	require.Equal(t, http.StatusCreated, call(t, h, f.user, http.MethodPost, base+"/items",
		`{"product_barcode":"`+product+`","quantity":1}`, &l))

	f.repo.failOn = "UpdateList"
	req := httptest.NewRequest(http.MethodPost, base+"/complete", strings.NewReader(`{"store_id":"`+f.store.String()+`"}`))
	req.Header.Set("X-Test-User", f.user.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), errInjected.Error())
}
