package pricing

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/identity"
	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
)

// Handler exposes price HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/v1/prices", func(r chi.Router) {
		r.Get("/compare/{barcode}", h.comparePrices)
		r.With(requireAuth).Post("/", h.logPrice)
	})
}

func (h *Handler) comparePrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latRaw, lonRaw := q.Get("lat"), q.Get("lon")

	var from *orb.Point
	switch {
	case latRaw == "" && lonRaw == "":
	case latRaw == "" || lonRaw == "":
		respond(w, http.StatusBadRequest, map[string]string{"error": "lat and lon must be supplied together"})
		return
	default:
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lon, errLon := strconv.ParseFloat(lonRaw, 64)
		if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			respond(w, http.StatusBadRequest, map[string]string{"error": "lat and lon must be valid coordinates"})
			return
		}
		from = &orb.Point{lon, lat}
	}

	summaries, err := h.service.ComparePrices(r.Context(), chi.URLParam(r, "barcode"), from)
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusOK, summaries)
}

func (h *Handler) logPrice(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	var req LogPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.LogPrice(r.Context(), userID, req)
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusCreated, o)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
