package store

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/go-chi/chi/v5"
)

// Handler exposes store HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Get("/", h.searchStores)
		r.Get("/nearby", h.nearbyStores)
		r.Get("/{id}", h.getStore)
		r.With(requireAuth).Post("/", h.createStore)
	})
}

func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	st, err := h.service.CreateStore(r.Context(), req)
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusCreated, st)
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.GetStore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusOK, st)
}

func (h *Handler) searchStores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	stores, err := h.service.SearchStores(r.Context(), q.Get("q"), limit, offset)
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusOK, stores)
}

func (h *Handler) nearbyStores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "lat and lon are required numbers"})
		return
	}
	var radius float64
	if v := q.Get("radius_meters"); v != "" {
		var err error
		if radius, err = strconv.ParseFloat(v, 64); err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "radius_meters must be a number"})
			return
		}
	}

	stores, err := h.service.NearbyStores(r.Context(), lat, lon, radius)
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusOK, stores)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
