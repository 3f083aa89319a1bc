package exchange

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/go-chi/chi/v5"
)

// Handler exposes exchange rate HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/v1/exchange-rates", func(r chi.Router) {
		r.Get("/latest", h.latest)
		r.Get("/history", h.history)
		r.With(requireAuth).Post("/", h.create)
		r.With(requireAuth).Post("/update", h.update)
	})
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.Latest(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusOK, rate)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rates, err := h.service.History(r.Context(), limit)
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusOK, rates)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rate, err := h.service.Create(r.Context(), req)
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusCreated, rate)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.Update(r.Context())
	if errors.Is(err, ErrNoSource) {
		respond(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusCreated, rate)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
