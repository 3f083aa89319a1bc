package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/go-chi/chi/v5"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/validate/{barcode}", h.validateBarcode)
		r.Get("/{barcode}", h.getProduct)
		r.With(requireAuth).Post("/", h.createProduct)
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) validateBarcode(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.CheckBarcode(chi.URLParam(r, "barcode")))
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
