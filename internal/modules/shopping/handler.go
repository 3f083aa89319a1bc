package shopping

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/georgemunganga/centimos-backend/internal/identity"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes shopping list HTTP endpoints. All routes require an
// authenticated caller.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/v1/lists", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.createList)
		r.Get("/", h.listLists)
		r.Get("/{id}", h.getList)
		r.Put("/{id}", h.updateList)
		r.Delete("/{id}", h.deleteList)
		r.Post("/{id}/items", h.addItem)
		r.Put("/{id}/items/{item_id}", h.updateItem)
		r.Delete("/{id}/items/{item_id}", h.removeItem)
		r.Post("/{id}/complete", h.completeList)
	})
}

func (h *Handler) createList(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreateListRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.service.CreateList(r.Context(), userID, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, l)
}

func (h *Handler) listLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	lists, err := h.service.ListLists(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, lists)
}

func (h *Handler) getList(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := callerAndList(w, r)
	if !ok {
		return
	}
	l, err := h.service.GetList(r.Context(), userID, listID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, l)
}

func (h *Handler) updateList(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := callerAndList(w, r)
	if !ok {
		return
	}
	var req UpdateListRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.service.UpdateList(r.Context(), userID, listID, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, l)
}

func (h *Handler) deleteList(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := callerAndList(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteList(r.Context(), userID, listID); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := callerAndList(w, r)
	if !ok {
		return
	}
	var req AddItemRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.service.AddItem(r.Context(), userID, listID, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, l)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := callerAndList(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "item_id"))
	if err != nil {
		fail(w, r, apperr.NotFound("list item"))
		return
	}
	var req UpdateItemRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := h.service.UpdateItem(r.Context(), userID, listID, itemID, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, it)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := callerAndList(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "item_id"))
	if err != nil {
		fail(w, r, apperr.NotFound("list item"))
		return
	}
	if err := h.service.RemoveItem(r.Context(), userID, listID, itemID); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) completeList(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := callerAndList(w, r)
	if !ok {
		return
	}
	var req CompleteListRequest
	if !decode(w, r, &req) {
		return
	}
	if req.StoreID == uuid.Nil {
		fail(w, r, apperr.Invalid("store_id is required"))
		return
	}
	l, err := h.service.CompleteList(r.Context(), userID, listID, req.StoreID)
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, l)
}

func caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := identity.UserID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
	}
	return id, ok
}

func callerAndList(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := caller(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	listID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, apperr.NotFound("shopping list"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, listID, true
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	respond(w, apperr.Status(err), map[string]string{"error": apperr.Message(r.Context(), err)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
