package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/datasektionen/zaiko/internal/zaiko/domain"
	"github.com/datasektionen/zaiko/internal/zaiko/service"
	"github.com/datasektionen/zaiko/internal/zaiko/store"
	"github.com/datasektionen/zaiko/pkg/httpx"
	"github.com/datasektionen/zaiko/pkg/slogx"
)

// ItemsHandler serves the item CRUD endpoints under /api/item.
type ItemsHandler struct {
	Items *service.ItemService
}

func (h *ItemsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.List(r.Context(), ActiveClub(r.Context()))
	if err != nil {
		slogx.FromContext(r.Context()).Error("listing items failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *ItemsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	if err := h.Items.Add(r.Context(), ActiveClub(r.Context()), item); err != nil {
		writeItemError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ItemsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	if err := h.Items.Update(r.Context(), ActiveClub(r.Context()), item); err != nil {
		writeItemError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ItemsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	if err := h.Items.Delete(r.Context(), ActiveClub(r.Context()), id); err != nil {
		writeItemError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeItemError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidItem):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found")
	default:
		slogx.FromContext(r.Context()).Error("item operation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error")
	}
}
