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

// SuppliersHandler serves the supplier endpoints under /api/supplier(s).
type SuppliersHandler struct {
	Suppliers *service.SupplierService
}

// HandleGet returns the club's suppliers, or just one supplier's name
// when an id is given.
func (h *SuppliersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	club := ActiveClub(ctx)

	if rawID := r.URL.Query().Get("id"); rawID != "" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request")
			return
		}
		name, err := h.Suppliers.Name(ctx, club, id)
		if err != nil {
			writeSupplierError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, name)
		return
	}

	suppliers, err := h.Suppliers.List(ctx, club)
	if err != nil {
		writeSupplierError(w, r, err)
		return
	}
	if suppliers == nil {
		suppliers = []domain.Supplier{}
	}
	httpx.WriteJSON(w, http.StatusOK, suppliers)
}

// HandleListRefs returns compact id/name pairs for pickers.
func (h *SuppliersHandler) HandleListRefs(w http.ResponseWriter, r *http.Request) {
	refs, err := h.Suppliers.ListRefs(r.Context(), ActiveClub(r.Context()))
	if err != nil {
		writeSupplierError(w, r, err)
		return
	}
	if refs == nil {
		refs = []domain.SupplierRef{}
	}
	httpx.WriteJSON(w, http.StatusOK, refs)
}

func (h *SuppliersHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var supplier domain.Supplier
	if err := json.NewDecoder(r.Body).Decode(&supplier); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	if err := h.Suppliers.Add(r.Context(), ActiveClub(r.Context()), supplier); err != nil {
		writeSupplierError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *SuppliersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var supplier domain.Supplier
	if err := json.NewDecoder(r.Body).Decode(&supplier); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	if err := h.Suppliers.Update(r.Context(), ActiveClub(r.Context()), supplier); err != nil {
		writeSupplierError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *SuppliersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	if err := h.Suppliers.Delete(r.Context(), ActiveClub(r.Context()), id); err != nil {
		writeSupplierError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeSupplierError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSupplier):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found")
	default:
		slogx.FromContext(r.Context()).Error("supplier operation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error")
	}
}
