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

// StockHandler serves the stock-taking, shortage list, audit log and
// stats endpoints.
type StockHandler struct {
	Stock *service.StockService
}

// HandleShortage lists items whose current level is below their minimum,
// with the order quantity needed to refill to maximum.
func (h *StockHandler) HandleShortage(w http.ResponseWriter, r *http.Request) {
	shortages, err := h.Stock.Shortage(r.Context(), ActiveClub(r.Context()))
	if err != nil {
		writeStockError(w, r, err)
		return
	}
	if shortages == nil {
		shortages = []domain.ShortageItem{}
	}
	httpx.WriteJSON(w, http.StatusOK, shortages)
}

// HandleTakeStock records new counted amounts for a batch of items.
func (h *StockHandler) HandleTakeStock(w http.ResponseWriter, r *http.Request) {
	var updates []domain.StockUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	if err := h.Stock.TakeStock(r.Context(), ActiveClub(r.Context()), updates); err != nil {
		writeStockError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleLog returns the stock history of a single item, oldest first.
func (h *StockHandler) HandleLog(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.URL.Query().Get("item"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request")
		return
	}

	entries, err := h.Stock.History(r.Context(), ActiveClub(r.Context()), itemID)
	if err != nil {
		writeStockError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.StockEntry{}
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

// HandleStats returns item, supplier and shortage counts for the club.
func (h *StockHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stock.Stats(r.Context(), ActiveClub(r.Context()))
	if err != nil {
		writeStockError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func writeStockError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found")
	default:
		slogx.FromContext(r.Context()).Error("stock operation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error")
	}
}
