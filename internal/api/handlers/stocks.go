package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stocktrackhq/stocktrack-backend/internal/service"
)

// StockHandler handles market data HTTP requests
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Quote returns the current quote for a symbol
func (h *StockHandler) Quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.stockService.Quote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// Info returns static identity data for a symbol
func (h *StockHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.stockService.Info(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// Search matches a keyword against instrument codes and names
func (h *StockHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.stockService.Search(r.Context(), r.URL.Query().Get("keyword"), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// Candles returns K-line history for a symbol
func (h *StockHandler) Candles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))

	var from, to time.Time
	if s := query.Get("from"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date", err.Error())
			return
		}
		from = parsed
	}
	if s := query.Get("to"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date", err.Error())
			return
		}
		to = parsed
	}

	candles, err := h.stockService.Candles(r.Context(), chi.URLParam(r, "symbol"), query.Get("period"), from, to, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, candles)
}
