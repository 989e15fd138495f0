package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/middleware"
	"github.com/stocktrackhq/stocktrack-backend/internal/api/request"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
	"github.com/stocktrackhq/stocktrack-backend/internal/validation"
)

// TradingHandler handles trade execution and ledger HTTP requests
type TradingHandler struct {
	tradingService *service.TradingService
}

// NewTradingHandler creates a new TradingHandler
func NewTradingHandler(tradingService *service.TradingService) *TradingHandler {
	return &TradingHandler{tradingService: tradingService}
}

type tradeFunc func(ctx context.Context, userID string, in service.TradeInput) (service.TradeResult, error)

// Buy executes a buy trade
func (h *TradingHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradingService.ExecuteBuy)
}

// Sell executes a sell trade
func (h *TradingHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.tradingService.ExecuteSell)
}

func (h *TradingHandler) trade(w http.ResponseWriter, r *http.Request, execute tradeFunc) {
	user, _ := middleware.UserFrom(r.Context())

	var req request.TradeRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateTrade(req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := execute(r.Context(), user.ID, service.TradeInput{
		PortfolioID: req.PortfolioID,
		Symbol:      req.Symbol,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Commission:  req.Commission,
		Tax:         req.Tax,
		Notes:       req.Notes,
		ExecutedAt:  req.ExecutedAt,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// Transactions lists the authenticated user's ledger entries
func (h *TradingHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	transactions, err := h.tradingService.ListTransactions(
		r.Context(),
		user.ID,
		r.URL.Query().Get("portfolioId"),
		r.URL.Query().Get("symbol"),
		limit,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

// Transaction returns one ledger entry
func (h *TradingHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	transaction, err := h.tradingService.GetTransaction(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transaction)
}

// Stats aggregates the user's ledger over a period
func (h *TradingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	stats, err := h.tradingService.Stats(
		r.Context(),
		user.ID,
		r.URL.Query().Get("portfolioId"),
		r.URL.Query().Get("period"),
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
