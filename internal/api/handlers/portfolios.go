package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/middleware"
	"github.com/stocktrackhq/stocktrack-backend/internal/api/request"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
	"github.com/stocktrackhq/stocktrack-backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// List returns all portfolios of the authenticated user
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	portfolios, err := h.portfolioService.List(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, portfolios)
}

// Summary returns all portfolios valued at current prices plus account totals
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	summary, err := h.portfolioService.Summary(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Default returns the user's default portfolio, creating it if absent
func (h *PortfolioHandler) Default(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	portfolio, err := h.portfolioService.DefaultPortfolio(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// Detail returns one portfolio with valued holdings
func (h *PortfolioHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	detail, err := h.portfolioService.Detail(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// Create adds a portfolio
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req request.PortfolioRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidatePortfolio(req); err != nil {
		respondServiceError(w, err)
		return
	}

	portfolio, err := h.portfolioService.Create(r.Context(), user.ID, service.PortfolioInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, portfolio)
}

// Update renames or re-describes a portfolio
func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req request.PortfolioRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidatePortfolio(req); err != nil {
		respondServiceError(w, err)
		return
	}

	portfolio, err := h.portfolioService.Update(r.Context(), chi.URLParam(r, "id"), user.ID, service.PortfolioInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// SetDefault promotes a portfolio to the user's default
func (h *PortfolioHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	portfolio, err := h.portfolioService.SetDefault(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// Delete removes an empty portfolio
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	if err := h.portfolioService.Delete(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// AddHolding records a position without a trade, for imports
func (h *PortfolioHandler) AddHolding(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req request.HoldingRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateHolding(req); err != nil {
		respondServiceError(w, err)
		return
	}

	holding, err := h.portfolioService.AddHolding(r.Context(), chi.URLParam(r, "id"), user.ID, service.HoldingInput{
		Symbol:      req.Symbol,
		Quantity:    req.Quantity,
		AverageCost: req.AverageCost,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, holding)
}

// UpdateHolding overwrites a holding's position without recording a trade
func (h *PortfolioHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req request.HoldingRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateHoldingUpdate(req); err != nil {
		respondServiceError(w, err)
		return
	}

	holding, err := h.portfolioService.UpdateHolding(r.Context(), chi.URLParam(r, "holdingId"), user.ID, req.Quantity, req.AverageCost)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, holding)
}

// RemoveHolding deletes a holding without recording a trade
func (h *PortfolioHandler) RemoveHolding(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	if err := h.portfolioService.RemoveHolding(r.Context(), chi.URLParam(r, "holdingId"), user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
