package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/middleware"
	"github.com/stocktrackhq/stocktrack-backend/internal/api/request"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
	"github.com/stocktrackhq/stocktrack-backend/internal/validation"
)

// WatchlistHandler handles watchlist HTTP requests
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler
func NewWatchlistHandler(watchlistService *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService}
}

// List returns all watchlists of the authenticated user
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	watchlists, err := h.watchlistService.List(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, watchlists)
}

// Default returns the user's default watchlist with quoted entries,
// creating the watchlist if absent
func (h *WatchlistHandler) Default(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	detail, err := h.watchlistService.Detail(r.Context(), "", user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// Detail returns one watchlist with quoted entries
func (h *WatchlistHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	detail, err := h.watchlistService.Detail(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// Create adds a watchlist
func (h *WatchlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req request.WatchlistRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateWatchlist(req); err != nil {
		respondServiceError(w, err)
		return
	}

	watchlist, err := h.watchlistService.Create(r.Context(), user.ID, service.WatchlistInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, watchlist)
}

// Update renames or re-describes a watchlist
func (h *WatchlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req request.WatchlistRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateWatchlist(req); err != nil {
		respondServiceError(w, err)
		return
	}

	watchlist, err := h.watchlistService.Update(r.Context(), chi.URLParam(r, "id"), user.ID, service.WatchlistInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, watchlist)
}

// Delete removes a watchlist and its entries
func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	if err := h.watchlistService.Delete(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// AddSymbol adds a symbol to a watchlist; adding an existing symbol is a no-op
func (h *WatchlistHandler) AddSymbol(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req request.WatchlistEntryRequest
	if !parseJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateWatchlistEntry(req); err != nil {
		respondServiceError(w, err)
		return
	}

	entry, err := h.watchlistService.AddSymbol(r.Context(), chi.URLParam(r, "id"), user.ID, req.Symbol, req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// RemoveSymbol drops a symbol from a watchlist
func (h *WatchlistHandler) RemoveSymbol(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	if err := h.watchlistService.RemoveSymbol(r.Context(), chi.URLParam(r, "id"), user.ID, chi.URLParam(r, "symbol")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
