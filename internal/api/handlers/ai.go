package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/middleware"
	"github.com/stocktrackhq/stocktrack-backend/internal/api/request"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
)

// AIHandler handles AI commentary HTTP requests
type AIHandler struct {
	aiService *service.AIService
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(aiService *service.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// CommentaryResponse wraps generated commentary
type CommentaryResponse struct {
	Commentary string `json:"commentary"`
}

// Status reports whether commentary is available
func (h *AIHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"enabled": h.aiService.Enabled()})
}

// Ask answers a free-form question
func (h *AIHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req request.AskRequest
	if !parseJSON(w, r, &req) {
		return
	}

	answer, err := h.aiService.Ask(r.Context(), req.Question)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CommentaryResponse{Commentary: answer})
}

// AnalyzeStock comments on one symbol
func (h *AIHandler) AnalyzeStock(w http.ResponseWriter, r *http.Request) {
	commentary, err := h.aiService.AnalyzeStock(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CommentaryResponse{Commentary: commentary})
}

// AnalyzePortfolio comments on one of the user's portfolios
func (h *AIHandler) AnalyzePortfolio(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	commentary, err := h.aiService.AnalyzePortfolio(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CommentaryResponse{Commentary: commentary})
}

// AnalyzeMarket comments on a set of symbols
func (h *AIHandler) AnalyzeMarket(w http.ResponseWriter, r *http.Request) {
	var req request.MarketAnalysisRequest
	if !parseJSON(w, r, &req) {
		return
	}

	commentary, err := h.aiService.AnalyzeMarket(r.Context(), req.Symbols)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CommentaryResponse{Commentary: commentary})
}
