package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/response"
	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/validation"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	response.RespondJSON(w, status, data)
}

// respondError sends a structured error body.
func respondError(w http.ResponseWriter, status int, message string, details interface{}) {
	response.RespondError(w, status, message, details)
}

// parseJSON decodes a request body into dst, rejecting unknown fields and
// oversized bodies. Returns false after writing an error response.
func parseJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// respondServiceError translates service-layer errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		respondError(w, http.StatusBadRequest, "validation failed", validationErr.Fields)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidSession):
		respondError(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrHoldingNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrWatchlistNotFound),
		errors.Is(err, apperrors.ErrWatchlistEntryNotFound),
		errors.Is(err, apperrors.ErrSymbolNotFound):
		respondError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, apperrors.ErrUsernameTaken),
		errors.Is(err, apperrors.ErrEmailTaken),
		errors.Is(err, apperrors.ErrInsufficientQuantity),
		errors.Is(err, apperrors.ErrPortfolioHasHoldings),
		errors.Is(err, apperrors.ErrPortfolioHasHistory):
		respondError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, apperrors.ErrQuoteUnavailable),
		errors.Is(err, apperrors.ErrAIUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
