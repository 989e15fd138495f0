package validation

import (
	"strings"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/request"
)

func ValidateWatchlist(req request.WatchlistRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > maxNameLength {
		errors["name"] = "name is too long"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateWatchlistEntry(req request.WatchlistEntryRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
