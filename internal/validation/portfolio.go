package validation

import (
	"strings"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/request"
)

const maxNameLength = 50

func ValidatePortfolio(req request.PortfolioRequest) error {
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

// ValidateHolding checks a manual holding add. Symbol is required because
// the add targets a (portfolio, symbol) pair.
func ValidateHolding(req request.HoldingRequest) error {
	errors := holdingFieldErrors(req)
	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateHoldingUpdate checks a manual holding overwrite. The holding is
// addressed by ID, so the symbol field is ignored.
func ValidateHoldingUpdate(req request.HoldingRequest) error {
	errors := holdingFieldErrors(req)
	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func holdingFieldErrors(req request.HoldingRequest) map[string]string {
	errors := make(map[string]string)
	if req.Quantity <= 0 {
		errors["quantity"] = "quantity must be a positive integer"
	}
	if req.AverageCost.IsNegative() {
		errors["averageCost"] = "average cost cannot be negative"
	}
	return errors
}
