package validation

import (
	"strings"

	"github.com/stocktrackhq/stocktrack-backend/internal/api/request"
)

func ValidateTrade(req request.TradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if req.Quantity <= 0 {
		errors["quantity"] = "quantity must be a positive integer"
	}
	if !req.Price.IsPositive() {
		errors["price"] = "price must be positive"
	}
	if req.Commission.IsNegative() {
		errors["commission"] = "commission cannot be negative"
	}
	if req.Tax.IsNegative() {
		errors["tax"] = "tax cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
