package request

import "github.com/shopspring/decimal"

// PortfolioRequest represents a portfolio create or update request body.
type PortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
}

// HoldingRequest represents a manual holding add or update request body.
// These bypass the trade ledger; normal position changes go through
// /api/trading.
type HoldingRequest struct {
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"averageCost"`
}
