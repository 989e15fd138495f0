package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRequest represents a buy or sell request body. Price, commission
// and tax accept JSON numbers or numeric strings.
type TradeRequest struct {
	PortfolioID string          `json:"portfolioId"`
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Commission  decimal.Decimal `json:"commission"`
	Tax         decimal.Decimal `json:"tax"`
	Notes       string          `json:"notes"`
	ExecutedAt  time.Time       `json:"executedAt,omitzero"`
}
