package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is a named collection of holdings owned by exactly one user.
// At most one portfolio per user carries the default flag.
type Portfolio struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Holding is an open position in one instrument within one portfolio.
// Quantity is never negative; a holding row exists only while quantity > 0.
// AverageCost is the quantity-weighted mean purchase price across all buys,
// blended into a single figure. Sells never change it.
type Holding struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"averageCost"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CostBasis returns quantity * average cost.
func (h Holding) CostBasis() decimal.Decimal {
	return h.AverageCost.Mul(decimal.NewFromInt(h.Quantity))
}

// HoldingValuation is a holding decorated with market data at read time.
// Stale reports that the quote provider was unavailable and the valuation
// fell back to the holding's average cost.
type HoldingValuation struct {
	Holding
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitPct    decimal.Decimal `json:"profitPct"`
	Stale        bool            `json:"stale"`
}

// PortfolioDetail is one portfolio with its holdings valued at read time.
type PortfolioDetail struct {
	Portfolio
	Holdings    []HoldingValuation `json:"holdings"`
	TotalValue  decimal.Decimal    `json:"totalValue"`
	TotalCost   decimal.Decimal    `json:"totalCost"`
	TotalProfit decimal.Decimal    `json:"totalProfit"`
	ProfitPct   decimal.Decimal    `json:"profitPct"`
}

// PortfolioSummary rolls every portfolio a user owns into account totals.
type PortfolioSummary struct {
	Portfolios  []PortfolioDetail `json:"portfolios"`
	TotalValue  decimal.Decimal   `json:"totalValue"`
	TotalCost   decimal.Decimal   `json:"totalCost"`
	TotalProfit decimal.Decimal   `json:"totalProfit"`
	ProfitPct   decimal.Decimal   `json:"profitPct"`
}
