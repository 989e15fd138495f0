// Package accounting implements the position accounting rules: how buy and
// sell events mutate a holding's quantity and average cost, and how holdings
// roll up into valuation and profit figures.
//
// The package is pure computation. Persistence, quote lookups and atomicity
// belong to the callers; everything here operates on in-memory values.
//
// Cost basis is a single blended layer: every buy folds into one
// quantity-weighted average cost, and sells never touch it. There is no
// FIFO/LIFO lot tracking.
package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

var oneHundred = decimal.NewFromInt(100)

// ApplyBuy folds a buy of qty units at price into h. A holding with zero
// quantity behaves as the absent state, so callers create a zero-valued
// holding for a first buy and pass it in.
//
// Preconditions: qty > 0, price >= 0. On success h.Quantity > 0 always,
// which makes the average-cost division safe.
func ApplyBuy(h *model.Holding, qty int64, price decimal.Decimal) error {
	if qty <= 0 {
		return fmt.Errorf("%w: buy quantity must be positive, got %d", apperrors.ErrInvalidInput, qty)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: buy price cannot be negative, got %s", apperrors.ErrInvalidInput, price)
	}

	newTotalCost := h.CostBasis().Add(price.Mul(decimal.NewFromInt(qty)))
	h.Quantity += qty
	h.AverageCost = newTotalCost.Div(decimal.NewFromInt(h.Quantity))
	return nil
}

// ApplySell removes qty units from h. The average cost is deliberately left
// unchanged: the whole position is treated as one cost layer.
//
// Returns closed=true when the sell exhausts the position, in which case the
// caller must delete the holding record (no zero-quantity holdings persist).
// An oversell or a sell against a nil holding is rejected without mutation.
func ApplySell(h *model.Holding, qty int64, price decimal.Decimal) (closed bool, err error) {
	if h == nil {
		return false, apperrors.ErrHoldingNotFound
	}
	if qty <= 0 {
		return false, fmt.Errorf("%w: sell quantity must be positive, got %d", apperrors.ErrInvalidInput, qty)
	}
	if price.IsNegative() {
		return false, fmt.Errorf("%w: sell price cannot be negative, got %s", apperrors.ErrInvalidInput, price)
	}
	if qty > h.Quantity {
		return false, fmt.Errorf("%w: have %d, want to sell %d", apperrors.ErrInsufficientQuantity, h.Quantity, qty)
	}

	h.Quantity -= qty
	return h.Quantity == 0, nil
}

// RealizedProfit books the profit of a sell against the average cost at the
// time of sale: qty * (price - avgCost) - commission - tax. It is computed
// at read time from the ledger and holding snapshot, never stored.
func RealizedProfit(qty int64, price, avgCostBefore, commission, tax decimal.Decimal) decimal.Decimal {
	q := decimal.NewFromInt(qty)
	return price.Sub(avgCostBefore).Mul(q).Sub(commission).Sub(tax)
}

// Valuation is the market view of one holding at a given price.
type Valuation struct {
	CurrentValue decimal.Decimal
	CostBasis    decimal.Decimal
	Profit       decimal.Decimal
	ProfitPct    decimal.Decimal
}

// Value prices a holding at currentPrice. ProfitPct is zero when the cost
// basis is zero, guarding the division.
func Value(h model.Holding, currentPrice decimal.Decimal) Valuation {
	v := Valuation{
		CurrentValue: currentPrice.Mul(decimal.NewFromInt(h.Quantity)),
		CostBasis:    h.CostBasis(),
	}
	v.Profit = v.CurrentValue.Sub(v.CostBasis)
	if !v.CostBasis.IsZero() {
		v.ProfitPct = v.Profit.Div(v.CostBasis).Mul(oneHundred)
	}
	return v
}

// PriceFunc resolves a current price for a symbol. Returning an error marks
// the price as unavailable; it does not abort the aggregation.
type PriceFunc func(symbol string) (decimal.Decimal, error)

// Totals is a portfolio-level roll-up of holdings.
type Totals struct {
	TotalValue  decimal.Decimal
	TotalCost   decimal.Decimal
	TotalProfit decimal.Decimal
	ProfitPct   decimal.Decimal
}

// Aggregate sums holdings into portfolio totals. When priceOf fails for a
// symbol the holding is valued at its own average cost, so an unavailable
// quote degrades valuation quality instead of failing the whole read.
// ProfitPct is zero when the total cost basis is zero.
func Aggregate(holdings []model.Holding, priceOf PriceFunc) Totals {
	var t Totals
	for _, h := range holdings {
		price, err := priceOf(h.Symbol)
		if err != nil {
			price = h.AverageCost
		}
		v := Value(h, price)
		t.TotalValue = t.TotalValue.Add(v.CurrentValue)
		t.TotalCost = t.TotalCost.Add(v.CostBasis)
	}
	t.TotalProfit = t.TotalValue.Sub(t.TotalCost)
	if !t.TotalCost.IsZero() {
		t.ProfitPct = t.TotalProfit.Div(t.TotalCost).Mul(oneHundred)
	}
	return t
}
