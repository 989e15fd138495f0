package accounting_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/stocktrackhq/stocktrack-backend/internal/accounting"
	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// TestApplyBuy_AverageCost verifies the weighted-average cost blending.
//
// WHY: Average cost is the single source of truth for all profit figures.
// Blending errors would silently corrupt every downstream calculation.
func TestApplyBuy_AverageCost(t *testing.T) {
	t.Run("first buy sets average cost to the buy price", func(t *testing.T) {
		h := model.Holding{Symbol: "600519"}

		if err := accounting.ApplyBuy(&h, 100, dec("10.00")); err != nil {
			t.Fatalf("ApplyBuy() returned unexpected error: %v", err)
		}

		if h.Quantity != 100 {
			t.Errorf("Quantity = %d, want 100", h.Quantity)
		}
		if !h.AverageCost.Equal(dec("10.00")) {
			t.Errorf("AverageCost = %s, want 10.00", h.AverageCost)
		}
	})

	t.Run("second buy blends into quantity-weighted mean", func(t *testing.T) {
		h := model.Holding{Symbol: "600519"}

		if err := accounting.ApplyBuy(&h, 100, dec("10.00")); err != nil {
			t.Fatalf("first ApplyBuy() error: %v", err)
		}
		if err := accounting.ApplyBuy(&h, 100, dec("20.00")); err != nil {
			t.Fatalf("second ApplyBuy() error: %v", err)
		}

		if h.Quantity != 200 {
			t.Errorf("Quantity = %d, want 200", h.Quantity)
		}
		if !h.AverageCost.Equal(dec("15.00")) {
			t.Errorf("AverageCost = %s, want 15.00", h.AverageCost)
		}
	})

	t.Run("sequence of buys equals weighted mean of all layers", func(t *testing.T) {
		buys := []struct {
			qty   int64
			price string
		}{
			{50, "12.50"}, {150, "8.00"}, {300, "9.30"}, {1, "100.00"},
		}

		h := model.Holding{Symbol: "000001"}
		var totalQty int64
		totalCost := decimal.Zero
		for _, b := range buys {
			if err := accounting.ApplyBuy(&h, b.qty, dec(b.price)); err != nil {
				t.Fatalf("ApplyBuy(%d, %s) error: %v", b.qty, b.price, err)
			}
			totalQty += b.qty
			totalCost = totalCost.Add(dec(b.price).Mul(decimal.NewFromInt(b.qty)))
		}

		if h.Quantity != totalQty {
			t.Errorf("Quantity = %d, want %d", h.Quantity, totalQty)
		}
		want := totalCost.Div(decimal.NewFromInt(totalQty))
		if !h.AverageCost.Equal(want) {
			t.Errorf("AverageCost = %s, want %s", h.AverageCost, want)
		}
	})

	t.Run("rejects non-positive quantity and negative price", func(t *testing.T) {
		h := model.Holding{Symbol: "600519", Quantity: 10, AverageCost: dec("5.00")}

		for _, qty := range []int64{0, -5} {
			if err := accounting.ApplyBuy(&h, qty, dec("10.00")); !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("ApplyBuy(qty=%d) error = %v, want ErrInvalidInput", qty, err)
			}
		}
		if err := accounting.ApplyBuy(&h, 1, dec("-1.00")); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("ApplyBuy(price=-1) error = %v, want ErrInvalidInput", err)
		}

		// Rejected buys leave the holding untouched.
		if h.Quantity != 10 || !h.AverageCost.Equal(dec("5.00")) {
			t.Errorf("holding mutated by rejected buy: qty=%d avg=%s", h.Quantity, h.AverageCost)
		}
	})
}

// TestApplySell verifies sell application, oversell rejection and closing.
//
// WHY: Sells must never drive quantity negative, never change average cost,
// and must report exhaustion so callers delete the holding row.
func TestApplySell(t *testing.T) {
	t.Run("partial sell keeps average cost unchanged", func(t *testing.T) {
		h := model.Holding{Symbol: "600519", Quantity: 200, AverageCost: dec("15.00")}

		closed, err := accounting.ApplySell(&h, 50, dec("30.00"))
		if err != nil {
			t.Fatalf("ApplySell() returned unexpected error: %v", err)
		}
		if closed {
			t.Error("ApplySell() reported closed for a partial sell")
		}
		if h.Quantity != 150 {
			t.Errorf("Quantity = %d, want 150", h.Quantity)
		}
		if !h.AverageCost.Equal(dec("15.00")) {
			t.Errorf("AverageCost = %s, want unchanged 15.00", h.AverageCost)
		}
	})

	t.Run("sell of full quantity closes the position", func(t *testing.T) {
		h := model.Holding{Symbol: "600519", Quantity: 150, AverageCost: dec("15.00")}

		closed, err := accounting.ApplySell(&h, 150, dec("15.00"))
		if err != nil {
			t.Fatalf("ApplySell() returned unexpected error: %v", err)
		}
		if !closed {
			t.Error("ApplySell() did not report closed when quantity reached zero")
		}
		if h.Quantity != 0 {
			t.Errorf("Quantity = %d, want 0", h.Quantity)
		}
	})

	t.Run("oversell is rejected without mutation", func(t *testing.T) {
		h := model.Holding{Symbol: "600519", Quantity: 100, AverageCost: dec("10.00")}

		_, err := accounting.ApplySell(&h, 101, dec("12.00"))
		if !errors.Is(err, apperrors.ErrInsufficientQuantity) {
			t.Fatalf("ApplySell() error = %v, want ErrInsufficientQuantity", err)
		}
		if h.Quantity != 100 || !h.AverageCost.Equal(dec("10.00")) {
			t.Errorf("holding mutated by rejected sell: qty=%d avg=%s", h.Quantity, h.AverageCost)
		}
	})

	t.Run("sell against nil holding", func(t *testing.T) {
		if _, err := accounting.ApplySell(nil, 1, dec("1.00")); !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("ApplySell(nil) error = %v, want ErrHoldingNotFound", err)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		h := model.Holding{Symbol: "600519", Quantity: 100, AverageCost: dec("10.00")}
		if _, err := accounting.ApplySell(&h, 0, dec("1.00")); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("ApplySell(qty=0) error = %v, want ErrInvalidInput", err)
		}
	})
}

// TestRealizedProfit checks the read-time realized profit formula.
func TestRealizedProfit(t *testing.T) {
	t.Run("profit against average cost minus fees", func(t *testing.T) {
		// Sell 50 @ 30.00 from an average cost of 15.00: 50 * 15.00 = 750.00.
		got := accounting.RealizedProfit(50, dec("30.00"), dec("15.00"), decimal.Zero, decimal.Zero)
		if !got.Equal(dec("750.00")) {
			t.Errorf("RealizedProfit = %s, want 750.00", got)
		}

		withFees := accounting.RealizedProfit(50, dec("30.00"), dec("15.00"), dec("5.00"), dec("7.50"))
		if !withFees.Equal(dec("737.50")) {
			t.Errorf("RealizedProfit with fees = %s, want 737.50", withFees)
		}
	})

	t.Run("loss comes out negative", func(t *testing.T) {
		got := accounting.RealizedProfit(10, dec("8.00"), dec("10.00"), decimal.Zero, decimal.Zero)
		if !got.Equal(dec("-20.00")) {
			t.Errorf("RealizedProfit = %s, want -20.00", got)
		}
	})
}

// TestValue verifies per-holding valuation including the zero-cost guard.
func TestValue(t *testing.T) {
	t.Run("unrealized profit and percentage", func(t *testing.T) {
		h := model.Holding{Quantity: 150, AverageCost: dec("15.00")}

		v := accounting.Value(h, dec("20.00"))

		if !v.CurrentValue.Equal(dec("3000.00")) {
			t.Errorf("CurrentValue = %s, want 3000.00", v.CurrentValue)
		}
		if !v.CostBasis.Equal(dec("2250.00")) {
			t.Errorf("CostBasis = %s, want 2250.00", v.CostBasis)
		}
		if !v.Profit.Equal(dec("750.00")) {
			t.Errorf("Profit = %s, want 750.00", v.Profit)
		}
		wantPct := dec("750").Div(dec("2250")).Mul(dec("100"))
		if !v.ProfitPct.Equal(wantPct) {
			t.Errorf("ProfitPct = %s, want %s", v.ProfitPct, wantPct)
		}
	})

	t.Run("zero cost basis yields zero percentage", func(t *testing.T) {
		h := model.Holding{Quantity: 0, AverageCost: decimal.Zero}

		v := accounting.Value(h, dec("10.00"))
		if !v.ProfitPct.IsZero() {
			t.Errorf("ProfitPct = %s, want 0", v.ProfitPct)
		}
	})
}

// TestAggregate verifies portfolio roll-up and the average-cost fallback.
//
// WHY: A slow or dead quote provider must degrade valuation quality, not
// fail the whole portfolio read.
func TestAggregate(t *testing.T) {
	prices := map[string]string{"600519": "20.00", "000001": "8.00"}
	priceOf := func(symbol string) (decimal.Decimal, error) {
		p, ok := prices[symbol]
		if !ok {
			return decimal.Zero, apperrors.ErrQuoteUnavailable
		}
		return dec(p), nil
	}

	t.Run("sums value and cost across holdings", func(t *testing.T) {
		holdings := []model.Holding{
			{Symbol: "600519", Quantity: 100, AverageCost: dec("15.00")},
			{Symbol: "000001", Quantity: 200, AverageCost: dec("10.00")},
		}

		tot := accounting.Aggregate(holdings, priceOf)

		if !tot.TotalValue.Equal(dec("3600.00")) {
			t.Errorf("TotalValue = %s, want 3600.00", tot.TotalValue)
		}
		if !tot.TotalCost.Equal(dec("3500.00")) {
			t.Errorf("TotalCost = %s, want 3500.00", tot.TotalCost)
		}
		if !tot.TotalProfit.Equal(dec("100.00")) {
			t.Errorf("TotalProfit = %s, want 100.00", tot.TotalProfit)
		}
	})

	t.Run("unavailable quote falls back to average cost", func(t *testing.T) {
		holdings := []model.Holding{
			{Symbol: "UNPRICED", Quantity: 10, AverageCost: dec("5.00")},
		}

		tot := accounting.Aggregate(holdings, priceOf)

		// Valued at cost: no phantom profit.
		if !tot.TotalValue.Equal(dec("50.00")) {
			t.Errorf("TotalValue = %s, want 50.00", tot.TotalValue)
		}
		if !tot.TotalProfit.IsZero() {
			t.Errorf("TotalProfit = %s, want 0", tot.TotalProfit)
		}
	})

	t.Run("no holdings yields zero percentage, not a division error", func(t *testing.T) {
		tot := accounting.Aggregate(nil, priceOf)
		if !tot.ProfitPct.IsZero() {
			t.Errorf("ProfitPct = %s, want 0", tot.ProfitPct)
		}
	})
}
