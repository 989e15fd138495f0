package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
	"github.com/stocktrackhq/stocktrack-backend/internal/repository"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
	"github.com/stocktrackhq/stocktrack-backend/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buyInput(portfolioID, symbol string, qty int64, price string) service.TradeInput {
	return service.TradeInput{
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Quantity:    qty,
		Price:       dec(price),
	}
}

// TestTradingService_ExecuteBuy tests buy execution.
//
// WHY: Buys drive the average-cost blend and create both a holding change
// and a ledger entry. The two must appear together or not at all.
func TestTradingService_ExecuteBuy(t *testing.T) {
	t.Run("first buy opens a holding at the trade price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)

		result, err := svc.ExecuteBuy(context.Background(), user.ID, buyInput(portfolio.ID, "600000", 100, "10.00"))
		if err != nil {
			t.Fatalf("ExecuteBuy() returned unexpected error: %v", err)
		}

		if result.Holding == nil {
			t.Fatal("Expected a holding in the result")
		}
		if result.Holding.Quantity != 100 {
			t.Errorf("Expected quantity 100, got %d", result.Holding.Quantity)
		}
		if !result.Holding.AverageCost.Equal(dec("10.00")) {
			t.Errorf("Expected average cost 10.00, got %s", result.Holding.AverageCost)
		}
		if result.Transaction.Type != model.TransactionBuy {
			t.Errorf("Expected a buy transaction, got %s", result.Transaction.Type)
		}
		if !result.Transaction.TotalAmount.Equal(dec("1000.00")) {
			t.Errorf("Expected total amount 1000.00, got %s", result.Transaction.TotalAmount)
		}
	})

	t.Run("second buy blends the average cost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)

		if _, err := svc.ExecuteBuy(context.Background(), user.ID, buyInput(portfolio.ID, "600000", 100, "10.00")); err != nil {
			t.Fatalf("first ExecuteBuy() returned unexpected error: %v", err)
		}
		result, err := svc.ExecuteBuy(context.Background(), user.ID, buyInput(portfolio.ID, "600000", 100, "20.00"))
		if err != nil {
			t.Fatalf("second ExecuteBuy() returned unexpected error: %v", err)
		}

		if result.Holding.Quantity != 200 {
			t.Errorf("Expected quantity 200, got %d", result.Holding.Quantity)
		}
		if !result.Holding.AverageCost.Equal(dec("15.00")) {
			t.Errorf("Expected blended average cost 15.00, got %s", result.Holding.AverageCost)
		}
	})

	t.Run("falls back to default portfolio when none addressed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)

		result, err := svc.ExecuteBuy(context.Background(), user.ID, buyInput("", "600000", 10, "5.00"))
		if err != nil {
			t.Fatalf("ExecuteBuy() returned unexpected error: %v", err)
		}

		// A default portfolio must have been created to receive the trade.
		portfolioRepo := repository.NewPortfolioRepository(db)
		created, err := portfolioRepo.GetDefault(context.Background(), db, user.ID)
		if err != nil {
			t.Fatalf("Expected a default portfolio, got error: %v", err)
		}
		if result.Transaction.PortfolioID != created.ID {
			t.Errorf("Expected trade in default portfolio %s, got %s", created.ID, result.Transaction.PortfolioID)
		}
	})

	t.Run("rejects non-positive quantity and price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)

		if _, err := svc.ExecuteBuy(context.Background(), user.ID, buyInput("", "600000", 0, "10.00")); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for zero quantity, got %v", err)
		}
		if _, err := svc.ExecuteBuy(context.Background(), user.ID, buyInput("", "600000", 10, "0")); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for zero price, got %v", err)
		}
	})

	t.Run("quote provider failure does not block the trade", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		provider.FailSymbol("600000")
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)

		result, err := svc.ExecuteBuy(context.Background(), user.ID, buyInput(portfolio.ID, "600000", 10, "10.00"))
		if err != nil {
			t.Fatalf("ExecuteBuy() returned unexpected error: %v", err)
		}
		if result.Holding.Name != "600000" {
			t.Errorf("Expected symbol as fallback name, got %q", result.Holding.Name)
		}
	})
}

// TestTradingService_ExecuteSell tests sell execution.
//
// WHY: Sells must never change the average cost, must delete the holding at
// zero, and an over-sell must leave both the holding and the ledger
// completely untouched.
func TestTradingService_ExecuteSell(t *testing.T) {
	setup := func(t *testing.T) (*service.TradingService, model.User, model.Portfolio) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("600000").WithPosition(100, "15.00").Build(t, db)
		return svc, user, portfolio
	}

	t.Run("partial sell keeps average cost unchanged", func(t *testing.T) {
		svc, user, portfolio := setup(t)

		result, err := svc.ExecuteSell(context.Background(), user.ID, buyInput(portfolio.ID, "600000", 40, "30.00"))
		if err != nil {
			t.Fatalf("ExecuteSell() returned unexpected error: %v", err)
		}

		if result.Holding == nil {
			t.Fatal("Expected a remaining holding")
		}
		if result.Holding.Quantity != 60 {
			t.Errorf("Expected remaining quantity 60, got %d", result.Holding.Quantity)
		}
		if !result.Holding.AverageCost.Equal(dec("15.00")) {
			t.Errorf("Expected unchanged average cost 15.00, got %s", result.Holding.AverageCost)
		}
		if result.RealizedProfit == nil {
			t.Fatal("Expected realized profit on sell")
		}
		// 40 * (30 - 15) = 600
		if !result.RealizedProfit.Equal(dec("600.00")) {
			t.Errorf("Expected realized profit 600.00, got %s", result.RealizedProfit)
		}
	})

	t.Run("full sell closes the position", func(t *testing.T) {
		svc, user, portfolio := setup(t)

		result, err := svc.ExecuteSell(context.Background(), user.ID, buyInput(portfolio.ID, "600000", 100, "20.00"))
		if err != nil {
			t.Fatalf("ExecuteSell() returned unexpected error: %v", err)
		}
		if result.Holding != nil {
			t.Errorf("Expected no holding after full sell, got quantity %d", result.Holding.Quantity)
		}
	})

	t.Run("over-sell is rejected and mutates nothing", func(t *testing.T) {
		svc, user, portfolio := setup(t)

		_, err := svc.ExecuteSell(context.Background(), user.ID, buyInput(portfolio.ID, "600000", 150, "20.00"))
		if !errors.Is(err, apperrors.ErrInsufficientQuantity) {
			t.Fatalf("Expected ErrInsufficientQuantity, got %v", err)
		}

		transactions, err := svc.ListTransactions(context.Background(), user.ID, portfolio.ID, "", 0)
		if err != nil {
			t.Fatalf("ListTransactions() returned unexpected error: %v", err)
		}
		if len(transactions) != 0 {
			t.Errorf("Expected empty ledger after rejected sell, got %d entries", len(transactions))
		}
	})

	t.Run("selling an unknown symbol fails", func(t *testing.T) {
		svc, user, portfolio := setup(t)

		_, err := svc.ExecuteSell(context.Background(), user.ID, buyInput(portfolio.ID, "999999", 10, "20.00"))
		if !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound, got %v", err)
		}
	})

	t.Run("sell commissions reduce realized profit", func(t *testing.T) {
		svc, user, portfolio := setup(t)

		in := buyInput(portfolio.ID, "600000", 50, "30.00")
		in.Commission = dec("10.00")
		in.Tax = dec("2.50")
		result, err := svc.ExecuteSell(context.Background(), user.ID, in)
		if err != nil {
			t.Fatalf("ExecuteSell() returned unexpected error: %v", err)
		}
		// 50 * (30 - 15) - 10 - 2.50 = 737.50
		if !result.RealizedProfit.Equal(dec("737.50")) {
			t.Errorf("Expected realized profit 737.50, got %s", result.RealizedProfit)
		}
	})
}

// TestTradingService_Ledger tests transaction listing and stats.
//
// WHY: The ledger is append-only and is the source of truth for activity
// statistics; filters and period math must hold up.
func TestTradingService_Ledger(t *testing.T) {
	t.Run("lists transactions newest first with filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)

		for _, symbol := range []string{"600000", "600036", "600000"} {
			if _, err := svc.ExecuteBuy(context.Background(), user.ID, buyInput(portfolio.ID, symbol, 10, "10.00")); err != nil {
				t.Fatalf("ExecuteBuy() returned unexpected error: %v", err)
			}
		}

		all, err := svc.ListTransactions(context.Background(), user.ID, "", "", 0)
		if err != nil {
			t.Fatalf("ListTransactions() returned unexpected error: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("Expected 3 transactions, got %d", len(all))
		}

		filtered, err := svc.ListTransactions(context.Background(), user.ID, "", "600000", 0)
		if err != nil {
			t.Fatalf("ListTransactions() returned unexpected error: %v", err)
		}
		if len(filtered) != 2 {
			t.Errorf("Expected 2 transactions for 600000, got %d", len(filtered))
		}
	})

	t.Run("stats aggregate buys, sells and fees", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)

		buy := buyInput(portfolio.ID, "600000", 100, "10.00")
		buy.Commission = dec("5.00")
		if _, err := svc.ExecuteBuy(context.Background(), user.ID, buy); err != nil {
			t.Fatalf("ExecuteBuy() returned unexpected error: %v", err)
		}
		sell := buyInput(portfolio.ID, "600000", 50, "20.00")
		sell.Tax = dec("1.00")
		if _, err := svc.ExecuteSell(context.Background(), user.ID, sell); err != nil {
			t.Fatalf("ExecuteSell() returned unexpected error: %v", err)
		}

		stats, err := svc.Stats(context.Background(), user.ID, "", service.PeriodAll)
		if err != nil {
			t.Fatalf("Stats() returned unexpected error: %v", err)
		}

		if stats.TransactionCount != 2 || stats.BuyCount != 1 || stats.SellCount != 1 {
			t.Errorf("Unexpected counts: %+v", stats)
		}
		if !stats.TotalBuy.Equal(dec("1000.00")) {
			t.Errorf("Expected total buy 1000.00, got %s", stats.TotalBuy)
		}
		if !stats.TotalSell.Equal(dec("1000.00")) {
			t.Errorf("Expected total sell 1000.00, got %s", stats.TotalSell)
		}
		if !stats.TotalFees.Equal(dec("6.00")) {
			t.Errorf("Expected total fees 6.00, got %s", stats.TotalFees)
		}
		// 1000 - 1000 - 6 = -6
		if !stats.NetCashFlow.Equal(dec("-6.00")) {
			t.Errorf("Expected net cash flow -6.00, got %s", stats.NetCashFlow)
		}
		if len(stats.MostActive) != 1 || stats.MostActive[0].Symbol != "600000" {
			t.Errorf("Unexpected most active symbols: %+v", stats.MostActive)
		}
	})

	t.Run("unknown period is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)

		if _, err := svc.Stats(context.Background(), user.ID, "", "decade"); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("closing a position removes its row and keeps the full ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Default().Build(t, db)

		// Open, blend, partially sell, then sell out.
		for _, buy := range []struct {
			qty   int64
			price string
		}{{100, "10.00"}, {100, "20.00"}} {
			if _, err := svc.ExecuteBuy(context.Background(), user.ID, buyInput(portfolio.ID, "600000", buy.qty, buy.price)); err != nil {
				t.Fatalf("ExecuteBuy() returned unexpected error: %v", err)
			}
		}
		if _, err := svc.ExecuteSell(context.Background(), user.ID, buyInput(portfolio.ID, "600000", 50, "30.00")); err != nil {
			t.Fatalf("ExecuteSell() returned unexpected error: %v", err)
		}
		result, err := svc.ExecuteSell(context.Background(), user.ID, buyInput(portfolio.ID, "600000", 150, "15.00"))
		if err != nil {
			t.Fatalf("ExecuteSell() returned unexpected error: %v", err)
		}
		if result.Holding != nil {
			t.Errorf("Expected a closed position, got %+v", result.Holding)
		}

		// The row itself must be gone, not just reported as closed.
		var holdingRows int
		if err := db.QueryRow(`SELECT COUNT(1) FROM holding WHERE portfolio_id = ?`, portfolio.ID).Scan(&holdingRows); err != nil {
			t.Fatalf("Failed to count holdings: %v", err)
		}
		if holdingRows != 0 {
			t.Errorf("Expected 0 holding rows after closing, got %d", holdingRows)
		}

		transactions, err := svc.ListTransactions(context.Background(), user.ID, "", "", 0)
		if err != nil {
			t.Fatalf("ListTransactions() returned unexpected error: %v", err)
		}
		if len(transactions) != 4 {
			t.Fatalf("Expected 4 ledger entries, got %d", len(transactions))
		}
		for _, want := range []decimal.Decimal{dec("1000.00"), dec("2000.00"), dec("1500.00"), dec("2250.00")} {
			found := false
			for _, tx := range transactions {
				if tx.TotalAmount.Equal(want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Expected a ledger entry with total amount %s", want)
			}
		}
	})

	t.Run("transactions are scoped to their owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider()
		svc := testutil.NewTestTradingService(t, db, provider)
		owner := testutil.NewUser().Build(t, db)
		other := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(owner.ID).Default().Build(t, db)

		result, err := svc.ExecuteBuy(context.Background(), owner.ID, buyInput(portfolio.ID, "600000", 10, "10.00"))
		if err != nil {
			t.Fatalf("ExecuteBuy() returned unexpected error: %v", err)
		}

		if _, err := svc.GetTransaction(context.Background(), result.Transaction.ID, other.ID); !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("Expected ErrTransactionNotFound for foreign user, got %v", err)
		}
	})
}
