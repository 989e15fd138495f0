package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/marketdata"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
	"github.com/stocktrackhq/stocktrack-backend/internal/testutil"
)

func newStockService(t *testing.T) *service.StockService {
	t.Helper()
	return service.NewStockService(marketdata.NewMockProvider(time.Minute), time.Second, testutil.NewTestLogger(t))
}

// TestStockService_Quote tests quote lookups.
func TestStockService_Quote(t *testing.T) {
	svc := newStockService(t)

	t.Run("returns a quote for a symbol", func(t *testing.T) {
		quote, err := svc.Quote(context.Background(), "600519")
		if err != nil {
			t.Fatalf("Quote() returned unexpected error: %v", err)
		}
		if quote.Symbol != "600519" || !quote.Price.IsPositive() {
			t.Errorf("Unexpected quote: %+v", quote)
		}
	})

	t.Run("rejects an empty symbol", func(t *testing.T) {
		if _, err := svc.Quote(context.Background(), ""); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})
}

// TestStockService_Search tests the search limit clamp.
func TestStockService_Search(t *testing.T) {
	svc := newStockService(t)

	t.Run("keyword is required", func(t *testing.T) {
		if _, err := svc.Search(context.Background(), "", 5); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("oversized limit is clamped", func(t *testing.T) {
		results, err := svc.Search(context.Background(), "0", 10_000)
		if err != nil {
			t.Fatalf("Search() returned unexpected error: %v", err)
		}
		if len(results) > 20 {
			t.Errorf("Expected at most 20 results, got %d", len(results))
		}
	})
}

// TestStockService_Candles tests range defaulting and validation.
//
// WHY: Chart requests usually omit the range; the service must default to a
// trailing year rather than pass zero times to the provider.
func TestStockService_Candles(t *testing.T) {
	svc := newStockService(t)

	t.Run("zero range defaults to the trailing year", func(t *testing.T) {
		candles, err := svc.Candles(context.Background(), "600000", "", time.Time{}, time.Time{}, 0)
		if err != nil {
			t.Fatalf("Candles() returned unexpected error: %v", err)
		}
		if len(candles) == 0 {
			t.Fatal("Expected candles for the trailing year")
		}
		if len(candles) > 120 {
			t.Errorf("Expected the default limit of 120, got %d", len(candles))
		}
	})

	t.Run("unknown period is rejected", func(t *testing.T) {
		if _, err := svc.Candles(context.Background(), "600000", "hourly", time.Time{}, time.Time{}, 0); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		from := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
		if _, err := svc.Candles(context.Background(), "600000", "daily", from, to, 0); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})
}
