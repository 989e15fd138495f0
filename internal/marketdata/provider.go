// Package marketdata supplies price quotes, instrument identity, keyword
// search and K-line history. The engine treats it as an external
// collaborator: lookups carry a bounded timeout and callers tolerate
// failure by falling back to cost-based valuations.
package marketdata

import (
	"context"
	"time"

	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

// K-line periods accepted by Candles.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// Provider is the quote provider boundary. Implementations must return
// apperrors.ErrQuoteUnavailable (or wrap it) on lookup failure and
// apperrors.ErrSymbolNotFound for unknown instruments, and must honor
// context cancellation.
type Provider interface {
	// Quote returns the current price snapshot for a symbol.
	Quote(ctx context.Context, symbol string) (model.Quote, error)

	// Identity returns the basic identity (name, market) of a symbol.
	Identity(ctx context.Context, symbol string) (model.StockInfo, error)

	// Search matches a keyword against instrument codes and names.
	Search(ctx context.Context, keyword string, limit int) ([]model.StockInfo, error)

	// Candles returns up to limit K-line points for the date range.
	Candles(ctx context.Context, symbol, period string, from, to time.Time, limit int) ([]model.Candle, error)
}
