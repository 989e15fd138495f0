package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/marketdata"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

const (
	defaultCandleLimit = 120
	maxCandleLimit     = 500
	maxSearchResults   = 20
)

// StockService exposes market data lookups with bounded provider timeouts.
type StockService struct {
	market       marketdata.Provider
	quoteTimeout time.Duration
	log          *logrus.Entry
}

// NewStockService creates a new StockService with the provided dependencies.
func NewStockService(market marketdata.Provider, quoteTimeout time.Duration, log *logrus.Logger) *StockService {
	return &StockService{
		market:       market,
		quoteTimeout: quoteTimeout,
		log:          log.WithField("component", "stock-service"),
	}
}

// Quote returns the current quote for a symbol.
func (s *StockService) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	if symbol == "" {
		return model.Quote{}, fmt.Errorf("%w: symbol is required", apperrors.ErrInvalidInput)
	}
	quoteCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()
	return s.market.Quote(quoteCtx, symbol)
}

// Info returns static identity data for a symbol.
func (s *StockService) Info(ctx context.Context, symbol string) (model.StockInfo, error) {
	if symbol == "" {
		return model.StockInfo{}, fmt.Errorf("%w: symbol is required", apperrors.ErrInvalidInput)
	}
	infoCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()
	return s.market.Identity(infoCtx, symbol)
}

// Search looks up symbols by code or name fragment.
func (s *StockService) Search(ctx context.Context, keyword string, limit int) ([]model.StockInfo, error) {
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", apperrors.ErrInvalidInput)
	}
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	searchCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()
	return s.market.Search(searchCtx, keyword, limit)
}

// Candles returns historical candles for a symbol. Period is daily, weekly
// or monthly; a zero time range defaults to the trailing year and limit is
// clamped to a sane window.
func (s *StockService) Candles(ctx context.Context, symbol, period string, from, to time.Time, limit int) ([]model.Candle, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", apperrors.ErrInvalidInput)
	}
	switch period {
	case "":
		period = marketdata.PeriodDaily
	case marketdata.PeriodDaily, marketdata.PeriodWeekly, marketdata.PeriodMonthly:
	default:
		return nil, fmt.Errorf("%w: unknown period %q", apperrors.ErrInvalidInput, period)
	}
	if limit <= 0 {
		limit = defaultCandleLimit
	}
	if limit > maxCandleLimit {
		limit = maxCandleLimit
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(-1, 0, 0)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: time range is empty", apperrors.ErrInvalidInput)
	}

	candleCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()
	return s.market.Candles(candleCtx, symbol, period, from, to, limit)
}
