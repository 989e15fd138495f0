package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

// StaticProvider is a quote provider with caller-controlled prices, for
// tests that need exact valuations or deliberate lookup failures.
//
// Example:
//
//	provider := testutil.NewStaticProvider()
//	provider.SetPrice("600000", "20.00")
//	provider.FailSymbol("600519")
type StaticProvider struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	failed map[string]bool
}

// NewStaticProvider creates an empty StaticProvider. Unknown symbols
// return ErrQuoteUnavailable.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		prices: make(map[string]decimal.Decimal),
		failed: make(map[string]bool),
	}
}

// SetPrice fixes the quoted price for a symbol.
func (p *StaticProvider) SetPrice(symbol, price string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[symbol] = decimal.RequireFromString(price)
	delete(p.failed, symbol)
}

// FailSymbol makes every lookup of the symbol fail.
func (p *StaticProvider) FailSymbol(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[symbol] = true
}

func (p *StaticProvider) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed[symbol] {
		return model.Quote{}, apperrors.ErrQuoteUnavailable
	}
	price, ok := p.prices[symbol]
	if !ok {
		return model.Quote{}, apperrors.ErrQuoteUnavailable
	}
	return model.Quote{
		Symbol:   symbol,
		Price:    price,
		QuotedAt: time.Now().UTC(),
	}, nil
}

func (p *StaticProvider) Identity(ctx context.Context, symbol string) (model.StockInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed[symbol] {
		return model.StockInfo{}, apperrors.ErrQuoteUnavailable
	}
	return model.StockInfo{Symbol: symbol, Name: "Test " + symbol, Market: "SH"}, nil
}

func (p *StaticProvider) Search(ctx context.Context, keyword string, limit int) ([]model.StockInfo, error) {
	return nil, nil
}

func (p *StaticProvider) Candles(ctx context.Context, symbol, period string, from, to time.Time, limit int) ([]model.Candle, error) {
	return nil, nil
}

// RefreshQuotes satisfies the quote cache interface; a no-op here.
func (p *StaticProvider) RefreshQuotes(symbols []string) {}
