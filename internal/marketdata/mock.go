package marketdata

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

// MockProvider mocks a market data feed with deterministic pseudo-random
// quotes: the same symbol on the same day always prices the same, so
// repeated reads and tests are stable. Quotes are cached with a TTL behind
// a mutex; RefreshQuotes pre-warms the cache for the background cron job.
type MockProvider struct {
	mu      sync.Mutex
	cache   map[string]model.Quote
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewMockProvider returns a provider whose cached quotes expire after ttl.
func NewMockProvider(ttl time.Duration) *MockProvider {
	return &MockProvider{
		cache:   make(map[string]model.Quote),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Quote returns the cached quote for symbol, generating a fresh one when
// the cache entry is missing or expired.
func (p *MockProvider) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return model.Quote{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.nowFunc()
	if q, ok := p.cache[symbol]; ok && now.Sub(q.QuotedAt) < p.ttl {
		return q, nil
	}

	q := p.generateQuote(symbol, now)
	p.cache[symbol] = q
	return q, nil
}

// Identity returns the catalog identity for symbol.
func (p *MockProvider) Identity(ctx context.Context, symbol string) (model.StockInfo, error) {
	if err := ctx.Err(); err != nil {
		return model.StockInfo{}, err
	}
	e := lookupCatalog(symbol)
	return model.StockInfo{
		Symbol:   e.symbol,
		Name:     e.name,
		Market:   e.market,
		Industry: e.industry,
		FullName: e.fullName,
	}, nil
}

// Search matches keyword against catalog codes and names.
func (p *MockProvider) Search(ctx context.Context, keyword string, limit int) ([]model.StockInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := searchCatalog(keyword, limit)
	out := make([]model.StockInfo, len(entries))
	for i, e := range entries {
		out[i] = model.StockInfo{
			Symbol:   e.symbol,
			Name:     e.name,
			Market:   e.market,
			Industry: e.industry,
			FullName: e.fullName,
		}
	}
	return out, nil
}

// Candles walks a deterministic daily price path between from and to,
// skipping weekends. Weekly and monthly periods downsample the daily walk
// to the last trading day of each bucket.
func (p *MockProvider) Candles(ctx context.Context, symbol, period string, from, to time.Time, limit int) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	to = lastTradingDay(to)
	if from.After(to) {
		return []model.Candle{}, nil
	}

	var daily []model.Candle
	price := basePrice(symbol)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		c, next := p.generateCandle(symbol, d, price)
		daily = append(daily, c)
		price = next
	}

	candles := downsample(daily, period)
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// RefreshQuotes regenerates cached quotes for the given symbols. The cron
// job calls this with every symbol currently held or watched.
func (p *MockProvider) RefreshQuotes(symbols []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.nowFunc()
	for _, s := range symbols {
		p.cache[s] = p.generateQuote(s, now)
	}
}

// basePrice anchors each symbol's price level off a hash of its code, the
// same trick the original mock feed used to keep prices plausible per symbol.
func basePrice(symbol string) decimal.Decimal {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	cents := 1000 + int64(h.Sum64()%10000) // 10.00 .. 109.99
	return decimal.New(cents, -2)
}

func seededRand(symbol string, t time.Time) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s-%d-%d", symbol, t.Year(), t.YearDay())))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func (p *MockProvider) generateQuote(symbol string, now time.Time) model.Quote {
	day := lastTradingDay(now)
	r := seededRand(symbol, day)
	base := basePrice(symbol)

	price := jitter(base, r, 0.05)
	open := jitter(price, r, 0.02)
	high := decimal.Max(open, price).Mul(decimal.NewFromFloat(1 + r.Float64()*0.02)).Round(2)
	low := decimal.Min(open, price).Mul(decimal.NewFromFloat(1 - r.Float64()*0.02)).Round(2)
	prevClose := jitter(base, r, 0.05)
	change := price.Sub(prevClose)
	changePct := decimal.Zero
	if !prevClose.IsZero() {
		changePct = change.Div(prevClose).Mul(decimal.NewFromInt(100)).Round(2)
	}

	e := lookupCatalog(symbol)
	return model.Quote{
		Symbol:    symbol,
		Name:      e.name,
		Market:    e.market,
		Price:     price,
		Open:      open,
		High:      high,
		Low:       low,
		PrevClose: prevClose,
		Change:    change,
		ChangePct: changePct,
		Volume:    10_000 + r.Int63n(9_990_000),
		QuotedAt:  now,
	}
}

// generateCandle produces the candle for one trading day, returning the
// close so the walk continues from it.
func (p *MockProvider) generateCandle(symbol string, day time.Time, prev decimal.Decimal) (model.Candle, decimal.Decimal) {
	r := seededRand(symbol, day)

	changePct := decimal.NewFromFloat((r.Float64()*4 - 2)).Round(2) // -2.00% .. +2.00%
	closePrice := prev.Mul(decimal.NewFromInt(100).Add(changePct)).Div(decimal.NewFromInt(100)).Round(2)
	open := jitter(prev, r, 0.01)
	high := decimal.Max(open, closePrice).Mul(decimal.NewFromFloat(1 + r.Float64()*0.01)).Round(2)
	low := decimal.Min(open, closePrice).Mul(decimal.NewFromFloat(1 - r.Float64()*0.01)).Round(2)

	return model.Candle{
		Date:      day.Format("2006-01-02"),
		Open:      open,
		Close:     closePrice,
		High:      high,
		Low:       low,
		Volume:    5_000_000 + r.Int63n(45_000_000),
		Change:    closePrice.Sub(prev),
		ChangePct: changePct,
	}, closePrice
}

func jitter(d decimal.Decimal, r *rand.Rand, span float64) decimal.Decimal {
	factor := 1 + (r.Float64()*2-1)*span
	return d.Mul(decimal.NewFromFloat(factor)).Round(2)
}

// lastTradingDay shifts weekend dates back to the preceding Friday.
func lastTradingDay(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, -2)
	default:
		return t
	}
}

// downsample keeps the last candle of each week or month. Daily (or any
// unrecognized period) passes through unchanged.
func downsample(daily []model.Candle, period string) []model.Candle {
	if period != PeriodWeekly && period != PeriodMonthly {
		return daily
	}

	bucket := func(dateStr string) string {
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return dateStr
		}
		if period == PeriodWeekly {
			year, week := d.ISOWeek()
			return fmt.Sprintf("%d-%02d", year, week)
		}
		return d.Format("2006-01")
	}

	var out []model.Candle
	for _, c := range daily {
		if len(out) > 0 && bucket(out[len(out)-1].Date) == bucket(c.Date) {
			out[len(out)-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}
