package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stocktrackhq/stocktrack-backend/internal/accounting"
	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/marketdata"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
	"github.com/stocktrackhq/stocktrack-backend/internal/repository"
)

// TradingService executes buy and sell trades. Each trade is one unit of
// work: the ledger append and the holding mutation run in a single SQL
// transaction and commit or roll back together. A recorded transaction
// with no holding update (or vice versa) cannot happen.
type TradingService struct {
	db               *sql.DB
	portfolioService *PortfolioService
	portfolioRepo    *repository.PortfolioRepository
	holdingRepo      *repository.HoldingRepository
	transactionRepo  *repository.TransactionRepository
	market           marketdata.Provider
	quoteTimeout     time.Duration
	log              *logrus.Entry
	now              func() time.Time
}

// NewTradingService creates a new TradingService with the provided dependencies.
func NewTradingService(
	db *sql.DB,
	portfolioService *PortfolioService,
	portfolioRepo *repository.PortfolioRepository,
	holdingRepo *repository.HoldingRepository,
	transactionRepo *repository.TransactionRepository,
	market marketdata.Provider,
	quoteTimeout time.Duration,
	log *logrus.Logger,
) *TradingService {
	return &TradingService{
		db:               db,
		portfolioService: portfolioService,
		portfolioRepo:    portfolioRepo,
		holdingRepo:      holdingRepo,
		transactionRepo:  transactionRepo,
		market:           market,
		quoteTimeout:     quoteTimeout,
		log:              log.WithField("component", "trading-service"),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// TradeInput carries one buy or sell order. Price is caller-supplied; the
// quote provider is consulted only for the instrument's display name.
type TradeInput struct {
	PortfolioID string
	Symbol      string
	Quantity    int64
	Price       decimal.Decimal
	Commission  decimal.Decimal
	Tax         decimal.Decimal
	Notes       string
	ExecutedAt  time.Time // zero means now
}

// TradeResult reports an executed trade. Holding is nil when the trade
// closed the position. RealizedProfit is set on sells only; it is derived
// from the pre-sale average cost and never stored.
type TradeResult struct {
	Transaction    model.Transaction `json:"transaction"`
	Holding        *model.Holding    `json:"holding"`
	RealizedProfit *decimal.Decimal  `json:"realizedProfit,omitempty"`
}

func (in TradeInput) validate() error {
	if in.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", apperrors.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", apperrors.ErrInvalidInput, in.Quantity)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", apperrors.ErrInvalidInput, in.Price)
	}
	if in.Commission.IsNegative() || in.Tax.IsNegative() {
		return fmt.Errorf("%w: commission and tax cannot be negative", apperrors.ErrInvalidInput)
	}
	return nil
}

// ExecuteBuy applies a buy. When the given portfolio does not exist (or no
// portfolio is given) the trade lands in the user's default portfolio,
// creating it if needed.
func (s *TradingService) ExecuteBuy(ctx context.Context, userID string, in TradeInput) (TradeResult, error) {
	if err := in.validate(); err != nil {
		return TradeResult{}, err
	}

	portfolio, err := s.resolvePortfolio(ctx, userID, in.PortfolioID)
	if err != nil {
		return TradeResult{}, err
	}

	name := s.lookupName(ctx, in.Symbol)
	now := s.now()
	executedAt := in.ExecutedAt
	if executedAt.IsZero() {
		executedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TradeResult{}, fmt.Errorf("failed to begin trade transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	holding, err := s.holdingRepo.Find(ctx, tx, portfolio.ID, in.Symbol)
	created := false
	if err == apperrors.ErrHoldingNotFound {
		created = true
		holding = model.Holding{
			ID:          uuid.New().String(),
			PortfolioID: portfolio.ID,
			Symbol:      in.Symbol,
			Name:        name,
			CreatedAt:   now,
		}
	} else if err != nil {
		return TradeResult{}, err
	}

	if err := accounting.ApplyBuy(&holding, in.Quantity, in.Price); err != nil {
		return TradeResult{}, err
	}
	holding.UpdatedAt = now

	if created {
		if err := s.holdingRepo.Insert(ctx, tx, &holding); err != nil {
			return TradeResult{}, err
		}
	} else {
		if err := s.holdingRepo.UpdatePosition(ctx, tx, &holding); err != nil {
			return TradeResult{}, err
		}
	}

	record := s.buildTransaction(userID, portfolio.ID, name, model.TransactionBuy, in, executedAt, now)
	if err := s.transactionRepo.Insert(ctx, tx, &record); err != nil {
		return TradeResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return TradeResult{}, fmt.Errorf("failed to commit buy: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user":     userID,
		"symbol":   in.Symbol,
		"quantity": in.Quantity,
		"price":    in.Price,
	}).Info("buy executed")

	return TradeResult{Transaction: record, Holding: &holding}, nil
}

// ExecuteSell applies a sell. Unlike buys there is no default-portfolio
// fallback: selling out of a portfolio the user does not own is an error.
// The quantity decrement is an atomic conditional update, so concurrent
// sells cannot both pass the sufficiency check and over-sell.
func (s *TradingService) ExecuteSell(ctx context.Context, userID string, in TradeInput) (TradeResult, error) {
	if err := in.validate(); err != nil {
		return TradeResult{}, err
	}

	portfolio, err := s.portfolioRepo.GetByID(ctx, s.db, in.PortfolioID, userID)
	if err != nil {
		return TradeResult{}, err
	}

	now := s.now()
	executedAt := in.ExecutedAt
	if executedAt.IsZero() {
		executedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TradeResult{}, fmt.Errorf("failed to begin trade transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	holding, err := s.holdingRepo.Find(ctx, tx, portfolio.ID, in.Symbol)
	if err != nil {
		return TradeResult{}, err
	}
	avgCostBefore := holding.AverageCost

	// Validate against the in-memory copy first; the conditional update
	// below is the authoritative guard.
	if _, err := accounting.ApplySell(&holding, in.Quantity, in.Price); err != nil {
		return TradeResult{}, err
	}

	remaining, err := s.holdingRepo.DecrementQuantity(ctx, tx, holding.ID, in.Quantity, now)
	if err != nil {
		return TradeResult{}, err
	}
	if remaining == 0 {
		if err := s.holdingRepo.DeleteIfEmpty(ctx, tx, holding.ID); err != nil {
			return TradeResult{}, err
		}
	}

	record := s.buildTransaction(userID, portfolio.ID, holding.Name, model.TransactionSell, in, executedAt, now)
	if err := s.transactionRepo.Insert(ctx, tx, &record); err != nil {
		return TradeResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return TradeResult{}, fmt.Errorf("failed to commit sell: %w", err)
	}

	realized := accounting.RealizedProfit(in.Quantity, in.Price, avgCostBefore, in.Commission, in.Tax)

	s.log.WithFields(logrus.Fields{
		"user":     userID,
		"symbol":   in.Symbol,
		"quantity": in.Quantity,
		"price":    in.Price,
		"realized": realized,
	}).Info("sell executed")

	result := TradeResult{Transaction: record, RealizedProfit: &realized}
	if remaining > 0 {
		holding.Quantity = remaining
		holding.UpdatedAt = now
		result.Holding = &holding
	}
	return result, nil
}

// resolvePortfolio returns the addressed portfolio, falling back to the
// user's default when none is addressed or the addressed one is missing.
func (s *TradingService) resolvePortfolio(ctx context.Context, userID, portfolioID string) (model.Portfolio, error) {
	if portfolioID != "" {
		p, err := s.portfolioRepo.GetByID(ctx, s.db, portfolioID, userID)
		if err == nil {
			return p, nil
		}
		if err != apperrors.ErrPortfolioNotFound {
			return model.Portfolio{}, err
		}
	}
	return s.portfolioService.DefaultPortfolio(ctx, userID)
}

// lookupName asks the provider for the instrument's display name with a
// bounded timeout. Provider failure never blocks a trade; the symbol code
// stands in as the name.
func (s *TradingService) lookupName(ctx context.Context, symbol string) string {
	lookupCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()

	info, err := s.market.Identity(lookupCtx, symbol)
	if err != nil {
		s.log.WithField("symbol", symbol).WithError(err).Warn("identity lookup failed, using symbol as name")
		return symbol
	}
	return info.Name
}

func (s *TradingService) buildTransaction(userID, portfolioID, name, tradeType string, in TradeInput, executedAt, now time.Time) model.Transaction {
	return model.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		PortfolioID: portfolioID,
		Symbol:      in.Symbol,
		Name:        name,
		Type:        tradeType,
		Quantity:    in.Quantity,
		Price:       in.Price,
		TotalAmount: in.Price.Mul(decimal.NewFromInt(in.Quantity)),
		Commission:  in.Commission,
		Tax:         in.Tax,
		Notes:       in.Notes,
		ExecutedAt:  executedAt,
		CreatedAt:   now,
	}
}

// ListTransactions returns a user's ledger entries, optionally filtered by
// portfolio and symbol.
func (s *TradingService) ListTransactions(ctx context.Context, userID, portfolioID, symbol string, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.transactionRepo.ListByUser(ctx, userID, repository.TransactionFilter{
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Limit:       limit,
	})
}

// GetTransaction returns one ledger entry owned by the user.
func (s *TradingService) GetTransaction(ctx context.Context, id, userID string) (model.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, id, userID)
}

// Stats periods.
const (
	PeriodAll   = "all"
	PeriodYear  = "year"
	PeriodMonth = "month"
	PeriodWeek  = "week"
)

// Stats aggregates a user's ledger over a period: buy/sell volume, fees,
// net cash flow and the most actively traded symbols.
func (s *TradingService) Stats(ctx context.Context, userID, portfolioID, period string) (model.TransactionStats, error) {
	since, err := periodStart(period, s.now())
	if err != nil {
		return model.TransactionStats{}, err
	}

	transactions, err := s.transactionRepo.ListByUser(ctx, userID, repository.TransactionFilter{
		PortfolioID: portfolioID,
		Since:       since,
	})
	if err != nil {
		return model.TransactionStats{}, err
	}

	stats := model.TransactionStats{Period: period}
	symbolNames := map[string]string{}
	symbolCounts := map[string]int{}

	for _, t := range transactions {
		stats.TransactionCount++
		stats.TotalCommission = stats.TotalCommission.Add(t.Commission)
		stats.TotalTax = stats.TotalTax.Add(t.Tax)
		symbolNames[t.Symbol] = t.Name
		symbolCounts[t.Symbol]++

		if t.Type == model.TransactionBuy {
			stats.BuyCount++
			stats.TotalBuy = stats.TotalBuy.Add(t.TotalAmount)
		} else {
			stats.SellCount++
			stats.TotalSell = stats.TotalSell.Add(t.TotalAmount)
		}
	}

	stats.TotalFees = stats.TotalCommission.Add(stats.TotalTax)
	stats.NetCashFlow = stats.TotalSell.Sub(stats.TotalBuy).Sub(stats.TotalFees)
	stats.SymbolCount = len(symbolCounts)
	stats.MostActive = rankSymbols(symbolCounts, symbolNames, 5)
	return stats, nil
}

func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "", PeriodAll:
		return time.Time{}, nil
	case PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), nil
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	case PeriodWeek:
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		day := now.AddDate(0, 0, -daysSinceMonday)
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown period %q", apperrors.ErrInvalidInput, period)
	}
}

func rankSymbols(counts map[string]int, names map[string]string, top int) []model.SymbolActivity {
	ranked := make([]model.SymbolActivity, 0, len(counts))
	for symbol, count := range counts {
		ranked = append(ranked, model.SymbolActivity{Symbol: symbol, Name: names[symbol], Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})
	if len(ranked) > top {
		ranked = ranked[:top]
	}
	return ranked
}
