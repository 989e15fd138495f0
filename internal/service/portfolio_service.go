package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stocktrackhq/stocktrack-backend/internal/accounting"
	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/marketdata"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
	"github.com/stocktrackhq/stocktrack-backend/internal/repository"
)

const defaultPortfolioName = "Default Portfolio"

// maxConcurrentQuotes bounds the fan-out when valuing a portfolio.
const maxConcurrentQuotes = 8

// PortfolioService manages portfolios and their holdings, and values them
// against live quotes.
type PortfolioService struct {
	db            *sql.DB
	portfolioRepo *repository.PortfolioRepository
	holdingRepo   *repository.HoldingRepository
	market        marketdata.Provider
	quoteTimeout  time.Duration
	log           *logrus.Entry
	now           func() time.Time
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	holdingRepo *repository.HoldingRepository,
	market marketdata.Provider,
	quoteTimeout time.Duration,
	log *logrus.Logger,
) *PortfolioService {
	return &PortfolioService{
		db:            db,
		portfolioRepo: portfolioRepo,
		holdingRepo:   holdingRepo,
		market:        market,
		quoteTimeout:  quoteTimeout,
		log:           log.WithField("component", "portfolio-service"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// List returns all of the user's portfolios, default first.
func (s *PortfolioService) List(ctx context.Context, userID string) ([]model.Portfolio, error) {
	return s.portfolioRepo.ListByUser(ctx, userID)
}

// Get returns one portfolio owned by the user.
func (s *PortfolioService) Get(ctx context.Context, id, userID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetByID(ctx, s.db, id, userID)
}

// PortfolioInput carries portfolio create/update fields.
type PortfolioInput struct {
	Name        string
	Description string
	IsDefault   bool
}

// Create adds a portfolio. Marking it default demotes the previous default
// in the same transaction.
func (s *PortfolioService) Create(ctx context.Context, userID string, in PortfolioInput) (model.Portfolio, error) {
	if in.Name == "" {
		return model.Portfolio{}, fmt.Errorf("%w: portfolio name is required", apperrors.ErrInvalidInput)
	}

	now := s.now()
	portfolio := model.Portfolio{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		IsDefault:   in.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if in.IsDefault {
		if err := s.portfolioRepo.ClearDefault(ctx, tx, userID); err != nil {
			return model.Portfolio{}, err
		}
	}
	if err := s.portfolioRepo.Insert(ctx, tx, &portfolio); err != nil {
		return model.Portfolio{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to commit portfolio create: %w", err)
	}
	return portfolio, nil
}

// Update renames or re-describes a portfolio, and can promote it to
// default. Demoting the current default directly is not supported; promote
// another portfolio instead.
func (s *PortfolioService) Update(ctx context.Context, id, userID string, in PortfolioInput) (model.Portfolio, error) {
	if in.Name == "" {
		return model.Portfolio{}, fmt.Errorf("%w: portfolio name is required", apperrors.ErrInvalidInput)
	}

	portfolio, err := s.portfolioRepo.GetByID(ctx, s.db, id, userID)
	if err != nil {
		return model.Portfolio{}, err
	}

	portfolio.Name = in.Name
	portfolio.Description = in.Description
	portfolio.UpdatedAt = s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if in.IsDefault && !portfolio.IsDefault {
		if err := s.portfolioRepo.ClearDefault(ctx, tx, userID); err != nil {
			return model.Portfolio{}, err
		}
		portfolio.IsDefault = true
	}
	if err := s.portfolioRepo.Update(ctx, tx, &portfolio); err != nil {
		return model.Portfolio{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to commit portfolio update: %w", err)
	}
	return portfolio, nil
}

// SetDefault makes the portfolio the user's default, demoting any previous
// default in the same transaction.
func (s *PortfolioService) SetDefault(ctx context.Context, id, userID string) (model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetByID(ctx, s.db, id, userID)
	if err != nil {
		return model.Portfolio{}, err
	}
	if portfolio.IsDefault {
		return portfolio, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.portfolioRepo.ClearDefault(ctx, tx, userID); err != nil {
		return model.Portfolio{}, err
	}
	if err := s.portfolioRepo.SetDefault(ctx, tx, id, userID); err != nil {
		return model.Portfolio{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to commit default change: %w", err)
	}

	portfolio.IsDefault = true
	return portfolio, nil
}

// Delete removes an empty portfolio. Portfolios with holdings are refused,
// and so are portfolios with ledger history: trade records are immutable
// and keep referencing the portfolio forever. When the default portfolio is
// deleted the oldest remaining portfolio is promoted so the user keeps a
// default.
func (s *PortfolioService) Delete(ctx context.Context, id, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	portfolio, err := s.portfolioRepo.GetByID(ctx, tx, id, userID)
	if err != nil {
		return err
	}

	// Both guards run inside the delete transaction; a trade committing
	// after the check cannot slip its holding under the cascade.
	count, err := s.portfolioRepo.CountHoldings(ctx, tx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d holdings remain", apperrors.ErrPortfolioHasHoldings, count)
	}

	ledgerCount, err := s.portfolioRepo.CountTransactions(ctx, tx, id)
	if err != nil {
		return err
	}
	if ledgerCount > 0 {
		return fmt.Errorf("%w: %d ledger entries reference it", apperrors.ErrPortfolioHasHistory, ledgerCount)
	}

	if err := s.portfolioRepo.Delete(ctx, tx, id, userID); err != nil {
		return err
	}
	if portfolio.IsDefault {
		next, err := s.portfolioRepo.First(ctx, tx, userID)
		if err == nil {
			if err := s.portfolioRepo.SetDefault(ctx, tx, next.ID, userID); err != nil {
				return err
			}
		} else if err != apperrors.ErrPortfolioNotFound {
			return err
		}
	}
	return tx.Commit()
}

// DefaultPortfolio returns the user's default portfolio, creating one
// when the user has none. Safe to call repeatedly; concurrent callers
// contend on the partial unique index and one of them wins.
func (s *PortfolioService) DefaultPortfolio(ctx context.Context, userID string) (model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetDefault(ctx, s.db, userID)
	if err == nil {
		return portfolio, nil
	}
	if err != apperrors.ErrPortfolioNotFound {
		return model.Portfolio{}, err
	}

	// No default: promote the oldest portfolio, or create a fresh one.
	if existing, err := s.portfolioRepo.First(ctx, s.db, userID); err == nil {
		return s.SetDefault(ctx, existing.ID, userID)
	} else if err != apperrors.ErrPortfolioNotFound {
		return model.Portfolio{}, err
	}

	created, err := s.Create(ctx, userID, PortfolioInput{Name: defaultPortfolioName, IsDefault: true})
	if err != nil {
		// Lost the race to another creator: re-read.
		if p, getErr := s.portfolioRepo.GetDefault(ctx, s.db, userID); getErr == nil {
			return p, nil
		}
		return model.Portfolio{}, err
	}
	s.log.WithField("user", userID).Info("created default portfolio")
	return created, nil
}

// Summary values every portfolio the user owns plus an account-level total.
func (s *PortfolioService) Summary(ctx context.Context, userID string) (model.PortfolioSummary, error) {
	portfolios, err := s.portfolioRepo.ListByUser(ctx, userID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	summary := model.PortfolioSummary{Portfolios: make([]model.PortfolioDetail, 0, len(portfolios))}
	for _, p := range portfolios {
		detail, err := s.Detail(ctx, p.ID, userID)
		if err != nil {
			return model.PortfolioSummary{}, err
		}
		summary.Portfolios = append(summary.Portfolios, detail)
		summary.TotalValue = summary.TotalValue.Add(detail.TotalValue)
		summary.TotalCost = summary.TotalCost.Add(detail.TotalCost)
	}

	summary.TotalProfit = summary.TotalValue.Sub(summary.TotalCost)
	if summary.TotalCost.IsPositive() {
		summary.ProfitPct = summary.TotalProfit.Div(summary.TotalCost).Mul(decimal.NewFromInt(100))
	}
	return summary, nil
}

// Detail values one portfolio. Quotes are fetched concurrently; a holding
// whose quote cannot be fetched is valued at its average cost and flagged
// stale rather than failing the whole portfolio.
func (s *PortfolioService) Detail(ctx context.Context, id, userID string) (model.PortfolioDetail, error) {
	portfolio, err := s.portfolioRepo.GetByID(ctx, s.db, id, userID)
	if err != nil {
		return model.PortfolioDetail{}, err
	}

	holdings, err := s.holdingRepo.ListByPortfolio(ctx, id)
	if err != nil {
		return model.PortfolioDetail{}, err
	}

	detail := model.PortfolioDetail{
		Portfolio: portfolio,
		Holdings:  make([]model.HoldingValuation, len(holdings)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQuotes)
	var mu sync.Mutex

	for i, h := range holdings {
		g.Go(func() error {
			valuation := s.valueHolding(gctx, h)
			mu.Lock()
			detail.Holdings[i] = valuation
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.PortfolioDetail{}, err
	}

	for _, v := range detail.Holdings {
		detail.TotalValue = detail.TotalValue.Add(v.CurrentValue)
		detail.TotalCost = detail.TotalCost.Add(v.TotalCost)
	}
	detail.TotalProfit = detail.TotalValue.Sub(detail.TotalCost)
	if detail.TotalCost.IsPositive() {
		detail.ProfitPct = detail.TotalProfit.Div(detail.TotalCost).Mul(decimal.NewFromInt(100))
	}
	return detail, nil
}

func (s *PortfolioService) valueHolding(ctx context.Context, h model.Holding) model.HoldingValuation {
	quoteCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()

	price := h.AverageCost
	stale := true
	if quote, err := s.market.Quote(quoteCtx, h.Symbol); err == nil {
		price = quote.Price
		stale = false
	} else {
		s.log.WithField("symbol", h.Symbol).WithError(err).Warn("quote unavailable, valuing at cost")
	}

	v := accounting.Value(h, price)
	return model.HoldingValuation{
		Holding:      h,
		CurrentPrice: price,
		CurrentValue: v.CurrentValue,
		TotalCost:    v.CostBasis,
		Profit:       v.Profit,
		ProfitPct:    v.ProfitPct,
		Stale:        stale,
	}
}

// GetHolding returns one holding with ownership checked through its portfolio.
func (s *PortfolioService) GetHolding(ctx context.Context, holdingID, userID string) (model.Holding, error) {
	return s.holdingRepo.GetByID(ctx, s.db, holdingID, userID)
}

// HoldingInput carries the fields for manual holding adjustments.
type HoldingInput struct {
	Symbol      string
	Quantity    int64
	AverageCost decimal.Decimal
}

func (in HoldingInput) validate() error {
	if in.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", apperrors.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", apperrors.ErrInvalidInput)
	}
	if in.AverageCost.IsNegative() {
		return fmt.Errorf("%w: average cost cannot be negative", apperrors.ErrInvalidInput)
	}
	return nil
}

// AddHolding records a position outside the trade path, for importing an
// existing position from elsewhere. An existing holding for the symbol is
// blended with the same weighted-average math a buy uses. No ledger entry
// is written.
func (s *PortfolioService) AddHolding(ctx context.Context, portfolioID, userID string, in HoldingInput) (model.Holding, error) {
	if err := in.validate(); err != nil {
		return model.Holding{}, err
	}
	portfolio, err := s.portfolioRepo.GetByID(ctx, s.db, portfolioID, userID)
	if err != nil {
		return model.Holding{}, err
	}

	name := in.Symbol
	lookupCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	if info, err := s.market.Identity(lookupCtx, in.Symbol); err == nil {
		name = info.Name
	}
	cancel()

	now := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	holding, err := s.holdingRepo.Find(ctx, tx, portfolio.ID, in.Symbol)
	switch err {
	case nil:
		if err := accounting.ApplyBuy(&holding, in.Quantity, in.AverageCost); err != nil {
			return model.Holding{}, err
		}
		holding.UpdatedAt = now
		if err := s.holdingRepo.UpdatePosition(ctx, tx, &holding); err != nil {
			return model.Holding{}, err
		}
	case apperrors.ErrHoldingNotFound:
		holding = model.Holding{
			ID:          uuid.New().String(),
			PortfolioID: portfolio.ID,
			Symbol:      in.Symbol,
			Name:        name,
			Quantity:    in.Quantity,
			AverageCost: in.AverageCost,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.holdingRepo.Insert(ctx, tx, &holding); err != nil {
			return model.Holding{}, err
		}
	default:
		return model.Holding{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Holding{}, fmt.Errorf("failed to commit holding add: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user":    userID,
		"symbol":  in.Symbol,
		"holding": holding.ID,
	}).Info("holding added without trade")
	return holding, nil
}

// UpdateHolding overwrites a holding's quantity and average cost. Like
// RemoveHolding this is an administrative correction that bypasses the
// ledger.
func (s *PortfolioService) UpdateHolding(ctx context.Context, holdingID, userID string, quantity int64, averageCost decimal.Decimal) (model.Holding, error) {
	if quantity <= 0 {
		return model.Holding{}, fmt.Errorf("%w: quantity must be positive", apperrors.ErrInvalidInput)
	}
	if averageCost.IsNegative() {
		return model.Holding{}, fmt.Errorf("%w: average cost cannot be negative", apperrors.ErrInvalidInput)
	}

	holding, err := s.holdingRepo.GetByID(ctx, s.db, holdingID, userID)
	if err != nil {
		return model.Holding{}, err
	}

	holding.Quantity = quantity
	holding.AverageCost = averageCost
	holding.UpdatedAt = s.now()
	if err := s.holdingRepo.UpdatePosition(ctx, s.db, &holding); err != nil {
		return model.Holding{}, err
	}

	s.log.WithFields(logrus.Fields{
		"user":    userID,
		"symbol":  holding.Symbol,
		"holding": holdingID,
	}).Warn("holding overwritten without trade")
	return holding, nil
}

// RemoveHolding deletes a holding outright, without touching the ledger.
// This is an administrative correction; normal position exits go through
// sell trades.
func (s *PortfolioService) RemoveHolding(ctx context.Context, holdingID, userID string) error {
	holding, err := s.holdingRepo.GetByID(ctx, s.db, holdingID, userID)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"user":    userID,
		"symbol":  holding.Symbol,
		"holding": holdingID,
	}).Warn("holding removed without trade")
	return s.holdingRepo.Delete(ctx, s.db, holdingID)
}
