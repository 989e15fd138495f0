package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/marketdata"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
	"github.com/stocktrackhq/stocktrack-backend/internal/repository"
)

const defaultWatchlistName = "My Watchlist"

// WatchlistService manages watchlists and their entries, and decorates
// entries with live quotes when asked.
type WatchlistService struct {
	db            *sql.DB
	watchlistRepo *repository.WatchlistRepository
	market        marketdata.Provider
	quoteTimeout  time.Duration
	log           *logrus.Entry
	now           func() time.Time
}

// NewWatchlistService creates a new WatchlistService with the provided dependencies.
func NewWatchlistService(
	db *sql.DB,
	watchlistRepo *repository.WatchlistRepository,
	market marketdata.Provider,
	quoteTimeout time.Duration,
	log *logrus.Logger,
) *WatchlistService {
	return &WatchlistService{
		db:            db,
		watchlistRepo: watchlistRepo,
		market:        market,
		quoteTimeout:  quoteTimeout,
		log:           log.WithField("component", "watchlist-service"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// List returns all of the user's watchlists, default first.
func (s *WatchlistService) List(ctx context.Context, userID string) ([]model.Watchlist, error) {
	return s.watchlistRepo.ListByUser(ctx, userID)
}

// WatchlistInput carries watchlist create/update fields.
type WatchlistInput struct {
	Name        string
	Description string
	IsDefault   bool
}

// Create adds a watchlist. Marking it default demotes the previous default
// in the same transaction.
func (s *WatchlistService) Create(ctx context.Context, userID string, in WatchlistInput) (model.Watchlist, error) {
	if in.Name == "" {
		return model.Watchlist{}, fmt.Errorf("%w: watchlist name is required", apperrors.ErrInvalidInput)
	}

	now := s.now()
	watchlist := model.Watchlist{
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
		return model.Watchlist{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if in.IsDefault {
		if err := s.watchlistRepo.ClearDefault(ctx, tx, userID); err != nil {
			return model.Watchlist{}, err
		}
	}
	if err := s.watchlistRepo.Insert(ctx, tx, &watchlist); err != nil {
		return model.Watchlist{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Watchlist{}, fmt.Errorf("failed to commit watchlist create: %w", err)
	}
	return watchlist, nil
}

// Update renames or re-describes a watchlist, and can promote it to default.
func (s *WatchlistService) Update(ctx context.Context, id, userID string, in WatchlistInput) (model.Watchlist, error) {
	if in.Name == "" {
		return model.Watchlist{}, fmt.Errorf("%w: watchlist name is required", apperrors.ErrInvalidInput)
	}
	watchlist, err := s.watchlistRepo.GetByID(ctx, s.db, id, userID)
	if err != nil {
		return model.Watchlist{}, err
	}
	watchlist.Name = in.Name
	watchlist.Description = in.Description
	watchlist.UpdatedAt = s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Watchlist{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if in.IsDefault && !watchlist.IsDefault {
		if err := s.watchlistRepo.ClearDefault(ctx, tx, userID); err != nil {
			return model.Watchlist{}, err
		}
		watchlist.IsDefault = true
	}
	if err := s.watchlistRepo.Update(ctx, tx, &watchlist); err != nil {
		return model.Watchlist{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Watchlist{}, fmt.Errorf("failed to commit watchlist update: %w", err)
	}
	return watchlist, nil
}

// Delete removes a watchlist and its entries. When the default is deleted
// the oldest remaining watchlist is promoted.
func (s *WatchlistService) Delete(ctx context.Context, id, userID string) error {
	watchlist, err := s.watchlistRepo.GetByID(ctx, s.db, id, userID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.watchlistRepo.Delete(ctx, tx, id, userID); err != nil {
		return err
	}
	if watchlist.IsDefault {
		next, err := s.watchlistRepo.First(ctx, tx, userID)
		if err == nil {
			next.IsDefault = true
			next.UpdatedAt = s.now()
			if err := s.watchlistRepo.Update(ctx, tx, &next); err != nil {
				return err
			}
		} else if err != apperrors.ErrWatchlistNotFound {
			return err
		}
	}
	return tx.Commit()
}

// DefaultWatchlist returns the user's default watchlist, creating one when
// the user has none.
func (s *WatchlistService) DefaultWatchlist(ctx context.Context, userID string) (model.Watchlist, error) {
	watchlist, err := s.watchlistRepo.GetDefault(ctx, s.db, userID)
	if err == nil {
		return watchlist, nil
	}
	if err != apperrors.ErrWatchlistNotFound {
		return model.Watchlist{}, err
	}

	if existing, err := s.watchlistRepo.First(ctx, s.db, userID); err == nil {
		existing.IsDefault = true
		existing.UpdatedAt = s.now()
		if err := s.watchlistRepo.Update(ctx, s.db, &existing); err != nil {
			return model.Watchlist{}, err
		}
		return existing, nil
	} else if err != apperrors.ErrWatchlistNotFound {
		return model.Watchlist{}, err
	}

	created, err := s.Create(ctx, userID, WatchlistInput{Name: defaultWatchlistName, IsDefault: true})
	if err != nil {
		if w, getErr := s.watchlistRepo.GetDefault(ctx, s.db, userID); getErr == nil {
			return w, nil
		}
		return model.Watchlist{}, err
	}
	s.log.WithField("user", userID).Info("created default watchlist")
	return created, nil
}

// AddSymbol adds a symbol to a watchlist. Adding a symbol that is already
// present returns the existing entry unchanged. An empty watchlist ID
// targets the default watchlist.
func (s *WatchlistService) AddSymbol(ctx context.Context, watchlistID, userID, symbol, notes string) (model.WatchlistEntry, error) {
	if symbol == "" {
		return model.WatchlistEntry{}, fmt.Errorf("%w: symbol is required", apperrors.ErrInvalidInput)
	}

	var watchlist model.Watchlist
	var err error
	if watchlistID == "" {
		watchlist, err = s.DefaultWatchlist(ctx, userID)
	} else {
		watchlist, err = s.watchlistRepo.GetByID(ctx, s.db, watchlistID, userID)
	}
	if err != nil {
		return model.WatchlistEntry{}, err
	}

	if existing, err := s.watchlistRepo.FindEntry(ctx, watchlist.ID, symbol); err == nil {
		return existing, nil
	} else if err != apperrors.ErrWatchlistEntryNotFound {
		return model.WatchlistEntry{}, err
	}

	name := symbol
	infoCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()
	if info, err := s.market.Identity(infoCtx, symbol); err == nil {
		name = info.Name
	}

	entry := model.WatchlistEntry{
		ID:          uuid.New().String(),
		WatchlistID: watchlist.ID,
		Symbol:      symbol,
		Name:        name,
		Notes:       notes,
		CreatedAt:   s.now(),
	}
	if err := s.watchlistRepo.InsertEntry(ctx, &entry); err != nil {
		return model.WatchlistEntry{}, err
	}

	s.log.WithFields(logrus.Fields{"user": userID, "symbol": symbol}).Info("symbol added to watchlist")
	return entry, nil
}

// RemoveSymbol drops a symbol from a watchlist.
func (s *WatchlistService) RemoveSymbol(ctx context.Context, watchlistID, userID, symbol string) error {
	watchlist, err := s.watchlistRepo.GetByID(ctx, s.db, watchlistID, userID)
	if err != nil {
		return err
	}
	return s.watchlistRepo.DeleteEntry(ctx, watchlist.ID, symbol)
}

// Detail returns a watchlist with its entries decorated by live quotes.
// Entries whose quote cannot be fetched carry a nil quote; the rest of the
// watchlist still renders.
func (s *WatchlistService) Detail(ctx context.Context, id, userID string) (model.WatchlistDetail, error) {
	var watchlist model.Watchlist
	var err error
	if id == "" {
		watchlist, err = s.DefaultWatchlist(ctx, userID)
	} else {
		watchlist, err = s.watchlistRepo.GetByID(ctx, s.db, id, userID)
	}
	if err != nil {
		return model.WatchlistDetail{}, err
	}

	entries, err := s.watchlistRepo.ListEntries(ctx, watchlist.ID)
	if err != nil {
		return model.WatchlistDetail{}, err
	}

	detail := model.WatchlistDetail{
		Watchlist: watchlist,
		Entries:   make([]model.WatchlistQuote, len(entries)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQuotes)
	var mu sync.Mutex

	for i, entry := range entries {
		g.Go(func() error {
			decorated := model.WatchlistQuote{WatchlistEntry: entry}
			quoteCtx, cancel := context.WithTimeout(gctx, s.quoteTimeout)
			defer cancel()
			if quote, err := s.market.Quote(quoteCtx, entry.Symbol); err == nil {
				decorated.Quote = &quote
			} else {
				s.log.WithField("symbol", entry.Symbol).WithError(err).Warn("quote unavailable for watchlist entry")
			}
			mu.Lock()
			detail.Entries[i] = decorated
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.WatchlistDetail{}, err
	}
	return detail, nil
}
