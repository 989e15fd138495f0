package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/stocktrackhq/stocktrack-backend/internal/repository"
)

// QuoteCache is the refreshable side of a quote provider. The refresher
// re-primes it in the background so interactive requests mostly hit warm
// entries.
type QuoteCache interface {
	RefreshQuotes(symbols []string)
}

// QuoteRefresher periodically re-primes the quote cache for every symbol
// that appears in a holding or a watchlist.
type QuoteRefresher struct {
	cache       QuoteCache
	holdingRepo *repository.HoldingRepository
	cron        *cron.Cron
	spec        string
	log         *logrus.Entry
}

// NewQuoteRefresher creates a new QuoteRefresher. Spec is a cron expression
// such as "@every 5m".
func NewQuoteRefresher(cache QuoteCache, holdingRepo *repository.HoldingRepository, spec string, log *logrus.Logger) *QuoteRefresher {
	return &QuoteRefresher{
		cache:       cache,
		holdingRepo: holdingRepo,
		cron:        cron.New(),
		spec:        spec,
		log:         log.WithField("component", "quote-refresher"),
	}
}

// Start schedules the refresh job and runs one refresh immediately.
func (r *QuoteRefresher) Start() error {
	if _, err := r.cron.AddFunc(r.spec, r.refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", r.spec, err)
	}
	r.cron.Start()
	go r.refresh()
	r.log.WithField("schedule", r.spec).Info("quote refresh scheduled")
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *QuoteRefresher) Stop() {
	ctx := r.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		r.log.Warn("quote refresh did not stop in time")
	}
}

func (r *QuoteRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	symbols, err := r.holdingRepo.ActiveSymbols(ctx)
	if err != nil {
		r.log.WithError(err).Warn("failed to collect active symbols")
		return
	}
	if len(symbols) == 0 {
		return
	}
	r.cache.RefreshQuotes(symbols)
	r.log.WithField("symbols", len(symbols)).Debug("quote cache refreshed")
}
