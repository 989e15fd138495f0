package testutil

import (
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stocktrackhq/stocktrack-backend/internal/marketdata"
	"github.com/stocktrackhq/stocktrack-backend/internal/repository"
	"github.com/stocktrackhq/stocktrack-backend/internal/service"
)

const testQuoteTimeout = time.Second

// TestSessionKey is a fixed fernet key for tests.
const TestSessionKey = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="

// NewTestLogger returns a logger that discards output.
func NewTestLogger(t *testing.T) *logrus.Logger {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func NewTestPortfolioService(t *testing.T, db *sql.DB, provider marketdata.Provider) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		db,
		repository.NewPortfolioRepository(db),
		repository.NewHoldingRepository(db),
		provider,
		testQuoteTimeout,
		NewTestLogger(t),
	)
}

func NewTestTradingService(t *testing.T, db *sql.DB, provider marketdata.Provider) *service.TradingService {
	t.Helper()

	return service.NewTradingService(
		db,
		NewTestPortfolioService(t, db, provider),
		repository.NewPortfolioRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewTransactionRepository(db),
		provider,
		testQuoteTimeout,
		NewTestLogger(t),
	)
}

func NewTestWatchlistService(t *testing.T, db *sql.DB, provider marketdata.Provider) *service.WatchlistService {
	t.Helper()

	return service.NewWatchlistService(
		db,
		repository.NewWatchlistRepository(db),
		provider,
		testQuoteTimeout,
		NewTestLogger(t),
	)
}

func NewTestAuthService(t *testing.T, db *sql.DB) *service.AuthService {
	t.Helper()

	auth, err := service.NewAuthService(
		repository.NewUserRepository(db),
		TestSessionKey,
		time.Hour,
		NewTestLogger(t),
	)
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}
	return auth
}
