package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

// MakeID returns a fresh UUID string.
func MakeID() string {
	return uuid.New().String()
}

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	user := testutil.NewUser().WithUsername("alice").Build(t, db)
type UserBuilder struct {
	ID       string
	Username string
	Email    string
	IsActive bool
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	id := MakeID()
	return &UserBuilder{
		ID:       id,
		Username: "user_" + id[:8],
		Email:    id[:8] + "@example.com",
		IsActive: true,
	}
}

// WithUsername sets a custom username.
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.Username = username
	return b
}

// WithEmail sets a custom email.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.Email = email
	return b
}

// Inactive marks the user as deactivated.
func (b *UserBuilder) Inactive() *UserBuilder {
	b.IsActive = false
	return b
}

// Build inserts the user and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	user := model.User{
		ID:           b.ID,
		Username:     b.Username,
		Email:        b.Email,
		PasswordHash: "$2a$10$test.hash.not.a.real.one.aaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		IsActive:     b.IsActive,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO user (id, username, email, password_hash, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsActive, user.CreatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
	return user
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
type PortfolioBuilder struct {
	ID        string
	UserID    string
	Name      string
	IsDefault bool
}

// NewPortfolio creates a PortfolioBuilder owned by the given user.
func NewPortfolio(userID string) *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:     MakeID(),
		UserID: userID,
		Name:   "Test Portfolio",
	}
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// Default marks the portfolio as the user's default.
func (b *PortfolioBuilder) Default() *PortfolioBuilder {
	b.IsDefault = true
	return b
}

// Build inserts the portfolio and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	now := time.Now().UTC()
	portfolio := model.Portfolio{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		IsDefault: b.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.Exec(
		`INSERT INTO portfolio (id, user_id, name, description, is_default, created_at, updated_at) VALUES (?, ?, ?, '', ?, ?, ?)`,
		portfolio.ID, portfolio.UserID, portfolio.Name, portfolio.IsDefault, portfolio.CreatedAt, portfolio.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to insert test portfolio: %v", err)
	}
	return portfolio
}

// HoldingBuilder provides a fluent interface for creating test holdings.
type HoldingBuilder struct {
	ID          string
	PortfolioID string
	Symbol      string
	Name        string
	Quantity    int64
	AverageCost decimal.Decimal
}

// NewHolding creates a HoldingBuilder in the given portfolio.
func NewHolding(portfolioID string) *HoldingBuilder {
	return &HoldingBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Symbol:      "600000",
		Name:        "Test Stock",
		Quantity:    100,
		AverageCost: decimal.RequireFromString("10.00"),
	}
}

// WithSymbol sets a custom symbol.
func (b *HoldingBuilder) WithSymbol(symbol string) *HoldingBuilder {
	b.Symbol = symbol
	b.Name = "Test " + symbol
	return b
}

// WithPosition sets quantity and average cost.
func (b *HoldingBuilder) WithPosition(quantity int64, averageCost string) *HoldingBuilder {
	b.Quantity = quantity
	b.AverageCost = decimal.RequireFromString(averageCost)
	return b
}

// Build inserts the holding and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	now := time.Now().UTC()
	holding := model.Holding{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		Symbol:      b.Symbol,
		Name:        b.Name,
		Quantity:    b.Quantity,
		AverageCost: b.AverageCost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := db.Exec(
		`INSERT INTO holding (id, portfolio_id, symbol, name, quantity, average_cost, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		holding.ID, holding.PortfolioID, holding.Symbol, holding.Name, holding.Quantity, holding.AverageCost, holding.CreatedAt, holding.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to insert test holding: %v", err)
	}
	return holding
}

// WatchlistBuilder provides a fluent interface for creating test watchlists.
type WatchlistBuilder struct {
	ID        string
	UserID    string
	Name      string
	IsDefault bool
}

// NewWatchlist creates a WatchlistBuilder owned by the given user.
func NewWatchlist(userID string) *WatchlistBuilder {
	return &WatchlistBuilder{
		ID:     MakeID(),
		UserID: userID,
		Name:   "Test Watchlist",
	}
}

// Default marks the watchlist as the user's default.
func (b *WatchlistBuilder) Default() *WatchlistBuilder {
	b.IsDefault = true
	return b
}

// Build inserts the watchlist and returns it.
func (b *WatchlistBuilder) Build(t *testing.T, db *sql.DB) model.Watchlist {
	t.Helper()

	now := time.Now().UTC()
	watchlist := model.Watchlist{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		IsDefault: b.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := db.Exec(
		`INSERT INTO watchlist (id, user_id, name, description, is_default, created_at, updated_at) VALUES (?, ?, ?, '', ?, ?, ?)`,
		watchlist.ID, watchlist.UserID, watchlist.Name, watchlist.IsDefault, watchlist.CreatedAt, watchlist.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to insert test watchlist: %v", err)
	}
	return watchlist
}
