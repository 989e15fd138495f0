package model

import "time"

// Watchlist is a named list of tickers a user keeps an eye on.
// Like portfolios, at most one watchlist per user is flagged default.
type Watchlist struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WatchlistEntry is one ticker on a watchlist. A symbol appears at most
// once per watchlist.
type WatchlistEntry struct {
	ID          string    `json:"id"`
	WatchlistID string    `json:"watchlistId"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WatchlistDetail is a watchlist with its entries decorated with quotes.
type WatchlistDetail struct {
	Watchlist
	Entries []WatchlistQuote `json:"entries"`
}

// WatchlistQuote pairs an entry with its live quote. Quote is nil when the
// provider could not supply one; the entry still renders with identity only.
type WatchlistQuote struct {
	WatchlistEntry
	Quote *Quote `json:"quote,omitempty"`
}
