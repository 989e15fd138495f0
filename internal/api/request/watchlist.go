package request

// WatchlistRequest represents a watchlist create or update request body.
type WatchlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
}

// WatchlistEntryRequest represents an add-symbol request body.
type WatchlistEntryRequest struct {
	Symbol string `json:"symbol"`
	Notes  string `json:"notes"`
}
