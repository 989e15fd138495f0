package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

// WatchlistRepository provides data access methods for the watchlist and
// watchlist_entry tables.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new WatchlistRepository with the provided database connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

const watchlistColumns = "id, user_id, name, description, is_default, created_at, updated_at"

func scanWatchlist(row *sql.Row) (model.Watchlist, error) {
	var w model.Watchlist
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Watchlist{}, apperrors.ErrWatchlistNotFound
	}
	if err != nil {
		return model.Watchlist{}, fmt.Errorf("failed to scan watchlist row: %w", err)
	}
	return w, nil
}

// ListByUser retrieves all watchlists owned by a user, default first.
func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]model.Watchlist, error) {
	query := `
		SELECT ` + watchlistColumns + `
		FROM watchlist
		WHERE user_id = ?
		ORDER BY is_default DESC, created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist table: %w", err)
	}
	defer rows.Close()

	watchlists := []model.Watchlist{}
	for rows.Next() {
		var w model.Watchlist
		err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist table results: %w", err)
		}
		watchlists = append(watchlists, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist table: %w", err)
	}
	return watchlists, nil
}

// GetByID retrieves a watchlist owned by userID.
func (r *WatchlistRepository) GetByID(ctx context.Context, q DBTX, id, userID string) (model.Watchlist, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist WHERE id = ? AND user_id = ?`
	return scanWatchlist(q.QueryRowContext(ctx, query, id, userID))
}

// GetDefault retrieves the watchlist flagged default for a user.
func (r *WatchlistRepository) GetDefault(ctx context.Context, q DBTX, userID string) (model.Watchlist, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist WHERE user_id = ? AND is_default = TRUE`
	return scanWatchlist(q.QueryRowContext(ctx, query, userID))
}

// First retrieves the oldest watchlist of a user.
func (r *WatchlistRepository) First(ctx context.Context, q DBTX, userID string) (model.Watchlist, error) {
	query := `
		SELECT ` + watchlistColumns + `
		FROM watchlist
		WHERE user_id = ?
		ORDER BY created_at ASC
		LIMIT 1
	`
	return scanWatchlist(q.QueryRowContext(ctx, query, userID))
}

// Insert stores a new watchlist.
func (r *WatchlistRepository) Insert(ctx context.Context, q DBTX, w *model.Watchlist) error {
	query := `
		INSERT INTO watchlist (id, user_id, name, description, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, w.ID, w.UserID, w.Name, w.Description, w.IsDefault, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert watchlist: %w", err)
	}
	return nil
}

// Update rewrites name, description, default flag and updated_at.
func (r *WatchlistRepository) Update(ctx context.Context, q DBTX, w *model.Watchlist) error {
	query := `
		UPDATE watchlist
		SET name = ?, description = ?, is_default = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := q.ExecContext(ctx, query, w.Name, w.Description, w.IsDefault, w.UpdatedAt, w.ID, w.UserID)
	if err != nil {
		return fmt.Errorf("failed to update watchlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrWatchlistNotFound
	}
	return nil
}

// ClearDefault removes the default flag from all watchlists of a user.
func (r *WatchlistRepository) ClearDefault(ctx context.Context, q DBTX, userID string) error {
	_, err := q.ExecContext(ctx, `UPDATE watchlist SET is_default = FALSE WHERE user_id = ? AND is_default = TRUE`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear default watchlist: %w", err)
	}
	return nil
}

// Delete removes a watchlist; its entries cascade.
func (r *WatchlistRepository) Delete(ctx context.Context, q DBTX, id, userID string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM watchlist WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrWatchlistNotFound
	}
	return nil
}

// ListEntries retrieves the entries of a watchlist, oldest first.
func (r *WatchlistRepository) ListEntries(ctx context.Context, watchlistID string) ([]model.WatchlistEntry, error) {
	query := `
		SELECT id, watchlist_id, symbol, name, notes, created_at
		FROM watchlist_entry
		WHERE watchlist_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, watchlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist_entry table: %w", err)
	}
	defer rows.Close()

	entries := []model.WatchlistEntry{}
	for rows.Next() {
		var e model.WatchlistEntry
		err := rows.Scan(&e.ID, &e.WatchlistID, &e.Symbol, &e.Name, &e.Notes, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist_entry table results: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist_entry table: %w", err)
	}
	return entries, nil
}

// FindEntry retrieves one entry by watchlist and symbol.
func (r *WatchlistRepository) FindEntry(ctx context.Context, watchlistID, symbol string) (model.WatchlistEntry, error) {
	query := `
		SELECT id, watchlist_id, symbol, name, notes, created_at
		FROM watchlist_entry
		WHERE watchlist_id = ? AND symbol = ?
	`
	var e model.WatchlistEntry
	err := r.db.QueryRowContext(ctx, query, watchlistID, symbol).Scan(
		&e.ID, &e.WatchlistID, &e.Symbol, &e.Name, &e.Notes, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return model.WatchlistEntry{}, apperrors.ErrWatchlistEntryNotFound
	}
	if err != nil {
		return model.WatchlistEntry{}, fmt.Errorf("failed to query watchlist entry: %w", err)
	}
	return e, nil
}

// InsertEntry stores a new watchlist entry.
func (r *WatchlistRepository) InsertEntry(ctx context.Context, e *model.WatchlistEntry) error {
	query := `
		INSERT INTO watchlist_entry (id, watchlist_id, symbol, name, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.WatchlistID, e.Symbol, e.Name, e.Notes, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert watchlist entry: %w", err)
	}
	return nil
}

// DeleteEntry removes a symbol from a watchlist.
func (r *WatchlistRepository) DeleteEntry(ctx context.Context, watchlistID, symbol string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlist_entry WHERE watchlist_id = ? AND symbol = ?`, watchlistID, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrWatchlistEntryNotFound
	}
	return nil
}
