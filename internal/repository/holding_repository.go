package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
// Holdings only mutate inside trade transactions, so every write accepts
// a DBTX.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

const holdingColumns = "id, portfolio_id, symbol, name, quantity, average_cost, created_at, updated_at"

// ListByPortfolio retrieves all holdings in a portfolio, ordered by symbol.
func (r *HoldingRepository) ListByPortfolio(ctx context.Context, portfolioID string) ([]model.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holding
		WHERE portfolio_id = ?
		ORDER BY symbol ASC
	`
	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		err := rows.Scan(&h.ID, &h.PortfolioID, &h.Symbol, &h.Name, &h.Quantity, &h.AverageCost, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}
	return holdings, nil
}

// Find retrieves the holding for one symbol in one portfolio.
func (r *HoldingRepository) Find(ctx context.Context, q DBTX, portfolioID, symbol string) (model.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding WHERE portfolio_id = ? AND symbol = ?`

	var h model.Holding
	err := q.QueryRowContext(ctx, query, portfolioID, symbol).Scan(
		&h.ID, &h.PortfolioID, &h.Symbol, &h.Name, &h.Quantity, &h.AverageCost, &h.CreatedAt, &h.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to query holding: %w", err)
	}
	return h, nil
}

// GetByID retrieves a holding joined against its owning portfolio so the
// user's ownership is checked in the same query.
func (r *HoldingRepository) GetByID(ctx context.Context, q DBTX, id, userID string) (model.Holding, error) {
	query := `
		SELECT h.id, h.portfolio_id, h.symbol, h.name, h.quantity, h.average_cost, h.created_at, h.updated_at
		FROM holding h
		JOIN portfolio p ON p.id = h.portfolio_id
		WHERE h.id = ? AND p.user_id = ?
	`
	var h model.Holding
	err := q.QueryRowContext(ctx, query, id, userID).Scan(
		&h.ID, &h.PortfolioID, &h.Symbol, &h.Name, &h.Quantity, &h.AverageCost, &h.CreatedAt, &h.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to query holding: %w", err)
	}
	return h, nil
}

// Insert stores a new holding.
func (r *HoldingRepository) Insert(ctx context.Context, q DBTX, h *model.Holding) error {
	query := `
		INSERT INTO holding (id, portfolio_id, symbol, name, quantity, average_cost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, h.ID, h.PortfolioID, h.Symbol, h.Name, h.Quantity, h.AverageCost, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// UpdatePosition rewrites quantity and average cost after a buy.
func (r *HoldingRepository) UpdatePosition(ctx context.Context, q DBTX, h *model.Holding) error {
	query := `
		UPDATE holding
		SET quantity = ?, average_cost = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := q.ExecContext(ctx, query, h.Quantity, h.AverageCost, h.UpdatedAt, h.ID)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return nil
}

// DecrementQuantity atomically subtracts qty from a holding, guarded by a
// sufficiency condition in the UPDATE itself. Two concurrent sells cannot
// both pass the check and over-sell: the second one matches zero rows and
// gets ErrInsufficientQuantity. Returns the remaining quantity.
func (r *HoldingRepository) DecrementQuantity(ctx context.Context, q DBTX, id string, qty int64, at time.Time) (int64, error) {
	query := `
		UPDATE holding
		SET quantity = quantity - ?, updated_at = ?
		WHERE id = ? AND quantity >= ?
	`
	res, err := q.ExecContext(ctx, query, qty, at, id, qty)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement holding quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read decrement result: %w", err)
	}
	if affected == 0 {
		return 0, apperrors.ErrInsufficientQuantity
	}

	var remaining int64
	if err := q.QueryRowContext(ctx, `SELECT quantity FROM holding WHERE id = ?`, id).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("failed to read remaining quantity: %w", err)
	}
	return remaining, nil
}

// Delete removes a holding row.
func (r *HoldingRepository) Delete(ctx context.Context, q DBTX, id string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM holding WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// DeleteIfEmpty removes a holding only when its quantity has reached zero.
// Keeps the "holding exists iff quantity > 0" invariant inside the trade
// transaction without a read-modify-write cycle.
func (r *HoldingRepository) DeleteIfEmpty(ctx context.Context, q DBTX, id string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM holding WHERE id = ? AND quantity = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete empty holding: %w", err)
	}
	return nil
}

// ActiveSymbols returns the distinct symbols currently held or watched by
// anyone, for the background quote refresh.
func (r *HoldingRepository) ActiveSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT symbol FROM holding
		UNION
		SELECT symbol FROM watchlist_entry
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan active symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active symbols: %w", err)
	}
	return symbols, nil
}
