package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
// Ownership is enforced in SQL: every lookup filters on user_id, so a
// foreign portfolio is indistinguishable from a missing one.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

const portfolioColumns = "id, user_id, name, description, is_default, created_at, updated_at"

func scanPortfolio(row *sql.Row) (model.Portfolio, error) {
	var p model.Portfolio
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio row: %w", err)
	}
	return p, nil
}

// ListByUser retrieves all portfolios owned by a user, default first.
func (r *PortfolioRepository) ListByUser(ctx context.Context, userID string) ([]model.Portfolio, error) {
	query := `
		SELECT ` + portfolioColumns + `
		FROM portfolio
		WHERE user_id = ?
		ORDER BY is_default DESC, created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		var p model.Portfolio
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}
		portfolios = append(portfolios, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}
	return portfolios, nil
}

// GetByID retrieves a portfolio owned by userID.
func (r *PortfolioRepository) GetByID(ctx context.Context, q DBTX, id, userID string) (model.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolio WHERE id = ? AND user_id = ?`
	return scanPortfolio(q.QueryRowContext(ctx, query, id, userID))
}

// GetDefault retrieves the portfolio flagged default for a user.
func (r *PortfolioRepository) GetDefault(ctx context.Context, q DBTX, userID string) (model.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolio WHERE user_id = ? AND is_default = TRUE`
	return scanPortfolio(q.QueryRowContext(ctx, query, userID))
}

// First retrieves the oldest portfolio of a user, used when promoting a
// replacement default.
func (r *PortfolioRepository) First(ctx context.Context, q DBTX, userID string) (model.Portfolio, error) {
	query := `
		SELECT ` + portfolioColumns + `
		FROM portfolio
		WHERE user_id = ?
		ORDER BY created_at ASC
		LIMIT 1
	`
	return scanPortfolio(q.QueryRowContext(ctx, query, userID))
}

// Insert stores a new portfolio.
func (r *PortfolioRepository) Insert(ctx context.Context, q DBTX, p *model.Portfolio) error {
	query := `
		INSERT INTO portfolio (id, user_id, name, description, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, p.ID, p.UserID, p.Name, p.Description, p.IsDefault, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// Update rewrites name, description, default flag and updated_at.
func (r *PortfolioRepository) Update(ctx context.Context, q DBTX, p *model.Portfolio) error {
	query := `
		UPDATE portfolio
		SET name = ?, description = ?, is_default = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := q.ExecContext(ctx, query, p.Name, p.Description, p.IsDefault, p.UpdatedAt, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

// ClearDefault removes the default flag from all portfolios of a user.
// Runs inside the same transaction as the subsequent set, keeping the
// one-default invariant across the unit of work.
func (r *PortfolioRepository) ClearDefault(ctx context.Context, q DBTX, userID string) error {
	_, err := q.ExecContext(ctx, `UPDATE portfolio SET is_default = FALSE WHERE user_id = ? AND is_default = TRUE`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear default portfolio: %w", err)
	}
	return nil
}

// SetDefault flags one portfolio as the user's default.
func (r *PortfolioRepository) SetDefault(ctx context.Context, q DBTX, id, userID string) error {
	_, err := q.ExecContext(ctx, `UPDATE portfolio SET is_default = TRUE WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set default portfolio: %w", err)
	}
	return nil
}

// Delete removes a portfolio row.
func (r *PortfolioRepository) Delete(ctx context.Context, q DBTX, id, userID string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM portfolio WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

// CountHoldings returns the number of holdings in a portfolio. Deletion is
// rejected while this is non-zero.
func (r *PortfolioRepository) CountHoldings(ctx context.Context, q DBTX, portfolioID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM holding WHERE portfolio_id = ?`, portfolioID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}
	return n, nil
}

// CountTransactions returns how many ledger entries reference a portfolio.
// Deletion is rejected while this is non-zero, because ledger entries are
// never deleted.
func (r *PortfolioRepository) CountTransactions(ctx context.Context, q DBTX, portfolioID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM "transaction" WHERE portfolio_id = ?`, portfolioID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}
