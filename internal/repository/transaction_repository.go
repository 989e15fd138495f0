package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

// TransactionRepository provides data access methods for the transaction
// table. The table is append-only: there are no update or delete methods,
// matching the ledger's immutability.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = "id, user_id, portfolio_id, symbol, name, type, quantity, price, total_amount, commission, tax, notes, executed_at, created_at"

// Insert appends one ledger entry. Called inside the trade transaction.
func (r *TransactionRepository) Insert(ctx context.Context, q DBTX, t *model.Transaction) error {
	query := `
		INSERT INTO "transaction"
			(id, user_id, portfolio_id, symbol, name, type, quantity, price, total_amount, commission, tax, notes, executed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		t.ID, t.UserID, t.PortfolioID, t.Symbol, t.Name, t.Type,
		t.Quantity, t.Price, t.TotalAmount, t.Commission, t.Tax,
		t.Notes, t.ExecutedAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// TransactionFilter narrows ledger queries.
type TransactionFilter struct {
	PortfolioID string
	Symbol      string
	Since       time.Time
	Limit       int
}

// ListByUser retrieves a user's ledger entries newest first, optionally
// filtered by portfolio, symbol and start time.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, filter TransactionFilter) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE user_id = ?
	`
	args := []any{userID}

	if filter.PortfolioID != "" {
		query += " AND portfolio_id = ?"
		args = append(args, filter.PortfolioID)
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if !filter.Since.IsZero() {
		query += " AND executed_at >= ?"
		args = append(args, filter.Since)
	}

	query += " ORDER BY executed_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.PortfolioID, &t.Symbol, &t.Name, &t.Type,
			&t.Quantity, &t.Price, &t.TotalAmount, &t.Commission, &t.Tax,
			&t.Notes, &t.ExecutedAt, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}
	return transactions, nil
}

// GetByID retrieves one ledger entry owned by userID.
func (r *TransactionRepository) GetByID(ctx context.Context, id, userID string) (model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = ? AND user_id = ?`

	var t model.Transaction
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&t.ID, &t.UserID, &t.PortfolioID, &t.Symbol, &t.Name, &t.Type,
		&t.Quantity, &t.Price, &t.TotalAmount, &t.Commission, &t.Tax,
		&t.Notes, &t.ExecutedAt, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to query transaction: %w", err)
	}
	return t, nil
}
