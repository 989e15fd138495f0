package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// The in-memory database lives in a single connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE user (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(120) NOT NULL UNIQUE,
			password_hash VARCHAR(256) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME
		);

		CREATE TABLE portfolio (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES user(id) ON DELETE CASCADE
		);

		CREATE UNIQUE INDEX idx_portfolio_one_default
			ON portfolio(user_id) WHERE is_default = TRUE;

		CREATE TABLE holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			portfolio_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			name VARCHAR(100) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			average_cost TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE,
			CONSTRAINT unique_holding_symbol UNIQUE (portfolio_id, symbol)
		);

		CREATE TABLE "transaction" (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			portfolio_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			name VARCHAR(100) NOT NULL,
			type VARCHAR(10) NOT NULL CHECK (type IN ('buy', 'sell')),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			price TEXT NOT NULL,
			total_amount TEXT NOT NULL,
			commission TEXT NOT NULL DEFAULT '0',
			tax TEXT NOT NULL DEFAULT '0',
			notes TEXT NOT NULL DEFAULT '',
			executed_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES user(id) ON DELETE CASCADE,
			FOREIGN KEY(portfolio_id) REFERENCES portfolio(id)
		);

		CREATE INDEX idx_transaction_user_executed
			ON "transaction"(user_id, executed_at DESC);

		CREATE TABLE watchlist (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES user(id) ON DELETE CASCADE
		);

		CREATE UNIQUE INDEX idx_watchlist_one_default
			ON watchlist(user_id) WHERE is_default = TRUE;

		CREATE TABLE watchlist_entry (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			watchlist_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			name VARCHAR(100) NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(watchlist_id) REFERENCES watchlist(id) ON DELETE CASCADE,
			CONSTRAINT unique_watchlist_symbol UNIQUE (watchlist_id, symbol)
		);
	`
	_, err := db.Exec(schema)
	return err
}
