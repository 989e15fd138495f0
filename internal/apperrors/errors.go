// Package apperrors defines the sentinel errors shared across repository,
// service and handler layers. Handlers match these with errors.Is to pick
// HTTP status codes; messages double as user-facing text.
package apperrors

import "errors"

// Entity errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that no user matches the given ID or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrPortfolioNotFound indicates that a portfolio with the given ID does
	// not exist or is not owned by the requesting user.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrHoldingNotFound indicates that the portfolio has no open holding
	// for the given symbol.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID
	// does not exist or is not owned by the requesting user.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrWatchlistNotFound indicates that a watchlist with the given ID does
	// not exist or is not owned by the requesting user.
	ErrWatchlistNotFound = errors.New("watchlist not found")

	// ErrWatchlistEntryNotFound indicates that the watchlist does not contain
	// the given symbol.
	ErrWatchlistEntryNotFound = errors.New("watchlist entry not found")
)

// Business rule errors indicate that an operation violates a constraint.
var (
	// ErrInvalidInput indicates a non-positive quantity or price on a trade,
	// or another malformed field. The operation is never attempted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientQuantity indicates that a sell asks for more units than
	// the holding carries. The holding and ledger are left untouched.
	ErrInsufficientQuantity = errors.New("insufficient quantity for sale")

	// ErrPortfolioHasHoldings indicates that a portfolio cannot be deleted
	// while it still contains holdings. Deletion is rejected, not cascaded.
	ErrPortfolioHasHoldings = errors.New("portfolio has holdings and cannot be deleted")

	// ErrPortfolioHasHistory indicates that a portfolio cannot be deleted
	// while ledger entries still reference it. The ledger is immutable, so
	// the history can never be cleared to make room for the delete.
	ErrPortfolioHasHistory = errors.New("portfolio has transaction history and cannot be deleted")

	// ErrUsernameTaken indicates a registration with an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken indicates a registration with an existing email address.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials indicates a failed login. The message never
	// reveals whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidSession indicates a missing, malformed or expired session token.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// Collaborator errors indicate that an external dependency failed.
var (
	// ErrQuoteUnavailable indicates that the quote provider failed or timed
	// out. Valuation reads recover via the average-cost fallback; trades are
	// never blocked by it because trade prices are caller-supplied.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrSymbolNotFound indicates that the provider knows nothing about the
	// given instrument code.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrAIUnavailable indicates that no AI client is configured or the
	// upstream model request failed.
	ErrAIUnavailable = errors.New("ai service unavailable")
)
