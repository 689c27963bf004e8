package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrTimeout            = errors.New("operation timed out")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Market-data Errors
	ErrDataUnavailable      = errors.New("market data fetch failed")
	ErrInsufficientData     = errors.New("not enough bars for indicator warm-up")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")

	// Ledger Errors
	ErrPersistence = errors.New("trade ledger write failed")

	// Notification Errors
	ErrNotification = errors.New("notification delivery failed")
)
