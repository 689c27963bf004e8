package ports

import (
	"context"

	"cryptoSwingBot/internal/domain"
)

// MarketDataProvider defines the capability the core consumes to obtain
// candle data. Implementations wrap a concrete exchange client.
type MarketDataProvider interface {
	// FetchBars returns up to limit bars for the given instrument and
	// timeframe, ordered oldest first. It may fail with ErrDataUnavailable,
	// ErrRateLimited or ErrConnectionFailed.
	FetchBars(ctx context.Context, instrument, timeframe string, limit int) ([]domain.Bar, error)
}
