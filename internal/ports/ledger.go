package ports

import (
	"context"

	"cryptoSwingBot/internal/domain"
)

// TradeLedger defines the interface for the append-only trade record store.
// The ledger is owned by a single writer; the only core read path is the
// daily digest, which consumes the most recent records.
type TradeLedger interface {
	// Append persists a completed trade and returns its store-assigned ID.
	// IDs are strictly increasing by insertion order.
	Append(ctx context.Context, trade *domain.Trade) (int64, error)
	// Recent retrieves the most recent trades, newest first, up to a limit.
	Recent(ctx context.Context, limit int) ([]*domain.Trade, error)
}
