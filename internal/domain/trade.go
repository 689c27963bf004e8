package domain

import "time"

// Trade represents a completed, simulated trade. Records are created exactly
// once per trade outcome and are immutable after being appended to the ledger.
type Trade struct {
	ID         int64     // Ledger-assigned identifier, strictly increasing
	Pair       string    // Trading pair (e.g. "BTC/USDT")
	EntryPrice float64   // Price at which the position was entered
	ExitPrice  float64   // Price at which the position was exited
	Profit     float64   // Absolute profit in quote currency
	ReturnPct  float64   // Leveraged percentage return
	EntryTime  time.Time // Timestamp when the position was entered
	ExitTime   time.Time // Timestamp when the position was exited, never before EntryTime
}
