package domain

import "time"

// Bar represents a single OHLCV candle for an instrument.
// Bars arrive from the market-data provider as an ordered sequence,
// oldest first, and are never mutated by the core.
type Bar struct {
	OpenTime time.Time // Start time of the interval
	Open     float64   // Opening price
	High     float64   // Highest price
	Low      float64   // Lowest price
	Close    float64   // Closing price
	Volume   float64   // Trading volume
}
