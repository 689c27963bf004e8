package risk

import (
	"fmt"
	"math"
)

// Config holds configuration for risk management. The zero value is invalid;
// DefaultConfig supplies the policy defaults callers may override.
type Config struct {
	ATRMultiplier float64 // Trailing stop distance in ATRs
	StopFloorPct  float64 // Max stop distance below entry (0.01 = 1%)
	TakeProfitPct float64 // Fixed profit target above entry (0.015 = 1.5%)
}

// DefaultConfig returns the standard risk policy.
func DefaultConfig() Config {
	return Config{
		ATRMultiplier: 1.2,
		StopFloorPct:  0.01,
		TakeProfitPct: 0.015,
	}
}

// Manager computes stop-loss and take-profit levels for a prospective
// long position.
type Manager struct {
	cfg Config
}

// NewManager creates a new risk manager instance.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.ATRMultiplier <= 0 {
		return nil, fmt.Errorf("ATR multiplier must be positive")
	}
	if cfg.StopFloorPct <= 0 || cfg.StopFloorPct >= 1 {
		return nil, fmt.Errorf("stop floor must be between 0 and 1")
	}
	if cfg.TakeProfitPct <= 0 {
		return nil, fmt.Errorf("take profit percent must be positive")
	}
	return &Manager{cfg: cfg}, nil
}

// TrailingStop computes the stop level for the current price and volatility.
// The stop trails the price by ATRMultiplier ATRs but never drops below
// StopFloorPct under the entry price, regardless of ATR.
func (m *Manager) TrailingStop(currentPrice, entryPrice, atr float64) float64 {
	stop := currentPrice - atr*m.cfg.ATRMultiplier
	floor := entryPrice * (1 - m.cfg.StopFloorPct)
	return math.Max(stop, floor)
}

// TakeProfit computes the fixed profit target for a position entered at
// entryPrice.
func (m *Manager) TakeProfit(entryPrice float64) float64 {
	return entryPrice * (1 + m.cfg.TakeProfitPct)
}
