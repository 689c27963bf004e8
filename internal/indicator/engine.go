package indicator

import (
	"fmt"
	"math"

	"cryptoSwingBot/internal/domain"
)

// Config holds the indicator windows.
type Config struct {
	FastPeriod int // Fast EMA window over closing prices, e.g. 20
	SlowPeriod int // Slow EMA window over closing prices, e.g. 50
	ATRPeriod  int // Average true range window, e.g. 14
}

// Snapshot holds the derived values for one bar. A value is NaN when the
// bar falls inside that indicator's warm-up window; NaN values must not be
// used for decisions.
type Snapshot struct {
	EMAFast float64
	EMASlow float64
	ATR     float64
	OBV     float64
}

// Defined reports whether the EMA pair of this snapshot is usable.
func (s Snapshot) Defined() bool {
	return !math.IsNaN(s.EMAFast) && !math.IsNaN(s.EMASlow)
}

// Engine derives technical indicators from a bar series. It is a pure
// function of its input and keeps no state between calls.
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine instance.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.FastPeriod <= 0 || cfg.SlowPeriod <= 0 || cfg.ATRPeriod <= 0 {
		return nil, fmt.Errorf("indicator periods must be positive")
	}
	if cfg.FastPeriod >= cfg.SlowPeriod {
		return nil, fmt.Errorf("fast EMA period must be less than slow EMA period")
	}
	return &Engine{cfg: cfg}, nil
}

// RequiredBars returns the minimum series length for which the evaluator can
// compare the slow EMA across the two most recent bars.
func (e *Engine) RequiredBars() int {
	return e.cfg.SlowPeriod + 1
}

// Compute returns a snapshot sequence aligned one-to-one with bars.
func (e *Engine) Compute(bars []domain.Bar) []Snapshot {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	emaFast := emaSeries(closes, e.cfg.FastPeriod)
	emaSlow := emaSeries(closes, e.cfg.SlowPeriod)
	atr := atrSeries(bars, e.cfg.ATRPeriod)
	obv := obvSeries(bars)

	snaps := make([]Snapshot, len(bars))
	for i := range bars {
		snaps[i] = Snapshot{
			EMAFast: emaFast[i],
			EMASlow: emaSlow[i],
			ATR:     atr[i],
			OBV:     obv[i],
		}
	}
	return snaps
}

// emaSeries computes an exponential moving average seeded with the simple
// average of the first period closes. Indices before period-1 are NaN.
func emaSeries(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if len(closes) < period {
		return out
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += closes[i]
	}
	ema := seed / float64(period)
	out[period-1] = ema

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		ema = (closes[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out
}

// atrSeries computes the average true range using Wilder's smoothing. The
// first defined value, at index period-1, is the simple average of the first
// period true ranges; earlier indices are NaN.
func atrSeries(bars []domain.Bar, period int) []float64 {
	out := nanSeries(len(bars))
	if len(bars) < period {
		return out
	}

	trueRanges := make([]float64, len(bars))
	// First TR is just the high-low range
	trueRanges[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		high := bars[i].High
		low := bars[i].Low
		prevClose := bars[i-1].Close

		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. |Current High - Previous Close|
		// 3. |Current Low - Previous Close|
		tr1 := high - low
		tr2 := math.Abs(high - prevClose)
		tr3 := math.Abs(low - prevClose)
		trueRanges[i] = math.Max(tr1, math.Max(tr2, tr3))
	}

	atr := 0.0
	for i := 0; i < period; i++ {
		atr += trueRanges[i]
	}
	atr /= float64(period)
	out[period-1] = atr

	for i := period; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
		out[i] = atr
	}
	return out
}

// obvSeries accumulates on-balance volume, seeded with the first bar's volume.
func obvSeries(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	if len(bars) == 0 {
		return out
	}

	obv := bars[0].Volume
	out[0] = obv
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			obv += bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			obv -= bars[i].Volume
		}
		out[i] = obv
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
