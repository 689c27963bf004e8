package indicator

import (
	"math"
	"testing"

	"cryptoSwingBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func barsFromCloses(closes []float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return bars
}

func TestNewEngine_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{FastPeriod: 20, SlowPeriod: 50, ATRPeriod: 14}, wantErr: false},
		{name: "zero fast period", cfg: Config{FastPeriod: 0, SlowPeriod: 50, ATRPeriod: 14}, wantErr: true},
		{name: "zero ATR period", cfg: Config{FastPeriod: 20, SlowPeriod: 50, ATRPeriod: 0}, wantErr: true},
		{name: "fast equals slow", cfg: Config{FastPeriod: 20, SlowPeriod: 20, ATRPeriod: 14}, wantErr: true},
		{name: "fast above slow", cfg: Config{FastPeriod: 50, SlowPeriod: 20, ATRPeriod: 14}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, engine)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, engine)
			}
		})
	}
}

func TestEngine_RequiredBars(t *testing.T) {
	engine, err := NewEngine(Config{FastPeriod: 20, SlowPeriod: 50, ATRPeriod: 14})
	require.NoError(t, err)
	assert.Equal(t, 51, engine.RequiredBars())
}

func TestEMASeries(t *testing.T) {
	// Period 3 over [1..5]: seeded with SMA(1,2,3)=2 at index 2, then
	// ema = (close-ema)*0.5 + ema.
	out := emaSeries([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestEMASeries_ShortInput(t *testing.T) {
	out := emaSeries([]float64{1, 2}, 3)
	require.Len(t, out, 2)
	for i, v := range out {
		assert.True(t, math.IsNaN(v), "index %d should be NaN", i)
	}
}

func TestATRSeries(t *testing.T) {
	bars := []domain.Bar{
		{High: 10, Low: 8, Close: 9},
		{High: 11, Low: 9, Close: 10},
		{High: 14, Low: 10, Close: 12},
		{High: 13, Low: 11, Close: 12},
	}
	// Period 2. True ranges: 2, 2, 4, 2. First ATR at index 1 is the
	// simple average (2+2)/2=2, then Wilder smoothing:
	// (2*1+4)/2=3, (3*1+2)/2=2.5.
	out := atrSeries(bars, 2)
	require.Len(t, out, 4)
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 2.0, out[1], 1e-9)
	assert.InDelta(t, 3.0, out[2], 1e-9)
	assert.InDelta(t, 2.5, out[3], 1e-9)
}

func TestATRSeries_GapUsesPreviousClose(t *testing.T) {
	// A gap up makes |high - prevClose| the dominant range component.
	bars := []domain.Bar{
		{High: 10, Low: 9, Close: 10},
		{High: 20, Low: 18, Close: 19},
	}
	out := atrSeries(bars, 2)
	// TR0 = 1, TR1 = max(2, |20-10|, |18-10|) = 10, ATR = 5.5
	assert.InDelta(t, 5.5, out[1], 1e-9)
}

func TestOBVSeries(t *testing.T) {
	closes := []float64{9, 10, 12, 12, 11}
	volumes := []float64{5, 3, 4, 2, 6}
	bars := make([]domain.Bar, len(closes))
	for i := range closes {
		bars[i] = domain.Bar{Close: closes[i], Volume: volumes[i]}
	}
	// Seeded with the first bar's volume; flat closes leave OBV unchanged.
	out := obvSeries(bars)
	assert.Equal(t, []float64{5, 8, 12, 12, 6}, out)
}

func TestEngine_Compute_Alignment(t *testing.T) {
	engine, err := NewEngine(Config{FastPeriod: 2, SlowPeriod: 3, ATRPeriod: 2})
	require.NoError(t, err)

	bars := barsFromCloses([]float64{10, 11, 12, 13, 14})
	snaps := engine.Compute(bars)
	require.Len(t, snaps, len(bars))

	// Slow EMA defines the overall warm-up boundary.
	assert.False(t, snaps[1].Defined())
	assert.True(t, snaps[2].Defined())
	assert.True(t, snaps[len(snaps)-1].Defined())
}

func TestEngine_Compute_Empty(t *testing.T) {
	engine, err := NewEngine(Config{FastPeriod: 2, SlowPeriod: 3, ATRPeriod: 2})
	require.NoError(t, err)
	assert.Empty(t, engine.Compute(nil))
}
