package strategy

import (
	"context"
	"fmt"
	"time"

	"cryptoSwingBot/internal/domain"
	"cryptoSwingBot/internal/indicator"
	"cryptoSwingBot/internal/ports"
)

// Config holds parameters for the entry evaluator.
type Config struct {
	VolumeLookback   int // Bars averaged for the volume filter, e.g. 10
	BlackoutStartUTC int // First suppressed UTC hour, inclusive
	BlackoutEndUTC   int // Last suppressed UTC hour, inclusive

	// Now reports the current wall-clock time for the blackout check.
	// Defaults to time.Now; tests override it for determinism.
	Now func() time.Time
}

// Evaluator decides, from the two most recent bars and their indicator
// snapshots, whether to open a position. It has no side effects.
type Evaluator struct {
	cfg    Config
	logger ports.Logger
}

// New creates a new Evaluator instance.
func New(cfg Config, logger ports.Logger) (*Evaluator, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for evaluator")
	}
	if cfg.VolumeLookback <= 0 {
		return nil, fmt.Errorf("volume lookback must be positive")
	}
	if cfg.BlackoutStartUTC < 0 || cfg.BlackoutStartUTC > 23 ||
		cfg.BlackoutEndUTC < 0 || cfg.BlackoutEndUTC > 23 ||
		cfg.BlackoutStartUTC > cfg.BlackoutEndUTC {
		return nil, fmt.Errorf("invalid blackout window [%d, %d]", cfg.BlackoutStartUTC, cfg.BlackoutEndUTC)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Evaluator{cfg: cfg, logger: logger}, nil
}

// Evaluate returns the entry signal for the latest bar. Entry requires an
// upward fast/slow EMA crossover on the last bar, the close above the fast
// EMA, and the last bar's volume above the mean of the preceding lookback
// window. All signals are suppressed during the UTC blackout window.
func (e *Evaluator) Evaluate(ctx context.Context, bars []domain.Bar, snaps []indicator.Snapshot) (domain.Signal, bool) {
	if len(bars) != len(snaps) {
		e.logger.Warn(ctx, "Bar and snapshot series misaligned",
			map[string]interface{}{"bars": len(bars), "snapshots": len(snaps)})
		return domain.Signal{}, false
	}
	if len(bars) < e.cfg.VolumeLookback+1 || len(bars) < 2 {
		e.logger.Debug(ctx, "Not enough bars for entry evaluation",
			map[string]interface{}{"available": len(bars)})
		return domain.Signal{}, false
	}

	// Economic-news avoidance: no entries during the blackout window.
	if hour := e.cfg.Now().UTC().Hour(); hour >= e.cfg.BlackoutStartUTC && hour <= e.cfg.BlackoutEndUTC {
		e.logger.Debug(ctx, "Entry suppressed by blackout window",
			map[string]interface{}{"hourUTC": hour})
		return domain.Signal{}, false
	}

	last := len(bars) - 1
	prev := last - 1
	if !snaps[last].Defined() || !snaps[prev].Defined() {
		// Indicator warm-up not satisfied; treated as no signal, not an error.
		e.logger.Debug(ctx, "Indicator warm-up not satisfied",
			map[string]interface{}{"bars": len(bars)})
		return domain.Signal{}, false
	}

	volumeMean := 0.0
	for i := last - e.cfg.VolumeLookback; i < last; i++ {
		volumeMean += bars[i].Volume
	}
	volumeMean /= float64(e.cfg.VolumeLookback)

	wasBelow := snaps[prev].EMAFast < snaps[prev].EMASlow
	crossedUp := snaps[last].EMAFast > snaps[last].EMASlow
	closeAboveFast := bars[last].Close > snaps[last].EMAFast
	volumeSpike := bars[last].Volume > volumeMean

	if wasBelow && crossedUp && closeAboveFast && volumeSpike {
		e.logger.Info(ctx, "Entry conditions met", map[string]interface{}{
			"close":      bars[last].Close,
			"emaFast":    snaps[last].EMAFast,
			"emaSlow":    snaps[last].EMASlow,
			"volume":     bars[last].Volume,
			"volumeMean": volumeMean,
		})
		return domain.Signal{BarIndex: last}, true
	}

	e.logger.Debug(ctx, "Entry conditions not met", map[string]interface{}{
		"wasBelow":       wasBelow,
		"crossedUp":      crossedUp,
		"closeAboveFast": closeAboveFast,
		"volumeSpike":    volumeSpike,
	})
	return domain.Signal{}, false
}
