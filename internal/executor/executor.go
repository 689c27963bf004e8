package executor

import (
	"context"
	"fmt"
	"time"

	"cryptoSwingBot/internal/domain"
	"cryptoSwingBot/internal/ports"
	"cryptoSwingBot/internal/risk"
)

// Config holds the fixed sizing parameters for simulated trades.
type Config struct {
	Notional float64 // Quote-currency size per trade, e.g. 10
	Leverage int     // Multiplier applied to percentage returns, e.g. 10
}

// Executor turns an accepted signal into a simulated trade outcome. No real
// order is placed: the exit is simulated immediately at the take-profit
// price, with no intrabar path tracking (a documented limitation, not a
// prediction of real fills).
type Executor struct {
	cfg    Config
	risk   *risk.Manager
	logger ports.Logger
	now    func() time.Time
}

// New creates a new executor instance.
func New(cfg Config, riskMgr *risk.Manager, logger ports.Logger) (*Executor, error) {
	if riskMgr == nil {
		return nil, fmt.Errorf("risk manager is required for executor")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for executor")
	}
	if cfg.Notional <= 0 {
		return nil, fmt.Errorf("notional must be positive")
	}
	if cfg.Leverage <= 0 {
		return nil, fmt.Errorf("leverage must be positive")
	}
	return &Executor{cfg: cfg, risk: riskMgr, logger: logger, now: time.Now}, nil
}

// Plan computes the position parameters for an entry at entryPrice with the
// given current ATR.
func (e *Executor) Plan(entryPrice, atr float64) domain.PositionPlan {
	return domain.PositionPlan{
		EntryPrice: entryPrice,
		TakeProfit: e.risk.TakeProfit(entryPrice),
		StopLoss:   e.risk.TrailingStop(entryPrice, entryPrice, atr),
		Quantity:   e.cfg.Notional / entryPrice,
	}
}

// Execute simulates the trade described by plan and returns the completed
// record. The exit fills at the take-profit price; profit and leveraged
// return follow from the entry/exit prices and the configured leverage.
func (e *Executor) Execute(ctx context.Context, pair string, plan domain.PositionPlan) *domain.Trade {
	entryTime := e.now().UTC()
	exitPrice := plan.TakeProfit
	exitTime := e.now().UTC()

	profit := (exitPrice - plan.EntryPrice) * plan.Quantity
	returnPct := ((exitPrice / plan.EntryPrice) - 1) * 100 * float64(e.cfg.Leverage)

	e.logger.Info(ctx, "Simulated trade completed", map[string]interface{}{
		"pair":      pair,
		"entry":     plan.EntryPrice,
		"exit":      exitPrice,
		"profit":    profit,
		"returnPct": returnPct,
	})

	return &domain.Trade{
		Pair:       pair,
		EntryPrice: plan.EntryPrice,
		ExitPrice:  exitPrice,
		Profit:     profit,
		ReturnPct:  returnPct,
		EntryTime:  entryTime,
		ExitTime:   exitTime,
	}
}
