package app

import (
	"context"
	"fmt"
	"time"

	"cryptoSwingBot/config"
	"cryptoSwingBot/internal/domain"
	"cryptoSwingBot/internal/executor"
	"cryptoSwingBot/internal/indicator"
	"cryptoSwingBot/internal/notification"
	"cryptoSwingBot/internal/ports"
	"cryptoSwingBot/internal/strategy"
)

const digestLookback = 10 // Ledger records summarized by the daily digest

// stepKind classifies the outcome of one per-instrument step. Failures are
// reported and contained at the step boundary; nothing below it may
// terminate the loop.
type stepKind int

const (
	stepTraded stepKind = iota
	stepNoSignal
	stepWarmupSkip
	stepDataUnavailable
	stepPersistenceFailed
)

// stepResult is the typed outcome returned from each per-instrument step.
type stepResult struct {
	kind  stepKind
	err   error
	trade *domain.Trade
}

// Scheduler drives the polling cadence across the instrument set: an outer
// pass cycle over all instruments, an inner per-instrument step, the daily
// digest check, and top-level fault containment. Execution is synchronous
// and single-threaded; instruments are processed in the configured order.
type Scheduler struct {
	cfg        *config.Config
	logger     ports.Logger
	market     ports.MarketDataProvider
	ledger     ports.TradeLedger
	dispatcher *notification.Dispatcher
	engine     *indicator.Engine
	evaluator  *strategy.Evaluator
	executor   *executor.Executor

	now func() time.Time
}

// NewScheduler creates the scheduler and validates its dependencies.
func NewScheduler(
	cfg *config.Config,
	logger ports.Logger,
	market ports.MarketDataProvider,
	ledger ports.TradeLedger,
	dispatcher *notification.Dispatcher,
	engine *indicator.Engine,
	evaluator *strategy.Evaluator,
	exec *executor.Executor,
) (*Scheduler, error) {
	if cfg == nil || logger == nil || market == nil || ledger == nil ||
		dispatcher == nil || engine == nil || evaluator == nil || exec == nil {
		return nil, fmt.Errorf("missing required dependencies for Scheduler")
	}
	if len(cfg.Pairs) == 0 {
		return nil, fmt.Errorf("configuration must list at least one instrument")
	}
	return &Scheduler{
		cfg:        cfg,
		logger:     logger,
		market:     market,
		ledger:     ledger,
		dispatcher: dispatcher,
		engine:     engine,
		evaluator:  evaluator,
		executor:   exec,
		now:        time.Now,
	}, nil
}

// Run executes passes until ctx is cancelled. The loop has no terminal state
// of its own: faults are reported and followed by a fixed delay, never by
// exit. Returns ctx.Err() once the context is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Scheduler started", map[string]interface{}{
		"pairs":     s.cfg.Pairs,
		"timeframe": s.cfg.Timeframe,
	})
	s.dispatcher.Notify(ctx, "Trading bot started")

	for {
		if err := s.runPass(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.Info(ctx, "Scheduler stopped", map[string]interface{}{"reason": ctx.Err().Error()})
				return ctx.Err()
			}
			// Pass-level fault: report, hold a fixed delay, retry forever.
			s.logger.Error(ctx, err, "Pass failed")
			s.dispatcher.Notify(ctx, fmt.Sprintf("Error in main loop: %v", err))
			if serr := sleepCtx(ctx, s.cfg.FaultDelay); serr != nil {
				return serr
			}
			continue
		}

		if err := sleepCtx(ctx, s.cfg.PassDelay); err != nil {
			s.logger.Info(ctx, "Scheduler stopped", map[string]interface{}{"reason": err.Error()})
			return err
		}
	}
}

// runPass processes every instrument once, then performs the digest check.
func (s *Scheduler) runPass(ctx context.Context) error {
	for _, pair := range s.cfg.Pairs {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := s.processInstrument(ctx, pair)
		s.reportStep(ctx, pair, res)

		if err := sleepCtx(ctx, s.cfg.InstrumentDelay); err != nil {
			return err
		}
	}

	// Exact-minute match: a pass that overruns this minute skips the digest
	// for the day.
	if now := s.now().UTC(); now.Hour() == s.cfg.DigestHour && now.Minute() == s.cfg.DigestMinute {
		if err := s.sendDigest(ctx); err != nil {
			return fmt.Errorf("daily digest failed: %w", err)
		}
	}
	return nil
}

// processInstrument runs the full decision chain for one instrument and
// returns a typed result. It never panics the loop: every failure mode maps
// to a stepResult handled by the caller.
func (s *Scheduler) processInstrument(ctx context.Context, pair string) stepResult {
	bars, err := s.market.FetchBars(ctx, pair, s.cfg.Timeframe, s.cfg.BarLimit)
	if err != nil {
		return stepResult{kind: stepDataUnavailable, err: err}
	}
	if len(bars) < s.engine.RequiredBars() {
		return stepResult{kind: stepWarmupSkip, err: fmt.Errorf("%w: got %d bars, need %d",
			ports.ErrInsufficientData, len(bars), s.engine.RequiredBars())}
	}

	snaps := s.engine.Compute(bars)
	sig, ok := s.evaluator.Evaluate(ctx, bars, snaps)
	if !ok {
		return stepResult{kind: stepNoSignal}
	}

	entryPrice := bars[sig.BarIndex].Close
	plan := s.executor.Plan(entryPrice, snaps[sig.BarIndex].ATR)
	s.dispatcher.Notify(ctx, fmt.Sprintf("Entered %s at %.2f\nTP: %.2f | SL: %.2f",
		pair, plan.EntryPrice, plan.TakeProfit, plan.StopLoss))

	trade := s.executor.Execute(ctx, pair, plan)
	s.dispatcher.Notify(ctx, fmt.Sprintf("Exited %s at %.2f\nProfit: %.2f USDT (%.2f%%)",
		pair, trade.ExitPrice, trade.Profit, trade.ReturnPct))

	// The notification above is best-effort; the append below must happen
	// exactly once regardless of notification outcome.
	if _, err := s.ledger.Append(ctx, trade); err != nil {
		return stepResult{kind: stepPersistenceFailed, err: err, trade: trade}
	}
	return stepResult{kind: stepTraded, trade: trade}
}

// reportStep logs the step outcome and reports failures to the operator.
// A completed trade whose ledger write failed is lost; that is an accepted
// risk of this design, surfaced via notification rather than fixed.
func (s *Scheduler) reportStep(ctx context.Context, pair string, res stepResult) {
	switch res.kind {
	case stepTraded:
		s.logger.Info(ctx, "Trade recorded", map[string]interface{}{
			"pair": pair, "tradeID": res.trade.ID, "profit": res.trade.Profit})
	case stepNoSignal:
		s.logger.Debug(ctx, "No entry for instrument", map[string]interface{}{"pair": pair})
	case stepWarmupSkip:
		s.logger.Debug(ctx, "Skipping instrument, indicator warm-up not satisfied", map[string]interface{}{
			"pair": pair, "reason": res.err.Error()})
	case stepDataUnavailable:
		s.logger.Warn(ctx, "Skipping instrument, market data unavailable", map[string]interface{}{
			"pair": pair, "error": res.err.Error()})
		s.dispatcher.Notify(ctx, fmt.Sprintf("Error trading %s: %v", pair, res.err))
	case stepPersistenceFailed:
		s.logger.Error(ctx, res.err, "Trade completed but ledger write failed", map[string]interface{}{
			"pair": pair, "profit": res.trade.Profit})
		s.dispatcher.Notify(ctx, fmt.Sprintf("Error trading %s: %v", pair, res.err))
	}
}

// sendDigest summarizes the most recent ledger records in one notification.
func (s *Scheduler) sendDigest(ctx context.Context) error {
	trades, err := s.ledger.Recent(ctx, digestLookback)
	if err != nil {
		return err
	}

	total := 0.0
	for _, t := range trades {
		total += t.Profit
	}
	s.dispatcher.Notify(ctx, fmt.Sprintf("Daily summary: %d trades, total profit %.2f USDT", len(trades), total))
	s.logger.Info(ctx, "Daily digest sent", map[string]interface{}{"trades": len(trades), "totalProfit": total})
	return nil
}

// sleepCtx blocks for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
