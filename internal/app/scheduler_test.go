package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cryptoSwingBot/config"
	"cryptoSwingBot/internal/domain"
	"cryptoSwingBot/internal/executor"
	"cryptoSwingBot/internal/indicator"
	"cryptoSwingBot/internal/notification"
	"cryptoSwingBot/internal/risk"
	"cryptoSwingBot/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// mockMarket implements ports.MarketDataProvider with per-pair bar series.
type mockMarket struct {
	bars map[string][]domain.Bar
	errs map[string]error
}

func (m *mockMarket) FetchBars(ctx context.Context, instrument, timeframe string, limit int) ([]domain.Bar, error) {
	if err, ok := m.errs[instrument]; ok {
		return nil, err
	}
	return m.bars[instrument], nil
}

// mockLedger implements ports.TradeLedger and records appended trades.
type mockLedger struct {
	appended  []*domain.Trade
	appendErr error
	recent    []*domain.Trade
	recentErr error
}

func (m *mockLedger) Append(ctx context.Context, trade *domain.Trade) (int64, error) {
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	m.appended = append(m.appended, trade)
	id := int64(len(m.appended))
	trade.ID = id
	return id, nil
}

func (m *mockLedger) Recent(ctx context.Context, limit int) ([]*domain.Trade, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	if limit < len(m.recent) {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

// mockNotifier implements ports.Notifier with a configurable failure.
type mockNotifier struct {
	sent []string
	err  error
}

func (m *mockNotifier) Send(ctx context.Context, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, text)
	return nil
}

// signalBars returns a minimal series that fires the entry signal with
// fast/slow EMA periods of 2 and 3: a flat stretch, a dip, then a
// high-volume breakout bar.
func signalBars() []domain.Bar {
	closes := []float64{10, 10, 9, 12}
	volumes := []float64{5, 5, 5, 50}
	bars := make([]domain.Bar, len(closes))
	for i := range closes {
		bars[i] = domain.Bar{
			OpenTime: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * 15 * time.Minute),
			Open:     closes[i],
			High:     closes[i] + 1,
			Low:      closes[i] - 1,
			Close:    closes[i],
			Volume:   volumes[i],
		}
	}
	return bars
}

// flatBars returns a series with no crossover and no volume spike.
func flatBars() []domain.Bar {
	bars := make([]domain.Bar, 4)
	for i := range bars {
		bars[i] = domain.Bar{Open: 10, High: 11, Low: 9, Close: 10, Volume: 5}
	}
	return bars
}

type testFixture struct {
	scheduler *Scheduler
	market    *mockMarket
	ledger    *mockLedger
	notifier  *mockNotifier
}

func newTestScheduler(t *testing.T, pairs []string) *testFixture {
	t.Helper()

	cfg := &config.Config{
		Pairs:            pairs,
		Timeframe:        "15m",
		BarLimit:         100,
		Notional:         10,
		Leverage:         10,
		DigestHour:       23,
		DigestMinute:     59,
		InstrumentDelay:  0,
		PassDelay:        0,
		FaultDelay:       0,
		BlackoutStartUTC: 12,
		BlackoutEndUTC:   15,
	}

	logger := &mockLogger{}
	market := &mockMarket{bars: map[string][]domain.Bar{}, errs: map[string]error{}}
	ledger := &mockLedger{}
	notifier := &mockNotifier{}
	dispatcher := notification.NewDispatcher(notifier, logger)

	engine, err := indicator.NewEngine(indicator.Config{FastPeriod: 2, SlowPeriod: 3, ATRPeriod: 2})
	require.NoError(t, err)

	evaluator, err := strategy.New(strategy.Config{
		VolumeLookback:   2,
		BlackoutStartUTC: 12,
		BlackoutEndUTC:   15,
		// Pin the clock outside the blackout window.
		Now: func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) },
	}, logger)
	require.NoError(t, err)

	riskMgr, err := risk.NewManager(risk.DefaultConfig())
	require.NoError(t, err)

	exec, err := executor.New(executor.Config{Notional: 10, Leverage: 10}, riskMgr, logger)
	require.NoError(t, err)

	scheduler, err := NewScheduler(cfg, logger, market, ledger, dispatcher, engine, evaluator, exec)
	require.NoError(t, err)

	// Pin the scheduler clock away from the digest minute.
	scheduler.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

	return &testFixture{scheduler: scheduler, market: market, ledger: ledger, notifier: notifier}
}

func TestNewScheduler_Validation(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})

	_, err := NewScheduler(nil, &mockLogger{}, f.market, f.ledger,
		notification.NewDispatcher(f.notifier, &mockLogger{}),
		f.scheduler.engine, f.scheduler.evaluator, f.scheduler.executor)
	assert.Error(t, err)

	cfg := &config.Config{Pairs: nil}
	_, err = NewScheduler(cfg, &mockLogger{}, f.market, f.ledger,
		notification.NewDispatcher(f.notifier, &mockLogger{}),
		f.scheduler.engine, f.scheduler.evaluator, f.scheduler.executor)
	assert.Error(t, err)
}

func TestRunPass_SignalProducesTradeAndNotifications(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = signalBars()

	require.NoError(t, f.scheduler.runPass(context.Background()))

	require.Len(t, f.ledger.appended, 1)
	trade := f.ledger.appended[0]
	assert.Equal(t, "BTC/USDT", trade.Pair)
	assert.InDelta(t, 12.0, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 12.18, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 15.0, trade.ReturnPct, 1e-9)

	// Entry announcement precedes the exit announcement.
	require.Len(t, f.notifier.sent, 2)
	assert.True(t, strings.HasPrefix(f.notifier.sent[0], "Entered BTC/USDT"), "got %q", f.notifier.sent[0])
	assert.True(t, strings.HasPrefix(f.notifier.sent[1], "Exited BTC/USDT"), "got %q", f.notifier.sent[1])
}

func TestRunPass_NoSignalNoTrade(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = flatBars()

	require.NoError(t, f.scheduler.runPass(context.Background()))

	assert.Empty(t, f.ledger.appended)
	assert.Empty(t, f.notifier.sent)
}

func TestRunPass_WarmupSeriesSkipped(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = signalBars()[:2] // below RequiredBars

	require.NoError(t, f.scheduler.runPass(context.Background()))

	assert.Empty(t, f.ledger.appended)
	assert.Empty(t, f.notifier.sent)
}

func TestRunPass_FetchFailureSkipsInstrumentOnly(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT", "ETH/USDT"})
	f.market.errs["BTC/USDT"] = errors.New("exchange unavailable")
	f.market.bars["ETH/USDT"] = signalBars()

	require.NoError(t, f.scheduler.runPass(context.Background()))

	// The failing instrument is reported, the next one still trades.
	require.Len(t, f.ledger.appended, 1)
	assert.Equal(t, "ETH/USDT", f.ledger.appended[0].Pair)

	var errorNotes int
	for _, msg := range f.notifier.sent {
		if strings.HasPrefix(msg, "Error trading BTC/USDT") {
			errorNotes++
		}
	}
	assert.Equal(t, 1, errorNotes)
}

func TestRunPass_NotificationFailureDoesNotBlockLedger(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = signalBars()
	f.notifier.err = errors.New("telegram unreachable")

	require.NoError(t, f.scheduler.runPass(context.Background()))

	// The trade record must survive a dead notification transport.
	assert.Len(t, f.ledger.appended, 1)
}

func TestRunPass_PersistenceFailureReported(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = signalBars()
	f.ledger.appendErr = errors.New("disk full")

	require.NoError(t, f.scheduler.runPass(context.Background()))

	assert.Empty(t, f.ledger.appended)
	var found bool
	for _, msg := range f.notifier.sent {
		if strings.HasPrefix(msg, "Error trading BTC/USDT") {
			found = true
		}
	}
	assert.True(t, found, "persistence failure should be reported, got %v", f.notifier.sent)
}

func TestRunPass_DigestAtExactMinute(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = flatBars()
	f.ledger.recent = []*domain.Trade{
		{Pair: "BTC/USDT", Profit: 0.1},
		{Pair: "ETH/USDT", Profit: 0.2},
	}
	f.scheduler.now = func() time.Time { return time.Date(2024, 6, 1, 23, 59, 30, 0, time.UTC) }

	require.NoError(t, f.scheduler.runPass(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Daily summary: 2 trades, total profit 0.30 USDT", f.notifier.sent[0])
}

func TestRunPass_NoDigestOffTheMinute(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = flatBars()
	f.ledger.recent = []*domain.Trade{{Pair: "BTC/USDT", Profit: 0.1}}
	f.scheduler.now = func() time.Time { return time.Date(2024, 6, 1, 23, 58, 59, 0, time.UTC) }

	require.NoError(t, f.scheduler.runPass(context.Background()))

	assert.Empty(t, f.notifier.sent)
}

func TestRunPass_DigestFailurePropagates(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = flatBars()
	f.ledger.recentErr = errors.New("database locked")
	f.scheduler.now = func() time.Time { return time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC) }

	err := f.scheduler.runPass(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily digest failed")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = flatBars()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() { done <- f.scheduler.Run(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}

func TestRun_AnnouncesStartup(t *testing.T) {
	f := newTestScheduler(t, []string{"BTC/USDT"})
	f.market.bars["BTC/USDT"] = flatBars()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // stop on the first pass

	done := make(chan error, 1)
	go func() { done <- f.scheduler.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	require.NotEmpty(t, f.notifier.sent)
	assert.Equal(t, "Trading bot started", f.notifier.sent[0])
}

func TestSleepCtx(t *testing.T) {
	t.Run("returns nil after duration", func(t *testing.T) {
		assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))
	})
	t.Run("zero duration checks context", func(t *testing.T) {
		assert.NoError(t, sleepCtx(context.Background(), 0))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, sleepCtx(ctx, 0), context.Canceled)
	})
	t.Run("cancelled context interrupts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := sleepCtx(ctx, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
