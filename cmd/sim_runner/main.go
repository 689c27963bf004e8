// Command sim_runner exercises the full persistence and notification path
// without touching the exchange. Each pass fabricates one random winning
// trade per configured pair, records it in the ledger and announces it,
// using the same pacing as the live loop. Useful for verifying Telegram
// credentials and the database setup before going live.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"cryptoSwingBot/config"
	"cryptoSwingBot/internal/adapters/logger"
	"cryptoSwingBot/internal/adapters/sqlite"
	"cryptoSwingBot/internal/domain"
	"cryptoSwingBot/internal/notification"
	"cryptoSwingBot/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Simulation runner starting", map[string]interface{}{"pairs": cfg.Pairs})

	// 3. Initialize Trade Ledger
	ledger, err := sqlite.NewLedger(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trade ledger")
		log.Fatalf("FATAL: Failed to initialize trade ledger: %v", err)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing trade ledger")
		}
	}()

	// 4. Initialize Notification Dispatcher
	var notifier ports.Notifier
	if cfg.TelegramToken != "" {
		notifier = notification.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	} else {
		notifier = notification.NewLogNotifier(appLogger)
	}
	dispatcher := notification.NewDispatcher(notifier, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher.Notify(ctx, "Simulation bot started")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := run(ctx, cfg, appLogger, ledger, dispatcher, rng); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("FATAL: Simulation runner exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Simulation runner finished gracefully.")
}

func run(ctx context.Context, cfg *config.Config, appLogger ports.Logger, ledger ports.TradeLedger, dispatcher *notification.Dispatcher, rng *rand.Rand) error {
	for {
		for _, pair := range cfg.Pairs {
			if err := ctx.Err(); err != nil {
				return err
			}

			trade := fabricateTrade(pair, cfg.Notional, cfg.Leverage, rng)

			dispatcher.Notify(ctx, fmt.Sprintf("[SIM] Entered %s at %.2f", trade.Pair, trade.EntryPrice))
			dispatcher.Notify(ctx, fmt.Sprintf("[SIM] Exited %s at %.2f\nProfit: %.2f USDT (%.2f%%)",
				trade.Pair, trade.ExitPrice, trade.Profit, trade.ReturnPct))

			id, err := ledger.Append(ctx, trade)
			if err != nil {
				appLogger.Error(ctx, err, "Failed to record simulated trade", map[string]interface{}{"pair": pair})
			} else {
				appLogger.Info(ctx, "Simulated trade recorded", map[string]interface{}{"id": id, "pair": pair, "profit": trade.Profit})
			}

			if err := sleepCtx(ctx, cfg.InstrumentDelay); err != nil {
				return err
			}
		}

		if err := sleepCtx(ctx, cfg.PassDelay); err != nil {
			return err
		}
	}
}

// fabricateTrade generates a random winning trade with an exit between
// 0.5% and 2% above entry, mirroring the bounds of the live strategy's
// take-profit range.
func fabricateTrade(pair string, notional float64, leverage int, rng *rand.Rand) *domain.Trade {
	entry := 100 + rng.Float64()*(50000-100)
	exit := entry * (1.005 + rng.Float64()*(1.02-1.005))
	qty := notional / entry
	now := time.Now().UTC()

	return &domain.Trade{
		Pair:       pair,
		EntryPrice: entry,
		ExitPrice:  exit,
		Profit:     (exit - entry) * qty,
		ReturnPct:  ((exit / entry) - 1) * 100 * float64(leverage),
		EntryTime:  now,
		ExitTime:   now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
