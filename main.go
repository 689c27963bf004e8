package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os/signal"
	"syscall"

	"cryptoSwingBot/config"
	"cryptoSwingBot/internal/adapters/binanceclient"
	"cryptoSwingBot/internal/adapters/logger"
	"cryptoSwingBot/internal/adapters/sqlite"
	"cryptoSwingBot/internal/app"
	"cryptoSwingBot/internal/executor"
	"cryptoSwingBot/internal/indicator"
	"cryptoSwingBot/internal/notification"
	"cryptoSwingBot/internal/ports"
	"cryptoSwingBot/internal/risk"
	"cryptoSwingBot/internal/strategy"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Trade Ledger (Database Adapter)
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

	// 4. Initialize Market-Data Client
	marketClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize market-data client")
		log.Fatalf("FATAL: Failed to initialize market-data client: %v", err)
	}

	// 5. Initialize Indicator Engine and Signal Evaluator
	engine, err := indicator.NewEngine(indicator.Config{
		FastPeriod: cfg.FastEMAPeriod,
		SlowPeriod: cfg.SlowEMAPeriod,
		ATRPeriod:  cfg.ATRPeriod,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize indicator engine")
		log.Fatalf("FATAL: Failed to initialize indicator engine: %v", err)
	}

	evaluator, err := strategy.New(strategy.Config{
		VolumeLookback:   cfg.VolumeLookback,
		BlackoutStartUTC: cfg.BlackoutStartUTC,
		BlackoutEndUTC:   cfg.BlackoutEndUTC,
	}, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize signal evaluator")
		log.Fatalf("FATAL: Failed to initialize signal evaluator: %v", err)
	}

	// 6. Initialize Risk Manager and Trade Executor
	riskMgr, err := risk.NewManager(risk.Config{
		ATRMultiplier: cfg.ATRMultiplier,
		StopFloorPct:  cfg.StopFloorPct,
		TakeProfitPct: cfg.TakeProfitPct,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize risk manager")
		log.Fatalf("FATAL: Failed to initialize risk manager: %v", err)
	}

	exec, err := executor.New(executor.Config{
		Notional: cfg.Notional,
		Leverage: cfg.Leverage,
	}, riskMgr, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trade executor")
		log.Fatalf("FATAL: Failed to initialize trade executor: %v", err)
	}

	// 7. Initialize Notification Dispatcher
	var notifier ports.Notifier
	if cfg.TelegramToken != "" {
		notifier = notification.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		appLogger.Info(context.Background(), "Telegram notifier configured")
	} else {
		notifier = notification.NewLogNotifier(appLogger)
		appLogger.Info(context.Background(), "No Telegram credentials; notifications go to the log")
	}
	dispatcher := notification.NewDispatcher(notifier, appLogger)

	// 8. Build and run the scheduler
	scheduler, err := app.NewScheduler(cfg, appLogger, marketClient, ledger, dispatcher, engine, evaluator, exec)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize scheduler")
		log.Fatalf("FATAL: Failed to initialize scheduler: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error(context.Background(), err, "Scheduler exited with error")
		log.Fatalf("FATAL: Scheduler exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
