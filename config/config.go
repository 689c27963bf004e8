package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cryptoSwingBot/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration. It is constructed once at
// startup and passed into each component's constructor.
type Config struct {
	// Exchange API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Instruments and polling
	Pairs     []string // Fixed instrument set, processed in this order each pass
	Timeframe string   // Candle interval requested from the provider (e.g. "15m")
	BarLimit  int      // Bars fetched per instrument per pass

	// Trade sizing
	Notional float64 // Quote-currency size per trade
	Leverage int     // Multiplier applied to percentage returns

	// Risk policy defaults (callers may override per component)
	TakeProfitPct float64 // Fixed profit target, e.g. 0.015 for 1.5%
	ATRMultiplier float64 // Trailing stop distance in ATRs
	StopFloorPct  float64 // Max stop distance below entry, e.g. 0.01 for 1%

	// Strategy parameters
	FastEMAPeriod    int // e.g. 20
	SlowEMAPeriod    int // e.g. 50
	ATRPeriod        int // e.g. 14
	VolumeLookback   int // Bars averaged for the volume filter
	BlackoutStartUTC int // First suppressed UTC hour, inclusive
	BlackoutEndUTC   int // Last suppressed UTC hour, inclusive

	// Scheduling
	InstrumentDelay time.Duration // Sleep between instruments within a pass
	PassDelay       time.Duration // Sleep between passes
	FaultDelay      time.Duration // Sleep after a pass-level fault
	DigestHour      int           // UTC hour of the daily digest check
	DigestMinute    int           // UTC minute of the daily digest check

	// Telegram
	TelegramToken  string
	TelegramChatID string

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Exchange API. Keys may be empty: the bot only reads public kline data.
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	// Instruments and polling
	pairsStr := getEnv("PAIRS", "BTC/USDT,ETH/USDT,SOL/USDT,XRP/USDT")
	for _, p := range strings.Split(pairsStr, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			cfg.Pairs = append(cfg.Pairs, p)
		}
	}
	if len(cfg.Pairs) == 0 {
		errs = append(errs, "PAIRS must list at least one instrument")
	}

	cfg.Timeframe = getEnv("TIMEFRAME", "15m")
	if cfg.Timeframe == "" {
		errs = append(errs, "TIMEFRAME must be set")
	}

	cfg.BarLimit = getEnvAsInt("BAR_LIMIT", 100)
	if cfg.BarLimit <= 0 {
		errs = append(errs, "BAR_LIMIT must be positive")
	}

	// Trade sizing
	cfg.Notional, err = getEnvAsFloatRequired("NOTIONAL", 10.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid NOTIONAL: %v", err))
	} else if cfg.Notional <= 0 {
		errs = append(errs, "NOTIONAL must be positive")
	}

	cfg.Leverage, err = getEnvAsIntRequired("LEVERAGE", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LEVERAGE: %v", err))
	} else if cfg.Leverage <= 0 {
		errs = append(errs, "LEVERAGE must be positive")
	}

	// Risk policy
	cfg.TakeProfitPct, err = getEnvAsFloatRequired("TAKE_PROFIT_PCT", 0.015)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TAKE_PROFIT_PCT: %v", err))
	} else if cfg.TakeProfitPct <= 0 {
		errs = append(errs, "TAKE_PROFIT_PCT must be positive")
	}

	cfg.ATRMultiplier, err = getEnvAsFloatRequired("ATR_MULTIPLIER", 1.2)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ATR_MULTIPLIER: %v", err))
	} else if cfg.ATRMultiplier <= 0 {
		errs = append(errs, "ATR_MULTIPLIER must be positive")
	}

	cfg.StopFloorPct, err = getEnvAsFloatRequired("STOP_FLOOR_PCT", 0.01)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STOP_FLOOR_PCT: %v", err))
	} else if cfg.StopFloorPct <= 0 || cfg.StopFloorPct >= 1.0 {
		errs = append(errs, "STOP_FLOOR_PCT must be between 0.0 and 1.0 (exclusive)")
	}

	// Strategy parameters (using defaults if not set)
	cfg.FastEMAPeriod = getEnvAsInt("FAST_EMA_PERIOD", 20)
	cfg.SlowEMAPeriod = getEnvAsInt("SLOW_EMA_PERIOD", 50)
	cfg.ATRPeriod = getEnvAsInt("ATR_PERIOD", 14)
	cfg.VolumeLookback = getEnvAsInt("VOLUME_LOOKBACK", 10)

	if cfg.FastEMAPeriod <= 0 || cfg.SlowEMAPeriod <= 0 || cfg.ATRPeriod <= 0 || cfg.VolumeLookback <= 0 {
		errs = append(errs, "strategy periods (EMA, ATR, volume lookback) must be positive")
	}
	if cfg.FastEMAPeriod >= cfg.SlowEMAPeriod {
		errs = append(errs, "FAST_EMA_PERIOD must be less than SLOW_EMA_PERIOD")
	}

	cfg.BlackoutStartUTC = getEnvAsInt("BLACKOUT_START_HOUR", 12)
	cfg.BlackoutEndUTC = getEnvAsInt("BLACKOUT_END_HOUR", 15)
	if cfg.BlackoutStartUTC < 0 || cfg.BlackoutStartUTC > 23 || cfg.BlackoutEndUTC < 0 || cfg.BlackoutEndUTC > 23 {
		errs = append(errs, "blackout hours must be within 0-23")
	}
	if cfg.BlackoutStartUTC > cfg.BlackoutEndUTC {
		errs = append(errs, "BLACKOUT_START_HOUR must not be after BLACKOUT_END_HOUR")
	}

	// Scheduling
	instrumentDelaySeconds := getEnvAsInt("INSTRUMENT_DELAY_SECONDS", 3)
	if instrumentDelaySeconds < 0 {
		errs = append(errs, "INSTRUMENT_DELAY_SECONDS cannot be negative")
	}
	cfg.InstrumentDelay = time.Duration(instrumentDelaySeconds) * time.Second

	passDelaySeconds := getEnvAsInt("PASS_DELAY_SECONDS", 60)
	if passDelaySeconds < 0 {
		errs = append(errs, "PASS_DELAY_SECONDS cannot be negative")
	}
	cfg.PassDelay = time.Duration(passDelaySeconds) * time.Second

	faultDelaySeconds := getEnvAsInt("FAULT_DELAY_SECONDS", 60)
	if faultDelaySeconds < 0 {
		errs = append(errs, "FAULT_DELAY_SECONDS cannot be negative")
	}
	cfg.FaultDelay = time.Duration(faultDelaySeconds) * time.Second

	cfg.DigestHour = getEnvAsInt("DIGEST_HOUR", 23)
	cfg.DigestMinute = getEnvAsInt("DIGEST_MINUTE", 59)
	if cfg.DigestHour < 0 || cfg.DigestHour > 23 || cfg.DigestMinute < 0 || cfg.DigestMinute > 59 {
		errs = append(errs, "DIGEST_HOUR/DIGEST_MINUTE must form a valid UTC time")
	}

	// Telegram (optional: without a token the bot logs notifications instead)
	cfg.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")
	if cfg.TelegramToken != "" && cfg.TelegramChatID == "" {
		errs = append(errs, "TELEGRAM_CHAT_ID must be set when TELEGRAM_TOKEN is set")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/trading_logs.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
