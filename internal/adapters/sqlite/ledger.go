package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cryptoSwingBot/internal/domain"
	"cryptoSwingBot/internal/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Ledger implements ports.TradeLedger using SQLite. The store is opened once
// for the process lifetime and written by a single writer; WAL mode lets
// external readers (the dashboard) tolerate concurrent reads.
type Ledger struct {
	db     *sqlx.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite ledger.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// tradeRow maps the logs table. Column names are kept exactly as the
// dashboard expects them.
type tradeRow struct {
	ID        int64   `db:"id"`
	Pair      string  `db:"par"`
	Entry     float64 `db:"entrada"`
	Exit      float64 `db:"saida"`
	Profit    float64 `db:"lucro"`
	ReturnPct float64 `db:"retorno_percentual"`
	EntryTime string  `db:"hora_entrada"`
	ExitTime  string  `db:"hora_saida"`
}

// NewLedger creates a new SQLite ledger instance and initializes the schema.
func NewLedger(cfg Config) (*Ledger, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite ledger")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trading_logs.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite ledger initialization failed")
		return nil, err
	}

	// WAL mode for read-while-write; busy timeout covers dashboard readers.
	db, err := sqlx.Connect("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite ledger initialization failed")
		return nil, err
	}

	// Single connection: the ledger has exactly one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ledger := &Ledger{db: db, logger: cfg.Logger}
	if err := ledger.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite ledger initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite ledger ready", map[string]interface{}{"path": dbPath})
	return ledger, nil
}

// initializeSchema creates the logs table if it doesn't exist.
func (l *Ledger) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		par TEXT NOT NULL,
		entrada REAL NOT NULL,
		saida REAL NOT NULL,
		lucro REAL NOT NULL,
		retorno_percentual REAL NOT NULL,
		hora_entrada TEXT NOT NULL,
		hora_saida TEXT NOT NULL
	);`
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	if l.db != nil {
		l.logger.Info(context.Background(), "Closing SQLite ledger")
		return l.db.Close()
	}
	return nil
}

// Append persists a completed trade and returns its store-assigned ID.
func (l *Ledger) Append(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO logs (par, entrada, saida, lucro, retorno_percentual, hora_entrada, hora_saida)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := l.db.ExecContext(ctx, query,
		trade.Pair, trade.EntryPrice, trade.ExitPrice, trade.Profit, trade.ReturnPct,
		trade.EntryTime.UTC().Format(time.RFC3339Nano),
		trade.ExitTime.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade log for pair %s: %w: %w", trade.Pair, ports.ErrPersistence, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for pair %s: %w: %w", trade.Pair, ports.ErrPersistence, err)
	}
	trade.ID = id // Update the domain object with the ID
	l.logger.Debug(ctx, "Trade log appended", map[string]interface{}{"tradeID": id, "pair": trade.Pair, "profit": trade.Profit})
	return id, nil
}

// Recent retrieves the most recent trades, newest first, up to a limit.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]*domain.Trade, error) {
	const query = `
	SELECT id, par, entrada, saida, lucro, retorno_percentual, hora_entrada, hora_saida
	FROM logs ORDER BY id DESC LIMIT ?`

	var rows []tradeRow
	if err := l.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent trade logs: %w", err)
	}

	trades := make([]*domain.Trade, 0, len(rows))
	for _, row := range rows {
		trade, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode trade log %d: %w", row.ID, err)
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func (r tradeRow) toDomain() (*domain.Trade, error) {
	entryTime, err := time.Parse(time.RFC3339Nano, r.EntryTime)
	if err != nil {
		return nil, fmt.Errorf("invalid hora_entrada %q: %w", r.EntryTime, err)
	}
	exitTime, err := time.Parse(time.RFC3339Nano, r.ExitTime)
	if err != nil {
		return nil, fmt.Errorf("invalid hora_saida %q: %w", r.ExitTime, err)
	}
	return &domain.Trade{
		ID:         r.ID,
		Pair:       r.Pair,
		EntryPrice: r.Entry,
		ExitPrice:  r.Exit,
		Profit:     r.Profit,
		ReturnPct:  r.ReturnPct,
		EntryTime:  entryTime,
		ExitTime:   exitTime,
	}, nil
}
