// Package storage persists finished runs and their trade ledgers in
// SQLite. The driver is pure Go, no CGo.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rleiva87/candlesim/backtest"
	"github.com/rleiva87/candlesim/metrics"
	"github.com/rleiva87/candlesim/signal"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    created_at      DATETIME NOT NULL,
    symbol          TEXT    NOT NULL,
    source          TEXT    NOT NULL,
    bars            INTEGER NOT NULL,
    initial_capital REAL    NOT NULL,
    final_equity    REAL    NOT NULL,
    net_return      REAL    NOT NULL DEFAULT 0,
    total_trades    INTEGER NOT NULL DEFAULT 0,
    win_rate        REAL    NOT NULL DEFAULT 0,
    sharpe          REAL    NOT NULL DEFAULT 0,
    max_drawdown    REAL    NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trades (
    run_id      TEXT    NOT NULL REFERENCES runs(id),
    seq         INTEGER NOT NULL,
    side        TEXT    NOT NULL,
    entry_time  INTEGER NOT NULL,
    exit_time   INTEGER NOT NULL,
    entry_price REAL    NOT NULL,
    exit_price  REAL    NOT NULL,
    quantity    REAL    NOT NULL,
    pnl         REAL    NOT NULL,
    pnl_percent REAL    NOT NULL,
    commission  REAL    NOT NULL,
    exit_reason TEXT    NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_run   ON trades(run_id);
`

// Run is the stored summary row of one finished simulation.
type Run struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Symbol         string    `json:"symbol"`
	Source         string    `json:"source"`
	Bars           int       `json:"bars"`
	InitialCapital float64   `json:"initial_capital"`
	FinalEquity    float64   `json:"final_equity"`
	NetReturn      float64   `json:"net_return"`
	TotalTrades    int       `json:"total_trades"`
	WinRate        float64   `json:"win_rate"`
	Sharpe         float64   `json:"sharpe"`
	MaxDrawdown    float64   `json:"max_drawdown"`
}

// Store wraps the SQLite handle. Safe for concurrent use through the
// single-writer connection limit.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.Open: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.Open: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun stores the run row and its full trade ledger in one
// transaction and returns the generated run id.
func (s *Store) SaveRun(ctx context.Context, symbol, source string, bars int, res backtest.Result, sum metrics.Summary) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, created_at, symbol, source, bars, initial_capital, final_equity,
			 net_return, total_trades, win_rate, sharpe, max_drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, now, symbol, source, bars,
		res.InitialCapital, res.FinalEquity,
		sum.NetReturn, sum.TotalTrades, sum.WinRate, sum.Sharpe, sum.MaxDrawdown,
	); err != nil {
		return "", fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(run_id, seq, side, entry_time, exit_time, entry_price, exit_price,
			 quantity, pnl, pnl_percent, commission, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for i, t := range res.Trades {
		if _, err := stmt.ExecContext(ctx,
			id, i, t.Side.String(), t.EntryTime, t.ExitTime,
			t.EntryPrice, t.ExitPrice, t.Quantity,
			t.PnL, t.PnLPercent, t.Commission, string(t.ExitReason),
		); err != nil {
			return "", fmt.Errorf("storage.SaveRun: insert trade %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, symbol, source, bars, initial_capital, final_equity,
		       net_return, total_trades, win_rate, sharpe, max_drawdown
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.CreatedAt, &r.Symbol, &r.Source, &r.Bars,
			&r.InitialCapital, &r.FinalEquity,
			&r.NetReturn, &r.TotalTrades, &r.WinRate, &r.Sharpe, &r.MaxDrawdown,
		); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run row by id, sql.ErrNoRows if absent.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, symbol, source, bars, initial_capital, final_equity,
		       net_return, total_trades, win_rate, sharpe, max_drawdown
		FROM runs WHERE id = ?
	`, id).Scan(
		&r.ID, &r.CreatedAt, &r.Symbol, &r.Source, &r.Bars,
		&r.InitialCapital, &r.FinalEquity,
		&r.NetReturn, &r.TotalTrades, &r.WinRate, &r.Sharpe, &r.MaxDrawdown,
	)
	if err != nil {
		return Run{}, fmt.Errorf("storage.GetRun: %q: %w", id, err)
	}
	return r, nil
}

// GetTrades returns the trade ledger of a run in original order.
func (s *Store) GetTrades(ctx context.Context, runID string) ([]backtest.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT side, entry_time, exit_time, entry_price, exit_price,
		       quantity, pnl, pnl_percent, commission, exit_reason
		FROM trades WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetTrades: query: %w", err)
	}
	defer rows.Close()

	trades := []backtest.Trade{}
	for rows.Next() {
		var t backtest.Trade
		var side, reason string
		if err := rows.Scan(
			&side, &t.EntryTime, &t.ExitTime, &t.EntryPrice, &t.ExitPrice,
			&t.Quantity, &t.PnL, &t.PnLPercent, &t.Commission, &reason,
		); err != nil {
			return nil, fmt.Errorf("storage.GetTrades: scan row: %w", err)
		}
		t.Side = parseSide(side)
		t.ExitReason = backtest.ExitReason(reason)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func parseSide(s string) signal.Direction {
	switch s {
	case "long":
		return signal.Long
	case "short":
		return signal.Short
	}
	return signal.Hold
}
