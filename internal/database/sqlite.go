package database

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// NewSQLite opens (or creates) the SQLite database and runs migrations.
func NewSQLite(path string) (WeightStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &sqlStore{db: db}
	if err := s.migrate(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", path).Msg("sqlite weight store opened")
	return s, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS optimized_weights (
		id              TEXT NOT NULL,
		symbol          TEXT NOT NULL,
		timeframe       TEXT NOT NULL,
		training_window INTEGER NOT NULL,
		weights         TEXT NOT NULL,
		combo_label     TEXT NOT NULL,
		roi             REAL NOT NULL,
		win_rate        REAL NOT NULL,
		max_drawdown    REAL NOT NULL,
		sharpe_ratio    REAL NOT NULL,
		sortino_ratio   REAL NOT NULL,
		profit_factor   REAL NOT NULL,
		trade_count     INTEGER NOT NULL,
		created_at      INTEGER NOT NULL,
		PRIMARY KEY (symbol, timeframe, training_window)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_optimized_weights_created ON optimized_weights(created_at)`,
}
