package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds a lib/pq connection string.
func (p ConnectionParams) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// NewPostgres connects to PostgreSQL and creates the tables if needed. dsn is
// either a URL or a key=value connection string.
func NewPostgres(ctx context.Context, dsn string) (WeightStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Check connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &sqlStore{db: db, dollar: true}
	if err := s.migrate(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS optimized_weights (
		id              TEXT NOT NULL,
		symbol          TEXT NOT NULL,
		timeframe       TEXT NOT NULL,
		training_window INTEGER NOT NULL,
		weights         TEXT NOT NULL,
		combo_label     TEXT NOT NULL,
		roi             DOUBLE PRECISION NOT NULL,
		win_rate        DOUBLE PRECISION NOT NULL,
		max_drawdown    DOUBLE PRECISION NOT NULL,
		sharpe_ratio    DOUBLE PRECISION NOT NULL,
		sortino_ratio   DOUBLE PRECISION NOT NULL,
		profit_factor   DOUBLE PRECISION NOT NULL,
		trade_count     INTEGER NOT NULL,
		created_at      BIGINT NOT NULL,
		PRIMARY KEY (symbol, timeframe, training_window)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_optimized_weights_created ON optimized_weights(created_at)`,
}
