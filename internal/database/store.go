package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alias1177/SignalLab/models"
)

var ErrNotFound = errors.New("weights not found")

// Key identifies a stored optimization result.
type Key struct {
	Symbol         string
	Timeframe      string
	TrainingWindow int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Symbol, k.Timeframe, k.TrainingWindow)
}

// WeightRecord is the persisted winner of one optimization.
type WeightRecord struct {
	ID         string
	Key        Key
	Weights    models.WeightVector
	ComboLabel string

	ROI          float64
	WinRate      float64
	MaxDrawdown  float64
	SharpeRatio  float64
	SortinoRatio float64
	ProfitFactor float64
	TradeCount   int

	CreatedAt time.Time
}

// NewWeightRecord builds a record from an optimization result.
func NewWeightRecord(key Key, res *models.OptimizationResult) *WeightRecord {
	return &WeightRecord{
		ID:           uuid.NewString(),
		Key:          key,
		Weights:      res.BestWeights,
		ComboLabel:   res.BestComboLabel,
		ROI:          res.Performance.ROI,
		WinRate:      res.Performance.WinRate,
		MaxDrawdown:  res.Performance.MaxDrawdown,
		SharpeRatio:  res.Performance.SharpeRatio,
		SortinoRatio: res.Performance.SortinoRatio,
		ProfitFactor: res.Performance.ProfitFactor,
		TradeCount:   res.Performance.TradeCount,
		CreatedAt:    time.Now().UTC(),
	}
}

// WeightStore persists optimized weights keyed by symbol, timeframe and
// training window. Saving an existing key replaces the record.
type WeightStore interface {
	Get(ctx context.Context, key Key) (*WeightRecord, error)
	Save(ctx context.Context, rec *WeightRecord) error
	List(ctx context.Context, symbol string) ([]WeightRecord, error)
	Delete(ctx context.Context, key Key) error
	Close() error
}

// Compile-time interface check.
var _ WeightStore = (*sqlStore)(nil)

// sqlStore implements WeightStore for any database/sql driver. Queries are
// written with ? placeholders and rebound for the dialect.
type sqlStore struct {
	db     *sql.DB
	dollar bool
}

const columns = `id, symbol, timeframe, training_window, weights, combo_label,
	roi, win_rate, max_drawdown, sharpe_ratio, sortino_ratio, profit_factor, trade_count, created_at`

func (s *sqlStore) rebind(query string) string {
	if !s.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) migrate(stmts []string) error {
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, key Key) (*WeightRecord, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+columns+` FROM optimized_weights
		WHERE symbol = ? AND timeframe = ? AND training_window = ?`),
		key.Symbol, key.Timeframe, key.TrainingWindow)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get weights %s: %w", key, err)
	}
	return rec, nil
}

func (s *sqlStore) Save(ctx context.Context, rec *WeightRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	weights, err := json.Marshal(rec.Weights)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO optimized_weights (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, timeframe, training_window)
		DO UPDATE SET
			id = excluded.id,
			weights = excluded.weights,
			combo_label = excluded.combo_label,
			roi = excluded.roi,
			win_rate = excluded.win_rate,
			max_drawdown = excluded.max_drawdown,
			sharpe_ratio = excluded.sharpe_ratio,
			sortino_ratio = excluded.sortino_ratio,
			profit_factor = excluded.profit_factor,
			trade_count = excluded.trade_count,
			created_at = excluded.created_at
	`),
		rec.ID, rec.Key.Symbol, rec.Key.Timeframe, rec.Key.TrainingWindow, string(weights), rec.ComboLabel,
		rec.ROI, rec.WinRate, rec.MaxDrawdown, rec.SharpeRatio, rec.SortinoRatio, rec.ProfitFactor, rec.TradeCount,
		rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save weights %s: %w", rec.Key, err)
	}
	return nil
}

func (s *sqlStore) List(ctx context.Context, symbol string) ([]WeightRecord, error) {
	query := `SELECT ` + columns + ` FROM optimized_weights`
	var args []any
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY symbol, timeframe, training_window`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	defer rows.Close()

	var out []WeightRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *sqlStore) Delete(ctx context.Context, key Key) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM optimized_weights
		WHERE symbol = ? AND timeframe = ? AND training_window = ?`),
		key.Symbol, key.Timeframe, key.TrainingWindow)
	if err != nil {
		return fmt.Errorf("delete weights %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*WeightRecord, error) {
	var (
		rec       WeightRecord
		weights   string
		createdAt int64
	)
	if err := row.Scan(&rec.ID, &rec.Key.Symbol, &rec.Key.Timeframe, &rec.Key.TrainingWindow, &weights, &rec.ComboLabel,
		&rec.ROI, &rec.WinRate, &rec.MaxDrawdown, &rec.SharpeRatio, &rec.SortinoRatio, &rec.ProfitFactor, &rec.TradeCount,
		&createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(weights), &rec.Weights); err != nil {
		return nil, fmt.Errorf("decode weights of %s: %w", rec.Key, err)
	}
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &rec, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
