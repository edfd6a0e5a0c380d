package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	signal "github.com/okian/lodestar/internal/domain/signal"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// SQLiteStore persists vessels, the signal registry and the sinks in a
// single SQLite database. A *sql.DB is a connection pool and is safe for
// concurrent request goroutines; pool exhaustion surfaces as an error on
// the calling request rather than blocking forever (busy_timeout bounds
// lock waits).
type SQLiteStore struct {
	sqlDB *sql.DB

	maxOpenConns int
	busyTimeout  time.Duration
}

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithMaxOpenConns bounds the connection pool.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithBusyTimeout sets how long a connection waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// Open opens (creating if needed) the SQLite database at path and applies
// the embedded migrations.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrInvalidPath
	}

	s := &SQLiteStore{
		maxOpenConns: 10,
		busyTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=%d&_synchronous=NORMAL",
		filepath.Clean(path), s.busyTimeout.Milliseconds())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(s.maxOpenConns)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s.sqlDB = sqlDB
	return s, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return ErrNotConfigured
	}
	return s.sqlDB.PingContext(ctx)
}

// VesselExists reports whether vesselID is registered and active.
func (s *SQLiteStore) VesselExists(ctx context.Context, vesselID string) (bool, error) {
	if s == nil || s.sqlDB == nil {
		return false, ErrNotConfigured
	}
	var exists bool
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM vessel_register WHERE vessel_id = ? AND is_active = 1)`,
		vesselID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("vessel lookup: %w", err)
	}
	return exists, nil
}

// SignalKinds loads the full signal registry.
func (s *SQLiteStore) SignalKinds(ctx context.Context) (map[string]signal.Kind, error) {
	if s == nil || s.sqlDB == nil {
		return nil, ErrNotConfigured
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT signal_name, signal_kind FROM signal_registry`,
	)
	if err != nil {
		return nil, fmt.Errorf("load signal registry: %w", err)
	}
	defer func() { _ = rows.Close() }()

	kinds := make(map[string]signal.Kind)
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, fmt.Errorf("scan signal registry row: %w", err)
		}
		kinds[name] = signal.KindFromString(kind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal registry: %w", err)
	}
	return kinds, nil
}

// WriteAccepted appends one reading to the raw store.
func (s *SQLiteStore) WriteAccepted(ctx context.Context, vesselID string, ts time.Time, name string, value float64) error {
	if s == nil || s.sqlDB == nil {
		return ErrNotConfigured
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO raw_signals (vessel_id, timestamp_utc, signal_name, signal_value)
		 VALUES (?, ?, ?, ?)`,
		vesselID, toMillis(ts), name, value,
	)
	if err != nil {
		return fmt.Errorf("insert raw signal: %w", err)
	}
	return nil
}

// WriteQuarantined appends one rejected reading to the filtered store.
// A NaN placeholder is stored as NULL (SQLite REAL has no NaN).
func (s *SQLiteStore) WriteQuarantined(ctx context.Context, vesselID string, ts time.Time, name string, value float64, reason string) error {
	if s == nil || s.sqlDB == nil {
		return ErrNotConfigured
	}
	stored := sql.NullFloat64{Float64: value, Valid: !math.IsNaN(value)}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO filtered_signals (vessel_id, timestamp_utc, signal_name, signal_value, reason)
		 VALUES (?, ?, ?, ?, ?)`,
		vesselID, toMillis(ts), name, stored, reason,
	)
	if err != nil {
		return fmt.Errorf("insert filtered signal: %w", err)
	}
	return nil
}

// WriteMetrics appends one per-request latency row.
func (s *SQLiteStore) WriteMetrics(ctx context.Context, vesselID string, validationMs, ingestionMs, totalMs int64) error {
	if s == nil || s.sqlDB == nil {
		return ErrNotConfigured
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO server_metrics (vessel_id, validation_ms, ingestion_ms, total_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		vesselID, validationMs, ingestionMs, totalMs, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert server metrics: %w", err)
	}
	return nil
}

// RegisterVessel upserts one vessel into the register. Used by seeding
// tooling and tests; the ingestion path never writes the register.
func (s *SQLiteStore) RegisterVessel(ctx context.Context, vesselID string, active bool) error {
	if s == nil || s.sqlDB == nil {
		return ErrNotConfigured
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO vessel_register (vessel_id, is_active) VALUES (?, ?)
		 ON CONFLICT(vessel_id) DO UPDATE SET is_active = excluded.is_active`,
		vesselID, active,
	)
	if err != nil {
		return fmt.Errorf("register vessel: %w", err)
	}
	return nil
}

// RegisterSignal upserts one signal definition. Takes effect for the
// pipeline only after a restart; the in-memory registry never reloads.
func (s *SQLiteStore) RegisterSignal(ctx context.Context, name string, kind signal.Kind) error {
	if s == nil || s.sqlDB == nil {
		return ErrNotConfigured
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO signal_registry (signal_name, signal_kind) VALUES (?, ?)
		 ON CONFLICT(signal_name) DO UPDATE SET signal_kind = excluded.signal_kind`,
		name, kind.String(),
	)
	if err != nil {
		return fmt.Errorf("register signal: %w", err)
	}
	return nil
}

// SinkCounts returns row counts across the three sinks.
func (s *SQLiteStore) SinkCounts(ctx context.Context) (SinkCounts, error) {
	if s == nil || s.sqlDB == nil {
		return SinkCounts{}, ErrNotConfigured
	}
	var counts SinkCounts
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(1) FROM raw_signals),
		   (SELECT COUNT(1) FROM filtered_signals),
		   (SELECT COUNT(1) FROM server_metrics)`,
	).Scan(&counts.RawRows, &counts.FilteredRows, &counts.MetricsRows)
	if err != nil {
		return SinkCounts{}, fmt.Errorf("count sink rows: %w", err)
	}
	return counts, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}
