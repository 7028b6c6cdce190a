// Package store executes synthesized SQL against Postgres and returns rows
// as JSON-safe maps. Numerics come back as float64, timestamps as ISO-8601
// strings, so results can be marshaled and charted without type switches
// downstream.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 30 * time.Second

// Row is a single result row keyed by column name.
type Row map[string]any

// ResultSet carries rows plus the column order of the statement, which the
// row maps cannot preserve on their own.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Querier executes a read-only statement and returns JSON-safe rows.
type Querier interface {
	Query(ctx context.Context, sql string) (*ResultSet, error)
}

// Postgres is a pgx-backed Querier with a bounded per-query timeout.
type Postgres struct {
	pool    *pgxpool.Pool
	log     *slog.Logger
	timeout time.Duration
}

// Option configures a Postgres store.
type Option func(*Postgres)

// WithQueryTimeout overrides the per-query timeout.
func WithQueryTimeout(d time.Duration) Option {
	return func(p *Postgres) { p.timeout = d }
}

// NewPostgres connects a pool to the given DSN and verifies connectivity.
func NewPostgres(ctx context.Context, dsn string, log *slog.Logger, opts ...Option) (*Postgres, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{
		pool:    pool,
		log:     log,
		timeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Query runs the statement and returns all rows with JSON-safe values.
func (p *Postgres) Query(ctx context.Context, sql string) (*ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	rs := &ResultSet{Columns: columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}
		row := make(Row, len(fields))
		for i, name := range columns {
			row[name] = jsonSafe(values[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	p.log.Debug("query executed", "rows", len(rs.Rows), "duration", time.Since(start))
	return rs, nil
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// jsonSafe coerces driver values into types that marshal cleanly and that
// the result shapers can consume without reflection: numerics to float64,
// timestamps to ISO-8601 strings, byte slices to strings.
func jsonSafe(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return val
	}
}
