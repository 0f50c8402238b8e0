// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"vitals/internal/domain"
)

const uniqueViolation = "23505"

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
	hub *changeHub
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s, hub: newChangeHub(connStr)}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close stops the change listener and closes the database connection.
func (d *DB) Close() error {
	return multierr.Combine(d.hub.close(), d.sql.Close())
}

// Ping checks the connection, for health checks.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS weight_entries (id BIGSERIAL PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, day DATE NOT NULL, weight_lb DOUBLE PRECISION NOT NULL CHECK(weight_lb > 0), created_at TIMESTAMPTZ NOT NULL, updated_at TIMESTAMPTZ NOT NULL, UNIQUE(user_id, day));",
		"CREATE TABLE IF NOT EXISTS goals (user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE, target_weight_lb DOUBLE PRECISION NOT NULL, direction TEXT NOT NULL DEFAULT '' CHECK(direction IN ('','lose','gain')), updated_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS water_events (id BIGSERIAL PRIMARY KEY, delta_liters DOUBLE PRECISION NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_water_events_created_at ON water_events(created_at);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	alterStmts := []string{
		"ALTER TABLE water_events ADD COLUMN IF NOT EXISTS user_id BIGINT REFERENCES users(id);",
		"CREATE INDEX IF NOT EXISTS idx_water_events_user_id ON water_events(user_id);",
		"ALTER TABLE sessions ADD COLUMN IF NOT EXISTS user_agent TEXT NOT NULL DEFAULT '';",
		"ALTER TABLE sessions ADD COLUMN IF NOT EXISTS ip TEXT NOT NULL DEFAULT '';",
	}
	for _, stmt := range alterStmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Assign orphaned events to the first user if one exists.
	_, _ = d.sql.ExecContext(ctx, "UPDATE water_events SET user_id = (SELECT id FROM users ORDER BY id LIMIT 1) WHERE user_id IS NULL AND EXISTS (SELECT 1 FROM users);")

	return d.migrateLegacyWeights(ctx)
}

// legacyRow is one row of the old weight_events table, which stored the
// value in the unit it was entered in and one row per reading.
type legacyRow struct {
	UserID    int64
	Value     float64
	Unit      string
	CreatedAt time.Time
}

// migrateLegacyWeights copies weight_events into weight_entries once, when
// the new table is still empty.
func (d *DB) migrateLegacyWeights(ctx context.Context) error {
	var legacy sql.NullString
	if err := d.sql.QueryRowContext(ctx, "SELECT to_regclass('public.weight_events')::text;").Scan(&legacy); err != nil {
		return fmt.Errorf("migrate: look up weight_events: %w", err)
	}
	if !legacy.Valid {
		return nil
	}
	var count int
	if err := d.sql.QueryRowContext(ctx, "SELECT COUNT(1) FROM weight_entries;").Scan(&count); err != nil {
		return fmt.Errorf("migrate: count weight_entries: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows, err := d.sql.QueryContext(ctx,
		"SELECT user_id, value, unit, created_at FROM weight_events WHERE user_id IS NOT NULL ORDER BY created_at;")
	if err != nil {
		return fmt.Errorf("migrate: read weight_events: %w", err)
	}
	var in []legacyRow
	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(&r.UserID, &r.Value, &r.Unit, &r.CreatedAt); err != nil {
			_ = rows.Close()
			return fmt.Errorf("migrate: scan weight_events: %w", err)
		}
		in = append(in, r)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("migrate: read weight_events: %w", err)
	}

	entries, skipped := collapseLegacy(in, time.Local)
	if skipped > 0 {
		log.Warnf("migrate: skipped %d unreadable weight_events rows", skipped)
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO weight_entries(user_id, day, weight_lb, created_at, updated_at) VALUES($1, $2, $3, $4, $4) ON CONFLICT (user_id, day) DO NOTHING;",
			e.UserID, e.Date, e.WeightLb, e.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("migrate: insert weight_entries: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Infof("migrate: moved %d legacy weight readings into %d daily entries", len(in), len(entries))
	return nil
}

// collapseLegacy converts legacy readings into one canonical entry per user
// and local day. The latest reading of a day wins. Rows whose unit is not
// recognised are skipped and counted.
func collapseLegacy(rows []legacyRow, loc *time.Location) ([]domain.WeightEntry, int) {
	type key struct {
		user int64
		day  string
	}
	latest := make(map[key]domain.WeightEntry)
	skipped := 0
	for _, r := range rows {
		day, err := domain.NormalizeDay(r.CreatedAt, loc)
		if err != nil {
			skipped++
			continue
		}
		lb, err := domain.NormalizeWeight(nil, &domain.LegacyWeight{Value: r.Value, Unit: domain.Unit(r.Unit)})
		if err != nil || domain.CheckWeight(lb, domain.UnitLb) != nil {
			skipped++
			continue
		}
		k := key{r.UserID, day}
		if prev, ok := latest[k]; ok && prev.CreatedAt.After(r.CreatedAt) {
			continue
		}
		latest[k] = domain.WeightEntry{UserID: r.UserID, Date: day, WeightLb: lb, CreatedAt: r.CreatedAt, UpdatedAt: r.CreatedAt}
	}

	out := make([]domain.WeightEntry, 0, len(latest))
	for _, e := range latest {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Date < out[j].Date
	})
	return out, skipped
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
