package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"vitals/internal/domain"
)

// weightChannel carries the id of the user whose weights or goal changed.
const weightChannel = "weight_changes"

const weightColumns = "id, user_id, to_char(day, 'YYYY-MM-DD'), weight_lb, created_at, updated_at"

var (
	_ domain.WeightRepository  = (*DB)(nil)
	_ domain.GoalRepository    = (*DB)(nil)
	_ domain.WaterRepository   = (*DB)(nil)
	_ domain.UserRepository    = (*DB)(nil)
	_ domain.SessionRepository = (*SessionRepo)(nil)
)

type scanner interface {
	Scan(dest ...any) error
}

func scanWeight(s scanner) (*domain.WeightEntry, error) {
	var e domain.WeightEntry
	if err := s.Scan(&e.ID, &e.UserID, &e.Date, &e.WeightLb, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertWeight stores the weight for a day, replacing an existing entry.
func (d *DB) UpsertWeight(ctx context.Context, userID int64, day string, weightLb float64) (*domain.WeightEntry, error) {
	now := time.Now().UTC()
	e, err := scanWeight(d.sql.QueryRowContext(ctx,
		"INSERT INTO weight_entries(user_id, day, weight_lb, created_at, updated_at) VALUES($1, $2, $3, $4, $4) "+
			"ON CONFLICT (user_id, day) DO UPDATE SET weight_lb = EXCLUDED.weight_lb, updated_at = EXCLUDED.updated_at "+
			"RETURNING "+weightColumns+";",
		userID, day, weightLb, now,
	))
	if err != nil {
		return nil, err
	}
	d.notify(ctx, userID)
	return e, nil
}

// UpdateWeight edits an entry by id. Moving it onto a day that already has
// an entry returns domain.ErrDuplicateDay.
func (d *DB) UpdateWeight(ctx context.Context, userID, id int64, day string, weightLb float64) (*domain.WeightEntry, error) {
	e, err := scanWeight(d.sql.QueryRowContext(ctx,
		"UPDATE weight_entries SET day = $1, weight_lb = $2, updated_at = $3 WHERE id = $4 AND user_id = $5 RETURNING "+weightColumns+";",
		day, weightLb, time.Now().UTC(), id, userID,
	))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.ErrNotFound
	case IsUniqueViolation(err):
		return nil, domain.ErrDuplicateDay
	case err != nil:
		return nil, err
	}
	d.notify(ctx, userID)
	return e, nil
}

// DeleteWeight removes an entry by id.
func (d *DB) DeleteWeight(ctx context.Context, userID, id int64) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM weight_entries WHERE id = $1 AND user_id = $2;", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	d.notify(ctx, userID)
	return nil
}

// ListWeights returns every entry of the user ordered by day.
func (d *DB) ListWeights(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+weightColumns+" FROM weight_entries WHERE user_id = $1 ORDER BY day;", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.WeightEntry{}
	for rows.Next() {
		e, err := scanWeight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (d *DB) notify(ctx context.Context, userID int64) {
	if _, err := d.sql.ExecContext(ctx, "SELECT pg_notify($1, $2);", weightChannel, strconv.FormatInt(userID, 10)); err != nil {
		log.WithError(err).Warn("notify weight change")
	}
}

// SubscribeWeights sends the current snapshot and one after every change
// until ctx is done. Changes are observed through LISTEN/NOTIFY, so writes
// from other processes are delivered too. All subscriptions share the one
// listener connection of the DB.
func (d *DB) SubscribeWeights(ctx context.Context, userID int64) (<-chan []domain.WeightEntry, error) {
	wake, err := d.hub.subscribe(userID)
	if err != nil {
		return nil, err
	}

	first, err := d.ListWeights(ctx, userID)
	if err != nil {
		d.hub.unregister(userID, wake)
		return nil, err
	}

	out := make(chan []domain.WeightEntry, 1)
	out <- first

	go func() {
		defer close(out)
		defer d.hub.unregister(userID, wake)

		for {
			select {
			case <-ctx.Done():
				return
			case <-wake:
			}

			snap, err := d.ListWeights(ctx, userID)
			if err != nil {
				if ctx.Err() == nil {
					log.WithError(err).Warn("reload weights")
				}
				continue
			}
			select {
			case <-out:
			default:
			}
			out <- snap
		}
	}()
	return out, nil
}

// --- GoalRepository ---

// GetGoal returns the user's goal or nil if none is set.
func (d *DB) GetGoal(ctx context.Context, userID int64) (*domain.Goal, error) {
	var g domain.Goal
	var dir string
	err := d.sql.QueryRowContext(ctx,
		"SELECT user_id, target_weight_lb, direction, updated_at FROM goals WHERE user_id = $1;", userID,
	).Scan(&g.UserID, &g.TargetWeightLb, &dir, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	g.Direction = domain.Direction(dir)
	return &g, nil
}

// SaveGoal replaces the user's goal.
func (d *DB) SaveGoal(ctx context.Context, g domain.Goal) (*domain.Goal, error) {
	g.UpdatedAt = time.Now().UTC()
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO goals(user_id, target_weight_lb, direction, updated_at) VALUES($1, $2, $3, $4) "+
			"ON CONFLICT (user_id) DO UPDATE SET target_weight_lb = EXCLUDED.target_weight_lb, direction = EXCLUDED.direction, updated_at = EXCLUDED.updated_at;",
		g.UserID, g.TargetWeightLb, string(g.Direction), g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.notify(ctx, g.UserID)
	return &g, nil
}
