package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"vitals/internal/domain"
)

// DashboardService turns a user's weight history into the dashboard view.
type DashboardService struct {
	weights domain.WeightRepository
	goals   domain.GoalRepository
}

// NewDashboardService creates a DashboardService backed by the given
// repositories.
func NewDashboardService(wr domain.WeightRepository, gr domain.GoalRepository) *DashboardService {
	return &DashboardService{weights: wr, goals: gr}
}

// DashboardQuery selects the window and display unit.
type DashboardQuery struct {
	Range domain.Range
	Ref   time.Time
	Unit  domain.Unit
}

// LatestWeight is the most recent entry in the display unit.
type LatestWeight struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// Dashboard is everything the weight page renders for one query.
type Dashboard struct {
	Range    domain.Range        `json:"range"`
	Unit     domain.Unit         `json:"unit"`
	Window   domain.DateRange    `json:"window"`
	Chart    []domain.ChartPoint `json:"chart"`
	Table    []domain.TableRow   `json:"table"`
	Average  *float64            `json:"average"`
	Latest   *LatestWeight       `json:"latest"`
	Goal     *domain.GoalStatus  `json:"goal"`
	Count    int                 `json:"count"`
	Degraded int                 `json:"degraded"`
}

// Build loads the user's entries and goal and composes the dashboard.
func (s *DashboardService) Build(ctx context.Context, userID int64, q DashboardQuery) (*Dashboard, error) {
	entries, err := s.weights.ListWeights(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	goal, err := s.loadGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ComposeDashboard(entries, goal, q), nil
}

// Stream builds a fresh dashboard for every snapshot the repository
// delivers. The returned channel closes when ctx is done or the
// subscription ends.
func (s *DashboardService) Stream(ctx context.Context, userID int64, q DashboardQuery) (<-chan *Dashboard, error) {
	snapshots, err := s.weights.SubscribeWeights(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("subscribe weights: %w", err)
	}

	out := make(chan *Dashboard)
	go func() {
		defer close(out)
		for entries := range snapshots {
			goal, err := s.loadGoal(ctx, userID)
			if err != nil {
				log.Warnf("dashboard stream: user %d: %s", userID, err)
			}
			d := ComposeDashboard(entries, goal, q)
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *DashboardService) loadGoal(ctx context.Context, userID int64) (*domain.Goal, error) {
	if s.goals == nil {
		return nil, nil
	}
	g, err := s.goals.GetGoal(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load goal: %w", err)
	}
	return g, nil
}

// ComposeDashboard runs the analytics pipeline over a snapshot. It has no
// side effects other than a debug log for degraded buckets.
func ComposeDashboard(entries []domain.WeightEntry, goal *domain.Goal, q DashboardQuery) *Dashboard {
	window := domain.ComputeRange(q.Range, q.Ref)
	filtered := domain.FilterByRange(entries, window)
	aggregated := domain.Aggregate(filtered, q.Range)

	d := &Dashboard{
		Range:  q.Range,
		Unit:   q.Unit,
		Window: window,
		Chart:  domain.PresentChart(aggregated, q.Unit),
		Table:  domain.PresentTable(aggregated, q.Unit),
		Count:  len(filtered),
	}
	for _, a := range aggregated {
		if a.Degraded {
			d.Degraded++
			log.Debugf("dashboard: bucket %s fell back to its first weight", a.BucketKey)
		}
	}

	if mean, ok := domain.MeanWeight(filtered); ok {
		avg := domain.DisplayWeight(mean, q.Unit)
		d.Average = &avg
	}

	latest, ok := domain.LatestEntry(entries)
	if !ok {
		return d
	}
	d.Latest = &LatestWeight{Date: latest.Date, Weight: domain.DisplayWeight(latest.WeightLb, q.Unit)}
	if goal != nil {
		st := domain.EvaluateGoal(latest.WeightLb, goal.TargetWeightLb, entries, goal.Direction, q.Unit)
		d.Goal = &st
	}
	return d
}
