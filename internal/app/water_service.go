package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitals/internal/domain"
)

// maxSummaryDays bounds an all-time water summary.
const maxSummaryDays = 366

// WaterService encapsulates water-tracking use cases.
type WaterService struct {
	repo domain.WaterRepository
	now  func() time.Time
}

// NewWaterService creates a WaterService backed by the given repository.
func NewWaterService(repo domain.WaterRepository) *WaterService {
	return &WaterService{repo: repo, now: time.Now}
}

// GetTodayTotal returns the total water intake in liters for the given local day.
func (s *WaterService) GetTodayTotal(ctx context.Context, userID int64, today string) (float64, error) {
	return s.repo.WaterTotalForLocalDay(ctx, userID, today)
}

// RecordEvent validates and stores a water intake event.
func (s *WaterService) RecordEvent(ctx context.Context, userID int64, deltaLiters float64) (int64, error) {
	if deltaLiters == 0 || deltaLiters < -10 || deltaLiters > 10 {
		return 0, errors.New("deltaLiters must be non-zero and within [-10, 10]")
	}
	return s.repo.AddWaterEvent(ctx, userID, deltaLiters, s.now())
}

// ListRecent returns the most recent water events up to limit.
func (s *WaterService) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.WaterEvent, error) {
	return s.repo.ListRecentWaterEvents(ctx, userID, limit)
}

// UndoLast deletes the most recent water event.
func (s *WaterService) UndoLast(ctx context.Context, userID int64) (bool, int64, error) {
	items, err := s.repo.ListRecentWaterEvents(ctx, userID, 1)
	if err != nil {
		return false, 0, err
	}
	if len(items) == 0 {
		return false, 0, nil
	}
	if err := s.repo.DeleteWaterEvent(ctx, userID, items[0].ID); err != nil {
		return false, 0, err
	}
	return true, items[0].ID, nil
}

// Summary returns one total per day of the window r anchored at ref, zero
// filled. The all-time window is clamped to the last maxSummaryDays days.
func (s *WaterService) Summary(ctx context.Context, userID int64, r domain.Range, ref time.Time) ([]domain.WaterDay, error) {
	window := domain.ComputeRange(r, ref)
	if window.Unbounded {
		window = domain.DateRange{
			Start: ref.AddDate(0, 0, -(maxSummaryDays - 1)).Format(domain.DayLayout),
			End:   ref.Format(domain.DayLayout),
		}
	}

	totals, err := s.repo.WaterTotalsByLocalDay(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("water totals: %w", err)
	}
	days := window.Days()
	out := make([]domain.WaterDay, 0, len(days))
	for _, d := range days {
		out = append(out, domain.WaterDay{Date: d, TotalLiters: totals[d]})
	}
	return out, nil
}
