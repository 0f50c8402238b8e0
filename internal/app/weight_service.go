package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitals/internal/domain"
)

// ErrInvalidDate is returned when an entry's date cannot be read.
var ErrInvalidDate = errors.New("invalid date")

// WeightService encapsulates weight-tracking use cases.
type WeightService struct {
	repo  domain.WeightRepository
	goals domain.GoalRepository
	now   func() time.Time
}

// NewWeightService creates a WeightService backed by the given repositories.
func NewWeightService(repo domain.WeightRepository, goals domain.GoalRepository) *WeightService {
	return &WeightService{repo: repo, goals: goals, now: time.Now}
}

// WeightInput is a weight as entered by the user. Value is the raw text of
// the number so that unreadable input is reported against the unit.
type WeightInput struct {
	Date  string
	Value string
	Unit  string
}

// RecordResult is the stored entry plus whether the latest entry now meets
// the user's goal.
type RecordResult struct {
	Entry       *domain.WeightEntry `json:"entry"`
	GoalReached bool                `json:"goalReached"`
}

// RecordWeight validates the input, converts it to pounds and stores it for
// its day, replacing any entry already on that day. An empty date means
// today.
func (s *WeightService) RecordWeight(ctx context.Context, userID int64, in WeightInput) (*RecordResult, error) {
	day, lb, err := s.parseInput(in)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.UpsertWeight(ctx, userID, day, lb)
	if err != nil {
		return nil, fmt.Errorf("record weight: %w", err)
	}
	reached, err := s.latestMeetsGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &RecordResult{Entry: entry, GoalReached: reached}, nil
}

// UpdateWeight edits an existing entry by id.
func (s *WeightService) UpdateWeight(ctx context.Context, userID, id int64, in WeightInput) (*RecordResult, error) {
	day, lb, err := s.parseInput(in)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.UpdateWeight(ctx, userID, id, day, lb)
	if err != nil {
		return nil, fmt.Errorf("update weight %d: %w", id, err)
	}
	reached, err := s.latestMeetsGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &RecordResult{Entry: entry, GoalReached: reached}, nil
}

// DeleteWeight removes an entry by id.
func (s *WeightService) DeleteWeight(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteWeight(ctx, userID, id); err != nil {
		return fmt.Errorf("delete weight %d: %w", id, err)
	}
	return nil
}

// ListWeights returns every entry of the user, oldest first.
func (s *WeightService) ListWeights(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	items, err := s.repo.ListWeights(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.FilterByRange(items, domain.DateRange{Unbounded: true}), nil
}

func (s *WeightService) parseInput(in WeightInput) (string, float64, error) {
	unit, err := domain.ParseUnit(in.Unit)
	if err != nil {
		return "", 0, err
	}
	v, err := domain.ValidateWeight(in.Value, unit)
	if err != nil {
		return "", 0, err
	}
	day := in.Date
	if day == "" {
		day = s.now().In(time.Local).Format(domain.DayLayout)
	}
	day, err = domain.NormalizeDay(day, time.Local)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return day, domain.ToStorage(v, unit), nil
}

// latestMeetsGoal evaluates the goal against the chronologically latest
// entry, which includes anything just written.
func (s *WeightService) latestMeetsGoal(ctx context.Context, userID int64) (bool, error) {
	if s.goals == nil {
		return false, nil
	}
	goal, err := s.goals.GetGoal(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("load goal: %w", err)
	}
	if goal == nil {
		return false, nil
	}
	all, err := s.repo.ListWeights(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list weights: %w", err)
	}
	latest, ok := domain.LatestEntry(all)
	if !ok {
		return false, nil
	}
	st := domain.EvaluateGoal(latest.WeightLb, goal.TargetWeightLb, all, goal.Direction, domain.UnitLb)
	return st.Reached, nil
}
