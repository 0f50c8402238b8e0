package app

import (
	"context"
	"errors"

	"vitals/internal/domain"
)

// GoalService manages the user's target weight.
type GoalService struct {
	repo domain.GoalRepository
}

// NewGoalService creates a GoalService backed by the given repository.
func NewGoalService(repo domain.GoalRepository) *GoalService {
	return &GoalService{repo: repo}
}

// GetGoal returns the user's goal, or nil if none is set.
func (s *GoalService) GetGoal(ctx context.Context, userID int64) (*domain.Goal, error) {
	g, err := s.repo.GetGoal(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return g, err
}

// SetGoal validates the target like any weight input and stores it in
// pounds. An empty direction means it is inferred from history.
func (s *GoalService) SetGoal(ctx context.Context, userID int64, target, unit, direction string) (*domain.Goal, error) {
	u, err := domain.ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	v, err := domain.ValidateWeight(target, u)
	if err != nil {
		return nil, err
	}
	d, err := domain.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	return s.repo.SaveGoal(ctx, domain.Goal{
		UserID:         userID,
		TargetWeightLb: domain.ToStorage(v, u),
		Direction:      d,
	})
}
