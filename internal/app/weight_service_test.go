package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitals/internal/app"
	"vitals/internal/domain"
)

func TestRecordWeight_Validation(t *testing.T) {
	svc := app.NewWeightService(&mockWeightRepo{}, &mockGoalRepo{})

	tests := []struct {
		name string
		in   app.WeightInput
	}{
		{"zero value", app.WeightInput{Value: "0", Unit: "kg"}},
		{"negative value", app.WeightInput{Value: "-5", Unit: "kg"}},
		{"too heavy lb", app.WeightInput{Value: "1501", Unit: "lb"}},
		{"too heavy kg", app.WeightInput{Value: "701", Unit: "kg"}},
		{"bad unit", app.WeightInput{Value: "80", Unit: "stones"}},
		{"bad date", app.WeightInput{Date: "yesterday", Value: "80", Unit: "kg"}},
		{"not a number", app.WeightInput{Value: "heavy", Unit: "kg"}},
		{"empty value", app.WeightInput{Unit: "kg"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordWeight(context.Background(), 1, tc.in)
			if err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRecordWeight_UnreadableValueNamesUnit(t *testing.T) {
	svc := app.NewWeightService(&mockWeightRepo{}, &mockGoalRepo{})
	_, err := svc.RecordWeight(context.Background(), 1, app.WeightInput{Value: "heavy", Unit: "kg"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.UnitKg, verr.Unit)
	assert.Contains(t, err.Error(), "kg")
}

func TestRecordWeight_BadDateIsInvalidDate(t *testing.T) {
	svc := app.NewWeightService(&mockWeightRepo{}, &mockGoalRepo{})
	_, err := svc.RecordWeight(context.Background(), 1, app.WeightInput{Date: "31/01/2025", Value: "150", Unit: "lb"})
	assert.ErrorIs(t, err, app.ErrInvalidDate)
}

func TestRecordWeight_ConvertsToPounds(t *testing.T) {
	var gotDay string
	var gotLb float64
	repo := &mockWeightRepo{
		upsertFn: func(_ context.Context, userID int64, day string, lb float64) (*domain.WeightEntry, error) {
			gotDay, gotLb = day, lb
			return &domain.WeightEntry{ID: 9, UserID: userID, Date: day, WeightLb: lb}, nil
		},
	}
	svc := app.NewWeightService(repo, &mockGoalRepo{})

	res, err := svc.RecordWeight(context.Background(), 1, app.WeightInput{Date: "2025-01-15", Value: "70", Unit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", gotDay)
	assert.Equal(t, 154.3, gotLb)
	assert.Equal(t, int64(9), res.Entry.ID)
	assert.False(t, res.GoalReached)
}

func TestRecordWeight_DefaultsToToday(t *testing.T) {
	var gotDay string
	repo := &mockWeightRepo{
		upsertFn: func(_ context.Context, _ int64, day string, lb float64) (*domain.WeightEntry, error) {
			gotDay = day
			return &domain.WeightEntry{ID: 1, Date: day, WeightLb: lb}, nil
		},
	}
	svc := app.NewWeightService(repo, nil)
	_, err := svc.RecordWeight(context.Background(), 1, app.WeightInput{Value: "180", Unit: "lb"})
	require.NoError(t, err)
	_, err = domain.NormalizeDay(gotDay, nil)
	assert.NoError(t, err)
}

func TestRecordWeight_GoalReachedUsesLatestEntry(t *testing.T) {
	stored := []domain.WeightEntry{
		{ID: 1, Date: "2025-01-01", WeightLb: 160},
		{ID: 2, Date: "2025-02-01", WeightLb: 152},
	}
	repo := &mockWeightRepo{
		upsertFn: func(_ context.Context, _ int64, day string, lb float64) (*domain.WeightEntry, error) {
			e := domain.WeightEntry{ID: 3, Date: day, WeightLb: lb}
			stored = append(stored, e)
			return &e, nil
		},
		listFn: func(_ context.Context, _ int64) ([]domain.WeightEntry, error) {
			return stored, nil
		},
	}
	goals := &mockGoalRepo{
		getFn: func(_ context.Context, _ int64) (*domain.Goal, error) {
			return &domain.Goal{TargetWeightLb: 150, Direction: domain.DirectionLose}, nil
		},
	}
	svc := app.NewWeightService(repo, goals)

	// An old entry below target does not count: the latest is still 152.
	res, err := svc.RecordWeight(context.Background(), 1, app.WeightInput{Date: "2024-12-01", Value: "149", Unit: "lb"})
	require.NoError(t, err)
	assert.False(t, res.GoalReached)

	res, err = svc.RecordWeight(context.Background(), 1, app.WeightInput{Date: "2025-03-01", Value: "149.5", Unit: "lb"})
	require.NoError(t, err)
	assert.True(t, res.GoalReached)
}

func TestRecordWeight_RepoError(t *testing.T) {
	repo := &mockWeightRepo{
		upsertFn: func(_ context.Context, _ int64, _ string, _ float64) (*domain.WeightEntry, error) {
			return nil, errors.New("db down")
		},
	}
	svc := app.NewWeightService(repo, nil)
	_, err := svc.RecordWeight(context.Background(), 1, app.WeightInput{Value: "80", Unit: "kg"})
	if err == nil {
		t.Fatal("expected error from repo")
	}
}

func TestUpdateWeight_PropagatesDuplicateDay(t *testing.T) {
	repo := &mockWeightRepo{
		updateFn: func(_ context.Context, _, _ int64, _ string, _ float64) (*domain.WeightEntry, error) {
			return nil, domain.ErrDuplicateDay
		},
	}
	svc := app.NewWeightService(repo, nil)
	_, err := svc.UpdateWeight(context.Background(), 1, 4, app.WeightInput{Date: "2025-01-02", Value: "150", Unit: "lb"})
	assert.ErrorIs(t, err, domain.ErrDuplicateDay)
}

func TestDeleteWeight_NotFound(t *testing.T) {
	repo := &mockWeightRepo{
		deleteFn: func(_ context.Context, _, _ int64) error { return domain.ErrNotFound },
	}
	svc := app.NewWeightService(repo, nil)
	err := svc.DeleteWeight(context.Background(), 1, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListWeights_SortedOldestFirst(t *testing.T) {
	repo := &mockWeightRepo{
		listFn: func(_ context.Context, _ int64) ([]domain.WeightEntry, error) {
			return []domain.WeightEntry{
				{ID: 2, Date: "2025-02-01"},
				{ID: 1, Date: "2025-01-01"},
			}, nil
		},
	}
	svc := app.NewWeightService(repo, nil)
	items, err := svc.ListWeights(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
}

func TestListWeights_Error(t *testing.T) {
	repo := &mockWeightRepo{
		listFn: func(_ context.Context, _ int64) ([]domain.WeightEntry, error) {
			return nil, errors.New("db down")
		},
	}
	svc := app.NewWeightService(repo, nil)
	_, err := svc.ListWeights(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error")
	}
}
