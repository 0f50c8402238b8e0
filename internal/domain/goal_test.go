package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vitals/internal/domain"
)

func TestEvaluateGoal_ScenarioD(t *testing.T) {
	st := domain.EvaluateGoal(148, 150, nil, domain.DirectionLose, domain.UnitLb)
	assert.True(t, st.Reached)
	assert.Empty(t, st.RemainingDisplay)

	st = domain.EvaluateGoal(152, 150, nil, domain.DirectionLose, domain.UnitLb)
	assert.False(t, st.Reached)
	assert.Equal(t, "2 lbs to lose to reach target", st.RemainingDisplay)
	assert.Equal(t, 2.0, st.Remaining)
}

func TestEvaluateGoal_GainMessageInKg(t *testing.T) {
	st := domain.EvaluateGoal(150, 160, nil, domain.DirectionGain, domain.UnitKg)
	assert.False(t, st.Reached)
	assert.Equal(t, domain.DirectionGain, st.Direction)
	assert.Equal(t, "4.5 kg to reach target", st.RemainingDisplay)
}

func TestEvaluateGoal_WithinTolerance(t *testing.T) {
	st := domain.EvaluateGoal(150.05, 150, nil, domain.DirectionLose, domain.UnitLb)
	assert.True(t, st.Reached)
	st = domain.EvaluateGoal(149.95, 150, nil, domain.DirectionGain, domain.UnitLb)
	assert.True(t, st.Reached)
}

func TestEvaluateGoal_Monotonic(t *testing.T) {
	for _, d := range []domain.Direction{domain.DirectionLose, domain.DirectionGain} {
		step := -0.1
		if d == domain.DirectionGain {
			step = 0.1
		}
		for w := 100.0; w <= 200; w += 0.3 {
			if !domain.EvaluateGoal(w, 150, nil, d, domain.UnitLb).Reached {
				continue
			}
			for past := w + step; past > 90 && past < 210; past += step * 7 {
				assert.True(t, domain.EvaluateGoal(past, 150, nil, d, domain.UnitLb).Reached, "%s %v -> %v", d, w, past)
			}
		}
	}
}

func TestResolveDirection(t *testing.T) {
	down := entries("2025-01-01", 180.0, "2025-02-01", 175.0, "2025-01-15", 178.0)
	up := entries("2025-02-01", 130.0, "2025-01-01", 125.0)
	flat := entries("2025-01-01", 140.0, "2025-02-01", 140.0)

	tests := []struct {
		name     string
		current  float64
		target   float64
		history  []domain.WeightEntry
		explicit domain.Direction
		want     domain.Direction
	}{
		{"explicit wins over history", 175, 170, down, domain.DirectionGain, domain.DirectionGain},
		{"downward trend", 175, 170, down, "", domain.DirectionLose},
		{"upward trend", 130, 140, up, "", domain.DirectionGain},
		{"flat trend is gain", 140, 130, flat, "", domain.DirectionGain},
		{"no history above target", 180, 170, nil, "", domain.DirectionLose},
		{"no history below target", 160, 170, nil, "", domain.DirectionGain},
		{"single entry uses target", 180, 170, entries("2025-01-01", 180.0), "", domain.DirectionLose},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ResolveDirection(tc.current, tc.target, tc.history, tc.explicit)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateGoal_InferredDirection(t *testing.T) {
	down := entries("2025-01-01", 180.0, "2025-02-01", 169.0)
	st := domain.EvaluateGoal(169, 170, down, "", domain.UnitLb)
	assert.Equal(t, domain.DirectionLose, st.Direction)
	assert.True(t, st.Reached)
}

func TestParseDirection(t *testing.T) {
	d, err := domain.ParseDirection(" Lose ")
	assert.NoError(t, err)
	assert.Equal(t, domain.DirectionLose, d)

	d, err = domain.ParseDirection("")
	assert.NoError(t, err)
	assert.Equal(t, domain.Direction(""), d)

	_, err = domain.ParseDirection("maintain")
	assert.ErrorIs(t, err, domain.ErrInvalidDirection)
}
