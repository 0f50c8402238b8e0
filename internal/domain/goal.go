package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Direction is which way the user wants their weight to move.
type Direction string

const (
	DirectionLose Direction = "lose"
	DirectionGain Direction = "gain"
)

// GoalTolerance is how close, in pounds, counts as on target.
const GoalTolerance = 0.1

// ErrInvalidDirection is returned for a direction other than lose or gain.
var ErrInvalidDirection = errors.New("invalid direction")

// ParseDirection parses an explicit direction. Empty means "infer".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "", DirectionLose, DirectionGain:
		return d, nil
	}
	return "", fmt.Errorf("%w %q: must be %q, %q or empty", ErrInvalidDirection, s, DirectionLose, DirectionGain)
}

// Goal is the user's target weight.
type Goal struct {
	UserID         int64     `json:"userId"`
	TargetWeightLb float64   `json:"targetWeightLb"`
	Direction      Direction `json:"direction,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// GoalRepository is the port for the goal stored on the user's profile.
// GetGoal returns nil, nil when no goal has been set.
type GoalRepository interface {
	GetGoal(ctx context.Context, userID int64) (*Goal, error)
	SaveGoal(ctx context.Context, g Goal) (*Goal, error)
}

// GoalStatus is the evaluated goal for display.
type GoalStatus struct {
	Reached          bool      `json:"reached"`
	Direction        Direction `json:"direction"`
	CurrentLb        float64   `json:"currentLb"`
	TargetLb         float64   `json:"targetLb"`
	Remaining        float64   `json:"remaining"`
	Unit             Unit      `json:"unit"`
	RemainingDisplay string    `json:"remainingDisplay"`
}

// ResolveDirection returns explicit when set. Otherwise it compares the
// latest entry in history with the earliest: a downward trend means lose,
// anything else gain. With fewer than two entries it falls back to
// comparing currentLb with targetLb.
func ResolveDirection(currentLb, targetLb float64, history []WeightEntry, explicit Direction) Direction {
	if explicit == DirectionLose || explicit == DirectionGain {
		return explicit
	}
	if len(history) >= 2 {
		earliest, _ := EarliestEntry(history)
		latest, _ := LatestEntry(history)
		if latest.WeightLb < earliest.WeightLb {
			return DirectionLose
		}
		return DirectionGain
	}
	if currentLb > targetLb {
		return DirectionLose
	}
	return DirectionGain
}

// GoalReached reports whether currentLb is within tolerance of targetLb or
// has passed it in direction d.
func GoalReached(currentLb, targetLb float64, d Direction) bool {
	if math.Abs(currentLb-targetLb) < GoalTolerance {
		return true
	}
	if d == DirectionLose {
		return currentLb <= targetLb
	}
	return currentLb >= targetLb
}

// EvaluateGoal resolves the direction, decides whether the goal is reached
// and phrases what is left in the display unit.
func EvaluateGoal(currentLb, targetLb float64, history []WeightEntry, explicit Direction, unit Unit) GoalStatus {
	d := ResolveDirection(currentLb, targetLb, history, explicit)
	st := GoalStatus{
		Direction: d,
		CurrentLb: currentLb,
		TargetLb:  targetLb,
		Unit:      unit,
		Reached:   GoalReached(currentLb, targetLb, d),
	}
	if st.Reached {
		return st
	}

	delta := targetLb - currentLb
	st.Remaining = DisplayWeight(math.Abs(delta), unit)
	n := strconv.FormatFloat(st.Remaining, 'f', -1, 64)
	if delta < 0 {
		st.RemainingDisplay = fmt.Sprintf("%s %s to lose to reach target", n, unit.Label())
	} else {
		st.RemainingDisplay = fmt.Sprintf("%s %s to reach target", n, unit.Label())
	}
	return st
}
