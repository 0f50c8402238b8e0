package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist for the user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateDay is returned when an edit would place two weight
	// entries on the same calendar day.
	ErrDuplicateDay = errors.New("a weight entry already exists for that day")
)

// WeightEntry is a single daily weight measurement. WeightLb is always in
// pounds at one-decimal precision; Date is a "YYYY-MM-DD" calendar day.
type WeightEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Date      string    `json:"date"`
	WeightLb  float64   `json:"weightLb"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WeightRepository is the port for weight persistence. There is at most one
// entry per user and day: UpsertWeight on an existing day updates it.
type WeightRepository interface {
	UpsertWeight(ctx context.Context, userID int64, day string, weightLb float64) (*WeightEntry, error)
	UpdateWeight(ctx context.Context, userID, id int64, day string, weightLb float64) (*WeightEntry, error)
	DeleteWeight(ctx context.Context, userID, id int64) error
	ListWeights(ctx context.Context, userID int64) ([]WeightEntry, error)
	// SubscribeWeights delivers the user's full collection right away and
	// again after every change. The channel is closed once ctx is done.
	SubscribeWeights(ctx context.Context, userID int64) (<-chan []WeightEntry, error)
}

// LatestEntry returns the entry with the greatest date.
func LatestEntry(entries []WeightEntry) (WeightEntry, bool) {
	if len(entries) == 0 {
		return WeightEntry{}, false
	}
	latest := entries[0]
	for _, e := range entries[1:] {
		if e.Date > latest.Date {
			latest = e
		}
	}
	return latest, true
}

// EarliestEntry returns the entry with the smallest date.
func EarliestEntry(entries []WeightEntry) (WeightEntry, bool) {
	if len(entries) == 0 {
		return WeightEntry{}, false
	}
	earliest := entries[0]
	for _, e := range entries[1:] {
		if e.Date < earliest.Date {
			earliest = e
		}
	}
	return earliest, true
}
