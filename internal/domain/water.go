package domain

import (
	"context"
	"time"
)

// WaterEvent is a single water intake (or correction) event.
type WaterEvent struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	DeltaLiters float64   `json:"deltaLiters"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WaterDay is the water total for one local calendar day.
type WaterDay struct {
	Date        string  `json:"date"`
	TotalLiters float64 `json:"totalLiters"`
}

// WaterRepository is the port for water persistence.
type WaterRepository interface {
	AddWaterEvent(ctx context.Context, userID int64, deltaLiters float64, createdAt time.Time) (int64, error)
	DeleteWaterEvent(ctx context.Context, userID, id int64) error
	ListRecentWaterEvents(ctx context.Context, userID int64, limit int) ([]WaterEvent, error)
	WaterTotalForLocalDay(ctx context.Context, userID int64, localDay string) (float64, error)
	// WaterTotalsByLocalDay sums events per local day between start and end
	// inclusive. Days without events are absent from the map.
	WaterTotalsByLocalDay(ctx context.Context, userID int64, start, end string) (map[string]float64, error)
}
