package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitals/internal/domain"
)

func TestPresentTable(t *testing.T) {
	detail := domain.Aggregate(entries("2025-01-15", 154.3), domain.RangeWeek)
	rows := domain.PresentTable(detail, domain.UnitKg)

	require.Len(t, rows, 1)
	assert.Equal(t, domain.TableRow{
		Label: "Wed, Jan 15", Date: "2025-01-15", Weight: 70.0, Unit: domain.UnitKg,
		Editable: true, EntryID: 1,
	}, rows[0])

	year := domain.Aggregate(entries("2025-01-01", 150.0, "2025-01-02", 152.0), domain.RangeYear)
	rows = domain.PresentTable(year, domain.UnitLb)
	require.Len(t, rows, 1)
	assert.Equal(t, "January", rows[0].Label)
	assert.True(t, rows[0].IsAggregated)
	assert.False(t, rows[0].Editable)
	assert.Zero(t, rows[0].EntryID)
}

func TestPresentChart(t *testing.T) {
	agg := domain.Aggregate(entries("2024-06-01", 220.5, "2025-06-01", 200.0), domain.RangeAll)
	points := domain.PresentChart(agg, domain.UnitKg)
	require.Len(t, points, 2)
	assert.Equal(t, domain.ChartPoint{Date: "2024-01-01", Label: "2024", Weight: 100.0}, points[0])
	assert.Equal(t, 90.7, points[1].Weight)
}

func TestNormalizeDay(t *testing.T) {
	loc := time.UTC
	ts := time.Date(2025, 1, 15, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"day string", "2025-01-15", "2025-01-15"},
		{"rfc3339", "2025-01-15T23:30:00Z", "2025-01-15"},
		{"time", ts, "2025-01-15"},
		{"time pointer", &ts, "2025-01-15"},
		{"unix seconds", ts.Unix(), "2025-01-15"},
		{"unix millis", ts.UnixMilli(), "2025-01-15"},
		{"float seconds", float64(ts.Unix()), "2025-01-15"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.NormalizeDay(tc.in, loc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := domain.NormalizeDay("15/01/2025", loc)
	assert.Error(t, err)
	_, err = domain.NormalizeDay(true, loc)
	assert.Error(t, err)
	_, err = domain.NormalizeDay(time.Time{}, loc)
	assert.Error(t, err)
}

func TestNormalizeWeight(t *testing.T) {
	lb := 180.04
	got, err := domain.NormalizeWeight(&lb, nil)
	require.NoError(t, err)
	assert.Equal(t, 180.0, got)

	got, err = domain.NormalizeWeight(nil, &domain.LegacyWeight{Value: 70, Unit: domain.UnitKg})
	require.NoError(t, err)
	assert.Equal(t, 154.3, got)

	_, err = domain.NormalizeWeight(nil, &domain.LegacyWeight{Value: 11, Unit: "st"})
	assert.ErrorIs(t, err, domain.ErrUnknownUnit)

	_, err = domain.NormalizeWeight(nil, nil)
	assert.Error(t, err)
}
