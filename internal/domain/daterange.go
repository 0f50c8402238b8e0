package domain

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the canonical calendar-day format. Lexicographic order of
// days in this layout equals chronological order.
const DayLayout = "2006-01-02"

// Range is a dashboard window selection.
type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

// ParseRange parses a range selection; empty defaults to month.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeMonth, nil
	case RangeWeek, RangeMonth, RangeYear, RangeAll:
		return r, nil
	}
	return "", fmt.Errorf("unknown range %q: want week, month, year or all", s)
}

// DateRange is an inclusive window of calendar days. Unbounded means no
// filtering at all.
type DateRange struct {
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Unbounded bool   `json:"unbounded"`
}

// Contains reports whether day lies inside the window.
func (d DateRange) Contains(day string) bool {
	if d.Unbounded {
		return true
	}
	return day >= d.Start && day <= d.End
}

// Days returns every day in the window in order. It returns nil for an
// unbounded window.
func (d DateRange) Days() []string {
	if d.Unbounded {
		return nil
	}
	start, err := time.Parse(DayLayout, d.Start)
	if err != nil {
		return nil
	}
	end, err := time.Parse(DayLayout, d.End)
	if err != nil {
		return nil
	}
	var days []string
	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		days = append(days, t.Format(DayLayout))
	}
	return days
}

// ComputeRange returns the window for r anchored at ref's calendar day in
// ref's location:
//   - week: Sunday on or before ref through the following Saturday
//   - month: the calendar month containing ref
//   - year: the calendar year containing ref
//   - all (or anything else): unbounded
func ComputeRange(r Range, ref time.Time) DateRange {
	y, m, d := ref.Date()
	day := func(year int, month time.Month, dd int) string {
		return time.Date(year, month, dd, 0, 0, 0, 0, time.UTC).Format(DayLayout)
	}

	switch r {
	case RangeWeek:
		offset := int(ref.Weekday())
		return DateRange{Start: day(y, m, d-offset), End: day(y, m, d-offset+6)}
	case RangeMonth:
		return DateRange{Start: day(y, m, 1), End: day(y, m+1, 0)}
	case RangeYear:
		return DateRange{Start: day(y, time.January, 1), End: day(y, time.December, 31)}
	default:
		return DateRange{Unbounded: true}
	}
}
