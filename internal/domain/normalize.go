package domain

import (
	"errors"
	"fmt"
	"time"
)

// NormalizeDay turns the date shapes found in stored records into a
// canonical "YYYY-MM-DD" day in loc. It accepts time.Time, *time.Time,
// day strings, RFC 3339 timestamps and unix timestamps in seconds or
// milliseconds.
func NormalizeDay(v any, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "", errors.New("zero time")
		}
		return t.In(loc).Format(DayLayout), nil
	case *time.Time:
		if t == nil {
			return "", errors.New("nil time")
		}
		return NormalizeDay(*t, loc)
	case string:
		if d, err := time.Parse(DayLayout, t); err == nil {
			return d.Format(DayLayout), nil
		}
		ts, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return "", fmt.Errorf("unrecognised date %q", t)
		}
		return ts.In(loc).Format(DayLayout), nil
	case int64:
		return unixDay(t, loc), nil
	case int:
		return unixDay(int64(t), loc), nil
	case float64:
		return unixDay(int64(t), loc), nil
	}
	return "", fmt.Errorf("unsupported date type %T", v)
}

func unixDay(n int64, loc *time.Location) string {
	if n > 1e12 {
		return time.UnixMilli(n).In(loc).Format(DayLayout)
	}
	return time.Unix(n, 0).In(loc).Format(DayLayout)
}

// LegacyWeight is a weight stored the old way: a value in the unit the user
// entered it in.
type LegacyWeight struct {
	Value float64
	Unit  Unit
}

// NormalizeWeight returns the canonical pound value of a stored record,
// which carries either weightLb or a legacy value and unit.
func NormalizeWeight(weightLb *float64, legacy *LegacyWeight) (float64, error) {
	if weightLb != nil {
		return Round1(*weightLb), nil
	}
	if legacy == nil {
		return 0, errors.New("record has no weight")
	}
	switch legacy.Unit {
	case UnitLb, UnitKg:
		return ToStorage(legacy.Value, legacy.Unit), nil
	}
	return 0, fmt.Errorf("legacy weight: %w", ErrUnknownUnit)
}
