package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is a weight unit. Pounds are the storage unit.
type Unit string

const (
	UnitLb Unit = "lb"
	UnitKg Unit = "kg"
)

// KgToLb is the fixed conversion factor used everywhere in the app.
const KgToLb = 2.20462

var weightBounds = map[Unit]struct{ min, max float64 }{
	UnitLb: {1, 1500},
	UnitKg: {1, 700},
}

// ErrUnknownUnit is returned for anything other than "lb" or "kg".
var ErrUnknownUnit = errors.New(`unit must be "kg" or "lb"`)

// ParseUnit parses a unit string; empty defaults to pounds.
func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return UnitLb, nil
	case UnitLb, "lbs":
		return UnitLb, nil
	case UnitKg:
		return UnitKg, nil
	}
	return "", ErrUnknownUnit
}

// Label is the unit as shown next to a number.
func (u Unit) Label() string {
	if u == UnitLb {
		return "lbs"
	}
	return string(u)
}

// ValidationError reports weight input that is not a number or falls
// outside the accepted range for its unit.
type ValidationError struct {
	Unit  Unit
	Input string
	Bound string // "min", "max" or "" for non-numeric input
	Limit float64
}

func (e *ValidationError) Error() string {
	switch e.Bound {
	case "min":
		return fmt.Sprintf("weight must be at least %g %s", e.Limit, e.Unit)
	case "max":
		return fmt.Sprintf("weight must be at most %g %s", e.Limit, e.Unit)
	default:
		return fmt.Sprintf("weight %q is not a valid number of %s", e.Input, e.Unit)
	}
}

// ValidateWeight parses user input entered in unit and checks it against
// the unit's accepted range.
func ValidateWeight(input string, unit Unit) (float64, error) {
	if _, ok := weightBounds[unit]; !ok {
		return 0, ErrUnknownUnit
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Unit: unit, Input: input}
	}
	if err := CheckWeight(v, unit); err != nil {
		return 0, err
	}
	return v, nil
}

// CheckWeight is ValidateWeight for an already numeric value.
func CheckWeight(v float64, unit Unit) error {
	b, ok := weightBounds[unit]
	if !ok {
		return ErrUnknownUnit
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Unit: unit, Input: strconv.FormatFloat(v, 'g', -1, 64)}
	}
	if v < b.min {
		return &ValidationError{Unit: unit, Input: strconv.FormatFloat(v, 'g', -1, 64), Bound: "min", Limit: b.min}
	}
	if v > b.max {
		return &ValidationError{Unit: unit, Input: strconv.FormatFloat(v, 'g', -1, 64), Bound: "max", Limit: b.max}
	}
	return nil
}

// Round1 rounds half away from zero to one decimal place. Non-finite
// values are returned unchanged.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// ConvertWeight converts v between units and rounds to one decimal.
// Unrecognised units leave v unchanged.
func ConvertWeight(v float64, from, to Unit) float64 {
	switch {
	case from == to:
		return Round1(v)
	case from == UnitKg && to == UnitLb:
		return Round1(v * KgToLb)
	case from == UnitLb && to == UnitKg:
		return Round1(v / KgToLb)
	}
	return v
}

// ToStorage converts a validated value entered in unit into the stored
// pound value.
func ToStorage(v float64, unit Unit) float64 {
	return ConvertWeight(v, unit, UnitLb)
}

// DisplayWeight converts a stored pound value for display.
func DisplayWeight(lb float64, unit Unit) float64 {
	return ConvertWeight(lb, UnitLb, unit)
}
