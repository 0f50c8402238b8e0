package domain

import "sort"

// FilterByRange returns the entries whose day falls inside dr, sorted by
// day ascending. The input slice is never modified.
func FilterByRange(entries []WeightEntry, dr DateRange) []WeightEntry {
	out := make([]WeightEntry, 0, len(entries))
	for _, e := range entries {
		if dr.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}
