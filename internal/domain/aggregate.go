package domain

import (
	"math"
	"sort"
	"time"
)

// MaxBucketSize caps how many entries a single bucket may average.
const MaxBucketSize = 10000

// AggregatedEntry is one row of dashboard data: either a single entry
// passed through (IsAggregated false) or the mean of a month or year.
type AggregatedEntry struct {
	BucketKey          string  `json:"bucketKey"`
	RepresentativeDate string  `json:"representativeDate"`
	WeightLb           float64 `json:"weightLb"`
	Label              string  `json:"label"`
	IsAggregated       bool    `json:"isAggregated"`
	Count              int     `json:"count"`
	// EntryID identifies the source entry of a pass-through row.
	EntryID int64 `json:"entryId,omitempty"`
	// Degraded is set when the mean could not be computed and the bucket
	// fell back to its first weight.
	Degraded bool `json:"degraded,omitempty"`
}

// Aggregate shapes filtered entries for range r. Week and month entries pass
// through one per day; year entries are averaged per month and all-time
// entries per year. Buckets come back sorted by key.
func Aggregate(entries []WeightEntry, r Range) []AggregatedEntry {
	switch r {
	case RangeYear:
		return aggregateBy(entries, monthKey, monthLabel)
	case RangeAll:
		return aggregateBy(entries, yearKey, yearLabel)
	}

	sorted := FilterByRange(entries, DateRange{Unbounded: true})
	out := make([]AggregatedEntry, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, AggregatedEntry{
			BucketKey:          e.Date,
			RepresentativeDate: e.Date,
			WeightLb:           e.WeightLb,
			Label:              DayLabel(e.Date),
			Count:              1,
			EntryID:            e.ID,
		})
	}
	return out
}

// MeanWeight returns the rounded mean weight of entries, or false if there
// are none.
func MeanWeight(entries []WeightEntry) (float64, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	mean, _, ok := bucketMean(entries)
	return mean, ok
}

func aggregateBy(entries []WeightEntry, key func(string) string, label func(string) string) []AggregatedEntry {
	buckets := make(map[string][]WeightEntry)
	for _, e := range FilterByRange(entries, DateRange{Unbounded: true}) {
		k := key(e.Date)
		if k == "" {
			continue
		}
		buckets[k] = append(buckets[k], e)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]AggregatedEntry, 0, len(keys))
	for _, k := range keys {
		mean, degraded, ok := bucketMean(buckets[k])
		if !ok {
			continue
		}
		out = append(out, AggregatedEntry{
			BucketKey:          k,
			RepresentativeDate: firstDay(k),
			WeightLb:           mean,
			Label:              label(k),
			IsAggregated:       true,
			Count:              len(buckets[k]),
			Degraded:           degraded,
		})
	}
	return out
}

// bucketMean averages the bucket. When a weight or the running sum is not
// finite, or the bucket is too large, it falls back to the first weight and
// reports degraded. ok is false only if no usable value exists.
func bucketMean(bucket []WeightEntry) (mean float64, degraded, ok bool) {
	if len(bucket) == 0 {
		return 0, false, false
	}
	first := bucket[0].WeightLb
	fallback := func() (float64, bool, bool) {
		if !finite(first) {
			return 0, true, false
		}
		return Round1(first), true, true
	}

	if len(bucket) > MaxBucketSize {
		return fallback()
	}
	var sum float64
	for _, e := range bucket {
		if !finite(e.WeightLb) {
			return fallback()
		}
		sum += e.WeightLb
		if !finite(sum) {
			return fallback()
		}
	}
	return Round1(sum / float64(len(bucket))), false, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func monthKey(day string) string {
	if len(day) < len("2006-01") {
		return ""
	}
	return day[:7]
}

func yearKey(day string) string {
	if len(day) < len("2006") {
		return ""
	}
	return day[:4]
}

func firstDay(key string) string {
	switch len(key) {
	case 4:
		return key + "-01-01"
	case 7:
		return key + "-01"
	}
	return key
}

func monthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Month().String()
}

func yearLabel(key string) string {
	return key
}

// DayLabel formats a calendar day for detail rows, e.g. "Wed, Jan 15".
func DayLabel(day string) string {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return day
	}
	return t.Format("Mon, Jan 2")
}
