package analysis

import (
	"sort"
	"time"
)

// Interval is a closed time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// MergeIntervals merges overlapping or touching intervals. Fishing events
// from adjacent AIS segments overlap, and naive summation double-counts
// effort.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	merged := []Interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !cur.Start.After(last.End) {
			if cur.End.After(last.End) {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// TotalHours returns the summed duration of the merged intervals, in hours.
func TotalHours(intervals []Interval) float64 {
	var total time.Duration
	for _, iv := range MergeIntervals(intervals) {
		if iv.End.After(iv.Start) {
			total += iv.End.Sub(iv.Start)
		}
	}
	return total.Hours()
}
