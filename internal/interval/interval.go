package interval

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End) expressed in absolute
// instants. All set operations in this package assume UTC-comparable values;
// local wall-clock reasoning happens only at the civil-date boundary helpers.
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsEmpty reports whether the interval covers no time.
func (iv Interval) IsEmpty() bool {
	return !iv.End.After(iv.Start)
}

// Contains reports whether the instant t falls inside [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Covers reports whether other lies entirely within the receiver.
func (iv Interval) Covers(other Interval) bool {
	if other.IsEmpty() {
		return true
	}
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// Overlaps reports whether two half-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Intersect returns the overlap of a and b. The second return value is false
// when the intervals do not overlap.
func Intersect(a, b Interval) (Interval, bool) {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !end.After(start) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// MergeOverlapping sorts the provided intervals by start and coalesces every
// overlapping or touching pair, returning a sorted, non-overlapping list.
// Empty intervals are dropped. The input slice is not modified.
func MergeOverlapping(intervals []Interval) []Interval {
	candidates := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.IsEmpty() {
			continue
		}
		candidates = append(candidates, iv)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Start.Equal(candidates[j].Start) {
			return candidates[i].End.Before(candidates[j].End)
		}
		return candidates[i].Start.Before(candidates[j].Start)
	})

	merged := make([]Interval, 0, len(candidates))
	current := candidates[0]
	for _, iv := range candidates[1:] {
		if iv.Start.After(current.End) {
			merged = append(merged, current)
			current = iv
			continue
		}
		if iv.End.After(current.End) {
			current.End = iv.End
		}
	}
	merged = append(merged, current)

	return merged
}

// Subtract removes every interval in busy from a and returns the ordered
// remainder. busy must already be sorted and non-overlapping; callers are
// expected to pass it through MergeOverlapping first.
func Subtract(a Interval, busy []Interval) []Interval {
	if a.IsEmpty() {
		return nil
	}

	remaining := make([]Interval, 0, len(busy)+1)
	cursor := a.Start

	for _, b := range busy {
		if !b.End.After(cursor) {
			continue
		}
		if !b.Start.Before(a.End) {
			break
		}
		if b.Start.After(cursor) {
			remaining = append(remaining, Interval{Start: cursor, End: b.Start})
		}
		cursor = b.End
		if !cursor.Before(a.End) {
			return remaining
		}
	}

	if cursor.Before(a.End) {
		remaining = append(remaining, Interval{Start: cursor, End: a.End})
	}

	return remaining
}

// SubtractAll subtracts the busy set from every interval in available. The
// busy set is merged internally, so callers may pass it unsorted.
func SubtractAll(available, busy []Interval) []Interval {
	merged := MergeOverlapping(busy)

	result := make([]Interval, 0, len(available))
	for _, iv := range available {
		result = append(result, Subtract(iv, merged)...)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// IntersectSets returns the instants present in both sorted, non-overlapping
// interval sets. Used for collective availability where a slot exists only
// where every participant is free.
func IntersectSets(a, b []Interval) []Interval {
	result := make([]Interval, 0)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if overlap, ok := Intersect(a[i], b[j]); ok {
			result = append(result, overlap)
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
