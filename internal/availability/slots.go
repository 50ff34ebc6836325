package availability

import (
	"errors"
	"sort"
	"time"

	"github.com/example/booking-scheduler/internal/interval"
)

// ErrInvalidDuration indicates the slot duration or cadence is not positive.
var ErrInvalidDuration = errors.New("availability: duration must be positive")

// GenerateParams controls slot discretization.
type GenerateParams struct {
	Duration time.Duration
	// Cadence is the spacing between candidate starts. Zero means one slot
	// per Duration.
	Cadence       time.Duration
	BeforeBuffer  time.Duration
	AfterBuffer   time.Duration
	MinimumNotice time.Duration
	// HorizonDays bounds how far into the future slots are offered, counted
	// in civil days from Now. Zero means no horizon.
	HorizonDays int
	Now         time.Time
}

// Generate walks each available interval and emits every start instant whose
// buffered footprint [start-before, start+duration+after) fits entirely
// within the interval. A footprint exactly touching the interval edge is
// included, consistent with the half-open interval model. Starts before
// Now+MinimumNotice or after the horizon are discarded. The result is
// deduplicated and sorted ascending.
func Generate(available []interval.Interval, params GenerateParams) ([]time.Time, error) {
	if params.Duration <= 0 || params.Cadence < 0 ||
		params.BeforeBuffer < 0 || params.AfterBuffer < 0 {
		return nil, ErrInvalidDuration
	}

	cadence := params.Cadence
	if cadence == 0 {
		cadence = params.Duration
	}

	earliest := params.Now.Add(params.MinimumNotice)
	var latest time.Time
	if params.HorizonDays > 0 {
		latest = params.Now.AddDate(0, 0, params.HorizonDays)
	}

	seen := make(map[int64]struct{})
	starts := make([]time.Time, 0)

	for _, iv := range available {
		trimmedStart := iv.Start.Add(params.BeforeBuffer)
		trimmedEnd := iv.End.Add(-params.AfterBuffer)

		for t := trimmedStart; !t.Add(params.Duration).After(trimmedEnd); t = t.Add(cadence) {
			if t.Before(earliest) {
				continue
			}
			if !latest.IsZero() && t.After(latest) {
				break
			}
			key := t.UnixNano()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			starts = append(starts, t)
		}
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts, nil
}

// FitsWithin reports whether a booking starting at start would keep its
// buffered footprint entirely inside one of the available intervals. Used by
// the commit path to re-validate a single candidate instant.
func FitsWithin(available []interval.Interval, start time.Time, params GenerateParams) bool {
	footprint := interval.Interval{
		Start: start.Add(-params.BeforeBuffer),
		End:   start.Add(params.Duration + params.AfterBuffer),
	}
	for _, iv := range available {
		if iv.Covers(footprint) {
			return true
		}
	}
	return false
}
