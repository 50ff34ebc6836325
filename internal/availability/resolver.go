package availability

import (
	"errors"
	"sort"
	"time"

	"github.com/example/booking-scheduler/internal/interval"
)

// ErrUnknownTimezone indicates the schedule references a timezone identifier
// absent from the IANA database. This is a configuration fault, never
// silently defaulted.
var ErrUnknownTimezone = errors.New("availability: unknown timezone")

// ErrMalformedWindow indicates a weekly window or override violates the
// schedule invariants (start before end, no same-day overlap).
var ErrMalformedWindow = errors.New("availability: malformed window")

const minutesPerDay = 24 * 60

// WeeklyWindow is one recurring availability block, expressed as local
// wall-clock minutes from midnight in the schedule's timezone. EndMinute may
// exceed a day's worth of minutes for windows that cross local midnight.
type WeeklyWindow struct {
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

// DateOverride pins a specific calendar date, superseding the weekly windows
// for that date. When Unavailable is set the date yields no availability;
// otherwise only [StartMinute, EndMinute) is offered.
type DateOverride struct {
	Date        string // YYYY-MM-DD in the schedule timezone
	Unavailable bool
	StartMinute int
	EndMinute   int
}

// WeeklySchedule is a host's recurring availability definition.
type WeeklySchedule struct {
	Timezone  string
	Windows   []WeeklyWindow
	Overrides []DateOverride
}

// Resolve expands the schedule into the ordered, merged list of available
// UTC intervals that intersect rangeUTC.
//
// Evaluation walks every civil date in the schedule's timezone that the
// range touches. An override is authoritative for its date; otherwise the
// weekly windows for that date's weekday apply, each edge converted to UTC
// independently so windows stay correct across DST transitions.
func Resolve(schedule WeeklySchedule, rangeUTC interval.Interval) ([]interval.Interval, error) {
	loc, err := time.LoadLocation(schedule.Timezone)
	if err != nil || schedule.Timezone == "" {
		return nil, ErrUnknownTimezone
	}

	if err := validateWindows(schedule.Windows); err != nil {
		return nil, err
	}
	overrides, err := indexOverrides(schedule.Overrides)
	if err != nil {
		return nil, err
	}

	byWeekday := make(map[time.Weekday][]WeeklyWindow, len(schedule.Windows))
	for _, window := range schedule.Windows {
		byWeekday[window.Weekday] = append(byWeekday[window.Weekday], window)
	}

	expanded := make([]interval.Interval, 0)
	for _, date := range interval.CivilDatesCovering(rangeUTC, loc) {
		if override, ok := overrides[date.String()]; ok {
			if override.Unavailable {
				continue
			}
			expanded = appendClipped(expanded, windowInterval(date, override.StartMinute, override.EndMinute, loc), rangeUTC)
			continue
		}

		for _, window := range byWeekday[date.Weekday()] {
			expanded = appendClipped(expanded, windowInterval(date, window.StartMinute, window.EndMinute, loc), rangeUTC)
		}
	}

	return interval.MergeOverlapping(expanded), nil
}

func windowInterval(date interval.CivilDate, startMinute, endMinute int, loc *time.Location) interval.Interval {
	return interval.Interval{
		Start: date.InstantAtMinute(startMinute, loc),
		End:   date.InstantAtMinute(endMinute, loc),
	}
}

func appendClipped(out []interval.Interval, candidate, rangeUTC interval.Interval) []interval.Interval {
	if clipped, ok := interval.Intersect(candidate, rangeUTC); ok {
		out = append(out, clipped)
	}
	return out
}

func validateWindows(windows []WeeklyWindow) error {
	byWeekday := make(map[time.Weekday][]WeeklyWindow, len(windows))
	for _, window := range windows {
		if window.Weekday < time.Sunday || window.Weekday > time.Saturday {
			return ErrMalformedWindow
		}
		if !validMinuteRange(window.StartMinute, window.EndMinute) {
			return ErrMalformedWindow
		}
		byWeekday[window.Weekday] = append(byWeekday[window.Weekday], window)
	}

	for _, dayWindows := range byWeekday {
		sort.Slice(dayWindows, func(i, j int) bool {
			return dayWindows[i].StartMinute < dayWindows[j].StartMinute
		})
		for i := 1; i < len(dayWindows); i++ {
			if dayWindows[i].StartMinute < dayWindows[i-1].EndMinute {
				return ErrMalformedWindow
			}
		}
	}

	return nil
}

func indexOverrides(overrides []DateOverride) (map[string]DateOverride, error) {
	index := make(map[string]DateOverride, len(overrides))
	for _, override := range overrides {
		if _, err := time.Parse("2006-01-02", override.Date); err != nil {
			return nil, ErrMalformedWindow
		}
		if _, exists := index[override.Date]; exists {
			// At most one override policy applies per date.
			return nil, ErrMalformedWindow
		}
		if !override.Unavailable && !validMinuteRange(override.StartMinute, override.EndMinute) {
			return nil, ErrMalformedWindow
		}
		index[override.Date] = override
	}
	return index, nil
}

// validMinuteRange accepts windows starting within the day; the end may run
// into the following day for windows crossing local midnight.
func validMinuteRange(startMinute, endMinute int) bool {
	return startMinute >= 0 && startMinute < minutesPerDay &&
		endMinute > startMinute && endMinute <= 2*minutesPerDay
}
