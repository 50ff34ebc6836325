package interval

import "time"

// CivilDate identifies a calendar date independent of timezone.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// CivilDateOf extracts the calendar date of t as observed in loc.
func CivilDateOf(t time.Time, loc *time.Location) CivilDate {
	local := t.In(loc)
	year, month, day := local.Date()
	return CivilDate{Year: year, Month: month, Day: day}
}

// String renders the date as YYYY-MM-DD.
func (d CivilDate) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// Weekday returns the day of the week the date falls on.
func (d CivilDate) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Next returns the following calendar date.
func (d CivilDate) Next() CivilDate {
	next := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	year, month, day := next.Date()
	return CivilDate{Year: year, Month: month, Day: day}
}

// After reports whether d falls after other.
func (d CivilDate) After(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	if d.Month != other.Month {
		return d.Month > other.Month
	}
	return d.Day > other.Day
}

// InstantAtMinute converts a local wall-clock offset, expressed as minutes
// from midnight on this date, into an absolute instant in loc. Passing the
// offset through time.Date lets the runtime normalize across DST transitions:
// a day in the relevant timezone may span 23 or 25 hours, and converting the
// start and end of a window independently keeps both edges correct.
func (d CivilDate) InstantAtMinute(minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, minute, 0, 0, loc)
}

// DayInterval returns the absolute interval covered by this civil date in
// loc, i.e. [local midnight, next local midnight).
func (d CivilDate) DayInterval(loc *time.Location) Interval {
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	end := time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, loc)
	return Interval{Start: start, End: end}
}

// CivilDatesCovering enumerates, in order, every calendar date in loc that
// intersects the absolute range. The range is half-open, so a range ending at
// exactly local midnight does not include the following date.
func CivilDatesCovering(rangeUTC Interval, loc *time.Location) []CivilDate {
	if rangeUTC.IsEmpty() {
		return nil
	}

	last := CivilDateOf(rangeUTC.End.Add(-time.Nanosecond), loc)
	dates := make([]CivilDate, 0, 8)
	for d := CivilDateOf(rangeUTC.Start, loc); !d.After(last); d = d.Next() {
		dates = append(dates, d)
	}
	return dates
}
