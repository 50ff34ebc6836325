package persistence

import "time"

// Host represents a bookable person record.
type Host struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AvailabilityWindow is one recurring weekly block of a schedule, stored as
// local wall-clock minutes from midnight in the schedule's timezone.
type AvailabilityWindow struct {
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
}

// DateOverride pins one calendar date of a schedule to an explicit policy.
type DateOverride struct {
	Date        string // YYYY-MM-DD in the schedule timezone
	Unavailable bool
	StartMinute int
	EndMinute   int
}

// Schedule is a host's recurring weekly availability definition, exclusively
// owned by that host.
type Schedule struct {
	ID        string
	HostID    string
	Name      string
	Timezone  string
	Windows   []AvailabilityWindow
	Overrides []DateOverride
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventType is a bookable offering. For team scheduling types, MemberIDs
// carries the fixed member ordering and RoundRobinCursor the position of the
// member assigned by the most recent successful booking (-1 before the
// first). The cursor is mutated only inside the booking commit path.
type EventType struct {
	ID                   string
	Title                string
	ScheduleID           string
	HostID               string
	SchedulingType       string
	MemberIDs            []string
	RoundRobinCursor     int
	DurationMinutes      int
	BeforeBufferMinutes  int
	AfterBufferMinutes   int
	MinimumNoticeMinutes int
	HorizonDays          int
	RequiresConfirmation bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Booking statuses. Only pending and accepted bookings occupy calendar time.
const (
	BookingStatusPending     = "pending"
	BookingStatusAccepted    = "accepted"
	BookingStatusCancelled   = "cancelled"
	BookingStatusRejected    = "rejected"
	BookingStatusRescheduled = "rescheduled"
)

// Booking is an accepted or candidate reservation. Start/End are UTC
// instants; FootprintStart/FootprintEnd denormalize the buffered calendar
// claim so the overlap guard can compare footprints without joining event
// types. AttendeeTimezone is display-only and never used for conflict math.
type Booking struct {
	ID               string
	EventTypeID      string
	HostIDs          []string
	Start            time.Time
	End              time.Time
	FootprintStart   time.Time
	FootprintEnd     time.Time
	Status           string
	SeriesID         *string
	AttendeeName     string
	AttendeeEmail    string
	AttendeeTimezone string
	CancelReason     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Occupies reports whether the booking currently blocks calendar time.
func (b Booking) Occupies() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusAccepted
}
