package application

import "time"

// Slot is one bookable start/end pair in UTC, safe to render in any timezone
// by the caller.
type Slot struct {
	Start time.Time
	End   time.Time
}

// ListSlotsParams identifies the event type and UTC range to list slots for.
// AttendeeTimezone is validated here so an unknown zone fails the request
// before any math runs; slot instants themselves stay in UTC.
type ListSlotsParams struct {
	EventTypeID      string
	RangeStart       time.Time
	RangeEnd         time.Time
	AttendeeTimezone string
}

// AttendeeInfo carries the booking requester's details. Timezone is
// display-only and never used for conflict math.
type AttendeeInfo struct {
	Name     string
	Email    string
	Timezone string
}

// Recurrence frequencies accepted for recurring booking requests.
const (
	RecurrenceDaily  = "daily"
	RecurrenceWeekly = "weekly"
)

// RecurrenceInput requests a recurring series: Count occurrences at the given
// frequency, every Interval periods (1 when zero).
type RecurrenceInput struct {
	Frequency string
	Interval  int
	Count     int
}

// CreateBookingParams wraps a booking request for one slot start, optionally
// expanded into a recurring series.
type CreateBookingParams struct {
	EventTypeID string
	Start       time.Time
	Attendee    AttendeeInfo
	Recurrence  *RecurrenceInput
	// AllOrNothing rolls back committed siblings when any occurrence of a
	// recurring request conflicts. Default is per-occurrence independence.
	AllOrNothing bool
}

// Occurrence outcome statuses.
const (
	OutcomeCommitted      = "COMMITTED"
	OutcomeConflict       = "CONFLICT"
	OutcomeRejectedPolicy = "REJECTED_POLICY"
)

// OccurrenceResult reports the outcome for one occurrence of a booking
// request.
type OccurrenceResult struct {
	Start     time.Time
	Status    string
	BookingID string
	HostIDs   []string
	Reason    string
}

// BookingResult is the outcome of a createBooking call. Status is COMMITTED
// when at least one occurrence committed, CONFLICT when every occurrence
// conflicted, REJECTED_POLICY when rejected before any commit.
type BookingResult struct {
	Status      string
	SeriesID    string
	Occurrences []OccurrenceResult
}

// Cancellation scopes.
const (
	CancelScopeOne            = "ONE"
	CancelScopeSeriesFromHere = "SERIES_FROM_HERE"
)

// CancelBookingParams identifies the booking to cancel and how far the
// cancellation reaches into its series.
type CancelBookingParams struct {
	BookingID string
	Scope     string
	Reason    string
}

// RescheduleBookingParams moves a booking to a new start. The old row becomes
// RESCHEDULED and the new instant goes through the full commit pipeline.
type RescheduleBookingParams struct {
	BookingID string
	NewStart  time.Time
}

// Booking is the application-level view of a reservation.
type Booking struct {
	ID               string
	EventTypeID      string
	HostIDs          []string
	Start            time.Time
	End              time.Time
	Status           string
	SeriesID         string
	AttendeeName     string
	AttendeeEmail    string
	AttendeeTimezone string
	CancelReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
