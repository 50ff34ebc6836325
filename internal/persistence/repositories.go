package persistence

import (
	"context"
	"time"
)

// HostRepository exposes host record operations.
type HostRepository interface {
	CreateHost(ctx context.Context, host Host) error
	GetHost(ctx context.Context, id string) (Host, error)
	ListHosts(ctx context.Context) ([]Host, error)
	DeleteHost(ctx context.Context, id string) error
}

// ScheduleRepository stores weekly schedules with their windows and
// overrides.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) error
	UpdateSchedule(ctx context.Context, schedule Schedule) error
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedulesForHost(ctx context.Context, hostID string) ([]Schedule, error)
	// DeleteSchedule fails with ErrForeignKeyViolation while any event type
	// still references the schedule.
	DeleteSchedule(ctx context.Context, id string) error
}

// EventTypeRepository stores bookable offerings, their team membership
// ordering and the round-robin cursor.
type EventTypeRepository interface {
	CreateEventType(ctx context.Context, eventType EventType) error
	UpdateEventType(ctx context.Context, eventType EventType) error
	GetEventType(ctx context.Context, id string) (EventType, error)
	ListEventTypes(ctx context.Context) ([]EventType, error)
	DeleteEventType(ctx context.Context, id string) error
	// SetRoundRobinCursor persists the position of the member assigned by
	// the latest committed booking. Called only from the serialized commit
	// section of the booking service.
	SetRoundRobinCursor(ctx context.Context, eventTypeID string, cursor int) error
}

// BookingFilter narrows booking queries.
type BookingFilter struct {
	HostIDs []string
	// OccupyingOnly restricts results to pending and accepted bookings,
	// the only statuses that block calendar time.
	OccupyingOnly bool
	// FootprintWithin keeps bookings whose buffered footprint intersects
	// [Start, End).
	FootprintStart *time.Time
	FootprintEnd   *time.Time
	SeriesID       *string
}

// BookingRepository stores reservations. CreateBooking re-checks the overlap
// guard inside a single transaction and returns ErrConflict when any
// occupying booking's footprint intersects the candidate's on a shared host,
// closing the race between two concurrent commits.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string, reason *string, updatedAt time.Time) error
	// CancelSeriesFrom marks every occupying sibling of the series whose
	// start is at or after from as cancelled, returning the affected ids.
	CancelSeriesFrom(ctx context.Context, seriesID string, from time.Time, reason *string, updatedAt time.Time) ([]string, error)
}
