package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/booking-scheduler/internal/persistence"
)

var (
	hostCounter      uint64
	scheduleCounter  uint64
	eventTypeCounter uint64
	bookingCounter   uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It is a Tuesday, which keeps weekday-window fixtures straightforward.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Host fixtures -----------------------------

// HostOption configures the generated host fixture.
type HostOption func(*persistence.Host)

// NewHostFixture returns a deterministic host record with optional overrides.
func NewHostFixture(opts ...HostOption) persistence.Host {
	idx := atomic.AddUint64(&hostCounter, 1)
	id := fmt.Sprintf("host-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	host := persistence.Host{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		DisplayName: fmt.Sprintf("Host %03d", idx),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&host)
	}
	return host
}

// WithHostID overrides the generated host ID.
func WithHostID(id string) HostOption {
	return func(h *persistence.Host) {
		h.ID = id
	}
}

// WithHostEmail overrides the generated email address.
func WithHostEmail(email string) HostOption {
	return func(h *persistence.Host) {
		h.Email = email
	}
}

// --------------------------- Schedule fixtures ---------------------------

// ScheduleOption configures the generated schedule fixture.
type ScheduleOption func(*persistence.Schedule)

// NewScheduleFixture returns a weekday business-hours schedule (Mon-Fri
// 09:00-17:00) in America/New_York for the given host, with optional
// overrides.
func NewScheduleFixture(hostID string, opts ...ScheduleOption) persistence.Schedule {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	schedule := persistence.Schedule{
		ID:        fmt.Sprintf("schedule-%03d", idx),
		HostID:    hostID,
		Name:      fmt.Sprintf("Schedule %03d", idx),
		Timezone:  "America/New_York",
		Windows:   BusinessHoursWindows(),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&schedule)
	}
	return schedule
}

// BusinessHoursWindows returns Monday through Friday 09:00-17:00 windows.
func BusinessHoursWindows() []persistence.AvailabilityWindow {
	windows := make([]persistence.AvailabilityWindow, 0, 5)
	for weekday := time.Monday; weekday <= time.Friday; weekday++ {
		windows = append(windows, persistence.AvailabilityWindow{
			Weekday:     weekday,
			StartMinute: 9 * 60,
			EndMinute:   17 * 60,
		})
	}
	return windows
}

// WithScheduleID overrides the generated schedule ID.
func WithScheduleID(id string) ScheduleOption {
	return func(s *persistence.Schedule) {
		s.ID = id
	}
}

// WithScheduleTimezone overrides the schedule timezone.
func WithScheduleTimezone(timezone string) ScheduleOption {
	return func(s *persistence.Schedule) {
		s.Timezone = timezone
	}
}

// WithScheduleWindows replaces the generated weekly windows.
func WithScheduleWindows(windows ...persistence.AvailabilityWindow) ScheduleOption {
	return func(s *persistence.Schedule) {
		s.Windows = windows
	}
}

// WithScheduleOverrides replaces the date overrides.
func WithScheduleOverrides(overrides ...persistence.DateOverride) ScheduleOption {
	return func(s *persistence.Schedule) {
		s.Overrides = overrides
	}
}

// -------------------------- Event type fixtures --------------------------

// EventTypeOption configures the generated event type fixture.
type EventTypeOption func(*persistence.EventType)

// NewEventTypeFixture returns a 30-minute single-host event type bound to the
// given schedule and host, with optional overrides.
func NewEventTypeFixture(scheduleID, hostID string, opts ...EventTypeOption) persistence.EventType {
	idx := atomic.AddUint64(&eventTypeCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	eventType := persistence.EventType{
		ID:               fmt.Sprintf("event-type-%03d", idx),
		Title:            fmt.Sprintf("Event Type %03d", idx),
		ScheduleID:       scheduleID,
		HostID:           hostID,
		SchedulingType:   "single",
		RoundRobinCursor: -1,
		DurationMinutes:  30,
		HorizonDays:      60,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	for _, opt := range opts {
		opt(&eventType)
	}
	return eventType
}

// WithEventTypeID overrides the generated event type ID.
func WithEventTypeID(id string) EventTypeOption {
	return func(e *persistence.EventType) {
		e.ID = id
	}
}

// WithSchedulingType sets the scheduling type and team membership.
func WithSchedulingType(schedulingType string, memberIDs ...string) EventTypeOption {
	return func(e *persistence.EventType) {
		e.SchedulingType = schedulingType
		e.MemberIDs = memberIDs
	}
}

// WithDuration sets the slot duration in minutes.
func WithDuration(minutes int) EventTypeOption {
	return func(e *persistence.EventType) {
		e.DurationMinutes = minutes
	}
}

// WithBuffers sets the before and after buffers in minutes.
func WithBuffers(before, after int) EventTypeOption {
	return func(e *persistence.EventType) {
		e.BeforeBufferMinutes = before
		e.AfterBufferMinutes = after
	}
}

// WithMinimumNotice sets the minimum notice in minutes.
func WithMinimumNotice(minutes int) EventTypeOption {
	return func(e *persistence.EventType) {
		e.MinimumNoticeMinutes = minutes
	}
}

// WithHorizonDays sets the booking horizon in days.
func WithHorizonDays(days int) EventTypeOption {
	return func(e *persistence.EventType) {
		e.HorizonDays = days
	}
}

// WithRequiresConfirmation makes new bookings start in the pending status.
func WithRequiresConfirmation() EventTypeOption {
	return func(e *persistence.EventType) {
		e.RequiresConfirmation = true
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingOption configures the generated booking fixture.
type BookingOption func(*persistence.Booking)

// NewBookingFixture returns an accepted booking for the given event type and
// hosts starting at start, with the footprint equal to the meeting interval.
func NewBookingFixture(eventTypeID string, hostIDs []string, start time.Time, duration time.Duration, opts ...BookingOption) persistence.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	end := start.Add(duration)
	booking := persistence.Booking{
		ID:               fmt.Sprintf("booking-%03d", idx),
		EventTypeID:      eventTypeID,
		HostIDs:          hostIDs,
		Start:            start,
		End:              end,
		FootprintStart:   start,
		FootprintEnd:     end,
		Status:           persistence.BookingStatusAccepted,
		AttendeeName:     fmt.Sprintf("Attendee %03d", idx),
		AttendeeEmail:    fmt.Sprintf("attendee-%03d@example.com", idx),
		AttendeeTimezone: "UTC",
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(b *persistence.Booking) {
		b.ID = id
	}
}

// WithBookingStatus sets the booking status.
func WithBookingStatus(status string) BookingOption {
	return func(b *persistence.Booking) {
		b.Status = status
	}
}

// WithBookingFootprint sets the buffered footprint explicitly.
func WithBookingFootprint(start, end time.Time) BookingOption {
	return func(b *persistence.Booking) {
		b.FootprintStart = start
		b.FootprintEnd = end
	}
}

// WithBookingSeries attaches the booking to a recurring series.
func WithBookingSeries(seriesID string) BookingOption {
	return func(b *persistence.Booking) {
		b.SeriesID = &seriesID
	}
}
