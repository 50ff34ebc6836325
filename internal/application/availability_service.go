package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/booking-scheduler/internal/availability"
	"github.com/example/booking-scheduler/internal/interval"
	"github.com/example/booking-scheduler/internal/persistence"
)

// EventTypeCatalog exposes the event type lookups needed by the services.
type EventTypeCatalog interface {
	GetEventType(ctx context.Context, id string) (persistence.EventType, error)
}

// ScheduleCatalog exposes the schedule lookups needed by the services.
type ScheduleCatalog interface {
	GetSchedule(ctx context.Context, id string) (persistence.Schedule, error)
}

// BookingLedger exposes the booking reads needed for occupancy computation.
type BookingLedger interface {
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
}

// AvailabilityService computes bookable slots. Listing is a pure read: it
// runs with unlimited concurrency and takes no locks, since the booking
// commit re-validates the chosen instant anyway.
type AvailabilityService struct {
	eventTypes EventTypeCatalog
	schedules  ScheduleCatalog
	bookings   BookingLedger
	// maxRangeDays bounds the listing window. Zero disables the guard.
	maxRangeDays int
	logger       *slog.Logger
	now          func() time.Time
}

// NewAvailabilityService wires dependencies for slot listing.
func NewAvailabilityService(eventTypes EventTypeCatalog, schedules ScheduleCatalog, bookings BookingLedger, maxRangeDays int, logger *slog.Logger, now func() time.Time) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		eventTypes:   eventTypes,
		schedules:    schedules,
		bookings:     bookings,
		maxRangeDays: maxRangeDays,
		logger:       defaultLogger(logger),
		now:          now,
	}
}

// ListSlots returns every bookable slot for the event type within the UTC
// range, ascending.
func (s *AvailabilityService) ListSlots(ctx context.Context, params ListSlotsParams) ([]Slot, error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "availability", "list_slots", "event_type_id", params.EventTypeID)

	vErr := &ValidationError{}
	if params.EventTypeID == "" {
		vErr.add("eventTypeId", "must not be empty")
	}
	if !params.RangeStart.Before(params.RangeEnd) {
		vErr.add("range", "start must be before end")
	}
	if params.AttendeeTimezone != "" {
		if _, err := time.LoadLocation(params.AttendeeTimezone); err != nil {
			vErr.add("timezone", "unknown IANA timezone")
		}
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	if s.maxRangeDays > 0 {
		limit := params.RangeStart.AddDate(0, 0, s.maxRangeDays)
		if params.RangeEnd.After(limit) {
			return nil, &PolicyViolation{
				Rule:    "listing_range",
				Message: fmt.Sprintf("range exceeds the maximum of %d days", s.maxRangeDays),
			}
		}
	}

	eventType, err := s.eventTypes.GetEventType(ctx, params.EventTypeID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	schedule, err := s.schedules.GetSchedule(ctx, eventType.ScheduleID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	rangeUTC := interval.Interval{Start: params.RangeStart.UTC(), End: params.RangeEnd.UTC()}
	bookable, _, err := s.bookableIntervals(ctx, eventType, schedule, rangeUTC)
	if err != nil {
		return nil, err
	}

	starts, err := availability.Generate(bookable, generateParamsFor(eventType, s.now()))
	if err != nil {
		return nil, &ConfigurationError{Field: "eventType", Message: "invalid slot parameters", Cause: err}
	}

	duration := time.Duration(eventType.DurationMinutes) * time.Minute
	slots := make([]Slot, 0, len(starts))
	for _, start := range starts {
		slots = append(slots, Slot{Start: start, End: start.Add(duration)})
	}

	logger.DebugContext(ctx, "slots listed", "count", len(slots))
	return slots, nil
}

// bookableIntervals resolves the schedule over rangeUTC and removes existing
// occupancy according to the event type's scheduling type. The returned
// commitments are the occupying bookings consulted, for callers that also
// need per-member freedom.
func (s *AvailabilityService) bookableIntervals(ctx context.Context, eventType persistence.EventType, schedule persistence.Schedule, rangeUTC interval.Interval) ([]interval.Interval, []availability.Commitment, error) {
	resolved, err := availability.Resolve(toWeeklySchedule(schedule), rangeUTC)
	if err != nil {
		return nil, nil, mapAvailabilityError(err)
	}

	hosts := candidateHosts(eventType)
	if len(hosts) == 0 {
		return nil, nil, &ConfigurationError{Field: "eventType", Message: "no host or team members configured"}
	}

	commitments, err := s.loadCommitments(ctx, hosts, rangeUTC)
	if err != nil {
		return nil, nil, err
	}

	var bookable []interval.Interval
	switch eventType.SchedulingType {
	case "single":
		bookable = availability.FilterHost(resolved, eventType.HostID, commitments)
	case "collective":
		bookable = availability.FilterCollective(resolved, eventType.MemberIDs, commitments)
	case "round_robin":
		bookable = availability.FilterRoundRobin(resolved, eventType.MemberIDs, commitments)
	default:
		return nil, nil, &ConfigurationError{Field: "schedulingType", Message: fmt.Sprintf("unknown scheduling type %q", eventType.SchedulingType)}
	}

	return bookable, commitments, nil
}

// loadCommitments fetches occupying bookings whose footprints intersect the
// window and converts them into calendar claims. Stored footprints already
// include the originating event type's buffers.
func (s *AvailabilityService) loadCommitments(ctx context.Context, hostIDs []string, window interval.Interval) ([]availability.Commitment, error) {
	bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{
		HostIDs:        hostIDs,
		OccupyingOnly:  true,
		FootprintStart: &window.Start,
		FootprintEnd:   &window.End,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	commitments := make([]availability.Commitment, 0, len(bookings))
	for _, booking := range bookings {
		commitments = append(commitments, availability.Commitment{
			HostIDs: booking.HostIDs,
			Start:   booking.FootprintStart,
			End:     booking.FootprintEnd,
		})
	}
	return commitments, nil
}

func candidateHosts(eventType persistence.EventType) []string {
	if eventType.SchedulingType == "single" {
		if eventType.HostID == "" {
			return nil
		}
		return []string{eventType.HostID}
	}
	return eventType.MemberIDs
}

func toWeeklySchedule(schedule persistence.Schedule) availability.WeeklySchedule {
	weekly := availability.WeeklySchedule{Timezone: schedule.Timezone}
	for _, window := range schedule.Windows {
		weekly.Windows = append(weekly.Windows, availability.WeeklyWindow{
			Weekday:     window.Weekday,
			StartMinute: window.StartMinute,
			EndMinute:   window.EndMinute,
		})
	}
	for _, override := range schedule.Overrides {
		weekly.Overrides = append(weekly.Overrides, availability.DateOverride{
			Date:        override.Date,
			Unavailable: override.Unavailable,
			StartMinute: override.StartMinute,
			EndMinute:   override.EndMinute,
		})
	}
	return weekly
}

func generateParamsFor(eventType persistence.EventType, now time.Time) availability.GenerateParams {
	return availability.GenerateParams{
		Duration:      time.Duration(eventType.DurationMinutes) * time.Minute,
		BeforeBuffer:  time.Duration(eventType.BeforeBufferMinutes) * time.Minute,
		AfterBuffer:   time.Duration(eventType.AfterBufferMinutes) * time.Minute,
		MinimumNotice: time.Duration(eventType.MinimumNoticeMinutes) * time.Minute,
		HorizonDays:   eventType.HorizonDays,
		Now:           now,
	}
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func mapAvailabilityError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, availability.ErrUnknownTimezone):
		return &ConfigurationError{Field: "timezone", Message: "unknown IANA timezone", Cause: err}
	case errors.Is(err, availability.ErrMalformedWindow):
		return &ConfigurationError{Field: "windows", Message: "malformed availability window", Cause: err}
	default:
		return err
	}
}
