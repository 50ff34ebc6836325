package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/booking-scheduler/internal/assignment"
	"github.com/example/booking-scheduler/internal/availability"
	"github.com/example/booking-scheduler/internal/interval"
	"github.com/example/booking-scheduler/internal/persistence"
)

// maxSeriesOccurrences caps recurring expansion so a single request cannot
// claim an unbounded amount of calendar.
const maxSeriesOccurrences = 52

// BookingWriter extends the booking reads with the writes the commit path
// needs.
type BookingWriter interface {
	BookingLedger
	CreateBooking(ctx context.Context, booking persistence.Booking) error
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string, reason *string, updatedAt time.Time) error
	CancelSeriesFrom(ctx context.Context, seriesID string, from time.Time, reason *string, updatedAt time.Time) ([]string, error)
}

// CursorStore persists the round-robin cursor.
type CursorStore interface {
	SetRoundRobinCursor(ctx context.Context, eventTypeID string, cursor int) error
}

// BookingService owns the booking state machine. Commits for the same host
// are serialized through an in-process lock registry keyed by host ID; the
// repository's transactional overlap guard backs that up at the storage
// layer, so the commit fails closed even if a second process writes to the
// same database.
type BookingService struct {
	eventTypes   EventTypeCatalog
	cursors      CursorStore
	schedules    ScheduleCatalog
	bookings     BookingWriter
	availability *AvailabilityService
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
	locks        hostLockRegistry
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(eventTypes EventTypeCatalog, cursors CursorStore, schedules ScheduleCatalog, bookings BookingWriter, availabilitySvc *AvailabilityService, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		eventTypes:   eventTypes,
		cursors:      cursors,
		schedules:    schedules,
		bookings:     bookings,
		availability: availabilitySvc,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// CreateBooking runs the commit state machine for one slot start, or for a
// whole recurring series expanded from the recurrence input. Each occurrence
// is independently re-validated inside the serialized section; a conflict on
// one occurrence fails only that occurrence unless AllOrNothing is set.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (BookingResult, error) {
	if s == nil {
		return BookingResult{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "create", "event_type_id", params.EventTypeID)

	if err := validateBookingParams(params); err != nil {
		return BookingResult{}, err
	}

	eventType, err := s.eventTypes.GetEventType(ctx, params.EventTypeID)
	if err != nil {
		return BookingResult{}, mapRepoError(err)
	}
	if !assignment.SchedulingType(eventType.SchedulingType).Valid() {
		return BookingResult{}, &ConfigurationError{Field: "schedulingType", Message: fmt.Sprintf("unknown scheduling type %q", eventType.SchedulingType)}
	}
	if eventType.DurationMinutes <= 0 {
		return BookingResult{}, &ConfigurationError{Field: "duration", Message: "duration must be positive"}
	}
	schedule, err := s.schedules.GetSchedule(ctx, eventType.ScheduleID)
	if err != nil {
		return BookingResult{}, mapRepoError(err)
	}

	starts, err := expandOccurrences(params.Start.UTC(), params.Recurrence)
	if err != nil {
		return BookingResult{}, err
	}

	hosts := candidateHosts(eventType)
	if len(hosts) == 0 {
		return BookingResult{}, &ConfigurationError{Field: "eventType", Message: "no host or team members configured"}
	}

	var seriesID string
	if len(starts) > 1 {
		seriesID = s.idGenerator()
	}

	unlock := s.locks.acquire(hosts)
	defer unlock()

	cursor := eventType.RoundRobinCursor
	if eventType.SchedulingType == string(assignment.TypeRoundRobin) {
		// The cursor is contended state shared with concurrent requests;
		// it must be read under the host locks, not from the earlier load.
		locked, err := s.eventTypes.GetEventType(ctx, eventType.ID)
		if err != nil {
			return BookingResult{}, mapRepoError(err)
		}
		cursor = locked.RoundRobinCursor
	}
	initialCursor := cursor
	result := BookingResult{SeriesID: seriesID}
	var committed []persistence.Booking

	for _, start := range starts {
		outcome, booking, newCursor, err := s.commitOccurrence(ctx, eventType, schedule, start, params.Attendee, seriesID, cursor)
		if err != nil {
			if params.AllOrNothing {
				s.rollbackSeries(ctx, logger, committed)
			}
			return BookingResult{}, err
		}
		result.Occurrences = append(result.Occurrences, outcome)
		if outcome.Status == OutcomeCommitted {
			committed = append(committed, booking)
			cursor = newCursor
		} else if params.AllOrNothing {
			s.rollbackSeries(ctx, logger, committed)
			result.Status = outcome.Status
			for i := range result.Occurrences {
				if result.Occurrences[i].Status == OutcomeCommitted {
					result.Occurrences[i].Status = OutcomeConflict
					result.Occurrences[i].Reason = "rolled back with conflicting series occurrence"
				}
			}
			return result, nil
		}
	}

	if eventType.SchedulingType == string(assignment.TypeRoundRobin) && cursor != initialCursor {
		if err := s.cursors.SetRoundRobinCursor(ctx, eventType.ID, cursor); err != nil {
			return BookingResult{}, mapRepoError(err)
		}
	}

	result.Status = overallStatus(result.Occurrences)
	logger.InfoContext(ctx, "booking request finished",
		"status", result.Status, "occurrences", len(result.Occurrences), "committed", len(committed))
	return result, nil
}

// commitOccurrence re-validates a single candidate instant and inserts the
// booking row. It never retries: storage uncertainty surfaces as an error
// and the commit fails closed.
func (s *BookingService) commitOccurrence(ctx context.Context, eventType persistence.EventType, schedule persistence.Schedule, start time.Time, attendee AttendeeInfo, seriesID string, cursor int) (OccurrenceResult, persistence.Booking, int, error) {
	now := s.now()
	outcome := OccurrenceResult{Start: start}
	params := generateParamsFor(eventType, now)

	if notice := params.MinimumNotice; start.Before(now.Add(notice)) {
		outcome.Status = OutcomeRejectedPolicy
		outcome.Reason = "start violates minimum notice"
		return outcome, persistence.Booking{}, cursor, nil
	}
	if eventType.HorizonDays > 0 && start.After(now.AddDate(0, 0, eventType.HorizonDays)) {
		outcome.Status = OutcomeRejectedPolicy
		outcome.Reason = "start beyond booking horizon"
		return outcome, persistence.Booking{}, cursor, nil
	}

	duration := params.Duration
	footprint := interval.Interval{
		Start: start.Add(-params.BeforeBuffer),
		End:   start.Add(duration + params.AfterBuffer),
	}
	// Widen the re-validation window so availability at the footprint edges
	// is not clipped away by the range bounds.
	window := interval.Interval{
		Start: footprint.Start.Add(-24 * time.Hour),
		End:   footprint.End.Add(24 * time.Hour),
	}

	bookable, commitments, err := s.availability.bookableIntervals(ctx, eventType, schedule, window)
	if err != nil {
		return outcome, persistence.Booking{}, cursor, err
	}
	if !availability.FitsWithin(bookable, start, params) {
		outcome.Status = OutcomeConflict
		outcome.Reason = "slot no longer available"
		return outcome, persistence.Booking{}, cursor, nil
	}

	var freeMembers []string
	if eventType.SchedulingType == string(assignment.TypeRoundRobin) {
		resolved, err := availability.Resolve(toWeeklySchedule(schedule), window)
		if err != nil {
			return outcome, persistence.Booking{}, cursor, mapAvailabilityError(err)
		}
		freeMembers = availability.FreeMembers(resolved, eventType.MemberIDs, commitments, footprint)
	}

	assigned, err := assignment.Resolve(
		assignment.SchedulingType(eventType.SchedulingType),
		eventType.HostID,
		assignment.Team{MemberIDs: eventType.MemberIDs, Cursor: cursor},
		freeMembers,
	)
	if err != nil {
		if errors.Is(err, assignment.ErrNoFreeHost) {
			outcome.Status = OutcomeConflict
			outcome.Reason = "no free host for slot"
			return outcome, persistence.Booking{}, cursor, nil
		}
		return outcome, persistence.Booking{}, cursor, err
	}

	status := persistence.BookingStatusAccepted
	if eventType.RequiresConfirmation {
		status = persistence.BookingStatusPending
	}
	booking := persistence.Booking{
		ID:               s.idGenerator(),
		EventTypeID:      eventType.ID,
		HostIDs:          assigned.HostIDs,
		Start:            start,
		End:              start.Add(duration),
		FootprintStart:   footprint.Start,
		FootprintEnd:     footprint.End,
		Status:           status,
		AttendeeName:     attendee.Name,
		AttendeeEmail:    attendee.Email,
		AttendeeTimezone: attendee.Timezone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if seriesID != "" {
		booking.SeriesID = &seriesID
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, persistence.ErrConflict) {
			outcome.Status = OutcomeConflict
			outcome.Reason = "slot no longer available"
			return outcome, persistence.Booking{}, cursor, nil
		}
		return outcome, persistence.Booking{}, cursor, err
	}

	outcome.Status = OutcomeCommitted
	outcome.BookingID = booking.ID
	outcome.HostIDs = assigned.HostIDs
	return outcome, booking, assigned.Cursor, nil
}

// rollbackSeries cancels already-committed siblings of an all-or-nothing
// request. Rollback failures are logged, not returned: the caller already
// has a terminal outcome to report.
func (s *BookingService) rollbackSeries(ctx context.Context, logger *slog.Logger, committed []persistence.Booking) {
	reason := "series rolled back"
	for _, booking := range committed {
		if err := s.bookings.UpdateBookingStatus(ctx, booking.ID, persistence.BookingStatusCancelled, &reason, s.now()); err != nil {
			logger.ErrorContext(ctx, "failed to roll back series occurrence",
				"booking_id", booking.ID, "error", err)
		}
	}
}

// CancelBooking cancels a booking, optionally reaching every later sibling
// of its series. The freed footprint becomes bookable on the next listing
// with no further propagation, since occupancy always reads live status.
func (s *BookingService) CancelBooking(ctx context.Context, params CancelBookingParams) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "cancel", "booking_id", params.BookingID)

	if params.Scope != CancelScopeOne && params.Scope != CancelScopeSeriesFromHere {
		vErr := &ValidationError{}
		vErr.add("scope", "must be ONE or SERIES_FROM_HERE")
		return vErr
	}

	booking, err := s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		return mapRepoError(err)
	}
	if !booking.Occupies() {
		return ErrInvalidTransition
	}

	var reason *string
	if params.Reason != "" {
		reason = &params.Reason
	}

	if params.Scope == CancelScopeSeriesFromHere && booking.SeriesID != nil {
		cancelled, err := s.bookings.CancelSeriesFrom(ctx, *booking.SeriesID, booking.Start, reason, s.now())
		if err != nil {
			return mapRepoError(err)
		}
		logger.InfoContext(ctx, "series cancelled", "series_id", *booking.SeriesID, "count", len(cancelled))
		return nil
	}

	if err := s.bookings.UpdateBookingStatus(ctx, booking.ID, persistence.BookingStatusCancelled, reason, s.now()); err != nil {
		return mapRepoError(err)
	}
	logger.InfoContext(ctx, "booking cancelled")
	return nil
}

// AcceptBooking confirms a pending booking.
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID string) error {
	return s.transition(ctx, bookingID, persistence.BookingStatusPending, persistence.BookingStatusAccepted, nil)
}

// RejectBooking declines a pending booking, freeing its footprint.
func (s *BookingService) RejectBooking(ctx context.Context, bookingID string, reason string) error {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	return s.transition(ctx, bookingID, persistence.BookingStatusPending, persistence.BookingStatusRejected, reasonPtr)
}

func (s *BookingService) transition(ctx context.Context, bookingID, from, to string, reason *string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return mapRepoError(err)
	}
	if booking.Status != from {
		return ErrInvalidTransition
	}
	return mapRepoError(s.bookings.UpdateBookingStatus(ctx, bookingID, to, reason, s.now()))
}

// RescheduleBooking moves a booking to a new start. The old row is marked
// RESCHEDULED first so its footprint cannot block an overlapping new time;
// if the new commit fails, the old status is restored and the failure is
// reported as ErrSlotConflict or a PolicyViolation.
func (s *BookingService) RescheduleBooking(ctx context.Context, params RescheduleBookingParams) (BookingResult, error) {
	if s == nil {
		return BookingResult{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "reschedule", "booking_id", params.BookingID)

	booking, err := s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		return BookingResult{}, mapRepoError(err)
	}
	if !booking.Occupies() {
		return BookingResult{}, ErrInvalidTransition
	}

	previousStatus := booking.Status
	if err := s.bookings.UpdateBookingStatus(ctx, booking.ID, persistence.BookingStatusRescheduled, nil, s.now()); err != nil {
		return BookingResult{}, mapRepoError(err)
	}

	result, err := s.CreateBooking(ctx, CreateBookingParams{
		EventTypeID: booking.EventTypeID,
		Start:       params.NewStart,
		Attendee: AttendeeInfo{
			Name:     booking.AttendeeName,
			Email:    booking.AttendeeEmail,
			Timezone: booking.AttendeeTimezone,
		},
	})
	if err != nil || result.Status != OutcomeCommitted {
		if restoreErr := s.bookings.UpdateBookingStatus(ctx, booking.ID, previousStatus, nil, s.now()); restoreErr != nil {
			logger.ErrorContext(ctx, "failed to restore booking after reschedule failure",
				"error", restoreErr)
		}
		if err != nil {
			return BookingResult{}, err
		}
		if result.Status == OutcomeConflict {
			return BookingResult{}, ErrSlotConflict
		}
		reason := "new start violates booking policy"
		if len(result.Occurrences) > 0 && result.Occurrences[0].Reason != "" {
			reason = result.Occurrences[0].Reason
		}
		return BookingResult{}, &PolicyViolation{Rule: "reschedule", Message: reason}
	}

	logger.InfoContext(ctx, "booking rescheduled", "new_booking_id", result.Occurrences[0].BookingID)
	return result, nil
}

// GetBooking returns the application view of a booking.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	stored, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapRepoError(err)
	}

	booking := Booking{
		ID:               stored.ID,
		EventTypeID:      stored.EventTypeID,
		HostIDs:          stored.HostIDs,
		Start:            stored.Start,
		End:              stored.End,
		Status:           stored.Status,
		AttendeeName:     stored.AttendeeName,
		AttendeeEmail:    stored.AttendeeEmail,
		AttendeeTimezone: stored.AttendeeTimezone,
		CreatedAt:        stored.CreatedAt,
		UpdatedAt:        stored.UpdatedAt,
	}
	if stored.SeriesID != nil {
		booking.SeriesID = *stored.SeriesID
	}
	if stored.CancelReason != nil {
		booking.CancelReason = *stored.CancelReason
	}
	return booking, nil
}

func validateBookingParams(params CreateBookingParams) error {
	vErr := &ValidationError{}
	if params.EventTypeID == "" {
		vErr.add("eventTypeId", "must not be empty")
	}
	if params.Start.IsZero() {
		vErr.add("start", "must be provided")
	}
	if strings.TrimSpace(params.Attendee.Name) == "" {
		vErr.add("attendee.name", "must not be empty")
	}
	if !strings.Contains(params.Attendee.Email, "@") {
		vErr.add("attendee.email", "must be a valid email address")
	}
	if params.Attendee.Timezone != "" {
		if _, err := time.LoadLocation(params.Attendee.Timezone); err != nil {
			vErr.add("attendee.timezone", "unknown IANA timezone")
		}
	}
	if recurrence := params.Recurrence; recurrence != nil {
		if recurrence.Frequency != RecurrenceDaily && recurrence.Frequency != RecurrenceWeekly {
			vErr.add("recurrence.frequency", "must be daily or weekly")
		}
		if recurrence.Count < 1 || recurrence.Count > maxSeriesOccurrences {
			vErr.add("recurrence.count", fmt.Sprintf("must be between 1 and %d", maxSeriesOccurrences))
		}
		if recurrence.Interval < 0 {
			vErr.add("recurrence.interval", "must not be negative")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// expandOccurrences turns a recurrence input into the concrete occurrence
// starts, first occurrence at the requested instant.
func expandOccurrences(start time.Time, recurrence *RecurrenceInput) ([]time.Time, error) {
	if recurrence == nil {
		return []time.Time{start}, nil
	}

	frequency := rrule.DAILY
	if recurrence.Frequency == RecurrenceWeekly {
		frequency = rrule.WEEKLY
	}
	repeatInterval := recurrence.Interval
	if repeatInterval == 0 {
		repeatInterval = 1
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     frequency,
		Interval: repeatInterval,
		Count:    recurrence.Count,
		Dtstart:  start,
	})
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("recurrence", err.Error())
		return nil, vErr
	}
	return rule.All(), nil
}

func overallStatus(occurrences []OccurrenceResult) string {
	anyConflict := false
	for _, occurrence := range occurrences {
		switch occurrence.Status {
		case OutcomeCommitted:
			return OutcomeCommitted
		case OutcomeConflict:
			anyConflict = true
		}
	}
	if anyConflict {
		return OutcomeConflict
	}
	return OutcomeRejectedPolicy
}

// hostLockRegistry serializes booking commits per host. Locks are acquired
// in sorted host-ID order so overlapping team commits cannot deadlock.
type hostLockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *hostLockRegistry) acquire(hostIDs []string) func() {
	ordered := make([]string, 0, len(hostIDs))
	seen := make(map[string]struct{}, len(hostIDs))
	for _, id := range hostIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	acquired := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		acquired = append(acquired, r.lockFor(id))
	}
	for _, lock := range acquired {
		lock.Lock()
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}

func (r *hostLockRegistry) lockFor(hostID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks == nil {
		r.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := r.locks[hostID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[hostID] = lock
	}
	return lock
}
