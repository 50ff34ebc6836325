package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/booking-scheduler/internal/application"
	"github.com/example/booking-scheduler/internal/persistence"
	"github.com/example/booking-scheduler/internal/testfixtures"
)

// tuesdayRange covers Tuesday 2024-01-16 in America/New_York, expressed in
// UTC (EST is UTC-5 in January).
func tuesdayRange() (time.Time, time.Time) {
	start := time.Date(2024, time.January, 16, 5, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func TestListSlotsBusinessHoursTuesday(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	eventType := env.newSingleHostEventType(t, testfixtures.WithHorizonDays(30))
	rangeStart, rangeEnd := tuesdayRange()

	slots, err := env.availability.ListSlots(context.Background(), application.ListSlotsParams{
		EventTypeID:      eventType.ID,
		RangeStart:       rangeStart,
		RangeEnd:         rangeEnd,
		AttendeeTimezone: "Asia/Tokyo",
	})
	if err != nil {
		t.Fatalf("ListSlots returned error: %v", err)
	}

	// 09:00-17:00 local with 30-minute slots: 09:00 through 16:30.
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d: %v", len(slots), slots)
	}
	first := time.Date(2024, time.January, 16, 14, 0, 0, 0, time.UTC)
	last := time.Date(2024, time.January, 16, 21, 30, 0, 0, time.UTC)
	if !slots[0].Start.Equal(first) {
		t.Errorf("first slot %v, want %v", slots[0].Start, first)
	}
	if !slots[len(slots)-1].Start.Equal(last) {
		t.Errorf("last slot %v, want %v", slots[len(slots)-1].Start, last)
	}
	for i, slot := range slots {
		if !slot.End.Equal(slot.Start.Add(30 * time.Minute)) {
			t.Errorf("slot %d has end %v, want start+30m", i, slot.End)
		}
		if i > 0 && !slots[i-1].Start.Before(slot.Start) {
			t.Errorf("slots not strictly ascending at %d", i)
		}
	}
}

func TestListSlotsFullyUnavailableOverride(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	ctx := context.Background()

	host := testfixtures.NewHostFixture()
	if err := env.harness.Hosts.CreateHost(ctx, host); err != nil {
		t.Fatalf("CreateHost returned error: %v", err)
	}
	schedule := testfixtures.NewScheduleFixture(host.ID,
		testfixtures.WithScheduleOverrides(persistence.DateOverride{Date: "2024-01-16", Unavailable: true}))
	if err := env.harness.Schedules.CreateSchedule(ctx, schedule); err != nil {
		t.Fatalf("CreateSchedule returned error: %v", err)
	}
	eventType := testfixtures.NewEventTypeFixture(schedule.ID, host.ID)
	if err := env.harness.EventTypes.CreateEventType(ctx, eventType); err != nil {
		t.Fatalf("CreateEventType returned error: %v", err)
	}

	rangeStart, rangeEnd := tuesdayRange()
	slots, err := env.availability.ListSlots(ctx, application.ListSlotsParams{
		EventTypeID: eventType.ID, RangeStart: rangeStart, RangeEnd: rangeEnd,
	})
	if err != nil {
		t.Fatalf("ListSlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected zero slots on overridden date, got %v", slots)
	}
}

func TestListSlotsExcludesBookedFootprint(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	eventType := env.newSingleHostEventType(t)
	ctx := context.Background()

	result, err := env.bookings.CreateBooking(ctx, application.CreateBookingParams{
		EventTypeID: eventType.ID, Start: tuesdaySlot, Attendee: attendee(),
	})
	if err != nil || result.Status != application.OutcomeCommitted {
		t.Fatalf("CreateBooking: status=%v err=%v", result.Status, err)
	}

	rangeStart, rangeEnd := tuesdayRange()
	slots, err := env.availability.ListSlots(ctx, application.ListSlotsParams{
		EventTypeID: eventType.ID, RangeStart: rangeStart, RangeEnd: rangeEnd,
	})
	if err != nil {
		t.Fatalf("ListSlots returned error: %v", err)
	}
	if len(slots) != 15 {
		t.Fatalf("expected 15 slots after booking, got %d", len(slots))
	}
	for _, slot := range slots {
		if slot.Start.Equal(tuesdaySlot) {
			t.Fatalf("booked slot still listed: %v", slot)
		}
	}
}

func TestListSlotsBuffersShrinkOpenings(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	// 30-minute meetings with 15-minute buffers either side need a 60-minute
	// footprint, stepping by the duration.
	eventType := env.newSingleHostEventType(t, testfixtures.WithBuffers(15, 15))
	rangeStart, rangeEnd := tuesdayRange()

	slots, err := env.availability.ListSlots(context.Background(), application.ListSlotsParams{
		EventTypeID: eventType.ID, RangeStart: rangeStart, RangeEnd: rangeEnd,
	})
	if err != nil {
		t.Fatalf("ListSlots returned error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected some buffered slots")
	}
	// Earliest start leaves room for the before buffer; latest leaves room
	// for duration plus after buffer before 17:00 local.
	dayStart := time.Date(2024, time.January, 16, 14, 0, 0, 0, time.UTC)
	dayEnd := time.Date(2024, time.January, 16, 22, 0, 0, 0, time.UTC)
	for _, slot := range slots {
		footprintStart := slot.Start.Add(-15 * time.Minute)
		footprintEnd := slot.End.Add(15 * time.Minute)
		if footprintStart.Before(dayStart) || footprintEnd.After(dayEnd) {
			t.Fatalf("slot footprint escapes the window: %v", slot)
		}
	}
}

func TestListSlotsRangeGuard(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	eventType := env.newSingleHostEventType(t)
	rangeStart, _ := tuesdayRange()

	_, err := env.availability.ListSlots(context.Background(), application.ListSlotsParams{
		EventTypeID: eventType.ID,
		RangeStart:  rangeStart,
		RangeEnd:    rangeStart.AddDate(0, 0, 365),
	})
	var policyErr *application.PolicyViolation
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected PolicyViolation for oversized range, got %v", err)
	}
	if policyErr.Rule != "listing_range" {
		t.Fatalf("unexpected rule %q", policyErr.Rule)
	}
}

func TestListSlotsValidation(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	rangeStart, rangeEnd := tuesdayRange()

	tests := []struct {
		name   string
		params application.ListSlotsParams
		field  string
	}{
		{
			name:   "missing event type",
			params: application.ListSlotsParams{RangeStart: rangeStart, RangeEnd: rangeEnd},
			field:  "eventTypeId",
		},
		{
			name:   "inverted range",
			params: application.ListSlotsParams{EventTypeID: "et", RangeStart: rangeEnd, RangeEnd: rangeStart},
			field:  "range",
		},
		{
			name: "unknown timezone",
			params: application.ListSlotsParams{
				EventTypeID: "et", RangeStart: rangeStart, RangeEnd: rangeEnd,
				AttendeeTimezone: "Mars/Olympus",
			},
			field: "timezone",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.availability.ListSlots(context.Background(), tc.params)
			var vErr *application.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected field error for %s, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestListSlotsUnknownEventType(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	rangeStart, rangeEnd := tuesdayRange()

	_, err := env.availability.ListSlots(context.Background(), application.ListSlotsParams{
		EventTypeID: "missing", RangeStart: rangeStart, RangeEnd: rangeEnd,
	})
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSlotsCollectiveIntersection(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	eventType := env.newTeamEventType(t, "collective", 2)
	ctx := context.Background()

	// Occupy one member at 09:00 local via a personal event type; the
	// collective listing must drop that slot even though the other member
	// stays free.
	personal := testfixtures.NewEventTypeFixture(eventType.ScheduleID, eventType.MemberIDs[0])
	if err := env.harness.EventTypes.CreateEventType(ctx, personal); err != nil {
		t.Fatalf("CreateEventType returned error: %v", err)
	}
	result, err := env.bookings.CreateBooking(ctx, application.CreateBookingParams{
		EventTypeID: personal.ID, Start: tuesdaySlot, Attendee: attendee(),
	})
	if err != nil || result.Status != application.OutcomeCommitted {
		t.Fatalf("personal booking: status=%v err=%v", result.Status, err)
	}

	rangeStart, rangeEnd := tuesdayRange()
	slots, err := env.availability.ListSlots(ctx, application.ListSlotsParams{
		EventTypeID: eventType.ID, RangeStart: rangeStart, RangeEnd: rangeEnd,
	})
	if err != nil {
		t.Fatalf("ListSlots returned error: %v", err)
	}
	for _, slot := range slots {
		if slot.Start.Equal(tuesdaySlot) {
			t.Fatalf("collective slot listed despite a busy member: %v", slot)
		}
	}
}

func TestListSlotsRoundRobinUnion(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	eventType := env.newTeamEventType(t, "round_robin", 2)
	ctx := context.Background()

	// With one member busy the slot stays listed, backed by the free member.
	personal := testfixtures.NewEventTypeFixture(eventType.ScheduleID, eventType.MemberIDs[0])
	if err := env.harness.EventTypes.CreateEventType(ctx, personal); err != nil {
		t.Fatalf("CreateEventType returned error: %v", err)
	}
	result, err := env.bookings.CreateBooking(ctx, application.CreateBookingParams{
		EventTypeID: personal.ID, Start: tuesdaySlot, Attendee: attendee(),
	})
	if err != nil || result.Status != application.OutcomeCommitted {
		t.Fatalf("personal booking: status=%v err=%v", result.Status, err)
	}

	rangeStart, rangeEnd := tuesdayRange()
	slots, err := env.availability.ListSlots(ctx, application.ListSlotsParams{
		EventTypeID: eventType.ID, RangeStart: rangeStart, RangeEnd: rangeEnd,
	})
	if err != nil {
		t.Fatalf("ListSlots returned error: %v", err)
	}
	found := false
	for _, slot := range slots {
		if slot.Start.Equal(tuesdaySlot) {
			found = true
		}
	}
	if !found {
		t.Fatalf("round robin slot missing despite a free member: %v", slots)
	}
}
