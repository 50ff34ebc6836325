package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/example/booking-scheduler/internal/interval"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	dayStart := time.Date(2024, time.March, 5, 9, 0, 0, 0, newYork)
	dayEnd := time.Date(2024, time.March, 5, 17, 0, 0, 0, newYork)
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("business hours produce sixteen half-hour slots", func(t *testing.T) {
		t.Parallel()

		starts, err := Generate([]interval.Interval{{Start: dayStart, End: dayEnd}}, GenerateParams{
			Duration:    30 * time.Minute,
			HorizonDays: 30,
			Now:         now,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if len(starts) != 16 {
			t.Fatalf("expected 16 slots, got %d", len(starts))
		}
		if !starts[0].Equal(dayStart) {
			t.Fatalf("expected first slot at 09:00, got %v", starts[0].In(newYork))
		}
		last := time.Date(2024, time.March, 5, 16, 30, 0, 0, newYork)
		if !starts[15].Equal(last) {
			t.Fatalf("expected last slot at 16:30, got %v", starts[15].In(newYork))
		}
	})

	t.Run("buffers shrink the usable interval", func(t *testing.T) {
		t.Parallel()

		starts, err := Generate([]interval.Interval{{Start: dayStart, End: dayStart.Add(2 * time.Hour)}}, GenerateParams{
			Duration:     30 * time.Minute,
			BeforeBuffer: 15 * time.Minute,
			AfterBuffer:  15 * time.Minute,
			Now:          now,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		// Usable window is 09:15–10:45, fitting 09:15, 09:45 and 10:15.
		if len(starts) != 3 {
			t.Fatalf("expected 3 slots, got %v", starts)
		}
		if !starts[0].Equal(dayStart.Add(15 * time.Minute)) {
			t.Fatalf("expected first slot at 09:15, got %v", starts[0].In(newYork))
		}
		for _, start := range starts {
			footprintEnd := start.Add(30*time.Minute + 15*time.Minute)
			if footprintEnd.After(dayStart.Add(2 * time.Hour)) {
				t.Fatalf("slot %v exceeds its containing interval", start.In(newYork))
			}
		}
	})

	t.Run("footprint touching the interval boundary is included", func(t *testing.T) {
		t.Parallel()

		starts, err := Generate([]interval.Interval{{Start: dayStart, End: dayStart.Add(time.Hour)}}, GenerateParams{
			Duration: time.Hour,
			Now:      now,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(starts) != 1 || !starts[0].Equal(dayStart) {
			t.Fatalf("expected exactly the boundary-touching slot, got %v", starts)
		}
	})

	t.Run("minimum notice discards early starts", func(t *testing.T) {
		t.Parallel()

		nearNow := dayStart.Add(-90 * time.Minute)
		starts, err := Generate([]interval.Interval{{Start: dayStart, End: dayStart.Add(3 * time.Hour)}}, GenerateParams{
			Duration:      time.Hour,
			MinimumNotice: 2 * time.Hour,
			Now:           nearNow,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		// now+notice lands at 09:30, removing the 09:00 candidate.
		if len(starts) != 2 {
			t.Fatalf("expected 2 slots, got %v", starts)
		}
		if !starts[0].Equal(dayStart.Add(time.Hour)) {
			t.Fatalf("expected first slot at 10:00, got %v", starts[0].In(newYork))
		}
	})

	t.Run("horizon discards far-future starts", func(t *testing.T) {
		t.Parallel()

		farDay := interval.Interval{
			Start: time.Date(2024, time.April, 10, 9, 0, 0, 0, newYork),
			End:   time.Date(2024, time.April, 10, 17, 0, 0, 0, newYork),
		}
		starts, err := Generate([]interval.Interval{farDay}, GenerateParams{
			Duration:    30 * time.Minute,
			HorizonDays: 14,
			Now:         now,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(starts) != 0 {
			t.Fatalf("expected no slots beyond the horizon, got %v", starts)
		}
	})

	t.Run("cadence shorter than duration yields overlapping candidates", func(t *testing.T) {
		t.Parallel()

		starts, err := Generate([]interval.Interval{{Start: dayStart, End: dayStart.Add(time.Hour)}}, GenerateParams{
			Duration: 45 * time.Minute,
			Cadence:  15 * time.Minute,
			Now:      now,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(starts) != 2 {
			t.Fatalf("expected starts at 09:00 and 09:15, got %v", starts)
		}
	})

	t.Run("rejects non-positive durations", func(t *testing.T) {
		t.Parallel()

		_, err := Generate(nil, GenerateParams{Duration: 0, Now: now})
		if !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("expected ErrInvalidDuration, got %v", err)
		}
	})
}

func TestFitsWithin(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	available := []interval.Interval{{Start: base, End: base.Add(4 * time.Hour)}}
	params := GenerateParams{
		Duration:     30 * time.Minute,
		BeforeBuffer: 10 * time.Minute,
		AfterBuffer:  10 * time.Minute,
	}

	if !FitsWithin(available, base.Add(time.Hour), params) {
		t.Fatalf("expected interior slot to fit")
	}
	if FitsWithin(available, base, params) {
		t.Fatalf("expected slot whose before-buffer leaks past the start to be rejected")
	}
	if FitsWithin(available, base.Add(4*time.Hour), params) {
		t.Fatalf("expected slot outside the interval to be rejected")
	}
}
