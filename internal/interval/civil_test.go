package interval

import (
	"testing"
	"time"
)

func TestCivilDatesCovering(t *testing.T) {
	t.Parallel()

	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	t.Run("spans local dates rather than UTC dates", func(t *testing.T) {
		t.Parallel()

		// 2024-03-05 23:00 UTC is still 18:00 on the 5th in New York.
		r := Interval{
			Start: time.Date(2024, time.March, 5, 23, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.March, 6, 1, 0, 0, 0, time.UTC),
		}

		dates := CivilDatesCovering(r, newYork)
		if len(dates) != 1 {
			t.Fatalf("expected a single local date, got %v", dates)
		}
		if dates[0].String() != "2024-03-05" {
			t.Fatalf("expected 2024-03-05, got %s", dates[0])
		}
	})

	t.Run("excludes the date starting exactly at the range end", func(t *testing.T) {
		t.Parallel()

		r := Interval{
			Start: time.Date(2024, time.March, 5, 5, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.March, 6, 5, 0, 0, 0, time.UTC), // local midnight on the 6th
		}

		dates := CivilDatesCovering(r, newYork)
		if len(dates) != 1 || dates[0].String() != "2024-03-05" {
			t.Fatalf("expected only 2024-03-05, got %v", dates)
		}
	})

	t.Run("enumerates multi-day ranges in order", func(t *testing.T) {
		t.Parallel()

		r := Interval{
			Start: time.Date(2024, time.February, 28, 12, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.March, 2, 12, 0, 0, 0, time.UTC),
		}

		dates := CivilDatesCovering(r, time.UTC)
		want := []string{"2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
		if len(dates) != len(want) {
			t.Fatalf("expected %d dates, got %v", len(want), dates)
		}
		for i, expected := range want {
			if dates[i].String() != expected {
				t.Fatalf("date %d: expected %s, got %s", i, expected, dates[i])
			}
		}
	})
}

func TestCivilDateInstantAtMinute(t *testing.T) {
	t.Parallel()

	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	t.Run("regular day", func(t *testing.T) {
		t.Parallel()

		d := CivilDate{Year: 2024, Month: time.March, Day: 5}
		got := d.InstantAtMinute(9*60, newYork)
		want := time.Date(2024, time.March, 5, 9, 0, 0, 0, newYork)
		if !got.Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("spring-forward day keeps both window edges correct", func(t *testing.T) {
		t.Parallel()

		// 2024-03-10: clocks jump from 02:00 to 03:00 in New York, so the
		// local day is 23 hours long.
		d := CivilDate{Year: 2024, Month: time.March, Day: 10}

		start := d.InstantAtMinute(9*60, newYork)
		end := d.InstantAtMinute(17*60, newYork)

		if got := end.Sub(start); got != 8*time.Hour {
			t.Fatalf("expected an 8 hour window, got %v", got)
		}

		day := d.DayInterval(newYork)
		if got := day.End.Sub(day.Start); got != 23*time.Hour {
			t.Fatalf("expected a 23 hour local day, got %v", got)
		}
	})

	t.Run("fall-back day spans 25 hours", func(t *testing.T) {
		t.Parallel()

		d := CivilDate{Year: 2024, Month: time.November, Day: 3}
		day := d.DayInterval(newYork)
		if got := day.End.Sub(day.Start); got != 25*time.Hour {
			t.Fatalf("expected a 25 hour local day, got %v", got)
		}
	})
}
