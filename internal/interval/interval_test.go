package interval

import (
	"testing"
	"time"
)

func at(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2024, time.March, 5, hour, minute, 0, 0, time.UTC)
}

func TestIntersect(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		a, b    Interval
		want    Interval
		overlap bool
	}{
		{
			name:    "partial overlap",
			a:       Interval{Start: at(t, 9, 0), End: at(t, 12, 0)},
			b:       Interval{Start: at(t, 11, 0), End: at(t, 14, 0)},
			want:    Interval{Start: at(t, 11, 0), End: at(t, 12, 0)},
			overlap: true,
		},
		{
			name:    "containment",
			a:       Interval{Start: at(t, 9, 0), End: at(t, 17, 0)},
			b:       Interval{Start: at(t, 10, 0), End: at(t, 11, 0)},
			want:    Interval{Start: at(t, 10, 0), End: at(t, 11, 0)},
			overlap: true,
		},
		{
			name: "touching edges are disjoint",
			a:    Interval{Start: at(t, 9, 0), End: at(t, 10, 0)},
			b:    Interval{Start: at(t, 10, 0), End: at(t, 11, 0)},
		},
		{
			name: "fully disjoint",
			a:    Interval{Start: at(t, 9, 0), End: at(t, 10, 0)},
			b:    Interval{Start: at(t, 12, 0), End: at(t, 13, 0)},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Intersect(tc.a, tc.b)
			if ok != tc.overlap {
				t.Fatalf("expected overlap=%v, got %v", tc.overlap, ok)
			}
			if ok && (!got.Start.Equal(tc.want.Start) || !got.End.Equal(tc.want.End)) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestMergeOverlapping(t *testing.T) {
	t.Parallel()

	t.Run("coalesces overlapping and touching intervals", func(t *testing.T) {
		t.Parallel()

		merged := MergeOverlapping([]Interval{
			{Start: at(t, 13, 0), End: at(t, 14, 0)},
			{Start: at(t, 9, 0), End: at(t, 10, 30)},
			{Start: at(t, 10, 0), End: at(t, 11, 0)},
			{Start: at(t, 11, 0), End: at(t, 12, 0)},
		})

		if len(merged) != 2 {
			t.Fatalf("expected 2 merged intervals, got %d: %v", len(merged), merged)
		}
		if !merged[0].Start.Equal(at(t, 9, 0)) || !merged[0].End.Equal(at(t, 12, 0)) {
			t.Fatalf("unexpected first interval: %v", merged[0])
		}
		if !merged[1].Start.Equal(at(t, 13, 0)) || !merged[1].End.Equal(at(t, 14, 0)) {
			t.Fatalf("unexpected second interval: %v", merged[1])
		}
	})

	t.Run("drops empty intervals", func(t *testing.T) {
		t.Parallel()

		merged := MergeOverlapping([]Interval{
			{Start: at(t, 9, 0), End: at(t, 9, 0)},
			{Start: at(t, 10, 0), End: at(t, 9, 0)},
		})
		if merged != nil {
			t.Fatalf("expected nil, got %v", merged)
		}
	})
}

func TestSubtract(t *testing.T) {
	t.Parallel()

	day := Interval{Start: at(t, 9, 0), End: at(t, 17, 0)}

	t.Run("splits around interior busy blocks", func(t *testing.T) {
		t.Parallel()

		remaining := Subtract(day, []Interval{
			{Start: at(t, 10, 0), End: at(t, 11, 0)},
			{Start: at(t, 13, 0), End: at(t, 14, 0)},
		})

		want := []Interval{
			{Start: at(t, 9, 0), End: at(t, 10, 0)},
			{Start: at(t, 11, 0), End: at(t, 13, 0)},
			{Start: at(t, 14, 0), End: at(t, 17, 0)},
		}
		assertIntervals(t, want, remaining)
	})

	t.Run("clips busy blocks extending past the edges", func(t *testing.T) {
		t.Parallel()

		remaining := Subtract(day, []Interval{
			{Start: at(t, 8, 0), End: at(t, 9, 30)},
			{Start: at(t, 16, 30), End: at(t, 18, 0)},
		})

		want := []Interval{{Start: at(t, 9, 30), End: at(t, 16, 30)}}
		assertIntervals(t, want, remaining)
	})

	t.Run("returns nothing when fully covered", func(t *testing.T) {
		t.Parallel()

		remaining := Subtract(day, []Interval{{Start: at(t, 8, 0), End: at(t, 18, 0)}})
		if len(remaining) != 0 {
			t.Fatalf("expected empty result, got %v", remaining)
		}
	})

	t.Run("ignores busy blocks outside the interval", func(t *testing.T) {
		t.Parallel()

		remaining := Subtract(day, []Interval{{Start: at(t, 18, 0), End: at(t, 19, 0)}})
		assertIntervals(t, []Interval{day}, remaining)
	})
}

func TestSubtractAll(t *testing.T) {
	t.Parallel()

	available := []Interval{
		{Start: at(t, 9, 0), End: at(t, 12, 0)},
		{Start: at(t, 13, 0), End: at(t, 17, 0)},
	}
	busy := []Interval{
		{Start: at(t, 11, 0), End: at(t, 13, 30)},
		{Start: at(t, 11, 30), End: at(t, 13, 15)},
	}

	remaining := SubtractAll(available, busy)
	want := []Interval{
		{Start: at(t, 9, 0), End: at(t, 11, 0)},
		{Start: at(t, 13, 30), End: at(t, 17, 0)},
	}
	assertIntervals(t, want, remaining)
}

func TestIntersectSets(t *testing.T) {
	t.Parallel()

	a := []Interval{
		{Start: at(t, 9, 0), End: at(t, 12, 0)},
		{Start: at(t, 14, 0), End: at(t, 17, 0)},
	}
	b := []Interval{
		{Start: at(t, 10, 0), End: at(t, 15, 0)},
		{Start: at(t, 16, 0), End: at(t, 18, 0)},
	}

	got := IntersectSets(a, b)
	want := []Interval{
		{Start: at(t, 10, 0), End: at(t, 12, 0)},
		{Start: at(t, 14, 0), End: at(t, 15, 0)},
		{Start: at(t, 16, 0), End: at(t, 17, 0)},
	}
	assertIntervals(t, want, got)
}

func assertIntervals(t *testing.T, want, got []Interval) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("expected %d intervals, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("interval %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
