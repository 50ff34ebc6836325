package availability

import (
	"time"

	"github.com/example/booking-scheduler/internal/interval"
)

// Commitment is an existing booking's claim on one or more hosts' calendars.
// Callers must only supply commitments that actually occupy time (PENDING or
// ACCEPTED bookings); cancelled, rejected and rescheduled bookings are
// excluded from the input set entirely.
type Commitment struct {
	HostIDs []string
	Start   time.Time
	End     time.Time
	// Buffers of the commitment's own event type, which expand its true
	// calendar footprint.
	BeforeBuffer time.Duration
	AfterBuffer  time.Duration
}

// Footprint returns the full calendar claim of the commitment, including its
// buffers.
func (c Commitment) Footprint() interval.Interval {
	return interval.Interval{
		Start: c.Start.Add(-c.BeforeBuffer),
		End:   c.End.Add(c.AfterBuffer),
	}
}

func (c Commitment) involves(hostID string) bool {
	for _, id := range c.HostIDs {
		if id == hostID {
			return true
		}
	}
	return false
}

// BusyIntervals collects the merged buffered footprints claimed on a single
// host's calendar.
func BusyIntervals(hostID string, commitments []Commitment) []interval.Interval {
	busy := make([]interval.Interval, 0, len(commitments))
	for _, commitment := range commitments {
		if !commitment.involves(hostID) {
			continue
		}
		busy = append(busy, commitment.Footprint())
	}
	return interval.MergeOverlapping(busy)
}

// FilterHost removes a host's busy time from the available intervals.
func FilterHost(available []interval.Interval, hostID string, commitments []Commitment) []interval.Interval {
	return interval.SubtractAll(available, BusyIntervals(hostID, commitments))
}

// FilterCollective intersects every member's filtered availability: a slot
// exists only where all members are simultaneously free.
func FilterCollective(available []interval.Interval, memberIDs []string, commitments []Commitment) []interval.Interval {
	if len(memberIDs) == 0 {
		return nil
	}
	result := FilterHost(available, memberIDs[0], commitments)
	for _, memberID := range memberIDs[1:] {
		if len(result) == 0 {
			return nil
		}
		result = interval.IntersectSets(result, FilterHost(available, memberID, commitments))
	}
	return result
}

// FilterRoundRobin unions every member's filtered availability: a slot
// exists wherever at least one member is free. Which members are free at a
// particular instant is resolved separately at commit time via FreeMembers.
func FilterRoundRobin(available []interval.Interval, memberIDs []string, commitments []Commitment) []interval.Interval {
	union := make([]interval.Interval, 0)
	for _, memberID := range memberIDs {
		union = append(union, FilterHost(available, memberID, commitments)...)
	}
	return interval.MergeOverlapping(union)
}

// FreeMembers returns, in the given member order, every member whose
// filtered availability fully covers the candidate footprint.
func FreeMembers(available []interval.Interval, memberIDs []string, commitments []Commitment, footprint interval.Interval) []string {
	free := make([]string, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		for _, iv := range FilterHost(available, memberID, commitments) {
			if iv.Covers(footprint) {
				free = append(free, memberID)
				break
			}
		}
	}
	if len(free) == 0 {
		return nil
	}
	return free
}
