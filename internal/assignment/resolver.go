package assignment

import "errors"

// SchedulingType describes how hosts bind to a booked slot.
type SchedulingType string

const (
	// TypeSingle books one fixed host.
	TypeSingle SchedulingType = "single"
	// TypeRoundRobin distributes bookings across team members in turn.
	TypeRoundRobin SchedulingType = "round_robin"
	// TypeCollective books every team member simultaneously.
	TypeCollective SchedulingType = "collective"
)

// Valid reports whether the scheduling type is one of the known variants.
func (t SchedulingType) Valid() bool {
	switch t {
	case TypeSingle, TypeRoundRobin, TypeCollective:
		return true
	}
	return false
}

// ErrNoFreeHost indicates no team member can take the slot.
var ErrNoFreeHost = errors.New("assignment: no free host for slot")

// ErrInvalidType indicates an unknown scheduling type.
var ErrInvalidType = errors.New("assignment: invalid scheduling type")

// Team captures the fixed, deterministic member ordering an event type was
// configured with, plus the round-robin cursor: the position of the member
// assigned by the most recent successful booking, or -1 before the first.
type Team struct {
	MemberIDs []string
	Cursor    int
}

// Result is the outcome of resolving an assignment.
type Result struct {
	HostIDs []string
	// Cursor is the updated round-robin position. Unchanged for other types.
	Cursor int
}

// Resolve decides which host(s) a slot binds to at booking-commit time.
//
// For round robin, freeMemberIDs is the subset of team members free at the
// chosen instant; the member at the next position after the cursor is
// preferred, advancing circularly past busy members. Callers must invoke
// this inside the same serialized section as the occupancy check, since the
// cursor is contended state.
func Resolve(schedulingType SchedulingType, singleHostID string, team Team, freeMemberIDs []string) (Result, error) {
	switch schedulingType {
	case TypeSingle:
		if singleHostID == "" {
			return Result{}, ErrNoFreeHost
		}
		return Result{HostIDs: []string{singleHostID}, Cursor: team.Cursor}, nil

	case TypeCollective:
		if len(team.MemberIDs) == 0 {
			return Result{}, ErrNoFreeHost
		}
		members := make([]string, len(team.MemberIDs))
		copy(members, team.MemberIDs)
		return Result{HostIDs: members, Cursor: team.Cursor}, nil

	case TypeRoundRobin:
		return resolveRoundRobin(team, freeMemberIDs)

	default:
		return Result{}, ErrInvalidType
	}
}

func resolveRoundRobin(team Team, freeMemberIDs []string) (Result, error) {
	if len(team.MemberIDs) == 0 || len(freeMemberIDs) == 0 {
		return Result{}, ErrNoFreeHost
	}

	free := make(map[string]struct{}, len(freeMemberIDs))
	for _, id := range freeMemberIDs {
		free[id] = struct{}{}
	}

	count := len(team.MemberIDs)
	for offset := 1; offset <= count; offset++ {
		position := (team.Cursor + offset) % count
		if position < 0 {
			position += count
		}
		candidate := team.MemberIDs[position]
		if _, ok := free[candidate]; ok {
			return Result{HostIDs: []string{candidate}, Cursor: position}, nil
		}
	}

	return Result{}, ErrNoFreeHost
}
