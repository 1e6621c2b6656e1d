package matching

import "time"

// Window bounds a slot search. EarlyExit stops generation at the
// first free slot, bounding the emergency path's latency.
type Window struct {
	Start     time.Time
	End       time.Time
	EarlyExit bool
}

// WindowFor maps an urgency to its search window. The clock is passed
// in explicitly so callers control determinism. This table is the
// single source of truth for window sizing.
func WindowFor(urgency string, now time.Time) Window {
	switch urgency {
	case UrgencyEmergency:
		return Window{Start: now, End: now.Add(2 * time.Hour), EarlyExit: true}
	case UrgencyUrgent:
		return Window{Start: now, End: now.AddDate(0, 0, 1)}
	default:
		return Window{Start: now, End: now.AddDate(0, 0, 7)}
	}
}
