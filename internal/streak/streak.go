// Package streak holds the pure daily-streak rules. Nothing here touches storage:
// callers load a State, ask for the next State, and persist it themselves.
package streak

// State is the streak part of a user aggregate.
type State struct {
	CurrentStreak int
	LongestStreak int
	// LastActive is nil for a user who never completed anything.
	LastActive *Day
}

// Transition names what Advance did, mostly for logs and metrics.
type Transition string

const (
	TransitionStarted   Transition = "started"
	TransitionExtended  Transition = "extended"
	TransitionReset     Transition = "reset"
	TransitionUnchanged Transition = "unchanged"
	// TransitionDuplicate is reported by callers when the ledger already holds the day
	// and Advance is never reached.
	TransitionDuplicate Transition = "duplicate"
)

// Advance applies the first qualifying event of day to s.
//
//	no previous day  -> 1
//	gap == 1         -> current + 1
//	gap >= 2         -> 1
//	gap <= 0         -> unchanged, LastActive is not moved backwards
func Advance(s State, day Day) (State, Transition) {
	next := s
	transition := TransitionStarted

	if s.LastActive == nil {
		next.CurrentStreak = 1
	} else {
		gap := DaysBetween(*s.LastActive, day)
		switch {
		case gap == 1:
			next.CurrentStreak = s.CurrentStreak + 1
			transition = TransitionExtended
		case gap >= 2:
			next.CurrentStreak = 1
			transition = TransitionReset
		default:
			return s, TransitionUnchanged
		}
	}

	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	d := day
	next.LastActive = &d
	return next, transition
}

// Display is the streak shown to the user on today. A streak whose last active day
// is more than one day old has lapsed and reads as 0 even if the stored counter has
// not been reset yet.
func Display(s State, today Day) int {
	if s.LastActive == nil {
		return 0
	}
	if Lapsed(*s.LastActive, today) {
		return 0
	}
	return s.CurrentStreak
}

// Lapsed reports whether at least one full day was missed between last and today.
func Lapsed(last, today Day) bool {
	return DaysBetween(last, today) > 1
}

// SweepCutoff returns the day before which a last-active date counts as lapsed when
// the reset sweep runs for asOf.
func SweepCutoff(asOf Day) Day {
	return asOf.AddDays(-1)
}
