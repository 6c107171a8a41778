package allocation

import "time"

// StatusChanges is a partial overlay over Statuses: nil fields are untouched.
type StatusChanges struct {
	FormativeOneGrading *string
	FormativeTwoGrading *string
	SummativeGrading    *string
	CourseModeration    *string
	IntranetSync        *string
	GradeBookStatus     *string
}

// TrackerState is the lifecycle-relevant slice of an ActivityTracker row.
type TrackerState struct {
	Statuses    Statuses
	SubmittedAt *time.Time
}

// NewTrackerState derives the initial state of a tracker row: when any task
// is already Done at creation time, the row counts as submitted.
func NewTrackerState(s Statuses, now time.Time) TrackerState {
	state := TrackerState{Statuses: s}
	if anyDone(s) {
		state.SubmittedAt = &now
	}
	return state
}

// ApplyLifecycleRule merges the proposed changes into prev and derives the
// submission timestamp. A null submittedAt is set to now only when a field
// changed by this update lands on Done; fields already Done from before do
// not count. A non-null submittedAt is never cleared or recomputed, even if
// every task is later reverted.
func ApplyLifecycleRule(prev TrackerState, changes StatusChanges, now time.Time) TrackerState {
	next := prev
	completed := false

	apply := func(field *string, change *string) {
		if change == nil {
			return
		}
		if *change != *field && *change == StatusDone {
			completed = true
		}
		*field = *change
	}
	apply(&next.Statuses.FormativeOneGrading, changes.FormativeOneGrading)
	apply(&next.Statuses.FormativeTwoGrading, changes.FormativeTwoGrading)
	apply(&next.Statuses.SummativeGrading, changes.SummativeGrading)
	apply(&next.Statuses.CourseModeration, changes.CourseModeration)
	apply(&next.Statuses.IntranetSync, changes.IntranetSync)
	apply(&next.Statuses.GradeBookStatus, changes.GradeBookStatus)

	if completed && next.SubmittedAt == nil {
		next.SubmittedAt = &now
	}
	return next
}

func anyDone(s Statuses) bool {
	return s.FormativeOneGrading == StatusDone ||
		s.FormativeTwoGrading == StatusDone ||
		s.SummativeGrading == StatusDone ||
		s.CourseModeration == StatusDone ||
		s.IntranetSync == StatusDone ||
		s.GradeBookStatus == StatusDone
}
