package allocation

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func allNotStarted() Statuses {
	return Statuses{
		FormativeOneGrading: StatusNotStarted,
		FormativeTwoGrading: StatusNotStarted,
		SummativeGrading:    StatusNotStarted,
		CourseModeration:    StatusNotStarted,
		IntranetSync:        StatusNotStarted,
		GradeBookStatus:     StatusNotStarted,
	}
}

func TestNewTrackerState(t *testing.T) {
	now := time.Now().UTC()

	t.Run("all defaults leaves submittedAt nil", func(t *testing.T) {
		state := NewTrackerState(allNotStarted(), now)
		if state.SubmittedAt != nil {
			t.Errorf("SubmittedAt = %v, want nil", state.SubmittedAt)
		}
	})

	t.Run("any Done sets submittedAt", func(t *testing.T) {
		s := allNotStarted()
		s.SummativeGrading = StatusDone
		state := NewTrackerState(s, now)
		if state.SubmittedAt == nil || !state.SubmittedAt.Equal(now) {
			t.Errorf("SubmittedAt = %v, want %v", state.SubmittedAt, now)
		}
	})

	t.Run("Pending alone does not set submittedAt", func(t *testing.T) {
		s := allNotStarted()
		s.IntranetSync = StatusPending
		state := NewTrackerState(s, now)
		if state.SubmittedAt != nil {
			t.Errorf("SubmittedAt = %v, want nil", state.SubmittedAt)
		}
	})
}

func TestApplyLifecycleRule(t *testing.T) {
	now := time.Now().UTC()
	earlier := now.Add(-48 * time.Hour)

	t.Run("changed field landing on Done sets submittedAt", func(t *testing.T) {
		prev := TrackerState{Statuses: allNotStarted()}
		next := ApplyLifecycleRule(prev, StatusChanges{IntranetSync: strPtr(StatusDone)}, now)
		if next.Statuses.IntranetSync != StatusDone {
			t.Errorf("IntranetSync = %q, want %q", next.Statuses.IntranetSync, StatusDone)
		}
		if next.SubmittedAt == nil || !next.SubmittedAt.Equal(now) {
			t.Errorf("SubmittedAt = %v, want %v", next.SubmittedAt, now)
		}
	})

	t.Run("change not reaching Done leaves submittedAt nil", func(t *testing.T) {
		prev := TrackerState{Statuses: allNotStarted()}
		next := ApplyLifecycleRule(prev, StatusChanges{SummativeGrading: strPtr(StatusPending)}, now)
		if next.SubmittedAt != nil {
			t.Errorf("SubmittedAt = %v, want nil", next.SubmittedAt)
		}
	})

	t.Run("field already Done does not count", func(t *testing.T) {
		prev := TrackerState{Statuses: allNotStarted()}
		prev.Statuses.SummativeGrading = StatusDone // pre-existing, submittedAt somehow null
		next := ApplyLifecycleRule(prev, StatusChanges{SummativeGrading: strPtr(StatusDone)}, now)
		if next.SubmittedAt != nil {
			t.Errorf("SubmittedAt = %v, want nil", next.SubmittedAt)
		}
	})

	t.Run("existing submittedAt is never recomputed", func(t *testing.T) {
		prev := TrackerState{Statuses: allNotStarted(), SubmittedAt: &earlier}
		prev.Statuses.IntranetSync = StatusDone
		next := ApplyLifecycleRule(prev, StatusChanges{GradeBookStatus: strPtr(StatusDone)}, now)
		if next.SubmittedAt == nil || !next.SubmittedAt.Equal(earlier) {
			t.Errorf("SubmittedAt = %v, want %v", next.SubmittedAt, earlier)
		}
	})

	t.Run("reverting to Not Started does not clear submittedAt", func(t *testing.T) {
		prev := TrackerState{Statuses: allNotStarted(), SubmittedAt: &earlier}
		prev.Statuses.IntranetSync = StatusDone
		next := ApplyLifecycleRule(prev, StatusChanges{IntranetSync: strPtr(StatusNotStarted)}, now)
		if next.Statuses.IntranetSync != StatusNotStarted {
			t.Errorf("IntranetSync = %q, want %q", next.Statuses.IntranetSync, StatusNotStarted)
		}
		if next.SubmittedAt == nil || !next.SubmittedAt.Equal(earlier) {
			t.Errorf("SubmittedAt = %v, want %v", next.SubmittedAt, earlier)
		}
	})

	t.Run("nil changes leave state untouched", func(t *testing.T) {
		prev := TrackerState{Statuses: allNotStarted()}
		prev.Statuses.CourseModeration = StatusPending
		next := ApplyLifecycleRule(prev, StatusChanges{}, now)
		if next != prev {
			t.Errorf("state = %+v, want %+v", next, prev)
		}
	})
}
