package allocation

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
)

var (
	errOfferingExists = "course offering already exists for this module, class, cohort and intake period"
	errTrackerExists  = "activity log already exists for this offering and week"
)

type (
	Repository interface {
		CreateOffering(ctx context.Context, o CourseOffering) (CourseOffering, error)
		GetOfferingByID(ctx context.Context, id int) (CourseOffering, error)
		GetOfferingByComposite(ctx context.Context, moduleID, classID, cohortID int, intakePeriod string) (CourseOffering, error)
		FilterOfferings(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]CourseOffering, int64, error)
		UpdateOffering(ctx context.Context, o CourseOffering) (CourseOffering, error)
		// DeleteOffering cascades to the offering's activity trackers.
		DeleteOffering(ctx context.Context, id int) error
		CountActiveAssignments(ctx context.Context, facilitatorID int) (int64, error)

		CreateTracker(ctx context.Context, t ActivityTracker) (ActivityTracker, error)
		GetTrackerByID(ctx context.Context, id int) (ActivityTracker, error)
		GetTrackerByOfferingWeek(ctx context.Context, allocationID, weekNumber int) (ActivityTracker, error)
		FilterTrackers(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]ActivityTracker, int64, error)
		UpdateTracker(ctx context.Context, t ActivityTracker) (ActivityTracker, error)
		DeleteTracker(ctx context.Context, id int) error
	}

	// ReferenceChecker verifies that the rows an offering points at exist.
	// Lookups return core.ErrNotFound for missing ids.
	ReferenceChecker interface {
		ModuleExists(ctx context.Context, id int) error
		ClassExists(ctx context.Context, id int) error
		CohortExists(ctx context.Context, id int) error
		ModeExists(ctx context.Context, id int) error
		FacilitatorExists(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
		refs ReferenceChecker
	}
)

func NewService(repo Repository, refs ReferenceChecker) *Service {
	return &Service{repo: repo, refs: refs}
}

// CountActiveAssignments satisfies staff.AssignmentCounter.
func (svc *Service) CountActiveAssignments(ctx context.Context, facilitatorID int) (int64, error) {
	return svc.repo.CountActiveAssignments(ctx, facilitatorID)
}

// --- Course offerings ---

func (svc *Service) checkOfferingRefs(ctx context.Context, moduleID, classID, cohortID, modeID int, facilitatorID *int) error {
	checks := []struct {
		check func(context.Context, int) error
		id    int
		what  string
	}{
		{svc.refs.ModuleExists, moduleID, "module not found"},
		{svc.refs.ClassExists, classID, "class not found"},
		{svc.refs.CohortExists, cohortID, "cohort not found"},
		{svc.refs.ModeExists, modeID, "mode not found"},
	}
	if facilitatorID != nil {
		checks = append(checks, struct {
			check func(context.Context, int) error
			id    int
			what  string
		}{svc.refs.FacilitatorExists, *facilitatorID, "facilitator not found"})
	}
	for _, c := range checks {
		if err := c.check(ctx, c.id); err != nil {
			if errors.Cause(err) == core.ErrNotFound {
				return core.NewReferentialError(c.what)
			}
			return err
		}
	}
	return nil
}

func (svc *Service) CreateOffering(ctx context.Context, no NewCourseOffering) (CourseOffering, error) {
	if err := svc.checkOfferingRefs(ctx, no.ModuleID, no.ClassID, no.CohortID, no.ModeID, no.FacilitatorID); err != nil {
		return CourseOffering{}, err
	}
	if _, err := svc.repo.GetOfferingByComposite(ctx, no.ModuleID, no.ClassID, no.CohortID, no.IntakePeriod); err == nil {
		return CourseOffering{}, core.NewConflictError(errOfferingExists)
	} else if errors.Cause(err) != core.ErrNotFound {
		return CourseOffering{}, err
	}

	now := time.Now().UTC()
	off := CourseOffering{
		ModuleID:      no.ModuleID,
		ClassID:       no.ClassID,
		CohortID:      no.CohortID,
		FacilitatorID: no.FacilitatorID,
		ModeID:        no.ModeID,
		IntakePeriod:  no.IntakePeriod,
		MaxStudents:   no.MaxStudents,
		StartDate:     no.StartDate,
		EndDate:       no.EndDate,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateOffering(ctx, off)
}

// QueryOfferings lists offerings; a facilitator caller only ever sees their
// own assignments regardless of the filter supplied.
func (svc *Service) QueryOfferings(ctx context.Context, caller core.Caller, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]CourseOffering, int64, error) {
	return svc.repo.FilterOfferings(ctx, core.ScopeToCaller(filter, caller), p, ord...)
}

func (svc *Service) GetOffering(ctx context.Context, caller core.Caller, id int) (CourseOffering, error) {
	off, err := svc.repo.GetOfferingByID(ctx, id)
	if err != nil {
		return CourseOffering{}, err
	}
	if err = svc.checkOwnership(caller, off); err != nil {
		return CourseOffering{}, err
	}
	return off, nil
}

func (svc *Service) checkOwnership(caller core.Caller, off CourseOffering) error {
	if caller.IsManager() {
		return nil
	}
	if off.FacilitatorID == nil || *off.FacilitatorID != caller.ID {
		return core.ErrPermissionDenied
	}
	return nil
}

func (svc *Service) UpdateOffering(ctx context.Context, id int, uo UpdateCourseOffering) (CourseOffering, error) {
	off, err := svc.repo.GetOfferingByID(ctx, id)
	if err != nil {
		return CourseOffering{}, err
	}

	if uo.ModuleID != nil {
		off.ModuleID = *uo.ModuleID
	}
	if uo.ClassID != nil {
		off.ClassID = *uo.ClassID
	}
	if uo.CohortID != nil {
		off.CohortID = *uo.CohortID
	}
	if uo.FacilitatorID != nil {
		off.FacilitatorID = uo.FacilitatorID
	}
	if uo.ModeID != nil {
		off.ModeID = *uo.ModeID
	}
	if uo.IntakePeriod != nil {
		off.IntakePeriod = *uo.IntakePeriod
	}
	if uo.MaxStudents != nil {
		off.MaxStudents = uo.MaxStudents
	}
	if uo.CurrentEnrollment != nil {
		off.CurrentEnrollment = *uo.CurrentEnrollment
	}
	if uo.StartDate != nil {
		off.StartDate = uo.StartDate
	}
	if uo.EndDate != nil {
		off.EndDate = uo.EndDate
	}
	if uo.IsActive != nil {
		off.IsActive = *uo.IsActive
	}

	if err = svc.checkOfferingRefs(ctx, off.ModuleID, off.ClassID, off.CohortID, off.ModeID, off.FacilitatorID); err != nil {
		return CourseOffering{}, err
	}
	if dup, err := svc.repo.GetOfferingByComposite(ctx, off.ModuleID, off.ClassID, off.CohortID, off.IntakePeriod); err == nil {
		if dup.ID != off.ID {
			return CourseOffering{}, core.NewConflictError(errOfferingExists)
		}
	} else if errors.Cause(err) != core.ErrNotFound {
		return CourseOffering{}, err
	}

	off.UpdatedAt = time.Now().UTC()
	// preloaded associations may be stale after the id changes
	off.Module, off.Class, off.Cohort, off.Facilitator, off.Mode = nil, nil, nil, nil, nil
	return svc.repo.UpdateOffering(ctx, off)
}

func (svc *Service) DeleteOffering(ctx context.Context, id int) error {
	if _, err := svc.repo.GetOfferingByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteOffering(ctx, id)
}

// --- Activity trackers ---

func (svc *Service) CreateTracker(ctx context.Context, caller core.Caller, nt NewActivityTracker) (ActivityTracker, error) {
	off, err := svc.repo.GetOfferingByID(ctx, nt.AllocationID)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return ActivityTracker{}, core.NewReferentialError("course offering not found")
		}
		return ActivityTracker{}, err
	}
	if err = svc.checkOwnership(caller, off); err != nil {
		return ActivityTracker{}, err
	}
	if _, err = svc.repo.GetTrackerByOfferingWeek(ctx, nt.AllocationID, nt.WeekNumber); err == nil {
		return ActivityTracker{}, core.NewConflictError(errTrackerExists)
	} else if errors.Cause(err) != core.ErrNotFound {
		return ActivityTracker{}, err
	}

	now := time.Now().UTC()
	state := NewTrackerState(nt.statuses(), now)
	attendance := nt.Attendance
	if attendance == nil {
		attendance = Attendance{}
	}
	trk := ActivityTracker{
		AllocationID: nt.AllocationID,
		WeekNumber:   nt.WeekNumber,
		Attendance:   attendance,
		Statuses:     state.Statuses,
		SubmittedAt:  state.SubmittedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateTracker(ctx, trk)
}

// QueryTrackers lists activity logs; a facilitator caller only ever sees logs
// of offerings assigned to them.
func (svc *Service) QueryTrackers(ctx context.Context, caller core.Caller, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]ActivityTracker, int64, error) {
	return svc.repo.FilterTrackers(ctx, core.ScopeToCaller(filter, caller), p, ord...)
}

func (svc *Service) GetTracker(ctx context.Context, caller core.Caller, id int) (ActivityTracker, error) {
	trk, err := svc.repo.GetTrackerByID(ctx, id)
	if err != nil {
		return ActivityTracker{}, err
	}
	if err = svc.checkTrackerOwnership(ctx, caller, trk); err != nil {
		return ActivityTracker{}, err
	}
	return trk, nil
}

func (svc *Service) checkTrackerOwnership(ctx context.Context, caller core.Caller, trk ActivityTracker) error {
	if caller.IsManager() {
		return nil
	}
	off := trk.Offering
	if off == nil {
		o, err := svc.repo.GetOfferingByID(ctx, trk.AllocationID)
		if err != nil {
			return err
		}
		off = &o
	}
	return svc.checkOwnership(caller, *off)
}

func (svc *Service) UpdateTracker(ctx context.Context, caller core.Caller, id int, ut UpdateActivityTracker) (ActivityTracker, error) {
	trk, err := svc.repo.GetTrackerByID(ctx, id)
	if err != nil {
		return ActivityTracker{}, err
	}
	if err = svc.checkTrackerOwnership(ctx, caller, trk); err != nil {
		return ActivityTracker{}, err
	}

	now := time.Now().UTC()
	state := ApplyLifecycleRule(TrackerState{Statuses: trk.Statuses, SubmittedAt: trk.SubmittedAt}, ut.changes(), now)
	trk.Statuses = state.Statuses
	trk.SubmittedAt = state.SubmittedAt
	if ut.Attendance != nil {
		trk.Attendance = *ut.Attendance
	}
	trk.UpdatedAt = now
	trk.Offering = nil
	return svc.repo.UpdateTracker(ctx, trk)
}

// DeleteTracker removes an activity log; managers only.
func (svc *Service) DeleteTracker(ctx context.Context, caller core.Caller, id int) error {
	if !caller.IsManager() {
		return core.ErrPermissionDenied
	}
	if _, err := svc.repo.GetTrackerByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteTracker(ctx, id)
}
