package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/allocation"
)

type allocationRepository struct {
	db *DB
}

var _ allocation.Repository = (*allocationRepository)(nil)

func NewAllocationRepository(db *DB) *allocationRepository {
	return &allocationRepository{db: db}
}

// --- Course offerings ---

func (repo *allocationRepository) CreateOffering(_ context.Context, o allocation.CourseOffering) (allocation.CourseOffering, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	o.ID = repo.db.nextPK()
	repo.db.offerings[o.ID] = &o
	return repo.hydrateOffering(o), nil
}

// hydrateOffering must be called with db.mu held.
func (repo *allocationRepository) hydrateOffering(o allocation.CourseOffering) allocation.CourseOffering {
	if m, ok := repo.db.modules[o.ModuleID]; ok {
		mm := *m
		o.Module = &mm
	}
	if c, ok := repo.db.classes[o.ClassID]; ok {
		cc := *c
		o.Class = &cc
	}
	if c, ok := repo.db.cohorts[o.CohortID]; ok {
		cc := *c
		o.Cohort = &cc
	}
	if o.FacilitatorID != nil {
		if f, ok := repo.db.facilitators[*o.FacilitatorID]; ok {
			ff := *f
			o.Facilitator = &ff
		}
	}
	if m, ok := repo.db.modes[o.ModeID]; ok {
		mm := *m
		o.Mode = &mm
	}
	return o
}

func (repo *allocationRepository) GetOfferingByID(_ context.Context, id int) (allocation.CourseOffering, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if o, ok := repo.db.offerings[id]; ok {
		return repo.hydrateOffering(*o), nil
	}
	return allocation.CourseOffering{}, core.ErrNotFound
}

func (repo *allocationRepository) GetOfferingByComposite(_ context.Context, moduleID, classID, cohortID int, intakePeriod string) (allocation.CourseOffering, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, o := range repo.db.offerings {
		if o.ModuleID == moduleID && o.ClassID == classID && o.CohortID == cohortID && o.IntakePeriod == intakePeriod {
			return repo.hydrateOffering(*o), nil
		}
	}
	return allocation.CourseOffering{}, core.ErrNotFound
}

func (repo *allocationRepository) FilterOfferings(_ context.Context, filter core.Filter, p core.Pagination, _ ...core.DBOrdering) ([]allocation.CourseOffering, int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var offs []allocation.CourseOffering
	for _, o := range repo.db.offerings {
		if offeringMatches(*o, filter) {
			offs = append(offs, repo.hydrateOffering(*o))
		}
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i].ID < offs[j].ID })
	return pageSlice(offs, p), int64(len(offs)), nil
}

func offeringMatches(o allocation.CourseOffering, filter core.Filter) bool {
	for key, val := range filter {
		var got interface{}
		switch key {
		case "moduleId":
			got = o.ModuleID
		case "classId":
			got = o.ClassID
		case "cohortId":
			got = o.CohortID
		case "facilitatorId":
			if o.FacilitatorID == nil {
				return false
			}
			got = *o.FacilitatorID
		case "modeId":
			got = o.ModeID
		case "intakePeriod":
			got = o.IntakePeriod
		case "isActive":
			got = o.IsActive
		default:
			continue
		}
		if !match(val, got) {
			return false
		}
	}
	return true
}

func (repo *allocationRepository) UpdateOffering(_ context.Context, o allocation.CourseOffering) (allocation.CourseOffering, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.offerings[o.ID]; !ok {
		return allocation.CourseOffering{}, core.ErrNotFound
	}
	o.Module, o.Class, o.Cohort, o.Facilitator, o.Mode = nil, nil, nil, nil, nil
	repo.db.offerings[o.ID] = &o
	return repo.hydrateOffering(o), nil
}

func (repo *allocationRepository) DeleteOffering(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for tid, t := range repo.db.trackers {
		if t.AllocationID == id {
			delete(repo.db.trackers, tid)
		}
	}
	delete(repo.db.offerings, id)
	return nil
}

func (repo *allocationRepository) CountActiveAssignments(_ context.Context, facilitatorID int) (int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var count int64
	for _, o := range repo.db.offerings {
		if o.FacilitatorID != nil && *o.FacilitatorID == facilitatorID && o.IsActive {
			count++
		}
	}
	return count, nil
}

// --- Activity trackers ---

func (repo *allocationRepository) CreateTracker(_ context.Context, t allocation.ActivityTracker) (allocation.ActivityTracker, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t.ID = repo.db.nextPK()
	repo.db.trackers[t.ID] = &t
	return t, nil
}

// hydrateTracker must be called with db.mu held.
func (repo *allocationRepository) hydrateTracker(t allocation.ActivityTracker) allocation.ActivityTracker {
	if o, ok := repo.db.offerings[t.AllocationID]; ok {
		off := repo.hydrateOffering(*o)
		t.Offering = &off
	}
	return t
}

func (repo *allocationRepository) GetTrackerByID(_ context.Context, id int) (allocation.ActivityTracker, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.db.trackers[id]; ok {
		return repo.hydrateTracker(*t), nil
	}
	return allocation.ActivityTracker{}, core.ErrNotFound
}

func (repo *allocationRepository) GetTrackerByOfferingWeek(_ context.Context, allocationID, weekNumber int) (allocation.ActivityTracker, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, t := range repo.db.trackers {
		if t.AllocationID == allocationID && t.WeekNumber == weekNumber {
			return repo.hydrateTracker(*t), nil
		}
	}
	return allocation.ActivityTracker{}, core.ErrNotFound
}

func (repo *allocationRepository) FilterTrackers(_ context.Context, filter core.Filter, p core.Pagination, _ ...core.DBOrdering) ([]allocation.ActivityTracker, int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var trks []allocation.ActivityTracker
	for _, t := range repo.db.trackers {
		if repo.trackerMatches(*t, filter) {
			trks = append(trks, repo.hydrateTracker(*t))
		}
	}
	sort.Slice(trks, func(i, j int) bool { return trks[i].ID < trks[j].ID })
	return pageSlice(trks, p), int64(len(trks)), nil
}

// trackerMatches must be called with db.mu held; facilitatorId matches
// through the parent offering.
func (repo *allocationRepository) trackerMatches(t allocation.ActivityTracker, filter core.Filter) bool {
	for key, val := range filter {
		var got interface{}
		switch key {
		case "allocationId":
			got = t.AllocationID
		case "weekNumber":
			got = t.WeekNumber
		case core.FacilitatorIDField:
			o, ok := repo.db.offerings[t.AllocationID]
			if !ok || o.FacilitatorID == nil {
				return false
			}
			got = *o.FacilitatorID
		default:
			continue
		}
		if !match(val, got) {
			return false
		}
	}
	return true
}

func (repo *allocationRepository) UpdateTracker(_ context.Context, t allocation.ActivityTracker) (allocation.ActivityTracker, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.trackers[t.ID]; !ok {
		return allocation.ActivityTracker{}, core.ErrNotFound
	}
	t.Offering = nil
	repo.db.trackers[t.ID] = &t
	return t, nil
}

func (repo *allocationRepository) DeleteTracker(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.trackers, id)
	return nil
}

// referenceChecker verifies foreign keys for offering writes.
type referenceChecker struct {
	db *DB
}

var _ allocation.ReferenceChecker = (*referenceChecker)(nil)

func NewReferenceChecker(db *DB) *referenceChecker {
	return &referenceChecker{db: db}
}

func (rc *referenceChecker) ModuleExists(_ context.Context, id int) error {
	rc.db.mu.RLock()
	defer rc.db.mu.RUnlock()
	if _, ok := rc.db.modules[id]; !ok {
		return core.ErrNotFound
	}
	return nil
}

func (rc *referenceChecker) ClassExists(_ context.Context, id int) error {
	rc.db.mu.RLock()
	defer rc.db.mu.RUnlock()
	if _, ok := rc.db.classes[id]; !ok {
		return core.ErrNotFound
	}
	return nil
}

func (rc *referenceChecker) CohortExists(_ context.Context, id int) error {
	rc.db.mu.RLock()
	defer rc.db.mu.RUnlock()
	if _, ok := rc.db.cohorts[id]; !ok {
		return core.ErrNotFound
	}
	return nil
}

func (rc *referenceChecker) ModeExists(_ context.Context, id int) error {
	rc.db.mu.RLock()
	defer rc.db.mu.RUnlock()
	if _, ok := rc.db.modes[id]; !ok {
		return core.ErrNotFound
	}
	return nil
}

func (rc *referenceChecker) FacilitatorExists(_ context.Context, id int) error {
	rc.db.mu.RLock()
	defer rc.db.mu.RUnlock()
	if _, ok := rc.db.facilitators[id]; !ok {
		return core.ErrNotFound
	}
	return nil
}
