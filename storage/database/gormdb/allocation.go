package gormdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/allocation"
	"github.com/trezcool/kozi/core/staff"
)

var (
	offeringCols = map[string]string{
		"moduleId":      `"moduleId"`,
		"classId":       `"classId"`,
		"cohortId":      `"cohortId"`,
		"facilitatorId": `"facilitatorId"`,
		"modeId":        `"modeId"`,
		"intakePeriod":  `"intakePeriod"`,
		"isActive":      `"isActive"`,
	}
	trackerCols = map[string]string{
		"allocationId": `activity_trackers."allocationId"`,
		"weekNumber":   `activity_trackers."weekNumber"`,
	}
)

var offeringPreloads = []string{"Module", "Class", "Cohort", "Facilitator", "Mode"}

type allocationRepository struct {
	db *gorm.DB
}

var _ allocation.Repository = (*allocationRepository)(nil)

func NewAllocationRepository(db *gorm.DB) *allocationRepository {
	return &allocationRepository{db: db}
}

func (repo *allocationRepository) withOfferingPreloads(q *gorm.DB) *gorm.DB {
	for _, p := range offeringPreloads {
		q = q.Preload(p)
	}
	return q
}

// --- Course offerings ---

func (repo *allocationRepository) CreateOffering(ctx context.Context, o allocation.CourseOffering) (allocation.CourseOffering, error) {
	if err := repo.db.WithContext(ctx).Create(&o).Error; err != nil {
		return o, translateError(err)
	}
	return repo.GetOfferingByID(ctx, o.ID)
}

func (repo *allocationRepository) GetOfferingByID(ctx context.Context, id int) (allocation.CourseOffering, error) {
	var o allocation.CourseOffering
	err := repo.withOfferingPreloads(repo.db.WithContext(ctx)).First(&o, id).Error
	return o, translateError(err)
}

func (repo *allocationRepository) GetOfferingByComposite(ctx context.Context, moduleID, classID, cohortID int, intakePeriod string) (allocation.CourseOffering, error) {
	var o allocation.CourseOffering
	err := repo.db.WithContext(ctx).
		Where(`"moduleId" = ? AND "classId" = ? AND "cohortId" = ? AND "intakePeriod" = ?`,
			moduleID, classID, cohortID, intakePeriod).
		First(&o).Error
	return o, translateError(err)
}

func (repo *allocationRepository) FilterOfferings(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]allocation.CourseOffering, int64, error) {
	q := applyFilter(repo.db.WithContext(ctx).Model(&allocation.CourseOffering{}), filter, offeringCols)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var offs []allocation.CourseOffering
	err := repo.withOfferingPreloads(paginate(applyOrdering(q, ord), p)).Find(&offs).Error
	return offs, count, translateError(err)
}

func (repo *allocationRepository) UpdateOffering(ctx context.Context, o allocation.CourseOffering) (allocation.CourseOffering, error) {
	if err := repo.db.WithContext(ctx).Save(&o).Error; err != nil {
		return o, translateError(err)
	}
	return repo.GetOfferingByID(ctx, o.ID)
}

func (repo *allocationRepository) DeleteOffering(ctx context.Context, id int) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(`"allocationId" = ?`, id).Delete(&allocation.ActivityTracker{}).Error; err != nil {
			return err
		}
		return tx.Delete(&allocation.CourseOffering{}, id).Error
	})
	return translateError(err)
}

func (repo *allocationRepository) CountActiveAssignments(ctx context.Context, facilitatorID int) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&allocation.CourseOffering{}).
		Where(`"facilitatorId" = ? AND "isActive"`, facilitatorID).Count(&count).Error
	return count, translateError(err)
}

// --- Activity trackers ---

func (repo *allocationRepository) CreateTracker(ctx context.Context, t allocation.ActivityTracker) (allocation.ActivityTracker, error) {
	err := repo.db.WithContext(ctx).Create(&t).Error
	return t, translateError(err)
}

func (repo *allocationRepository) GetTrackerByID(ctx context.Context, id int) (allocation.ActivityTracker, error) {
	var t allocation.ActivityTracker
	err := repo.db.WithContext(ctx).Preload("Offering").Preload("Offering.Module").First(&t, id).Error
	return t, translateError(err)
}

func (repo *allocationRepository) GetTrackerByOfferingWeek(ctx context.Context, allocationID, weekNumber int) (allocation.ActivityTracker, error) {
	var t allocation.ActivityTracker
	err := repo.db.WithContext(ctx).
		Where(`"allocationId" = ? AND "weekNumber" = ?`, allocationID, weekNumber).
		First(&t).Error
	return t, translateError(err)
}

func (repo *allocationRepository) FilterTrackers(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]allocation.ActivityTracker, int64, error) {
	q := repo.db.WithContext(ctx).Model(&allocation.ActivityTracker{})

	// facilitatorId lives on the parent offering
	if facID, ok := filter[core.FacilitatorIDField]; ok {
		q = q.Joins(`JOIN course_offerings ON course_offerings.id = activity_trackers."allocationId"`).
			Where(`course_offerings."facilitatorId" = ?`, facID)
	}
	q = applyFilter(q, filter, trackerCols)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var trks []allocation.ActivityTracker
	err := paginate(applyOrdering(q, ord), p).Preload("Offering").Preload("Offering.Module").Find(&trks).Error
	return trks, count, translateError(err)
}

func (repo *allocationRepository) UpdateTracker(ctx context.Context, t allocation.ActivityTracker) (allocation.ActivityTracker, error) {
	err := repo.db.WithContext(ctx).Save(&t).Error
	return t, translateError(err)
}

func (repo *allocationRepository) DeleteTracker(ctx context.Context, id int) error {
	return translateError(repo.db.WithContext(ctx).Delete(&allocation.ActivityTracker{}, id).Error)
}

// referenceChecker verifies foreign keys for offering writes.
type referenceChecker struct {
	db *gorm.DB
}

var _ allocation.ReferenceChecker = (*referenceChecker)(nil)

func NewReferenceChecker(db *gorm.DB) *referenceChecker {
	return &referenceChecker{db: db}
}

func (rc *referenceChecker) exists(ctx context.Context, model interface{}, id int) error {
	var count int64
	if err := rc.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err)
	}
	if count == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (rc *referenceChecker) ModuleExists(ctx context.Context, id int) error {
	return rc.exists(ctx, &academics.Module{}, id)
}

func (rc *referenceChecker) ClassExists(ctx context.Context, id int) error {
	return rc.exists(ctx, &academics.Class{}, id)
}

func (rc *referenceChecker) CohortExists(ctx context.Context, id int) error {
	return rc.exists(ctx, &academics.Cohort{}, id)
}

func (rc *referenceChecker) ModeExists(ctx context.Context, id int) error {
	return rc.exists(ctx, &academics.Mode{}, id)
}

func (rc *referenceChecker) FacilitatorExists(ctx context.Context, id int) error {
	return rc.exists(ctx, &staff.Facilitator{}, id)
}
