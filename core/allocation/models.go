package allocation

import (
	"time"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/staff"
)

// intake periods
const (
	IntakeHalfTrimesterOne = "HT1"
	IntakeHalfTrimesterTwo = "HT2"
	IntakeFullTrimester    = "FT"
)

// task statuses
const (
	StatusNotStarted = "Not Started"
	StatusPending    = "Pending"
	StatusDone       = "Done"
)

// CourseOffering assigns a Module to a Class and Cohort for an intake period,
// optionally staffed by a Facilitator.
type CourseOffering struct {
	ID                int        `json:"id" gorm:"primaryKey"`
	ModuleID          int        `json:"moduleId" gorm:"not null;column:moduleId;uniqueIndex:idx_offerings_unique"`
	ClassID           int        `json:"classId" gorm:"not null;column:classId;uniqueIndex:idx_offerings_unique"`
	CohortID          int        `json:"cohortId" gorm:"not null;column:cohortId;uniqueIndex:idx_offerings_unique"`
	FacilitatorID     *int       `json:"facilitatorId" gorm:"index;column:facilitatorId"`
	ModeID            int        `json:"modeId" gorm:"not null;column:modeId"`
	IntakePeriod      string     `json:"intakePeriod" gorm:"size:10;not null;column:intakePeriod;uniqueIndex:idx_offerings_unique"`
	MaxStudents       *int       `json:"maxStudents" gorm:"column:maxStudents"`
	CurrentEnrollment int        `json:"currentEnrollment" gorm:"default:0;column:currentEnrollment"`
	StartDate         *time.Time `json:"startDate" gorm:"column:startDate"`
	EndDate           *time.Time `json:"endDate" gorm:"column:endDate"`
	IsActive          bool       `json:"isActive" gorm:"default:true;column:isActive"`
	CreatedAt         time.Time  `json:"createdAt"` // UTC
	UpdatedAt         time.Time  `json:"updatedAt"` // UTC

	Module      *academics.Module  `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
	Class       *academics.Class   `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Cohort      *academics.Cohort  `json:"cohort,omitempty" gorm:"foreignKey:CohortID"`
	Facilitator *staff.Facilitator `json:"facilitator,omitempty" gorm:"foreignKey:FacilitatorID"`
	Mode        *academics.Mode    `json:"mode,omitempty" gorm:"foreignKey:ModeID"`
}

func (CourseOffering) TableName() string { return "course_offerings" }

// Attendance is an ordered sequence of per-session presence flags.
type Attendance []bool

// Statuses holds the six independently tracked weekly tasks.
type Statuses struct {
	FormativeOneGrading string `json:"formativeOneGrading" gorm:"size:20;not null;default:'Not Started';column:formativeOneGrading"`
	FormativeTwoGrading string `json:"formativeTwoGrading" gorm:"size:20;not null;default:'Not Started';column:formativeTwoGrading"`
	SummativeGrading    string `json:"summativeGrading" gorm:"size:20;not null;default:'Not Started';column:summativeGrading"`
	CourseModeration    string `json:"courseModeration" gorm:"size:20;not null;default:'Not Started';column:courseModeration"`
	IntranetSync        string `json:"intranetSync" gorm:"size:20;not null;default:'Not Started';column:intranetSync"`
	GradeBookStatus     string `json:"gradeBookStatus" gorm:"size:20;not null;default:'Not Started';column:gradeBookStatus"`
}

// ActivityTracker is the weekly log for a course offering; at most one row
// exists per (allocationId, weekNumber).
type ActivityTracker struct {
	ID           int        `json:"id" gorm:"primaryKey"`
	AllocationID int        `json:"allocationId" gorm:"not null;column:allocationId;uniqueIndex:idx_trackers_unique"`
	WeekNumber   int        `json:"weekNumber" gorm:"not null;column:weekNumber;uniqueIndex:idx_trackers_unique"`
	Attendance   Attendance `json:"attendance" gorm:"serializer:json"`
	Statuses     `gorm:"embedded"`
	SubmittedAt  *time.Time `json:"submittedAt" gorm:"index;column:submittedAt"`
	CreatedAt    time.Time  `json:"createdAt"` // UTC
	UpdatedAt    time.Time  `json:"updatedAt"` // UTC

	Offering *CourseOffering `json:"allocation,omitempty" gorm:"foreignKey:AllocationID"`
}

func (ActivityTracker) TableName() string { return "activity_trackers" }

// NewCourseOffering contains information needed to create a CourseOffering.
type NewCourseOffering struct {
	ModuleID      int        `json:"moduleId" validate:"required"`
	ClassID       int        `json:"classId" validate:"required"`
	CohortID      int        `json:"cohortId" validate:"required"`
	FacilitatorID *int       `json:"facilitatorId"`
	ModeID        int        `json:"modeId" validate:"required"`
	IntakePeriod  string     `json:"intakePeriod" validate:"required,oneof=HT1 HT2 FT"`
	MaxStudents   *int       `json:"maxStudents" validate:"omitempty,min=1"`
	StartDate     *time.Time `json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
}

func (no *NewCourseOffering) Validate() error { return core.Validate.Struct(no) }

// UpdateCourseOffering defines what may be modified on an existing offering.
// Nil fields keep their stored value; a present-but-zero value overwrites.
type UpdateCourseOffering struct {
	ModuleID          *int       `json:"moduleId"`
	ClassID           *int       `json:"classId"`
	CohortID          *int       `json:"cohortId"`
	FacilitatorID     *int       `json:"facilitatorId"`
	ModeID            *int       `json:"modeId"`
	IntakePeriod      *string    `json:"intakePeriod" validate:"omitempty,oneof=HT1 HT2 FT"`
	MaxStudents       *int       `json:"maxStudents" validate:"omitempty,min=1"`
	CurrentEnrollment *int       `json:"currentEnrollment" validate:"omitempty,min=0"`
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	IsActive          *bool      `json:"isActive"`
}

func (uo *UpdateCourseOffering) Validate() error { return core.Validate.Struct(uo) }

// NewActivityTracker contains information needed to log a week's activity.
type NewActivityTracker struct {
	AllocationID        int        `json:"allocationId" validate:"required"`
	WeekNumber          int        `json:"weekNumber" validate:"required,min=1,max=52"`
	Attendance          Attendance `json:"attendance"`
	FormativeOneGrading string     `json:"formativeOneGrading" validate:"omitempty,oneof='Not Started' Pending Done"`
	FormativeTwoGrading string     `json:"formativeTwoGrading" validate:"omitempty,oneof='Not Started' Pending Done"`
	SummativeGrading    string     `json:"summativeGrading" validate:"omitempty,oneof='Not Started' Pending Done"`
	CourseModeration    string     `json:"courseModeration" validate:"omitempty,oneof='Not Started' Pending Done"`
	IntranetSync        string     `json:"intranetSync" validate:"omitempty,oneof='Not Started' Pending Done"`
	GradeBookStatus     string     `json:"gradeBookStatus" validate:"omitempty,oneof='Not Started' Pending Done"`
}

func (nt *NewActivityTracker) Validate() error { return core.Validate.Struct(nt) }

// statuses fills unset fields with the Not Started default.
func (nt NewActivityTracker) statuses() Statuses {
	s := Statuses{
		FormativeOneGrading: nt.FormativeOneGrading,
		FormativeTwoGrading: nt.FormativeTwoGrading,
		SummativeGrading:    nt.SummativeGrading,
		CourseModeration:    nt.CourseModeration,
		IntranetSync:        nt.IntranetSync,
		GradeBookStatus:     nt.GradeBookStatus,
	}
	for _, f := range []*string{
		&s.FormativeOneGrading, &s.FormativeTwoGrading, &s.SummativeGrading,
		&s.CourseModeration, &s.IntranetSync, &s.GradeBookStatus,
	} {
		if *f == "" {
			*f = StatusNotStarted
		}
	}
	return s
}

// UpdateActivityTracker defines what may be modified on an existing tracker.
type UpdateActivityTracker struct {
	Attendance          *Attendance `json:"attendance"`
	FormativeOneGrading *string     `json:"formativeOneGrading" validate:"omitempty,oneof='Not Started' Pending Done"`
	FormativeTwoGrading *string     `json:"formativeTwoGrading" validate:"omitempty,oneof='Not Started' Pending Done"`
	SummativeGrading    *string     `json:"summativeGrading" validate:"omitempty,oneof='Not Started' Pending Done"`
	CourseModeration    *string     `json:"courseModeration" validate:"omitempty,oneof='Not Started' Pending Done"`
	IntranetSync        *string     `json:"intranetSync" validate:"omitempty,oneof='Not Started' Pending Done"`
	GradeBookStatus     *string     `json:"gradeBookStatus" validate:"omitempty,oneof='Not Started' Pending Done"`
}

func (ut *UpdateActivityTracker) Validate() error { return core.Validate.Struct(ut) }

func (ut UpdateActivityTracker) changes() StatusChanges {
	return StatusChanges{
		FormativeOneGrading: ut.FormativeOneGrading,
		FormativeTwoGrading: ut.FormativeTwoGrading,
		SummativeGrading:    ut.SummativeGrading,
		CourseModeration:    ut.CourseModeration,
		IntranetSync:        ut.IntranetSync,
		GradeBookStatus:     ut.GradeBookStatus,
	}
}
