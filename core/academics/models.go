package academics

import (
	"time"

	"github.com/trezcool/kozi/core"
)

// academic levels
const (
	LevelUndergraduate = "undergraduate"
	LevelPostgraduate  = "postgraduate"
	LevelDiploma       = "diploma"
)

// trimesters
const (
	TrimesterOne    = "T1"
	TrimesterTwo    = "T2"
	TrimesterThree  = "T3"
	TrimesterSummer = "Summer"
)

// Module is a unit of teaching identified by a unique code.
type Module struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"size:20;uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Description string    `json:"description"`
	Credits     int       `json:"credits" gorm:"not null"`
	Level       string    `json:"level" gorm:"size:20;default:undergraduate"`
	IsActive    bool      `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"` // UTC
}

func (Module) TableName() string { return "modules" }

// Class is a scheduling period (trimester of a given year).
type Class struct {
	ID        int        `json:"id" gorm:"primaryKey"`
	Code      string     `json:"code" gorm:"size:20;uniqueIndex;not null"`
	Trimester string     `json:"trimester" gorm:"size:10;not null;index:idx_classes_year_trimester"`
	Year      int        `json:"year" gorm:"not null;index:idx_classes_year_trimester"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	IsActive  bool       `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time  `json:"createdAt"` // UTC
	UpdatedAt time.Time  `json:"updatedAt"` // UTC
}

func (Class) TableName() string { return "classes" }

// Cohort is a named intake of students following a program.
type Cohort struct {
	ID          int        `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"size:100;not null"`
	Year        int        `json:"year" gorm:"not null;index:idx_cohorts_year_program"`
	Program     string     `json:"program" gorm:"size:100;not null;index:idx_cohorts_year_program"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	MaxStudents *int       `json:"maxStudents"`
	IsActive    bool       `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time  `json:"createdAt"` // UTC
	UpdatedAt   time.Time  `json:"updatedAt"` // UTC

	// StudentCount is aggregated on list queries, not stored.
	StudentCount int64 `json:"studentCount" gorm:"-"`
}

func (Cohort) TableName() string { return "cohorts" }

// Student belongs to exactly one Cohort.
type Student struct {
	ID             int        `json:"id" gorm:"primaryKey"`
	FirstName      string     `json:"firstName" gorm:"size:50;not null"`
	LastName       string     `json:"lastName" gorm:"size:50;not null"`
	Email          string     `json:"email" gorm:"size:100;uniqueIndex;not null"`
	StudentID      string     `json:"studentId" gorm:"size:20;uniqueIndex;not null;column:studentId"`
	CohortID       int        `json:"cohortId" gorm:"not null;index;column:cohortId"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
	IsActive       bool       `json:"isActive" gorm:"default:true"`
	CreatedAt      time.Time  `json:"createdAt"` // UTC
	UpdatedAt      time.Time  `json:"updatedAt"` // UTC

	Cohort *Cohort `json:"cohort,omitempty" gorm:"foreignKey:CohortID"`
}

func (Student) TableName() string { return "students" }

func (s *Student) FullName() string { return s.FirstName + " " + s.LastName }

// Mode is a delivery mode (Online, In-person, Hybrid).
type Mode struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:50;uniqueIndex"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"` // UTC
}

func (Mode) TableName() string { return "modes" }

// NewModule contains information needed to create a Module.
type NewModule struct {
	Code        string `json:"code" validate:"required,min=3,max=20"`
	Name        string `json:"name" validate:"required,min=3,max=200"`
	Description string `json:"description"`
	Credits     int    `json:"credits" validate:"required,min=1,max=20"`
	Level       string `json:"level" validate:"omitempty,oneof=undergraduate postgraduate diploma"`
}

func (nm *NewModule) Validate() error {
	nm.Code = core.CleanString(nm.Code)
	nm.Name = core.CleanString(nm.Name)
	nm.Description = core.CleanString(nm.Description)
	return core.Validate.Struct(nm)
}

// UpdateModule defines what may be modified on an existing Module.
// Nil fields keep their stored value; a present-but-zero value overwrites.
type UpdateModule struct {
	Code        *string `json:"code" validate:"omitempty,min=3,max=20"`
	Name        *string `json:"name" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description"`
	Credits     *int    `json:"credits" validate:"omitempty,min=1,max=20"`
	Level       *string `json:"level" validate:"omitempty,oneof=undergraduate postgraduate diploma"`
	IsActive    *bool   `json:"isActive"`
}

func (um *UpdateModule) Validate() error { return core.Validate.Struct(um) }

// NewClass contains information needed to create a Class.
type NewClass struct {
	Code      string     `json:"code" validate:"required,min=4,max=20"`
	Trimester string     `json:"trimester" validate:"required,oneof=T1 T2 T3 Summer"`
	Year      int        `json:"year" validate:"required,min=2020,max=2050"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (nc *NewClass) Validate() error {
	nc.Code = core.CleanString(nc.Code)
	return core.Validate.Struct(nc)
}

// UpdateClass defines what may be modified on an existing Class.
type UpdateClass struct {
	Code      *string    `json:"code" validate:"omitempty,min=4,max=20"`
	Trimester *string    `json:"trimester" validate:"omitempty,oneof=T1 T2 T3 Summer"`
	Year      *int       `json:"year" validate:"omitempty,min=2020,max=2050"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	IsActive  *bool      `json:"isActive"`
}

func (uc *UpdateClass) Validate() error { return core.Validate.Struct(uc) }

// NewCohort contains information needed to create a Cohort.
type NewCohort struct {
	Name        string     `json:"name" validate:"required,min=3,max=100"`
	Year        int        `json:"year" validate:"required,min=2020,max=2050"`
	Program     string     `json:"program" validate:"required,max=100"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	MaxStudents *int       `json:"maxStudents" validate:"omitempty,min=0"`
}

func (nc *NewCohort) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Program = core.CleanString(nc.Program)
	return core.Validate.Struct(nc)
}

// UpdateCohort defines what may be modified on an existing Cohort.
type UpdateCohort struct {
	Name        *string    `json:"name" validate:"omitempty,min=3,max=100"`
	Year        *int       `json:"year" validate:"omitempty,min=2020,max=2050"`
	Program     *string    `json:"program" validate:"omitempty,max=100"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	MaxStudents *int       `json:"maxStudents" validate:"omitempty,min=0"`
	IsActive    *bool      `json:"isActive"`
}

func (uc *UpdateCohort) Validate() error { return core.Validate.Struct(uc) }

// NewStudent contains information needed to enroll a Student.
type NewStudent struct {
	FirstName      string     `json:"firstName" validate:"required,min=2,max=50"`
	LastName       string     `json:"lastName" validate:"required,min=2,max=50"`
	Email          string     `json:"email" validate:"required,email"`
	StudentID      string     `json:"studentId" validate:"required,max=20"`
	CohortID       int        `json:"cohortId" validate:"required"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
}

func (ns *NewStudent) Validate() error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.StudentID = core.CleanString(ns.StudentID)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what may be modified on an existing Student.
type UpdateStudent struct {
	FirstName      *string    `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName       *string    `json:"lastName" validate:"omitempty,min=2,max=50"`
	Email          *string    `json:"email" validate:"omitempty,email"`
	StudentID      *string    `json:"studentId" validate:"omitempty,max=20"`
	CohortID       *int       `json:"cohortId"`
	EnrollmentDate *time.Time `json:"enrollmentDate"`
	IsActive       *bool      `json:"isActive"`
}

func (us *UpdateStudent) Validate() error {
	if us.Email != nil {
		email := core.CleanString(*us.Email, true /* lower */)
		us.Email = &email
	}
	return core.Validate.Struct(us)
}

// NewMode contains information needed to create a delivery Mode.
type NewMode struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description"`
}

func (nm *NewMode) Validate() error {
	nm.Name = core.CleanString(nm.Name)
	nm.Description = core.CleanString(nm.Description)
	return core.Validate.Struct(nm)
}

// UpdateMode defines what may be modified on an existing Mode.
type UpdateMode struct {
	Name        *string `json:"name" validate:"omitempty,max=50"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (um *UpdateMode) Validate() error { return core.Validate.Struct(um) }
