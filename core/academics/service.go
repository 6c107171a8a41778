package academics

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
)

var (
	errModuleCodeExists = "module code already exists"
	errClassCodeExists  = "class code already exists"
	errModeNameExists   = "mode name already exists"
	errEmailExists      = "email already exists"
	errStudentIDExists  = "student ID already exists"
)

type (
	Repository interface {
		CreateModule(ctx context.Context, m Module) (Module, error)
		GetModuleByID(ctx context.Context, id int) (Module, error)
		GetModuleByCode(ctx context.Context, code string) (Module, error)
		FilterModules(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Module, int64, error)
		UpdateModule(ctx context.Context, m Module) (Module, error)
		DeleteModule(ctx context.Context, id int) error

		CreateClass(ctx context.Context, c Class) (Class, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		GetClassByCode(ctx context.Context, code string) (Class, error)
		FilterClasses(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Class, int64, error)
		UpdateClass(ctx context.Context, c Class) (Class, error)
		DeleteClass(ctx context.Context, id int) error

		CreateCohort(ctx context.Context, c Cohort) (Cohort, error)
		GetCohortByID(ctx context.Context, id int) (Cohort, error)
		// FilterCohorts aggregates each cohort's student count.
		FilterCohorts(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Cohort, int64, error)
		UpdateCohort(ctx context.Context, c Cohort) (Cohort, error)
		DeleteCohort(ctx context.Context, id int) error
		CountActiveStudents(ctx context.Context, cohortID int) (int64, error)

		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
		GetStudentByStudentID(ctx context.Context, studentID string) (Student, error)
		FilterStudents(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Student, int64, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudent(ctx context.Context, id int) error

		CreateMode(ctx context.Context, m Mode) (Mode, error)
		GetModeByID(ctx context.Context, id int) (Mode, error)
		GetModeByName(ctx context.Context, name string) (Mode, error)
		FilterModes(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Mode, int64, error)
		UpdateMode(ctx context.Context, m Mode) (Mode, error)
		DeleteMode(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ensureUnique returns a ConflictError when lookup finds an existing row.
func ensureUnique(lookup func() error, msg string) error {
	if err := lookup(); err == nil {
		return core.NewConflictError(msg)
	} else if errors.Cause(err) != core.ErrNotFound {
		return err
	}
	return nil
}

// --- Modules ---

func (svc *Service) CreateModule(ctx context.Context, nm NewModule) (Module, error) {
	err := ensureUnique(func() error {
		_, err := svc.repo.GetModuleByCode(ctx, nm.Code)
		return err
	}, errModuleCodeExists)
	if err != nil {
		return Module{}, err
	}

	if nm.Level == "" {
		nm.Level = LevelUndergraduate
	}
	now := time.Now().UTC()
	mod := Module{
		Code:        nm.Code,
		Name:        nm.Name,
		Description: nm.Description,
		Credits:     nm.Credits,
		Level:       nm.Level,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateModule(ctx, mod)
}

func (svc *Service) QueryModules(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Module, int64, error) {
	return svc.repo.FilterModules(ctx, filter, p, ord...)
}

func (svc *Service) GetModule(ctx context.Context, id int) (Module, error) {
	return svc.repo.GetModuleByID(ctx, id)
}

func (svc *Service) UpdateModule(ctx context.Context, id int, um UpdateModule) (Module, error) {
	mod, err := svc.repo.GetModuleByID(ctx, id)
	if err != nil {
		return Module{}, err
	}

	if um.Code != nil && *um.Code != mod.Code {
		err = ensureUnique(func() error {
			_, err := svc.repo.GetModuleByCode(ctx, *um.Code)
			return err
		}, errModuleCodeExists)
		if err != nil {
			return Module{}, err
		}
		mod.Code = *um.Code
	}
	if um.Name != nil {
		mod.Name = *um.Name
	}
	if um.Description != nil {
		mod.Description = *um.Description
	}
	if um.Credits != nil {
		mod.Credits = *um.Credits
	}
	if um.Level != nil {
		mod.Level = *um.Level
	}
	if um.IsActive != nil {
		mod.IsActive = *um.IsActive
	}
	mod.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateModule(ctx, mod)
}

func (svc *Service) DeleteModule(ctx context.Context, id int) error {
	if _, err := svc.repo.GetModuleByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteModule(ctx, id)
}

// --- Classes ---

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	err := ensureUnique(func() error {
		_, err := svc.repo.GetClassByCode(ctx, nc.Code)
		return err
	}, errClassCodeExists)
	if err != nil {
		return Class{}, err
	}

	now := time.Now().UTC()
	cls := Class{
		Code:      nc.Code,
		Trimester: nc.Trimester,
		Year:      nc.Year,
		StartDate: nc.StartDate,
		EndDate:   nc.EndDate,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) QueryClasses(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Class, int64, error) {
	return svc.repo.FilterClasses(ctx, filter, p, ord...)
}

func (svc *Service) GetClass(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) UpdateClass(ctx context.Context, id int, uc UpdateClass) (Class, error) {
	cls, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}

	if uc.Code != nil && *uc.Code != cls.Code {
		err = ensureUnique(func() error {
			_, err := svc.repo.GetClassByCode(ctx, *uc.Code)
			return err
		}, errClassCodeExists)
		if err != nil {
			return Class{}, err
		}
		cls.Code = *uc.Code
	}
	if uc.Trimester != nil {
		cls.Trimester = *uc.Trimester
	}
	if uc.Year != nil {
		cls.Year = *uc.Year
	}
	if uc.StartDate != nil {
		cls.StartDate = uc.StartDate
	}
	if uc.EndDate != nil {
		cls.EndDate = uc.EndDate
	}
	if uc.IsActive != nil {
		cls.IsActive = *uc.IsActive
	}
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) DeleteClass(ctx context.Context, id int) error {
	if _, err := svc.repo.GetClassByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteClass(ctx, id)
}

// --- Cohorts ---

func (svc *Service) CreateCohort(ctx context.Context, nc NewCohort) (Cohort, error) {
	now := time.Now().UTC()
	coh := Cohort{
		Name:        nc.Name,
		Year:        nc.Year,
		Program:     nc.Program,
		StartDate:   nc.StartDate,
		EndDate:     nc.EndDate,
		MaxStudents: nc.MaxStudents,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCohort(ctx, coh)
}

func (svc *Service) QueryCohorts(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Cohort, int64, error) {
	return svc.repo.FilterCohorts(ctx, filter, p, ord...)
}

func (svc *Service) GetCohort(ctx context.Context, id int) (Cohort, error) {
	coh, err := svc.repo.GetCohortByID(ctx, id)
	if err != nil {
		return Cohort{}, err
	}
	coh.StudentCount, err = svc.repo.CountActiveStudents(ctx, id)
	return coh, err
}

func (svc *Service) UpdateCohort(ctx context.Context, id int, uc UpdateCohort) (Cohort, error) {
	coh, err := svc.repo.GetCohortByID(ctx, id)
	if err != nil {
		return Cohort{}, err
	}

	if uc.Name != nil {
		coh.Name = *uc.Name
	}
	if uc.Year != nil {
		coh.Year = *uc.Year
	}
	if uc.Program != nil {
		coh.Program = *uc.Program
	}
	if uc.StartDate != nil {
		coh.StartDate = uc.StartDate
	}
	if uc.EndDate != nil {
		coh.EndDate = uc.EndDate
	}
	if uc.MaxStudents != nil {
		coh.MaxStudents = uc.MaxStudents
	}
	if uc.IsActive != nil {
		coh.IsActive = *uc.IsActive
	}
	coh.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCohort(ctx, coh)
}

// DeleteCohort removes a cohort unless active students are still enrolled.
func (svc *Service) DeleteCohort(ctx context.Context, id int) error {
	if _, err := svc.repo.GetCohortByID(ctx, id); err != nil {
		return err
	}
	count, err := svc.repo.CountActiveStudents(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting active students")
	}
	if count > 0 {
		return core.NewReferentialError("cannot delete cohort with active students")
	}
	return svc.repo.DeleteCohort(ctx, id)
}

// --- Students ---

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	err := ensureUnique(func() error {
		_, err := svc.repo.GetStudentByEmail(ctx, ns.Email)
		return err
	}, errEmailExists)
	if err != nil {
		return Student{}, err
	}
	err = ensureUnique(func() error {
		_, err := svc.repo.GetStudentByStudentID(ctx, ns.StudentID)
		return err
	}, errStudentIDExists)
	if err != nil {
		return Student{}, err
	}
	if _, err = svc.repo.GetCohortByID(ctx, ns.CohortID); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return Student{}, core.NewReferentialError("cohort not found")
		}
		return Student{}, err
	}

	now := time.Now().UTC()
	enrolled := ns.EnrollmentDate
	if enrolled == nil {
		enrolled = &now
	}
	std := Student{
		FirstName:      ns.FirstName,
		LastName:       ns.LastName,
		Email:          ns.Email,
		StudentID:      ns.StudentID,
		CohortID:       ns.CohortID,
		EnrollmentDate: enrolled,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) QueryStudents(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Student, int64, error) {
	return svc.repo.FilterStudents(ctx, filter, p, ord...)
}

func (svc *Service) GetStudent(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) UpdateStudent(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	if us.Email != nil && *us.Email != std.Email {
		err = ensureUnique(func() error {
			_, err := svc.repo.GetStudentByEmail(ctx, *us.Email)
			return err
		}, errEmailExists)
		if err != nil {
			return Student{}, err
		}
		std.Email = *us.Email
	}
	if us.StudentID != nil && *us.StudentID != std.StudentID {
		err = ensureUnique(func() error {
			_, err := svc.repo.GetStudentByStudentID(ctx, *us.StudentID)
			return err
		}, errStudentIDExists)
		if err != nil {
			return Student{}, err
		}
		std.StudentID = *us.StudentID
	}
	if us.CohortID != nil && *us.CohortID != std.CohortID {
		if _, err = svc.repo.GetCohortByID(ctx, *us.CohortID); err != nil {
			if errors.Cause(err) == core.ErrNotFound {
				return Student{}, core.NewReferentialError("cohort not found")
			}
			return Student{}, err
		}
		std.CohortID = *us.CohortID
	}
	if us.FirstName != nil {
		std.FirstName = *us.FirstName
	}
	if us.LastName != nil {
		std.LastName = *us.LastName
	}
	if us.EnrollmentDate != nil {
		std.EnrollmentDate = us.EnrollmentDate
	}
	if us.IsActive != nil {
		std.IsActive = *us.IsActive
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) DeleteStudent(ctx context.Context, id int) error {
	if _, err := svc.repo.GetStudentByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteStudent(ctx, id)
}

// --- Modes ---

func (svc *Service) CreateMode(ctx context.Context, nm NewMode) (Mode, error) {
	err := ensureUnique(func() error {
		_, err := svc.repo.GetModeByName(ctx, nm.Name)
		return err
	}, errModeNameExists)
	if err != nil {
		return Mode{}, err
	}

	now := time.Now().UTC()
	mode := Mode{
		Name:        nm.Name,
		Description: nm.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateMode(ctx, mode)
}

func (svc *Service) QueryModes(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Mode, int64, error) {
	return svc.repo.FilterModes(ctx, filter, p, ord...)
}

func (svc *Service) GetMode(ctx context.Context, id int) (Mode, error) {
	return svc.repo.GetModeByID(ctx, id)
}

func (svc *Service) UpdateMode(ctx context.Context, id int, um UpdateMode) (Mode, error) {
	mode, err := svc.repo.GetModeByID(ctx, id)
	if err != nil {
		return Mode{}, err
	}

	if um.Name != nil && *um.Name != mode.Name {
		err = ensureUnique(func() error {
			_, err := svc.repo.GetModeByName(ctx, *um.Name)
			return err
		}, errModeNameExists)
		if err != nil {
			return Mode{}, err
		}
		mode.Name = *um.Name
	}
	if um.Description != nil {
		mode.Description = *um.Description
	}
	if um.IsActive != nil {
		mode.IsActive = *um.IsActive
	}
	mode.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateMode(ctx, mode)
}

func (svc *Service) DeleteMode(ctx context.Context, id int) error {
	if _, err := svc.repo.GetModeByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteMode(ctx, id)
}
