package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
)

type academicsRepository struct {
	db *DB
}

var _ academics.Repository = (*academicsRepository)(nil)

func NewAcademicsRepository(db *DB) *academicsRepository {
	return &academicsRepository{db: db}
}

// --- Modules ---

func (repo *academicsRepository) CreateModule(_ context.Context, m academics.Module) (academics.Module, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m.ID = repo.db.nextPK()
	repo.db.modules[m.ID] = &m
	return m, nil
}

func (repo *academicsRepository) GetModuleByID(_ context.Context, id int) (academics.Module, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.modules[id]; ok {
		return *m, nil
	}
	return academics.Module{}, core.ErrNotFound
}

func (repo *academicsRepository) GetModuleByCode(_ context.Context, code string) (academics.Module, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, m := range repo.db.modules {
		if m.Code == code {
			return *m, nil
		}
	}
	return academics.Module{}, core.ErrNotFound
}

func (repo *academicsRepository) FilterModules(_ context.Context, filter core.Filter, p core.Pagination, _ ...core.DBOrdering) ([]academics.Module, int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var mods []academics.Module
	for _, m := range repo.db.modules {
		if moduleMatches(*m, filter) {
			mods = append(mods, *m)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })
	return pageSlice(mods, p), int64(len(mods)), nil
}

func moduleMatches(m academics.Module, filter core.Filter) bool {
	for key, val := range filter {
		var got interface{}
		switch key {
		case "code":
			got = m.Code
		case "name":
			got = m.Name
		case "level":
			got = m.Level
		case "credits":
			got = m.Credits
		case "isActive":
			got = m.IsActive
		default:
			continue
		}
		if !match(val, got) {
			return false
		}
	}
	return true
}

func (repo *academicsRepository) UpdateModule(_ context.Context, m academics.Module) (academics.Module, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.modules[m.ID]; !ok {
		return academics.Module{}, core.ErrNotFound
	}
	repo.db.modules[m.ID] = &m
	return m, nil
}

func (repo *academicsRepository) DeleteModule(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.modules, id)
	return nil
}

// --- Classes ---

func (repo *academicsRepository) CreateClass(_ context.Context, c academics.Class) (academics.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = repo.db.nextPK()
	repo.db.classes[c.ID] = &c
	return c, nil
}

func (repo *academicsRepository) GetClassByID(_ context.Context, id int) (academics.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return *c, nil
	}
	return academics.Class{}, core.ErrNotFound
}

func (repo *academicsRepository) GetClassByCode(_ context.Context, code string) (academics.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, c := range repo.db.classes {
		if c.Code == code {
			return *c, nil
		}
	}
	return academics.Class{}, core.ErrNotFound
}

func (repo *academicsRepository) FilterClasses(_ context.Context, filter core.Filter, p core.Pagination, _ ...core.DBOrdering) ([]academics.Class, int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var classes []academics.Class
	for _, c := range repo.db.classes {
		if classMatches(*c, filter) {
			classes = append(classes, *c)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return pageSlice(classes, p), int64(len(classes)), nil
}

func classMatches(c academics.Class, filter core.Filter) bool {
	for key, val := range filter {
		var got interface{}
		switch key {
		case "code":
			got = c.Code
		case "trimester":
			got = c.Trimester
		case "year":
			got = c.Year
		case "isActive":
			got = c.IsActive
		default:
			continue
		}
		if !match(val, got) {
			return false
		}
	}
	return true
}

func (repo *academicsRepository) UpdateClass(_ context.Context, c academics.Class) (academics.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.classes[c.ID]; !ok {
		return academics.Class{}, core.ErrNotFound
	}
	repo.db.classes[c.ID] = &c
	return c, nil
}

func (repo *academicsRepository) DeleteClass(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.classes, id)
	return nil
}

// --- Cohorts ---

func (repo *academicsRepository) CreateCohort(_ context.Context, c academics.Cohort) (academics.Cohort, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = repo.db.nextPK()
	repo.db.cohorts[c.ID] = &c
	return c, nil
}

func (repo *academicsRepository) GetCohortByID(_ context.Context, id int) (academics.Cohort, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.cohorts[id]; ok {
		return *c, nil
	}
	return academics.Cohort{}, core.ErrNotFound
}

func (repo *academicsRepository) FilterCohorts(_ context.Context, filter core.Filter, p core.Pagination, _ ...core.DBOrdering) ([]academics.Cohort, int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var cohorts []academics.Cohort
	for _, c := range repo.db.cohorts {
		if cohortMatches(*c, filter) {
			cc := *c
			cc.StudentCount = repo.countActiveStudents(c.ID)
			cohorts = append(cohorts, cc)
		}
	}
	sort.Slice(cohorts, func(i, j int) bool { return cohorts[i].ID < cohorts[j].ID })
	return pageSlice(cohorts, p), int64(len(cohorts)), nil
}

func cohortMatches(c academics.Cohort, filter core.Filter) bool {
	for key, val := range filter {
		var got interface{}
		switch key {
		case "name":
			got = c.Name
		case "year":
			got = c.Year
		case "program":
			got = c.Program
		case "isActive":
			got = c.IsActive
		default:
			continue
		}
		if !match(val, got) {
			return false
		}
	}
	return true
}

func (repo *academicsRepository) UpdateCohort(_ context.Context, c academics.Cohort) (academics.Cohort, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.cohorts[c.ID]; !ok {
		return academics.Cohort{}, core.ErrNotFound
	}
	repo.db.cohorts[c.ID] = &c
	return c, nil
}

func (repo *academicsRepository) DeleteCohort(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.cohorts, id)
	return nil
}

// countActiveStudents must be called with db.mu held.
func (repo *academicsRepository) countActiveStudents(cohortID int) int64 {
	var count int64
	for _, s := range repo.db.students {
		if s.CohortID == cohortID && s.IsActive {
			count++
		}
	}
	return count
}

func (repo *academicsRepository) CountActiveStudents(_ context.Context, cohortID int) (int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.countActiveStudents(cohortID), nil
}

// --- Students ---

func (repo *academicsRepository) CreateStudent(_ context.Context, s academics.Student) (academics.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s.ID = repo.db.nextPK()
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *academicsRepository) GetStudentByID(_ context.Context, id int) (academics.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		std := *s
		if c, ok := repo.db.cohorts[std.CohortID]; ok {
			cc := *c
			std.Cohort = &cc
		}
		return std, nil
	}
	return academics.Student{}, core.ErrNotFound
}

func (repo *academicsRepository) GetStudentByEmail(_ context.Context, email string) (academics.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.students {
		if s.Email == email {
			return *s, nil
		}
	}
	return academics.Student{}, core.ErrNotFound
}

func (repo *academicsRepository) GetStudentByStudentID(_ context.Context, studentID string) (academics.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.students {
		if s.StudentID == studentID {
			return *s, nil
		}
	}
	return academics.Student{}, core.ErrNotFound
}

func (repo *academicsRepository) FilterStudents(_ context.Context, filter core.Filter, p core.Pagination, _ ...core.DBOrdering) ([]academics.Student, int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var students []academics.Student
	for _, s := range repo.db.students {
		if studentMatches(*s, filter) {
			students = append(students, *s)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return pageSlice(students, p), int64(len(students)), nil
}

func studentMatches(s academics.Student, filter core.Filter) bool {
	for key, val := range filter {
		var got interface{}
		switch key {
		case "email":
			got = s.Email
		case "studentId":
			got = s.StudentID
		case "cohortId":
			got = s.CohortID
		case "isActive":
			got = s.IsActive
		default:
			continue
		}
		if !match(val, got) {
			return false
		}
	}
	return true
}

func (repo *academicsRepository) UpdateStudent(_ context.Context, s academics.Student) (academics.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.students[s.ID]; !ok {
		return academics.Student{}, core.ErrNotFound
	}
	s.Cohort = nil
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *academicsRepository) DeleteStudent(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.students, id)
	return nil
}

// --- Modes ---

func (repo *academicsRepository) CreateMode(_ context.Context, m academics.Mode) (academics.Mode, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m.ID = repo.db.nextPK()
	repo.db.modes[m.ID] = &m
	return m, nil
}

func (repo *academicsRepository) GetModeByID(_ context.Context, id int) (academics.Mode, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.modes[id]; ok {
		return *m, nil
	}
	return academics.Mode{}, core.ErrNotFound
}

func (repo *academicsRepository) GetModeByName(_ context.Context, name string) (academics.Mode, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, m := range repo.db.modes {
		if m.Name == name {
			return *m, nil
		}
	}
	return academics.Mode{}, core.ErrNotFound
}

func (repo *academicsRepository) FilterModes(_ context.Context, filter core.Filter, p core.Pagination, _ ...core.DBOrdering) ([]academics.Mode, int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var modes []academics.Mode
	for _, m := range repo.db.modes {
		if modeMatches(*m, filter) {
			modes = append(modes, *m)
		}
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i].ID < modes[j].ID })
	return pageSlice(modes, p), int64(len(modes)), nil
}

func modeMatches(m academics.Mode, filter core.Filter) bool {
	for key, val := range filter {
		var got interface{}
		switch key {
		case "name":
			got = m.Name
		case "isActive":
			got = m.IsActive
		default:
			continue
		}
		if !match(val, got) {
			return false
		}
	}
	return true
}

func (repo *academicsRepository) UpdateMode(_ context.Context, m academics.Mode) (academics.Mode, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.modes[m.ID]; !ok {
		return academics.Mode{}, core.ErrNotFound
	}
	repo.db.modes[m.ID] = &m
	return m, nil
}

func (repo *academicsRepository) DeleteMode(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.modes, id)
	return nil
}
