package gormdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
)

var (
	moduleCols = map[string]string{
		"code":     "code",
		"name":     "name",
		"level":    "level",
		"credits":  "credits",
		"isActive": "is_active",
	}
	classCols = map[string]string{
		"code":      "code",
		"trimester": "trimester",
		"year":      "year",
		"isActive":  "is_active",
	}
	cohortCols = map[string]string{
		"name":     "name",
		"year":     "year",
		"program":  "program",
		"isActive": "is_active",
	}
	studentCols = map[string]string{
		"email":     "email",
		"studentId": `"studentId"`,
		"cohortId":  `"cohortId"`,
		"isActive":  "is_active",
	}
	modeCols = map[string]string{
		"name":     "name",
		"isActive": "is_active",
	}
)

type academicsRepository struct {
	db *gorm.DB
}

var _ academics.Repository = (*academicsRepository)(nil)

func NewAcademicsRepository(db *gorm.DB) *academicsRepository {
	return &academicsRepository{db: db}
}

// --- Modules ---

func (repo *academicsRepository) CreateModule(ctx context.Context, m academics.Module) (academics.Module, error) {
	err := repo.db.WithContext(ctx).Create(&m).Error
	return m, translateError(err)
}

func (repo *academicsRepository) GetModuleByID(ctx context.Context, id int) (academics.Module, error) {
	var m academics.Module
	err := repo.db.WithContext(ctx).First(&m, id).Error
	return m, translateError(err)
}

func (repo *academicsRepository) GetModuleByCode(ctx context.Context, code string) (academics.Module, error) {
	var m academics.Module
	err := repo.db.WithContext(ctx).Where("code = ?", code).First(&m).Error
	return m, translateError(err)
}

func (repo *academicsRepository) FilterModules(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]academics.Module, int64, error) {
	q := applyFilter(repo.db.WithContext(ctx).Model(&academics.Module{}), filter, moduleCols)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var mods []academics.Module
	err := paginate(applyOrdering(q, ord), p).Find(&mods).Error
	return mods, count, translateError(err)
}

func (repo *academicsRepository) UpdateModule(ctx context.Context, m academics.Module) (academics.Module, error) {
	err := repo.db.WithContext(ctx).Save(&m).Error
	return m, translateError(err)
}

func (repo *academicsRepository) DeleteModule(ctx context.Context, id int) error {
	return translateError(repo.db.WithContext(ctx).Delete(&academics.Module{}, id).Error)
}

// --- Classes ---

func (repo *academicsRepository) CreateClass(ctx context.Context, c academics.Class) (academics.Class, error) {
	err := repo.db.WithContext(ctx).Create(&c).Error
	return c, translateError(err)
}

func (repo *academicsRepository) GetClassByID(ctx context.Context, id int) (academics.Class, error) {
	var c academics.Class
	err := repo.db.WithContext(ctx).First(&c, id).Error
	return c, translateError(err)
}

func (repo *academicsRepository) GetClassByCode(ctx context.Context, code string) (academics.Class, error) {
	var c academics.Class
	err := repo.db.WithContext(ctx).Where("code = ?", code).First(&c).Error
	return c, translateError(err)
}

func (repo *academicsRepository) FilterClasses(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]academics.Class, int64, error) {
	q := applyFilter(repo.db.WithContext(ctx).Model(&academics.Class{}), filter, classCols)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var classes []academics.Class
	err := paginate(applyOrdering(q, ord), p).Find(&classes).Error
	return classes, count, translateError(err)
}

func (repo *academicsRepository) UpdateClass(ctx context.Context, c academics.Class) (academics.Class, error) {
	err := repo.db.WithContext(ctx).Save(&c).Error
	return c, translateError(err)
}

func (repo *academicsRepository) DeleteClass(ctx context.Context, id int) error {
	return translateError(repo.db.WithContext(ctx).Delete(&academics.Class{}, id).Error)
}

// --- Cohorts ---

func (repo *academicsRepository) CreateCohort(ctx context.Context, c academics.Cohort) (academics.Cohort, error) {
	err := repo.db.WithContext(ctx).Create(&c).Error
	return c, translateError(err)
}

func (repo *academicsRepository) GetCohortByID(ctx context.Context, id int) (academics.Cohort, error) {
	var c academics.Cohort
	err := repo.db.WithContext(ctx).First(&c, id).Error
	return c, translateError(err)
}

func (repo *academicsRepository) FilterCohorts(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]academics.Cohort, int64, error) {
	q := applyFilter(repo.db.WithContext(ctx).Model(&academics.Cohort{}), filter, cohortCols)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var cohorts []academics.Cohort
	if err := paginate(applyOrdering(q, ord), p).Find(&cohorts).Error; err != nil {
		return nil, 0, translateError(err)
	}
	for i := range cohorts {
		cnt, err := repo.CountActiveStudents(ctx, cohorts[i].ID)
		if err != nil {
			return nil, 0, err
		}
		cohorts[i].StudentCount = cnt
	}
	return cohorts, count, nil
}

func (repo *academicsRepository) UpdateCohort(ctx context.Context, c academics.Cohort) (academics.Cohort, error) {
	err := repo.db.WithContext(ctx).Save(&c).Error
	return c, translateError(err)
}

func (repo *academicsRepository) DeleteCohort(ctx context.Context, id int) error {
	return translateError(repo.db.WithContext(ctx).Delete(&academics.Cohort{}, id).Error)
}

func (repo *academicsRepository) CountActiveStudents(ctx context.Context, cohortID int) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&academics.Student{}).
		Where(`"cohortId" = ? AND is_active`, cohortID).Count(&count).Error
	return count, translateError(err)
}

// --- Students ---

func (repo *academicsRepository) CreateStudent(ctx context.Context, s academics.Student) (academics.Student, error) {
	err := repo.db.WithContext(ctx).Create(&s).Error
	return s, translateError(err)
}

func (repo *academicsRepository) GetStudentByID(ctx context.Context, id int) (academics.Student, error) {
	var s academics.Student
	err := repo.db.WithContext(ctx).Preload("Cohort").First(&s, id).Error
	return s, translateError(err)
}

func (repo *academicsRepository) GetStudentByEmail(ctx context.Context, email string) (academics.Student, error) {
	var s academics.Student
	err := repo.db.WithContext(ctx).Where("email = ?", email).First(&s).Error
	return s, translateError(err)
}

func (repo *academicsRepository) GetStudentByStudentID(ctx context.Context, studentID string) (academics.Student, error) {
	var s academics.Student
	err := repo.db.WithContext(ctx).Where(`"studentId" = ?`, studentID).First(&s).Error
	return s, translateError(err)
}

func (repo *academicsRepository) FilterStudents(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]academics.Student, int64, error) {
	q := applyFilter(repo.db.WithContext(ctx).Model(&academics.Student{}), filter, studentCols)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var students []academics.Student
	err := paginate(applyOrdering(q, ord), p).Preload("Cohort").Find(&students).Error
	return students, count, translateError(err)
}

func (repo *academicsRepository) UpdateStudent(ctx context.Context, s academics.Student) (academics.Student, error) {
	s.Cohort = nil
	err := repo.db.WithContext(ctx).Save(&s).Error
	return s, translateError(err)
}

func (repo *academicsRepository) DeleteStudent(ctx context.Context, id int) error {
	return translateError(repo.db.WithContext(ctx).Delete(&academics.Student{}, id).Error)
}

// --- Modes ---

func (repo *academicsRepository) CreateMode(ctx context.Context, m academics.Mode) (academics.Mode, error) {
	err := repo.db.WithContext(ctx).Create(&m).Error
	return m, translateError(err)
}

func (repo *academicsRepository) GetModeByID(ctx context.Context, id int) (academics.Mode, error) {
	var m academics.Mode
	err := repo.db.WithContext(ctx).First(&m, id).Error
	return m, translateError(err)
}

func (repo *academicsRepository) GetModeByName(ctx context.Context, name string) (academics.Mode, error) {
	var m academics.Mode
	err := repo.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	return m, translateError(err)
}

func (repo *academicsRepository) FilterModes(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]academics.Mode, int64, error) {
	q := applyFilter(repo.db.WithContext(ctx).Model(&academics.Mode{}), filter, modeCols)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var modes []academics.Mode
	err := paginate(applyOrdering(q, ord), p).Find(&modes).Error
	return modes, count, translateError(err)
}

func (repo *academicsRepository) UpdateMode(ctx context.Context, m academics.Mode) (academics.Mode, error) {
	err := repo.db.WithContext(ctx).Save(&m).Error
	return m, translateError(err)
}

func (repo *academicsRepository) DeleteMode(ctx context.Context, id int) error {
	return translateError(repo.db.WithContext(ctx).Delete(&academics.Mode{}, id).Error)
}
