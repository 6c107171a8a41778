package gormdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/staff"
)

var managerCols = map[string]string{
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
	"isActive":  "is_active",
}

var facilitatorCols = map[string]string{
	"email":      "email",
	"firstName":  "first_name",
	"lastName":   "last_name",
	"employeeId": "employee_id",
	"department": "department",
	"isActive":   "is_active",
}

type staffRepository struct {
	db *gorm.DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *gorm.DB) *staffRepository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) CreateManager(ctx context.Context, m staff.Manager) (staff.Manager, error) {
	err := repo.db.WithContext(ctx).Create(&m).Error
	return m, translateError(err)
}

func (repo *staffRepository) GetManagerByID(ctx context.Context, id int) (staff.Manager, error) {
	var m staff.Manager
	err := repo.db.WithContext(ctx).First(&m, id).Error
	return m, translateError(err)
}

func (repo *staffRepository) GetManagerByEmail(ctx context.Context, email string) (staff.Manager, error) {
	var m staff.Manager
	err := repo.db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	return m, translateError(err)
}

func (repo *staffRepository) FilterManagers(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]staff.Manager, int64, error) {
	q := applyFilter(repo.db.WithContext(ctx).Model(&staff.Manager{}), filter, managerCols)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var mgrs []staff.Manager
	err := paginate(applyOrdering(q, ord), p).Find(&mgrs).Error
	return mgrs, count, translateError(err)
}

func (repo *staffRepository) UpdateManager(ctx context.Context, m staff.Manager) (staff.Manager, error) {
	err := repo.db.WithContext(ctx).Save(&m).Error
	return m, translateError(err)
}

func (repo *staffRepository) DeleteManager(ctx context.Context, id int) error {
	return translateError(repo.db.WithContext(ctx).Delete(&staff.Manager{}, id).Error)
}

func (repo *staffRepository) CreateFacilitator(ctx context.Context, f staff.Facilitator) (staff.Facilitator, error) {
	err := repo.db.WithContext(ctx).Create(&f).Error
	return f, translateError(err)
}

func (repo *staffRepository) GetFacilitatorByID(ctx context.Context, id int) (staff.Facilitator, error) {
	var f staff.Facilitator
	err := repo.db.WithContext(ctx).First(&f, id).Error
	return f, translateError(err)
}

func (repo *staffRepository) GetFacilitatorByEmail(ctx context.Context, email string) (staff.Facilitator, error) {
	var f staff.Facilitator
	err := repo.db.WithContext(ctx).Where("email = ?", email).First(&f).Error
	return f, translateError(err)
}

func (repo *staffRepository) GetFacilitatorByEmployeeID(ctx context.Context, employeeID string) (staff.Facilitator, error) {
	var f staff.Facilitator
	err := repo.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&f).Error
	return f, translateError(err)
}

func (repo *staffRepository) FilterFacilitators(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]staff.Facilitator, int64, error) {
	q := applyFilter(repo.db.WithContext(ctx).Model(&staff.Facilitator{}), filter, facilitatorCols)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var facs []staff.Facilitator
	err := paginate(applyOrdering(q, ord), p).Find(&facs).Error
	return facs, count, translateError(err)
}

func (repo *staffRepository) UpdateFacilitator(ctx context.Context, f staff.Facilitator) (staff.Facilitator, error) {
	err := repo.db.WithContext(ctx).Save(&f).Error
	return f, translateError(err)
}

func (repo *staffRepository) DeleteFacilitator(ctx context.Context, id int) error {
	return translateError(repo.db.WithContext(ctx).Delete(&staff.Facilitator{}, id).Error)
}
