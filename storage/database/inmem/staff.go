package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/staff"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *DB) *staffRepository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) CreateManager(_ context.Context, m staff.Manager) (staff.Manager, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m.ID = repo.db.nextPK()
	repo.db.managers[m.ID] = &m
	return m, nil
}

func (repo *staffRepository) GetManagerByID(_ context.Context, id int) (staff.Manager, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.managers[id]; ok {
		return *m, nil
	}
	return staff.Manager{}, core.ErrNotFound
}

func (repo *staffRepository) GetManagerByEmail(_ context.Context, email string) (staff.Manager, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, m := range repo.db.managers {
		if m.Email == email {
			return *m, nil
		}
	}
	return staff.Manager{}, core.ErrNotFound
}

func (repo *staffRepository) FilterManagers(_ context.Context, filter core.Filter, p core.Pagination, _ ...core.DBOrdering) ([]staff.Manager, int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var mgrs []staff.Manager
	for _, m := range repo.db.managers {
		if repo.managerMatches(*m, filter) {
			mgrs = append(mgrs, *m)
		}
	}
	sort.Slice(mgrs, func(i, j int) bool { return mgrs[i].ID < mgrs[j].ID })
	return pageSlice(mgrs, p), int64(len(mgrs)), nil
}

func (repo *staffRepository) managerMatches(m staff.Manager, filter core.Filter) bool {
	for key, val := range filter {
		var got interface{}
		switch key {
		case "email":
			got = m.Email
		case "firstName":
			got = m.FirstName
		case "lastName":
			got = m.LastName
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

func (repo *staffRepository) UpdateManager(_ context.Context, m staff.Manager) (staff.Manager, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.managers[m.ID]; !ok {
		return staff.Manager{}, core.ErrNotFound
	}
	repo.db.managers[m.ID] = &m
	return m, nil
}

func (repo *staffRepository) DeleteManager(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.managers, id)
	return nil
}

func (repo *staffRepository) CreateFacilitator(_ context.Context, f staff.Facilitator) (staff.Facilitator, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	f.ID = repo.db.nextPK()
	repo.db.facilitators[f.ID] = &f
	return f, nil
}

func (repo *staffRepository) GetFacilitatorByID(_ context.Context, id int) (staff.Facilitator, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if f, ok := repo.db.facilitators[id]; ok {
		return *f, nil
	}
	return staff.Facilitator{}, core.ErrNotFound
}

func (repo *staffRepository) GetFacilitatorByEmail(_ context.Context, email string) (staff.Facilitator, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, f := range repo.db.facilitators {
		if f.Email == email {
			return *f, nil
		}
	}
	return staff.Facilitator{}, core.ErrNotFound
}

func (repo *staffRepository) GetFacilitatorByEmployeeID(_ context.Context, employeeID string) (staff.Facilitator, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, f := range repo.db.facilitators {
		if f.EmployeeID == employeeID {
			return *f, nil
		}
	}
	return staff.Facilitator{}, core.ErrNotFound
}

func (repo *staffRepository) FilterFacilitators(_ context.Context, filter core.Filter, p core.Pagination, _ ...core.DBOrdering) ([]staff.Facilitator, int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var facs []staff.Facilitator
	for _, f := range repo.db.facilitators {
		if repo.facilitatorMatches(*f, filter) {
			facs = append(facs, *f)
		}
	}
	sort.Slice(facs, func(i, j int) bool { return facs[i].ID < facs[j].ID })
	return pageSlice(facs, p), int64(len(facs)), nil
}

func (repo *staffRepository) facilitatorMatches(f staff.Facilitator, filter core.Filter) bool {
	for key, val := range filter {
		var got interface{}
		switch key {
		case "email":
			got = f.Email
		case "firstName":
			got = f.FirstName
		case "lastName":
			got = f.LastName
		case "employeeId":
			got = f.EmployeeID
		case "department":
			got = f.Department
		case "isActive":
			got = f.IsActive
		default:
			continue
		}
		if !match(val, got) {
			return false
		}
	}
	return true
}

func (repo *staffRepository) UpdateFacilitator(_ context.Context, f staff.Facilitator) (staff.Facilitator, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.facilitators[f.ID]; !ok {
		return staff.Facilitator{}, core.ErrNotFound
	}
	repo.db.facilitators[f.ID] = &f
	return f, nil
}

func (repo *staffRepository) DeleteFacilitator(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.facilitators, id)
	return nil
}
