package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/kozi/core/stats"
)

type statsRepository struct {
	db *DB
}

var _ stats.Repository = (*statsRepository)(nil)

func NewStatsRepository(db *DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) GetOverview(ctx context.Context) (stats.Overview, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ov := stats.Overview{
		Managers:        int64(len(repo.db.managers)),
		Facilitators:    int64(len(repo.db.facilitators)),
		Modules:         int64(len(repo.db.modules)),
		Classes:         int64(len(repo.db.classes)),
		Cohorts:         int64(len(repo.db.cohorts)),
		Students:        int64(len(repo.db.students)),
		CourseOfferings: int64(len(repo.db.offerings)),
		ActivityLogs:    int64(len(repo.db.trackers)),
	}
	for _, trk := range repo.db.trackers {
		if trk.SubmittedAt != nil {
			ov.SubmittedLogs++
		}
	}
	return ov, nil
}

func (repo *statsRepository) WeeklySubmissions(ctx context.Context) ([]stats.WeeklySubmission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	byWeek := make(map[int]*stats.WeeklySubmission)
	for _, trk := range repo.db.trackers {
		ws, ok := byWeek[trk.WeekNumber]
		if !ok {
			ws = &stats.WeeklySubmission{WeekNumber: trk.WeekNumber}
			byWeek[trk.WeekNumber] = ws
		}
		ws.Total++
		if trk.SubmittedAt != nil {
			ws.Submitted++
		}
	}

	subs := make([]stats.WeeklySubmission, 0, len(byWeek))
	for _, ws := range byWeek {
		subs = append(subs, *ws)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].WeekNumber < subs[j].WeekNumber })
	return subs, nil
}

func (repo *statsRepository) FacilitatorLoads(ctx context.Context) ([]stats.FacilitatorLoad, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	loads := make([]stats.FacilitatorLoad, 0, len(repo.db.facilitators))
	for _, fac := range repo.db.facilitators {
		load := stats.FacilitatorLoad{
			FacilitatorID: fac.ID,
			FirstName:     fac.FirstName,
			LastName:      fac.LastName,
		}
		for _, off := range repo.db.offerings {
			if off.FacilitatorID != nil && *off.FacilitatorID == fac.ID && off.IsActive {
				load.ActiveAssignments++
			}
		}
		loads = append(loads, load)
	}
	sort.Slice(loads, func(i, j int) bool { return loads[i].ActiveAssignments > loads[j].ActiveAssignments })
	return loads, nil
}
