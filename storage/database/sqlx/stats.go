package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core/stats"
)

type statsRepository struct {
	db *sqlx.DB
}

var _ stats.Repository = (*statsRepository)(nil)

func NewStatsRepository(db *sqlx.DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) GetOverview(ctx context.Context) (stats.Overview, error) {
	const q = `
SELECT
	(SELECT COUNT(*) FROM managers)                                      AS managers,
	(SELECT COUNT(*) FROM facilitators)                                  AS facilitators,
	(SELECT COUNT(*) FROM modules)                                       AS modules,
	(SELECT COUNT(*) FROM classes)                                       AS classes,
	(SELECT COUNT(*) FROM cohorts)                                       AS cohorts,
	(SELECT COUNT(*) FROM students)                                      AS students,
	(SELECT COUNT(*) FROM course_offerings)                              AS course_offerings,
	(SELECT COUNT(*) FROM activity_trackers)                             AS activity_logs,
	(SELECT COUNT(*) FROM activity_trackers WHERE "submittedAt" IS NOT NULL) AS submitted_logs`

	var ov stats.Overview
	err := repo.db.GetContext(ctx, &ov, q)
	return ov, errors.Wrap(err, "querying overview")
}

func (repo *statsRepository) WeeklySubmissions(ctx context.Context) ([]stats.WeeklySubmission, error) {
	const q = `
SELECT
	"weekNumber"                                    AS week_number,
	COUNT(*)                                        AS total,
	COUNT(*) FILTER (WHERE "submittedAt" IS NOT NULL) AS submitted
FROM activity_trackers
GROUP BY "weekNumber"
ORDER BY "weekNumber"`

	var subs []stats.WeeklySubmission
	err := repo.db.SelectContext(ctx, &subs, q)
	return subs, errors.Wrap(err, "querying weekly submissions")
}

func (repo *statsRepository) FacilitatorLoads(ctx context.Context) ([]stats.FacilitatorLoad, error) {
	const q = `
SELECT
	f.id         AS facilitator_id,
	f.first_name AS first_name,
	f.last_name  AS last_name,
	COUNT(o.id)  AS active_assignments
FROM facilitators f
LEFT JOIN course_offerings o ON o."facilitatorId" = f.id AND o."isActive"
GROUP BY f.id, f.first_name, f.last_name
ORDER BY active_assignments DESC, f.id`

	var loads []stats.FacilitatorLoad
	err := repo.db.SelectContext(ctx, &loads, q)
	return loads, errors.Wrap(err, "querying facilitator loads")
}
