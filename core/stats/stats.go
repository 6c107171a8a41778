// Package stats aggregates dashboard figures across the whole data set.
package stats

import "context"

// Overview is the headline row count per entity.
type Overview struct {
	Managers        int64 `json:"managers" db:"managers"`
	Facilitators    int64 `json:"facilitators" db:"facilitators"`
	Modules         int64 `json:"modules" db:"modules"`
	Classes         int64 `json:"classes" db:"classes"`
	Cohorts         int64 `json:"cohorts" db:"cohorts"`
	Students        int64 `json:"students" db:"students"`
	CourseOfferings int64 `json:"courseOfferings" db:"course_offerings"`
	ActivityLogs    int64 `json:"activityLogs" db:"activity_logs"`
	SubmittedLogs   int64 `json:"submittedLogs" db:"submitted_logs"`
}

// WeeklySubmission counts logs and submissions for one week.
type WeeklySubmission struct {
	WeekNumber int   `json:"weekNumber" db:"week_number"`
	Total      int64 `json:"total" db:"total"`
	Submitted  int64 `json:"submitted" db:"submitted"`
}

// FacilitatorLoad counts a facilitator's active course assignments.
type FacilitatorLoad struct {
	FacilitatorID     int    `json:"facilitatorId" db:"facilitator_id"`
	FirstName         string `json:"firstName" db:"first_name"`
	LastName          string `json:"lastName" db:"last_name"`
	ActiveAssignments int64  `json:"activeAssignments" db:"active_assignments"`
}

type (
	Repository interface {
		GetOverview(ctx context.Context) (Overview, error)
		WeeklySubmissions(ctx context.Context) ([]WeeklySubmission, error)
		FacilitatorLoads(ctx context.Context) ([]FacilitatorLoad, error)
	}

	// Dashboard bundles everything the admin dashboard renders.
	Dashboard struct {
		Overview          Overview           `json:"overview"`
		WeeklySubmissions []WeeklySubmission `json:"weeklySubmissions"`
		FacilitatorLoads  []FacilitatorLoad  `json:"facilitatorLoads"`
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetDashboard(ctx context.Context) (Dashboard, error) {
	var dash Dashboard
	var err error
	if dash.Overview, err = svc.repo.GetOverview(ctx); err != nil {
		return dash, err
	}
	if dash.WeeklySubmissions, err = svc.repo.WeeklySubmissions(ctx); err != nil {
		return dash, err
	}
	dash.FacilitatorLoads, err = svc.repo.FacilitatorLoads(ctx)
	return dash, err
}
