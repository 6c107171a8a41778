package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/allocation"
	"github.com/trezcool/kozi/core/staff"
	emailsvc "github.com/trezcool/kozi/services/email"
	"github.com/trezcool/kozi/storage/database"
	"github.com/trezcool/kozi/storage/database/gormdb"
)

// seedServices bundles the service layer the demo seeder writes through so
// that seeded rows go through the same uniqueness and referential checks as
// API writes.
type seedServices struct {
	staff      *staff.Service
	academics  *academics.Service
	allocation *allocation.Service
}

func openSeedServices(conf *core.Config) (*seedServices, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	allocationSvc := allocation.NewService(gormdb.NewAllocationRepository(db), gormdb.NewReferenceChecker(db))
	return &seedServices{
		staff:      staff.NewService(conf, gormdb.NewStaffRepository(db), allocationSvc, emailsvc.NewConsoleService(conf)),
		academics:  academics.NewService(gormdb.NewAcademicsRepository(db)),
		allocation: allocationSvc,
	}, nil
}

func seed(conf *core.Config) error {
	svcs, err := openSeedServices(conf)
	if err != nil {
		return err
	}
	return seedDemoData(context.Background(), svcs)
}

// seedDemoData populates a fresh database with a small demo dataset. It
// refuses to run against a database that already holds modules so a re-run
// cannot duplicate allocations.
func seedDemoData(ctx context.Context, svcs *seedServices) error {
	if _, count, err := svcs.academics.QueryModules(ctx, nil, core.ParsePagination("1", "1")); err != nil {
		return errors.Wrap(err, "checking for existing data")
	} else if count > 0 {
		return errors.New("database already seeded")
	}

	mgr, err := svcs.staff.CreateManager(ctx, staff.NewManager{
		FirstName: "Patience",
		LastName:  "Mwamba",
		Email:     "admin@kozi.cd",
		Password:  "Ch@ngeMe-2026",
	})
	if err != nil {
		return errors.Wrap(err, "seeding manager")
	}
	mgrCaller := core.Caller{ID: mgr.ID, Email: mgr.Email, Role: core.RoleManager}

	facilitators := make([]staff.Facilitator, 0, 2)
	for _, nf := range []staff.NewFacilitator{
		{FirstName: "Didier", LastName: "Kasongo", Email: "d.kasongo@kozi.cd", EmployeeID: "EMP-001", Department: "Software Engineering", Password: "Ch@ngeMe-2026"},
		{FirstName: "Grace", LastName: "Ilunga", Email: "g.ilunga@kozi.cd", EmployeeID: "EMP-002", Department: "Data Science", Password: "Ch@ngeMe-2026"},
	} {
		fac, err := svcs.staff.CreateFacilitator(ctx, nf)
		if err != nil {
			return errors.Wrap(err, "seeding facilitator")
		}
		facilitators = append(facilitators, fac)
	}

	modules := make([]academics.Module, 0, 3)
	for _, nm := range []academics.NewModule{
		{Code: "CS101", Name: "Introduction to Programming", Credits: 10, Level: "undergraduate"},
		{Code: "CS205", Name: "Data Structures and Algorithms", Credits: 15, Level: "undergraduate"},
		{Code: "DS501", Name: "Applied Machine Learning", Credits: 15, Level: "postgraduate"},
	} {
		mod, err := svcs.academics.CreateModule(ctx, nm)
		if err != nil {
			return errors.Wrap(err, "seeding module")
		}
		modules = append(modules, mod)
	}

	year := time.Now().Year()
	classes := make([]academics.Class, 0, 2)
	for _, nc := range []academics.NewClass{
		{Code: fmt.Sprintf("%dJ", year), Trimester: "T1", Year: year},
		{Code: fmt.Sprintf("%dM", year), Trimester: "T2", Year: year},
	} {
		cls, err := svcs.academics.CreateClass(ctx, nc)
		if err != nil {
			return errors.Wrap(err, "seeding class")
		}
		classes = append(classes, cls)
	}

	cohorts := make([]academics.Cohort, 0, 2)
	for _, nc := range []academics.NewCohort{
		{Name: "Cohort 1", Year: year, Program: "BSc Software Engineering"},
		{Name: "Cohort 2", Year: year, Program: "MSc Data Science"},
	} {
		coh, err := svcs.academics.CreateCohort(ctx, nc)
		if err != nil {
			return errors.Wrap(err, "seeding cohort")
		}
		cohorts = append(cohorts, coh)
	}

	for i, ns := range []academics.NewStudent{
		{FirstName: "Amani", LastName: "Tshisekedi", Email: "amani@student.kozi.cd", StudentID: "STU-0001"},
		{FirstName: "Beni", LastName: "Mukendi", Email: "beni@student.kozi.cd", StudentID: "STU-0002"},
		{FirstName: "Chantal", LastName: "Ngalula", Email: "chantal@student.kozi.cd", StudentID: "STU-0003"},
		{FirstName: "Dieudonne", LastName: "Kabila", Email: "dieudonne@student.kozi.cd", StudentID: "STU-0004"},
	} {
		ns.CohortID = cohorts[i%len(cohorts)].ID
		if _, err := svcs.academics.CreateStudent(ctx, ns); err != nil {
			return errors.Wrap(err, "seeding student")
		}
	}

	modes := make([]academics.Mode, 0, 3)
	for _, nm := range []academics.NewMode{
		{Name: "Online", Description: "Fully remote delivery"},
		{Name: "In-person", Description: "On campus delivery"},
		{Name: "Hybrid", Description: "Mixed remote and on campus delivery"},
	} {
		mode, err := svcs.academics.CreateMode(ctx, nm)
		if err != nil {
			return errors.Wrap(err, "seeding mode")
		}
		modes = append(modes, mode)
	}

	offerings := make([]allocation.CourseOffering, 0, 3)
	for i, no := range []allocation.NewCourseOffering{
		{ModuleID: modules[0].ID, ClassID: classes[0].ID, CohortID: cohorts[0].ID, ModeID: modes[0].ID, IntakePeriod: "HT1"},
		{ModuleID: modules[1].ID, ClassID: classes[0].ID, CohortID: cohorts[0].ID, ModeID: modes[1].ID, IntakePeriod: "HT2"},
		{ModuleID: modules[2].ID, ClassID: classes[1].ID, CohortID: cohorts[1].ID, ModeID: modes[2].ID, IntakePeriod: "FT"},
	} {
		facID := facilitators[i%len(facilitators)].ID
		no.FacilitatorID = &facID
		off, err := svcs.allocation.CreateOffering(ctx, no)
		if err != nil {
			return errors.Wrap(err, "seeding course offering")
		}
		offerings = append(offerings, off)
	}

	for week := 1; week <= 2; week++ {
		nt := allocation.NewActivityTracker{
			AllocationID:        offerings[0].ID,
			WeekNumber:          week,
			Attendance:          allocation.Attendance{true, true, false, true, true},
			FormativeOneGrading: "Pending",
		}
		if _, err := svcs.allocation.CreateTracker(ctx, mgrCaller, nt); err != nil {
			return errors.Wrap(err, "seeding activity tracker")
		}
	}

	fmt.Println("demo dataset seeded; manager login: admin@kozi.cd")
	return nil
}
