package allocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/allocation"
	"github.com/trezcool/kozi/core/staff"
	inmemdb "github.com/trezcool/kozi/storage/database/inmem"
)

type serviceFixtures struct {
	svc *allocation.Service

	fac1, fac2 staff.Facilitator
	module     academics.Module
	class      academics.Class
	cohort     academics.Cohort
	mode       academics.Mode
}

func setupService(t *testing.T) serviceFixtures {
	t.Helper()
	ctx := context.Background()

	db := inmemdb.NewDB()
	staffRepo := inmemdb.NewStaffRepository(db)
	academicsSvc := academics.NewService(inmemdb.NewAcademicsRepository(db))
	svc := allocation.NewService(inmemdb.NewAllocationRepository(db), inmemdb.NewReferenceChecker(db))

	now := time.Now().UTC()
	fac1, err := staffRepo.CreateFacilitator(ctx, staff.Facilitator{
		FirstName: "Didier", LastName: "Kasongo", Email: "fac1@test.cd",
		EmployeeID: "EMP-001", IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateFacilitator() error = %v", err)
	}
	fac2, err := staffRepo.CreateFacilitator(ctx, staff.Facilitator{
		FirstName: "Grace", LastName: "Ilunga", Email: "fac2@test.cd",
		EmployeeID: "EMP-002", IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateFacilitator() error = %v", err)
	}

	module, err := academicsSvc.CreateModule(ctx, academics.NewModule{Code: "CS101", Name: "Introduction to Programming", Credits: 10})
	if err != nil {
		t.Fatalf("CreateModule() error = %v", err)
	}
	class, err := academicsSvc.CreateClass(ctx, academics.NewClass{Code: "2026J", Trimester: "T1", Year: 2026})
	if err != nil {
		t.Fatalf("CreateClass() error = %v", err)
	}
	cohort, err := academicsSvc.CreateCohort(ctx, academics.NewCohort{Name: "Cohort 1", Year: 2026, Program: "BSE"})
	if err != nil {
		t.Fatalf("CreateCohort() error = %v", err)
	}
	mode, err := academicsSvc.CreateMode(ctx, academics.NewMode{Name: "Online"})
	if err != nil {
		t.Fatalf("CreateMode() error = %v", err)
	}

	return serviceFixtures{svc: svc, fac1: fac1, fac2: fac2, module: module, class: class, cohort: cohort, mode: mode}
}

func facCaller(f staff.Facilitator) core.Caller {
	return core.Caller{ID: f.ID, Email: f.Email, Role: core.RoleFacilitator}
}

func (f serviceFixtures) newOffering(facilitatorID int, intakePeriod string) allocation.NewCourseOffering {
	return allocation.NewCourseOffering{
		ModuleID:      f.module.ID,
		ClassID:       f.class.ID,
		CohortID:      f.cohort.ID,
		FacilitatorID: &facilitatorID,
		ModeID:        f.mode.ID,
		IntakePeriod:  intakePeriod,
	}
}

func TestService_CreateOffering(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if _, err := f.svc.CreateOffering(ctx, f.newOffering(f.fac1.ID, "HT1")); err != nil {
		t.Fatalf("CreateOffering() error = %v", err)
	}

	t.Run("duplicate module+class+cohort+intake conflicts", func(t *testing.T) {
		_, err := f.svc.CreateOffering(ctx, f.newOffering(f.fac2.ID, "HT1"))
		if _, ok := errors.Cause(err).(*core.ConflictError); !ok {
			t.Errorf("CreateOffering() error = %v, want a ConflictError", err)
		}
	})

	t.Run("same composite under another intake period passes", func(t *testing.T) {
		if _, err := f.svc.CreateOffering(ctx, f.newOffering(f.fac1.ID, "HT2")); err != nil {
			t.Errorf("CreateOffering() error = %v", err)
		}
	})

	t.Run("missing module reference rejected", func(t *testing.T) {
		no := f.newOffering(f.fac1.ID, "FT")
		no.ModuleID = 999
		_, err := f.svc.CreateOffering(ctx, no)
		if _, ok := errors.Cause(err).(*core.ReferentialError); !ok {
			t.Errorf("CreateOffering() error = %v, want a ReferentialError", err)
		}
	})

	t.Run("missing facilitator reference rejected", func(t *testing.T) {
		facID := 999
		no := f.newOffering(f.fac1.ID, "FT")
		no.FacilitatorID = &facID
		_, err := f.svc.CreateOffering(ctx, no)
		if _, ok := errors.Cause(err).(*core.ReferentialError); !ok {
			t.Errorf("CreateOffering() error = %v, want a ReferentialError", err)
		}
	})
}

func TestService_facilitatorScoping(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	off1, err := f.svc.CreateOffering(ctx, f.newOffering(f.fac1.ID, "HT1"))
	if err != nil {
		t.Fatalf("CreateOffering() error = %v", err)
	}
	if _, err = f.svc.CreateOffering(ctx, f.newOffering(f.fac2.ID, "HT2")); err != nil {
		t.Fatalf("CreateOffering() error = %v", err)
	}

	t.Run("facilitator only lists own offerings", func(t *testing.T) {
		offs, count, err := f.svc.QueryOfferings(ctx, facCaller(f.fac1), nil, core.ParsePagination("", ""))
		if err != nil {
			t.Fatalf("QueryOfferings() error = %v", err)
		}
		if count != 1 || len(offs) != 1 {
			t.Fatalf("QueryOfferings() count = %d, len = %d; want 1 row", count, len(offs))
		}
		if offs[0].FacilitatorID == nil || *offs[0].FacilitatorID != f.fac1.ID {
			t.Errorf("FacilitatorID = %v, want %d", offs[0].FacilitatorID, f.fac1.ID)
		}
	})

	t.Run("facilitatorId filter cannot widen visibility", func(t *testing.T) {
		filter := core.Filter{core.FacilitatorIDField: f.fac2.ID}
		_, count, err := f.svc.QueryOfferings(ctx, facCaller(f.fac1), filter, core.ParsePagination("", ""))
		if err != nil {
			t.Fatalf("QueryOfferings() error = %v", err)
		}
		if count != 1 {
			t.Errorf("QueryOfferings() count = %d, want the caller's own row only", count)
		}
	})

	t.Run("another facilitator's offering is off limits", func(t *testing.T) {
		_, err := f.svc.GetOffering(ctx, facCaller(f.fac2), off1.ID)
		if errors.Cause(err) != core.ErrPermissionDenied {
			t.Errorf("GetOffering() error = %v, want %v", err, core.ErrPermissionDenied)
		}
	})

	t.Run("only the assigned facilitator logs activity", func(t *testing.T) {
		nt := allocation.NewActivityTracker{AllocationID: off1.ID, WeekNumber: 1}
		if _, err := f.svc.CreateTracker(ctx, facCaller(f.fac2), nt); errors.Cause(err) != core.ErrPermissionDenied {
			t.Errorf("CreateTracker() error = %v, want %v", err, core.ErrPermissionDenied)
		}
		if _, err := f.svc.CreateTracker(ctx, facCaller(f.fac1), nt); err != nil {
			t.Fatalf("CreateTracker() error = %v", err)
		}

		_, count, err := f.svc.QueryTrackers(ctx, facCaller(f.fac2), nil, core.ParsePagination("", ""))
		if err != nil {
			t.Fatalf("QueryTrackers() error = %v", err)
		}
		if count != 0 {
			t.Errorf("QueryTrackers() count = %d, want 0 rows for the other facilitator", count)
		}
	})
}

func TestService_CreateTracker_duplicateWeek(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	off, err := f.svc.CreateOffering(ctx, f.newOffering(f.fac1.ID, "HT1"))
	if err != nil {
		t.Fatalf("CreateOffering() error = %v", err)
	}

	caller := facCaller(f.fac1)
	nt := allocation.NewActivityTracker{AllocationID: off.ID, WeekNumber: 3}
	if _, err = f.svc.CreateTracker(ctx, caller, nt); err != nil {
		t.Fatalf("CreateTracker() error = %v", err)
	}

	_, err = f.svc.CreateTracker(ctx, caller, nt)
	if _, ok := errors.Cause(err).(*core.ConflictError); !ok {
		t.Errorf("CreateTracker() error = %v, want a ConflictError", err)
	}
}
