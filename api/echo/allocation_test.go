package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/allocation"
)

type fixtures struct {
	module academics.Module
	class  academics.Class
	cohort academics.Cohort
	mode   academics.Mode
}

func (env *testEnv) createAcademics(t *testing.T) fixtures {
	t.Helper()
	ctx := context.Background()

	module, err := env.academicsSvc.CreateModule(ctx, academics.NewModule{
		Code: "CS101", Name: "Intro to Computer Science", Credits: 10,
	})
	if err != nil {
		t.Fatalf("creating module: %v", err)
	}
	class, err := env.academicsSvc.CreateClass(ctx, academics.NewClass{
		Code: "2026J", Trimester: "T1", Year: 2026,
	})
	if err != nil {
		t.Fatalf("creating class: %v", err)
	}
	cohort, err := env.academicsSvc.CreateCohort(ctx, academics.NewCohort{
		Name: "Cohort 1", Year: 2026, Program: "BSE",
	})
	if err != nil {
		t.Fatalf("creating cohort: %v", err)
	}
	mode, err := env.academicsSvc.CreateMode(ctx, academics.NewMode{Name: "online"})
	if err != nil {
		t.Fatalf("creating mode: %v", err)
	}
	return fixtures{module: module, class: class, cohort: cohort, mode: mode}
}

func Test_allocationAPI_offeringLifecycle(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")
	fac, facToken := env.createFacilitator(t, "fac@test.cd", "EMP001")
	fx := env.createAcademics(t)

	newOffering := map[string]interface{}{
		"moduleId":      fx.module.ID,
		"classId":       fx.class.ID,
		"cohortId":      fx.cohort.ID,
		"facilitatorId": fac.ID,
		"modeId":        fx.mode.ID,
		"intakePeriod":  allocation.IntakeHalfTrimesterOne,
	}

	// facilitators cannot allocate courses
	code, resp := env.do(t, http.MethodPost, "/api/course-offerings", facToken, newOffering)
	checkCode(t, code, http.StatusForbidden, resp)

	code, resp = env.do(t, http.MethodPost, "/api/course-offerings", mgrToken, newOffering)
	checkCode(t, code, http.StatusCreated, resp)
	var off allocation.CourseOffering
	decodeData(t, resp.Data, &off)
	if off.Module == nil || off.Module.Code != "CS101" {
		t.Errorf("offering module not preloaded: %+v", off.Module)
	}

	// same (module, class, cohort, intake) combination is rejected
	code, resp = env.do(t, http.MethodPost, "/api/course-offerings", mgrToken, newOffering)
	checkCode(t, code, http.StatusConflict, resp)

	// unknown module is a referential failure, not a server error
	bad := map[string]interface{}{
		"moduleId": 999, "classId": fx.class.ID, "cohortId": fx.cohort.ID,
		"modeId": fx.mode.ID, "intakePeriod": allocation.IntakeFullTrimester,
	}
	code, resp = env.do(t, http.MethodPost, "/api/course-offerings", mgrToken, bad)
	checkCode(t, code, http.StatusBadRequest, resp)

	// the facilitator sees their own assignment
	code, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/course-offerings/%d", off.ID), facToken, nil)
	checkCode(t, code, http.StatusOK, resp)

	// another facilitator does not
	_, otherToken := env.createFacilitator(t, "other@test.cd", "EMP999")
	code, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/course-offerings/%d", off.ID), otherToken, nil)
	checkCode(t, code, http.StatusForbidden, resp)
	code, resp = env.do(t, http.MethodGet, "/api/course-offerings", otherToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	var offs []allocation.CourseOffering
	decodeData(t, resp.Data, &offs)
	if len(offs) != 0 {
		t.Errorf("unassigned facilitator sees %d offerings; want 0", len(offs))
	}

	// the assigned facilitator cannot be deleted while the offering is active
	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/facilitators/%d", fac.ID), mgrToken, nil)
	checkCode(t, code, http.StatusBadRequest, resp)

	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/course-offerings/%d", off.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/facilitators/%d", fac.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
}

func Test_allocationAPI_trackerLifecycle(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")
	fac, facToken := env.createFacilitator(t, "fac@test.cd", "EMP001")
	_, otherToken := env.createFacilitator(t, "other@test.cd", "EMP999")
	fx := env.createAcademics(t)

	off, err := env.allocationSvc.CreateOffering(context.Background(), allocation.NewCourseOffering{
		ModuleID:      fx.module.ID,
		ClassID:       fx.class.ID,
		CohortID:      fx.cohort.ID,
		FacilitatorID: &fac.ID,
		ModeID:        fx.mode.ID,
		IntakePeriod:  allocation.IntakeHalfTrimesterOne,
	})
	if err != nil {
		t.Fatalf("creating offering: %v", err)
	}

	newTracker := map[string]interface{}{
		"allocationId":     off.ID,
		"weekNumber":       1,
		"attendance":       []bool{true, true, false},
		"summativeGrading": allocation.StatusDone,
	}

	// a facilitator cannot log for someone else's offering
	code, resp := env.do(t, http.MethodPost, "/api/activity-logs", otherToken, newTracker)
	checkCode(t, code, http.StatusForbidden, resp)

	code, resp = env.do(t, http.MethodPost, "/api/activity-logs", facToken, newTracker)
	checkCode(t, code, http.StatusCreated, resp)
	var trk allocation.ActivityTracker
	decodeData(t, resp.Data, &trk)
	if trk.SubmittedAt == nil {
		t.Error("a Done status on creation should stamp submittedAt")
	}
	if trk.FormativeOneGrading != allocation.StatusNotStarted {
		t.Errorf("unset statuses should default to %q; got %q", allocation.StatusNotStarted, trk.FormativeOneGrading)
	}

	// one log per offering and week
	code, resp = env.do(t, http.MethodPost, "/api/activity-logs", facToken, newTracker)
	checkCode(t, code, http.StatusConflict, resp)

	// unknown offering
	code, resp = env.do(t, http.MethodPost, "/api/activity-logs", facToken, map[string]interface{}{
		"allocationId": 999, "weekNumber": 2,
	})
	checkCode(t, code, http.StatusBadRequest, resp)

	// week out of range
	code, resp = env.do(t, http.MethodPost, "/api/activity-logs", facToken, map[string]interface{}{
		"allocationId": off.ID, "weekNumber": 53,
	})
	checkCode(t, code, http.StatusBadRequest, resp)

	// owner sees their log; other facilitators see none
	code, resp = env.do(t, http.MethodGet, "/api/activity-logs", facToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	var trks []allocation.ActivityTracker
	decodeData(t, resp.Data, &trks)
	if len(trks) != 1 {
		t.Errorf("owner sees %d logs; want 1", len(trks))
	}
	code, resp = env.do(t, http.MethodGet, "/api/activity-logs", otherToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	decodeData(t, resp.Data, &trks)
	if len(trks) != 0 {
		t.Errorf("other facilitator sees %d logs; want 0", len(trks))
	}

	// path-param listings
	code, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/activity-logs/facilitator/%d", fac.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	decodeData(t, resp.Data, &trks)
	if len(trks) != 1 {
		t.Errorf("facilitator listing has %d logs; want 1", len(trks))
	}
	code, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/activity-logs/course/%d", off.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	decodeData(t, resp.Data, &trks)
	if len(trks) != 1 {
		t.Errorf("course listing has %d logs; want 1", len(trks))
	}

	// reverting a task does not clear the submission timestamp
	code, resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/activity-logs/%d", trk.ID), facToken,
		map[string]interface{}{"summativeGrading": allocation.StatusPending})
	checkCode(t, code, http.StatusOK, resp)
	var updated allocation.ActivityTracker
	decodeData(t, resp.Data, &updated)
	if updated.SubmittedAt == nil {
		t.Error("submittedAt must never be cleared")
	}
	if !updated.SubmittedAt.Equal(*trk.SubmittedAt) {
		t.Errorf("submittedAt changed from %v to %v", trk.SubmittedAt, updated.SubmittedAt)
	}

	// only managers may delete logs
	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/activity-logs/%d", trk.ID), facToken, nil)
	checkCode(t, code, http.StatusForbidden, resp)
	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/activity-logs/%d", trk.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
}

func Test_allocationAPI_offeringDeleteCascadesTrackers(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")
	fac, facToken := env.createFacilitator(t, "fac@test.cd", "EMP001")
	fx := env.createAcademics(t)

	ctx := context.Background()
	off, err := env.allocationSvc.CreateOffering(ctx, allocation.NewCourseOffering{
		ModuleID:      fx.module.ID,
		ClassID:       fx.class.ID,
		CohortID:      fx.cohort.ID,
		FacilitatorID: &fac.ID,
		ModeID:        fx.mode.ID,
		IntakePeriod:  allocation.IntakeFullTrimester,
	})
	if err != nil {
		t.Fatalf("creating offering: %v", err)
	}
	for week := 1; week <= 3; week++ {
		code, resp := env.do(t, http.MethodPost, "/api/activity-logs", facToken, map[string]interface{}{
			"allocationId": off.ID, "weekNumber": week,
		})
		checkCode(t, code, http.StatusCreated, resp)
	}

	code, resp := env.do(t, http.MethodDelete, fmt.Sprintf("/api/course-offerings/%d", off.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)

	code, resp = env.do(t, http.MethodGet, "/api/activity-logs", mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	var trks []allocation.ActivityTracker
	decodeData(t, resp.Data, &trks)
	if len(trks) != 0 {
		t.Errorf("%d logs survived the offering delete; want 0", len(trks))
	}
}
