package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/allocation"
	"github.com/trezcool/kozi/core/stats"
)

func Test_statsAPI_dashboard(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")
	fac, facToken := env.createFacilitator(t, "fac@test.cd", "EMP001")
	fx := env.createAcademics(t)

	off, err := env.allocationSvc.CreateOffering(context.Background(), allocation.NewCourseOffering{
		ModuleID:      fx.module.ID,
		ClassID:       fx.class.ID,
		CohortID:      fx.cohort.ID,
		FacilitatorID: &fac.ID,
		ModeID:        fx.mode.ID,
		IntakePeriod:  allocation.IntakeHalfTrimesterTwo,
	})
	if err != nil {
		t.Fatalf("creating offering: %v", err)
	}
	facCaller := core.Caller{ID: fac.ID, Email: fac.Email, Role: core.RoleFacilitator}
	_, err = env.allocationSvc.CreateTracker(context.Background(), facCaller, allocation.NewActivityTracker{
		AllocationID:     off.ID,
		WeekNumber:       1,
		SummativeGrading: allocation.StatusDone,
	})
	if err != nil {
		t.Fatalf("creating tracker: %v", err)
	}

	// managers only
	code, resp := env.do(t, http.MethodGet, "/api/stats/dashboard", facToken, nil)
	checkCode(t, code, http.StatusForbidden, resp)

	code, resp = env.do(t, http.MethodGet, "/api/stats/dashboard", mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)

	var dash stats.Dashboard
	decodeData(t, resp.Data, &dash)
	if dash.Overview.Managers != 1 || dash.Overview.Facilitators != 1 {
		t.Errorf("unexpected staff counts: %+v", dash.Overview)
	}
	if dash.Overview.CourseOfferings != 1 || dash.Overview.ActivityLogs != 1 || dash.Overview.SubmittedLogs != 1 {
		t.Errorf("unexpected allocation counts: %+v", dash.Overview)
	}
	if len(dash.WeeklySubmissions) != 1 || dash.WeeklySubmissions[0].WeekNumber != 1 {
		t.Errorf("unexpected weekly submissions: %+v", dash.WeeklySubmissions)
	}
	if len(dash.FacilitatorLoads) != 1 || dash.FacilitatorLoads[0].ActiveAssignments != 1 {
		t.Errorf("unexpected facilitator loads: %+v", dash.FacilitatorLoads)
	}
}
