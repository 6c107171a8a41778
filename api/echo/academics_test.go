package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/trezcool/kozi/core/academics"
)

func Test_academicsAPI_moduleCRUD(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")
	_, facToken := env.createFacilitator(t, "fac@test.cd", "EMP001")

	newModule := map[string]interface{}{
		"code": "CS101", "name": "Intro to Computer Science", "credits": 10,
	}

	// writes are manager-only, reads are open to all staff
	code, resp := env.do(t, http.MethodPost, "/api/modules", facToken, newModule)
	checkCode(t, code, http.StatusForbidden, resp)

	code, resp = env.do(t, http.MethodPost, "/api/modules", mgrToken, newModule)
	checkCode(t, code, http.StatusCreated, resp)
	var mod academics.Module
	decodeData(t, resp.Data, &mod)
	if mod.Level != "undergraduate" {
		t.Errorf("level should default to undergraduate; got %q", mod.Level)
	}

	code, resp = env.do(t, http.MethodPost, "/api/modules", mgrToken, newModule)
	checkCode(t, code, http.StatusConflict, resp)

	code, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/modules/%d", mod.ID), facToken, nil)
	checkCode(t, code, http.StatusOK, resp)

	// partial update keeps untouched fields
	code, resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/modules/%d", mod.ID), mgrToken,
		map[string]interface{}{"credits": 15})
	checkCode(t, code, http.StatusOK, resp)
	decodeData(t, resp.Data, &mod)
	if mod.Credits != 15 || mod.Code != "CS101" {
		t.Errorf("partial update mangled the module: %+v", mod)
	}

	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/modules/%d", mod.ID), facToken, nil)
	checkCode(t, code, http.StatusForbidden, resp)
	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/modules/%d", mod.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	code, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/modules/%d", mod.ID), mgrToken, nil)
	checkCode(t, code, http.StatusNotFound, resp)
}

func Test_academicsAPI_studentsAndCohorts(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")

	code, resp := env.do(t, http.MethodPost, "/api/cohorts", mgrToken, map[string]interface{}{
		"name": "Cohort 1", "year": 2026, "program": "BSE",
	})
	checkCode(t, code, http.StatusCreated, resp)
	var cohort academics.Cohort
	decodeData(t, resp.Data, &cohort)

	// a student needs an existing cohort
	code, resp = env.do(t, http.MethodPost, "/api/students", mgrToken, map[string]interface{}{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@test.cd", "studentId": "S001", "cohortId": 999,
	})
	checkCode(t, code, http.StatusBadRequest, resp)

	code, resp = env.do(t, http.MethodPost, "/api/students", mgrToken, map[string]interface{}{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@test.cd", "studentId": "S001", "cohortId": cohort.ID,
	})
	checkCode(t, code, http.StatusCreated, resp)
	var std academics.Student
	decodeData(t, resp.Data, &std)
	if std.EnrollmentDate == nil {
		t.Error("enrollmentDate should default to now")
	}

	// duplicate email and studentId are both rejected
	code, resp = env.do(t, http.MethodPost, "/api/students", mgrToken, map[string]interface{}{
		"firstName": "John", "lastName": "Doe", "email": "jane@test.cd", "studentId": "S002", "cohortId": cohort.ID,
	})
	checkCode(t, code, http.StatusConflict, resp)
	code, resp = env.do(t, http.MethodPost, "/api/students", mgrToken, map[string]interface{}{
		"firstName": "John", "lastName": "Doe", "email": "john@test.cd", "studentId": "S001", "cohortId": cohort.ID,
	})
	checkCode(t, code, http.StatusConflict, resp)

	// the cohort reports its active student count
	code, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/cohorts/%d", cohort.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	decodeData(t, resp.Data, &cohort)
	if cohort.StudentCount != 1 {
		t.Errorf("studentCount = %d; want 1", cohort.StudentCount)
	}

	// and cannot be deleted while they are enrolled
	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/cohorts/%d", cohort.ID), mgrToken, nil)
	checkCode(t, code, http.StatusBadRequest, resp)

	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/students/%d", std.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/cohorts/%d", cohort.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
}

func Test_academicsAPI_filtering(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")

	for i, code := range []string{"CS101", "CS102", "MA101"} {
		level := "undergraduate"
		if i == 2 {
			level = "postgraduate"
		}
		c, resp := env.do(t, http.MethodPost, "/api/modules", mgrToken, map[string]interface{}{
			"code": code, "name": "Module " + code, "credits": 10, "level": level,
		})
		checkCode(t, c, http.StatusCreated, resp)
	}

	code, resp := env.do(t, http.MethodGet, "/api/modules?level=postgraduate", mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	var mods []academics.Module
	decodeData(t, resp.Data, &mods)
	if len(mods) != 1 || mods[0].Code != "MA101" {
		t.Errorf("level filter returned %+v", mods)
	}

	// empty and undefined filter values are dropped, not matched
	code, resp = env.do(t, http.MethodGet, "/api/modules?level=&code=undefined", mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	decodeData(t, resp.Data, &mods)
	if len(mods) != 3 {
		t.Errorf("blank filters should be ignored; got %d rows", len(mods))
	}

	// unknown filter keys are ignored
	code, resp = env.do(t, http.MethodGet, "/api/modules?bogus=1", mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
	decodeData(t, resp.Data, &mods)
	if len(mods) != 3 {
		t.Errorf("unknown filter keys should be ignored; got %d rows", len(mods))
	}
}
