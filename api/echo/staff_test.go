package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/staff"
	emailsvc "github.com/trezcool/kozi/services/email"
)

func Test_authAPI_login(t *testing.T) {
	env := setup(t)
	mgr, _ := env.createManager(t, "admin@test.cd")
	fac, _ := env.createFacilitator(t, "fac@test.cd", "EMP001")

	tests := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
		wantRole string
	}{
		{name: "missing fields", body: map[string]interface{}{}, wantCode: http.StatusBadRequest},
		{
			name:     "unknown email",
			body:     map[string]interface{}{"email": "nobody@test.cd", "password": "s3cr3t!"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "wrong password",
			body:     map[string]interface{}{"email": mgr.Email, "password": "nope"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "manager login",
			body:     map[string]interface{}{"email": mgr.Email, "password": "s3cr3t!"},
			wantCode: http.StatusOK,
			wantRole: core.RoleManager,
		},
		{
			name:     "facilitator login",
			body:     map[string]interface{}{"email": fac.Email, "password": "s3cr3t!"},
			wantCode: http.StatusOK,
			wantRole: core.RoleFacilitator,
		},
		{
			name:     "email is case-insensitive",
			body:     map[string]interface{}{"email": "ADMIN@Test.CD", "password": "s3cr3t!"},
			wantCode: http.StatusOK,
			wantRole: core.RoleManager,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := env.do(t, http.MethodPost, "/api/auth/login", "", tt.body)
			checkCode(t, code, tt.wantCode, resp)
			if tt.wantRole == "" {
				return
			}
			var data struct {
				Token string `json:"token"`
				Role  string `json:"role"`
			}
			decodeData(t, resp.Data, &data)
			if data.Token == "" {
				t.Error("login response is missing the token")
			}
			if data.Role != tt.wantRole {
				t.Errorf("role = %q; want %q", data.Role, tt.wantRole)
			}
		})
	}
}

func Test_authAPI_loginDeactivated(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")
	fac, _ := env.createFacilitator(t, "fac@test.cd", "EMP001")

	inactive := false
	code, resp := env.do(t, http.MethodPut, fmt.Sprintf("/api/facilitators/%d", fac.ID), mgrToken,
		staff.UpdateFacilitator{IsActive: &inactive})
	checkCode(t, code, http.StatusOK, resp)

	code, resp = env.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]interface{}{"email": fac.Email, "password": "s3cr3t!"})
	checkCode(t, code, http.StatusUnauthorized, resp)

	// deactivated accounts lose access even with a live token
	facToken := env.getToken(t, staff.Account{Role: core.RoleFacilitator, Facilitator: &fac})
	code, resp = env.do(t, http.MethodGet, "/api/course-offerings", facToken, nil)
	checkCode(t, code, http.StatusUnauthorized, resp)
}

func Test_authAPI_register(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")
	_, facToken := env.createFacilitator(t, "fac@test.cd", "EMP001")

	newMgr := map[string]interface{}{
		"firstName": "New", "lastName": "Manager", "email": "new@test.cd", "password": "Str0ng-P@ss1",
	}
	newFac := map[string]interface{}{
		"firstName": "New", "lastName": "Fac", "email": "newfac@test.cd", "employeeId": "EMP002", "password": "Str0ng-P@ss1",
	}

	tests := []struct {
		name     string
		path     string
		token    string
		body     interface{}
		wantCode int
	}{
		{name: "auth required", path: "/api/auth/register/manager", body: newMgr, wantCode: http.StatusUnauthorized},
		{name: "manager required", path: "/api/auth/register/manager", token: facToken, body: newMgr, wantCode: http.StatusForbidden},
		{name: "register manager", path: "/api/auth/register/manager", token: mgrToken, body: newMgr, wantCode: http.StatusCreated},
		{name: "duplicate email", path: "/api/auth/register/manager", token: mgrToken, body: newMgr, wantCode: http.StatusConflict},
		{name: "register facilitator", path: "/api/auth/register/facilitator", token: mgrToken, body: newFac, wantCode: http.StatusCreated},
		{
			name: "duplicate employee ID", path: "/api/auth/register/facilitator", token: mgrToken,
			body: map[string]interface{}{
				"firstName": "Other", "lastName": "Fac", "email": "other@test.cd", "employeeId": "EMP002", "password": "Str0ng-P@ss1",
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "email used by a facilitator", path: "/api/auth/register/manager", token: mgrToken,
			body: map[string]interface{}{
				"firstName": "Clash", "lastName": "Manager", "email": "fac@test.cd", "password": "Str0ng-P@ss1",
			},
			wantCode: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := env.do(t, http.MethodPost, tt.path, tt.token, tt.body)
			checkCode(t, code, tt.wantCode, resp)
		})
	}
}

func Test_staffAPI_managerSelfDelete(t *testing.T) {
	env := setup(t)
	mgr, mgrToken := env.createManager(t, "admin@test.cd")
	other, _ := env.createManager(t, "other@test.cd")

	code, resp := env.do(t, http.MethodDelete, fmt.Sprintf("/api/managers/%d", mgr.ID), mgrToken, nil)
	checkCode(t, code, http.StatusBadRequest, resp)

	code, resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/managers/%d", other.ID), mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)
}

func Test_staffAPI_facilitatorListPagination(t *testing.T) {
	env := setup(t)
	_, mgrToken := env.createManager(t, "admin@test.cd")
	var facToken string
	for i := 1; i <= 15; i++ {
		_, token := env.createFacilitator(t, fmt.Sprintf("fac%02d@test.cd", i), fmt.Sprintf("EMP%03d", i))
		if facToken == "" {
			facToken = token
		}
	}

	// the roster is reserved for managers
	code, resp := env.do(t, http.MethodGet, "/api/facilitators", facToken, nil)
	checkCode(t, code, http.StatusForbidden, resp)

	code, resp = env.do(t, http.MethodGet, "/api/facilitators?page=2&limit=10", mgrToken, nil)
	checkCode(t, code, http.StatusOK, resp)

	var facs []staff.Facilitator
	decodeData(t, resp.Data, &facs)
	if len(facs) != 5 {
		t.Errorf("page 2 has %d rows; want 5", len(facs))
	}

	var meta core.PaginationMeta
	if resp.Meta == nil {
		t.Fatal("list response is missing the meta block")
	}
	decodeData(t, *resp.Meta, &meta)
	if meta.TotalItems != 15 || meta.TotalPages != 2 || meta.HasNextPage || !meta.HasPrevPage {
		t.Errorf("unexpected pagination meta: %+v", meta)
	}
}

func Test_authAPI_passwordReset(t *testing.T) {
	env := setup(t)
	fac, _ := env.createFacilitator(t, "fac@test.cd", "EMP001")

	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	code, resp := env.do(t, http.MethodPost, "/api/auth/password-reset", "",
		map[string]interface{}{"email": fac.Email})
	checkCode(t, code, http.StatusOK, resp)

	// unknown emails get the same answer
	code, resp = env.do(t, http.MethodPost, "/api/auth/password-reset", "",
		map[string]interface{}{"email": "nobody@test.cd"})
	checkCode(t, code, http.StatusOK, resp)

	if n := len(emailsvc.SentMessages); n != 1 {
		t.Fatalf("sent %d reset mails; want 1", n)
	}

	code, resp = env.do(t, http.MethodPost, "/api/auth/password-reset-confirm", "",
		map[string]interface{}{"uid": "bogus", "token": "bogus", "password": "N3w-S3cr3t!"})
	checkCode(t, code, http.StatusBadRequest, resp)
}
