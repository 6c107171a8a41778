package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/trezcool/kozi/api/echo"
	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/allocation"
	"github.com/trezcool/kozi/core/staff"
	"github.com/trezcool/kozi/core/stats"
	emailsvc "github.com/trezcool/kozi/services/email"
	logsvc "github.com/trezcool/kozi/services/logger"
	inmemdb "github.com/trezcool/kozi/storage/database/inmem"
)

type testEnv struct {
	app  Server
	conf *core.Config

	staffSvc      *staff.Service
	academicsSvc  *academics.Service
	allocationSvc *allocation.Service
}

func testConfig() *core.Config {
	conf := &core.Config{
		TestMode:        true,
		Env:             "TEST",
		AppName:         "Kozi",
		SecretKey:       []byte("=57s3cr3t=f0r=t3st1ng=0nly=dz&uox"),
		FrontendBaseURL: "http://localhost:3000",

		DefaultFromEmail:          mail.Address{Name: "Kozi", Address: "noreply@test.cd"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	conf.Server.AllowedOrigins = []string{"*"}
	return conf
}

func setup(t *testing.T, checkDB ...func(context.Context) error) *testEnv {
	t.Helper()

	conf := testConfig()
	db := inmemdb.NewDB()

	staffRepo := inmemdb.NewStaffRepository(db)
	academicsRepo := inmemdb.NewAcademicsRepository(db)
	allocationRepo := inmemdb.NewAllocationRepository(db)
	statsRepo := inmemdb.NewStatsRepository(db)
	refs := inmemdb.NewReferenceChecker(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	allocationSvc := allocation.NewService(allocationRepo, refs)
	staffSvc := staff.NewService(conf, staffRepo, allocationSvc, mailSvc)
	academicsSvc := academics.NewService(academicsRepo)
	statsSvc := stats.NewService(statsRepo)

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	opts := &Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logger,
		StaffSvc:       staffSvc,
		AcademicsSvc:   academicsSvc,
		AllocationSvc:  allocationSvc,
		StatsSvc:       statsSvc,
		SignalShutdown: func() {},
	}
	if len(checkDB) > 0 {
		opts.CheckDB = checkDB[0]
	}
	app := NewServer(opts)

	return &testEnv{
		app:           app,
		conf:          conf,
		staffSvc:      staffSvc,
		academicsSvc:  academicsSvc,
		allocationSvc: allocationSvc,
	}
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    *json.RawMessage  `json:"meta"`
	Errors  map[string]string `json:"errors"`
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.app.ServeHTTP(rec, req)

	var resp envelope
	if len(rec.Body.Bytes()) > 0 {
		require.NoErrorf(t, json.Unmarshal(rec.Body.Bytes(), &resp), "decoding response %q", rec.Body.String())
	}
	return rec.Code, resp
}

func decodeData(t *testing.T, data json.RawMessage, dst interface{}) {
	t.Helper()
	require.NoErrorf(t, json.Unmarshal(data, dst), "decoding data %q", string(data))
}

func (env *testEnv) createManager(t *testing.T, email string) (staff.Manager, string) {
	t.Helper()
	mgr, err := env.staffSvc.CreateManager(context.Background(), staff.NewManager{
		FirstName: "Main",
		LastName:  "Manager",
		Email:     email,
		Password:  "s3cr3t!",
	})
	if err != nil {
		t.Fatalf("creating manager: %v", err)
	}
	return mgr, env.getToken(t, staff.Account{Role: core.RoleManager, Manager: &mgr})
}

func (env *testEnv) createFacilitator(t *testing.T, email, employeeID string) (staff.Facilitator, string) {
	t.Helper()
	fac, err := env.staffSvc.CreateFacilitator(context.Background(), staff.NewFacilitator{
		FirstName:  "Fac",
		LastName:   "Staff",
		Email:      email,
		EmployeeID: employeeID,
		Department: "Computing",
		Password:   "s3cr3t!",
	})
	if err != nil {
		t.Fatalf("creating facilitator: %v", err)
	}
	return fac, env.getToken(t, staff.Account{Role: core.RoleFacilitator, Facilitator: &fac})
}

func (env *testEnv) getToken(t *testing.T, acct staff.Account) string {
	t.Helper()
	token, err := GenerateToken(env.conf, GetAccountClaims(env.conf, acct))
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

func checkCode(t *testing.T, got, want int, resp envelope) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d; want %d (message: %q)", got, want, resp.Message)
	}
}
