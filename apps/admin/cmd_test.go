package main

import (
	"context"
	"net/mail"
	"testing"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/allocation"
	"github.com/trezcool/kozi/core/staff"
	emailsvc "github.com/trezcool/kozi/services/email"
	inmemdb "github.com/trezcool/kozi/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	db := inmemdb.NewDB()
	conf := &core.Config{AppName: "Kozi", Env: "TEST", TestMode: true}

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cr3t!"), nil }
	createDBFunc = func(conf *core.Config) error { return nil }
	migrateFunc = func(conf *core.Config) error { return nil }
	seedFunc = func(conf *core.Config) error { return nil }

	return &commandLine{conf: conf, repo: inmemdb.NewStaffRepository(db)}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no subcommand", args: []string{}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "createdb", args: []string{"createdb"}},
		{name: "migrate", args: []string{"migrate"}},
		{name: "seed", args: []string{"seed"}},
		{name: "addmanager: missing flags", args: []string{"addmanager"}, wantErr: errHelp},
		{name: "addmanager", args: []string{"addmanager", "-email", "admin@test.cd", "-first", "Main", "-last", "Manager"}},
		{name: "resetpassword: missing email", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "resetpassword", args: []string{"resetpassword", "-email", "admin@test.cd"}},
		{name: "resetpassword: unknown email", args: []string{"resetpassword", "-email", "nobody@test.cd"}, wantErr: core.ErrNotFound},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_addManagerIsIdempotent(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	if err := cli.addManager("admin@test.cd", "Main", "Manager", "s3cr3t!"); err != nil {
		t.Fatalf("addManager() error = %v", err)
	}
	mgr, err := cli.repo.GetManagerByEmail(ctx, "admin@test.cd")
	if err != nil {
		t.Fatalf("GetManagerByEmail() error = %v", err)
	}
	if err = mgr.CheckPassword("s3cr3t!"); err != nil {
		t.Errorf("CheckPassword() error = %v", err)
	}

	// second run updates the same account
	if err = cli.addManager("ADMIN@test.cd", "Renamed", "Manager", "n3w-s3cr3t!"); err != nil {
		t.Fatalf("addManager() error = %v", err)
	}
	updated, err := cli.repo.GetManagerByEmail(ctx, "admin@test.cd")
	if err != nil {
		t.Fatalf("GetManagerByEmail() error = %v", err)
	}
	if updated.ID != mgr.ID {
		t.Errorf("a duplicate manager was created: %d != %d", updated.ID, mgr.ID)
	}
	if updated.FirstName != "Renamed" {
		t.Errorf("FirstName = %q; want %q", updated.FirstName, "Renamed")
	}
	if err = updated.CheckPassword("n3w-s3cr3t!"); err != nil {
		t.Errorf("CheckPassword() error = %v", err)
	}
}

func Test_seedDemoData(t *testing.T) {
	db := inmemdb.NewDB()
	conf := &core.Config{
		AppName:          "Kozi",
		Env:              "TEST",
		TestMode:         true,
		DefaultFromEmail: mail.Address{Name: "Kozi", Address: "noreply@test.cd"},
	}

	staffRepo := inmemdb.NewStaffRepository(db)
	allocationSvc := allocation.NewService(inmemdb.NewAllocationRepository(db), inmemdb.NewReferenceChecker(db))
	svcs := &seedServices{
		staff:      staff.NewService(conf, staffRepo, allocationSvc, emailsvc.NewConsoleServiceMock(conf)),
		academics:  academics.NewService(inmemdb.NewAcademicsRepository(db)),
		allocation: allocationSvc,
	}
	ctx := context.Background()

	if err := seedDemoData(ctx, svcs); err != nil {
		t.Fatalf("seedDemoData() error = %v", err)
	}

	mgr, err := staffRepo.GetManagerByEmail(ctx, "admin@kozi.cd")
	if err != nil {
		t.Fatalf("GetManagerByEmail() error = %v", err)
	}
	caller := core.Caller{ID: mgr.ID, Email: mgr.Email, Role: core.RoleManager}

	if _, count, err := svcs.academics.QueryModules(ctx, nil, core.ParsePagination("", "")); err != nil || count != 3 {
		t.Errorf("QueryModules() count = %d, err = %v; want 3 modules", count, err)
	}
	if _, count, err := svcs.allocation.QueryOfferings(ctx, caller, nil, core.ParsePagination("", "")); err != nil || count != 3 {
		t.Errorf("QueryOfferings() count = %d, err = %v; want 3 offerings", count, err)
	}
	if _, count, err := svcs.allocation.QueryTrackers(ctx, caller, nil, core.ParsePagination("", "")); err != nil || count != 2 {
		t.Errorf("QueryTrackers() count = %d, err = %v; want 2 trackers", count, err)
	}

	// a second run must not duplicate anything
	if err := seedDemoData(ctx, svcs); err == nil {
		t.Error("seedDemoData() re-run succeeded; want an already-seeded error")
	}
}
