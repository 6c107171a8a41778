package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/trezcool/kozi/api/echo"
	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/allocation"
	"github.com/trezcool/kozi/core/staff"
	"github.com/trezcool/kozi/core/stats"
	emailsvc "github.com/trezcool/kozi/services/email"
	logsvc "github.com/trezcool/kozi/services/logger"
	"github.com/trezcool/kozi/storage/database"
	"github.com/trezcool/kozi/storage/database/gormdb"
	sqlxrepos "github.com/trezcool/kozi/storage/database/sqlx"
)

// build is set via ldflags on release.
var build = "develop"

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig(build)

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("getting database handle: %v", err), err)
	}
	defer func() {
		if err = sqlDB.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()
	if err = database.Migrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	reportDB, err := database.OpenSQLX(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening reporting database: %v", err), err)
	}
	defer func() {
		if err = reportDB.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing reporting database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	allocationSvc := allocation.NewService(gormdb.NewAllocationRepository(db), gormdb.NewReferenceChecker(db))
	staffSvc := staff.NewService(conf, gormdb.NewStaffRepository(db), allocationSvc, mailSvc)
	academicsSvc := academics.NewService(gormdb.NewAcademicsRepository(db))
	statsSvc := stats.NewService(sqlxrepos.NewStatsRepository(reportDB))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Address(),
		Conf:           conf,
		Logger:         logger,
		StaffSvc:       staffSvc,
		AcademicsSvc:   academicsSvc,
		AllocationSvc:  allocationSvc,
		StatsSvc:       statsSvc,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		CheckDB:        func(ctx context.Context) error { return database.StatusCheck(ctx, reportDB) },
	})

	go app.Start()
	logger.Info(fmt.Sprintf("API listening on %s", conf.Address()))

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err = app.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}
