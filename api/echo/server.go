package echoapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
	"github.com/trezcool/kozi/core/allocation"
	"github.com/trezcool/kozi/core/staff"
	"github.com/trezcool/kozi/core/stats"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Conf   *core.Config
		Logger core.Logger

		StaffSvc      *staff.Service
		AcademicsSvc  *academics.Service
		AllocationSvc *allocation.Service
		StatsSvc      *stats.Service

		// SignalShutdown gracefully shuts the app down when an integrity
		// issue is caught by the error handler.
		SignalShutdown func()

		// CheckDB reports database connectivity for the health endpoint.
		// A nil check only reports the service itself as up.
		CheckDB func(context.Context) error
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: conf.Server.AllowedOrigins,
	}))
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	api.GET("/health", s.health)

	jwtConf := appJWTConfig(conf)
	jwt := middleware.JWTWithConfig(jwtConf)
	account := accountMiddleware(s.opts.StaffSvc)

	registerAuthAPI(api, jwt, account, conf, s.opts.StaffSvc)
	registerStaffAPI(api, jwt, account, s.opts.StaffSvc)
	registerAcademicsAPI(api, jwt, account, s.opts.AcademicsSvc)
	registerAllocationAPI(api, jwt, account, s.opts.AllocationSvc)
	registerStatsAPI(api, jwt, account, s.opts.StatsSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Kozi API!")
}

func (s *server) health(ctx echo.Context) error {
	if s.opts.CheckDB != nil {
		if err := s.opts.CheckDB(ctx.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database not ready")
		}
	}
	return respond(ctx, http.StatusOK, "ok", nil)
}
