package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core/stats"
)

type statsAPI struct {
	svc *stats.Service
}

func registerStatsAPI(g *echo.Group, jwt, account echo.MiddlewareFunc, svc *stats.Service) {
	api := statsAPI{svc: svc}

	sg := g.Group("/stats", jwt, account, managerMiddleware())
	sg.GET("/dashboard", api.dashboard)
}

func (api *statsAPI) dashboard(ctx echo.Context) error {
	dash, err := api.svc.GetDashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building dashboard stats")
	}
	return respond(ctx, http.StatusOK, "dashboard stats retrieved successfully", dash)
}
