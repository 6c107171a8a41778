package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/allocation"
)

var (
	offeringFilters = []string{"moduleId", "classId", "cohortId", core.FacilitatorIDField, "modeId", "intakePeriod", "isActive"}
	trackerFilters  = []string{"allocationId", "weekNumber", core.FacilitatorIDField}
)

type allocationAPI struct {
	svc *allocation.Service
}

func registerAllocationAPI(g *echo.Group, jwt, account echo.MiddlewareFunc, svc *allocation.Service) {
	api := allocationAPI{svc: svc}
	manager := managerMiddleware()

	og := g.Group("/course-offerings", jwt, account)
	og.GET("", api.queryOfferings)
	og.GET("/:id", api.retrieveOffering)
	og.POST("", api.createOffering, manager)
	og.PUT("/:id", api.updateOffering, manager)
	og.DELETE("/:id", api.destroyOffering, manager)

	tg := g.Group("/activity-logs", jwt, account)
	tg.GET("", api.queryTrackers)
	tg.GET("/facilitator/:facilitatorId", api.queryTrackersByFacilitator)
	tg.GET("/course/:allocationId", api.queryTrackersByOffering)
	tg.GET("/:id", api.retrieveTracker)
	tg.POST("", api.createTracker)
	tg.PUT("/:id", api.updateTracker)
	tg.DELETE("/:id", api.destroyTracker, manager)
}

// Course offering handlers

func (api *allocationAPI) createOffering(ctx echo.Context) error {
	var data allocation.NewCourseOffering
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseOffering")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	off, err := api.svc.CreateOffering(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course offering")
	}
	return respond(ctx, http.StatusCreated, "course offering created successfully", off)
}

func (api *allocationAPI) queryOfferings(ctx echo.Context) error {
	acct, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	filter := bindFilter(ctx, offeringFilters)
	page := bindPagination(ctx)
	var ord Ordering
	ord.Bind(ctx)

	offs, count, err := api.svc.QueryOfferings(ctx.Request().Context(), acct.Caller(), filter, page, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying course offerings")
	}
	return respondPage(ctx, http.StatusOK, "course offerings retrieved successfully", offs, core.NewPaginationMeta(count, page))
}

func (api *allocationAPI) retrieveOffering(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	acct, err := getContextAccount(ctx)
	if err != nil {
		return err
	}

	off, err := api.svc.GetOffering(ctx.Request().Context(), acct.Caller(), id)
	if err != nil {
		return errors.Wrap(err, "finding course offering by ID")
	}
	return respond(ctx, http.StatusOK, "course offering retrieved successfully", off)
}

func (api *allocationAPI) updateOffering(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data allocation.UpdateCourseOffering
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourseOffering")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	off, err := api.svc.UpdateOffering(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating course offering")
	}
	return respond(ctx, http.StatusOK, "course offering updated successfully", off)
}

func (api *allocationAPI) destroyOffering(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteOffering(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting course offering")
	}
	return respond(ctx, http.StatusOK, "course offering deleted successfully", nil)
}

// Activity tracker handlers

func (api *allocationAPI) createTracker(ctx echo.Context) error {
	var data allocation.NewActivityTracker
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivityTracker")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	acct, err := getContextAccount(ctx)
	if err != nil {
		return err
	}

	trk, err := api.svc.CreateTracker(ctx.Request().Context(), acct.Caller(), data)
	if err != nil {
		return errors.Wrap(err, "creating activity log")
	}
	return respond(ctx, http.StatusCreated, "activity log created successfully", trk)
}

func (api *allocationAPI) queryTrackers(ctx echo.Context) error {
	return api.listTrackers(ctx, bindFilter(ctx, trackerFilters))
}

// queryTrackersByFacilitator is a path-param alias for ?facilitatorId=; a
// facilitator asking for another facilitator's logs simply gets zero rows.
func (api *allocationAPI) queryTrackersByFacilitator(ctx echo.Context) error {
	id, err := pathID(ctx, "facilitatorId")
	if err != nil {
		return err
	}
	filter := bindFilter(ctx, trackerFilters)
	filter[core.FacilitatorIDField] = id
	return api.listTrackers(ctx, filter)
}

func (api *allocationAPI) queryTrackersByOffering(ctx echo.Context) error {
	id, err := pathID(ctx, "allocationId")
	if err != nil {
		return err
	}
	filter := bindFilter(ctx, trackerFilters)
	filter["allocationId"] = id
	return api.listTrackers(ctx, filter)
}

func (api *allocationAPI) listTrackers(ctx echo.Context, filter core.Filter) error {
	acct, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	page := bindPagination(ctx)
	var ord Ordering
	ord.Bind(ctx)

	trks, count, err := api.svc.QueryTrackers(ctx.Request().Context(), acct.Caller(), filter, page, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying activity logs")
	}
	return respondPage(ctx, http.StatusOK, "activity logs retrieved successfully", trks, core.NewPaginationMeta(count, page))
}

func (api *allocationAPI) retrieveTracker(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	acct, err := getContextAccount(ctx)
	if err != nil {
		return err
	}

	trk, err := api.svc.GetTracker(ctx.Request().Context(), acct.Caller(), id)
	if err != nil {
		return errors.Wrap(err, "finding activity log by ID")
	}
	return respond(ctx, http.StatusOK, "activity log retrieved successfully", trk)
}

func (api *allocationAPI) updateTracker(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data allocation.UpdateActivityTracker
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivityTracker")
	}
	if err = data.Validate(); err != nil {
		return err
	}
	acct, err := getContextAccount(ctx)
	if err != nil {
		return err
	}

	trk, err := api.svc.UpdateTracker(ctx.Request().Context(), acct.Caller(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating activity log")
	}
	return respond(ctx, http.StatusOK, "activity log updated successfully", trk)
}

func (api *allocationAPI) destroyTracker(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	acct, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteTracker(ctx.Request().Context(), acct.Caller(), id); err != nil {
		return errors.Wrap(err, "deleting activity log")
	}
	return respond(ctx, http.StatusOK, "activity log deleted successfully", nil)
}
