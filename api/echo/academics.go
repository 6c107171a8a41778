package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/academics"
)

var (
	moduleFilters  = []string{"code", "name", "level", "credits", "isActive"}
	classFilters   = []string{"code", "trimester", "year", "isActive"}
	cohortFilters  = []string{"name", "year", "program", "isActive"}
	studentFilters = []string{"email", "studentId", "cohortId", "isActive"}
	modeFilters    = []string{"name", "isActive"}
)

type academicsAPI struct {
	svc *academics.Service
}

func registerAcademicsAPI(g *echo.Group, jwt, account echo.MiddlewareFunc, svc *academics.Service) {
	api := academicsAPI{svc: svc}
	manager := managerMiddleware()

	mg := g.Group("/modules", jwt, account)
	mg.GET("", api.queryModules)
	mg.GET("/:id", api.retrieveModule)
	mg.POST("", api.createModule, manager)
	mg.PUT("/:id", api.updateModule, manager)
	mg.DELETE("/:id", api.destroyModule, manager)

	cg := g.Group("/classes", jwt, account)
	cg.GET("", api.queryClasses)
	cg.GET("/:id", api.retrieveClass)
	cg.POST("", api.createClass, manager)
	cg.PUT("/:id", api.updateClass, manager)
	cg.DELETE("/:id", api.destroyClass, manager)

	hg := g.Group("/cohorts", jwt, account)
	hg.GET("", api.queryCohorts)
	hg.GET("/:id", api.retrieveCohort)
	hg.POST("", api.createCohort, manager)
	hg.PUT("/:id", api.updateCohort, manager)
	hg.DELETE("/:id", api.destroyCohort, manager)

	sg := g.Group("/students", jwt, account)
	sg.GET("", api.queryStudents)
	sg.GET("/:id", api.retrieveStudent)
	sg.POST("", api.createStudent, manager)
	sg.PUT("/:id", api.updateStudent, manager)
	sg.DELETE("/:id", api.destroyStudent, manager)

	og := g.Group("/modes", jwt, account)
	og.GET("", api.queryModes)
	og.GET("/:id", api.retrieveMode)
	og.POST("", api.createMode, manager)
	og.PUT("/:id", api.updateMode, manager)
	og.DELETE("/:id", api.destroyMode, manager)
}

// Module handlers

func (api *academicsAPI) createModule(ctx echo.Context) error {
	var data academics.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	mod, err := api.svc.CreateModule(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return respond(ctx, http.StatusCreated, "module created successfully", mod)
}

func (api *academicsAPI) queryModules(ctx echo.Context) error {
	filter := bindFilter(ctx, moduleFilters)
	page := bindPagination(ctx)
	var ord Ordering
	ord.Bind(ctx)

	mods, count, err := api.svc.QueryModules(ctx.Request().Context(), filter, page, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	return respondPage(ctx, http.StatusOK, "modules retrieved successfully", mods, core.NewPaginationMeta(count, page))
}

func (api *academicsAPI) retrieveModule(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	mod, err := api.svc.GetModule(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding module by ID")
	}
	return respond(ctx, http.StatusOK, "module retrieved successfully", mod)
}

func (api *academicsAPI) updateModule(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data academics.UpdateModule
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	mod, err := api.svc.UpdateModule(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	return respond(ctx, http.StatusOK, "module updated successfully", mod)
}

func (api *academicsAPI) destroyModule(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteModule(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting module")
	}
	return respond(ctx, http.StatusOK, "module deleted successfully", nil)
}

// Class handlers

func (api *academicsAPI) createClass(ctx echo.Context) error {
	var data academics.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return respond(ctx, http.StatusCreated, "class created successfully", cls)
}

func (api *academicsAPI) queryClasses(ctx echo.Context) error {
	filter := bindFilter(ctx, classFilters)
	page := bindPagination(ctx)
	var ord Ordering
	ord.Bind(ctx)

	classes, count, err := api.svc.QueryClasses(ctx.Request().Context(), filter, page, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return respondPage(ctx, http.StatusOK, "classes retrieved successfully", classes, core.NewPaginationMeta(count, page))
}

func (api *academicsAPI) retrieveClass(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	cls, err := api.svc.GetClass(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding class by ID")
	}
	return respond(ctx, http.StatusOK, "class retrieved successfully", cls)
}

func (api *academicsAPI) updateClass(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data academics.UpdateClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	cls, err := api.svc.UpdateClass(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return respond(ctx, http.StatusOK, "class updated successfully", cls)
}

func (api *academicsAPI) destroyClass(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClass(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return respond(ctx, http.StatusOK, "class deleted successfully", nil)
}

// Cohort handlers

func (api *academicsAPI) createCohort(ctx echo.Context) error {
	var data academics.NewCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCohort")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	coh, err := api.svc.CreateCohort(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating cohort")
	}
	return respond(ctx, http.StatusCreated, "cohort created successfully", coh)
}

func (api *academicsAPI) queryCohorts(ctx echo.Context) error {
	filter := bindFilter(ctx, cohortFilters)
	page := bindPagination(ctx)
	var ord Ordering
	ord.Bind(ctx)

	cohorts, count, err := api.svc.QueryCohorts(ctx.Request().Context(), filter, page, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying cohorts")
	}
	return respondPage(ctx, http.StatusOK, "cohorts retrieved successfully", cohorts, core.NewPaginationMeta(count, page))
}

func (api *academicsAPI) retrieveCohort(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	coh, err := api.svc.GetCohort(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding cohort by ID")
	}
	return respond(ctx, http.StatusOK, "cohort retrieved successfully", coh)
}

func (api *academicsAPI) updateCohort(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data academics.UpdateCohort
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCohort")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	coh, err := api.svc.UpdateCohort(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating cohort")
	}
	return respond(ctx, http.StatusOK, "cohort updated successfully", coh)
}

func (api *academicsAPI) destroyCohort(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteCohort(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting cohort")
	}
	return respond(ctx, http.StatusOK, "cohort deleted successfully", nil)
}

// Student handlers

func (api *academicsAPI) createStudent(ctx echo.Context) error {
	var data academics.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return respond(ctx, http.StatusCreated, "student created successfully", std)
}

func (api *academicsAPI) queryStudents(ctx echo.Context) error {
	filter := bindFilter(ctx, studentFilters)
	page := bindPagination(ctx)
	var ord Ordering
	ord.Bind(ctx)

	students, count, err := api.svc.QueryStudents(ctx.Request().Context(), filter, page, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return respondPage(ctx, http.StatusOK, "students retrieved successfully", students, core.NewPaginationMeta(count, page))
}

func (api *academicsAPI) retrieveStudent(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	std, err := api.svc.GetStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return respond(ctx, http.StatusOK, "student retrieved successfully", std)
}

func (api *academicsAPI) updateStudent(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data academics.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	std, err := api.svc.UpdateStudent(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return respond(ctx, http.StatusOK, "student updated successfully", std)
}

func (api *academicsAPI) destroyStudent(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteStudent(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return respond(ctx, http.StatusOK, "student deleted successfully", nil)
}

// Mode handlers

func (api *academicsAPI) createMode(ctx echo.Context) error {
	var data academics.NewMode
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMode")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	mode, err := api.svc.CreateMode(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating mode")
	}
	return respond(ctx, http.StatusCreated, "mode created successfully", mode)
}

func (api *academicsAPI) queryModes(ctx echo.Context) error {
	filter := bindFilter(ctx, modeFilters)
	page := bindPagination(ctx)
	var ord Ordering
	ord.Bind(ctx)

	modes, count, err := api.svc.QueryModes(ctx.Request().Context(), filter, page, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying modes")
	}
	return respondPage(ctx, http.StatusOK, "modes retrieved successfully", modes, core.NewPaginationMeta(count, page))
}

func (api *academicsAPI) retrieveMode(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	mode, err := api.svc.GetMode(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding mode by ID")
	}
	return respond(ctx, http.StatusOK, "mode retrieved successfully", mode)
}

func (api *academicsAPI) updateMode(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data academics.UpdateMode
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMode")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	mode, err := api.svc.UpdateMode(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating mode")
	}
	return respond(ctx, http.StatusOK, "mode updated successfully", mode)
}

func (api *academicsAPI) destroyMode(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteMode(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting mode")
	}
	return respond(ctx, http.StatusOK, "mode deleted successfully", nil)
}
