package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/staff"
)

var (
	managerFilters     = []string{"email", "firstName", "lastName", "isActive"}
	facilitatorFilters = []string{"email", "firstName", "lastName", "employeeId", "department", "isActive"}
)

type staffAPI struct {
	conf *core.Config
	svc  *staff.Service
}

func registerAuthAPI(g *echo.Group, jwt, account echo.MiddlewareFunc, conf *core.Config, svc *staff.Service) {
	api := staffAPI{conf: conf, svc: svc}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)

	ag.POST("/token-refresh", api.refreshToken, jwt, account)

	// registration is reserved for managers
	rg := ag.Group("/register", jwt, account, managerMiddleware())
	rg.POST("/manager", api.createManager)
	rg.POST("/facilitator", api.createFacilitator)
}

func registerStaffAPI(g *echo.Group, jwt, account echo.MiddlewareFunc, svc *staff.Service) {
	api := staffAPI{svc: svc}

	mg := g.Group("/managers", jwt, account, managerMiddleware())
	mg.GET("", api.queryManagers)
	mg.GET("/:id", api.retrieveManager)
	mg.PUT("/:id", api.updateManager)
	mg.DELETE("/:id", api.destroyManager)

	fg := g.Group("/facilitators", jwt, account)
	fg.GET("", api.queryFacilitators, managerMiddleware())
	fg.GET("/:id", api.retrieveFacilitator)
	fg.GET("/:id/assignments", api.facilitatorAssignments)
	fg.PUT("/:id", api.updateFacilitator, managerMiddleware())
	fg.DELETE("/:id", api.destroyFacilitator, managerMiddleware())
}

// Handlers

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true)
	return core.Validate.Struct(r)
}

type loginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
	Role  string      `json:"role"`
}

func (api *staffAPI) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	acct, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		switch errors.Cause(err) {
		case staff.ErrInvalidCredentials:
			return echo.NewHTTPError(http.StatusUnauthorized, staff.ErrInvalidCredentials.Error())
		case staff.ErrAccountDeactivated:
			return errAccountDeactivated
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(api.conf, GetAccountClaims(api.conf, acct))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return respond(ctx, http.StatusOK, "login successful", loginResponse{
		Token: token,
		User:  acct.User(),
		Role:  acct.Role,
	})
}

func (api *staffAPI) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return respond(ctx, http.StatusOK, "token refreshed", echo.Map{"token": token})
}

func (api *staffAPI) createManager(ctx echo.Context) error {
	var data staff.NewManager
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewManager")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	mgr, err := api.svc.CreateManager(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating manager")
	}
	return respond(ctx, http.StatusCreated, "manager registered successfully", mgr)
}

func (api *staffAPI) createFacilitator(ctx echo.Context) error {
	var data staff.NewFacilitator
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFacilitator")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	fac, err := api.svc.CreateFacilitator(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating facilitator")
	}
	return respond(ctx, http.StatusCreated, "facilitator registered successfully", fac)
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *passwordResetRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true)
	return core.Validate.Struct(r)
}

func (api *staffAPI) resetPassword(ctx echo.Context) error {
	var data passwordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to passwordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == core.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return respond(ctx, http.StatusOK, "If the email address supplied is associated with an active account on this system, "+
		"an email will arrive in your inbox shortly with instructions to reset your password.", nil)
}

func (api *staffAPI) confirmPasswordReset(ctx echo.Context) error {
	var data staff.ResetAccountPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetAccountPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return respond(ctx, http.StatusOK, "Password has been reset with the new password.", nil)
}

func (api *staffAPI) queryManagers(ctx echo.Context) error {
	filter := bindFilter(ctx, managerFilters)
	page := bindPagination(ctx)
	var ord Ordering
	ord.Bind(ctx)

	mgrs, count, err := api.svc.QueryManagers(ctx.Request().Context(), filter, page, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying managers")
	}
	return respondPage(ctx, http.StatusOK, "managers retrieved successfully", mgrs, core.NewPaginationMeta(count, page))
}

func (api *staffAPI) retrieveManager(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	mgr, err := api.svc.GetManager(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding manager by ID")
	}
	return respond(ctx, http.StatusOK, "manager retrieved successfully", mgr)
}

func (api *staffAPI) updateManager(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data staff.UpdateManager
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateManager")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	mgr, err := api.svc.UpdateManager(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating manager")
	}
	return respond(ctx, http.StatusOK, "manager updated successfully", mgr)
}

func (api *staffAPI) destroyManager(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	acct, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteManager(ctx.Request().Context(), id, acct.Caller()); err != nil {
		return errors.Wrap(err, "deleting manager")
	}
	return respond(ctx, http.StatusOK, "manager deleted successfully", nil)
}

func (api *staffAPI) queryFacilitators(ctx echo.Context) error {
	filter := bindFilter(ctx, facilitatorFilters)
	page := bindPagination(ctx)
	var ord Ordering
	ord.Bind(ctx)

	facs, count, err := api.svc.QueryFacilitators(ctx.Request().Context(), filter, page, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying facilitators")
	}
	return respondPage(ctx, http.StatusOK, "facilitators retrieved successfully", facs, core.NewPaginationMeta(count, page))
}

func (api *staffAPI) retrieveFacilitator(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	fac, err := api.svc.GetFacilitator(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding facilitator by ID")
	}
	return respond(ctx, http.StatusOK, "facilitator retrieved successfully", fac)
}

type facilitatorAssignmentsResponse struct {
	FacilitatorID     int   `json:"facilitatorId"`
	ActiveAssignments int64 `json:"activeAssignments"`
}

func (api *staffAPI) facilitatorAssignments(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetFacilitator(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "finding facilitator by ID")
	}

	count, err := api.svc.CountActiveAssignments(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "counting active assignments")
	}
	return respond(ctx, http.StatusOK, "assignments retrieved successfully", facilitatorAssignmentsResponse{
		FacilitatorID:     id,
		ActiveAssignments: count,
	})
}

func (api *staffAPI) updateFacilitator(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	var data staff.UpdateFacilitator
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFacilitator")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	fac, err := api.svc.UpdateFacilitator(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating facilitator")
	}
	return respond(ctx, http.StatusOK, "facilitator updated successfully", fac)
}

func (api *staffAPI) destroyFacilitator(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteFacilitator(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting facilitator")
	}
	return respond(ctx, http.StatusOK, "facilitator deleted successfully", nil)
}
