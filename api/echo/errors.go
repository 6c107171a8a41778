package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errAccountDeactivated = echo.NewHTTPError(http.StatusUnauthorized, "account deactivated")
	errHTTPForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string
		var fldErrs interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = "not authenticated"
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			flds := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				flds[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = "validation failed"
			fldErrs = flds
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = "validation failed"
			if origErr.Fields != nil {
				flds := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					flds[fErr.Field] = fErr.Error
				}
				fldErrs = flds
			} else {
				message = origErr.Error()
			}
		case *core.ConflictError:
			code = http.StatusConflict
			message = origErr.Error()
		case *core.ReferentialError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default:
			switch origErr {
			case core.ErrNotFound:
				code = http.StatusNotFound
				message = "not found"
			case core.ErrPermissionDenied:
				code = http.StatusForbidden
				message = "permission denied"
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = http.StatusText(http.StatusInternalServerError)

				args := []interface{}{errors.Wrap(err, message)}
				if acct, aErr := getContextAccount(ctx); aErr == nil {
					args = append(args, acct)
				}
				logger.Error(message, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, envelope{Success: false, Message: message, Errors: fldErrs})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
