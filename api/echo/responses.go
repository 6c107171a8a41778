package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/kozi/core"
)

// envelope is the uniform response shape for all endpoints.
type envelope struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    interface{}          `json:"data,omitempty"`
	Meta    *core.PaginationMeta `json:"meta,omitempty"`
	Errors  interface{}          `json:"errors,omitempty"`
}

func respond(ctx echo.Context, code int, message string, data interface{}) error {
	return ctx.JSON(code, envelope{Success: true, Message: message, Data: data})
}

func respondPage(ctx echo.Context, code int, message string, data interface{}, meta core.PaginationMeta) error {
	return ctx.JSON(code, envelope{Success: true, Message: message, Data: data, Meta: &meta})
}
