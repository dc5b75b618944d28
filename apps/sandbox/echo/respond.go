package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-admin/core/api"
)

// envelope is the shape of every response body.
type envelope struct {
	Success    bool              `json:"success"`
	Data       interface{}       `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Pagination *api.Pagination   `json:"pagination,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func respond(ctx echo.Context, code int, data interface{}, message ...string) error {
	env := envelope{Success: true, Data: data}
	if len(message) > 0 {
		env.Message = message[0]
	}
	return ctx.JSON(code, env)
}

func respondOK(ctx echo.Context, data interface{}, message ...string) error {
	return respond(ctx, http.StatusOK, data, message...)
}

func respondPage[T any](ctx echo.Context, items []T, p api.Pagination) error {
	if items == nil {
		items = []T{}
	}
	return ctx.JSON(http.StatusOK, envelope{Success: true, Data: items, Pagination: &p})
}
