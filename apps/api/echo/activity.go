package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoja/darasa/core/activity"
)

type activityApi struct {
	deps ServerDeps
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := activityApi{deps: deps}

	lg := g.Group("/activity", jwt, adminMiddleware())
	lg.GET("", api.query)
	lg.DELETE("", api.clear)
}

// Handlers

func (api *activityApi) query(ctx echo.Context) error {
	entries, err := api.deps.Activity.Entries()
	if err != nil {
		return errors.Wrap(err, "loading activity log")
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *activityApi) clear(ctx echo.Context) error {
	if err := api.deps.Activity.Clear(); err != nil {
		return errors.Wrap(err, "clearing activity log")
	}
	return ctx.NoContent(http.StatusNoContent)
}
