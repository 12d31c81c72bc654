package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/core/program"
)

type programApi struct {
	deps ServerDeps
}

func registerProgramAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := programApi{deps: deps}

	pg := g.Group("/programs", jwt)
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.POST("", api.create, adminMiddleware())
	pg.PUT("/:id", api.update, adminMiddleware())
	pg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *programApi) query(ctx echo.Context) error {
	progs, err := api.deps.Programs.All()
	if err != nil {
		return errors.Wrap(err, "querying programs")
	}
	if progs == nil {
		progs = []program.Program{}
	}
	return ctx.JSON(http.StatusOK, progs)
}

func (api *programApi) retrieve(ctx echo.Context) error {
	prog, err := api.deps.Programs.Get(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == program.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding program by ID")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *programApi) create(ctx echo.Context) error {
	var data program.Program
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Program")
	}
	data.ID = "" // ignore a client-supplied id
	if data.Name == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}

	prog, err := api.deps.Programs.Save(data)
	if err != nil {
		return errors.Wrap(err, "saving program")
	}

	api.recordActivity(ctx, "program created: "+prog.Name)
	return ctx.JSON(http.StatusCreated, prog)
}

func (api *programApi) update(ctx echo.Context) error {
	if _, err := api.deps.Programs.Get(ctx.Param("id")); err != nil {
		if errors.Cause(err) == program.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding program by ID")
	}

	var data program.Program
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Program")
	}
	data.ID = ctx.Param("id")
	if data.Name == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}

	prog, err := api.deps.Programs.Save(data)
	if err != nil {
		return errors.Wrap(err, "saving program")
	}

	api.recordActivity(ctx, "program updated: "+prog.Name)
	return ctx.JSON(http.StatusOK, prog)
}

func (api *programApi) destroy(ctx echo.Context) error {
	if err := api.deps.Programs.Delete(ctx.Param("id")); err != nil {
		if errors.Cause(err) == program.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting program")
	}

	api.recordActivity(ctx, "program deleted: "+ctx.Param("id"))
	return ctx.NoContent(http.StatusNoContent)
}

func (api *programApi) recordActivity(ctx echo.Context, action string) {
	actor := ""
	if claims, err := getContextClaims(ctx); err == nil {
		actor = claims.Email
	}
	api.deps.Activity.Record(action, actor, activity.KindInfo)
}
