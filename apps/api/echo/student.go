package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/activity"
)

var errAcctNotFoundInCtx = errors.New("account object not found in echo.Context")

type studentApi struct {
	deps ServerDeps
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{deps: deps}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, adminMiddleware())
	sg.GET("/roles", api.queryRoles, adminMiddleware())

	// detail endpoints
	dg := sg.Group("/:id", selfOrAdminMiddleware(deps.Backend))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	role := ctx.QueryParam("role")
	if role == "" {
		role = account.RoleStudent
	}

	accts, err := api.deps.Backend.Accounts(role)
	if err != nil {
		return errors.Wrap(err, "querying accounts")
	}
	if accts == nil {
		accts = []account.Account{}
	}
	return ctx.JSON(http.StatusOK, accts)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	acct, ok := ctx.Get("object").(account.Account)
	if !ok {
		return errors.Wrap(errAcctNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, acct)
}

func (api *studentApi) update(ctx echo.Context) error {
	acct, ok := ctx.Get("object").(account.Account)
	if !ok {
		return errors.Wrap(errAcctNotFoundInCtx, "retrieving object from context")
	}

	var data account.ProfileUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileUpdate")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin {
		// `Program` and `Semester` can only be changed by admin
		if data.Program != "" || data.Semester != "" {
			return errHttpForbidden
		}
	}

	updated, err := api.deps.Backend.UpdateProfile(acct.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}

	// keep the live session in step with the stored profile
	if cur := api.deps.Session.Current(); cur != nil && cur.ID == updated.ID {
		if err = api.deps.Session.Update(updated); err != nil {
			api.deps.Logger.Warn("refreshing session after profile update", err)
		}
	}

	api.deps.Activity.Record("student record updated: "+updated.Email, claims.Email, activity.KindInfo)
	return ctx.JSON(http.StatusOK, updated)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	acct, ok := ctx.Get("object").(account.Account)
	if !ok {
		return errors.Wrap(errAcctNotFoundInCtx, "retrieving object from context")
	}

	// Say No to Suicide! the acting admin cannot delete themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if acct.ID == claims.Subject {
		return errHttpForbidden
	}

	if err := api.deps.Backend.DeleteAccount(acct.ID); err != nil {
		return err
	}

	api.deps.Activity.Record("student record deleted: "+acct.Email, claims.Email, activity.KindSecurity)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, account.Roles)
}
