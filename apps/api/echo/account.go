package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/core/auth"
)

type authApi struct {
	deps ServerDeps
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := authApi{deps: deps}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/password-reset", api.resetCredential)
	ag.POST("/password-reset-confirm", api.confirmCredentialReset)
	ag.GET("/remembered-email", api.rememberedEmail)
	ag.GET("/session", api.sessionState)
	ag.GET("/verification", api.checkVerification)
	ag.POST("/verification/resend", api.resendVerification)

	// authed endpoints
	authed := ag.Group("", jwt)
	authed.POST("/logout", api.logout)
	authed.POST("/token-refresh", api.refreshToken)
}

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	var data auth.RegisterInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterInput")
	}

	pending, err := api.deps.AuthFlow.Register(data)
	if err != nil {
		return err
	}

	api.deps.Activity.Record("account registered: "+pending.Email, pending.Email, activity.KindInfo)
	return ctx.JSON(http.StatusCreated, pending)
}

func (api *authApi) login(ctx echo.Context) error {
	var data auth.LoginInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginInput")
	}

	acct, err := api.deps.AuthFlow.Login(data)
	if err != nil {
		return err
	}

	token, err := GenerateToken(api.deps.Conf, GetAccountClaims(api.deps.Conf, acct))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	api.deps.Activity.Record("login: "+acct.Email, acct.Email, activity.KindInfo)
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Account: acct})
}

func (api *authApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err = api.deps.AuthFlow.Logout(); err != nil {
		// the session is gone locally regardless; log and move on
		api.deps.Logger.Warn("logout: backend sign-out failed", err)
	}

	api.deps.Activity.Record("logout: "+claims.Email, claims.Email, activity.KindInfo)
	return ctx.NoContent(http.StatusNoContent)
}

// sessionState reports the restored-session phase so the dashboard can render
// immediately and follow up once the backend confirms.
func (api *authApi) sessionState(ctx echo.Context) error {
	resp := SessionResponse{Phase: api.deps.Session.Phase().String()}
	if acct := api.deps.Session.Current(); acct != nil {
		resp.Account = acct

		claims := GetAccountClaims(api.deps.Conf, *acct)
		token, err := GenerateToken(api.deps.Conf, claims)
		if err != nil {
			return errors.Wrap(err, "generating token")
		}
		resp.Token = token
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *authApi) checkVerification(ctx echo.Context) error {
	verified, err := api.deps.AuthFlow.CheckVerification()
	if err != nil {
		return err
	}
	pending, err := api.deps.AuthFlow.PendingVerification()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, VerificationResponse{Verified: verified, Pending: pending})
}

func (api *authApi) resendVerification(ctx echo.Context) error {
	if err := api.deps.AuthFlow.ResendVerification(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Verification email sent."})
}

func (api *authApi) resetCredential(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err := api.deps.AuthFlow.RequestCredentialReset(data.Email); !(err == nil || errors.Cause(err) == account.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting credential reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *authApi) confirmCredentialReset(ctx echo.Context) error {
	var data PasswordResetConfirmRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetConfirmRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	confirmer, ok := api.deps.Backend.(account.CredentialResetConfirmer)
	if !ok {
		// the hosted service handles its own reset links
		return account.ErrUnsupported
	}
	if err := confirmer.ConfirmCredentialReset(data.UID, data.Token, data.Password); err != nil {
		return core.NewValidationError(err)
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *authApi) rememberedEmail(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"email": api.deps.AuthFlow.RememberedEmail()})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.deps.Conf, api.deps.Backend)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type (
	LoginResponse struct {
		Token   string          `json:"token"`
		Account account.Account `json:"account,omitempty"`
	}

	SessionResponse struct {
		Phase   string           `json:"phase"`
		Token   string           `json:"token,omitempty"`
		Account *account.Account `json:"account,omitempty"`
	}

	VerificationResponse struct {
		Verified bool                      `json:"verified"`
		Pending  *auth.PendingVerification `json:"pending,omitempty"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	PasswordResetConfirmRequest struct {
		UID             string `json:"uid" validate:"required"`
		Token           string `json:"token" validate:"required"`
		Password        string `json:"password" validate:"required,min=8"`
		PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

func (pr *PasswordResetConfirmRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(pr)
}
