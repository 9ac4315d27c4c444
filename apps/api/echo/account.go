package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core"
	"github.com/mwalimu/darasa/core/account"
	"github.com/mwalimu/darasa/core/session"
)

// sessionAuthKey is the session entry recording who is logged in, mirrored
// from the original login demo's session flag.
const sessionAuthKey = "auth"

type accountApi struct {
	svc      *account.Service
	sessions session.Store
	validate *validator.Validate
}

func registerAccountAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	sess echo.MiddlewareFunc,
	svc *account.Service,
	sessions session.Store,
	validate *validator.Validate,
) {
	api := accountApi{
		svc:      svc,
		sessions: sessions,
		validate: validate,
	}

	ag := g.Group("/auth", sess)

	// un-authed endpoints
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)
	ag.GET("/roles", api.queryRoles)

	// authed endpoints
	tg := ag.Group("", jwt)
	tg.POST("/refresh", api.refreshToken)
	tg.GET("/me", api.me)
	tg.GET("/permissions", api.queryPermissions)
	tg.GET("/access/:page", api.checkPageAccess)
	tg.GET("/accounts", api.queryAccounts, adminMiddleware())
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token   string          `json:"token"`
		Account account.Account `json:"account"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	PageAccessResponse struct {
		Page    string `json:"page"`
		Known   bool   `json:"known"`
		Allowed bool   `json:"allowed"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

func (api *accountApi) register(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	data.Clean()
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	acct, err := api.svc.Register(data)
	if err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return err
		}
		return errors.Wrap(err, "registering account")
	}
	return ctx.JSON(http.StatusCreated, acct)
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(data.Username, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	acct, err := api.svc.GetByUsername(claims.Username)
	if err != nil {
		return errors.Wrap(err, "finding account by username")
	}

	if id, err := getContextSessionID(ctx); err == nil {
		if err := api.sessions.Set(ctx.Request().Context(), id, sessionAuthKey, claims.Username); err != nil {
			return errors.Wrap(err, "recording login in session")
		}
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Account: acct})
}

// logout clears the session's auth marker. The token itself is dropped client
// side; stateless JWTs have nothing to revoke here.
func (api *accountApi) logout(ctx echo.Context) error {
	id, err := getContextSessionID(ctx)
	if err != nil {
		return err
	}
	if err := api.sessions.Delete(ctx.Request().Context(), id, sessionAuthKey); err != nil {
		if errors.Cause(err) != session.ErrKeyNotFound {
			return errors.Wrap(err, "clearing login from session")
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *accountApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	acct, err := api.svc.GetByUsername(claims.Username)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding account by username")
	}
	return ctx.JSON(http.StatusOK, acct)
}

func (api *accountApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(data.Email); err != nil {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *accountApi) confirmPasswordReset(ctx echo.Context) error {
	var data account.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	if err := api.svc.ConfirmPasswordReset(data); err != nil {
		switch errors.Cause(err) {
		case account.ErrNotFound, account.ErrInvalidToken, account.ErrTokenExpired:
			return core.NewValidationError(nil,
				core.FieldError{Field: "token", Error: account.ErrInvalidToken.Error()})
		}
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *accountApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, account.Roles)
}

// queryAccounts lists every account. Admins only.
func (api *accountApi) queryAccounts(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.QueryAll())
}

// queryPermissions echoes the caller's effective permission set.
func (api *accountApi) queryPermissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	perms := account.PermissionsFor(claims.Role)
	if perms == nil {
		perms = []string{}
	}
	return ctx.JSON(http.StatusOK, perms)
}

func (api *accountApi) checkPageAccess(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	page := ctx.Param("page")
	return ctx.JSON(http.StatusOK, PageAccessResponse{
		Page:    page,
		Known:   account.KnownPage(page),
		Allowed: account.CanAccessPage(claims.Role, page),
	})
}
