package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core/account"
	"github.com/mwalimu/darasa/core/session"
)

const (
	sessionHeader     = "X-Session-ID"
	contextSessionKey = "sessionID"
)

// sessionMiddleware resolves the caller's session from the X-Session-ID
// header, issuing a fresh ID when the header is absent. The effective ID is
// echoed back in the response header so clients can persist it.
func sessionMiddleware(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := store.Ensure(ctx.Request().Context(), ctx.Request().Header.Get(sessionHeader))
			if err != nil {
				return errors.Wrap(err, "ensuring session")
			}
			ctx.Set(contextSessionKey, id)
			ctx.Response().Header().Set(sessionHeader, id)
			return next(ctx)
		}
	}
}

func getContextSessionID(ctx echo.Context) (string, error) {
	if id, ok := ctx.Get(contextSessionKey).(string); ok {
		return id, nil
	}
	return "", errors.New("session ID not found in echo.Context")
}

// permissionMiddleware guards a route behind one RBAC permission of the
// authenticated account's role.
func permissionMiddleware(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if account.HasPermission(claims.Role, permission) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == account.RoleAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
