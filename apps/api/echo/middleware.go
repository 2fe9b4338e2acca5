package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// activeAdminMiddleware restricts the route to authenticated, active admins.
func activeAdminMiddleware(deps ServerDeps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx, deps)
			if err != nil {
				return errors.Wrap(err, "getting context principal")
			}
			if p.IsActiveAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// principalMiddleware only resolves the caller; any valid access token passes.
func principalMiddleware(deps ServerDeps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextPrincipal(ctx, deps); err != nil {
				return errors.Wrap(err, "getting context principal")
			}
			return next(ctx)
		}
	}
}
