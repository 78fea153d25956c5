package middleware

import (
	"github.com/labstack/echo/v4"

	"restobill/internal/common"
)

// RequireRoles allows the request through only for the listed roles
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if !allowed[role] {
				return common.SendForbiddenError(c, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireOrganization rejects tokens that carry no organization, such as super-admin tokens on tenant routes
func RequireOrganization() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := common.GetOrganizationIDFromContext(c.Request().Context()); !ok {
				return common.SendForbiddenError(c, "Organization context required")
			}
			return next(c)
		}
	}
}
