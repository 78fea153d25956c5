package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
)

// PanelVersionHeader carries the super-admin panel version on every panel response
const PanelVersionHeader = "X-Super-Admin-Version"

// FeatureChecker reports whether a panel feature is switched on
type FeatureChecker interface {
	FeatureEnabled(feature string) bool
}

// VersionMiddleware stamps the super-admin panel version and gates its features
type VersionMiddleware struct {
	version  string
	features FeatureChecker
}

// NewVersionMiddleware creates a new version middleware instance
func NewVersionMiddleware(version string, features FeatureChecker) *VersionMiddleware {
	if version == "" {
		version = "v1"
	}
	return &VersionMiddleware{version: version, features: features}
}

// VersionHeader adds the panel version to response headers
func (vm *VersionMiddleware) VersionHeader() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(PanelVersionHeader, vm.version)
			return next(c)
		}
	}
}

// Feature answers 404 for routes of a disabled panel feature
func (vm *VersionMiddleware) Feature(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !vm.features.FeatureEnabled(name) {
				return c.JSON(http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", "feature "+name+" is disabled", nil))
			}
			return next(c)
		}
	}
}

// Version returns the panel version served
func (vm *VersionMiddleware) Version() string {
	return vm.version
}
