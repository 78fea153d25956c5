package handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
)

// tenant returns the caller's user and organization ids, writing a 401 when either is missing
func tenant(c echo.Context) (userID, orgID string, ok bool) {
	ctx := c.Request().Context()
	userID, okUser := common.GetUserIDFromContext(ctx)
	orgID, okOrg := common.GetOrganizationIDFromContext(ctx)
	return userID, orgID, okUser && okOrg
}

// queryInt reads an integer query parameter, falling back to def when absent
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewValidationError(name, "%s must be an integer", name)
	}
	return n, nil
}

// pagination reads skip and limit
func pagination(c echo.Context) (int, int, error) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return 0, 0, err
	}
	return common.ValidatePaginationParams(skip, limit)
}

// pathID validates the :id path parameter
func pathID(c echo.Context, name string) (string, error) {
	return common.ValidateID(c.Param("id"), name)
}
