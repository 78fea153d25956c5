package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/services"
)

// UserHandlers manages the staff accounts of an organization
type UserHandlers struct {
	userService services.UserService
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// ListStaff handles GET /staff
func (h *UserHandlers) ListStaff(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	staff, err := h.userService.ListStaff(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list staff")
	}
	return c.JSON(http.StatusOK, staff)
}

// CreateStaff handles POST /staff. Only organization admins reach it.
func (h *UserHandlers) CreateStaff(c echo.Context) error {
	userID, _, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateStaffRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	user, err := h.userService.CreateStaff(c.Request().Context(), userID, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to create staff user")
	}
	return c.JSON(http.StatusCreated, user)
}

// DeleteStaff handles DELETE /staff/:id
func (h *UserHandlers) DeleteStaff(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "user_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	if err := h.userService.DeleteStaff(c.Request().Context(), orgID, id); err != nil {
		return common.SendServiceError(c, err, "Failed to delete staff user")
	}
	return c.NoContent(http.StatusNoContent)
}
