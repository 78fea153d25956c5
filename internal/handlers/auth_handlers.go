package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/services"
)

// AuthHandlers handles registration, login and the caller profile
type AuthHandlers struct {
	userService services.UserService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(userService services.UserService) *AuthHandlers {
	return &AuthHandlers{userService: userService}
}

// Register handles POST /auth/register and creates an organization admin
func (h *AuthHandlers) Register(c echo.Context) error {
	var req services.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.userService.Register(c.Request().Context(), &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to register")
	}
	return c.JSON(http.StatusCreated, result)
}

// Login handles POST /auth/login with a username or email
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.userService.Login(c.Request().Context(), &req)
	if err != nil {
		if common.StatusFor(err) == http.StatusUnauthorized {
			return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Invalid credentials", nil))
		}
		return common.SendServiceError(c, err, "Failed to login")
	}
	return c.JSON(http.StatusOK, result)
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, user)
}
