package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/services"
)

// MenuHandlers handles HTTP requests for menu items
type MenuHandlers struct {
	menuService services.MenuService
}

// NewMenuHandlers creates a new menu handlers instance
func NewMenuHandlers(menuService services.MenuService) *MenuHandlers {
	return &MenuHandlers{menuService: menuService}
}

// CreateMenuItem handles POST /menu
func (h *MenuHandlers) CreateMenuItem(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateMenuItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, err := h.menuService.CreateMenuItem(c.Request().Context(), orgID, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to create menu item")
	}
	return c.JSON(http.StatusCreated, item)
}

// GetMenuItem handles GET /menu/:id
func (h *MenuHandlers) GetMenuItem(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "menu_item_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	item, err := h.menuService.GetMenuItem(c.Request().Context(), orgID, id)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to get menu item")
	}
	return c.JSON(http.StatusOK, item)
}

// ListMenu handles GET /menu?category&available
func (h *MenuHandlers) ListMenu(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	filter := models.MenuFilter{Category: strings.TrimSpace(c.QueryParam("category"))}
	if raw := c.QueryParam("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return common.SendValidationError(c, "available", "available must be true or false")
		}
		filter.AvailableOnly = available
	}

	items, err := h.menuService.ListMenu(c.Request().Context(), orgID, filter)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list menu")
	}
	return c.JSON(http.StatusOK, items)
}

// UpdateMenuItem handles PUT /menu/:id
func (h *MenuHandlers) UpdateMenuItem(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "menu_item_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	var req services.UpdateMenuItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, err := h.menuService.UpdateMenuItem(c.Request().Context(), orgID, id, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to update menu item")
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /menu/:id
func (h *MenuHandlers) DeleteMenuItem(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "menu_item_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	if err := h.menuService.DeleteMenuItem(c.Request().Context(), orgID, id); err != nil {
		return common.SendServiceError(c, err, "Failed to delete menu item")
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadMenuImage handles POST /menu/:id/image as multipart field "image"
func (h *MenuHandlers) UploadMenuImage(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "menu_item_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "Image file is required")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to open image file")
	}
	defer src.Close()

	// sniff the real type instead of trusting the client header
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return common.SendServerError(c, "Failed to read image file")
	}
	contentType := http.DetectContentType(head[:n])
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return common.SendServerError(c, "Failed to read image file")
	}

	item, err := h.menuService.UploadImage(c.Request().Context(), orgID, id, src, file.Size, contentType)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to upload image")
	}
	return c.JSON(http.StatusOK, item)
}
