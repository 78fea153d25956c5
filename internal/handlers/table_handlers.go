package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/services"
)

// TableHandlers handles HTTP requests for dining tables
type TableHandlers struct {
	tableService services.TableService
}

// NewTableHandlers creates a new table handlers instance
func NewTableHandlers(tableService services.TableService) *TableHandlers {
	return &TableHandlers{tableService: tableService}
}

// CreateTable handles POST /tables
func (h *TableHandlers) CreateTable(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateTableRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	table, err := h.tableService.CreateTable(c.Request().Context(), orgID, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to create table")
	}
	return c.JSON(http.StatusCreated, table)
}

// GetTable handles GET /tables/:id
func (h *TableHandlers) GetTable(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "table_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	table, err := h.tableService.GetTable(c.Request().Context(), orgID, id)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to get table")
	}
	return c.JSON(http.StatusOK, table)
}

// ListTables handles GET /tables
func (h *TableHandlers) ListTables(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	tables, err := h.tableService.ListTables(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list tables")
	}
	return c.JSON(http.StatusOK, tables)
}

// UpdateTable handles PUT /tables/:id
func (h *TableHandlers) UpdateTable(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "table_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	var req services.UpdateTableRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	table, err := h.tableService.UpdateTable(c.Request().Context(), orgID, id, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to update table")
	}
	return c.JSON(http.StatusOK, table)
}

// DeleteTable handles DELETE /tables/:id
func (h *TableHandlers) DeleteTable(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "table_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	if err := h.tableService.DeleteTable(c.Request().Context(), orgID, id); err != nil {
		return common.SendServiceError(c, err, "Failed to delete table")
	}
	return c.NoContent(http.StatusNoContent)
}
