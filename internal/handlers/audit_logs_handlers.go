package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/services"
)

// AuditLogsHandlers handles HTTP requests for the audit trail
type AuditLogsHandlers struct {
	auditLogsService services.AuditLogsService
}

// NewAuditLogsHandlers creates a new audit logs handlers instance
func NewAuditLogsHandlers(auditLogsService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditLogsService: auditLogsService}
}

// ListAuditLogs retrieves audit logs with filtering and pagination
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	filters := &models.AuditLogFilters{}
	if org := strings.TrimSpace(c.QueryParam("organization_id")); org != "" {
		filters.OrganizationID = &org
	}
	if actor := strings.TrimSpace(c.QueryParam("actor_id")); actor != "" {
		filters.ActorID = &actor
	}
	if resource := strings.TrimSpace(c.QueryParam("resource")); resource != "" {
		filters.Resource = &resource
	}
	if raw := c.QueryParam("start_date"); raw != "" {
		sd, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return common.SendValidationError(c, "start_date", "start_date must be RFC3339")
		}
		filters.StartDate = &sd
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		ed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return common.SendValidationError(c, "end_date", "end_date must be RFC3339")
		}
		filters.EndDate = &ed
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return common.SendServiceError(c, err, "")
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return common.SendServiceError(c, err, "")
	}
	filters.Limit = limit
	filters.Offset = offset

	logs, err := h.auditLogsService.ListAuditLogs(c.Request().Context(), filters)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to retrieve audit logs")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":    logs,
		"total":   len(logs),
		"limit":   filters.Limit,
		"offset":  filters.Offset,
		"enabled": h.auditLogsService.Enabled(),
	})
}
