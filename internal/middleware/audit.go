package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/services"
)

const auditTimeout = 3 * time.Second

// AuditMiddleware records mutating API calls in the audit trail
type AuditMiddleware struct {
	auditService services.AuditLogsService
	logger       *logrus.Entry
}

// NewAuditMiddleware creates a new audit middleware instance
func NewAuditMiddleware(auditService services.AuditLogsService, logger *logrus.Logger) *AuditMiddleware {
	return &AuditMiddleware{
		auditService: auditService,
		logger:       logger.WithField("component", "audit_middleware"),
	}
}

// AuditRequest records POST, PUT, PATCH and DELETE requests after the handler ran.
// Audit failures are logged and never change the response.
func (m *AuditMiddleware) AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if !m.auditService.Enabled() || !isMutating(c.Request().Method) {
				return err
			}

			ctx := c.Request().Context()
			actorID, _ := common.GetUserIDFromContext(ctx)
			orgID, _ := common.GetOrganizationIDFromContext(ctx)
			role, _ := common.GetRoleFromContext(ctx)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}

			entry := &models.AuditLog{
				OrganizationID: orgID,
				ActorID:        actorID,
				ActorRole:      role,
				Action:         c.Request().Method,
				Resource:       resourceFromPath(c.Path()),
				ResourceID:     c.Param("id"),
				StatusCode:     status,
				Metadata: models.JSONB{
					"path":       c.Request().URL.Path,
					"route":      c.Path(),
					"ip":         c.RealIP(),
					"user_agent": c.Request().UserAgent(),
				},
			}
			if err != nil {
				entry.Metadata["error"] = err.Error()
			}

			// the request context may already be cancelled once the response is written
			auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
			defer cancel()
			if recErr := m.auditService.Record(auditCtx, entry); recErr != nil {
				m.logger.WithError(recErr).WithField("route", c.Path()).Warn("failed to record audit entry")
			}
			return err
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// resourceFromPath turns /api/orders/:id/status into "orders"
func resourceFromPath(route string) string {
	route = strings.TrimPrefix(route, "/api/")
	route = strings.TrimPrefix(route, "super-admin/")
	for _, part := range strings.Split(route, "/") {
		if part != "" && !strings.HasPrefix(part, ":") {
			return part
		}
	}
	return "unknown"
}
