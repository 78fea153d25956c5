package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/services"
)

// MetricsSource exposes the samples collected by the metrics sampler job
type MetricsSource interface {
	Samples() []models.SystemMetricsSample
	JobStatus() map[string]interface{}
}

// SuperAdminHandlers serves the platform operator panel
type SuperAdminHandlers struct {
	superAdminService services.SuperAdminService
	ticketService     services.TicketService
	metrics           MetricsSource
}

// NewSuperAdminHandlers creates a new super-admin handlers instance
func NewSuperAdminHandlers(superAdminService services.SuperAdminService, ticketService services.TicketService, metrics MetricsSource) *SuperAdminHandlers {
	return &SuperAdminHandlers{
		superAdminService: superAdminService,
		ticketService:     ticketService,
		metrics:           metrics,
	}
}

// Login handles POST /super-admin/login
func (h *SuperAdminHandlers) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	token, err := h.superAdminService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to login")
	}
	return c.JSON(http.StatusOK, token)
}

// Dashboard handles GET /super-admin/dashboard
func (h *SuperAdminHandlers) Dashboard(c echo.Context) error {
	dashboard, err := h.superAdminService.Dashboard(c.Request().Context())
	if err != nil {
		return common.SendServiceError(c, err, "Failed to build dashboard")
	}
	return c.JSON(http.StatusOK, dashboard)
}

// ListUsers handles GET /super-admin/users?skip&limit&search&status
func (h *SuperAdminHandlers) ListUsers(c echo.Context) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	users, err := h.superAdminService.ListUsers(c.Request().Context(), models.UserFilter{
		Search: c.QueryParam("search"),
		Status: strings.TrimSpace(c.QueryParam("status")),
		Skip:   skip,
		Limit:  limit,
	})
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser handles GET /super-admin/users/:id
func (h *SuperAdminHandlers) GetUser(c echo.Context) error {
	id, err := pathID(c, "user_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	detail, err := h.superAdminService.GetUser(c.Request().Context(), id)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to get user")
	}
	return c.JSON(http.StatusOK, detail)
}

// UpdateSubscription handles PUT /super-admin/users/:id/subscription
func (h *SuperAdminHandlers) UpdateSubscription(c echo.Context) error {
	id, err := pathID(c, "user_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	var req services.UpdateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	user, err := h.superAdminService.UpdateSubscription(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to update subscription")
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /super-admin/users/:id
func (h *SuperAdminHandlers) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "user_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	result, err := h.superAdminService.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, result)
}

// OrganizationActiveOrders handles GET /super-admin/organizations/:id/active-orders
func (h *SuperAdminHandlers) OrganizationActiveOrders(c echo.Context) error {
	orgID, err := pathID(c, "organization_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	var policy models.ActiveOrdersPolicy
	if raw := strings.TrimSpace(c.QueryParam("policy")); raw != "" {
		if policy, err = models.ParseActiveOrdersPolicy(raw); err != nil {
			return common.SendValidationError(c, "policy", err.Error())
		}
	}

	diag, err := h.superAdminService.OrganizationActiveOrders(c.Request().Context(), orgID, policy)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to load active orders")
	}
	return c.JSON(http.StatusOK, diag)
}

// OrganizationTodayBills handles GET /super-admin/organizations/:id/today-bills
func (h *SuperAdminHandlers) OrganizationTodayBills(c echo.Context) error {
	orgID, err := pathID(c, "organization_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	diag, err := h.superAdminService.OrganizationTodayBills(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to load today's bills")
	}
	return c.JSON(http.StatusOK, diag)
}

// SystemMetrics handles GET /super-admin/system-metrics
func (h *SuperAdminHandlers) SystemMetrics(c echo.Context) error {
	samples := []models.SystemMetricsSample{}
	var jobs map[string]interface{}
	if h.metrics != nil {
		samples = h.metrics.Samples()
		jobs = h.metrics.JobStatus()
	}

	resp := map[string]interface{}{
		"samples":   samples,
		"count":     len(samples),
		"scheduler": jobs,
	}
	if len(samples) > 0 {
		resp["latest"] = samples[len(samples)-1]
	}
	return c.JSON(http.StatusOK, resp)
}

// ListTickets handles GET /super-admin/tickets?status&skip&limit
func (h *SuperAdminHandlers) ListTickets(c echo.Context) error {
	skip, limit, err := pagination(c)
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	tickets, total, err := h.ticketService.ListTickets(c.Request().Context(), strings.TrimSpace(c.QueryParam("status")), skip, limit)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list tickets")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"total":   total,
		"skip":    skip,
		"limit":   limit,
	})
}

// UpdateTicket handles PUT /super-admin/tickets/:id
func (h *SuperAdminHandlers) UpdateTicket(c echo.Context) error {
	id, err := pathID(c, "ticket_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	var req services.UpdateTicketRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	ticket, err := h.ticketService.UpdateTicket(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to update ticket")
	}
	return c.JSON(http.StatusOK, ticket)
}
