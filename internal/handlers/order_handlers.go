package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/services"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService   services.OrderService
	receiptService services.ReceiptService
	userService    services.UserService
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderService, receiptService services.ReceiptService, userService services.UserService) *OrderHandlers {
	return &OrderHandlers{
		orderService:   orderService,
		receiptService: receiptService,
		userService:    userService,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	userID, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), orgID, userID, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to create order")
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "order_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), orgID, id)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to get order")
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /orders?status&skip&limit
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	skip, limit, err := pagination(c)
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	filter := models.OrderFilter{Skip: skip, Limit: limit}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		if !models.ValidOrderStatus(status) {
			return common.SendValidationError(c, "status", fmt.Sprintf("unknown order status %q", status))
		}
		filter.Status = &status
	}

	orders, err := h.orderService.ListOrders(c.Request().Context(), orgID, filter)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateOrder handles PUT /orders/:id
func (h *OrderHandlers) UpdateOrder(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "order_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	var req services.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.UpdateOrder(c.Request().Context(), orgID, id, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to update order")
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /orders/:id/status
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "order_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request().Context(), orgID, id, strings.TrimSpace(req.Status))
	if err != nil {
		return common.SendServiceError(c, err, "Failed to update order status")
	}
	return c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /orders/:id
func (h *OrderHandlers) DeleteOrder(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "order_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	if err := h.orderService.DeleteOrder(c.Request().Context(), orgID, id); err != nil {
		return common.SendServiceError(c, err, "Failed to delete order")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListActiveOrders handles GET /orders/active?policy=all_open|today_only
func (h *OrderHandlers) ListActiveOrders(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	policy := h.orderService.DefaultPolicy()
	if raw := strings.TrimSpace(c.QueryParam("policy")); raw != "" {
		parsed, err := models.ParseActiveOrdersPolicy(raw)
		if err != nil {
			return common.SendValidationError(c, "policy", err.Error())
		}
		policy = parsed
	}

	active, err := h.orderService.ListActiveOrders(c.Request().Context(), orgID, policy)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list active orders")
	}
	return c.JSON(http.StatusOK, active)
}

// ListTodayBills handles GET /orders/today-bills
func (h *OrderHandlers) ListTodayBills(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	bills, err := h.orderService.ListTodayBills(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list today's bills")
	}
	return c.JSON(http.StatusOK, bills)
}

// GetReceipt handles GET /orders/:id/receipt and streams a PDF
func (h *OrderHandlers) GetReceipt(c echo.Context) error {
	userID, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "order_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	ctx := c.Request().Context()
	order, err := h.orderService.GetOrder(ctx, orgID, id)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to get order")
	}

	orgName := ""
	if user, err := h.userService.GetProfile(ctx, userID); err == nil {
		orgName = user.OrganizationName
	}

	pdf, err := h.receiptService.RenderReceipt(order, orgName)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to render receipt")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=receipt-%s.pdf", order.ID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
