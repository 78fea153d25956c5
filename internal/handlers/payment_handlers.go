package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/services"
)

// PaymentHandlers handles HTTP requests for order payments
type PaymentHandlers struct {
	paymentService services.PaymentService
}

func NewPaymentHandlers(paymentService services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{paymentService: paymentService}
}

// RecordPayment handles POST /orders/:id/payments
func (h *PaymentHandlers) RecordPayment(c echo.Context) error {
	userID, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := pathID(c, "order_id")
	if err != nil {
		return common.SendServiceError(c, err, "")
	}

	var req services.RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.paymentService.RecordPayment(c.Request().Context(), orgID, userID, orderID, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to record payment")
	}
	return c.JSON(http.StatusCreated, result)
}

// ListPayments handles GET /payments?order_id=
func (h *PaymentHandlers) ListPayments(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var orderID *string
	if raw := strings.TrimSpace(c.QueryParam("order_id")); raw != "" {
		id, err := common.ValidateID(raw, "order_id")
		if err != nil {
			return common.SendServiceError(c, err, "")
		}
		orderID = &id
	}

	payments, err := h.paymentService.ListPayments(c.Request().Context(), orgID, orderID)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list payments")
	}
	return c.JSON(http.StatusOK, payments)
}
