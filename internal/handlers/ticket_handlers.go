package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restobill/internal/common"
	"restobill/internal/services"
)

// TicketHandlers serves the tenant side of support tickets
type TicketHandlers struct {
	ticketService services.TicketService
}

func NewTicketHandlers(ticketService services.TicketService) *TicketHandlers {
	return &TicketHandlers{ticketService: ticketService}
}

// CreateTicket handles POST /support-tickets
func (h *TicketHandlers) CreateTicket(c echo.Context) error {
	userID, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateTicketRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	ticket, err := h.ticketService.CreateTicket(c.Request().Context(), orgID, userID, &req)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to create ticket")
	}
	return c.JSON(http.StatusCreated, ticket)
}

// ListTickets handles GET /support-tickets
func (h *TicketHandlers) ListTickets(c echo.Context) error {
	_, orgID, ok := tenant(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	tickets, err := h.ticketService.ListOrganizationTickets(c.Request().Context(), orgID)
	if err != nil {
		return common.SendServiceError(c, err, "Failed to list tickets")
	}
	return c.JSON(http.StatusOK, tickets)
}
