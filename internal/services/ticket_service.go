package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/repositories"
)

type TicketService interface {
	CreateTicket(ctx context.Context, orgID, userID string, req *CreateTicketRequest) (*models.SupportTicket, error)
	ListOrganizationTickets(ctx context.Context, orgID string) ([]*models.SupportTicket, error)
	ListTickets(ctx context.Context, status string, skip, limit int) ([]*models.SupportTicket, int64, error)
	UpdateTicket(ctx context.Context, id string, req *UpdateTicketRequest) (*models.SupportTicket, error)
}

type CreateTicketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type UpdateTicketRequest struct {
	Status        string  `json:"status"`
	AdminResponse *string `json:"admin_response"`
}

const maxTicketSubjectLength = 200

type ticketService struct {
	ticketRepo repositories.SupportTicketRepository
}

func NewTicketService(ticketRepo repositories.SupportTicketRepository) TicketService {
	return &ticketService{ticketRepo: ticketRepo}
}

func (s *ticketService) CreateTicket(ctx context.Context, orgID, userID string, req *CreateTicketRequest) (*models.SupportTicket, error) {
	if err := common.ValidateRequiredString(req.Subject, "subject"); err != nil {
		return nil, err
	}
	if len(req.Subject) > maxTicketSubjectLength {
		return nil, common.NewValidationError("subject", "subject cannot exceed %d characters", maxTicketSubjectLength)
	}
	if err := common.ValidateRequiredString(req.Message, "message"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ticket := &models.SupportTicket{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		UserID:         userID,
		Subject:        strings.TrimSpace(req.Subject),
		Message:        strings.TrimSpace(req.Message),
		Status:         models.TicketStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) ListOrganizationTickets(ctx context.Context, orgID string) ([]*models.SupportTicket, error) {
	return s.ticketRepo.ListByOrganization(ctx, orgID)
}

func (s *ticketService) ListTickets(ctx context.Context, status string, skip, limit int) ([]*models.SupportTicket, int64, error) {
	if status != "" && !models.ValidTicketStatus(status) {
		return nil, 0, common.NewValidationError("status", "unknown ticket status %q", status)
	}
	skip, limit, err := common.ValidatePaginationParams(skip, limit)
	if err != nil {
		return nil, 0, err
	}
	return s.ticketRepo.List(ctx, status, skip, limit)
}

func (s *ticketService) UpdateTicket(ctx context.Context, id string, req *UpdateTicketRequest) (*models.SupportTicket, error) {
	if !models.ValidTicketStatus(req.Status) {
		return nil, common.NewValidationError("status", "status must be one of: open, in_progress, resolved, closed")
	}
	if err := s.ticketRepo.UpdateStatus(ctx, id, req.Status, req.AdminResponse); err != nil {
		return nil, err
	}
	return s.ticketRepo.GetByID(ctx, id)
}
