package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/repositories"
)

type AuditLogsService interface {
	// Record stores one audit entry
	Record(ctx context.Context, entry *models.AuditLog) error

	// ListAuditLogs returns entries newest first
	ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)

	// PurgeOrganization removes the trail of a deleted organization
	PurgeOrganization(ctx context.Context, orgID string) error

	Enabled() bool
}

const maxAuditLimit = 500

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
	logger        *logrus.Entry
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository, logger *logrus.Logger) AuditLogsService {
	return &auditLogsService{
		auditLogsRepo: auditLogsRepo,
		logger:        logger.WithField("component", "audit_logs_service"),
	}
}

func (s *auditLogsService) Enabled() bool { return true }

func (s *auditLogsService) Record(ctx context.Context, entry *models.AuditLog) error {
	if entry.Action == "" {
		return errors.New("action is required")
	}
	if entry.Resource == "" {
		return errors.New("resource is required")
	}
	return s.auditLogsRepo.Create(ctx, entry)
}

func (s *auditLogsService) ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	if err := ValidateAuditFilters(filters); err != nil {
		return nil, err
	}
	return s.auditLogsRepo.List(ctx, filters)
}

func (s *auditLogsService) PurgeOrganization(ctx context.Context, orgID string) error {
	n, err := s.auditLogsRepo.DeleteByOrganization(ctx, orgID)
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"organization_id": orgID, "deleted": n}).Info("audit trail purged")
	return nil
}

// ValidateAuditFilters clamps paging and rejects inverted date ranges
func ValidateAuditFilters(filters *models.AuditLogFilters) error {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Limit > maxAuditLimit {
		filters.Limit = maxAuditLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
		return common.NewValidationError("start_date", "start_date must be before end_date")
	}
	return nil
}

type noopAuditLogsService struct{}

// NewNoopAuditLogsService is used when no audit database is configured
func NewNoopAuditLogsService() AuditLogsService {
	return noopAuditLogsService{}
}

func (noopAuditLogsService) Enabled() bool { return false }

func (noopAuditLogsService) Record(context.Context, *models.AuditLog) error { return nil }

func (noopAuditLogsService) PurgeOrganization(context.Context, string) error { return nil }

func (noopAuditLogsService) ListAuditLogs(context.Context, *models.AuditLogFilters) ([]*models.AuditLog, error) {
	return []*models.AuditLog{}, nil
}
