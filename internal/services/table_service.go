package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/repositories"
)

type TableService interface {
	CreateTable(ctx context.Context, orgID string, req *CreateTableRequest) (*models.Table, error)
	GetTable(ctx context.Context, orgID, id string) (*models.Table, error)
	ListTables(ctx context.Context, orgID string) ([]*models.Table, error)
	UpdateTable(ctx context.Context, orgID, id string, req *UpdateTableRequest) (*models.Table, error)
	DeleteTable(ctx context.Context, orgID, id string) error
}

type CreateTableRequest struct {
	TableNumber int `json:"table_number"`
	Capacity    int `json:"capacity"`
}

type UpdateTableRequest struct {
	TableNumber *int    `json:"table_number"`
	Capacity    *int    `json:"capacity"`
	Status      *string `json:"status"`
}

const defaultTableCapacity = 4

type tableService struct {
	tableRepo repositories.TableRepository
	cache     *caching.Aside
	ttl       time.Duration
}

func NewTableService(tableRepo repositories.TableRepository, cache *caching.Aside, ttl time.Duration) TableService {
	return &tableService{tableRepo: tableRepo, cache: cache, ttl: ttl}
}

func (s *tableService) CreateTable(ctx context.Context, orgID string, req *CreateTableRequest) (*models.Table, error) {
	if req.TableNumber <= 0 {
		return nil, common.NewValidationError("table_number", "table number must be greater than 0")
	}
	if req.Capacity < 0 {
		return nil, common.NewValidationError("capacity", "capacity cannot be negative")
	}
	capacity := req.Capacity
	if capacity == 0 {
		capacity = defaultTableCapacity
	}

	now := time.Now().UTC()
	table := &models.Table{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		TableNumber:    req.TableNumber,
		Capacity:       capacity,
		Status:         models.TableStatusAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.tableRepo.Create(ctx, table); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, caching.TablesKey(orgID))
	return table, nil
}

func (s *tableService) GetTable(ctx context.Context, orgID, id string) (*models.Table, error) {
	return s.tableRepo.GetByID(ctx, orgID, id)
}

func (s *tableService) ListTables(ctx context.Context, orgID string) ([]*models.Table, error) {
	var tables []*models.Table
	_, err := s.cache.Load(ctx, caching.TablesKey(orgID), s.ttl, &tables, func(ctx context.Context) (interface{}, error) {
		return s.tableRepo.List(ctx, orgID)
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *tableService) UpdateTable(ctx context.Context, orgID, id string, req *UpdateTableRequest) (*models.Table, error) {
	table, err := s.tableRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.TableNumber != nil {
		if *req.TableNumber <= 0 {
			return nil, common.NewValidationError("table_number", "table number must be greater than 0")
		}
		table.TableNumber = *req.TableNumber
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, common.NewValidationError("capacity", "capacity must be greater than 0")
		}
		table.Capacity = *req.Capacity
	}
	if req.Status != nil {
		switch *req.Status {
		case models.TableStatusAvailable:
			table.CurrentOrderID = nil
		case models.TableStatusOccupied:
		default:
			return nil, common.NewValidationError("status", "status must be one of: available, occupied")
		}
		table.Status = *req.Status
	}
	table.UpdatedAt = time.Now().UTC()

	if err := s.tableRepo.Update(ctx, table); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, caching.TablesKey(orgID))
	return table, nil
}

func (s *tableService) DeleteTable(ctx context.Context, orgID, id string) error {
	table, err := s.tableRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if table.Status == models.TableStatusOccupied {
		return common.NewValidationError("status", "cannot delete an occupied table")
	}
	if err := s.tableRepo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, caching.TablesKey(orgID))
	return nil
}
