package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/logging"
	"restobill/internal/models"
)

func newAside() *caching.Aside {
	return caching.NewAside(caching.NewNoopCache(), logging.Discard(), 0)
}

func TestTableService_CreateDefaultsCapacity(t *testing.T) {
	repo := &MockTableRepository{}
	repo.Test(t)
	defer repo.AssertExpectations(t)
	svc := NewTableService(repo, newAside(), time.Minute)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Table")).Return(nil)

	table, err := svc.CreateTable(ctx, "org-1", &CreateTableRequest{TableNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, table.Capacity)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
}

func TestTableService_DuplicateNumberConflicts(t *testing.T) {
	repo := &MockTableRepository{}
	svc := NewTableService(repo, newAside(), time.Minute)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Table")).Return(common.Conflict("table number already exists"))

	_, err := svc.CreateTable(ctx, "org-1", &CreateTableRequest{TableNumber: 3, Capacity: 2})
	assert.Equal(t, 409, common.StatusFor(err))
}

func TestTableService_DeleteOccupiedRejected(t *testing.T) {
	repo := &MockTableRepository{}
	svc := NewTableService(repo, newAside(), time.Minute)
	ctx := context.Background()

	repo.On("GetByID", ctx, "org-1", "t-1").Return(&models.Table{ID: "t-1", Status: models.TableStatusOccupied}, nil)

	err := svc.DeleteTable(ctx, "org-1", "t-1")
	assert.Equal(t, 400, common.StatusFor(err))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestTableService_MarkAvailableClearsOrder(t *testing.T) {
	repo := &MockTableRepository{}
	svc := NewTableService(repo, newAside(), time.Minute)
	ctx := context.Background()

	table := &models.Table{ID: "t-1", OrganizationID: "org-1", Status: models.TableStatusOccupied, CurrentOrderID: strPtr("o-1")}
	repo.On("GetByID", ctx, "org-1", "t-1").Return(table, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(t *models.Table) bool {
		return t.Status == models.TableStatusAvailable && t.CurrentOrderID == nil
	})).Return(nil)

	status := models.TableStatusAvailable
	updated, err := svc.UpdateTable(ctx, "org-1", "t-1", &UpdateTableRequest{Status: &status})
	require.NoError(t, err)
	assert.Nil(t, updated.CurrentOrderID)
	repo.AssertExpectations(t)
}
