package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"restobill/internal/models"
	"restobill/internal/services"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, orgID, userID string, req *services.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, orgID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orgID, id string) (*models.Order, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, orgID string, filter models.OrderFilter) ([]*models.Order, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrder(ctx context.Context, orgID, id string, req *services.UpdateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, orgID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orgID, id, status string) (*models.Order, error) {
	args := m.Called(ctx, orgID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, orgID, id string) error {
	return m.Called(ctx, orgID, id).Error(0)
}

func (m *MockOrderService) ListActiveOrders(ctx context.Context, orgID string, policy models.ActiveOrdersPolicy) (*models.ActiveOrders, error) {
	args := m.Called(ctx, orgID, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActiveOrders), args.Error(1)
}

func (m *MockOrderService) ListTodayBills(ctx context.Context, orgID string) (*models.TodayBills, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TodayBills), args.Error(1)
}

func (m *MockOrderService) DefaultPolicy() models.ActiveOrdersPolicy {
	return m.Called().Get(0).(models.ActiveOrdersPolicy)
}

type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) RenderReceipt(order *models.Order, organizationName string) ([]byte, error) {
	args := m.Called(order, organizationName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) CreateStaff(ctx context.Context, adminID string, req *services.CreateStaffRequest) (*models.User, error) {
	args := m.Called(ctx, adminID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListStaff(ctx context.Context, orgID string) ([]*models.User, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) DeleteStaff(ctx context.Context, orgID, staffID string) error {
	return m.Called(ctx, orgID, staffID).Error(0)
}

type MockTableService struct {
	mock.Mock
}

func (m *MockTableService) CreateTable(ctx context.Context, orgID string, req *services.CreateTableRequest) (*models.Table, error) {
	args := m.Called(ctx, orgID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableService) GetTable(ctx context.Context, orgID, id string) (*models.Table, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableService) ListTables(ctx context.Context, orgID string) ([]*models.Table, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Table), args.Error(1)
}

func (m *MockTableService) UpdateTable(ctx context.Context, orgID, id string, req *services.UpdateTableRequest) (*models.Table, error) {
	args := m.Called(ctx, orgID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableService) DeleteTable(ctx context.Context, orgID, id string) error {
	return m.Called(ctx, orgID, id).Error(0)
}
