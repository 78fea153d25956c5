package services

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"restobill/internal/models"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, orgID, id string) (*models.Order, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orgID, id, status string) error {
	return m.Called(ctx, orgID, id, status).Error(0)
}

func (m *MockOrderRepository) ApplyPayment(ctx context.Context, orgID, id string, amount float64, at time.Time) (*models.Order, error) {
	args := m.Called(ctx, orgID, id, amount, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) RevertPayment(ctx context.Context, orgID, id string, amount float64, at time.Time) error {
	return m.Called(ctx, orgID, id, amount, at).Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, orgID, id string) error {
	return m.Called(ctx, orgID, id).Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, orgID string, filter models.OrderFilter) ([]*models.Order, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListActive(ctx context.Context, orgID string, policy models.ActiveOrdersPolicy, todayStart time.Time) ([]*models.Order, error) {
	args := m.Called(ctx, orgID, policy, todayStart)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListTodayBills(ctx context.Context, orgID string, todayStart time.Time) ([]*models.Order, error) {
	args := m.Called(ctx, orgID, todayStart)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SumTodayRevenue(ctx context.Context, todayStart time.Time) (float64, error) {
	args := m.Called(ctx, todayStart)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockOrderRepository) ListStaleActive(ctx context.Context, before time.Time) ([]*models.Order, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTableRepository struct {
	mock.Mock
}

func (m *MockTableRepository) Create(ctx context.Context, table *models.Table) error {
	return m.Called(ctx, table).Error(0)
}

func (m *MockTableRepository) GetByID(ctx context.Context, orgID, id string) (*models.Table, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableRepository) List(ctx context.Context, orgID string) ([]*models.Table, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]*models.Table), args.Error(1)
}

func (m *MockTableRepository) Update(ctx context.Context, table *models.Table) error {
	return m.Called(ctx, table).Error(0)
}

func (m *MockTableRepository) Delete(ctx context.Context, orgID, id string) error {
	return m.Called(ctx, orgID, id).Error(0)
}

func (m *MockTableRepository) Occupy(ctx context.Context, orgID, id, orderID string) error {
	return m.Called(ctx, orgID, id, orderID).Error(0)
}

func (m *MockTableRepository) Release(ctx context.Context, orgID, id, orderID string) (bool, error) {
	args := m.Called(ctx, orgID, id, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTableRepository) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTableRepository) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockMenuRepository) GetByID(ctx context.Context, orgID, id string) (*models.MenuItem, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) List(ctx context.Context, orgID string, filter models.MenuFilter) ([]*models.MenuItem, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]*models.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) Update(ctx context.Context, item *models.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockMenuRepository) SetImage(ctx context.Context, orgID, id, key, url string) error {
	return m.Called(ctx, orgID, id, key, url).Error(0)
}

func (m *MockMenuRepository) Delete(ctx context.Context, orgID, id string) error {
	return m.Called(ctx, orgID, id).Error(0)
}

func (m *MockMenuRepository) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMenuRepository) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByLogin(ctx context.Context, identifierLower string) (*models.User, error) {
	args := m.Called(ctx, identifierLower)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetOrganizationAdmin(ctx context.Context, orgID string) (*models.User, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, usernameLower, emailLower string) (bool, error) {
	args := m.Called(ctx, usernameLower, emailLower)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByReferralCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter models.UserFilter, now time.Time) ([]*models.User, int64, error) {
	args := m.Called(ctx, filter, now)
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ListByOrganization(ctx context.Context, orgID string) ([]*models.User, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateSubscription(ctx context.Context, id string, active bool, expiresAt *time.Time) error {
	return m.Called(ctx, id, active, expiresAt).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) List(ctx context.Context, orgID string, orderID *string) ([]*models.Payment, error) {
	args := m.Called(ctx, orgID, orderID)
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

type MockSupportTicketRepository struct {
	mock.Mock
}

func (m *MockSupportTicketRepository) Create(ctx context.Context, ticket *models.SupportTicket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *MockSupportTicketRepository) GetByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupportTicket), args.Error(1)
}

func (m *MockSupportTicketRepository) ListByOrganization(ctx context.Context, orgID string) ([]*models.SupportTicket, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]*models.SupportTicket), args.Error(1)
}

func (m *MockSupportTicketRepository) List(ctx context.Context, status string, skip, limit int) ([]*models.SupportTicket, int64, error) {
	args := m.Called(ctx, status, skip, limit)
	return args.Get(0).([]*models.SupportTicket), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupportTicketRepository) UpdateStatus(ctx context.Context, id, status string, response *string) error {
	return m.Called(ctx, id, status, response).Error(0)
}

func (m *MockSupportTicketRepository) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	return m.Called(ctx, auditLog).Error(0)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

type MockMenuImageStore struct {
	mock.Mock
}

func (m *MockMenuImageStore) Put(ctx context.Context, orgID, itemID string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, orgID, itemID, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockMenuImageStore) SignedURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockMenuImageStore) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
