package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/logging"
	"restobill/internal/models"
)

type recordingFeed struct {
	messages []string
}

func (f *recordingFeed) Broadcast(orgID, messageType string, data interface{}) {
	f.messages = append(f.messages, orgID+":"+messageType)
}

type OrderServiceTestSuite struct {
	suite.Suite
	orderRepo *MockOrderRepository
	tableRepo *MockTableRepository
	redis     *miniredis.Miniredis
	feed      *recordingFeed
	service   *orderService
	ctx       context.Context
	now       time.Time
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.orderRepo = &MockOrderRepository{}
	suite.tableRepo = &MockTableRepository{}
	suite.orderRepo.Test(suite.T())
	suite.tableRepo.Test(suite.T())

	suite.redis = miniredis.RunT(suite.T())
	client := redis.NewClient(&redis.Options{Addr: suite.redis.Addr()})
	suite.T().Cleanup(func() { _ = client.Close() })

	logger := logging.Discard()
	aside := caching.NewAside(caching.NewRedisCacheFromClient(client), logger, time.Second)
	suite.feed = &recordingFeed{}
	notifier := NewOrderNotifier(nil, suite.feed, logger)

	svc := NewOrderService(suite.orderRepo, suite.tableRepo, aside, notifier,
		OrderCacheTTLs{ActiveOrders: 2 * time.Minute, TodayBills: 5 * time.Minute},
		models.ActiveOrdersAllOpen, logger)
	suite.service = svc.(*orderService)

	// 2024-01-15 23:30 IST
	suite.now = time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	suite.service.now = func() time.Time { return suite.now }
	suite.ctx = context.Background()
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.orderRepo.AssertExpectations(suite.T())
	suite.tableRepo.AssertExpectations(suite.T())
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (suite *OrderServiceTestSuite) TestCreateOrder_ComputesTotals() {
	req := &CreateOrderRequest{
		Items: []models.OrderItem{
			{Name: "Paneer Tikka", Price: 50, Quantity: 2},
			{Name: "Lassi", Price: 30, Quantity: 1},
		},
		Discount: 10,
		Tax:      floatPtr(12),
	}

	suite.orderRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := suite.service.CreateOrder(suite.ctx, "org-1", "user-1", req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 130.0, order.Subtotal)
	assert.Equal(suite.T(), 132.0, order.Total)
	assert.Equal(suite.T(), 132.0, order.BalanceAmount)
	assert.Equal(suite.T(), models.OrderStatusPending, order.Status)
	assert.Equal(suite.T(), "org-1", order.OrganizationID)
	assert.Equal(suite.T(), []string{"org-1:order.created"}, suite.feed.messages)
}

func (suite *OrderServiceTestSuite) TestCreateOrder_RejectsTotalMismatch() {
	req := &CreateOrderRequest{
		Items:    []models.OrderItem{{Name: "Thali", Price: 130, Quantity: 1}},
		Discount: 10,
		Tax:      floatPtr(12),
		Total:    floatPtr(150),
	}

	order, err := suite.service.CreateOrder(suite.ctx, "org-1", "user-1", req)
	assert.Nil(suite.T(), order)
	var vErr *common.ValidationError
	require.ErrorAs(suite.T(), err, &vErr)
	assert.Contains(suite.T(), vErr.Message, "expected 132.00, got 150.00")
}

func (suite *OrderServiceTestSuite) TestCreateOrder_RejectsEmptyItems() {
	_, err := suite.service.CreateOrder(suite.ctx, "org-1", "user-1", &CreateOrderRequest{})
	var vErr *common.ValidationError
	require.ErrorAs(suite.T(), err, &vErr)
	assert.Equal(suite.T(), "items", vErr.Field)
}

func (suite *OrderServiceTestSuite) TestCreateOrder_OccupiesTable() {
	table := &models.Table{ID: "t-1", OrganizationID: "org-1", TableNumber: 4}
	req := &CreateOrderRequest{
		TableID: strPtr("t-1"),
		Items:   []models.OrderItem{{Name: "Dosa", Price: 80, Quantity: 1}},
	}

	suite.tableRepo.On("GetByID", suite.ctx, "org-1", "t-1").Return(table, nil)
	suite.orderRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Order")).Return(nil)
	suite.tableRepo.On("Occupy", suite.ctx, "org-1", "t-1", mock.AnythingOfType("string")).Return(nil)

	order, err := suite.service.CreateOrder(suite.ctx, "org-1", "user-1", req)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), order.TableNumber)
	assert.Equal(suite.T(), 4, *order.TableNumber)
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus_InvalidTransition() {
	order := &models.Order{ID: "o-1", OrganizationID: "org-1", Status: models.OrderStatusCancelled}
	suite.orderRepo.On("GetByID", suite.ctx, "org-1", "o-1").Return(order, nil)

	_, err := suite.service.UpdateOrderStatus(suite.ctx, "org-1", "o-1", models.OrderStatusPending)
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "cannot change status from cancelled to pending")
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus_CompletedReleasesTable() {
	order := &models.Order{ID: "o-1", OrganizationID: "org-1", Status: models.OrderStatusPreparing, TableID: strPtr("t-1")}
	suite.orderRepo.On("GetByID", suite.ctx, "org-1", "o-1").Return(order, nil)
	suite.orderRepo.On("UpdateStatus", suite.ctx, "org-1", "o-1", models.OrderStatusCompleted).Return(nil)
	suite.tableRepo.On("Release", suite.ctx, "org-1", "t-1", "o-1").Return(true, nil)

	updated, err := suite.service.UpdateOrderStatus(suite.ctx, "org-1", "o-1", models.OrderStatusCompleted)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusCompleted, updated.Status)
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus_PrepaidOrderSettlesAsPaid() {
	order := &models.Order{ID: "o-1", OrganizationID: "org-1", Status: models.OrderStatusPreparing, Total: 80, PaymentReceived: 80}
	suite.orderRepo.On("GetByID", suite.ctx, "org-1", "o-1").Return(order, nil)
	suite.orderRepo.On("UpdateStatus", suite.ctx, "org-1", "o-1", models.OrderStatusPaid).Return(nil)

	updated, err := suite.service.UpdateOrderStatus(suite.ctx, "org-1", "o-1", models.OrderStatusCompleted)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusPaid, updated.Status)
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus_UnpaidOrderStaysCompleted() {
	order := &models.Order{ID: "o-1", OrganizationID: "org-1", Status: models.OrderStatusPending, Total: 80, PaymentReceived: 30, BalanceAmount: 50}
	suite.orderRepo.On("GetByID", suite.ctx, "org-1", "o-1").Return(order, nil)
	suite.orderRepo.On("UpdateStatus", suite.ctx, "org-1", "o-1", models.OrderStatusCompleted).Return(nil)

	updated, err := suite.service.UpdateOrderStatus(suite.ctx, "org-1", "o-1", models.OrderStatusCompleted)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusCompleted, updated.Status)
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_RecomputesCreditFlag() {
	order := &models.Order{
		ID: "o-1", OrganizationID: "org-1", Status: models.OrderStatusPreparing,
		Items:    []models.OrderItem{{Name: "Dosa", Price: 100, Quantity: 1}},
		Subtotal: 100, Total: 100, PaymentReceived: 100,
	}
	suite.orderRepo.On("GetByID", suite.ctx, "org-1", "o-1").Return(order, nil)
	suite.orderRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Order")).Return(nil)

	items := []models.OrderItem{{Name: "Dosa", Price: 100, Quantity: 1}, {Name: "Filter Coffee", Price: 50, Quantity: 1}}
	updated, err := suite.service.UpdateOrder(suite.ctx, "org-1", "o-1", &UpdateOrderRequest{Items: &items})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 150.0, updated.Total)
	assert.Equal(suite.T(), 50.0, updated.BalanceAmount)
	assert.True(suite.T(), updated.IsCredit)

	discount := 50.0
	updated, err = suite.service.UpdateOrder(suite.ctx, "org-1", "o-1", &UpdateOrderRequest{Discount: &discount})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 100.0, updated.Total)
	assert.Zero(suite.T(), updated.BalanceAmount)
	assert.False(suite.T(), updated.IsCredit)
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_ConcurrentPaymentConflicts() {
	order := &models.Order{ID: "o-1", OrganizationID: "org-1", Status: models.OrderStatusPreparing, Subtotal: 100, Total: 100}
	suite.orderRepo.On("GetByID", suite.ctx, "org-1", "o-1").Return(order, nil)
	suite.orderRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Order")).
		Return(common.Conflict("order changed while it was being updated, retry"))

	_, err := suite.service.UpdateOrder(suite.ctx, "org-1", "o-1", &UpdateOrderRequest{Notes: strPtr("no onions")})
	assert.Equal(suite.T(), 409, common.StatusFor(err))
}

func (suite *OrderServiceTestSuite) TestUpdateOrder_TerminalIsImmutable() {
	order := &models.Order{ID: "o-1", OrganizationID: "org-1", Status: models.OrderStatusPaid}
	suite.orderRepo.On("GetByID", suite.ctx, "org-1", "o-1").Return(order, nil)

	_, err := suite.service.UpdateOrder(suite.ctx, "org-1", "o-1", &UpdateOrderRequest{Notes: strPtr("late")})
	assert.Equal(suite.T(), 400, common.StatusFor(err))
}

func (suite *OrderServiceTestSuite) TestListActiveOrders_ServedFromCacheUntilInvalidated() {
	todayStart := common.TodayStartUTC(suite.now)
	orders := []*models.Order{{ID: "o-1", OrganizationID: "org-1", Status: models.OrderStatusPending}}
	suite.orderRepo.On("ListActive", mock.Anything, "org-1", models.ActiveOrdersAllOpen, todayStart).Return(orders, nil).Twice()

	first, err := suite.service.ListActiveOrders(suite.ctx, "org-1", "")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, first.Count)
	assert.Equal(suite.T(), models.ActiveOrdersAllOpen, first.Policy)

	second, err := suite.service.ListActiveOrders(suite.ctx, "org-1", models.ActiveOrdersAllOpen)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), first, second)
	assert.True(suite.T(), suite.redis.Exists(caching.ActiveOrdersKey("org-1", "all_open")))

	suite.service.invalidate(suite.ctx, "org-1", false)
	assert.False(suite.T(), suite.redis.Exists(caching.ActiveOrdersKey("org-1", "all_open")))

	_, err = suite.service.ListActiveOrders(suite.ctx, "org-1", "")
	require.NoError(suite.T(), err)
}

func (suite *OrderServiceTestSuite) TestListActiveOrders_TodayOnlyRollsOverAtMidnight() {
	// 2024-01-15 23:59 IST
	suite.now = time.Date(2024, 1, 15, 18, 29, 0, 0, time.UTC)
	lateOrder := &models.Order{
		ID:             "o-late",
		OrganizationID: "org-1",
		Status:         models.OrderStatusPending,
		CreatedAt:      time.Date(2024, 1, 15, 17, 30, 0, 0, time.UTC),
	}
	suite.orderRepo.On("ListActive", mock.Anything, "org-1", models.ActiveOrdersTodayOnly,
		time.Date(2024, 1, 14, 18, 30, 0, 0, time.UTC)).Return([]*models.Order{lateOrder}, nil).Once()

	before, err := suite.service.ListActiveOrders(suite.ctx, "org-1", models.ActiveOrdersTodayOnly)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, before.Count)
	assert.True(suite.T(), suite.redis.Exists(caching.ActiveOrdersTodayKey("org-1", "2024-01-15")))

	// 2024-01-16 00:01 IST, well inside the cache TTL
	suite.now = time.Date(2024, 1, 15, 18, 31, 0, 0, time.UTC)
	suite.orderRepo.On("ListActive", mock.Anything, "org-1", models.ActiveOrdersTodayOnly,
		time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)).Return([]*models.Order{}, nil).Once()

	after, err := suite.service.ListActiveOrders(suite.ctx, "org-1", models.ActiveOrdersTodayOnly)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, after.Count)
	assert.Empty(suite.T(), after.Orders)
}

func (suite *OrderServiceTestSuite) TestListTodayBills_Summary() {
	todayStart := common.TodayStartUTC(suite.now)
	orders := []*models.Order{
		{ID: "o-1", Total: 132, PaymentReceived: 132},
		{ID: "o-2", Total: 80.5, PaymentReceived: 50, BalanceAmount: 30.5},
	}
	suite.orderRepo.On("ListTodayBills", mock.Anything, "org-1", todayStart).Return(orders, nil).Once()

	bills, err := suite.service.ListTodayBills(suite.ctx, "org-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2024-01-15", bills.BusinessDate)
	assert.Equal(suite.T(), time.Date(2024, 1, 14, 18, 30, 0, 0, time.UTC), bills.TodayStartUTC)
	assert.Equal(suite.T(), 2, bills.Count)
	assert.Equal(suite.T(), 212.5, bills.TotalAmount)
	assert.Equal(suite.T(), 182.0, bills.PaymentReceived)
	assert.Equal(suite.T(), 30.5, bills.BalanceAmount)
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }
