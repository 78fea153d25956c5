package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/events"
	"restobill/internal/models"
	"restobill/internal/repositories"
)

type OrderService interface {
	CreateOrder(ctx context.Context, orgID, userID string, req *CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orgID, id string) (*models.Order, error)
	ListOrders(ctx context.Context, orgID string, filter models.OrderFilter) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, orgID, id string, req *UpdateOrderRequest) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orgID, id, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, orgID, id string) error

	// Cached, date-bounded views
	ListActiveOrders(ctx context.Context, orgID string, policy models.ActiveOrdersPolicy) (*models.ActiveOrders, error)
	ListTodayBills(ctx context.Context, orgID string) (*models.TodayBills, error)
	DefaultPolicy() models.ActiveOrdersPolicy
}

type CreateOrderRequest struct {
	TableID       *string            `json:"table_id"`
	CustomerName  *string            `json:"customer_name"`
	CustomerPhone *string            `json:"customer_phone"`
	Items         []models.OrderItem `json:"items"`
	Subtotal      *float64           `json:"subtotal"`
	TaxRate       float64            `json:"tax_rate"`
	Tax           *float64           `json:"tax"`
	Discount      float64            `json:"discount"`
	Total         *float64           `json:"total"`
	PaymentMethod *string            `json:"payment_method"`
	Notes         *string            `json:"notes"`
}

type UpdateOrderRequest struct {
	CustomerName  *string             `json:"customer_name"`
	CustomerPhone *string             `json:"customer_phone"`
	Items         *[]models.OrderItem `json:"items"`
	Subtotal      *float64            `json:"subtotal"`
	TaxRate       *float64            `json:"tax_rate"`
	Tax           *float64            `json:"tax"`
	Discount      *float64            `json:"discount"`
	Total         *float64            `json:"total"`
	PaymentMethod *string             `json:"payment_method"`
	Notes         *string             `json:"notes"`
}

// OrderCacheTTLs holds the per-view cache lifetimes
type OrderCacheTTLs struct {
	ActiveOrders time.Duration
	TodayBills   time.Duration
}

type orderService struct {
	orderRepo repositories.OrderRepository
	tableRepo repositories.TableRepository
	cache     *caching.Aside
	notifier  *OrderNotifier
	ttls      OrderCacheTTLs
	policy    models.ActiveOrdersPolicy
	logger    *logrus.Entry
	now       func() time.Time
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	tableRepo repositories.TableRepository,
	cache *caching.Aside,
	notifier *OrderNotifier,
	ttls OrderCacheTTLs,
	policy models.ActiveOrdersPolicy,
	logger *logrus.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		tableRepo: tableRepo,
		cache:     cache,
		notifier:  notifier,
		ttls:      ttls,
		policy:    policy,
		logger:    logger.WithField("component", "order_service"),
		now:       time.Now,
	}
}

func (s *orderService) DefaultPolicy() models.ActiveOrdersPolicy {
	return s.policy
}

func validateItems(items []models.OrderItem) error {
	if len(items) == 0 {
		return common.NewValidationError("items", "order must contain at least one item")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return common.NewValidationError(fmt.Sprintf("items[%d].name", i), "name is required")
		}
		if item.Quantity <= 0 {
			return common.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "quantity must be greater than 0")
		}
		if item.Price < 0 {
			return common.NewValidationError(fmt.Sprintf("items[%d].price", i), "price cannot be negative")
		}
	}
	return nil
}

func itemsSubtotal(items []models.OrderItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.LineTotal()
	}
	return common.RoundMoney(sum)
}

// computeTax derives tax from the rate when the caller did not send one
func computeTax(subtotal, discount, taxRate float64) float64 {
	return common.RoundMoney((subtotal - discount) * taxRate / 100)
}

func balanceFor(total, received float64) float64 {
	return common.RoundMoney(math.Max(total-received, 0))
}

// creditFor marks an order partly paid with money still owed
func creditFor(balance, received float64) bool {
	return balance > 0 && received > 0
}

func (s *orderService) CreateOrder(ctx context.Context, orgID, userID string, req *CreateOrderRequest) (*models.Order, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	if req.PaymentMethod != nil && !models.ValidPaymentMethod(*req.PaymentMethod) {
		return nil, common.NewValidationError("payment_method", "payment method must be one of: cash, card, upi, credit")
	}

	subtotal := itemsSubtotal(req.Items)
	if req.Subtotal != nil {
		subtotal = *req.Subtotal
	}
	tax := computeTax(subtotal, req.Discount, req.TaxRate)
	if req.Tax != nil {
		tax = *req.Tax
	}
	total := common.ExpectedTotal(subtotal, req.Discount, tax)
	if req.Total != nil {
		total = *req.Total
	}
	if err := common.ValidateBilling(subtotal, req.Discount, tax, req.TaxRate, total); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Items:          req.Items,
		Subtotal:       common.RoundMoney(subtotal),
		TaxRate:        req.TaxRate,
		Tax:            common.RoundMoney(tax),
		Discount:       common.RoundMoney(req.Discount),
		Total:          common.RoundMoney(total),
		Status:         models.OrderStatusPending,
		BalanceAmount:  common.RoundMoney(total),
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
		CreatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if req.TableID != nil && *req.TableID != "" {
		table, err := s.tableRepo.GetByID(ctx, orgID, *req.TableID)
		if err != nil {
			return nil, err
		}
		order.TableID = &table.ID
		order.TableNumber = &table.TableNumber
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if order.TableID != nil {
		if err := s.tableRepo.Occupy(ctx, orgID, *order.TableID, order.ID); err != nil {
			s.logger.WithError(err).WithField("table_id", *order.TableID).Warn("failed to mark table occupied")
		}
	}

	s.invalidate(ctx, orgID, order.TableID != nil)
	s.notifier.Notify(ctx, events.OrderCreated, order, "")
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orgID, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, orgID, id)
}

func (s *orderService) ListOrders(ctx context.Context, orgID string, filter models.OrderFilter) ([]*models.Order, error) {
	if filter.Status != nil && !models.ValidOrderStatus(*filter.Status) {
		return nil, common.NewValidationError("status", "unknown order status %q", *filter.Status)
	}
	return s.orderRepo.List(ctx, orgID, filter)
}

func (s *orderService) UpdateOrder(ctx context.Context, orgID, id string, req *UpdateOrderRequest) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalStatus(order.Status) {
		return nil, common.NewValidationError("status", "order is %s and can no longer be modified", order.Status)
	}

	itemsChanged := false
	if req.Items != nil {
		if err := validateItems(*req.Items); err != nil {
			return nil, err
		}
		order.Items = *req.Items
		itemsChanged = true
	}
	if req.Subtotal != nil {
		order.Subtotal = *req.Subtotal
	} else if itemsChanged {
		order.Subtotal = itemsSubtotal(order.Items)
	}
	if req.Discount != nil {
		order.Discount = *req.Discount
	}
	if req.TaxRate != nil {
		order.TaxRate = *req.TaxRate
	}
	amountsChanged := itemsChanged || req.Subtotal != nil || req.Discount != nil || req.TaxRate != nil
	if req.Tax != nil {
		order.Tax = *req.Tax
	} else if amountsChanged {
		order.Tax = computeTax(order.Subtotal, order.Discount, order.TaxRate)
	}
	if req.Total != nil {
		order.Total = *req.Total
	} else if amountsChanged || req.Tax != nil {
		order.Total = common.ExpectedTotal(order.Subtotal, order.Discount, order.Tax)
	}
	if err := common.ValidateBilling(order.Subtotal, order.Discount, order.Tax, order.TaxRate, order.Total); err != nil {
		return nil, err
	}

	if req.PaymentMethod != nil {
		if !models.ValidPaymentMethod(*req.PaymentMethod) {
			return nil, common.NewValidationError("payment_method", "payment method must be one of: cash, card, upi, credit")
		}
		order.PaymentMethod = req.PaymentMethod
	}
	if req.CustomerName != nil {
		order.CustomerName = req.CustomerName
	}
	if req.CustomerPhone != nil {
		order.CustomerPhone = req.CustomerPhone
	}
	if req.Notes != nil {
		order.Notes = req.Notes
	}

	order.Subtotal = common.RoundMoney(order.Subtotal)
	order.Tax = common.RoundMoney(order.Tax)
	order.Discount = common.RoundMoney(order.Discount)
	order.Total = common.RoundMoney(order.Total)
	order.BalanceAmount = balanceFor(order.Total, order.PaymentReceived)
	order.IsCredit = creditFor(order.BalanceAmount, order.PaymentReceived)
	order.UpdatedAt = s.now().UTC()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.invalidate(ctx, orgID, false)
	s.notifier.Notify(ctx, events.OrderUpdated, order, "")
	return order, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orgID, id, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, common.NewValidationError("status", "unknown order status %q", status)
	}

	order, err := s.orderRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	previous := order.Status
	if !models.CanTransition(previous, status) {
		return nil, common.NewValidationError("status", "cannot change status from %s to %s", previous, status)
	}

	// prepaid orders settle as soon as they are completed
	if status == models.OrderStatusCompleted && order.PaymentReceived > 0 && order.BalanceAmount <= 0 {
		status = models.OrderStatusPaid
	}

	if err := s.orderRepo.UpdateStatus(ctx, orgID, id, status); err != nil {
		return nil, err
	}
	order.Status = status
	order.UpdatedAt = s.now().UTC()

	tableReleased := false
	if models.IsTerminalStatus(status) && order.TableID != nil {
		tableReleased = s.releaseTable(ctx, order)
	}

	s.invalidate(ctx, orgID, tableReleased)
	s.notifier.Notify(ctx, events.OrderStatusChanged, order, previous)
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orgID, id string) error {
	order, err := s.orderRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, orgID, id); err != nil {
		return err
	}

	tableReleased := false
	if order.TableID != nil {
		tableReleased = s.releaseTable(ctx, order)
	}
	s.invalidate(ctx, orgID, tableReleased)
	s.notifier.Notify(ctx, events.OrderDeleted, order, "")
	return nil
}

func (s *orderService) releaseTable(ctx context.Context, order *models.Order) bool {
	released, err := s.tableRepo.Release(ctx, order.OrganizationID, *order.TableID, order.ID)
	if err != nil {
		s.logger.WithError(err).WithField("table_id", *order.TableID).Warn("failed to release table")
		return false
	}
	return released
}

func (s *orderService) invalidate(ctx context.Context, orgID string, tables bool) {
	s.cache.InvalidatePrefix(ctx, caching.OrgOrdersPrefix(orgID))
	if tables {
		s.cache.Invalidate(ctx, caching.TablesKey(orgID))
	}
}

func (s *orderService) ListActiveOrders(ctx context.Context, orgID string, policy models.ActiveOrdersPolicy) (*models.ActiveOrders, error) {
	if policy == "" {
		policy = s.policy
	}
	now := s.now()
	todayStart := common.TodayStartUTC(now)
	key := caching.ActiveOrdersKey(orgID, string(policy))
	if policy == models.ActiveOrdersTodayOnly {
		key = caching.ActiveOrdersTodayKey(orgID, common.BusinessDate(now))
	}

	var out models.ActiveOrders
	_, err := s.cache.Load(ctx, key, s.ttls.ActiveOrders, &out,
		func(ctx context.Context) (interface{}, error) {
			orders, err := s.orderRepo.ListActive(ctx, orgID, policy, todayStart)
			if err != nil {
				return nil, err
			}
			return &models.ActiveOrders{Policy: policy, Orders: orders, Count: len(orders)}, nil
		})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *orderService) ListTodayBills(ctx context.Context, orgID string) (*models.TodayBills, error) {
	now := s.now()
	todayStart := common.TodayStartUTC(now)
	businessDate := common.BusinessDate(now)

	var out models.TodayBills
	_, err := s.cache.Load(ctx, caching.TodayBillsKey(orgID, businessDate), s.ttls.TodayBills, &out,
		func(ctx context.Context) (interface{}, error) {
			orders, err := s.orderRepo.ListTodayBills(ctx, orgID, todayStart)
			if err != nil {
				return nil, err
			}
			return summarizeBills(businessDate, todayStart, orders), nil
		})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func summarizeBills(businessDate string, todayStart time.Time, orders []*models.Order) *models.TodayBills {
	bills := &models.TodayBills{
		BusinessDate:  businessDate,
		TodayStartUTC: todayStart,
		Orders:        orders,
		Count:         len(orders),
	}
	for _, o := range orders {
		bills.TotalAmount += o.Total
		bills.PaymentReceived += o.PaymentReceived
		bills.BalanceAmount += o.BalanceAmount
	}
	bills.TotalAmount = common.RoundMoney(bills.TotalAmount)
	bills.PaymentReceived = common.RoundMoney(bills.PaymentReceived)
	bills.BalanceAmount = common.RoundMoney(bills.BalanceAmount)
	return bills
}
