package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/events"
	"restobill/internal/models"
	"restobill/internal/repositories"
)

type PaymentService interface {
	RecordPayment(ctx context.Context, orgID, userID, orderID string, req *RecordPaymentRequest) (*PaymentResult, error)
	ListPayments(ctx context.Context, orgID string, orderID *string) ([]*models.Payment, error)
}

type RecordPaymentRequest struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference *string `json:"reference"`
}

type PaymentResult struct {
	Payment *models.Payment `json:"payment"`
	Order   *models.Order   `json:"order"`
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	orderRepo   repositories.OrderRepository
	cache       *caching.Aside
	notifier    *OrderNotifier
	now         func() time.Time
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, orderRepo repositories.OrderRepository, cache *caching.Aside, notifier *OrderNotifier) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		cache:       cache,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, orgID, userID, orderID string, req *RecordPaymentRequest) (*PaymentResult, error) {
	if req.Amount <= 0 {
		return nil, common.NewValidationError("amount", "amount must be greater than 0")
	}
	if !models.ValidPaymentMethod(req.Method) {
		return nil, common.NewValidationError("method", "payment method must be one of: cash, card, upi, credit")
	}

	order, err := s.orderRepo.GetByID(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case order.Status == models.OrderStatusCancelled:
		return nil, common.NewValidationError("order_id", "cannot record payment for a cancelled order")
	case order.Status == models.OrderStatusPaid && order.BalanceAmount <= 0:
		return nil, common.NewValidationError("order_id", "order is already settled")
	}

	now := s.now().UTC()
	amount := common.RoundMoney(req.Amount)

	// charge the order first; a failed insert below reverts it
	applied, err := s.orderRepo.ApplyPayment(ctx, orgID, orderID, amount, now)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		OrderID:        orderID,
		Amount:         amount,
		Method:         req.Method,
		Reference:      req.Reference,
		RecordedBy:     userID,
		CreatedAt:      now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if revertErr := s.orderRepo.RevertPayment(ctx, orgID, orderID, amount, now); revertErr != nil {
			return nil, fmt.Errorf("failed to record payment: %w (order balance not restored: %v)", err, revertErr)
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, caching.OrgOrdersPrefix(orgID))
	s.notifier.Notify(ctx, events.OrderPaymentRecorded, applied, order.Status)
	return &PaymentResult{Payment: payment, Order: applied}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, orgID string, orderID *string) ([]*models.Payment, error) {
	return s.paymentRepo.List(ctx, orgID, orderID)
}
