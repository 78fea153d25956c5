package models

import (
	"fmt"
	"time"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusCompleted = "completed"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// TerminalOrderStatuses are the statuses an order never leaves
var TerminalOrderStatuses = []string{OrderStatusCompleted, OrderStatusPaid, OrderStatusCancelled}

// BilledOrderStatuses are the statuses that count as a bill
var BilledOrderStatuses = []string{OrderStatusCompleted, OrderStatusPaid}

var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusPreparing, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: {OrderStatusPaid},
}

// ValidOrderStatus reports whether status is a known order status
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusCompleted, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminalStatus reports whether an order with this status is closed
func IsTerminalStatus(status string) bool {
	for _, s := range TerminalOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveOrdersPolicy decides whether "active" orders are bounded to today
type ActiveOrdersPolicy string

const (
	// ActiveOrdersAllOpen returns every non-terminal order regardless of age,
	// so tabs left open across midnight stay visible.
	ActiveOrdersAllOpen ActiveOrdersPolicy = "all_open"
	// ActiveOrdersTodayOnly returns non-terminal orders created on the current business day.
	ActiveOrdersTodayOnly ActiveOrdersPolicy = "today_only"
)

// ParseActiveOrdersPolicy parses a policy name
func ParseActiveOrdersPolicy(value string) (ActiveOrdersPolicy, error) {
	switch ActiveOrdersPolicy(value) {
	case ActiveOrdersAllOpen, ActiveOrdersTodayOnly:
		return ActiveOrdersPolicy(value), nil
	}
	return "", fmt.Errorf("active orders policy must be one of: all_open, today_only")
}

type OrderItem struct {
	MenuItemID *string `bson:"menu_item_id,omitempty" json:"menu_item_id,omitempty"`
	Name       string  `bson:"name" json:"name"`
	Price      float64 `bson:"price" json:"price"`
	Quantity   int     `bson:"quantity" json:"quantity"`
	Notes      *string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// LineTotal is price × quantity
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Order struct {
	ID              string      `bson:"id" json:"id"`
	OrganizationID  string      `bson:"organization_id" json:"organization_id"`
	TableID         *string     `bson:"table_id,omitempty" json:"table_id,omitempty"`
	TableNumber     *int        `bson:"table_number,omitempty" json:"table_number,omitempty"`
	CustomerName    *string     `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	CustomerPhone   *string     `bson:"customer_phone,omitempty" json:"customer_phone,omitempty"`
	Items           []OrderItem `bson:"items" json:"items"`
	Subtotal        float64     `bson:"subtotal" json:"subtotal"`
	TaxRate         float64     `bson:"tax_rate" json:"tax_rate"`
	Tax             float64     `bson:"tax" json:"tax"`
	Discount        float64     `bson:"discount" json:"discount"`
	Total           float64     `bson:"total" json:"total"`
	Status          string      `bson:"status" json:"status"`
	PaymentReceived float64     `bson:"payment_received" json:"payment_received"`
	BalanceAmount   float64     `bson:"balance_amount" json:"balance_amount"`
	IsCredit        bool        `bson:"is_credit" json:"is_credit"`
	PaymentMethod   *string     `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	Notes           *string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy       string      `bson:"created_by" json:"created_by"`
	CreatedAt       time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `bson:"updated_at" json:"updated_at"`
}

// OrderFilter holds list criteria for order queries
type OrderFilter struct {
	Status *string
	Skip   int
	Limit  int
}

// TodayBills is the today's-bills view with running totals
type TodayBills struct {
	BusinessDate    string    `json:"business_date"`
	TodayStartUTC   time.Time `json:"today_start_utc"`
	Orders          []*Order  `json:"orders"`
	Count           int       `json:"count"`
	TotalAmount     float64   `json:"total_amount"`
	PaymentReceived float64   `json:"payment_received"`
	BalanceAmount   float64   `json:"balance_amount"`
}

// ActiveOrders is the active-orders view
type ActiveOrders struct {
	Policy ActiveOrdersPolicy `json:"policy"`
	Orders []*Order           `json:"orders"`
	Count  int                `json:"count"`
}
