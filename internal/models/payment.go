package models

import "time"

// Payment methods
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodUPI    = "upi"
	PaymentMethodCredit = "credit"
)

// ValidPaymentMethod reports whether method is accepted at the counter
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodCredit:
		return true
	}
	return false
}

type Payment struct {
	ID             string    `bson:"id" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	OrderID        string    `bson:"order_id" json:"order_id"`
	Amount         float64   `bson:"amount" json:"amount"`
	Method         string    `bson:"method" json:"method"`
	Reference      *string   `bson:"reference,omitempty" json:"reference,omitempty"`
	RecordedBy     string    `bson:"recorded_by" json:"recorded_by"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
