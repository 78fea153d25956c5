package common

import "math"

// moneyEpsilon is half a paisa; two amounts closer than this are the same bill.
const moneyEpsilon = 0.005

// RoundMoney rounds to two decimal places
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ExpectedTotal is the bill total implied by its components
func ExpectedTotal(subtotal, discount, tax float64) float64 {
	return RoundMoney(subtotal - discount + tax)
}

// ValidateBilling checks the billing invariants of an order:
// total == round(subtotal - discount + tax, 2), 0 <= discount <= subtotal,
// 0 <= tax_rate <= 100.
func ValidateBilling(subtotal, discount, tax, taxRate, total float64) error {
	if subtotal < 0 {
		return NewValidationError("subtotal", "subtotal cannot be negative")
	}
	if discount < 0 {
		return NewValidationError("discount", "discount cannot be negative")
	}
	if discount-subtotal >= moneyEpsilon {
		return NewValidationError("discount", "discount %.2f cannot exceed subtotal %.2f", discount, subtotal)
	}
	if tax < 0 {
		return NewValidationError("tax", "tax cannot be negative")
	}
	if taxRate < 0 || taxRate > 100 {
		return NewValidationError("tax_rate", "tax rate must be between 0 and 100, got %.2f", taxRate)
	}

	expected := ExpectedTotal(subtotal, discount, tax)
	if math.Abs(RoundMoney(total)-expected) >= moneyEpsilon {
		return NewValidationError("total",
			"total mismatch: expected %.2f, got %.2f (subtotal %.2f - discount %.2f + tax %.2f)",
			expected, total, subtotal, discount, tax)
	}
	return nil
}
