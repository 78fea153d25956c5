package models

import "time"

type User struct {
	ID                    string     `bson:"id" json:"id"`
	Username              string     `bson:"username" json:"username"`
	UsernameLower         string     `bson:"username_lower" json:"-"`
	Email                 string     `bson:"email" json:"email"`
	EmailLower            string     `bson:"email_lower" json:"-"`
	PasswordHash          string     `bson:"password_hash" json:"-"` // Never serialize in JSON
	Role                  string     `bson:"role" json:"role"`
	OrganizationID        string     `bson:"organization_id" json:"organization_id"`
	OrganizationName      string     `bson:"organization_name" json:"organization_name"`
	Phone                 *string    `bson:"phone,omitempty" json:"phone,omitempty"`
	ReferralCode          *string    `bson:"referral_code,omitempty" json:"referral_code,omitempty"` // unique, sparse
	SubscriptionActive    bool       `bson:"subscription_active" json:"subscription_active"`
	SubscriptionExpiresAt *time.Time `bson:"subscription_expires_at,omitempty" json:"subscription_expires_at,omitempty"`
	CreatedAt             time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `bson:"updated_at" json:"updated_at"`
}

// SubscriptionValid reports whether the subscription allows access at now
func (u *User) SubscriptionValid(now time.Time) bool {
	if !u.SubscriptionActive {
		return false
	}
	return u.SubscriptionExpiresAt == nil || u.SubscriptionExpiresAt.After(now)
}

// Subscription filter values used by the super-admin user list
const (
	SubscriptionFilterAll      = "all"
	SubscriptionFilterActive   = "active"
	SubscriptionFilterInactive = "inactive"
	SubscriptionFilterExpired  = "expired"
)

// UserFilter holds list criteria for the super-admin user list
type UserFilter struct {
	Search string
	Status string
	Skip   int
	Limit  int
}

// OrganizationStats summarizes one tenant for the super-admin panel
type OrganizationStats struct {
	OrganizationID string `json:"organization_id"`
	Orders         int64  `json:"orders"`
	Tables         int64  `json:"tables"`
	MenuItems      int64  `json:"menu_items"`
	Staff          int64  `json:"staff"`
}
