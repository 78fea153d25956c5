package models

import "time"

const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// ValidTicketStatus reports whether status is a known ticket status
func ValidTicketStatus(status string) bool {
	switch status {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

type SupportTicket struct {
	ID             string    `bson:"id" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	UserID         string    `bson:"user_id" json:"user_id"`
	Subject        string    `bson:"subject" json:"subject"`
	Message        string    `bson:"message" json:"message"`
	Status         string    `bson:"status" json:"status"`
	AdminResponse  *string   `bson:"admin_response,omitempty" json:"admin_response,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
