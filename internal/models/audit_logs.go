package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB represents PostgreSQL JSONB type
type JSONB map[string]interface{}

// AuditLog represents an audit trail entry for a mutating API call
type AuditLog struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	ActorID        string    `json:"actor_id" db:"actor_id"`
	ActorRole      string    `json:"actor_role" db:"actor_role"`
	Action         string    `json:"action" db:"action"`
	Resource       string    `json:"resource" db:"resource"`
	ResourceID     string    `json:"resource_id" db:"resource_id"`
	StatusCode     int       `json:"status_code" db:"status_code"`
	Metadata       JSONB     `json:"metadata" db:"metadata"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// AuditLogFilters represents filters for querying audit logs
type AuditLogFilters struct {
	OrganizationID *string    `json:"organization_id"`
	ActorID        *string    `json:"actor_id"`
	Resource       *string    `json:"resource"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	Limit          int        `json:"limit"`
	Offset         int        `json:"offset"`
}
