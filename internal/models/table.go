package models

import "time"

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
)

// Table is a dining table. CurrentOrderID is a back-reference, the order does not belong to the table.
type Table struct {
	ID             string    `bson:"id" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	TableNumber    int       `bson:"table_number" json:"table_number"`
	Capacity       int       `bson:"capacity" json:"capacity"`
	Status         string    `bson:"status" json:"status"`
	CurrentOrderID *string   `bson:"current_order_id" json:"current_order_id"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
