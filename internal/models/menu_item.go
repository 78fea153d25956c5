package models

import "time"

type MenuItem struct {
	ID             string    `bson:"id" json:"id"`
	OrganizationID string    `bson:"organization_id" json:"organization_id"`
	Name           string    `bson:"name" json:"name"`
	Category       string    `bson:"category" json:"category"`
	Price          float64   `bson:"price" json:"price"`
	Description    *string   `bson:"description,omitempty" json:"description,omitempty"`
	IsAvailable    bool      `bson:"is_available" json:"is_available"`
	ImageKey       *string   `bson:"image_key,omitempty" json:"-"`
	ImageURL       *string   `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// MenuFilter holds list criteria for menu queries
type MenuFilter struct {
	Category      string
	AvailableOnly bool
}
