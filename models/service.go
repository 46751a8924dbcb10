package models

import "time"

// Service is a bookable catalog entry. Entries with an empty ShopID form the
// global catalog shared by every shop; a shop-specific entry with the same
// key overrides the global one for that shop.
type Service struct {
	Key          string    `bson:"key" json:"key" validate:"required,lowercase"` // Stable selection key, e.g. "haircut"
	ShopID       string    `bson:"shop_id,omitempty" json:"shop_id,omitempty"`   // Empty for global catalog entries
	Label        string    `bson:"label" json:"label" validate:"required"`       // Customer-facing name
	DurationMin  int       `bson:"duration_min" json:"duration_min" validate:"required,min=5,max=480"`
	Price        float64   `bson:"price" json:"price" validate:"min=0"`
	Active       bool      `bson:"active" json:"active"`
	DisplayOrder int       `bson:"display_order" json:"display_order"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
