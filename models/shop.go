package models

import "time"

// ShopSettings carries the scheduling parameters availability is computed
// from. Times of day are "HH:MM" in the shop's own timezone.
type ShopSettings struct {
	Timezone        string `bson:"timezone" json:"timezone" validate:"required,timezone"`                    // IANA name, e.g. "America/Sao_Paulo"
	OpenTime        string `bson:"open_time" json:"open_time" validate:"required,datetime=15:04"`            // e.g. "09:00"
	CloseTime       string `bson:"close_time" json:"close_time" validate:"required,datetime=15:04"`          // e.g. "18:00"
	LunchStart      string `bson:"lunch_start,omitempty" json:"lunch_start,omitempty" validate:"omitempty,datetime=15:04"`
	LunchEnd        string `bson:"lunch_end,omitempty" json:"lunch_end,omitempty" validate:"omitempty,datetime=15:04"`
	SlotIntervalMin int    `bson:"slot_interval_min" json:"slot_interval_min" validate:"required,min=5,max=120"` // Candidate slot spacing in minutes
}

// Shop is a barbershop wired to one WhatsApp business number. Inbound
// messages are routed to a shop by the platform's phone_number_id.
type Shop struct {
	ID            string       `bson:"id" json:"id"`
	Name          string       `bson:"name" json:"name" validate:"required"`
	PhoneNumberID string       `bson:"phone_number_id" json:"phone_number_id" validate:"required"` // WhatsApp Cloud API routing id (unique index)
	DisplayPhone  string       `bson:"display_phone,omitempty" json:"display_phone,omitempty"`
	Active        bool         `bson:"active" json:"active"`
	Settings      ShopSettings `bson:"settings" json:"settings"`
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `bson:"updated_at" json:"updated_at"`
}
