package models

import (
	"time"
)

// DaySchedule is one weekday's working window for a barber.
type DaySchedule struct {
	Working bool   `bson:"working" json:"working"`
	Start   string `bson:"start,omitempty" json:"start,omitempty" validate:"omitempty,datetime=15:04"` // e.g. "09:00"
	End     string `bson:"end,omitempty" json:"end,omitempty" validate:"omitempty,datetime=15:04"`     // e.g. "18:00"
}

// Barber belongs to exactly one shop. Week is indexed by time.Weekday
// (0 = Sunday).
type Barber struct {
	ID           string          `bson:"id" json:"id"`
	ShopID       string          `bson:"shop_id" json:"shop_id" validate:"required"`
	Name         string          `bson:"name" json:"name" validate:"required"`
	Active       bool            `bson:"active" json:"active"`
	DisplayOrder int             `bson:"display_order" json:"display_order"`
	Week         [7]DaySchedule  `bson:"week" json:"week"`
	CreatedAt    time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `bson:"updated_at" json:"updated_at"`
}

// ScheduleFor returns the barber's working window for the given weekday.
func (b *Barber) ScheduleFor(day time.Weekday) DaySchedule {
	return b.Week[int(day)]
}
