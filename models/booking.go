package models

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking record.
type BookingStatus string

const (
	BookingPending     BookingStatus = "pending"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingCompleted   BookingStatus = "completed"
	BookingCancelled   BookingStatus = "cancelled"
	BookingNoShow      BookingStatus = "no_show"
	BookingRescheduled BookingStatus = "rescheduled"
)

// Valid reports whether s is a defined booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted,
		BookingCancelled, BookingNoShow, BookingRescheduled:
		return true
	}
	return false
}

// Blocks reports whether a booking in this status still occupies its slot.
// Cancelled and rescheduled bookings release the slot.
func (s BookingStatus) Blocks() bool {
	return s != BookingCancelled && s != BookingRescheduled
}

// Booking is the durable appointment record a completed conversation
// produces. Code is the short human-facing identifier read back to the
// customer; ID stays internal.
type Booking struct {
	ID           string        `bson:"id" json:"id"`     // Internal identifier (UUID)
	Code         string        `bson:"code" json:"code"` // 6-char human-readable code (unique index)
	ShopID       string        `bson:"shop_id" json:"shop_id" validate:"required"`
	BarberID     string        `bson:"barber_id" json:"barber_id" validate:"required"`
	BarberName   string        `bson:"barber_name,omitempty" json:"barber_name,omitempty"`
	ServiceKey   string        `bson:"service_key" json:"service_key" validate:"required"`
	ServiceLabel string        `bson:"service_label,omitempty" json:"service_label,omitempty"`
	Date         string        `bson:"date" json:"date" validate:"required,datetime=2006-01-02"` // Shop-local calendar date
	StartTime    string        `bson:"start_time" json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string        `bson:"end_time" json:"end_time" validate:"required,datetime=15:04"`
	Phone        string        `bson:"phone" json:"phone" validate:"required,e164"` // Customer phone, E.164
	Status       BookingStatus `bson:"status" json:"status"`
	SlotKey      string        `bson:"slot_key,omitempty" json:"-"` // Sparse unique index; present only while the slot is held
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// SlotKey builds the uniqueness key a live booking claims for its slot.
// Inserting two bookings with the same key trips the sparse unique index,
// which is what makes double-booking impossible without a read-then-write.
func SlotKey(shopID, barberID, date, start string) string {
	return fmt.Sprintf("%s:%s:%s:%s", shopID, barberID, date, start)
}

// CanTransition reports whether a staff-driven status change is allowed.
// Completed bookings are immutable; cancelled and rescheduled are terminal
// apart from staff undoing a cancellation back to confirmed.
func (b *Booking) CanTransition(next BookingStatus) bool {
	if !next.Valid() || b.Status == next {
		return false
	}
	switch b.Status {
	case BookingCompleted:
		return false
	case BookingCancelled, BookingRescheduled:
		return next == BookingConfirmed
	default:
		return true
	}
}
