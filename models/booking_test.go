package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusBlocks(t *testing.T) {
	assert.True(t, BookingPending.Blocks())
	assert.True(t, BookingConfirmed.Blocks())
	assert.True(t, BookingCompleted.Blocks())
	assert.True(t, BookingNoShow.Blocks())
	assert.False(t, BookingCancelled.Blocks())
	assert.False(t, BookingRescheduled.Blocks())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingNoShow, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingCompleted, BookingCancelled, false},
		{BookingCompleted, BookingConfirmed, false},
		{BookingCancelled, BookingConfirmed, true},
		{BookingCancelled, BookingCompleted, false},
		{BookingRescheduled, BookingConfirmed, true},
		{BookingRescheduled, BookingNoShow, false},
		{BookingConfirmed, BookingConfirmed, false},
		{BookingConfirmed, BookingStatus("bogus"), false},
	}

	for _, tc := range tests {
		b := &Booking{Status: tc.from}
		assert.Equal(t, tc.want, b.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSlotKey(t *testing.T) {
	assert.Equal(t, "shop-1:barber-1:2026-09-01:10:30",
		SlotKey("shop-1", "barber-1", "2026-09-01", "10:30"))
}
