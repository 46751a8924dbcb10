package conversation

import (
	"testing"

	"barberflow/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStructuredPrefixes(t *testing.T) {
	tests := []struct {
		text    string
		phase   models.Phase
		intent  Intent
		key     string
	}{
		{"service_haircut", models.PhaseServiceSelection, IntentSelectService, "haircut"},
		{"barber_b12", models.PhaseBarberSelection, IntentSelectBarber, "b12"},
		{"time_evening", models.PhaseTimeSelection, IntentSelectTime, "evening"},
		{"slot_09:30", models.PhaseTimeSelection, IntentSelectSlot, "09:30"},
		// Prefix rules win regardless of phase: a stale service tap in
		// barber selection still classifies as select_service.
		{"service_haircut", models.PhaseBarberSelection, IntentSelectService, "haircut"},
		{"SERVICE_HAIRCUT", models.PhaseWelcome, IntentSelectService, "haircut"},
		// The reserved "more" suffix is pagination, not a selection.
		{"service_more", models.PhaseServiceSelection, IntentMore, "service"},
		{"slot_more", models.PhaseTimeSelection, IntentMore, "slot"},
	}

	for _, tc := range tests {
		got := Classify(tc.text, tc.phase)
		assert.Equal(t, tc.intent, got.Intent, "text=%q phase=%s", tc.text, tc.phase)
		assert.Equal(t, tc.key, got.Key, "text=%q phase=%s", tc.text, tc.phase)
	}
}

func TestClassifyOrdinalsArePhaseScoped(t *testing.T) {
	tests := []struct {
		text    string
		phase   models.Phase
		intent  Intent
		ordinal int
	}{
		{"1", models.PhaseWelcome, IntentSelectService, 1},
		{"3", models.PhaseServiceSelection, IntentSelectService, 3},
		{"2", models.PhaseBarberSelection, IntentSelectBarber, 2},
		{"4", models.PhaseTimeSelection, IntentSelectTime, 4},
		{"20", models.PhaseServiceSelection, IntentSelectService, 20},
		// Out of the ordinal range: falls through to keywords, lands on
		// the fallback.
		{"21", models.PhaseServiceSelection, IntentUnknown, 0},
		{"0", models.PhaseServiceSelection, IntentUnknown, 0},
		// Outside a selection phase a numeral is not an ordinal.
		{"2", models.PhaseCompleted, IntentUnknown, 0},
	}

	for _, tc := range tests {
		got := Classify(tc.text, tc.phase)
		assert.Equal(t, tc.intent, got.Intent, "text=%q phase=%s", tc.text, tc.phase)
		assert.Equal(t, tc.ordinal, got.Ordinal, "text=%q phase=%s", tc.text, tc.phase)
	}
}

func TestClassifyKeywords(t *testing.T) {
	tests := []struct {
		text   string
		intent Intent
	}{
		{"hi", IntentGreeting},
		{"  Hello  ", IntentGreeting},
		{"good morning", IntentGreeting},
		{"book", IntentBookAppointment},
		{"i want to book a haircut", IntentBookAppointment},
		{"services", IntentViewServices},
		{"what are your prices", IntentViewServices},
		{"cancel", IntentCancelBooking},
		{"i need to cancel my appointment", IntentCancelBooking},
		{"reschedule", IntentReschedule},
		{"my bookings", IntentMyBookings},
		{"my appointment status", IntentMyBookings},
		{"help", IntentHelp},
		{"yes", IntentConfirm},
		{"more", IntentMore},
		{"asdfghjkl", IntentUnknown},
		{"", IntentUnknown},
	}

	for _, tc := range tests {
		got := Classify(tc.text, models.PhaseWelcome)
		assert.Equal(t, tc.intent, got.Intent, "text=%q", tc.text)
	}
}

func TestClassifyDeclarationOrderBreaksTies(t *testing.T) {
	// "my bookings" contains "book"; the earlier-declared intent wins
	// the substring pass.
	got := Classify("show my bookings please", models.PhaseWelcome)
	assert.Equal(t, IntentMyBookings, got.Intent)

	// "reschedule" contains "schedule"; declared before book_appointment.
	got = Classify("can i reschedule", models.PhaseWelcome)
	assert.Equal(t, IntentReschedule, got.Intent)
}

func TestClassifyCancelCarriesCodeArgument(t *testing.T) {
	got := Classify("cancel XK29QD", models.PhaseWelcome)
	assert.Equal(t, IntentCancelBooking, got.Intent)
	assert.Equal(t, "xk29qd", got.Key)

	// A bare cancel has no argument.
	got = Classify("cancel", models.PhaseWelcome)
	assert.Equal(t, IntentCancelBooking, got.Intent)
	assert.Empty(t, got.Key)
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		got := Classify("book me in", models.PhaseWelcome)
		assert.Equal(t, IntentBookAppointment, got.Intent)
	}
}
