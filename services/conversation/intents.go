package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"barberflow/models"
)

// Intent is the classified purpose of one inbound message.
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentBookAppointment Intent = "book_appointment"
	IntentViewServices    Intent = "view_services"
	IntentSelectService   Intent = "select_service"
	IntentSelectBarber    Intent = "select_barber"
	IntentSelectTime      Intent = "select_time"
	IntentSelectSlot      Intent = "select_slot"
	IntentConfirm         Intent = "confirm"
	IntentCancelBooking   Intent = "cancel_booking"
	IntentReschedule      Intent = "reschedule"
	IntentMyBookings      Intent = "my_bookings"
	IntentHelp            Intent = "help"
	IntentMore            Intent = "more"
	IntentUnknown         Intent = "unknown"
)

// Classification is the classifier's full verdict. Key carries the
// suffix of a structured button id (or the argument of "cancel <code>");
// Ordinal carries a bare numeral, resolved later against the menu the
// customer was actually shown.
type Classification struct {
	Intent  Intent
	Key     string
	Ordinal int
}

var numeralRe = regexp.MustCompile(`^\d+$`)

// keywordTable is the fixed phrase table for the exact and substring
// passes. Order is part of the contract: the substring pass scans in
// declaration order and the first hit wins, so intents whose phrases
// occur inside other intents' phrases ("my bookings" vs "book",
// "reschedule" vs "schedule") are declared first.
var keywordTable = []struct {
	intent  Intent
	phrases []string
}{
	{IntentCancelBooking, []string{"cancel"}},
	{IntentReschedule, []string{"reschedule", "change time", "move my appointment"}},
	{IntentMyBookings, []string{"my bookings", "my appointments", "my booking", "my appointment", "status"}},
	{IntentGreeting, []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "start"}},
	{IntentViewServices, []string{"services", "menu", "prices", "price"}},
	{IntentBookAppointment, []string{"book", "appointment", "schedule", "reserve", "haircut"}},
	{IntentConfirm, []string{"yes", "confirm", "ok", "okay", "sure"}},
	{IntentHelp, []string{"help", "options"}},
	{IntentMore, []string{"more"}},
}

// structured prefixes carried by button ids. The reserved suffix
// "more" turns any of them into a pagination continuation.
var prefixTable = []struct {
	prefix string
	intent Intent
	more   string
}{
	{"service_", IntentSelectService, "service"},
	{"barber_", IntentSelectBarber, "barber"},
	{"time_", IntentSelectTime, "time"},
	{"slot_", IntentSelectSlot, "slot"},
}

// Classify maps one message to an intent. Pure and deterministic on
// (normalized text, phase): structured prefixes first, then
// phase-scoped ordinals, then the keyword table exact and substring
// passes, and finally the unknown fallback. No input is left
// unclassified.
func Classify(text string, phase models.Phase) Classification {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Classification{Intent: IntentUnknown}
	}

	// 1. Structured selection ids, regardless of phase.
	for _, p := range prefixTable {
		if strings.HasPrefix(t, p.prefix) {
			suffix := strings.TrimPrefix(t, p.prefix)
			if suffix == "more" {
				return Classification{Intent: IntentMore, Key: p.more}
			}
			return Classification{Intent: p.intent, Key: suffix}
		}
	}

	// 2. Bare numerals select by position from the menu the phase
	// presented. Outside the selection phases they fall through to the
	// keyword rules.
	if numeralRe.MatchString(t) {
		if n, err := strconv.Atoi(t); err == nil && n >= 1 && n <= 20 {
			switch phase {
			case models.PhaseWelcome, models.PhaseServiceSelection:
				return Classification{Intent: IntentSelectService, Ordinal: n}
			case models.PhaseBarberSelection:
				return Classification{Intent: IntentSelectBarber, Ordinal: n}
			case models.PhaseTimeSelection:
				return Classification{Intent: IntentSelectTime, Ordinal: n}
			}
		}
	}

	// 3. Exact full-string match.
	for _, row := range keywordTable {
		for _, phrase := range row.phrases {
			if t == phrase {
				return withArgument(row.intent, t)
			}
		}
	}

	// 4. Substring match, declaration order, first hit wins.
	for _, row := range keywordTable {
		for _, phrase := range row.phrases {
			if strings.Contains(t, phrase) {
				return withArgument(row.intent, t)
			}
		}
	}

	// 5. Fallback.
	return Classification{Intent: IntentUnknown}
}

// withArgument extracts the trailing argument for intents that take
// one, e.g. the code in "cancel XK29QD".
func withArgument(intent Intent, t string) Classification {
	c := Classification{Intent: intent}
	if intent == IntentCancelBooking {
		if idx := strings.Index(t, "cancel"); idx >= 0 {
			rest := strings.TrimSpace(t[idx+len("cancel"):])
			if rest != "" && !strings.Contains(rest, " ") {
				c.Key = rest
			}
		}
	}
	return c
}
