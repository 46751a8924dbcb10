package conversation

import (
	"fmt"
	"strings"

	"barberflow/models"
	"barberflow/services/messenger"
)

// menuPageSize is how many options share a page with the "More" button.
// WhatsApp caps interactive messages at three buttons, so a menu longer
// than three options shows two per page plus the continuation.
const menuPageSize = 2

// menuOption is one selectable entry of a presented menu.
type menuOption struct {
	Key   string
	Label string
	Line  string // Full numbered-list line; falls back to Label when empty
}

// menu is one page of options ready to send, plus the bookkeeping the
// engine stores on the session so later ordinals and "more" taps resolve
// against what the customer actually saw.
type menu struct {
	Name    string // Session context value for CtxMenu
	Prefix  string // Button id prefix, e.g. "service_"
	Options []menuOption
	Page    int
}

// clampedPage is the page actually presented: a negative or overrun
// page wraps back to the start, and menus short enough for one page
// always show it whole.
func (m *menu) clampedPage() int {
	total := len(m.Options)
	if total <= menuPageSize+1 || m.Page < 1 || m.Page*menuPageSize >= total {
		return 0
	}
	return m.Page
}

// page returns the options visible on the menu's current page and
// whether a further page exists.
func (m *menu) page() (visible []menuOption, hasMore bool) {
	total := len(m.Options)
	if total <= menuPageSize+1 {
		return m.Options, false
	}
	start := m.clampedPage() * menuPageSize
	end := start + menuPageSize
	if end >= total {
		return m.Options[start:], false
	}
	return m.Options[start:end], true
}

// body renders the header plus the numbered lines for the visible
// options. Numbers are absolute positions in the full option list, so a
// customer can answer "4" after tapping More.
func (m *menu) body(header string) string {
	visible, _ := m.page()
	start := m.clampedPage() * menuPageSize

	var b strings.Builder
	b.WriteString(header)
	for i, opt := range visible {
		line := opt.Line
		if line == "" {
			line = opt.Label
		}
		b.WriteString(fmt.Sprintf("\n%d. %s", start+i+1, line))
	}
	return b.String()
}

// buttons builds the tappable replies for the visible page, appending
// the continuation button when more options remain.
func (m *menu) buttons() []messenger.Button {
	visible, hasMore := m.page()
	buttons := make([]messenger.Button, 0, len(visible)+1)
	for _, opt := range visible {
		buttons = append(buttons, messenger.Button{ID: m.Prefix + opt.Key, Title: opt.Label})
	}
	if hasMore {
		buttons = append(buttons, messenger.Button{ID: m.Prefix + "more", Title: "More"})
	}
	return buttons
}

// optionKeys returns every option key in presented order, for the
// session context the engine resolves ordinals against.
func (m *menu) optionKeys() string {
	keys := make([]string, len(m.Options))
	for i, opt := range m.Options {
		keys[i] = opt.Key
	}
	return strings.Join(keys, ",")
}

// serviceMenu builds the catalog menu for one shop.
func serviceMenu(services []models.Service, page int) *menu {
	m := &menu{Name: "services", Prefix: "service_", Page: page}
	for _, s := range services {
		m.Options = append(m.Options, menuOption{
			Key:   s.Key,
			Label: s.Label,
			Line:  fmt.Sprintf("%s — %d min, $%.0f", s.Label, s.DurationMin, s.Price),
		})
	}
	return m
}

// barberMenu builds the barber menu for one shop.
func barberMenu(barbers []models.Barber, page int) *menu {
	m := &menu{Name: "barbers", Prefix: "barber_", Page: page}
	for _, b := range barbers {
		m.Options = append(m.Options, menuOption{Key: b.ID, Label: b.Name})
	}
	return m
}

// periodMenu builds the coarse time-window menu from the resolved
// availability, in fixed presentation order. Only non-empty periods are
// offered.
func periodMenu(avail *models.DayAvailability) *menu {
	m := &menu{Name: "periods", Prefix: "time_"}
	for _, p := range models.PeriodOrder {
		slots := avail.Periods[p]
		if len(slots) == 0 {
			continue
		}
		m.Options = append(m.Options, menuOption{
			Key:   string(p),
			Label: p.Label(),
			Line:  fmt.Sprintf("%s (%d open)", p.Label(), len(slots)),
		})
	}
	return m
}

// slotMenu builds the fine-grained slot menu for one period.
func slotMenu(slots []models.Slot, page int) *menu {
	m := &menu{Name: "slots", Prefix: "slot_", Page: page}
	for _, s := range slots {
		m.Options = append(m.Options, menuOption{
			Key:   s.Start,
			Label: s.Start,
			Line:  fmt.Sprintf("%s – %s", s.Start, s.End),
		})
	}
	return m
}

// Customer-facing copy. Kept together so the tone stays consistent.

func greetingText(shopName string) string {
	return fmt.Sprintf("Welcome to %s! 💈\nWhat can we do for you today? Pick a service:", shopName)
}

const (
	servicePromptText    = "Pick a service:"
	serviceRepromptText  = "Sorry, I didn't catch that service. Pick one from the list:"
	barberPromptText     = "Great choice! Who would you like to cut your hair?"
	barberRepromptText   = "Sorry, I don't know that barber. Pick one from the list:"
	periodPromptText     = "When works for you?"
	periodRepromptText   = "That window has no open times anymore. Pick another:"
	slotRepromptText     = "That time just got taken. Here's what's still open:"
	noAvailabilityText   = "Sorry, %s has no open times today or tomorrow. Try another barber:"
	bookingRetryText     = "Something went wrong saving your booking. Please pick a time again:"
	noUpcomingText       = "You have no upcoming appointments with us."
	cancelUnknownText    = "I couldn't find that booking. Reply \"my bookings\" to see your appointments."
	helpText             = "I can help you with:\n• \"book\" — book an appointment\n• \"my bookings\" — see your appointments\n• \"cancel\" — cancel an appointment\n• \"reschedule\" — move an appointment"
	fallbackRepromptText = "Sorry, I didn't get that."
)

func confirmationText(b *models.Booking, shopName string) string {
	return fmt.Sprintf(
		"You're booked! ✂️\n\n%s with %s\n%s at %s\n\nBooking code: %s\n\nSee you at %s. Reply \"cancel %s\" if your plans change.",
		b.ServiceLabel, b.BarberName, b.Date, b.StartTime, b.Code, shopName, b.Code,
	)
}

func cancelledText(b *models.Booking) string {
	return fmt.Sprintf("Your %s on %s at %s is cancelled. Hope to see you soon!", b.ServiceLabel, b.Date, b.StartTime)
}

func upcomingListText(bookings []models.Booking) string {
	var b strings.Builder
	b.WriteString("Your upcoming appointments:")
	for _, bk := range bookings {
		b.WriteString(fmt.Sprintf("\n• %s — %s at %s with %s (code %s)", bk.ServiceLabel, bk.Date, bk.StartTime, bk.BarberName, bk.Code))
	}
	return b.String()
}

func pickToCancelText(bookings []models.Booking) string {
	return upcomingListText(bookings) + "\n\nReply \"cancel <code>\" with the one to cancel."
}
