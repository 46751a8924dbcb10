package models

import "time"

// Phase is the current step of the booking conversation state machine.
type Phase string

const (
	PhaseWelcome          Phase = "welcome"
	PhaseServiceSelection Phase = "service_selection"
	PhaseBarberSelection  Phase = "barber_selection"
	PhaseTimeSelection    Phase = "time_selection"
	PhaseConfirmation     Phase = "confirmation"
	PhaseCompleted        Phase = "completed"
)

// Valid reports whether p is one of the defined conversation phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseWelcome, PhaseServiceSelection, PhaseBarberSelection,
		PhaseTimeSelection, PhaseConfirmation, PhaseCompleted:
		return true
	}
	return false
}

// Session is the durable record of one customer's in-progress conversation
// with one shop. At most one session per (shop, phone) pair is active; a
// partial unique index on {shop_id, phone, active:true} enforces it.
type Session struct {
	ID           string            `bson:"id" json:"id"`                               // Session identifier (UUID)
	ShopID       string            `bson:"shop_id" json:"shop_id"`                     // Owning shop
	Phone        string            `bson:"phone" json:"phone"`                         // Customer phone, E.164
	Phase        Phase             `bson:"phase" json:"phase"`                         // Current state-machine phase
	LastIntent   string            `bson:"last_intent,omitempty" json:"last_intent,omitempty"`
	ServiceKey   string            `bson:"service_key,omitempty" json:"service_key,omitempty"`
	BarberID     string            `bson:"barber_id,omitempty" json:"barber_id,omitempty"`
	BarberName   string            `bson:"barber_name,omitempty" json:"barber_name,omitempty"`
	PeriodKey    string            `bson:"period_key,omitempty" json:"period_key,omitempty"`
	BookingID    string            `bson:"booking_id,omitempty" json:"booking_id,omitempty"` // Set once a booking is created
	BookingCode  string            `bson:"booking_code,omitempty" json:"booking_code,omitempty"`
	Context      map[string]string `bson:"context,omitempty" json:"context,omitempty"` // Transient menu state (presented options, pages, date)
	Active       bool              `bson:"active" json:"active"`
	LastActiveAt time.Time         `bson:"last_active_at" json:"last_active_at"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
}

// Context keys used by the conversation engine to interpret ordinal replies
// against the menu that was actually presented.
const (
	CtxMenu        = "menu"    // which menu the stored options belong to: "services", "barbers", "periods", "slots"
	CtxOptions     = "options" // comma-separated option keys in presented order
	CtxDate        = "date"    // booking date under discussion, "2006-01-02"
	CtxServicePage = "service_page"
	CtxBarberPage  = "barber_page"
	CtxSlotPage    = "slot_page"
)

// SetContext writes a transient context value, allocating the map on first use.
func (s *Session) SetContext(key, value string) {
	if s.Context == nil {
		s.Context = make(map[string]string)
	}
	s.Context[key] = value
}

// ContextValue reads a transient context value, tolerating a nil map.
func (s *Session) ContextValue(key string) string {
	if s.Context == nil {
		return ""
	}
	return s.Context[key]
}

// ClearMenu drops the presented-menu state so stale ordinals cannot select
// from a list the customer is no longer looking at.
func (s *Session) ClearMenu() {
	if s.Context == nil {
		return
	}
	delete(s.Context, CtxMenu)
	delete(s.Context, CtxOptions)
}
