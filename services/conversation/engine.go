package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sessionRepo "barberflow/database/repository/session"
	shopRepo "barberflow/database/repository/shop"
	"barberflow/models"
	"barberflow/services/booking"
	"barberflow/services/messenger"
	"barberflow/utils"

	"go.uber.org/zap"
)

// Engine drives the booking conversation. One call to HandleMessage
// processes one inbound message end to end: classify, step the session's
// phase, persist, reply. Domain failures (unknown keys, lost slots) are
// answered with a re-prompt and never escape; only downstream failures
// (store, sender) propagate to the caller.
type Engine struct {
	Sessions     sessionRepo.SessionRepository
	Shops        shopRepo.ShopRepository
	Bookings     booking.BookingService
	Availability *booking.AvailabilityResolver
	Sender       messenger.Sender

	// Clock is injectable for tests; nil means time.Now.
	Clock func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

// HandleMessage processes one customer message for one shop.
func (e *Engine) HandleMessage(ctx context.Context, shop *models.Shop, from, text string) error {
	logger := utils.GetLogger()

	phone := utils.NormalizePhone(from)
	if phone == "" {
		logger.Warn("dropping message with unparseable sender", zap.String("from", from))
		return nil
	}

	sess, created, err := e.Sessions.Acquire(ctx, shop.ID, phone)
	if err != nil {
		return fmt.Errorf("failed to acquire session: %w", err)
	}

	cls := Classify(text, sess.Phase)
	sess.LastIntent = string(cls.Intent)

	// Booking management is reachable from any phase, including a fresh
	// session: a customer whose previous conversation already completed
	// has no active session but may well have an appointment to cancel.
	switch cls.Intent {
	case IntentCancelBooking:
		return e.handleCancel(ctx, shop, sess, cls.Key, false)
	case IntentReschedule:
		return e.handleCancel(ctx, shop, sess, cls.Key, true)
	case IntentMyBookings:
		return e.handleMyBookings(ctx, shop, sess)
	case IntentHelp:
		if err := e.Sessions.Save(ctx, sess); err != nil {
			return err
		}
		return e.Sender.SendText(ctx, shop.PhoneNumberID, sess.Phone, helpText)
	}

	// First contact always opens with the greeting and the catalog,
	// whatever the message said.
	if created {
		return e.presentServices(ctx, shop, sess, 0, greetingText(shop.Name))
	}

	switch sess.Phase {
	case models.PhaseWelcome, models.PhaseServiceSelection:
		return e.stepServiceSelection(ctx, shop, sess, cls)
	case models.PhaseBarberSelection:
		return e.stepBarberSelection(ctx, shop, sess, cls)
	case models.PhaseTimeSelection:
		return e.stepTimeSelection(ctx, shop, sess, cls)
	default:
		// confirmation/completed sessions are retired on the spot; a
		// session seen here lost a race with its own retirement. Start
		// the customer over cleanly.
		return e.presentServices(ctx, shop, sess, 0, greetingText(shop.Name))
	}
}

// stepServiceSelection handles welcome and service_selection. A
// structured service id re-enters service handling from any of the two
// phases, so a stale "service_x" tap restarts the selection idempotently.
func (e *Engine) stepServiceSelection(ctx context.Context, shop *models.Shop, sess *models.Session, cls Classification) error {
	switch cls.Intent {
	case IntentSelectService:
		key := cls.Key
		if key == "" {
			key = e.resolveOrdinal(sess, "services", cls.Ordinal)
		}
		return e.selectService(ctx, shop, sess, key)
	case IntentMore:
		return e.presentServices(ctx, shop, sess, e.nextPage(sess, models.CtxServicePage), servicePromptText)
	case IntentGreeting, IntentViewServices, IntentBookAppointment:
		return e.presentServices(ctx, shop, sess, 0, greetingText(shop.Name))
	default:
		return e.presentServices(ctx, shop, sess, e.currentPage(sess, models.CtxServicePage), fallbackRepromptText+" "+servicePromptText)
	}
}

// selectService validates the chosen key against the shop's catalog and
// advances to barber selection. An unknown or inactive key re-prompts
// without touching the recorded state.
func (e *Engine) selectService(ctx context.Context, shop *models.Shop, sess *models.Session, key string) error {
	if key != "" {
		service, err := e.Shops.GetService(ctx, shop.ID, key)
		if err != nil {
			return fmt.Errorf("failed to look up service %q: %w", key, err)
		}
		if service != nil && service.Active {
			sess.ServiceKey = service.Key
			sess.Phase = models.PhaseBarberSelection
			return e.presentBarbers(ctx, shop, sess, 0, barberPromptText)
		}
	}
	return e.presentServices(ctx, shop, sess, e.currentPage(sess, models.CtxServicePage), serviceRepromptText)
}

// stepBarberSelection handles the barber_selection phase. A structured
// service id arriving here restarts service selection instead of being
// treated as noise.
func (e *Engine) stepBarberSelection(ctx context.Context, shop *models.Shop, sess *models.Session, cls Classification) error {
	switch cls.Intent {
	case IntentSelectBarber:
		id := cls.Key
		if id == "" {
			id = e.resolveOrdinal(sess, "barbers", cls.Ordinal)
		}
		return e.selectBarber(ctx, shop, sess, id)
	case IntentSelectService:
		sess.Phase = models.PhaseServiceSelection
		return e.selectService(ctx, shop, sess, cls.Key)
	case IntentMore:
		return e.presentBarbers(ctx, shop, sess, e.nextPage(sess, models.CtxBarberPage), barberPromptText)
	default:
		return e.presentBarbers(ctx, shop, sess, e.currentPage(sess, models.CtxBarberPage), fallbackRepromptText+" "+barberPromptText)
	}
}

// selectBarber validates the barber and presents the coarse time
// periods that still have open slots. A barber with nothing open today
// or tomorrow re-prompts the barber choice.
func (e *Engine) selectBarber(ctx context.Context, shop *models.Shop, sess *models.Session, barberID string) error {
	if barberID == "" {
		return e.presentBarbers(ctx, shop, sess, e.currentPage(sess, models.CtxBarberPage), barberRepromptText)
	}
	barber, err := e.Shops.GetBarber(ctx, shop.ID, barberID)
	if err != nil {
		return fmt.Errorf("failed to look up barber %q: %w", barberID, err)
	}
	if barber == nil || !barber.Active {
		return e.presentBarbers(ctx, shop, sess, e.currentPage(sess, models.CtxBarberPage), barberRepromptText)
	}

	service, err := e.serviceForSession(ctx, shop, sess)
	if err != nil {
		return err
	}
	if service == nil {
		// The selected service vanished from the catalog mid-flow.
		sess.ServiceKey = ""
		sess.Phase = models.PhaseServiceSelection
		return e.presentServices(ctx, shop, sess, 0, serviceRepromptText)
	}

	avail, err := e.Availability.Periods(ctx, shop, barber, service.DurationMin, e.now())
	if err != nil {
		return fmt.Errorf("failed to resolve availability: %w", err)
	}
	if !avail.HasAny() {
		return e.presentBarbers(ctx, shop, sess, e.currentPage(sess, models.CtxBarberPage), fmt.Sprintf(noAvailabilityText, barber.Name))
	}

	sess.BarberID = barber.ID
	sess.BarberName = barber.Name
	sess.Phase = models.PhaseTimeSelection
	sess.SetContext(models.CtxDate, avail.Date)
	return e.present(ctx, shop, sess, periodMenu(avail), periodPromptText, "")
}

// stepTimeSelection handles both menus of the time_selection phase: the
// coarse periods and, once one is chosen, the concrete slots. A bare
// ordinal resolves against whichever menu the customer was last shown.
func (e *Engine) stepTimeSelection(ctx context.Context, shop *models.Shop, sess *models.Session, cls Classification) error {
	switch cls.Intent {
	case IntentSelectSlot:
		return e.selectSlot(ctx, shop, sess, cls.Key)
	case IntentSelectTime:
		if cls.Key != "" {
			return e.selectPeriod(ctx, shop, sess, cls.Key)
		}
		if sess.ContextValue(models.CtxMenu) == "slots" {
			return e.selectSlot(ctx, shop, sess, e.resolveOrdinal(sess, "slots", cls.Ordinal))
		}
		return e.selectPeriod(ctx, shop, sess, e.resolveOrdinal(sess, "periods", cls.Ordinal))
	case IntentSelectService:
		sess.Phase = models.PhaseServiceSelection
		return e.selectService(ctx, shop, sess, cls.Key)
	case IntentSelectBarber:
		sess.Phase = models.PhaseBarberSelection
		return e.selectBarber(ctx, shop, sess, cls.Key)
	case IntentMore:
		if sess.ContextValue(models.CtxMenu) == "slots" {
			return e.presentSlots(ctx, shop, sess, e.nextPage(sess, models.CtxSlotPage), periodPromptText)
		}
		return e.representPeriods(ctx, shop, sess, periodPromptText)
	default:
		if sess.ContextValue(models.CtxMenu) == "slots" {
			return e.presentSlots(ctx, shop, sess, e.currentPage(sess, models.CtxSlotPage), fallbackRepromptText+" "+periodPromptText)
		}
		return e.representPeriods(ctx, shop, sess, fallbackRepromptText+" "+periodPromptText)
	}
}

// selectPeriod records the chosen window and presents its concrete
// slots, recomputed fresh so the menu never offers a stale time.
func (e *Engine) selectPeriod(ctx context.Context, shop *models.Shop, sess *models.Session, key string) error {
	period := models.Period(key)
	if !period.Valid() {
		return e.representPeriods(ctx, shop, sess, periodRepromptText)
	}
	sess.PeriodKey = string(period)
	return e.presentSlots(ctx, shop, sess, 0, "Pick a time:")
}

// selectSlot turns the chosen start time into a booking. The slot is
// re-validated against fresh availability first, and the insert itself
// is the final arbiter: losing the race re-presents what's still open.
func (e *Engine) selectSlot(ctx context.Context, shop *models.Shop, sess *models.Session, start string) error {
	slots, date, err := e.currentSlots(ctx, shop, sess)
	if err != nil {
		return err
	}

	var chosen *models.Slot
	for i := range slots {
		if slots[i].Start == start {
			chosen = &slots[i]
			break
		}
	}
	if chosen == nil {
		return e.presentSlots(ctx, shop, sess, 0, slotRepromptText)
	}

	service, err := e.serviceForSession(ctx, shop, sess)
	if err != nil {
		return err
	}
	barber, err := e.Shops.GetBarber(ctx, shop.ID, sess.BarberID)
	if err != nil {
		return fmt.Errorf("failed to look up barber: %w", err)
	}
	if service == nil || barber == nil {
		sess.Phase = models.PhaseServiceSelection
		return e.presentServices(ctx, shop, sess, 0, serviceRepromptText)
	}

	created, err := e.Bookings.Create(ctx, booking.CreateInput{
		Shop:    shop,
		Barber:  barber,
		Service: service,
		Date:    date,
		Start:   chosen.Start,
		Phone:   sess.Phone,
	})
	if err != nil {
		if errors.Is(err, booking.ErrSlotTaken) {
			return e.presentSlots(ctx, shop, sess, 0, slotRepromptText)
		}
		if errors.Is(err, booking.ErrCodeAllocationExhausted) {
			utils.GetLogger().Error("booking code space exhausted", zap.String("shop_id", shop.ID))
			return e.presentSlots(ctx, shop, sess, 0, bookingRetryText)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	sess.Phase = models.PhaseConfirmation
	sess.BookingID = created.ID
	sess.BookingCode = created.Code
	sess.ClearMenu()
	if err := e.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	if err := e.Sender.SendText(ctx, shop.PhoneNumberID, sess.Phone, confirmationText(created, shop.Name)); err != nil {
		return err
	}
	return e.Sessions.Retire(ctx, sess)
}

// handleCancel serves the cancel and reschedule intents from any phase.
// With a code argument it targets that booking; without one it cancels
// the single upcoming booking or asks which of several to cancel.
func (e *Engine) handleCancel(ctx context.Context, shop *models.Shop, sess *models.Session, code string, asReschedule bool) error {
	var target *models.Booking

	if code != "" {
		found, err := e.Bookings.FindByCode(ctx, shop.ID, code)
		if err != nil {
			return fmt.Errorf("failed to look up booking code: %w", err)
		}
		if found == nil || found.Phone != sess.Phone {
			return e.saveAndSend(ctx, shop, sess, cancelUnknownText)
		}
		target = found
	} else {
		upcoming, err := e.Bookings.Upcoming(ctx, shop, sess.Phone, e.now())
		if err != nil {
			return fmt.Errorf("failed to list upcoming bookings: %w", err)
		}
		switch len(upcoming) {
		case 0:
			return e.saveAndSend(ctx, shop, sess, noUpcomingText)
		case 1:
			target = &upcoming[0]
		default:
			return e.saveAndSend(ctx, shop, sess, pickToCancelText(upcoming))
		}
	}

	cancelled, err := e.Bookings.CancelForCustomer(ctx, shop.ID, sess.Phone, target.ID, asReschedule)
	if err != nil {
		if errors.Is(err, booking.ErrNotCancellable) {
			return e.saveAndSend(ctx, shop, sess, cancelUnknownText)
		}
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	if !asReschedule {
		return e.saveAndSend(ctx, shop, sess, cancelledText(cancelled))
	}

	// Reschedule: the old slot is free, restart the flow at service
	// selection.
	if err := e.Sender.SendText(ctx, shop.PhoneNumberID, sess.Phone, cancelledText(cancelled)); err != nil {
		return err
	}
	sess.Phase = models.PhaseServiceSelection
	sess.ServiceKey = ""
	sess.BarberID = ""
	sess.BarberName = ""
	sess.PeriodKey = ""
	return e.presentServices(ctx, shop, sess, 0, "Let's find you a new time. "+servicePromptText)
}

// handleMyBookings lists the customer's upcoming appointments.
func (e *Engine) handleMyBookings(ctx context.Context, shop *models.Shop, sess *models.Session) error {
	upcoming, err := e.Bookings.Upcoming(ctx, shop, sess.Phone, e.now())
	if err != nil {
		return fmt.Errorf("failed to list upcoming bookings: %w", err)
	}
	if len(upcoming) == 0 {
		return e.saveAndSend(ctx, shop, sess, noUpcomingText)
	}
	return e.saveAndSend(ctx, shop, sess, upcomingListText(upcoming))
}

// presentServices sends one page of the catalog and parks the session in
// service_selection.
func (e *Engine) presentServices(ctx context.Context, shop *models.Shop, sess *models.Session, page int, header string) error {
	services, err := e.Shops.ActiveServices(ctx, shop.ID)
	if err != nil {
		return fmt.Errorf("failed to load service catalog: %w", err)
	}
	if len(services) == 0 {
		return e.saveAndSend(ctx, shop, sess, "We're not taking online bookings right now. Please call the shop.")
	}
	if sess.Phase == models.PhaseWelcome {
		sess.Phase = models.PhaseServiceSelection
	}
	m := serviceMenu(services, page)
	return e.present(ctx, shop, sess, m, header, models.CtxServicePage)
}

// presentBarbers sends one page of the shop's barbers.
func (e *Engine) presentBarbers(ctx context.Context, shop *models.Shop, sess *models.Session, page int, header string) error {
	barbers, err := e.Shops.ActiveBarbers(ctx, shop.ID)
	if err != nil {
		return fmt.Errorf("failed to load barbers: %w", err)
	}
	if len(barbers) == 0 {
		return e.saveAndSend(ctx, shop, sess, "We're not taking online bookings right now. Please call the shop.")
	}
	m := barberMenu(barbers, page)
	return e.present(ctx, shop, sess, m, header, models.CtxBarberPage)
}

// representPeriods recomputes availability for the session's barber and
// re-presents the period menu, falling back to barber selection when the
// barber has nothing left.
func (e *Engine) representPeriods(ctx context.Context, shop *models.Shop, sess *models.Session, header string) error {
	service, err := e.serviceForSession(ctx, shop, sess)
	if err != nil {
		return err
	}
	barber, err := e.Shops.GetBarber(ctx, shop.ID, sess.BarberID)
	if err != nil {
		return fmt.Errorf("failed to look up barber: %w", err)
	}
	if service == nil || barber == nil {
		sess.Phase = models.PhaseServiceSelection
		return e.presentServices(ctx, shop, sess, 0, serviceRepromptText)
	}

	avail, err := e.Availability.Periods(ctx, shop, barber, service.DurationMin, e.now())
	if err != nil {
		return fmt.Errorf("failed to resolve availability: %w", err)
	}
	if !avail.HasAny() {
		sess.Phase = models.PhaseBarberSelection
		return e.presentBarbers(ctx, shop, sess, 0, fmt.Sprintf(noAvailabilityText, barber.Name))
	}
	sess.SetContext(models.CtxDate, avail.Date)
	return e.present(ctx, shop, sess, periodMenu(avail), header, "")
}

// presentSlots recomputes the chosen period's open slots and sends one
// page of them. An emptied period bounces back to the period menu.
func (e *Engine) presentSlots(ctx context.Context, shop *models.Shop, sess *models.Session, page int, header string) error {
	slots, date, err := e.currentSlots(ctx, shop, sess)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return e.representPeriods(ctx, shop, sess, periodRepromptText)
	}
	sess.SetContext(models.CtxDate, date)
	m := slotMenu(slots, page)
	return e.present(ctx, shop, sess, m, header, models.CtxSlotPage)
}

// currentSlots recomputes the open slots for the session's recorded
// barber, service and period. Nothing is cached between requests; the
// booking insert decides contested slots.
func (e *Engine) currentSlots(ctx context.Context, shop *models.Shop, sess *models.Session) ([]models.Slot, string, error) {
	service, err := e.serviceForSession(ctx, shop, sess)
	if err != nil {
		return nil, "", err
	}
	barber, err := e.Shops.GetBarber(ctx, shop.ID, sess.BarberID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up barber: %w", err)
	}
	if service == nil || barber == nil {
		return nil, "", nil
	}

	avail, err := e.Availability.Periods(ctx, shop, barber, service.DurationMin, e.now())
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve availability: %w", err)
	}
	return avail.Periods[models.Period(sess.PeriodKey)], avail.Date, nil
}

func (e *Engine) serviceForSession(ctx context.Context, shop *models.Shop, sess *models.Session) (*models.Service, error) {
	if sess.ServiceKey == "" {
		return nil, nil
	}
	service, err := e.Shops.GetService(ctx, shop.ID, sess.ServiceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up service: %w", err)
	}
	if service != nil && !service.Active {
		return nil, nil
	}
	return service, nil
}

// present records the menu on the session, saves it, and sends the
// buttons. Saving first keeps the stored state ahead of what the
// customer sees, so a send failure re-prompts consistently.
func (e *Engine) present(ctx context.Context, shop *models.Shop, sess *models.Session, m *menu, header, pageKey string) error {
	sess.SetContext(models.CtxMenu, m.Name)
	sess.SetContext(models.CtxOptions, m.optionKeys())
	if pageKey != "" {
		// Store the page as presented, so a wrapped overrun page does
		// not leave a runaway counter behind.
		sess.SetContext(pageKey, strconv.Itoa(m.clampedPage()))
	}
	if err := e.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	return e.Sender.SendButtons(ctx, shop.PhoneNumberID, sess.Phone, m.body(header), m.buttons())
}

// saveAndSend persists the session and answers with a plain text
// message, for replies that don't change the menu state.
func (e *Engine) saveAndSend(ctx context.Context, shop *models.Shop, sess *models.Session, body string) error {
	if err := e.Sessions.Save(ctx, sess); err != nil {
		return err
	}
	return e.Sender.SendText(ctx, shop.PhoneNumberID, sess.Phone, body)
}

// resolveOrdinal maps a bare numeral to the option at that position of
// the menu the customer was last shown. A numeral against a different
// menu, or out of range, resolves to nothing and re-prompts.
func (e *Engine) resolveOrdinal(sess *models.Session, menuName string, n int) string {
	if n < 1 || sess.ContextValue(models.CtxMenu) != menuName {
		return ""
	}
	keys := strings.Split(sess.ContextValue(models.CtxOptions), ",")
	if n > len(keys) {
		return ""
	}
	return keys[n-1]
}

func (e *Engine) currentPage(sess *models.Session, pageKey string) int {
	page, err := strconv.Atoi(sess.ContextValue(pageKey))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func (e *Engine) nextPage(sess *models.Session, pageKey string) int {
	return e.currentPage(sess, pageKey) + 1
}
