package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "barberflow/database/repository/booking"
	"barberflow/models"
	"barberflow/services/tasks"
	"barberflow/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var validate = validator.New()

// CreateInput is everything needed to turn a chosen slot into a
// booking. Shop, Barber and Service arrive pre-resolved because the
// conversation already validated them against the registry.
type CreateInput struct {
	Shop    *models.Shop
	Barber  *models.Barber
	Service *models.Service
	Date    string // "2006-01-02", shop-local
	Start   string // "HH:MM"
	Phone   string // E.164
}

// BookingService creates and manages appointment records.
type BookingService interface {
	Create(ctx context.Context, input CreateInput) (*models.Booking, error)
	// CancelForCustomer releases one of the customer's own bookings.
	// asReschedule marks the record rescheduled instead of cancelled.
	CancelForCustomer(ctx context.Context, shopID, phone, bookingID string, asReschedule bool) (*models.Booking, error)
	// Upcoming lists the customer's future slot-holding bookings.
	Upcoming(ctx context.Context, shop *models.Shop, phone string, now time.Time) ([]models.Booking, error)
	FindByCode(ctx context.Context, shopID, code string) (*models.Booking, error)
	ListForDay(ctx context.Context, shopID, date string) ([]models.Booking, error)
	// Transition applies a staff status change with lifecycle checks.
	Transition(ctx context.Context, shopID, bookingID string, next models.BookingStatus) (*models.Booking, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	Codes        *CodeAssigner
	Queue        *asynq.Client // nil disables reminder scheduling
	ReminderLead time.Duration
}

// Create assigns a code, claims the slot and inserts the booking. The
// sparse unique slot_key index decides slot races: a duplicate-key
// error comes back as ErrSlotTaken and the conversation re-presents
// fresh availability.
func (s *DefaultBookingService) Create(ctx context.Context, input CreateInput) (*models.Booking, error) {
	if input.Service == nil || !input.Service.Active {
		return nil, ErrUnknownService
	}
	if input.Barber == nil || !input.Barber.Active {
		return nil, ErrUnknownBarber
	}

	startMin, err := parseHHMM(input.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid slot start: %w", err)
	}
	end := formatHHMM(startMin + input.Service.DurationMin)

	code, err := s.Codes.Assign(ctx)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:           uuid.New().String(),
		Code:         code,
		ShopID:       input.Shop.ID,
		BarberID:     input.Barber.ID,
		BarberName:   input.Barber.Name,
		ServiceKey:   input.Service.Key,
		ServiceLabel: input.Service.Label,
		Date:         input.Date,
		StartTime:    input.Start,
		EndTime:      end,
		Phone:        input.Phone,
		Status:       models.BookingConfirmed,
		SlotKey:      models.SlotKey(input.Shop.ID, input.Barber.ID, input.Date, input.Start),
	}
	if err := validate.Struct(booking); err != nil {
		return nil, fmt.Errorf("invalid booking: %w", err)
	}

	if err := s.Repo.Create(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Either the slot or, far less likely, the code lost a
			// race. Both resolve the same way: the customer picks
			// again and everything is regenerated.
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	s.scheduleReminder(ctx, input.Shop, booking)
	return booking, nil
}

// scheduleReminder enqueues a delayed reminder task when the
// appointment is far enough away. Scheduling failures only cost the
// reminder, never the booking.
func (s *DefaultBookingService) scheduleReminder(ctx context.Context, shop *models.Shop, booking *models.Booking) {
	if s.Queue == nil || s.ReminderLead <= 0 {
		return
	}
	logger := utils.GetLogger()

	loc, err := time.LoadLocation(shop.Settings.Timezone)
	if err != nil {
		logger.Warn("reminder skipped: bad shop timezone", zap.Error(err))
		return
	}
	startAt, err := time.ParseInLocation("2006-01-02 15:04", booking.Date+" "+booking.StartTime, loc)
	if err != nil {
		logger.Warn("reminder skipped: bad appointment time", zap.Error(err))
		return
	}
	fireAt := startAt.Add(-s.ReminderLead)
	if !fireAt.After(time.Now()) {
		return
	}

	payload := models.ReminderPayload{
		BookingID:     booking.ID,
		ShopID:        booking.ShopID,
		Code:          booking.Code,
		Phone:         booking.Phone,
		PhoneNumberID: shop.PhoneNumberID,
		ShopName:      shop.Name,
		ServiceLabel:  booking.ServiceLabel,
		BarberName:    booking.BarberName,
		Date:          booking.Date,
		StartTime:     booking.StartTime,
	}
	task, opts, err := tasks.NewReminderTask(payload, fireAt)
	if err != nil {
		logger.Warn("reminder task build failed", zap.Error(err))
		return
	}
	if _, err := s.Queue.Enqueue(task, opts...); err != nil {
		logger.Warn("reminder enqueue failed",
			zap.String("booking_id", booking.ID),
			zap.Error(err))
	}
}

// CancelForCustomer conditionally releases one of the customer's own
// bookings. A nil result from the repository means nothing matched:
// wrong owner, already released, or completed.
func (s *DefaultBookingService) CancelForCustomer(ctx context.Context, shopID, phone, bookingID string, asReschedule bool) (*models.Booking, error) {
	to := models.BookingCancelled
	if asReschedule {
		to = models.BookingRescheduled
	}
	booking, err := s.Repo.Cancel(ctx, shopID, phone, bookingID, to)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotCancellable
	}
	return booking, nil
}

// Upcoming lists the customer's future slot-holding bookings in shop
// time.
func (s *DefaultBookingService) Upcoming(ctx context.Context, shop *models.Shop, phone string, now time.Time) ([]models.Booking, error) {
	loc, err := time.LoadLocation(shop.Settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid shop timezone: %w", err)
	}
	localNow := now.In(loc)
	fromDate := localNow.Format("2006-01-02")
	fromTime := localNow.Format("15:04")
	return s.Repo.UpcomingForPhone(ctx, shop.ID, phone, fromDate, fromTime)
}

// FindByCode resolves a booking by its human-facing code.
func (s *DefaultBookingService) FindByCode(ctx context.Context, shopID, code string) (*models.Booking, error) {
	return s.Repo.GetByCode(ctx, shopID, code)
}

// ListForDay returns every booking for the shop and date.
func (s *DefaultBookingService) ListForDay(ctx context.Context, shopID, date string) ([]models.Booking, error) {
	return s.Repo.ListForDay(ctx, shopID, date)
}

// Transition applies a staff status change. The lifecycle lives on the
// model; re-claiming a released slot can fail with ErrSlotTaken when
// someone else booked it in the meantime.
func (s *DefaultBookingService) Transition(ctx context.Context, shopID, bookingID string, next models.BookingStatus) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, shopID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}
	if !booking.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, next)
	}

	if err := s.Repo.UpdateStatus(ctx, booking, next); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return booking, nil
}
