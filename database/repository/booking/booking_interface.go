package bookingRepo

import (
	"context"

	"barberflow/models"
)

// BookingRepository manages appointment records. Slot exclusivity and
// code uniqueness are enforced by unique indexes, so Create and
// UpdateStatus surface duplicate-key errors for the service layer to
// translate.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, shopID, id string) (*models.Booking, error)
	GetByCode(ctx context.Context, shopID, code string) (*models.Booking, error)
	// CodeInUse reports whether any booking currently carries the code.
	CodeInUse(ctx context.Context, code string) (bool, error)
	// BlockingForDay returns the bookings that still occupy slots for
	// one barber and date, ordered by start time.
	BlockingForDay(ctx context.Context, shopID, barberID, date string) ([]models.Booking, error)
	// UpcomingForPhone returns a customer's future slot-holding
	// bookings, earliest first.
	UpcomingForPhone(ctx context.Context, shopID, phone, fromDate, fromTime string) ([]models.Booking, error)
	ListForDay(ctx context.Context, shopID, date string) ([]models.Booking, error)
	// Cancel conditionally releases a customer-owned booking. The
	// filter requires the booking to still hold its slot, so completed
	// or already-cancelled bookings are not matched.
	Cancel(ctx context.Context, shopID, phone, bookingID string, to models.BookingStatus) (*models.Booking, error)
	// UpdateStatus applies a staff transition from the booking's
	// current status, claiming or releasing the slot key as the target
	// status requires.
	UpdateStatus(ctx context.Context, booking *models.Booking, to models.BookingStatus) error
	EnsureIndexes(ctx context.Context) error
}
