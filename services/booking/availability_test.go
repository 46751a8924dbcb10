package booking

import (
	"context"
	"testing"
	"time"

	"barberflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingRepo is a func-field fake of BookingRepository. Methods
// with a nil func return zero values.
type fakeBookingRepo struct {
	createFn      func(ctx context.Context, booking *models.Booking) error
	getByIDFn     func(ctx context.Context, shopID, id string) (*models.Booking, error)
	getByCodeFn   func(ctx context.Context, shopID, code string) (*models.Booking, error)
	codeInUseFn   func(ctx context.Context, code string) (bool, error)
	blockingFn    func(ctx context.Context, shopID, barberID, date string) ([]models.Booking, error)
	upcomingFn    func(ctx context.Context, shopID, phone, fromDate, fromTime string) ([]models.Booking, error)
	listForDayFn  func(ctx context.Context, shopID, date string) ([]models.Booking, error)
	cancelFn      func(ctx context.Context, shopID, phone, bookingID string, to models.BookingStatus) (*models.Booking, error)
	updateStatFn  func(ctx context.Context, booking *models.Booking, to models.BookingStatus) error
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if f.createFn != nil {
		return f.createFn(ctx, booking)
	}
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, shopID, id string) (*models.Booking, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, shopID, id)
	}
	return nil, nil
}

func (f *fakeBookingRepo) GetByCode(ctx context.Context, shopID, code string) (*models.Booking, error) {
	if f.getByCodeFn != nil {
		return f.getByCodeFn(ctx, shopID, code)
	}
	return nil, nil
}

func (f *fakeBookingRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	if f.codeInUseFn != nil {
		return f.codeInUseFn(ctx, code)
	}
	return false, nil
}

func (f *fakeBookingRepo) BlockingForDay(ctx context.Context, shopID, barberID, date string) ([]models.Booking, error) {
	if f.blockingFn != nil {
		return f.blockingFn(ctx, shopID, barberID, date)
	}
	return nil, nil
}

func (f *fakeBookingRepo) UpcomingForPhone(ctx context.Context, shopID, phone, fromDate, fromTime string) ([]models.Booking, error) {
	if f.upcomingFn != nil {
		return f.upcomingFn(ctx, shopID, phone, fromDate, fromTime)
	}
	return nil, nil
}

func (f *fakeBookingRepo) ListForDay(ctx context.Context, shopID, date string) ([]models.Booking, error) {
	if f.listForDayFn != nil {
		return f.listForDayFn(ctx, shopID, date)
	}
	return nil, nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, shopID, phone, bookingID string, to models.BookingStatus) (*models.Booking, error) {
	if f.cancelFn != nil {
		return f.cancelFn(ctx, shopID, phone, bookingID, to)
	}
	return nil, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, booking *models.Booking, to models.BookingStatus) error {
	if f.updateStatFn != nil {
		return f.updateStatFn(ctx, booking, to)
	}
	return nil
}

func (f *fakeBookingRepo) EnsureIndexes(ctx context.Context) error { return nil }

func testShop() *models.Shop {
	return &models.Shop{
		ID:            "shop-1",
		Name:          "Fade Factory",
		PhoneNumberID: "555000111",
		Active:        true,
		Settings: models.ShopSettings{
			Timezone:        "UTC",
			OpenTime:        "09:00",
			CloseTime:       "18:00",
			LunchStart:      "13:00",
			LunchEnd:        "14:00",
			SlotIntervalMin: 30,
		},
	}
}

func testBarber() *models.Barber {
	b := &models.Barber{
		ID:     "barber-1",
		ShopID: "shop-1",
		Name:   "Marco",
		Active: true,
	}
	for i := range b.Week {
		b.Week[i] = models.DaySchedule{Working: true, Start: "09:00", End: "18:00"}
	}
	return b
}

func slotStarts(slots []models.Slot) []string {
	starts := make([]string, len(slots))
	for i, s := range slots {
		starts[i] = s.Start
	}
	return starts
}

func TestSlotsExcludesLunchAndExistingBookings(t *testing.T) {
	repo := &fakeBookingRepo{
		blockingFn: func(ctx context.Context, shopID, barberID, date string) ([]models.Booking, error) {
			return []models.Booking{
				{ID: "b1", StartTime: "10:00", EndTime: "10:30", Status: models.BookingConfirmed},
			}, nil
		},
	}
	resolver := &AvailabilityResolver{Bookings: repo}

	// A date well in the future so the now-filter stays out of the way.
	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	slots, err := resolver.Slots(context.Background(), testShop(), testBarber(), "2026-09-01", 30, now)
	require.NoError(t, err)

	starts := slotStarts(slots)
	assert.Contains(t, starts, "09:00")
	assert.Contains(t, starts, "09:30")
	assert.Contains(t, starts, "10:30")
	assert.Contains(t, starts, "14:00")
	assert.Contains(t, starts, "17:30")

	assert.NotContains(t, starts, "10:00", "overlaps the existing booking")
	assert.NotContains(t, starts, "13:00", "inside the lunch window")
	assert.NotContains(t, starts, "13:30", "inside the lunch window")
	assert.NotContains(t, starts, "18:00", "would end past close")

	// 18 half-hour starts, minus two lunch entries and one booked.
	assert.Len(t, slots, 15)
}

func TestSlotsRespectsBarberSchedule(t *testing.T) {
	resolver := &AvailabilityResolver{Bookings: &fakeBookingRepo{}}
	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)

	t.Run("non-working day yields nothing", func(t *testing.T) {
		barber := testBarber()
		barber.Week[time.Tuesday] = models.DaySchedule{Working: false}

		// 2026-09-01 is a Tuesday.
		slots, err := resolver.Slots(context.Background(), testShop(), barber, "2026-09-01", 30, now)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("working window narrower than shop hours", func(t *testing.T) {
		barber := testBarber()
		barber.Week[time.Tuesday] = models.DaySchedule{Working: true, Start: "14:00", End: "16:00"}

		slots, err := resolver.Slots(context.Background(), testShop(), barber, "2026-09-01", 30, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"14:00", "14:30", "15:00", "15:30"}, slotStarts(slots))
	})
}

func TestSlotsFiltersPastTimesToday(t *testing.T) {
	resolver := &AvailabilityResolver{Bookings: &fakeBookingRepo{}}

	now := time.Date(2026, 9, 1, 15, 10, 0, 0, time.UTC)
	slots, err := resolver.Slots(context.Background(), testShop(), testBarber(), "2026-09-01", 30, now)
	require.NoError(t, err)

	starts := slotStarts(slots)
	assert.NotContains(t, starts, "15:00")
	assert.Equal(t, "15:30", starts[0])
}

func TestSlotsNeverOverlapBlockingBookings(t *testing.T) {
	// A long booking in the middle of the day; a 60-minute service must
	// not produce any slot touching it.
	repo := &fakeBookingRepo{
		blockingFn: func(ctx context.Context, shopID, barberID, date string) ([]models.Booking, error) {
			return []models.Booking{
				{ID: "b1", StartTime: "11:00", EndTime: "12:30", Status: models.BookingPending},
			}, nil
		},
	}
	resolver := &AvailabilityResolver{Bookings: repo}
	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)

	slots, err := resolver.Slots(context.Background(), testShop(), testBarber(), "2026-09-01", 60, now)
	require.NoError(t, err)

	for _, s := range slots {
		assert.False(t, s.Start < "12:30" && s.End > "11:00",
			"slot %s-%s overlaps the 11:00-12:30 booking", s.Start, s.End)
	}
}

func TestPeriodsBucketsByTimeOfDay(t *testing.T) {
	resolver := &AvailabilityResolver{Bookings: &fakeBookingRepo{}}

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	avail, err := resolver.Periods(context.Background(), testShop(), testBarber(), 30, now)
	require.NoError(t, err)
	require.Equal(t, "2026-09-01", avail.Date)

	// Within two hours of 09:00 -> "now".
	for _, s := range avail.Periods[models.PeriodNow] {
		assert.LessOrEqual(t, s.Start, "11:00")
	}
	// Evening starts at 17:00.
	for _, s := range avail.Periods[models.PeriodEvening] {
		assert.GreaterOrEqual(t, s.Start, "17:00")
	}
	// The rest of the day lands in "later".
	assert.NotEmpty(t, avail.Periods[models.PeriodLater])
	assert.Empty(t, avail.Periods[models.PeriodTomorrow])
}

func TestPeriodsFallsBackToTomorrow(t *testing.T) {
	resolver := &AvailabilityResolver{Bookings: &fakeBookingRepo{}}

	// After close: today has nothing, tomorrow carries the offer.
	now := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	avail, err := resolver.Periods(context.Background(), testShop(), testBarber(), 30, now)
	require.NoError(t, err)

	assert.Equal(t, "2026-09-02", avail.Date)
	assert.Empty(t, avail.Periods[models.PeriodNow])
	assert.NotEmpty(t, avail.Periods[models.PeriodTomorrow])
	assert.True(t, avail.HasAny())
}

func TestPeriodsNoAvailabilityEitherDay(t *testing.T) {
	barber := testBarber()
	for i := range barber.Week {
		barber.Week[i] = models.DaySchedule{Working: false}
	}
	resolver := &AvailabilityResolver{Bookings: &fakeBookingRepo{}}

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	avail, err := resolver.Periods(context.Background(), testShop(), barber, 30, now)
	require.NoError(t, err)
	assert.False(t, avail.HasAny())
}
