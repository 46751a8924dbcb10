package booking

import (
	"context"
	"testing"

	"barberflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}},
	}
}

func testService() *models.Service {
	return &models.Service{
		Key:         "haircut",
		Label:       "Haircut",
		DurationMin: 30,
		Price:       25,
		Active:      true,
	}
}

func TestCreateClaimsSlotAndAssignsCode(t *testing.T) {
	var inserted *models.Booking
	repo := &fakeBookingRepo{
		createFn: func(ctx context.Context, booking *models.Booking) error {
			inserted = booking
			return nil
		},
	}
	svc := &DefaultBookingService{Repo: repo, Codes: &CodeAssigner{Bookings: repo}}

	created, err := svc.Create(context.Background(), CreateInput{
		Shop:    testShop(),
		Barber:  testBarber(),
		Service: testService(),
		Date:    "2026-09-01",
		Start:   "10:30",
		Phone:   "+5511999998888",
	})
	require.NoError(t, err)
	require.NotNil(t, inserted)

	assert.Equal(t, "11:00", created.EndTime, "end derives from start plus service duration")
	assert.Len(t, created.Code, 6)
	assert.Equal(t, models.BookingConfirmed, created.Status)
	assert.Equal(t, models.SlotKey("shop-1", "barber-1", "2026-09-01", "10:30"), created.SlotKey)
}

func TestCreateTranslatesDuplicateKeyToSlotTaken(t *testing.T) {
	repo := &fakeBookingRepo{
		createFn: func(ctx context.Context, booking *models.Booking) error {
			return duplicateKeyError()
		},
	}
	svc := &DefaultBookingService{Repo: repo, Codes: &CodeAssigner{Bookings: repo}}

	_, err := svc.Create(context.Background(), CreateInput{
		Shop:    testShop(),
		Barber:  testBarber(),
		Service: testService(),
		Date:    "2026-09-01",
		Start:   "10:30",
		Phone:   "+5511999998888",
	})
	require.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := &DefaultBookingService{Repo: &fakeBookingRepo{}, Codes: &CodeAssigner{Bookings: &fakeBookingRepo{}}}

	t.Run("malformed phone", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateInput{
			Shop:    testShop(),
			Barber:  testBarber(),
			Service: testService(),
			Date:    "2026-09-01",
			Start:   "10:30",
			Phone:   "not-a-phone",
		})
		require.Error(t, err)
	})

	t.Run("inactive service", func(t *testing.T) {
		service := testService()
		service.Active = false
		_, err := svc.Create(context.Background(), CreateInput{
			Shop:    testShop(),
			Barber:  testBarber(),
			Service: service,
			Date:    "2026-09-01",
			Start:   "10:30",
			Phone:   "+5511999998888",
		})
		require.ErrorIs(t, err, ErrUnknownService)
	})

	t.Run("missing barber", func(t *testing.T) {
		_, err := svc.Create(context.Background(), CreateInput{
			Shop:    testShop(),
			Service: testService(),
			Date:    "2026-09-01",
			Start:   "10:30",
			Phone:   "+5511999998888",
		})
		require.ErrorIs(t, err, ErrUnknownBarber)
	})
}

func TestCancelForCustomer(t *testing.T) {
	t.Run("released booking comes back", func(t *testing.T) {
		repo := &fakeBookingRepo{
			cancelFn: func(ctx context.Context, shopID, phone, bookingID string, to models.BookingStatus) (*models.Booking, error) {
				assert.Equal(t, models.BookingCancelled, to)
				return &models.Booking{ID: bookingID, Status: to}, nil
			},
		}
		svc := &DefaultBookingService{Repo: repo}

		b, err := svc.CancelForCustomer(context.Background(), "shop-1", "+5511999998888", "bk-1", false)
		require.NoError(t, err)
		assert.Equal(t, models.BookingCancelled, b.Status)
	})

	t.Run("reschedule uses the rescheduled status", func(t *testing.T) {
		repo := &fakeBookingRepo{
			cancelFn: func(ctx context.Context, shopID, phone, bookingID string, to models.BookingStatus) (*models.Booking, error) {
				assert.Equal(t, models.BookingRescheduled, to)
				return &models.Booking{ID: bookingID, Status: to}, nil
			},
		}
		svc := &DefaultBookingService{Repo: repo}

		_, err := svc.CancelForCustomer(context.Background(), "shop-1", "+5511999998888", "bk-1", true)
		require.NoError(t, err)
	})

	t.Run("no match means not cancellable", func(t *testing.T) {
		svc := &DefaultBookingService{Repo: &fakeBookingRepo{}}

		_, err := svc.CancelForCustomer(context.Background(), "shop-1", "+5511999998888", "bk-1", false)
		require.ErrorIs(t, err, ErrNotCancellable)
	})
}

func TestTransitionEnforcesLifecycle(t *testing.T) {
	tests := []struct {
		name    string
		from    models.BookingStatus
		to      models.BookingStatus
		wantErr error
	}{
		{"confirm pending", models.BookingPending, models.BookingConfirmed, nil},
		{"complete confirmed", models.BookingConfirmed, models.BookingCompleted, nil},
		{"completed is immutable", models.BookingCompleted, models.BookingCancelled, ErrInvalidTransition},
		{"cancelled can be undone", models.BookingCancelled, models.BookingConfirmed, nil},
		{"cancelled cannot complete", models.BookingCancelled, models.BookingCompleted, ErrInvalidTransition},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeBookingRepo{
				getByIDFn: func(ctx context.Context, shopID, id string) (*models.Booking, error) {
					return &models.Booking{ID: id, ShopID: shopID, Status: tc.from}, nil
				},
			}
			svc := &DefaultBookingService{Repo: repo}

			updated, err := svc.Transition(context.Background(), "shop-1", "bk-1", tc.to)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, updated.Status)
		})
	}
}

func TestTransitionReclaimLosesRace(t *testing.T) {
	repo := &fakeBookingRepo{
		getByIDFn: func(ctx context.Context, shopID, id string) (*models.Booking, error) {
			return &models.Booking{ID: id, ShopID: shopID, Status: models.BookingCancelled}, nil
		},
		updateStatFn: func(ctx context.Context, booking *models.Booking, to models.BookingStatus) error {
			return duplicateKeyError()
		},
	}
	svc := &DefaultBookingService{Repo: repo}

	_, err := svc.Transition(context.Background(), "shop-1", "bk-1", models.BookingConfirmed)
	require.ErrorIs(t, err, ErrSlotTaken)
}
