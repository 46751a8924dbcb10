package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"barberflow/models"
	"barberflow/services/messenger"
	"barberflow/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminderSender struct {
	sent []string
	err  error
}

func (f *fakeReminderSender) SendText(ctx context.Context, phoneNumberID, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}

func (f *fakeReminderSender) SendButtons(ctx context.Context, phoneNumberID, to, body string, buttons []messenger.Button) error {
	return f.SendText(ctx, phoneNumberID, to, body)
}

type fakeBookingLookup struct {
	booking *models.Booking
	err     error
}

func (f *fakeBookingLookup) GetByID(ctx context.Context, shopID, id string) (*models.Booking, error) {
	return f.booking, f.err
}

func reminderTask(t *testing.T) *asynq.Task {
	t.Helper()
	payload := models.ReminderPayload{
		BookingID:     "bk-1",
		ShopID:        "shop-1",
		Code:          "XK29QD",
		Phone:         "5511999998888",
		PhoneNumberID: "555000111",
		ShopName:      "Fade Factory",
		ServiceLabel:  "Haircut",
		BarberName:    "Marco",
		Date:          "2026-09-01",
		StartTime:     "14:00",
	}
	task, _, err := tasks.NewReminderTask(payload, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return task
}

func TestReminderSendsForActiveBooking(t *testing.T) {
	sender := &fakeReminderSender{}
	lookup := &fakeBookingLookup{booking: &models.Booking{
		ID: "bk-1", ShopID: "shop-1", Status: models.BookingConfirmed,
	}}

	err := handleReminderTask(sender, lookup)(context.Background(), reminderTask(t))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Fade Factory")
	assert.Contains(t, sender.sent[0], "XK29QD")
}

func TestReminderSkipsCancelledBooking(t *testing.T) {
	sender := &fakeReminderSender{}
	lookup := &fakeBookingLookup{booking: &models.Booking{
		ID: "bk-1", ShopID: "shop-1", Status: models.BookingCancelled,
	}}

	err := handleReminderTask(sender, lookup)(context.Background(), reminderTask(t))
	require.NoError(t, err, "a stale reminder is dropped, not retried")
	assert.Empty(t, sender.sent)
}

func TestReminderSkipsMissingBooking(t *testing.T) {
	sender := &fakeReminderSender{}
	lookup := &fakeBookingLookup{}

	err := handleReminderTask(sender, lookup)(context.Background(), reminderTask(t))
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestReminderRetriesOnLookupError(t *testing.T) {
	sender := &fakeReminderSender{}
	lookup := &fakeBookingLookup{err: errors.New("server selection timeout")}

	err := handleReminderTask(sender, lookup)(context.Background(), reminderTask(t))
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestReminderRetriesOnSendError(t *testing.T) {
	sender := &fakeReminderSender{err: errors.New("graph api 500")}
	lookup := &fakeBookingLookup{booking: &models.Booking{
		ID: "bk-1", ShopID: "shop-1", Status: models.BookingConfirmed,
	}}

	err := handleReminderTask(sender, lookup)(context.Background(), reminderTask(t))
	require.Error(t, err)
}

func TestReminderDropsMalformedPayload(t *testing.T) {
	sender := &fakeReminderSender{}
	lookup := &fakeBookingLookup{}

	task := asynq.NewTask(tasks.TypeSendReminder, []byte("{not json"))
	err := handleReminderTask(sender, lookup)(context.Background(), task)
	require.NoError(t, err, "malformed payloads never become deliverable")
	assert.Empty(t, sender.sent)
}
