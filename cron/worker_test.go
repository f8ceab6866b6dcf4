package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cropconnect/database/repository/memstore"
	"cropconnect/models"
	"cropconnect/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	to  []string
	err error
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	f.to = append(f.to, to)
	return f.err
}

func newHandlers(t *testing.T) (*Handlers, *memstore.Store, *memstore.Emitter, *fakeMailer) {
	t.Helper()
	store := memstore.New()
	emitter := &memstore.Emitter{}
	m := &fakeMailer{}
	return &Handlers{Mailer: m, Bookings: store.Bookings(), Notifier: emitter, Logger: zap.NewNop()}, store, emitter, m
}

func TestHandleEmail(t *testing.T) {
	h, _, _, m := newHandlers(t)
	task, _, err := tasks.NewEmailTask(models.EmailPayload{To: "x@y.z", Subject: "s", Body: "b"})
	require.NoError(t, err)

	require.NoError(t, h.HandleEmail(context.Background(), task))
	assert.Equal(t, []string{"x@y.z"}, m.to)

	m.err = errors.New("smtp down")
	assert.Error(t, h.HandleEmail(context.Background(), task))
}

func TestHandleEmailRejectsGarbage(t *testing.T) {
	h, _, _, _ := newHandlers(t)
	err := h.HandleEmail(context.Background(), asynq.NewTask(tasks.TypeSendEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleReminderNotifiesBothParties(t *testing.T) {
	h, store, emitter, _ := newHandlers(t)
	ctx := context.Background()
	require.NoError(t, store.Bookings().Create(ctx, &models.Booking{
		ID: "b-1", FarmerID: "f-1", ProviderID: "p-1", ServiceType: models.ServiceTractor,
		Date: time.Now().Add(24 * time.Hour), Status: models.BookingConfirmed, PaymentStatus: models.PaymentPending,
	}))

	b, _ := json.Marshal(models.ReminderPayload{BookingID: "b-1"})
	require.NoError(t, h.HandleReminder(ctx, asynq.NewTask(tasks.TypeSendReminder, b)))

	assert.Len(t, emitter.To("f-1", models.NotifyBookingReminder), 1)
	assert.Len(t, emitter.To("p-1", models.NotifyBookingReminder), 1)
}

func TestHandleReminderSkipsCancelledBooking(t *testing.T) {
	h, store, emitter, _ := newHandlers(t)
	ctx := context.Background()
	require.NoError(t, store.Bookings().Create(ctx, &models.Booking{
		ID: "b-2", FarmerID: "f-1", ProviderID: "p-1", Status: models.BookingCancelled,
	}))

	b, _ := json.Marshal(models.ReminderPayload{BookingID: "b-2"})
	require.NoError(t, h.HandleReminder(ctx, asynq.NewTask(tasks.TypeSendReminder, b)))
	assert.Empty(t, emitter.Sent())
}
