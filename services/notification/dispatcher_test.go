package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cropconnect/database/repository/memstore"
	"cropconnect/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRealtime struct {
	mu   sync.Mutex
	sent map[string]int
}

func (f *fakeRealtime) SendToUser(userID string, _ any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = map[string]int{}
	}
	f.sent[userID]++
	return true
}

type fakePush struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (f *fakePush) SendPush(_ context.Context, token, _, _ string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.err
}

type fakeEmailQueue struct {
	mu       sync.Mutex
	payloads []models.EmailPayload
}

func (f *fakeEmailQueue) EnqueueEmail(_ context.Context, p models.EmailPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	return nil
}

func newTestDispatcher(t *testing.T, channels Channels) (*Dispatcher, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.Users().Create(context.Background(), &models.User{
		ID: "farmer-1", Name: "Asha", Email: "asha@example.com", Role: models.RoleFarmer, FCMToken: "tok-1",
	}))
	d := NewDispatcher(store.Notifications(), store.Users(), channels, DispatcherConfig{QueueSize: 16, Workers: 2}, zap.NewNop())
	return d, store
}

func TestDispatcherPersistsAndFansOut(t *testing.T) {
	rt := &fakeRealtime{}
	push := &fakePush{}
	mail := &fakeEmailQueue{}
	d, _ := newTestDispatcher(t, Channels{Realtime: rt, Push: push, Email: mail})

	d.Emit(context.Background(), models.NotificationInput{
		RecipientID: "farmer-1",
		Type:        models.NotifyBookingCreated,
		Title:       "Booking created",
		Message:     "Your tractor is booked",
		Refs:        models.NotificationRefs{BookingID: "b-1"},
	})
	d.Close()

	inbox, err := d.List(context.Background(), "farmer-1", false, 0, 0)
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, int64(1), inbox.UnreadCount)
	assert.Equal(t, "b-1", inbox.Notifications[0].Refs.BookingID)

	assert.Equal(t, 1, rt.sent["farmer-1"])
	assert.Equal(t, []string{"tok-1"}, push.tokens)
	require.Len(t, mail.payloads, 1)
	assert.Equal(t, "asha@example.com", mail.payloads[0].To)
}

func TestDispatcherSkipsEmailForInAppTypes(t *testing.T) {
	mail := &fakeEmailQueue{}
	d, _ := newTestDispatcher(t, Channels{Email: mail})

	d.Emit(context.Background(), models.NotificationInput{RecipientID: "farmer-1", Type: models.NotifyBidReceived, Title: "New bid"})
	d.Close()

	assert.Empty(t, mail.payloads)
}

func TestDispatcherSwallowsChannelFailures(t *testing.T) {
	push := &fakePush{err: errors.New("fcm down")}
	d, _ := newTestDispatcher(t, Channels{Push: push})

	d.Emit(context.Background(), models.NotificationInput{RecipientID: "farmer-1", Type: models.NotifySystem, Title: "hi"})
	d.Emit(context.Background(), models.NotificationInput{RecipientID: "ghost", Type: models.NotifySystem, Title: "hi"})
	d.Close()

	inbox, err := d.List(context.Background(), "farmer-1", false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, inbox.Notifications, 1)

	ghost, err := d.List(context.Background(), "ghost", false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, ghost.Notifications, 1)
}

func TestEmitAfterCloseIsDropped(t *testing.T) {
	d, _ := newTestDispatcher(t, Channels{})
	d.Close()

	assert.NotPanics(t, func() {
		d.Emit(context.Background(), models.NotificationInput{RecipientID: "farmer-1", Type: models.NotifySystem})
	})
	d.Close()
}

func TestInboxOperationsAreScopedToRecipient(t *testing.T) {
	d, _ := newTestDispatcher(t, Channels{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		d.Emit(ctx, models.NotificationInput{RecipientID: "farmer-1", Type: models.NotifySystem, Title: "n"})
	}
	d.Emit(ctx, models.NotificationInput{RecipientID: "farmer-2", Type: models.NotifySystem, Title: "other"})
	d.Close()

	inbox, err := d.List(ctx, "farmer-1", false, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 3)
	first := inbox.Notifications[0].ID

	other, err := d.List(ctx, "farmer-2", false, 10, 0)
	require.NoError(t, err)
	require.Len(t, other.Notifications, 1)

	err = d.MarkRead(ctx, "farmer-1", other.Notifications[0].ID)
	assert.Error(t, err)

	require.NoError(t, d.MarkRead(ctx, "farmer-1", first))
	unread, err := d.List(ctx, "farmer-1", true, 10, 0)
	require.NoError(t, err)
	assert.Len(t, unread.Notifications, 2)
	assert.Equal(t, int64(2), unread.UnreadCount)

	n, err := d.MarkAllRead(ctx, "farmer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, d.Delete(ctx, "farmer-1", first))
	assert.Error(t, d.Delete(ctx, "farmer-1", first))

	page, err := d.List(ctx, "farmer-1", false, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 1)
	assert.Equal(t, int64(0), page.UnreadCount)
}
