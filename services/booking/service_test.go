package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"cropconnect/database/repository/memstore"
	"cropconnect/models"
	"cropconnect/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	farmer = models.Actor{ID: "farmer-1", Role: models.RoleFarmer}
	owner  = models.Actor{ID: "owner-1", Role: models.RoleTractorOwner}
	worker = models.Actor{ID: "worker-1", Role: models.RoleWorker}
)

type recordingScheduler struct {
	mu       sync.Mutex
	bookings []string
}

func (r *recordingScheduler) ScheduleBookingReminder(_ context.Context, bk *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, bk.ID)
	return nil
}

type fixture struct {
	svc       *DefaultBookingService
	store     *memstore.Store
	emitter   *memstore.Emitter
	reminders *recordingScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	emitter := &memstore.Emitter{}
	reminders := &recordingScheduler{}
	f := &fixture{
		store:     store,
		emitter:   emitter,
		reminders: reminders,
		svc: &DefaultBookingService{
			Bookings:     store.Bookings(),
			Requirements: store.Requirements(),
			Catalogs:     NewCatalogs(store.Tractors(), store.Workers()),
			Tx:           store,
			Notifier:     emitter,
			Reminders:    reminders,
			Logger:       zap.NewNop(),
		},
	}

	ctx := context.Background()
	require.NoError(t, store.Tractors().Create(ctx, &models.TractorService{
		ID: "tractor-1", OwnerID: owner.ID, Name: "Mahindra 575", RatePerAcre: 1200,
		Location: models.Location{District: "Nashik"}, Available: true,
	}))
	_, err := store.Workers().Upsert(ctx, &models.WorkerService{
		ID: "wsvc-1", WorkerID: worker.ID, WagePerDay: 450.4, Available: true,
		Location: models.Location{District: "Nashik"},
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) tractorAvailable(t *testing.T) bool {
	t.Helper()
	svc, err := f.store.Tractors().GetByID(context.Background(), "tractor-1")
	require.NoError(t, err)
	return svc.Available
}

func tractorBooking() models.DirectBookingInput {
	return models.DirectBookingInput{
		ServiceType: models.ServiceTractor,
		ServiceID:   "tractor-1",
		Date:        time.Now().Add(48 * time.Hour),
		LandSize:    2.5,
		WorkType:    "Plowing",
	}
}

func TestCost(t *testing.T) {
	assert.Equal(t, 3000.0, Cost(models.ServiceTractor, 1200, 2.5, 0))
	assert.Equal(t, 1351.0, Cost(models.ServiceWorker, 450.4, 0, 3))
	assert.Equal(t, 0.0, Cost(models.ServiceTractor, 1200, 0, 5))
}

func TestCreateDirectReservesListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bk, err := f.svc.CreateDirect(ctx, farmer, tractorBooking())
	require.NoError(t, err)
	assert.Equal(t, 3000.0, bk.TotalCost)
	assert.Equal(t, owner.ID, bk.ProviderID)
	assert.Equal(t, models.BookingConfirmed, bk.Status)
	assert.Equal(t, models.PaymentPending, bk.PaymentStatus)
	require.NotNil(t, bk.Service)
	assert.Equal(t, "tractor-1", bk.Service.ID)
	assert.Equal(t, "Nashik", bk.Location.District)

	assert.False(t, f.tractorAvailable(t))
	assert.Len(t, f.emitter.To(owner.ID, models.NotifyBookingCreated), 1)
	assert.Equal(t, []string{bk.ID}, f.reminders.bookings)

	_, err = f.svc.CreateDirect(ctx, farmer, tractorBooking())
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
}

func TestCreateDirectValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateDirect(ctx, owner, tractorBooking())
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	in := tractorBooking()
	in.ServiceType = "drone"
	_, err = f.svc.CreateDirect(ctx, farmer, in)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	in = tractorBooking()
	in.LandSize = 0
	_, err = f.svc.CreateDirect(ctx, farmer, in)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	in = tractorBooking()
	in.ServiceID = "missing"
	_, err = f.svc.CreateDirect(ctx, farmer, in)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	assert.True(t, f.tractorAvailable(t))
}

func TestCreateDirectWorkerDefaultsToOneDay(t *testing.T) {
	f := newFixture(t)
	bk, err := f.svc.CreateDirect(context.Background(), farmer, models.DirectBookingInput{
		ServiceType: models.ServiceWorker,
		ServiceID:   "wsvc-1",
		Date:        time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, bk.Duration)
	assert.Equal(t, 450.0, bk.TotalCost)
	assert.Equal(t, worker.ID, bk.ProviderID)
}

func TestConcurrentDirectBookingsReserveOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateDirect(ctx, farmer, tractorBooking())
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, utils.IsKind(err, utils.KindInvalidState), "got %v", err)
	}
	assert.Equal(t, 1, ok)
	list, err := f.store.Bookings().ListByFarmer(ctx, farmer.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMarkCompleteReleasesListingOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bk, err := f.svc.CreateDirect(ctx, farmer, tractorBooking())
	require.NoError(t, err)
	f.emitter.Reset()

	_, err = f.svc.MarkComplete(ctx, bk.ID, models.Actor{ID: "stranger", Role: models.RoleFarmer})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	done, err := f.svc.MarkComplete(ctx, bk.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, f.tractorAvailable(t))
	assert.Len(t, f.emitter.To(farmer.ID, models.NotifyBookingCompleted), 1)
	assert.Empty(t, f.emitter.To(owner.ID, ""))

	// Booked again by someone else; a second completion must not free the listing.
	require.NoError(t, f.store.Tractors().SetAvailability(ctx, "tractor-1", true, false))
	_, err = f.svc.MarkComplete(ctx, bk.ID, farmer)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
	assert.False(t, f.tractorAvailable(t))
}

func TestFarmerCompletionNotifiesProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bk, err := f.svc.CreateDirect(ctx, farmer, tractorBooking())
	require.NoError(t, err)
	f.emitter.Reset()

	_, err = f.svc.MarkComplete(ctx, bk.ID, farmer)
	require.NoError(t, err)
	assert.Len(t, f.emitter.To(farmer.ID, models.NotifyBookingCompleted), 1)
	assert.Len(t, f.emitter.To(owner.ID, models.NotifyBookingCompleted), 1)
}

func TestCompletionSettlesRequirement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &models.Requirement{
		ID: "req-1", Kind: models.ServiceTractor, FarmerID: farmer.ID, WorkType: "Plowing",
		Status: models.RequirementOpen, Date: time.Now(),
	}
	require.NoError(t, f.store.Requirements().Create(ctx, req))
	require.NoError(t, f.store.Requirements().Accept(ctx, req.ID, owner.ID, time.Now()))
	bk := &models.Booking{
		ID: "bk-1", FarmerID: farmer.ID, ProviderID: owner.ID, ServiceType: models.ServiceTractor,
		RequirementID: req.ID, TotalCost: 4000, Status: models.BookingConfirmed, PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, f.store.Bookings().Create(ctx, bk))

	_, err := f.svc.MarkComplete(ctx, bk.ID, owner)
	require.NoError(t, err)
	stored, err := f.store.Requirements().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequirementCompleted, stored.Status)
	assert.True(t, f.tractorAvailable(t))
}

func TestRequirementSettlesWithItsLastBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &models.Requirement{
		ID: "req-2", Kind: models.ServiceWorker, FarmerID: farmer.ID, WorkType: "Harvesting",
		WorkersNeeded: 2, Status: models.RequirementOpen, Date: time.Now(),
	}
	require.NoError(t, f.store.Requirements().Create(ctx, req))
	require.NoError(t, f.store.Requirements().Accept(ctx, req.ID, worker.ID, time.Now()))
	for _, id := range []string{"bk-a", "bk-b"} {
		require.NoError(t, f.store.Bookings().Create(ctx, &models.Booking{
			ID: id, FarmerID: farmer.ID, ProviderID: worker.ID, ServiceType: models.ServiceWorker,
			RequirementID: req.ID, TotalCost: 1200, Status: models.BookingConfirmed, PaymentStatus: models.PaymentPending,
		}))
	}

	_, err := f.svc.MarkComplete(ctx, "bk-a", farmer)
	require.NoError(t, err)
	stored, err := f.store.Requirements().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequirementAccepted, stored.Status)

	_, err = f.svc.Cancel(ctx, "bk-b", farmer)
	require.NoError(t, err)
	stored, err = f.store.Requirements().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequirementCompleted, stored.Status)
}

func TestCancelPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bk, err := f.svc.CreateDirect(ctx, farmer, tractorBooking())
	require.NoError(t, err)
	f.emitter.Reset()

	cancelled, err := f.svc.Cancel(ctx, bk.ID, farmer)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.Equal(t, farmer.ID, cancelled.CancelledBy)
	assert.True(t, f.tractorAvailable(t))
	assert.Len(t, f.emitter.To(owner.ID, models.NotifyBookingCancelled), 1)

	_, err = f.svc.Cancel(ctx, bk.ID, owner)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
	_, err = f.svc.MarkComplete(ctx, bk.ID, owner)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	second, err := f.svc.CreateDirect(ctx, farmer, tractorBooking())
	require.NoError(t, err)
	_, err = f.svc.MarkComplete(ctx, second.ID, owner)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, second.ID, farmer)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
}

func TestGetAndListForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bk, err := f.svc.CreateDirect(ctx, farmer, tractorBooking())
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, bk.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, bk.ID, got.ID)

	_, err = f.svc.Get(ctx, bk.ID, worker)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	mine, err := f.svc.ListForUser(ctx, farmer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.svc.ListForUser(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)

	none, err := f.svc.ListForUser(ctx, worker)
	require.NoError(t, err)
	assert.Empty(t, none)
}
