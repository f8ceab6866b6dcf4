package bid

import (
	"context"
	"sync"
	"testing"
	"time"

	"cropconnect/database/repository/memstore"
	requirementRepo "cropconnect/database/repository/requirement"
	"cropconnect/models"
	"cropconnect/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	farmer = models.Actor{ID: "farmer-1", Role: models.RoleFarmer}
	owner1 = models.Actor{ID: "owner-1", Role: models.RoleTractorOwner}
	owner2 = models.Actor{ID: "owner-2", Role: models.RoleTractorOwner}
	owner3 = models.Actor{ID: "owner-3", Role: models.RoleTractorOwner}
)

type fixture struct {
	svc     *DefaultBidService
	store   *memstore.Store
	emitter *memstore.Emitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	emitter := &memstore.Emitter{}
	svc := &DefaultBidService{
		Bids:         store.Bids(),
		Requirements: store.Requirements(),
		Bookings:     store.Bookings(),
		Tx:           store,
		Notifier:     emitter,
		Logger:       zap.NewNop(),
	}
	return &fixture{svc: svc, store: store, emitter: emitter}
}

func (f *fixture) tractorRequirement(t *testing.T, id string) *models.Requirement {
	t.Helper()
	req := &models.Requirement{
		ID:        id,
		Kind:      models.ServiceTractor,
		FarmerID:  farmer.ID,
		WorkType:  "Plowing",
		LandSize:  5,
		MaxBudget: 5000,
		Location:  models.Location{District: "Nashik", State: "Maharashtra"},
		Date:      time.Now().Add(72 * time.Hour),
		Status:    models.RequirementOpen,
	}
	require.NoError(t, f.store.Requirements().Create(context.Background(), req))
	return req
}

// interleavedRequirements runs next once, right after the first GetByID it serves, to
// interleave another operation between a service's read and its write.
type interleavedRequirements struct {
	requirementRepo.RequirementRepository
	next func()
}

func (r *interleavedRequirements) GetByID(ctx context.Context, id string) (*models.Requirement, error) {
	req, err := r.RequirementRepository.GetByID(ctx, id)
	if next := r.next; next != nil {
		r.next = nil
		next()
	}
	return req, err
}

func (f *fixture) interleave(next func()) {
	f.svc.Requirements = &interleavedRequirements{RequirementRepository: f.store.Requirements(), next: next}
}

func (f *fixture) bookingsFor(t *testing.T, farmerID string) []models.Booking {
	t.Helper()
	list, err := f.store.Bookings().ListByFarmer(context.Background(), farmerID)
	require.NoError(t, err)
	return list
}

func TestAcceptingCheapestBidScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.tractorRequirement(t, "req-nashik")

	low, err := f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: req.ID, ProposedAmount: 4000})
	require.NoError(t, err)
	high, err := f.svc.Place(ctx, owner2, models.BidTerms{RequirementID: req.ID, ProposedAmount: 4500})
	require.NoError(t, err)
	assert.Len(t, f.emitter.To(farmer.ID, models.NotifyBidReceived), 2)
	f.emitter.Reset()

	res, err := f.svc.Accept(ctx, low.ID, farmer)
	require.NoError(t, err)
	assert.Equal(t, models.BidAccepted, res.Bid.Status)
	assert.Equal(t, 4000.0, res.Booking.TotalCost)
	assert.Equal(t, models.BookingConfirmed, res.Booking.Status)
	assert.Equal(t, models.PaymentPending, res.Booking.PaymentStatus)
	assert.Equal(t, owner1.ID, res.Booking.ProviderID)

	storedLow, err := f.store.Bids().GetByID(ctx, low.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidAccepted, storedLow.Status)

	storedHigh, err := f.store.Bids().GetByID(ctx, high.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidRejected, storedHigh.Status)

	storedReq, err := f.store.Requirements().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequirementAccepted, storedReq.Status)
	assert.Equal(t, owner1.ID, storedReq.AcceptedBy)
	require.NotNil(t, storedReq.AcceptedAt)

	assert.Len(t, f.bookingsFor(t, farmer.ID), 1)

	assert.Len(t, f.emitter.To(owner1.ID, ""), 1)
	assert.Len(t, f.emitter.To(owner1.ID, models.NotifyBidAccepted), 1)
	assert.Len(t, f.emitter.To(owner2.ID, ""), 1)
	assert.Len(t, f.emitter.To(owner2.ID, models.NotifyBidRejected), 1)
}

func TestPlaceRejectsClosedOrDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.tractorRequirement(t, "req-1")

	_, err := f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: "missing", ProposedAmount: 100})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: req.ID, ProposedAmount: 100})
	require.NoError(t, err)

	_, err = f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: req.ID, ProposedAmount: 90})
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	_, err = f.svc.Place(ctx, farmer, models.BidTerms{RequirementID: req.ID, ProposedAmount: 90})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = f.svc.Place(ctx, owner2, models.BidTerms{RequirementID: req.ID, ProposedAmount: 0})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestNoBidsOnceRequirementLeavesOpen(t *testing.T) {
	for _, status := range []models.RequirementStatus{
		models.RequirementAccepted, models.RequirementInProgress,
		models.RequirementCompleted, models.RequirementCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			req := f.tractorRequirement(t, "req-"+string(status))
			require.NoError(t, f.store.Requirements().SetStatus(ctx, req.ID,
				[]models.RequirementStatus{models.RequirementOpen}, status))

			_, err := f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: req.ID, ProposedAmount: 100})
			assert.True(t, utils.IsKind(err, utils.KindInvalidState), "got %v", err)
		})
	}
}

func TestAcceptChecksOwnershipAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.tractorRequirement(t, "req-1")
	b, err := f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: req.ID, ProposedAmount: 3000})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, "missing", farmer)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	intruder := models.Actor{ID: "farmer-2", Role: models.RoleFarmer}
	_, err = f.svc.Accept(ctx, b.ID, intruder)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = f.svc.Reject(ctx, b.ID, farmer)
	require.NoError(t, err)
	assert.Len(t, f.emitter.To(owner1.ID, models.NotifyBidRejected), 1)

	_, err = f.svc.Accept(ctx, b.ID, farmer)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
	_, err = f.svc.Reject(ctx, b.ID, farmer)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
	assert.Empty(t, f.bookingsFor(t, farmer.ID))
}

func TestConcurrentAcceptsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.tractorRequirement(t, "req-race")

	var bids []*models.Bid
	for _, o := range []models.Actor{owner1, owner2, owner3} {
		b, err := f.svc.Place(ctx, o, models.BidTerms{RequirementID: req.ID, ProposedAmount: 1000})
		require.NoError(t, err)
		bids = append(bids, b)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(bids))
	for i := range bids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Accept(ctx, bids[i].ID, farmer)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, utils.IsKind(err, utils.KindInvalidState), "loser got %v", err)
	}
	assert.Equal(t, 1, wins)
	assert.Len(t, f.bookingsFor(t, farmer.ID), 1)

	all, err := f.store.Bids().ListByRequirement(ctx, req.ID)
	require.NoError(t, err)
	accepted := 0
	for _, b := range all {
		assert.NotEqual(t, models.BidPending, b.Status)
		if b.Status == models.BidAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestWithdrawOwnBid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.tractorRequirement(t, "req-1")
	b, err := f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: req.ID, ProposedAmount: 2500})
	require.NoError(t, err)

	_, err = f.svc.Withdraw(ctx, b.ID, owner2)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	out, err := f.svc.Withdraw(ctx, b.ID, owner1)
	require.NoError(t, err)
	assert.Equal(t, models.BidCancelled, out.Status)
	assert.Len(t, f.emitter.To(farmer.ID, models.NotifyBidCancelled), 1)

	_, err = f.svc.Withdraw(ctx, b.ID, owner1)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.tractorRequirement(t, "req-1")
	_, err := f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: req.ID, ProposedAmount: 2500})
	require.NoError(t, err)

	forFarmer, err := f.svc.ListForFarmer(ctx, farmer)
	require.NoError(t, err)
	assert.Len(t, forFarmer, 1)

	mine, err := f.svc.ListMine(ctx, owner1)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.svc.ListForRequirement(ctx, req.ID, models.Actor{ID: "farmer-2", Role: models.RoleFarmer})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	forReq, err := f.svc.ListForRequirement(ctx, req.ID, farmer)
	require.NoError(t, err)
	assert.Len(t, forReq, 1)
}

func TestPlaceAfterConcurrentAcceptFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.tractorRequirement(t, "req-late")
	first, err := f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: req.ID, ProposedAmount: 4000})
	require.NoError(t, err)

	f.interleave(func() {
		_, err := f.svc.Accept(ctx, first.ID, farmer)
		require.NoError(t, err)
	})
	_, err = f.svc.Place(ctx, owner2, models.BidTerms{RequirementID: req.ID, ProposedAmount: 3500})
	assert.True(t, utils.IsKind(err, utils.KindInvalidState), "got %v", err)

	stored, err := f.store.Requirements().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequirementAccepted, stored.Status)
	assert.Equal(t, 1, stored.BidCount)

	all, err := f.store.Bids().ListByRequirement(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.BidAccepted, all[0].Status)
	assert.Len(t, f.emitter.To(farmer.ID, models.NotifyBidReceived), 1)
}

func TestAcceptNotifiesOnlyBidsItRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.tractorRequirement(t, "req-notify")
	var bids []*models.Bid
	for _, o := range []models.Actor{owner1, owner2, owner3} {
		b, err := f.svc.Place(ctx, o, models.BidTerms{RequirementID: req.ID, ProposedAmount: 1000})
		require.NoError(t, err)
		bids = append(bids, b)
	}

	f.interleave(func() {
		_, err := f.svc.Withdraw(ctx, bids[2].ID, owner3)
		require.NoError(t, err)
	})
	_, err := f.svc.Accept(ctx, bids[0].ID, farmer)
	require.NoError(t, err)

	assert.Len(t, f.emitter.To(owner2.ID, models.NotifyBidRejected), 1)
	assert.Empty(t, f.emitter.To(owner3.ID, models.NotifyBidRejected))

	withdrawn, err := f.store.Bids().GetByID(ctx, bids[2].ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidCancelled, withdrawn.Status)
}

func TestPlaceAfterRequirementClosedFails(t *testing.T) {
	closers := map[string]func(ctx context.Context, f *fixture, id string) error{
		"withdrawn": func(ctx context.Context, f *fixture, id string) error {
			return f.store.Requirements().DeleteIfOpen(ctx, id)
		},
		"cancelled": func(ctx context.Context, f *fixture, id string) error {
			return f.store.Requirements().SetStatus(ctx, id,
				[]models.RequirementStatus{models.RequirementOpen}, models.RequirementCancelled)
		},
	}
	for name, closeReq := range closers {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			req := f.tractorRequirement(t, "req-"+name)

			f.interleave(func() {
				require.NoError(t, closeReq(ctx, f, req.ID))
			})
			_, err := f.svc.Place(ctx, owner1, models.BidTerms{RequirementID: req.ID, ProposedAmount: 3000})
			assert.True(t, utils.IsKind(err, utils.KindInvalidState), "got %v", err)

			all, err := f.store.Bids().ListByRequirement(ctx, req.ID)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}
