package listing

import (
	"context"
	"io"
	"strings"
	"testing"

	"cropconnect/database/repository/memstore"
	"cropconnect/models"
	"cropconnect/services/storage"
	"cropconnect/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	owner  = models.Actor{ID: "owner-1", Role: models.RoleTractorOwner}
	worker = models.Actor{ID: "worker-1", Role: models.RoleWorker}
	farmer = models.Actor{ID: "farmer-1", Role: models.RoleFarmer}
)

type fakeStorage struct{ n int }

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder string) (*storage.UploadResult, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	f.n++
	return &storage.UploadResult{URL: "https://img.example.com/" + folder + ".png", PublicID: folder}, nil
}

func (f *fakeStorage) DeleteFile(context.Context, string) error { return nil }

func newService(t *testing.T) (*DefaultListingService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.Users().Create(ctx, &models.User{
		ID: owner.ID, Email: "o@example.com", Role: models.RoleTractorOwner,
		Location: models.Location{District: "Nashik", State: "Maharashtra"},
	}))
	require.NoError(t, store.Users().Create(ctx, &models.User{
		ID: worker.ID, Email: "w@example.com", Role: models.RoleWorker, Gender: models.GenderFemale,
		Location: models.Location{District: "Pune"},
	}))
	return &DefaultListingService{
		Tractors: store.Tractors(),
		Workers:  store.Workers(),
		Users:    store.Users(),
		Storage:  &fakeStorage{},
		Logger:   zap.NewNop(),
	}, store
}

func tractorInput() models.TractorInput {
	return models.TractorInput{Name: "Mahindra 575", HorsePower: 45, WorkTypes: []string{"Plowing", "Tilling"}, RatePerAcre: 1200}
}

func TestTractorLifecycle(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.CreateTractor(ctx, farmer, tractorInput())
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	bad := tractorInput()
	bad.RatePerAcre = 0
	_, err = svc.CreateTractor(ctx, owner, bad)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	tr, err := svc.CreateTractor(ctx, owner, tractorInput())
	require.NoError(t, err)
	assert.True(t, tr.Available)
	assert.Equal(t, "Nashik", tr.Location.District)

	in := tractorInput()
	in.RatePerAcre = 1500
	_, err = svc.UpdateTractor(ctx, tr.ID, models.Actor{ID: "owner-2", Role: models.RoleTractorOwner}, in)
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
	updated, err := svc.UpdateTractor(ctx, tr.ID, owner, in)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, updated.RatePerAcre)

	withImage, err := svc.AddTractorImage(ctx, tr.ID, owner, strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example.com/tractors.png"}, withImage.Images)

	list, err := svc.ListTractors(ctx, models.ListingFilter{District: "nash", WorkType: "till"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Tractors().SetAvailability(ctx, tr.ID, true, false))
	err = svc.DeleteTractor(ctx, tr.ID, owner)
	assert.True(t, utils.IsKind(err, utils.KindInvalidState))

	require.NoError(t, store.Tractors().SetAvailability(ctx, tr.ID, false, true))
	require.NoError(t, svc.DeleteTractor(ctx, tr.ID, owner))
	_, err = svc.GetTractor(ctx, tr.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestWorkerProfileUpsert(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.UpsertWorkerProfile(ctx, owner, models.WorkerInput{WagePerDay: 400})
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = svc.AddWorkerImage(ctx, worker, strings.NewReader("img"))
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	first, err := svc.UpsertWorkerProfile(ctx, worker, models.WorkerInput{Skills: []string{"Harvesting"}, WagePerDay: 400})
	require.NoError(t, err)
	assert.True(t, first.Available)
	assert.Equal(t, models.GenderFemale, first.Gender)
	assert.Equal(t, "Pune", first.Location.District)

	require.NoError(t, store.Workers().SetAvailability(ctx, first.ID, true, false))
	second, err := svc.UpsertWorkerProfile(ctx, worker, models.WorkerInput{Skills: []string{"Sowing"}, WagePerDay: 450})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 450.0, second.WagePerDay)
	assert.False(t, second.Available)

	withImage, err := svc.AddWorkerImage(ctx, worker, strings.NewReader("img"))
	require.NoError(t, err)
	assert.Len(t, withImage.Images, 1)

	list, err := svc.ListWorkers(ctx, models.ListingFilter{Skill: "sow", Gender: models.GenderFemale})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
