package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"board-finder/internal/domain/entity"
	"board-finder/internal/infrastructure/normalize"
	"board-finder/internal/infrastructure/storage"
)

func TestEnrollmentService_SaveKeepsDraftOnStoreFailure(t *testing.T) {
	users := NewUserService(storage.NewMemoryUserRepository())
	n := normalize.New()
	repo := brokenRepo{storage.NewMemoryCatalogRepository()}
	catalog := NewCatalogService(repo, keyNormalizer{n}, keyFingerprinter{1: 1}, nil, NewMatcher(entity.PolicyMultiFrame))
	svc := NewEnrollmentService(users, catalog)
	ctx := context.Background()

	_, err := users.BeginRegistration(ctx, 1, 10)
	require.NoError(t, err)
	_, err = users.AddFrame(ctx, 1, 10, keyFrame(t, 1))
	require.NoError(t, err)

	_, err = svc.Save(ctx, 1, 10, "A1", "Oak panel")
	require.ErrorIs(t, err, entity.ErrStore)
	require.True(t, entity.IsRetryable(err))

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFrames, user.State)
	require.Len(t, user.Frames, 1)

	// повтор после восстановления хранилища
	catalog.repo = repo.MemoryCatalogRepository
	item, err := svc.Save(ctx, 1, 10, "A1", "Oak panel")
	require.NoError(t, err)
	require.Equal(t, 1, item.FingerprintCount)
}

func newEnrollment(prints keyFingerprinter) (*EnrollmentService, *UserService, *CatalogService) {
	users := NewUserService(storage.NewMemoryUserRepository())
	catalog, _ := newKeyCatalog(entity.PolicyMultiFrame, prints)
	return NewEnrollmentService(users, catalog), users, catalog
}

func TestEnrollmentService_Save(t *testing.T) {
	svc, users, catalog := newEnrollment(keyFingerprinter{1: 1, 2: 2})
	ctx := context.Background()

	_, err := users.BeginRegistration(ctx, 1, 10)
	require.NoError(t, err)
	for _, k := range []uint8{1, 2} {
		_, err := users.AddFrame(ctx, 1, 10, keyFrame(t, k))
		require.NoError(t, err)
	}

	item, err := svc.Save(ctx, 1, 10, "A1", "Oak panel")
	require.NoError(t, err)
	require.Equal(t, 2, item.FingerprintCount)

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Empty(t, user.Frames)

	items, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestEnrollmentService_SaveKeepsDraftOnBadInput(t *testing.T) {
	svc, users, _ := newEnrollment(keyFingerprinter{1: 1})
	ctx := context.Background()

	_, err := users.BeginRegistration(ctx, 1, 10)
	require.NoError(t, err)
	_, err = users.AddFrame(ctx, 1, 10, keyFrame(t, 1))
	require.NoError(t, err)

	_, err = svc.Save(ctx, 1, 10, "", "Oak panel")
	require.ErrorIs(t, err, entity.ErrValidation)

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFrames, user.State)
	require.Len(t, user.Frames, 1)
}

func TestEnrollmentService_SaveWithoutUsableFrames(t *testing.T) {
	svc, users, _ := newEnrollment(keyFingerprinter{})
	ctx := context.Background()

	_, err := users.BeginRegistration(ctx, 1, 10)
	require.NoError(t, err)
	_, err = users.AddFrame(ctx, 1, 10, []byte("broken"))
	require.NoError(t, err)

	_, err = svc.Save(ctx, 1, 10, "A1", "Oak panel")
	require.ErrorIs(t, err, entity.ErrEmptyFingerprintSet)

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestEnrollmentService_SaveOutsideRegistration(t *testing.T) {
	svc, _, _ := newEnrollment(keyFingerprinter{})

	_, err := svc.Save(context.Background(), 1, 10, "A1", "Oak panel")
	require.ErrorIs(t, err, ErrNotRegistering)
}
