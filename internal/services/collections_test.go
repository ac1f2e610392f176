package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"onboard/internal/apperr"
	"onboard/internal/models"
	"onboard/internal/storage"
)

func newCollectionsService(t *testing.T) (*Collections, *Sources) {
	t.Helper()
	db := testDB(t)
	lg := zap.NewNop().Sugar()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	sources := NewSources(db, lg, store, NewBots(db, lg))
	return NewCollections(db, lg, sources), sources
}

func makeTXTSource(t *testing.T, svc *Sources, name string) *models.KBSource {
	t.Helper()
	content := "body of " + name
	source, err := svc.Create(testRC(), CreateSourceInput{
		Name: name, SourceType: models.SourceTypeTXT, Content: &content,
	})
	require.NoError(t, err)
	return source
}

func TestAddAndRemoveCollectionSource(t *testing.T) {
	svc, sources := newCollectionsService(t)
	rc := testRC()

	col, err := svc.Create(rc, CreateCollectionInput{Name: "onboarding docs"})
	require.NoError(t, err)
	source := makeTXTSource(t, sources, "welcome")

	got, err := svc.AddSource(rc, col.ID, source.ID)
	require.NoError(t, err)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, source.ID, got.Sources[0].ID)

	fetched, err := sources.FindByID(rc, source.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.CollectionID)
	assert.Equal(t, col.ID, *fetched.CollectionID)

	got, err = svc.RemoveSource(rc, col.ID, source.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Sources)

	// Removing a source that is no longer a member reports not found.
	_, err = svc.RemoveSource(rc, col.ID, source.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestRemoveCollectionDetachesSources(t *testing.T) {
	svc, sources := newCollectionsService(t)
	rc := testRC()

	col, err := svc.Create(rc, CreateCollectionInput{Name: "onboarding docs"})
	require.NoError(t, err)
	source := makeTXTSource(t, sources, "welcome")
	_, err = svc.AddSource(rc, col.ID, source.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(rc, col.ID))

	// The source survives, unattached.
	fetched, err := sources.FindByID(rc, source.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.CollectionID)

	_, err = svc.FindByID(rc, col.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestRemoveSourceDetachesFromCollection(t *testing.T) {
	svc, sources := newCollectionsService(t)
	rc := testRC()

	col, err := svc.Create(rc, CreateCollectionInput{Name: "onboarding docs"})
	require.NoError(t, err)
	source := makeTXTSource(t, sources, "welcome")
	_, err = svc.AddSource(rc, col.ID, source.ID)
	require.NoError(t, err)

	require.NoError(t, sources.Remove(rc, source.ID))

	got, err := svc.FindByID(rc, col.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Sources)
}
