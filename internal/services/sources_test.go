package services

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/apperr"
	"onboard/internal/models"
	"onboard/internal/pagination"
	"onboard/internal/storage"
)

func newSourcesService(t *testing.T) (*Sources, *Bots, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	lg := zap.NewNop().Sugar()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	bots := NewBots(db, lg)
	return NewSources(db, lg, store, bots), bots, db
}

func TestCreateURLSourceRequiresSchedule(t *testing.T) {
	svc, _, _ := newSourcesService(t)
	rc := testRC()
	url := "https://example.com/docs"

	_, err := svc.Create(rc, CreateSourceInput{
		Name: "docs", SourceType: models.SourceTypeURL, URL: &url,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	daily := models.RefreshDaily
	source, err := svc.Create(rc, CreateSourceInput{
		Name: "docs", SourceType: models.SourceTypeURL, URL: &url, RefreshSchedule: &daily,
	})
	require.NoError(t, err)
	require.NotNil(t, source.NextRefreshScheduledAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 1), *source.NextRefreshScheduledAt, time.Minute)
}

func TestCreateManualURLSourceHasNoNextRefresh(t *testing.T) {
	svc, _, _ := newSourcesService(t)
	url := "https://example.com/docs"
	manual := models.RefreshManual

	source, err := svc.Create(testRC(), CreateSourceInput{
		Name: "docs", SourceType: models.SourceTypeURL, URL: &url, RefreshSchedule: &manual,
	})
	require.NoError(t, err)
	assert.Nil(t, source.NextRefreshScheduledAt)
}

func TestCreateTXTSourceRequiresContent(t *testing.T) {
	svc, _, _ := newSourcesService(t)
	rc := testRC()

	_, err := svc.Create(rc, CreateSourceInput{Name: "notes", SourceType: models.SourceTypeTXT})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	content := "plain text body"
	source, err := svc.Create(rc, CreateSourceInput{
		Name: "notes", SourceType: models.SourceTypeTXT, Content: &content,
	})
	require.NoError(t, err)
	assert.Equal(t, content, source.SourceValue)
	assert.Equal(t, models.SourceStatusReady, source.Status)
}

func TestCreateFromUpload(t *testing.T) {
	svc, _, _ := newSourcesService(t)
	rc := testRC()

	source, err := svc.CreateFromUpload(rc, "handbook", models.SourceTypePDF, ".pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NotNil(t, source.FileSizeBytes)
	assert.EqualValues(t, len("%PDF-1.4 fake"), *source.FileSizeBytes)
	assert.True(t, strings.HasSuffix(source.SourceValue, ".pdf"))

	info, err := svc.Download(rc, source.ID)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.MimeType)
	assert.Equal(t, "handbook.pdf", info.Filename)
}

func TestCreateFromUploadRejectsOtherTypes(t *testing.T) {
	svc, _, _ := newSourcesService(t)
	_, err := svc.CreateFromUpload(testRC(), "notes", models.SourceTypeTXT, ".txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestDownloadRejectsNonFileSources(t *testing.T) {
	svc, _, _ := newSourcesService(t)
	rc := testRC()
	url := "https://example.com/docs"
	manual := models.RefreshManual
	source, err := svc.Create(rc, CreateSourceInput{
		Name: "docs", SourceType: models.SourceTypeURL, URL: &url, RefreshSchedule: &manual,
	})
	require.NoError(t, err)

	_, err = svc.Download(rc, source.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestDownloadSanitizesFilename(t *testing.T) {
	svc, _, _ := newSourcesService(t)
	rc := testRC()
	source, err := svc.CreateFromUpload(rc, `quarterly/report:"2025"`, models.SourceTypePDF, ".pdf", strings.NewReader("x"))
	require.NoError(t, err)

	info, err := svc.Download(rc, source.ID)
	require.NoError(t, err)
	assert.NotContains(t, info.Filename, "/")
	assert.NotContains(t, info.Filename, `"`)
}

func TestRefreshOnlyForURLSources(t *testing.T) {
	svc, _, _ := newSourcesService(t)
	rc := testRC()
	content := "text"
	txt, err := svc.Create(rc, CreateSourceInput{
		Name: "notes", SourceType: models.SourceTypeTXT, Content: &content,
	})
	require.NoError(t, err)

	_, err = svc.Refresh(rc, txt.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	url := "https://example.com/docs"
	weekly := models.RefreshWeekly
	src, err := svc.Create(rc, CreateSourceInput{
		Name: "docs", SourceType: models.SourceTypeURL, URL: &url, RefreshSchedule: &weekly,
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(rc, src.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.LastRefreshed)
	require.NotNil(t, refreshed.NextRefreshScheduledAt)
	assert.WithinDuration(t, refreshed.LastRefreshed.AddDate(0, 0, 7), *refreshed.NextRefreshScheduledAt, time.Second)
}

func TestLinkAndUnlinkBot(t *testing.T) {
	svc, bots, _ := newSourcesService(t)
	rc := testRC()
	content := "text"
	source, err := svc.Create(rc, CreateSourceInput{
		Name: "notes", SourceType: models.SourceTypeTXT, Content: &content,
	})
	require.NoError(t, err)
	bot, err := bots.Create(rc, CreateBotInput{
		BotType: models.BotTypeGeneral, Name: "support", Domains: []string{"example.com"},
	})
	require.NoError(t, err)

	linked, err := svc.LinkBot(rc, source.ID, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, linked.LinkedBots)
	assert.Len(t, linked.Bots, 1)

	// Linking the same bot again is a no-op.
	again, err := svc.LinkBot(rc, source.ID, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.LinkedBots)

	unlinked, err := svc.UnlinkBot(rc, source.ID, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unlinked.LinkedBots)
	assert.Empty(t, unlinked.Bots)
}

func TestFindAllSourcesRejectsUnknownType(t *testing.T) {
	svc, _, _ := newSourcesService(t)
	_, err := svc.FindAll(testRC(), SourceFilters{SourceType: "CSV"}, pagination.Params{Page: 1, Limit: 20})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}
