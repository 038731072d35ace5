package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aslabkom/announcer-api/internal/models"
	"github.com/aslabkom/announcer-api/internal/repository"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

func newRecitationFixture(t *testing.T) (*RecitationService, *repository.MemoryRecitationRepository) {
	t.Helper()
	repo := repository.NewMemoryRecitationRepository()
	svc := NewRecitationService(repo, sequentialIDs(1), nil, zap.NewNop())
	return svc, repo
}

func TestRecitationServiceCreate(t *testing.T) {
	svc, _ := newRecitationFixture(t)

	entry, err := svc.Create(context.Background(), CreateRecitationRequest{
		AudioURL:   "http://example.com/tilawah.mp3",
		Time:       "05:45",
		RepeatType: "daily",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAnnouncementTitle, entry.Title)
	assert.True(t, entry.Repeats())
}

func TestRecitationServiceCreateValidation(t *testing.T) {
	svc, _ := newRecitationFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRecitationRequest{Time: "05:45", RepeatType: "daily"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, CreateRecitationRequest{AudioURL: "http://example.com/a.mp3", Time: "5pm", RepeatType: "daily"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecitationServiceDeleteDoesNotTouchClips(t *testing.T) {
	svc, repo := newRecitationFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &models.RecitationSchedule{ID: 9, AudioURL: "http://example.com/a.mp3", Time: "05:45", RepeatType: "daily"}))
	require.NoError(t, svc.Delete(ctx, 9))

	err := svc.Delete(ctx, 9)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecitationServiceRescheduleDate(t *testing.T) {
	svc, repo := newRecitationFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &models.RecitationSchedule{ID: 9, AudioURL: "http://example.com/a.mp3", Time: "05:45", Date: "2026-08-30", RepeatType: models.RepeatOnce}))

	entry, err := svc.RescheduleDate(ctx, 9, "2026-09-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-02", entry.Date)
}
