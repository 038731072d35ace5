package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslabkom/announcer-api/internal/models"
)

func TestMemoryAnnouncementsNewestFirst(t *testing.T) {
	repo := NewMemoryAnnouncementRepository()
	ctx := context.Background()

	for i, id := range []int64{1, 2, 3} {
		require.NoError(t, repo.Insert(ctx, &models.Announcement{
			ID:        id,
			Title:     "Pengumuman",
			AudioURL:  "http://localhost/clips/announcement.mp3",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Equal(t, int64(1), items[2].ID)
}

func TestMemoryAnnouncementFindAndDelete(t *testing.T) {
	repo := NewMemoryAnnouncementRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &models.Announcement{ID: 7, Title: "Tujuh"}))

	found, err := repo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Tujuh", found.Title)

	_, err = repo.FindByID(ctx, 8)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, repo.Delete(ctx, 7))
	assert.ErrorIs(t, repo.Delete(ctx, 7), sql.ErrNoRows)
}

func TestMemoryScheduleReferenceCounting(t *testing.T) {
	repo := NewMemoryScheduleRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &models.ScheduleEntry{ID: 1, AnnouncementID: 100}))
	require.NoError(t, repo.Insert(ctx, &models.ScheduleEntry{ID: 2, AnnouncementID: 100}))
	require.NoError(t, repo.Insert(ctx, &models.ScheduleEntry{ID: 3, AnnouncementID: 200}))

	count, err := repo.CountByAnnouncement(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.Delete(ctx, 1))
	count, err = repo.CountByAnnouncement(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	removed, err := repo.DeleteByAnnouncement(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(3), remaining[0].ID)
}

func TestMemoryScheduleUpdateDate(t *testing.T) {
	repo := NewMemoryScheduleRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &models.ScheduleEntry{ID: 1, Date: "2026-08-30"}))

	require.NoError(t, repo.UpdateDate(ctx, 1, "2026-09-01"))
	entry, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", entry.Date)

	assert.ErrorIs(t, repo.UpdateDate(ctx, 99, "2026-09-01"), sql.ErrNoRows)
}

func TestMemoryRecitationCRUD(t *testing.T) {
	repo := NewMemoryRecitationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &models.RecitationSchedule{
		ID:         1,
		Title:      "Murottal Al-Kahf",
		AudioURL:   "http://localhost/clips/upload-1-kahf.mp3",
		Time:       "06:30",
		RepeatType: "daily",
	}))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, repo.UpdateDate(ctx, 1, "2026-09-05"))
	require.NoError(t, repo.Delete(ctx, 1))
	assert.ErrorIs(t, repo.Delete(ctx, 1), sql.ErrNoRows)
}
