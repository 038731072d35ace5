package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslabkom/announcer-api/internal/models"
)

func TestScheduleRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectExec("INSERT INTO announcement_schedules").
		WithArgs(int64(1), int64(42), "07:30", "2026-08-30", "once", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), &models.ScheduleEntry{
		ID:             1,
		AnnouncementID: 42,
		Time:           "07:30",
		Date:           "2026-08-30",
		RepeatType:     models.RepeatOnce,
		IsActive:       true,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCountByAnnouncement(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByAnnouncement(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteByAnnouncement(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectExec("DELETE FROM announcement_schedules WHERE announcement_id").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	removed, err := repo.DeleteByAnnouncement(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdateDateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectExec("UPDATE announcement_schedules SET play_date").
		WithArgs("2026-09-01", int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDate(context.Background(), 77, "2026-09-01")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
