package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aslabkom/announcer-api/internal/models"
)

// ScheduleRepository provides PostgreSQL persistence for announcement
// schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns all schedule entries in creation order.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, announcement_id, play_time, play_date, repeat_type, is_active, created_at
FROM announcement_schedules ORDER BY created_at ASC, id ASC`
	entries := []models.ScheduleEntry{}
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return entries, nil
}

// FindByID returns a schedule entry by identifier.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	const query = `SELECT id, announcement_id, play_time, play_date, repeat_type, is_active, created_at
FROM announcement_schedules WHERE id = $1`
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Insert stores a new schedule entry.
func (r *ScheduleRepository) Insert(ctx context.Context, entry *models.ScheduleEntry) error {
	const query = `INSERT INTO announcement_schedules (id, announcement_id, play_time, play_date, repeat_type, is_active, created_at)
VALUES (:id, :announcement_id, :play_time, :play_date, :repeat_type, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// UpdateDate reschedules an entry to a new calendar date.
func (r *ScheduleRepository) UpdateDate(ctx context.Context, id int64, date string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE announcement_schedules SET play_date = $1 WHERE id = $2", date, id)
	if err != nil {
		return fmt.Errorf("reschedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reschedule: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a schedule entry.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM announcement_schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByAnnouncement reports how many entries reference the announcement.
func (r *ScheduleRepository) CountByAnnouncement(ctx context.Context, announcementID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM announcement_schedules WHERE announcement_id = $1", announcementID)
	if err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return count, nil
}

// DeleteByAnnouncement removes every entry referencing the announcement.
func (r *ScheduleRepository) DeleteByAnnouncement(ctx context.Context, announcementID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM announcement_schedules WHERE announcement_id = $1", announcementID)
	if err != nil {
		return 0, fmt.Errorf("delete schedules by announcement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete schedules by announcement: %w", err)
	}
	return affected, nil
}
