package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aslabkom/announcer-api/internal/models"
)

// RecitationRepository provides PostgreSQL persistence for recitation
// schedules.
type RecitationRepository struct {
	db *sqlx.DB
}

// NewRecitationRepository creates the repository.
func NewRecitationRepository(db *sqlx.DB) *RecitationRepository {
	return &RecitationRepository{db: db}
}

// List returns all recitation schedules in creation order.
func (r *RecitationRepository) List(ctx context.Context) ([]models.RecitationSchedule, error) {
	const query = `SELECT id, title, audio_url, play_time, play_date, repeat_type, is_active, created_at
FROM recitation_schedules ORDER BY created_at ASC, id ASC`
	entries := []models.RecitationSchedule{}
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list recitation schedules: %w", err)
	}
	return entries, nil
}

// FindByID returns a recitation schedule by identifier.
func (r *RecitationRepository) FindByID(ctx context.Context, id int64) (*models.RecitationSchedule, error) {
	const query = `SELECT id, title, audio_url, play_time, play_date, repeat_type, is_active, created_at
FROM recitation_schedules WHERE id = $1`
	var entry models.RecitationSchedule
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Insert stores a new recitation schedule.
func (r *RecitationRepository) Insert(ctx context.Context, entry *models.RecitationSchedule) error {
	const query = `INSERT INTO recitation_schedules (id, title, audio_url, play_time, play_date, repeat_type, is_active, created_at)
VALUES (:id, :title, :audio_url, :play_time, :play_date, :repeat_type, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create recitation schedule: %w", err)
	}
	return nil
}

// UpdateDate reschedules an entry to a new calendar date.
func (r *RecitationRepository) UpdateDate(ctx context.Context, id int64, date string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE recitation_schedules SET play_date = $1 WHERE id = $2", date, id)
	if err != nil {
		return fmt.Errorf("reschedule recitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reschedule recitation: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a recitation schedule.
func (r *RecitationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM recitation_schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete recitation schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recitation schedule: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
