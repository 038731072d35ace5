// Package repository provides the announcement and schedule stores. Each
// store exists twice: an in-memory implementation (the default, matching the
// single-installation deployment) and a PostgreSQL implementation behind the
// same behaviour. Lookup misses surface as sql.ErrNoRows in both, so the
// services map them uniformly.
package repository

import (
	"context"
	"database/sql"
	"sync"

	"github.com/aslabkom/announcer-api/internal/models"
)

// MemoryAnnouncementRepository keeps announcements in a newest-first slice.
type MemoryAnnouncementRepository struct {
	mu    sync.RWMutex
	items []models.Announcement
}

// NewMemoryAnnouncementRepository creates an empty store.
func NewMemoryAnnouncementRepository() *MemoryAnnouncementRepository {
	return &MemoryAnnouncementRepository{}
}

// List returns all announcements, newest first.
func (r *MemoryAnnouncementRepository) List(_ context.Context) ([]models.Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Announcement, len(r.items))
	copy(out, r.items)
	return out, nil
}

// FindByID returns an announcement by identifier.
func (r *MemoryAnnouncementRepository) FindByID(_ context.Context, id int64) (*models.Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.items {
		if r.items[i].ID == id {
			item := r.items[i]
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Insert places the announcement at the front of the store.
func (r *MemoryAnnouncementRepository) Insert(_ context.Context, announcement *models.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]models.Announcement{*announcement}, r.items...)
	return nil
}

// Delete removes an announcement by identifier.
func (r *MemoryAnnouncementRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// MemoryScheduleRepository keeps announcement schedules in insertion order.
type MemoryScheduleRepository struct {
	mu    sync.RWMutex
	items []models.ScheduleEntry
}

// NewMemoryScheduleRepository creates an empty store.
func NewMemoryScheduleRepository() *MemoryScheduleRepository {
	return &MemoryScheduleRepository{}
}

// List returns all schedule entries.
func (r *MemoryScheduleRepository) List(_ context.Context) ([]models.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ScheduleEntry, len(r.items))
	copy(out, r.items)
	return out, nil
}

// FindByID returns a schedule entry by identifier.
func (r *MemoryScheduleRepository) FindByID(_ context.Context, id int64) (*models.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.items {
		if r.items[i].ID == id {
			item := r.items[i]
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Insert appends a schedule entry.
func (r *MemoryScheduleRepository) Insert(_ context.Context, entry *models.ScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *entry)
	return nil
}

// UpdateDate reschedules an entry to a new calendar date.
func (r *MemoryScheduleRepository) UpdateDate(_ context.Context, id int64, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Date = date
			return nil
		}
	}
	return sql.ErrNoRows
}

// Delete removes a schedule entry by identifier.
func (r *MemoryScheduleRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// CountByAnnouncement reports how many entries still reference the
// announcement. The cascade re-derives this on every delete instead of
// maintaining a counter.
func (r *MemoryScheduleRepository) CountByAnnouncement(_ context.Context, announcementID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for i := range r.items {
		if r.items[i].AnnouncementID == announcementID {
			count++
		}
	}
	return count, nil
}

// DeleteByAnnouncement removes every entry referencing the announcement and
// returns how many were removed.
func (r *MemoryScheduleRepository) DeleteByAnnouncement(_ context.Context, announcementID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	var removed int64
	for i := range r.items {
		if r.items[i].AnnouncementID == announcementID {
			removed++
			continue
		}
		kept = append(kept, r.items[i])
	}
	r.items = kept
	return removed, nil
}

// MemoryRecitationRepository keeps recitation schedules in insertion order.
type MemoryRecitationRepository struct {
	mu    sync.RWMutex
	items []models.RecitationSchedule
}

// NewMemoryRecitationRepository creates an empty store.
func NewMemoryRecitationRepository() *MemoryRecitationRepository {
	return &MemoryRecitationRepository{}
}

// List returns all recitation schedules.
func (r *MemoryRecitationRepository) List(_ context.Context) ([]models.RecitationSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.RecitationSchedule, len(r.items))
	copy(out, r.items)
	return out, nil
}

// FindByID returns a recitation schedule by identifier.
func (r *MemoryRecitationRepository) FindByID(_ context.Context, id int64) (*models.RecitationSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.items {
		if r.items[i].ID == id {
			item := r.items[i]
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Insert appends a recitation schedule.
func (r *MemoryRecitationRepository) Insert(_ context.Context, entry *models.RecitationSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *entry)
	return nil
}

// UpdateDate reschedules an entry to a new calendar date.
func (r *MemoryRecitationRepository) UpdateDate(_ context.Context, id int64, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Date = date
			return nil
		}
	}
	return sql.ErrNoRows
}

// Delete removes a recitation schedule by identifier.
func (r *MemoryRecitationRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}
