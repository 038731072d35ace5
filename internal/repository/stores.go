package repository

import (
	"context"

	"github.com/aslabkom/announcer-api/internal/models"
)

// AnnouncementStore is the behaviour shared by the in-memory and PostgreSQL
// announcement repositories.
type AnnouncementStore interface {
	List(ctx context.Context) ([]models.Announcement, error)
	FindByID(ctx context.Context, id int64) (*models.Announcement, error)
	Insert(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id int64) error
}

// ScheduleStore is the behaviour shared by the schedule repositories.
type ScheduleStore interface {
	List(ctx context.Context) ([]models.ScheduleEntry, error)
	FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error)
	Insert(ctx context.Context, entry *models.ScheduleEntry) error
	UpdateDate(ctx context.Context, id int64, date string) error
	Delete(ctx context.Context, id int64) error
	CountByAnnouncement(ctx context.Context, announcementID int64) (int, error)
	DeleteByAnnouncement(ctx context.Context, announcementID int64) (int64, error)
}

// RecitationStore is the behaviour shared by the recitation repositories.
type RecitationStore interface {
	List(ctx context.Context) ([]models.RecitationSchedule, error)
	FindByID(ctx context.Context, id int64) (*models.RecitationSchedule, error)
	Insert(ctx context.Context, entry *models.RecitationSchedule) error
	UpdateDate(ctx context.Context, id int64, date string) error
	Delete(ctx context.Context, id int64) error
}

var (
	_ AnnouncementStore = (*MemoryAnnouncementRepository)(nil)
	_ AnnouncementStore = (*AnnouncementRepository)(nil)
	_ ScheduleStore     = (*MemoryScheduleRepository)(nil)
	_ ScheduleStore     = (*ScheduleRepository)(nil)
	_ RecitationStore   = (*MemoryRecitationRepository)(nil)
	_ RecitationStore   = (*RecitationRepository)(nil)
)
