package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aslabkom/announcer-api/internal/ids"
	"github.com/aslabkom/announcer-api/internal/models"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
	"github.com/aslabkom/announcer-api/pkg/export"
)

type scheduleRepository interface {
	List(ctx context.Context) ([]models.ScheduleEntry, error)
	FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error)
	Insert(ctx context.Context, entry *models.ScheduleEntry) error
	UpdateDate(ctx context.Context, id int64, date string) error
	Delete(ctx context.Context, id int64) error
	CountByAnnouncement(ctx context.Context, announcementID int64) (int, error)
}

type announcementLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Announcement, error)
	Delete(ctx context.Context, id int64) error
}

// ScheduleService manages announcement schedules and the reference-counted
// cascade: an announcement created for a schedule lives exactly as long as
// schedules reference it.
type ScheduleService struct {
	repo          scheduleRepository
	announcements announcementLookup
	clips         clipFiles
	ids           ids.Generator
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(
	repo scheduleRepository,
	announcements announcementLookup,
	clips clipFiles,
	gen ids.Generator,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gen == nil {
		gen = ids.NewMonotonic()
	}
	return &ScheduleService{
		repo:          repo,
		announcements: announcements,
		clips:         clips,
		ids:           gen,
		validator:     validate,
		logger:        logger,
	}
}

// CreateScheduleRequest describes a new schedule entry.
type CreateScheduleRequest struct {
	AnnouncementID int64  `json:"announcement_id" validate:"required"`
	Time           string `json:"time" validate:"required"`
	Date           string `json:"date"`
	RepeatType     string `json:"repeat_type"`
}

// Create registers a schedule for an existing announcement. The referenced
// announcement must exist; the time of day is HH:MM.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if err := validateClockTime(req.Time); err != nil {
		return nil, err
	}
	repeat := req.RepeatType
	if repeat == "" {
		repeat = models.RepeatOnce
	}
	date := req.Date
	if date != "" {
		if err := validateCalendarDate(date); err != nil {
			return nil, err
		}
	} else if repeat == models.RepeatOnce {
		return nil, appErrors.Clone(appErrors.ErrValidation, "one-shot schedules require a date")
	}

	if _, err := s.announcements.FindByID(ctx, req.AnnouncementID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}

	entry := &models.ScheduleEntry{
		ID:             s.ids.Next(),
		AnnouncementID: req.AnnouncementID,
		Time:           req.Time,
		Date:           date,
		RepeatType:     repeat,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return entry, nil
}

// List returns all schedule entries.
func (s *ScheduleService) List(ctx context.Context) ([]models.ScheduleEntry, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return rows, nil
}

// RescheduleDate moves an entry to a new calendar date. Time of day and
// repeat behaviour stay as they are.
func (s *ScheduleService) RescheduleDate(ctx context.Context, id int64, date string) (*models.ScheduleEntry, error) {
	if err := validateCalendarDate(date); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDate(ctx, id, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reschedule")
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload schedule")
	}
	return entry, nil
}

// ScheduleDeleteResult reports what a schedule delete took with it.
type ScheduleDeleteResult struct {
	AnnouncementDeleted bool  `json:"announcement_deleted"`
	AnnouncementID      int64 `json:"announcement_id"`
}

// Delete removes a schedule entry. When it was the last entry referencing
// its announcement, the announcement and its clip file go too. The count of
// remaining references is re-derived from the store on every delete, so the
// outcome does not depend on the order entries are removed in.
func (s *ScheduleService) Delete(ctx context.Context, id int64) (*ScheduleDeleteResult, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}

	result := &ScheduleDeleteResult{AnnouncementID: entry.AnnouncementID}

	remaining, err := s.repo.CountByAnnouncement(ctx, entry.AnnouncementID)
	if err != nil {
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count remaining references")
	}
	if remaining > 0 {
		return result, nil
	}

	announcement, err := s.announcements.FindByID(ctx, entry.AnnouncementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already gone, cascade has nothing to do.
			return result, nil
		}
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement for cascade")
	}

	if clip := ClipFilenameFromURL(announcement.AudioURL); clip != "" {
		if err := s.clips.Delete(clip); err != nil {
			s.logger.Warn("failed to remove clip file during cascade", zap.String("clip", clip), zap.Error(err))
		}
	}
	if err := s.announcements.Delete(ctx, announcement.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cascade announcement delete")
	}

	result.AnnouncementDeleted = true
	s.logger.Info("cascade removed unreferenced announcement",
		zap.Int64("announcement_id", announcement.ID),
		zap.Int64("schedule_id", id))
	return result, nil
}

// ExportCSV renders every schedule entry, joined with its announcement
// title, as a CSV download. Entries whose announcement is already gone keep
// an empty title instead of failing the export.
func (s *ScheduleService) ExportCSV(ctx context.Context) ([]byte, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}

	table := export.Table{Columns: []string{"id", "announcement_id", "title", "time", "date", "repeat_type", "is_active", "created_at"}}
	titles := make(map[int64]string)
	for _, entry := range entries {
		title, seen := titles[entry.AnnouncementID]
		if !seen {
			if announcement, err := s.announcements.FindByID(ctx, entry.AnnouncementID); err == nil {
				title = announcement.Title
			}
			titles[entry.AnnouncementID] = title
		}
		table.AddRecord(
			strconv.FormatInt(entry.ID, 10),
			strconv.FormatInt(entry.AnnouncementID, 10),
			title,
			entry.Time,
			entry.Date,
			entry.RepeatType,
			strconv.FormatBool(entry.IsActive),
			entry.CreatedAt.Format(time.RFC3339),
		)
	}
	return table.CSV()
}

func validateClockTime(value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "time must be HH:MM")
	}
	return nil
}

func validateCalendarDate(value string) error {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return nil
}
