package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aslabkom/announcer-api/internal/ids"
	"github.com/aslabkom/announcer-api/internal/models"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

type recitationRepository interface {
	List(ctx context.Context) ([]models.RecitationSchedule, error)
	FindByID(ctx context.Context, id int64) (*models.RecitationSchedule, error)
	Insert(ctx context.Context, entry *models.RecitationSchedule) error
	UpdateDate(ctx context.Context, id int64, date string) error
	Delete(ctx context.Context, id int64) error
}

// RecitationService manages recitation schedules. Entries carry their own
// clip URL, so deletes are plain removals with no cascade.
type RecitationService struct {
	repo      recitationRepository
	ids       ids.Generator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecitationService constructs the service.
func NewRecitationService(repo recitationRepository, gen ids.Generator, validate *validator.Validate, logger *zap.Logger) *RecitationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gen == nil {
		gen = ids.NewMonotonic()
	}
	return &RecitationService{repo: repo, ids: gen, validator: validate, logger: logger}
}

// CreateRecitationRequest describes a new recitation schedule.
type CreateRecitationRequest struct {
	Title      string `json:"title"`
	AudioURL   string `json:"audio_url" validate:"required,url"`
	Time       string `json:"time" validate:"required"`
	Date       string `json:"date"`
	RepeatType string `json:"repeat_type"`
}

// Create registers a recitation schedule.
func (s *RecitationService) Create(ctx context.Context, req CreateRecitationRequest) (*models.RecitationSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recitation payload")
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

	entry := &models.RecitationSchedule{
		ID:         s.ids.Next(),
		Title:      normalizeTitle(req.Title),
		AudioURL:   req.AudioURL,
		Time:       req.Time,
		Date:       date,
		RepeatType: repeat,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create recitation schedule")
	}
	return entry, nil
}

// List returns all recitation schedules.
func (s *RecitationService) List(ctx context.Context) ([]models.RecitationSchedule, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recitation schedules")
	}
	return rows, nil
}

// RescheduleDate moves an entry to a new calendar date.
func (s *RecitationService) RescheduleDate(ctx context.Context, id int64, date string) (*models.RecitationSchedule, error) {
	if err := validateCalendarDate(date); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDate(ctx, id, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recitation schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reschedule")
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload recitation schedule")
	}
	return entry, nil
}

// Delete removes a recitation schedule. The referenced clip is not touched:
// recitation URLs usually point at shared or external audio.
func (s *RecitationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "recitation schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete recitation schedule")
	}
	return nil
}
