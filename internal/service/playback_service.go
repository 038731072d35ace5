package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aslabkom/announcer-api/internal/models"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
)

type dueScheduleSource interface {
	List(ctx context.Context) ([]models.ScheduleEntry, error)
}

type dueRecitationSource interface {
	List(ctx context.Context) ([]models.RecitationSchedule, error)
}

type dueAnnouncementSource interface {
	FindByID(ctx context.Context, id int64) (*models.Announcement, error)
}

// PlaybackService answers "what is due right now" at minute granularity. An
// entry is due when its time of day matches the current HH:MM and either its
// date is today or it repeats. Evaluation is a pure function of the stores
// and the clock, so an optional Redis cache keyed by the exact minute can
// absorb aggressive player polling without changing any answer.
type PlaybackService struct {
	schedules     dueScheduleSource
	recitations   dueRecitationSource
	announcements dueAnnouncementSource
	cache         *redis.Client
	cacheTTL      time.Duration
	location      *time.Location
	metrics       *MetricsService
	logger        *zap.Logger
}

// PlaybackServiceConfig tunes due evaluation.
type PlaybackServiceConfig struct {
	Timezone string
	CacheTTL time.Duration
}

// NewPlaybackService constructs the service. Pass a nil Redis client to
// disable the due cache.
func NewPlaybackService(
	schedules dueScheduleSource,
	recitations dueRecitationSource,
	announcements dueAnnouncementSource,
	cache *redis.Client,
	cfg PlaybackServiceConfig,
	metrics *MetricsService,
	logger *zap.Logger,
) *PlaybackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	location := time.Local
	if cfg.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
			location = loc
		} else {
			logger.Warn("unknown timezone, falling back to local time", zap.String("timezone", cfg.Timezone), zap.Error(err))
		}
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 || ttl > time.Minute {
		// A cached answer must never outlive the minute it was computed for.
		ttl = 30 * time.Second
	}
	return &PlaybackService{
		schedules:     schedules,
		recitations:   recitations,
		announcements: announcements,
		cache:         cache,
		cacheTTL:      ttl,
		location:      location,
		metrics:       metrics,
		logger:        logger,
	}
}

// DueNow evaluates every schedule against the provided instant and returns
// the due entries. Calls within the same minute return the same result.
// With caching enabled, a schedule created or deleted mid-minute may not be
// reflected until the cached entry expires (at most cacheTTL).
func (s *PlaybackService) DueNow(ctx context.Context, now time.Time) (*models.DueResult, error) {
	local := now.In(s.location)
	currentTime := local.Format("15:04")
	currentDate := local.Format("2006-01-02")

	s.metrics.ObserveDuePoll()

	if cached := s.readCache(ctx, currentDate, currentTime); cached != nil {
		return cached, nil
	}

	result, err := s.evaluate(ctx, currentDate, currentTime)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, currentDate, currentTime, result)
	return result, nil
}

func (s *PlaybackService) evaluate(ctx context.Context, currentDate, currentTime string) (*models.DueResult, error) {
	result := &models.DueResult{
		CurrentTime:   currentTime,
		CurrentDate:   currentDate,
		Announcements: make([]models.DueSchedule, 0),
		Recitations:   make([]models.RecitationSchedule, 0),
	}

	entries, err := s.schedules.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	for _, entry := range entries {
		if !entryDue(entry.Time, entry.Date, entry.Repeats(), currentDate, currentTime) {
			continue
		}
		due := models.DueSchedule{ScheduleEntry: entry}
		announcement, err := s.announcements.FindByID(ctx, entry.AnnouncementID)
		switch {
		case err == nil:
			due.Announcement = announcement
		case errors.Is(err, sql.ErrNoRows):
			// Clip already deleted; report the entry without audio so the
			// player can skip it rather than fail the whole poll.
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load due announcement")
		}
		result.Announcements = append(result.Announcements, due)
	}

	recitations, err := s.recitations.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recitation schedules")
	}
	for _, entry := range recitations {
		if entryDue(entry.Time, entry.Date, entry.Repeats(), currentDate, currentTime) {
			result.Recitations = append(result.Recitations, entry)
		}
	}

	return result, nil
}

func entryDue(entryTime, entryDate string, repeats bool, currentDate, currentTime string) bool {
	if entryTime != currentTime {
		return false
	}
	return repeats || entryDate == currentDate
}

func dueCacheKey(date, clock string) string {
	return fmt.Sprintf("due:%s:%s", date, clock)
}

func (s *PlaybackService) readCache(ctx context.Context, date, clock string) *models.DueResult {
	if s.cache == nil {
		return nil
	}
	started := time.Now()
	raw, err := s.cache.Get(ctx, dueCacheKey(date, clock)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("due cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false, time.Since(started))
		return nil
	}
	var result models.DueResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Warn("due cache entry corrupt", zap.Error(err))
		s.metrics.RecordCacheOperation(false, time.Since(started))
		return nil
	}
	s.metrics.RecordCacheOperation(true, time.Since(started))
	return &result
}

func (s *PlaybackService) writeCache(ctx context.Context, date, clock string, result *models.DueResult) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	started := time.Now()
	if err := s.cache.Set(ctx, dueCacheKey(date, clock), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("due cache write failed", zap.Error(err))
		return
	}
	s.metrics.ObserveCacheWrite(time.Since(started))
}
