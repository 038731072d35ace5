package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aslabkom/announcer-api/internal/ids"
	"github.com/aslabkom/announcer-api/internal/models"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
	"github.com/aslabkom/announcer-api/pkg/jobs"
)

// ClipURLPrefix is the public mount point for finished clips. Stored audio
// URLs embed it, and the delete path strips it back off to locate the file.
const ClipURLPrefix = "/clips"

type announcementRepository interface {
	List(ctx context.Context) ([]models.Announcement, error)
	FindByID(ctx context.Context, id int64) (*models.Announcement, error)
	Insert(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id int64) error
}

type scheduleReferenceRepository interface {
	DeleteByAnnouncement(ctx context.Context, announcementID int64) (int64, error)
}

// clipProducer is the production pipeline as the service sees it.
type clipProducer interface {
	CheckAssets() error
	Produce(ctx context.Context, text string, id int64) (string, error)
}

type clipFiles interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

// AnnouncementService owns the announcement store and the asynchronous
// production of new clips. Generation runs on a bounded worker pool so a slow
// synthesis run cannot pile unbounded goroutines onto the host.
type AnnouncementService struct {
	repo      announcementRepository
	schedules scheduleReferenceRepository
	producer  clipProducer
	clips     clipFiles
	ids       ids.Generator
	queue     *jobs.Queue
	baseURL   string
	jobWait   time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
}

// AnnouncementServiceConfig tunes the generation worker pool.
type AnnouncementServiceConfig struct {
	BaseURL    string
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// NewAnnouncementService constructs the service and its job queue. Call
// Start before accepting generation requests and Stop on shutdown.
func NewAnnouncementService(
	repo announcementRepository,
	schedules scheduleReferenceRepository,
	producer clipProducer,
	clips clipFiles,
	gen ids.Generator,
	cfg AnnouncementServiceConfig,
	metrics *MetricsService,
	logger *zap.Logger,
) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gen == nil {
		gen = ids.NewMonotonic()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	svc := &AnnouncementService{
		repo:      repo,
		schedules: schedules,
		producer:  producer,
		clips:     clips,
		ids:       gen,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		jobWait:   cfg.JobTimeout,
		metrics:   metrics,
		logger:    logger,
	}
	svc.queue = jobs.NewQueue("announcement-generation", svc.handleGenerateJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.QueueSize,
		MaxRetries: -1, // a failed run is reported to the caller, never replayed
		Logger:     logger,
	})
	return svc
}

// Start launches the generation workers.
func (s *AnnouncementService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the generation workers.
func (s *AnnouncementService) Stop() {
	s.queue.Stop()
}

// GenerateRequest carries the operator text for a new announcement.
type GenerateRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

type generateResult struct {
	announcement *models.Announcement
	err          error
}

type generatePayload struct {
	id    int64
	text  string
	title string
	reply chan generateResult
}

// Generate produces a new announcement clip from text. Validation failures
// (empty text, missing jingle assets) surface before the job is queued; the
// call then blocks until the pipeline run finishes or the context is done.
func (s *AnnouncementService) Generate(ctx context.Context, req GenerateRequest) (*models.Announcement, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, appErrors.ErrEmptyText
	}
	if err := s.producer.CheckAssets(); err != nil {
		return nil, err
	}

	payload := generatePayload{
		id:    s.ids.Next(),
		text:  text,
		title: normalizeTitle(req.Title),
		reply: make(chan generateResult, 1),
	}
	if err := s.queue.Enqueue(jobs.Job{
		ID:      strconv.FormatInt(payload.id, 10),
		Type:    "generate",
		Payload: payload,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation queue unavailable")
	}

	select {
	case <-ctx.Done():
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation cancelled")
	case res := <-payload.reply:
		return res.announcement, res.err
	}
}

func (s *AnnouncementService) handleGenerateJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(generatePayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.jobWait)
	defer cancel()

	started := time.Now()
	clipName, err := s.producer.Produce(runCtx, payload.text, payload.id)
	s.metrics.ObservePipelineRun(err == nil, time.Since(started))
	if err != nil {
		payload.reply <- generateResult{err: err}
		return nil
	}

	announcement := &models.Announcement{
		ID:        payload.id,
		Title:     payload.title,
		AudioURL:  s.clipURL(clipName),
		CreatedAt: time.Now(),
	}
	if err := s.repo.Insert(runCtx, announcement); err != nil {
		// Metadata insert failed after the clip was produced; remove the
		// orphan so the clip directory stays consistent with the store.
		if cleanupErr := s.clips.Delete(clipName); cleanupErr != nil {
			s.logger.Warn("failed to remove orphan clip", zap.String("clip", clipName), zap.Error(cleanupErr))
		}
		payload.reply <- generateResult{err: appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store announcement")}
		return nil
	}

	payload.reply <- generateResult{announcement: announcement}
	return nil
}

// UploadRequest registers a pre-recorded clip as an announcement.
type UploadRequest struct {
	Filename string
	Title    string
	Content  io.Reader
}

// Upload stores an uploaded clip verbatim and registers it in the store. The
// production pipeline is bypassed entirely.
func (s *AnnouncementService) Upload(ctx context.Context, req UploadRequest) (*models.Announcement, error) {
	if req.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no audio file provided")
	}

	id := s.ids.Next()
	stored := fmt.Sprintf("upload-%d-%s", id, sanitizeUploadName(req.Filename))
	if _, err := s.clips.SaveStream(stored, req.Content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrArtifactWrite.Code, appErrors.ErrArtifactWrite.Status, "failed to store uploaded clip")
	}

	announcement := &models.Announcement{
		ID:        id,
		Title:     normalizeTitle(req.Title),
		AudioURL:  s.clipURL(stored),
		CreatedAt: time.Now(),
	}
	if err := s.repo.Insert(ctx, announcement); err != nil {
		if cleanupErr := s.clips.Delete(stored); cleanupErr != nil {
			s.logger.Warn("failed to remove orphan upload", zap.String("clip", stored), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store announcement")
	}
	return announcement, nil
}

// List returns all announcements, newest first.
func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return rows, nil
}

// Get returns a single announcement.
func (s *AnnouncementService) Get(ctx context.Context, id int64) (*models.Announcement, error) {
	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	return announcement, nil
}

// Delete removes an announcement, its clip file and every schedule that
// referenced it. Schedules go too: a schedule pointing at a deleted clip
// would otherwise fire silently forever. File removal is best-effort; the
// metadata delete decides success.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) (int64, error) {
	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}

	if clip := ClipFilenameFromURL(announcement.AudioURL); clip != "" {
		if err := s.clips.Delete(clip); err != nil {
			s.logger.Warn("failed to remove clip file", zap.String("clip", clip), zap.Error(err))
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}

	stripped, err := s.schedules.DeleteByAnnouncement(ctx, id)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove referencing schedules")
	}
	if stripped > 0 {
		s.logger.Info("cascade removed referencing schedules",
			zap.Int64("announcement_id", id),
			zap.Int64("schedules", stripped))
	}
	return stripped, nil
}

func (s *AnnouncementService) clipURL(filename string) string {
	return s.baseURL + ClipURLPrefix + "/" + filename
}

// ClipFilenameFromURL extracts the stored filename from a clip URL.
func ClipFilenameFromURL(audioURL string) string {
	if audioURL == "" {
		return ""
	}
	name := path.Base(audioURL)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.DefaultAnnouncementTitle
	}
	return title
}

// sanitizeUploadName keeps only the base name of the client-provided
// filename, with path separators and spaces flattened.
func sanitizeUploadName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		return "clip.mp3"
	}
	return name
}
