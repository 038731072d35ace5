package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aslabkom/announcer-api/internal/ids"
	"github.com/aslabkom/announcer-api/internal/middleware"
	"github.com/aslabkom/announcer-api/internal/models"
	"github.com/aslabkom/announcer-api/internal/repository"
	"github.com/aslabkom/announcer-api/internal/service"
	"github.com/aslabkom/announcer-api/pkg/response"
)

type pipelineStub struct {
	assetsErr error
}

func (p pipelineStub) CheckAssets() error { return p.assetsErr }

func (p pipelineStub) Produce(_ context.Context, _ string, id int64) (string, error) {
	return fmt.Sprintf("announcement-%d.mp3", id), nil
}

type noopClips struct{}

func (noopClips) SaveStream(filename string, _ io.Reader) (string, error) { return filename, nil }
func (noopClips) Delete(string) error                                     { return nil }

type routerFixture struct {
	engine        *gin.Engine
	auth          *service.AuthService
	announcements *repository.MemoryAnnouncementRepository
	schedules     *repository.MemoryScheduleRepository
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	announcements := repository.NewMemoryAnnouncementRepository()
	schedules := repository.NewMemoryScheduleRepository()
	recitations := repository.NewMemoryRecitationRepository()

	gen := ids.NewMonotonic()
	announcementSvc := service.NewAnnouncementService(announcements, schedules, pipelineStub{}, noopClips{}, gen, service.AnnouncementServiceConfig{
		BaseURL: "http://localhost:8000",
		Workers: 1,
	}, nil, logger)
	announcementSvc.Start(context.Background())
	t.Cleanup(announcementSvc.Stop)

	scheduleSvc := service.NewScheduleService(schedules, announcements, noopClips{}, gen, nil, logger)
	recitationSvc := service.NewRecitationService(recitations, gen, nil, logger)
	playbackSvc := service.NewPlaybackService(schedules, recitations, announcements, nil, service.PlaybackServiceConfig{Timezone: "UTC"}, nil, logger)
	authSvc := service.NewAuthService(service.AuthServiceConfig{
		AccessCode: "asleb2026",
		JWTSecret:  "test-secret",
		Expiration: time.Hour,
	}, nil, logger)
	metricsSvc := service.NewMetricsService()

	r := gin.New()
	RegisterRoutes(r, Handlers{
		Auth:          NewAuthHandler(authSvc),
		Announcements: NewAnnouncementHandler(announcementSvc),
		Schedules:     NewScheduleHandler(scheduleSvc),
		Recitations:   NewRecitationHandler(recitationSvc),
		Playback:      NewPlaybackHandler(playbackSvc),
		System:        NewSystemHandler("http://localhost:8000", pipelineStub{}),
		Metrics:       NewMetricsHandler(metricsSvc),
		Authenticate:  middleware.JWTAuth(authSvc),
	}, t.TempDir())

	return &routerFixture{engine: r, auth: authSvc, announcements: announcements, schedules: schedules}
}

func (f *routerFixture) token(t *testing.T) string {
	t.Helper()
	resp, err := f.auth.Login(models.LoginRequest{Password: "asleb2026"})
	require.NoError(t, err)
	return resp.AccessToken
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestRouterLoginAndMe(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"password": "asleb2026"})
	require.Equal(t, http.StatusOK, w.Code)

	var login models.LoginResponse
	decodeData(t, w, &login)
	require.NotEmpty(t, login.AccessToken)

	w = f.do(t, http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterGenerateRequiresAuth(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodPost, "/api/tts/generate", "", gin.H{"text": "halo"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterGenerateAndList(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t)

	w := f.do(t, http.MethodPost, "/api/tts/generate", token, gin.H{"text": "Pengumuman upacara", "title": "Upacara"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Announcement
	decodeData(t, w, &created)
	assert.Equal(t, "Upacara", created.Title)
	assert.Contains(t, created.AudioURL, "/clips/announcement-")

	w = f.do(t, http.MethodGet, "/api/announcements", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Announcement
	decodeData(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestRouterGenerateEmptyText(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodPost, "/api/tts/generate", f.token(t), gin.H{"text": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "EMPTY_TEXT", envelope.Error.Code)
}

func TestRouterScheduleLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t)
	ctx := context.Background()

	require.NoError(t, f.announcements.Insert(ctx, &models.Announcement{
		ID:       42,
		Title:    "Upacara",
		AudioURL: "http://localhost:8000/clips/announcement-42.mp3",
	}))

	w := f.do(t, http.MethodPost, "/api/announcement-schedules", token, gin.H{
		"announcement_id": 42,
		"time":            "07:30",
		"date":            "2026-08-30",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var entry models.ScheduleEntry
	decodeData(t, w, &entry)

	w = f.do(t, http.MethodPatch, fmt.Sprintf("/api/announcement-schedules/%d/date", entry.ID), token, gin.H{"date": "2026-09-01"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/api/announcement-schedules/%d", entry.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result service.ScheduleDeleteResult
	decodeData(t, w, &result)
	assert.True(t, result.AnnouncementDeleted)

	_, err := f.announcements.FindByID(ctx, 42)
	assert.Error(t, err)
}

func TestRouterScheduleCheckPublic(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodGet, "/api/schedules/check", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.DueResult
	decodeData(t, w, &result)
	assert.NotEmpty(t, result.CurrentTime)
	assert.Empty(t, result.Announcements)
}

func TestRouterDeleteAnnouncementStripsSchedules(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t)
	ctx := context.Background()

	require.NoError(t, f.announcements.Insert(ctx, &models.Announcement{ID: 42, Title: "Upacara", AudioURL: "http://localhost:8000/clips/announcement-42.mp3"}))
	require.NoError(t, f.schedules.Insert(ctx, &models.ScheduleEntry{ID: 1, AnnouncementID: 42, Time: "07:30", RepeatType: "daily"}))

	w := f.do(t, http.MethodDelete, "/api/announcements/42", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	remaining, err := f.schedules.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRouterHealthAndConfig(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "clip_prefix")
}
