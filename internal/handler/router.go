package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/aslabkom/announcer-api/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Announcements *AnnouncementHandler
	Schedules     *ScheduleHandler
	Recitations   *RecitationHandler
	Playback      *PlaybackHandler
	System        *SystemHandler
	Metrics       *MetricsHandler
	Authenticate  gin.HandlerFunc
}

// RegisterRoutes mounts the API surface. Player-facing routes (due polling,
// clip downloads, login, config) are public; everything that mutates state
// sits behind token auth.
func RegisterRoutes(r *gin.Engine, h Handlers, clipDir string) {
	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	r.Static(service.ClipURLPrefix, clipDir)

	api := r.Group("/api")
	{
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/me", h.Authenticate, h.Auth.Me)

		api.GET("/config", h.System.Config)
		api.GET("/schedules/check", h.Playback.CheckDue)

		api.GET("/announcements", h.Announcements.List)
		api.GET("/announcement-schedules", h.Schedules.List)
		api.GET("/recitation-schedules", h.Recitations.List)

		protected := api.Group("", h.Authenticate)
		{
			protected.POST("/tts/generate", h.Announcements.Generate)
			protected.POST("/tts/upload", h.Announcements.Upload)
			protected.DELETE("/announcements/:id", h.Announcements.Delete)

			protected.POST("/announcement-schedules", h.Schedules.Create)
			protected.GET("/announcement-schedules/export", h.Schedules.ExportCSV)
			protected.PATCH("/announcement-schedules/:id/date", h.Schedules.RescheduleDate)
			protected.DELETE("/announcement-schedules/:id", h.Schedules.Delete)

			protected.POST("/recitation-schedules", h.Recitations.Create)
			protected.PATCH("/recitation-schedules/:id/date", h.Recitations.RescheduleDate)
			protected.DELETE("/recitation-schedules/:id", h.Recitations.Delete)
		}
	}
}
