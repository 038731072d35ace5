package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aslabkom/announcer-api/internal/service"
	"github.com/aslabkom/announcer-api/pkg/response"
)

// PlaybackHandler answers player polls for due schedules.
type PlaybackHandler struct {
	service *service.PlaybackService
}

// NewPlaybackHandler creates a new handler.
func NewPlaybackHandler(svc *service.PlaybackService) *PlaybackHandler {
	return &PlaybackHandler{service: svc}
}

// CheckDue godoc
// @Summary Check due schedules
// @Description Returns every announcement and recitation schedule due at the current minute
// @Tags Playback
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules/check [get]
func (h *PlaybackHandler) CheckDue(c *gin.Context) {
	result, err := h.service.DueNow(c.Request.Context(), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
