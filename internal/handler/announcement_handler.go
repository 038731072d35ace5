package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aslabkom/announcer-api/internal/service"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
	"github.com/aslabkom/announcer-api/pkg/response"
)

// AnnouncementHandler wires HTTP endpoints to the announcement service.
type AnnouncementHandler struct {
	service *service.AnnouncementService
}

// NewAnnouncementHandler creates a new handler.
func NewAnnouncementHandler(svc *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc}
}

// Generate godoc
// @Summary Generate an announcement clip
// @Description Produce a spoken announcement from text, mixed with the intro and outro jingles
// @Tags TTS
// @Accept json
// @Produce json
// @Param payload body service.GenerateRequest true "Announcement text"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /tts/generate [post]
func (h *AnnouncementHandler) Generate(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}

	announcement, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, announcement)
}

// Upload godoc
// @Summary Upload a pre-recorded clip
// @Description Register an uploaded audio file as an announcement without running the pipeline
// @Tags TTS
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio file"
// @Param title formData string false "Announcement title"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tts/upload [post]
func (h *AnnouncementHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no audio file provided"))
		return
	}

	content, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read uploaded file"))
		return
	}
	defer content.Close() //nolint:errcheck

	announcement, err := h.service.Upload(c.Request.Context(), service.UploadRequest{
		Filename: file.Filename,
		Title:    c.PostForm("title"),
		Content:  content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, announcement)
}

// List godoc
// @Summary List announcements
// @Description Returns all announcements, newest first
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	rows, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Delete godoc
// @Summary Delete an announcement
// @Description Removes the announcement, its clip file and every schedule referencing it
// @Tags Announcements
// @Produce json
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stripped, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"deleted": id, "schedules_removed": stripped})
}
