package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aslabkom/announcer-api/internal/service"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
	"github.com/aslabkom/announcer-api/pkg/response"
)

// RecitationHandler wires HTTP endpoints to the recitation schedule service.
type RecitationHandler struct {
	service *service.RecitationService
}

// NewRecitationHandler creates a new handler.
func NewRecitationHandler(svc *service.RecitationService) *RecitationHandler {
	return &RecitationHandler{service: svc}
}

// Create godoc
// @Summary Create a recitation schedule
// @Description Schedule a self-contained audio clip for playback at a time of day
// @Tags Recitations
// @Accept json
// @Produce json
// @Param payload body service.CreateRecitationRequest true "Recitation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /recitation-schedules [post]
func (h *RecitationHandler) Create(c *gin.Context) {
	var req service.CreateRecitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid recitation payload"))
		return
	}

	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, entry)
}

// List godoc
// @Summary List recitation schedules
// @Tags Recitations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /recitation-schedules [get]
func (h *RecitationHandler) List(c *gin.Context) {
	rows, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// RescheduleDate godoc
// @Summary Move a recitation schedule to a new date
// @Tags Recitations
// @Accept json
// @Produce json
// @Param id path int true "Schedule ID"
// @Param payload body object true "New date"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /recitation-schedules/{id}/date [patch]
func (h *RecitationHandler) RescheduleDate(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var payload struct {
		Date string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date required"))
		return
	}

	entry, err := h.service.RescheduleDate(c.Request.Context(), id, payload.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entry)
}

// Delete godoc
// @Summary Delete a recitation schedule
// @Description Removes the schedule only; the referenced audio is never touched
// @Tags Recitations
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /recitation-schedules/{id} [delete]
func (h *RecitationHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
