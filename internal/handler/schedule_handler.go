package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aslabkom/announcer-api/internal/service"
	appErrors "github.com/aslabkom/announcer-api/pkg/errors"
	"github.com/aslabkom/announcer-api/pkg/export"
	"github.com/aslabkom/announcer-api/pkg/response"
)

// ScheduleHandler wires HTTP endpoints to the schedule service.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Create godoc
// @Summary Create an announcement schedule
// @Description Schedule an existing announcement for playback at a time of day
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcement-schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
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
// @Summary List announcement schedules
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /announcement-schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	rows, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// ExportCSV godoc
// @Summary Export schedules as CSV
// @Description Downloads every announcement schedule with its announcement title
// @Tags Schedules
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Router /announcement-schedules/export [get]
func (h *ScheduleHandler) ExportCSV(c *gin.Context) {
	data, err := h.service.ExportCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedules.csv"`)
	c.Data(http.StatusOK, export.ContentTypeCSV, data)
}

// RescheduleDate godoc
// @Summary Move a schedule to a new date
// @Description Changes only the calendar date; time of day and repeat behaviour stay
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Schedule ID"
// @Param payload body object true "New date"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcement-schedules/{id}/date [patch]
func (h *ScheduleHandler) RescheduleDate(c *gin.Context) {
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
// @Summary Delete an announcement schedule
// @Description Removes the schedule; the last schedule referencing an announcement takes the announcement and its clip with it
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcement-schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}
