package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aslabkom/announcer-api/internal/service"
	"github.com/aslabkom/announcer-api/pkg/response"
)

type assetChecker interface {
	CheckAssets() error
}

// SystemHandler serves health probes and the public client configuration.
type SystemHandler struct {
	baseURL string
	assets  assetChecker
}

// NewSystemHandler creates a new handler.
func NewSystemHandler(baseURL string, assets assetChecker) *SystemHandler {
	return &SystemHandler{baseURL: baseURL, assets: assets}
}

// Health reports liveness.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports readiness. The service is not ready when the fixed jingle
// assets are missing, since every generation would fail.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.assets != nil {
		if err := h.assets.CheckAssets(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "reason": "jingle assets missing"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Config godoc
// @Summary Public client configuration
// @Description Returns the values player and admin clients need to talk to this installation
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /config [get]
func (h *SystemHandler) Config(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"base_url":    h.baseURL,
		"clip_prefix": service.ClipURLPrefix,
	})
}
