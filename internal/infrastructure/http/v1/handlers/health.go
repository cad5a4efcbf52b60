package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkhub/internal/data"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	layer *data.Layer
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(layer *data.Layer) *HealthHandler {
	return &HealthHandler{layer: layer}
}

// Live handles GET /health/live - liveness probe.
// Returns 200 if the process is running.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /health/ready - readiness probe.
// In remote mode it also checks the database connection. A degraded
// local-mode process still reports ready: it serves from the blob.
func (h *HealthHandler) Ready(c *gin.Context) {
	mode := string(h.layer.Mode())

	if remote := h.layer.Remote(); remote != nil {
		if err := remote.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"mode":   mode,
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"mode":   mode,
	})
}

// Info handles GET /health/info - service information.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "inkhub",
		"version": "1.0.0",
		"mode":    string(h.layer.Mode()),
	})
}
