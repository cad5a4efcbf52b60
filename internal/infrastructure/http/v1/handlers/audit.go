package handlers

import (
	"github.com/gin-gonic/gin"

	"inkhub/internal/data"
	"inkhub/internal/infrastructure/http/v1/dto"
)

// AuditHandler serves the audit trail.
type AuditHandler struct {
	*BaseHandler
	layer *data.Layer
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, layer *data.Layer) *AuditHandler {
	return &AuditHandler{BaseHandler: base, layer: layer}
}

// List handles GET /audit - newest first, optionally limited.
func (h *AuditHandler) List(c *gin.Context) {
	entries := h.layer.AuditTrail(c.Request.Context())

	limit := h.ParseIntQuery(c, "limit", 0)
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	h.OK(c, dto.ListResponse{Items: entries, TotalCount: len(entries)})
}
