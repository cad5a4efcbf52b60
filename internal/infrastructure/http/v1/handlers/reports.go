package handlers

import (
	"github.com/gin-gonic/gin"

	"inkhub/internal/data"
	"inkhub/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	*BaseHandler
	layer *data.Layer
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, layer *data.Layer) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, layer: layer}
}

// Summary handles GET /reports/summary - sales and expense totals over a
// date range.
func (h *ReportsHandler) Summary(c *gin.Context) {
	var req dto.RangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	summary := h.layer.Summarize(c.Request.Context(), data.DateRange{From: req.From, To: req.To})
	h.OK(c, summary)
}

// SupplierBalances handles GET /reports/supplier-balances.
func (h *ReportsHandler) SupplierBalances(c *gin.Context) {
	var req dto.RangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	balances := h.layer.SupplierBalances(c.Request.Context(), data.DateRange{From: req.From, To: req.To})
	h.OK(c, dto.ListResponse{Items: balances, TotalCount: len(balances)})
}

// StockStatus handles GET /reports/stock-status - inventory level counts.
func (h *ReportsHandler) StockStatus(c *gin.Context) {
	h.OK(c, h.layer.InventoryStatus(c.Request.Context()))
}
