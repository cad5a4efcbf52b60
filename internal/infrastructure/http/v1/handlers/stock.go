package handlers

import (
	"github.com/gin-gonic/gin"

	"inkhub/internal/data"
	"inkhub/internal/domain/entity"
	"inkhub/internal/infrastructure/http/v1/dto"
)

// StockHandler handles the stock ledger and design material endpoints.
type StockHandler struct {
	*BaseHandler
	layer *data.Layer
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, layer *data.Layer) *StockHandler {
	return &StockHandler{BaseHandler: base, layer: layer}
}

// ListTransactions handles GET /inventory/transactions - the full ledger,
// newest first.
func (h *StockHandler) ListTransactions(c *gin.Context) {
	items := h.layer.StockTransactions(c.Request.Context())
	h.OK(c, dto.ListResponse{Items: items, TotalCount: len(items)})
}

// RecordTransaction handles POST /inventory/:id/transactions - record a
// stock movement against an item. The ledger write is awaited; on failure
// nothing changes.
func (h *StockHandler) RecordTransaction(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var tx entity.StockTransaction
	if !h.BindJSON(c, &tx) {
		return
	}
	tx.ItemID = itemID

	created, err := h.layer.RecordStockTransaction(c.Request.Context(), tx)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created)
}

// ListMaterials handles GET /designs/:id/materials.
func (h *StockHandler) ListMaterials(c *gin.Context) {
	designID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	items := h.layer.DesignMaterials(c.Request.Context(), designID)
	h.OK(c, dto.ListResponse{Items: items, TotalCount: len(items)})
}

// AddMaterial handles POST /designs/:id/materials - assign inventory to a
// design and deduct stock.
func (h *StockHandler) AddMaterial(c *gin.Context) {
	designID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var m entity.DesignMaterial
	if !h.BindJSON(c, &m) {
		return
	}
	m.DesignID = designID

	created, err := h.layer.AddDesignMaterial(c.Request.Context(), m)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created)
}

// RemoveMaterial handles DELETE /materials/:id - unassign inventory from a
// design and return stock.
func (h *StockHandler) RemoveMaterial(c *gin.Context) {
	materialID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.layer.RemoveDesignMaterial(c.Request.Context(), materialID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
