package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"inkhub/internal/core/apperror"
	"inkhub/internal/domain/entity"
	"inkhub/internal/infrastructure/http/v1/dto"
)

// ResourceConfig wires data layer operations for one record type.
type ResourceConfig[T entity.Record] struct {
	Name   string
	List   func(ctx context.Context) []T
	Create func(ctx context.Context, rec T) (T, error)
	Update func(ctx context.Context, id int64, patch entity.Row) (T, error)
	Delete func(ctx context.Context, id int64) error
}

// ResourceHandler provides generic CRUD handlers for a record type with a
// numeric id. Projections come branch-filtered from the data layer, so no
// extra scoping happens here.
type ResourceHandler[T entity.Record] struct {
	*BaseHandler
	cfg ResourceConfig[T]
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler[T entity.Record](base *BaseHandler, cfg ResourceConfig[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{BaseHandler: base, cfg: cfg}
}

// List handles GET /{resource} - list visible records.
func (h *ResourceHandler[T]) List(c *gin.Context) {
	items := h.cfg.List(c.Request.Context())
	h.OK(c, dto.ListResponse{Items: items, TotalCount: len(items)})
}

// Get handles GET /{resource}/:id - get single record.
func (h *ResourceHandler[T]) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	for _, item := range h.cfg.List(c.Request.Context()) {
		if item.RecordID() == any(id) {
			h.OK(c, item)
			return
		}
	}

	h.Error(c, apperror.NewNotFound(h.cfg.Name, id))
}

// Create handles POST /{resource} - create new record.
func (h *ResourceHandler[T]) Create(c *gin.Context) {
	var rec T
	if !h.BindJSON(c, &rec) {
		return
	}

	created, err := h.cfg.Create(c.Request.Context(), rec)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, created)
}

// Update handles PATCH /{resource}/:id - partial update.
// The body is a plain JSON object; keys may use either JSON field names
// or column names.
func (h *ResourceHandler[T]) Update(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var patch entity.Row
	if !h.BindJSON(c, &patch) {
		return
	}

	updated, err := h.cfg.Update(c.Request.Context(), id, entity.NormalizeRow[T](patch))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Delete handles DELETE /{resource}/:id.
func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.cfg.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
