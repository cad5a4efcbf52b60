package handlers

import (
	"github.com/gin-gonic/gin"

	"inkhub/internal/data"
	"inkhub/internal/domain/entity"
	"inkhub/internal/infrastructure/http/v1/dto"
)

// UsersHandler handles account management endpoints. Accounts are keyed by
// username, not a numeric id, so they do not fit the generic resource
// handler.
type UsersHandler struct {
	*BaseHandler
	layer *data.Layer
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(base *BaseHandler, layer *data.Layer) *UsersHandler {
	return &UsersHandler{BaseHandler: base, layer: layer}
}

// List handles GET /users.
func (h *UsersHandler) List(c *gin.Context) {
	users := dto.FromUsers(h.layer.Users(c.Request.Context()))
	h.OK(c, dto.ListResponse{Items: users, TotalCount: len(users)})
}

// Update handles PATCH /users/:username. The username itself is immutable;
// password changes go through the auth endpoints.
func (h *UsersHandler) Update(c *gin.Context) {
	var patch entity.Row
	if !h.BindJSON(c, &patch) {
		return
	}

	// Password and session token writes have dedicated paths.
	delete(patch, "password")
	delete(patch, "session_token")

	updated, err := h.layer.UpdateUser(c.Request.Context(), c.Param("username"), entity.NormalizeRow[entity.User](patch))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(updated))
}

// Delete handles DELETE /users/:username.
func (h *UsersHandler) Delete(c *gin.Context) {
	if err := h.layer.DeleteUser(c.Request.Context(), c.Param("username")); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
