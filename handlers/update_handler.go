package handlers

import (
	"net/http"

	"appealdraft-backend/service"

	"github.com/gin-gonic/gin"
)

// UpdateHandler handles HTTP requests for appeal status notes
type UpdateHandler struct {
	appealService *service.AppealService
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(appealService *service.AppealService) *UpdateHandler {
	return &UpdateHandler{appealService: appealService}
}

// ListUpdates handles GET /api/appeals/:id/updates
func (h *UpdateHandler) ListUpdates(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	appealID, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	updates, err := h.appealService.ListUpdates(c.Request.Context(), actor, appealID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updates,
	})
}

// UpdateNoteRequest represents the request body for creating or editing a note
type UpdateNoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// CreateUpdate handles POST /api/appeals/:id/updates
func (h *UpdateHandler) CreateUpdate(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	appealID, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	update, err := h.appealService.CreateUpdate(c.Request.Context(), actor, appealID, req.Title, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    update,
	})
}

// EditUpdate handles PUT /api/updates/:id
func (h *UpdateHandler) EditUpdate(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "Invalid update ID format")
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	update, err := h.appealService.EditUpdate(c.Request.Context(), actor, id, req.Title, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    update,
	})
}

// DeleteUpdate handles DELETE /api/updates/:id
func (h *UpdateHandler) DeleteUpdate(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "Invalid update ID format")
	if !ok {
		return
	}

	if err := h.appealService.DeleteUpdate(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
