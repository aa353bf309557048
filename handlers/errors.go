package handlers

import (
	"errors"
	"net/http"

	"appealdraft-backend/service"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service sentinel errors onto the HTTP boundary.
// Anything unrecognized is an internal fault.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, service.ErrAppealNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrDocumentNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrUpdateNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrRunNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, service.ErrInvalidTransition):
		status, code = http.StatusBadRequest, "INVALID_TRANSITION"
	case errors.Is(err, service.ErrNoFiles):
		status, code = http.StatusBadRequest, "NO_FILES"
	case errors.Is(err, service.ErrAllUploadsFailed):
		status, code = http.StatusBadGateway, "ALL_UPLOADS_FAILED"
	case errors.Is(err, service.ErrExtractionFailed):
		status, code = http.StatusBadGateway, "EXTRACTION_FAILED"
	case errors.Is(err, service.ErrDraftingFailed):
		status, code = http.StatusBadGateway, "GENERATION_FAILED"
	}

	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}
