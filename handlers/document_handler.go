package handlers

import (
	"net/http"

	"appealdraft-backend/service"

	"github.com/gin-gonic/gin"
)

// DocumentHandler handles HTTP requests for supporting documents
type DocumentHandler struct {
	appealService   *service.AppealService
	pipelineService *service.PipelineService
	maxFileSize     int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(appealService *service.AppealService, pipelineService *service.PipelineService) *DocumentHandler {
	return &DocumentHandler{
		appealService:   appealService,
		pipelineService: pipelineService,
		maxFileSize:     10 * 1024 * 1024, // 10MB
	}
}

// ListDocuments handles GET /api/appeals/:id/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	appealID, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	docs, err := h.appealService.ListDocuments(c.Request.Context(), actor, appealID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    docs,
	})
}

// UploadDocuments handles POST /api/appeals/:id/documents. Accepts multiple
// files under the "files" form key; each file succeeds or fails on its own
// and the per-file outcomes are reported back.
func (h *DocumentHandler) UploadDocuments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	appealID, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_FILES",
				"message": "At least one file is required under the 'files' key",
			},
		})
		return
	}

	files := make([]service.UploadFile, 0, len(fileHeaders))
	opened := make([]interface{ Close() error }, 0, len(fileHeaders))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, header := range fileHeaders {
		if header.Size > h.maxFileSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FILE_TOO_LARGE",
					"message": header.Filename + " exceeds the maximum file size",
				},
			})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FILE_OPEN_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
		opened = append(opened, file)

		files = append(files, service.UploadFile{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        file,
		})
	}

	outcomes, err := h.pipelineService.UploadDocuments(c.Request.Context(), appealID, actor, files)
	if err != nil && outcomes == nil {
		respondServiceError(c, err)
		return
	}
	if err != nil {
		// All files failed: report the per-file outcomes alongside the error.
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ALL_UPLOADS_FAILED",
				"message": err.Error(),
			},
			"data": gin.H{
				"results": outcomeViews(outcomes),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"documents": service.Documents(outcomes),
			"results":   outcomeViews(outcomes),
		},
	})
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "Invalid document ID format")
	if !ok {
		return
	}

	if err := h.appealService.DeleteDocument(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// outcomeViews flattens upload outcomes into a JSON-friendly shape; the
// error field only renders for failed items.
func outcomeViews(outcomes []service.UploadOutcome) []gin.H {
	views := make([]gin.H, 0, len(outcomes))
	for _, o := range outcomes {
		view := gin.H{
			"file_name": o.FileName,
			"succeeded": o.Err == nil,
		}
		if o.Err != nil {
			view["error"] = o.Err.Error()
		}
		if o.Document != nil {
			view["document"] = o.Document
		}
		views = append(views, view)
	}
	return views
}
