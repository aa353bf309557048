package handlers

import (
	"net/http"
	"strconv"

	"appealdraft-backend/models"
	"appealdraft-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AppealHandler handles HTTP requests for appeals
type AppealHandler struct {
	appealService   *service.AppealService
	pipelineService *service.PipelineService
}

// NewAppealHandler creates a new appeal handler
func NewAppealHandler(appealService *service.AppealService, pipelineService *service.PipelineService) *AppealHandler {
	return &AppealHandler{
		appealService:   appealService,
		pipelineService: pipelineService,
	}
}

// CreateAppealRequest represents the request body for creating an appeal
type CreateAppealRequest struct {
	DenialLetterURL *string           `json:"denial_letter_url"`
	ParsedData      map[string]string `json:"parsed_data"`
	GeneratedLetter *string           `json:"generated_letter"`
}

// CreateAppeal handles POST /api/appeals
func (h *AppealHandler) CreateAppeal(c *gin.Context) {
	var req CreateAppealRequest
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

	serviceReq := service.CreateAppealRequest{
		DenialLetterURL: req.DenialLetterURL,
		ParsedData:      models.ParsedData(req.ParsedData),
		GeneratedLetter: req.GeneratedLetter,
	}

	appeal, err := h.appealService.CreateAppeal(c.Request.Context(), actorFrom(c), serviceReq)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    appeal,
	})
}

// GetAppeal handles GET /api/appeals/:id
func (h *AppealHandler) GetAppeal(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	appeal, err := h.appealService.GetAppeal(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appeal,
	})
}

// ListAppeals handles GET /api/appeals
func (h *AppealHandler) ListAppeals(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var status *models.AppealStatus
	if raw := c.Query("status"); raw != "" {
		s := models.AppealStatus(raw)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "Unknown appeal status: " + raw,
				},
			})
			return
		}
		status = &s
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	appeals, err := h.appealService.ListAppeals(c.Request.Context(), actor, status, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appeals,
	})
}

// UpdateAppealRequest represents the request body for updating an appeal
type UpdateAppealRequest struct {
	Status             *string           `json:"status"`
	DenialLetterURL    *string           `json:"denial_letter_url"`
	ParsedData         map[string]string `json:"parsed_data"`
	GeneratedLetter    *string           `json:"generated_letter"`
	GeneratedLetterURL *string           `json:"generated_letter_url"`
}

// UpdateAppeal handles PUT /api/appeals/:id
func (h *AppealHandler) UpdateAppeal(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	var req UpdateAppealRequest
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

	patch := &models.AppealPatch{
		DenialLetterURL:    req.DenialLetterURL,
		ParsedData:         models.ParsedData(req.ParsedData),
		GeneratedLetter:    req.GeneratedLetter,
		GeneratedLetterURL: req.GeneratedLetterURL,
	}
	if req.Status != nil {
		status := models.AppealStatus(*req.Status)
		patch.Status = &status
	}

	appeal, err := h.appealService.UpdateAppeal(c.Request.Context(), actorFrom(c), id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appeal,
	})
}

// DeleteAppeal handles DELETE /api/appeals/:id
func (h *AppealHandler) DeleteAppeal(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	if err := h.appealService.DeleteAppeal(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ParseLetter handles POST /api/appeals/parse. The denial letter arrives as
// a multipart upload; the extracted facts go back to the client un-persisted
// so the wizard can let the user correct them before anything is saved.
func (h *AppealHandler) ParseLetter(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	file, err := fileHeader.Open()
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
	defer file.Close()

	upload := service.UploadFile{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Data:        file,
	}

	result, err := h.pipelineService.ExtractFromLetter(c.Request.Context(), actorFrom(c), upload)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"parsed_data":       result.ParsedData,
			"denial_letter_url": result.DenialLetterURL,
		},
	})
}

// GenerateLetterRequest represents the request body for letter generation
type GenerateLetterRequest struct {
	ParsedData map[string]string `json:"parsed_data"`
}

// GenerateLetter handles POST /api/appeals/:id/generate. The body's facts
// take precedence over the appeal's stored ones so the wizard can generate
// from its latest corrections before saving them.
func (h *AppealHandler) GenerateLetter(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	var req GenerateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Body is optional; stored facts are used when absent.
		req.ParsedData = nil
	}

	letter, err := h.pipelineService.DraftLetter(c.Request.Context(), id, models.ParsedData(req.ParsedData))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"generated_letter": letter,
		},
	})
}

// RenderLetterRequest represents the request body for rendering
type RenderLetterRequest struct {
	GeneratedLetter string `json:"generated_letter" binding:"required"`
}

// RenderLetter handles POST /api/appeals/:id/render
func (h *AppealHandler) RenderLetter(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	var req RenderLetterRequest
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

	name, found, err := h.pipelineService.RenderLetter(c.Request.Context(), id, req.GeneratedLetter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Appeal not found",
			},
		})
		return
	}

	url, err := h.pipelineService.SignedLetterURL(c.Request.Context(), name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"generated_letter_url": name,
			"download_url":         url,
		},
	})
}

// SaveAppealRequest represents the request body for finalizing an appeal
type SaveAppealRequest struct {
	ParsedData      map[string]string `json:"parsed_data"`
	GeneratedLetter string            `json:"generated_letter" binding:"required"`
	DenialLetterURL *string           `json:"denial_letter_url"`
}

// SaveAppeal handles POST /api/appeals/save
func (h *AppealHandler) SaveAppeal(c *gin.Context) {
	var req SaveAppealRequest
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

	sub := service.CompleteSubmission{
		ParsedData:      models.ParsedData(req.ParsedData),
		GeneratedLetter: req.GeneratedLetter,
		DenialLetterURL: req.DenialLetterURL,
	}

	id, err := h.pipelineService.FinalizeAndPersist(c.Request.Context(), actorFrom(c), sub)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"id": id,
		},
	})
}

// GetLatestRun handles GET /api/appeals/:id/runs/latest so clients can
// poll the pipeline's stage progress for an appeal.
func (h *AppealHandler) GetLatestRun(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "Invalid appeal ID format")
	if !ok {
		return
	}

	run, err := h.pipelineService.LatestRun(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    run,
	})
}

// parseIDParam parses a UUID path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": message,
			},
		})
		return uuid.Nil, false
	}
	return id, true
}
