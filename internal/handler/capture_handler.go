package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"lapsecam/internal/model"
	"lapsecam/internal/repository"
	"lapsecam/internal/service"
)

type CaptureHandler struct {
	captures service.CaptureService
	uploads  service.UploadService
}

type captureResponse struct {
	ID             int64   `json:"id"`
	Filename       string  `json:"filename"`
	SizeBytes      int64   `json:"sizeBytes"`
	SHA256         string  `json:"sha256"`
	Source         string  `json:"source"`
	TakenAt        string  `json:"takenAt"`
	UploadStatus   string  `json:"uploadStatus"`
	UploadAttempts int     `json:"uploadAttempts"`
	UploadedAt     *string `json:"uploadedAt,omitempty"`
	LastError      *string `json:"lastError,omitempty"`
	Notified       bool    `json:"notified"`
}

type captureListResponse struct {
	Captures []captureResponse `json:"captures"`
}

type sweepResponse struct {
	RunID    string `json:"runId"`
	Uploaded int    `json:"uploaded"`
	Failed   int    `json:"failed"`
}

func NewCaptureHandler(captures service.CaptureService, uploads service.UploadService) *CaptureHandler {
	return &CaptureHandler{captures: captures, uploads: uploads}
}

func (h *CaptureHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/captures", h.List)
	g.POST("/captures", h.Create)
	g.POST("/captures/sweep", h.Sweep)
	g.GET("/captures/:id", h.GetByID)
	g.GET("/captures/:id/image", h.Image)
	g.DELETE("/captures/:id", h.Delete)
}

// List returns stored captures, newest first. Supports ?status=, ?limit=
// and ?offset= query parameters.
func (h *CaptureHandler) List(c echo.Context) error {
	filter := repository.CaptureListFilter{Limit: 50}

	if status := c.QueryParam("status"); status != "" {
		if !isValidStatus(status) {
			return Error(c, http.StatusBadRequest, "invalid status filter")
		}
		filter.Status = &status
	}
	if limit, err := parseIntQuery(c, "limit"); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := parseIntQuery(c, "offset"); err == nil && offset > 0 {
		filter.Offset = offset
	}

	captures, err := h.captures.List(c.Request().Context(), filter)
	if err != nil {
		return writeServiceError(c, err)
	}

	resp := captureListResponse{Captures: make([]captureResponse, 0, len(captures))}
	for _, capture := range captures {
		resp.Captures = append(resp.Captures, toCaptureResponse(capture))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create triggers a manual shutter press and stores the frame. The
// pending upload is swept in the background so the response does not
// wait on retries.
func (h *CaptureHandler) Create(c echo.Context) error {
	capture, err := h.captures.CaptureNow(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_, _ = h.uploads.Sweep(ctx)
	}()

	return c.JSON(http.StatusCreated, toCaptureResponse(capture))
}

// Sweep uploads all pending captures immediately.
func (h *CaptureHandler) Sweep(c echo.Context) error {
	result, err := h.uploads.Sweep(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sweepResponse{
		RunID:    result.RunID,
		Uploaded: result.Uploaded,
		Failed:   result.Failed,
	})
}

func (h *CaptureHandler) GetByID(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid capture id")
	}

	capture, err := h.captures.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toCaptureResponse(capture))
}

// Image streams the stored JPEG for a capture.
func (h *CaptureHandler) Image(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid capture id")
	}

	capture, err := h.captures.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.File(h.captures.FramePath(capture.Filename))
}

func (h *CaptureHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid capture id")
	}

	if err := h.captures.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func toCaptureResponse(capture model.Capture) captureResponse {
	resp := captureResponse{
		ID:             capture.ID,
		Filename:       capture.Filename,
		SizeBytes:      capture.SizeBytes,
		SHA256:         capture.SHA256,
		Source:         capture.Source,
		TakenAt:        capture.TakenAt.UTC().Format(time.RFC3339),
		UploadStatus:   capture.UploadStatus,
		UploadAttempts: capture.UploadAttempts,
		LastError:      capture.LastError,
		Notified:       capture.Notified,
	}
	if capture.UploadedAt != nil {
		uploaded := capture.UploadedAt.UTC().Format(time.RFC3339)
		resp.UploadedAt = &uploaded
	}
	return resp
}
