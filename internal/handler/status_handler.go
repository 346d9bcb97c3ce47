package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lapsecam/internal/scheduler"
	"lapsecam/internal/service"
)

type StatusHandler struct {
	captures  service.CaptureService
	uploads   service.UploadService
	online    service.OnlineChecker
	scheduler *scheduler.Scheduler
}

type statusResponse struct {
	Online          bool           `json:"online"`
	TimelapseActive bool           `json:"timelapseActive"`
	IntervalSeconds int64          `json:"intervalSeconds"`
	Sweeping        bool           `json:"sweeping"`
	Captures        map[string]int `json:"captures"`
}

func NewStatusHandler(captures service.CaptureService, uploads service.UploadService, online service.OnlineChecker, sched *scheduler.Scheduler) *StatusHandler {
	return &StatusHandler{captures: captures, uploads: uploads, online: online, scheduler: sched}
}

func (h *StatusHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/status", h.GetStatus)
}

// GetStatus reports connectivity, the time-lapse loop state and capture
// counts by upload status.
func (h *StatusHandler) GetStatus(c echo.Context) error {
	counts, err := h.captures.GetStatusCounts(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, statusResponse{
		Online:          h.online.IsOnline(),
		TimelapseActive: h.scheduler.IsRunning(),
		IntervalSeconds: int64(h.scheduler.Interval().Seconds()),
		Sweeping:        h.uploads.IsSweeping(),
		Captures:        counts,
	})
}
