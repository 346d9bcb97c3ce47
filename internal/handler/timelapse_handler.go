package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lapsecam/internal/scheduler"
)

type TimelapseHandler struct {
	scheduler *scheduler.Scheduler
}

type timelapseStateResponse struct {
	Running         bool  `json:"running"`
	IntervalSeconds int64 `json:"intervalSeconds"`
}

func NewTimelapseHandler(sched *scheduler.Scheduler) *TimelapseHandler {
	return &TimelapseHandler{scheduler: sched}
}

func (h *TimelapseHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/timelapse", h.State)
	g.POST("/timelapse/start", h.Start)
	g.POST("/timelapse/stop", h.Stop)
}

func (h *TimelapseHandler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, h.state())
}

// Start begins the time-lapse loop. Idempotent.
func (h *TimelapseHandler) Start(c echo.Context) error {
	h.scheduler.Start()
	return c.JSON(http.StatusOK, h.state())
}

// Stop halts the time-lapse loop. Idempotent.
func (h *TimelapseHandler) Stop(c echo.Context) error {
	h.scheduler.Stop()
	return c.JSON(http.StatusOK, h.state())
}

func (h *TimelapseHandler) state() timelapseStateResponse {
	return timelapseStateResponse{
		Running:         h.scheduler.IsRunning(),
		IntervalSeconds: int64(h.scheduler.Interval().Seconds()),
	}
}
