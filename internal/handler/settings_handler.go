package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"lapsecam/internal/logger"
	"lapsecam/internal/repository"
	"lapsecam/internal/scheduler"
)

// IntervalSettingKey is the settings row holding the persisted cadence.
const IntervalSettingKey = "timelapse.interval"

type SettingsHandler struct {
	settings  repository.SettingsRepository
	scheduler *scheduler.Scheduler
}

type intervalRequest struct {
	IntervalSeconds int64 `json:"intervalSeconds"`
}

type intervalResponse struct {
	IntervalSeconds int64   `json:"intervalSeconds"`
	Rates           []int64 `json:"rates"`
}

func NewSettingsHandler(settings repository.SettingsRepository, sched *scheduler.Scheduler) *SettingsHandler {
	return &SettingsHandler{settings: settings, scheduler: sched}
}

func (h *SettingsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/settings/interval", h.GetInterval)
	g.PUT("/settings/interval", h.UpdateInterval)
}

// GetInterval returns the active cadence and the selectable presets.
func (h *SettingsHandler) GetInterval(c echo.Context) error {
	return c.JSON(http.StatusOK, h.intervalResponse())
}

// UpdateInterval switches the cadence to one of the presets and persists
// it so a restart keeps the chosen rate.
func (h *SettingsHandler) UpdateInterval(c echo.Context) error {
	var req intervalRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	interval := time.Duration(req.IntervalSeconds) * time.Second
	if err := h.scheduler.SetInterval(interval); err != nil {
		return Error(c, http.StatusBadRequest, "interval is not a preset rate")
	}

	if err := h.settings.Set(c.Request().Context(), IntervalSettingKey, strconv.FormatInt(req.IntervalSeconds, 10)); err != nil {
		logger.Warn("interval persist failed", "module", "handler", "action", "configure", "resource", "settings", "result", "failed", "error", err)
	}

	return c.JSON(http.StatusOK, h.intervalResponse())
}

func (h *SettingsHandler) intervalResponse() intervalResponse {
	rates := make([]int64, 0, len(scheduler.Rates))
	for _, r := range scheduler.Rates {
		rates = append(rates, int64(r.Seconds()))
	}
	return intervalResponse{
		IntervalSeconds: int64(h.scheduler.Interval().Seconds()),
		Rates:           rates,
	}
}
