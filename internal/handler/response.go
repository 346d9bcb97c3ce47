package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lapsecam/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrSweepInProgress):
		return c.JSON(http.StatusConflict, errorResponse{Error: "sweep already running"})
	case errors.Is(err, service.ErrOffline):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "network offline"})
	case errors.Is(err, service.ErrUploadsDisabled):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "uploads disabled"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// Error returns a JSON error response with the given status and message
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}
