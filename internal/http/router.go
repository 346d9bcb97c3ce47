package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lapsecam/internal/handler"
)

func NewRouter(
	captureHandler *handler.CaptureHandler,
	timelapseHandler *handler.TimelapseHandler,
	settingsHandler *handler.SettingsHandler,
	statusHandler *handler.StatusHandler,
	apiToken string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api", TokenAuthMiddleware(apiToken))
	captureHandler.RegisterRoutes(api)
	timelapseHandler.RegisterRoutes(api)
	settingsHandler.RegisterRoutes(api)
	statusHandler.RegisterRoutes(api)

	return e
}
