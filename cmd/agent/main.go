package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"lapsecam/internal/camera"
	"lapsecam/internal/config"
	"lapsecam/internal/db"
	"lapsecam/internal/feedapi"
	"lapsecam/internal/handler"
	transport "lapsecam/internal/http"
	"lapsecam/internal/logger"
	"lapsecam/internal/mailer"
	"lapsecam/internal/network"
	"lapsecam/internal/repository"
	"lapsecam/internal/scheduler"
	"lapsecam/internal/service"
	"lapsecam/internal/snowflake"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := snowflake.Init(1); err != nil {
		log.Fatalf("init snowflake: %v", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dbConn.Close()

	captureRepo := repository.NewCaptureRepository(dbConn)
	settingsRepo := repository.NewSettingsRepository(dbConn)

	clientFactory := network.NewClientFactory(cfg.ProxyURL)

	var source camera.Source
	switch cfg.Source {
	case config.SourceCommand:
		source = camera.NewCommandSource(cfg.CaptureCommand)
	case config.SourceSpool:
		source = nil // frames arrive through the spool watcher
	default:
		source = camera.NewStubSource()
	}

	captureService := service.NewCaptureService(cfg.DataDir, source, captureRepo)

	var mail mailer.Mailer
	if cfg.SMTPHost != "" && cfg.MailTo != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.MailTo)
	}
	notifyService := service.NewNotifyService(mail, captureRepo)

	connectivity := service.NewConnectivityService(clientFactory, "")
	connectivity.Start()
	defer connectivity.Stop()

	feedClient := feedapi.New(cfg.FeedBaseURL, cfg.FeedUsername, cfg.FeedKey, clientFactory)
	uploadService := service.NewUploadService(
		captureRepo,
		feedClient,
		captureService.FramePath,
		connectivity,
		notifyService,
		cfg.CameraFeed,
		cfg.TriggerFeed,
		30,
		cfg.UploadDisabled,
	)

	retentionService := service.NewRetentionService(captureRepo, captureService.FramePath, cfg.RetentionAge, cfg.RetentionMax)

	sched := scheduler.New(captureService, uploadService, retentionService, loadInterval(settingsRepo, cfg.Interval), cfg.Source != config.SourceSpool)
	sched.Start()
	defer sched.Stop()

	var watcher *camera.SpoolWatcher
	if cfg.Source == config.SourceSpool {
		watcher = camera.NewSpoolWatcher(cfg.SpoolDir, func(ctx context.Context, frame camera.Frame) error {
			_, err := captureService.Ingest(ctx, frame)
			return err
		})
		if err := watcher.Start(context.Background()); err != nil {
			log.Fatalf("start spool watcher: %v", err)
		}
		defer watcher.Stop()
	}

	captureHandler := handler.NewCaptureHandler(captureService, uploadService)
	timelapseHandler := handler.NewTimelapseHandler(sched)
	settingsHandler := handler.NewSettingsHandler(settingsRepo, sched)
	statusHandler := handler.NewStatusHandler(captureService, uploadService, connectivity, sched)

	router := transport.NewRouter(captureHandler, timelapseHandler, settingsHandler, statusHandler, cfg.APIToken)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down", "module", "main", "action", "shutdown", "resource", "server", "result", "ok")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := router.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", "module", "main", "action", "shutdown", "resource", "server", "result", "failed", "error", err)
		}
	}()

	logger.Info("agent starting", "module", "main", "action", "start", "resource", "server", "result", "ok", "addr", cfg.Addr, "source", cfg.Source)
	if err := router.Start(cfg.Addr); err != nil {
		logger.Info("server stopped", "module", "main", "action", "stop", "resource", "server", "result", "ok", "error", err)
	}
}

// loadInterval prefers the cadence persisted through the settings API over
// the environment default.
func loadInterval(settings repository.SettingsRepository, fallback time.Duration) time.Duration {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := settings.Get(ctx, handler.IntervalSettingKey)
	if err != nil || raw == "" {
		return fallback
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	interval := time.Duration(seconds) * time.Second
	if !scheduler.ValidInterval(interval) {
		return fallback
	}
	return interval
}
