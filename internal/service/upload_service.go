package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"lapsecam/internal/feedapi"
	"lapsecam/internal/logger"
	"lapsecam/internal/metrics"
	"lapsecam/internal/model"
	"lapsecam/internal/repository"
)

// Retry parameters match the device script: up to 5 attempts per sweep,
// backoff doubling from 2s capped at 60s. The cumulative budget stops a
// poisoned frame from being retried forever across sweeps.
const (
	attemptsPerSweep  = 5
	totalAttemptLimit = 25
	backoffStart      = 2 * time.Second
	backoffCap        = 60 * time.Second
)

// OnlineChecker reports whether the network watchdog considers us online.
type OnlineChecker interface {
	IsOnline() bool
}

// Notifier is told about each successfully uploaded capture.
type Notifier interface {
	CaptureUploaded(ctx context.Context, capture model.Capture) error
}

type SweepResult struct {
	RunID    string
	Uploaded int
	Failed   int
	Skipped  int
}

type UploadService interface {
	// Sweep uploads all pending captures, oldest first.
	Sweep(ctx context.Context) (SweepResult, error)
	IsSweeping() bool
}

type uploadService struct {
	captures    repository.CaptureRepository
	feeds       feedapi.Client
	framePath   func(filename string) string
	online      OnlineChecker
	notifier    Notifier
	limiter     *rate.Limiter
	cameraFeed  string
	triggerFeed string
	disabled    bool

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	isSweeping bool
	ensured    bool
}

func NewUploadService(
	captures repository.CaptureRepository,
	feeds feedapi.Client,
	framePath func(filename string) string,
	online OnlineChecker,
	notifier Notifier,
	cameraFeed, triggerFeed string,
	uploadsPerMinute int,
	disabled bool,
) UploadService {
	if uploadsPerMinute <= 0 {
		uploadsPerMinute = 30
	}
	return &uploadService{
		captures:    captures,
		feeds:       feeds,
		framePath:   framePath,
		online:      online,
		notifier:    notifier,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(uploadsPerMinute)), 1),
		cameraFeed:  cameraFeed,
		triggerFeed: triggerFeed,
		disabled:    disabled,
		sleep:       sleepCtx,
	}
}

func (s *uploadService) IsSweeping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSweeping
}

func (s *uploadService) Sweep(ctx context.Context) (SweepResult, error) {
	if s.disabled {
		return SweepResult{}, ErrUploadsDisabled
	}
	if s.online != nil && !s.online.IsOnline() {
		return SweepResult{}, ErrOffline
	}

	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		return SweepResult{}, ErrSweepInProgress
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	result := SweepResult{RunID: uuid.NewString()}

	if err := s.ensureFeeds(ctx); err != nil {
		return result, fmt.Errorf("ensure feeds: %w", err)
	}

	pending, err := s.captures.ListPending(ctx, totalAttemptLimit)
	if err != nil {
		return result, err
	}

	for _, capture := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := s.uploadOne(ctx, capture); err != nil {
			result.Failed++
			logger.Error("upload failed", "module", "service", "action", "upload", "resource", "capture", "result", "failed", "run_id", result.RunID, "capture_id", capture.ID, "error", err)
			continue
		}
		result.Uploaded++
	}

	if result.Uploaded > 0 || result.Failed > 0 {
		logger.Info("upload sweep completed", "module", "service", "action", "upload", "resource", "capture", "result", "ok", "run_id", result.RunID, "uploaded", result.Uploaded, "failed", result.Failed)
	}
	return result, nil
}

// ensureFeeds creates the camera and trigger feeds on first use, the same
// get-then-create the device script does at boot.
func (s *uploadService) ensureFeeds(ctx context.Context) error {
	s.mu.Lock()
	ensured := s.ensured
	s.mu.Unlock()
	if ensured {
		return nil
	}

	if _, err := s.feeds.EnsureFeed(ctx, s.cameraFeed); err != nil {
		return err
	}
	if _, err := s.feeds.EnsureFeed(ctx, s.triggerFeed); err != nil {
		return err
	}

	s.mu.Lock()
	s.ensured = true
	s.mu.Unlock()
	return nil
}

func (s *uploadService) uploadOne(ctx context.Context, capture model.Capture) error {
	data, err := os.ReadFile(s.framePath(capture.Filename))
	if err != nil {
		markErr := s.captures.MarkFailed(ctx, capture.ID, totalAttemptLimit, "frame file missing")
		if markErr != nil {
			logger.Warn("mark failed errored", "module", "service", "action", "upload", "resource", "capture", "result", "failed", "capture_id", capture.ID, "error", markErr)
		}
		return fmt.Errorf("read frame: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)

	attempts := capture.UploadAttempts
	delay := backoffStart
	var lastErr error

	for try := 0; try < attemptsPerSweep && attempts < totalAttemptLimit; try++ {
		if try > 0 {
			logger.Debug("upload retrying", "module", "service", "action", "upload", "resource", "capture", "result", "retry", "capture_id", capture.ID, "attempt", attempts+1)
			if err := s.sleep(ctx, delay); err != nil {
				break
			}
			delay = minDuration(delay*2, backoffCap)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}

		attempts++
		metrics.UploadAttemptsTotal.Inc()

		if err := s.feeds.SendData(ctx, s.cameraFeed, encoded); err != nil {
			lastErr = err
			continue
		}

		// Trigger datum fans out to email downstream.
		if err := s.feeds.SendData(ctx, s.triggerFeed, "1"); err != nil {
			logger.Warn("trigger send failed", "module", "service", "action", "upload", "resource", "feed", "result", "failed", "capture_id", capture.ID, "error", err)
		}

		if err := s.captures.MarkUploaded(ctx, capture.ID, attempts); err != nil {
			return fmt.Errorf("mark uploaded: %w", err)
		}
		metrics.UploadsTotal.Inc()
		logger.Info("frame uploaded", "module", "service", "action", "upload", "resource", "capture", "result", "ok", "capture_id", capture.ID, "attempts", attempts)

		if s.notifier != nil {
			capture.UploadAttempts = attempts
			if err := s.notifier.CaptureUploaded(ctx, capture); err != nil {
				logger.Warn("notification failed", "module", "service", "action", "notify", "resource", "capture", "result", "failed", "capture_id", capture.ID, "error", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("attempt budget exhausted after %d attempts", attempts)
	}
	metrics.UploadFailuresTotal.Inc()
	if err := s.captures.MarkFailed(ctx, capture.ID, attempts, lastErr.Error()); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
