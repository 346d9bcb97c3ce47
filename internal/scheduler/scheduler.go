package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"lapsecam/internal/logger"
	"lapsecam/internal/service"
)

// Rates are the selectable time-lapse cadences, 5 seconds up to 24 hours.
var Rates = []time.Duration{
	5 * time.Second,
	10 * time.Second,
	20 * time.Second,
	30 * time.Second,
	time.Minute,
	90 * time.Second,
	2 * time.Minute,
	3 * time.Minute,
	4 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	2 * time.Hour,
	4 * time.Hour,
	8 * time.Hour,
	16 * time.Hour,
	24 * time.Hour,
}

// ValidInterval reports whether d is one of the preset rates.
func ValidInterval(d time.Duration) bool {
	for _, r := range Rates {
		if r == d {
			return true
		}
	}
	return false
}

var ErrInvalidInterval = errors.New("interval is not a preset rate")

// Scheduler drives the time-lapse loop: capture a frame, sweep pending
// uploads, prune aged captures. Capture is skipped for push sources
// (spool), which deliver frames through the watcher instead.
type Scheduler struct {
	captures      service.CaptureService
	uploads       service.UploadService
	retention     service.RetentionService
	captureOnTick bool

	mu         sync.Mutex
	interval   time.Duration
	running    bool
	stopCh     chan struct{}
	reloadCh   chan struct{}
	cancelFunc context.CancelFunc // cancels the current tick
	wg         sync.WaitGroup
}

func New(captures service.CaptureService, uploads service.UploadService, retention service.RetentionService, interval time.Duration, captureOnTick bool) *Scheduler {
	return &Scheduler{
		captures:      captures,
		uploads:       uploads,
		retention:     retention,
		captureOnTick: captureOnTick,
		interval:      interval,
	}
}

// Start begins the loop. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.reloadCh = make(chan struct{}, 1)
	interval := s.interval
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "action", "tick", "resource", "timelapse", "result", "ok", "interval_ms", interval.Milliseconds())
}

// Stop cancels the in-flight tick and halts the loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	logger.Info("scheduler stopped", "module", "scheduler", "action", "tick", "resource", "timelapse", "result", "ok")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval switches the cadence. The next tick is rescheduled
// immediately when the loop is running.
func (s *Scheduler) SetInterval(d time.Duration) error {
	if !ValidInterval(d) {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	s.interval = d
	running := s.running
	reload := s.reloadCh
	s.mu.Unlock()

	if running {
		select {
		case reload <- struct{}{}:
		default:
		}
	}

	logger.Info("interval updated", "module", "scheduler", "action", "configure", "resource", "timelapse", "result", "ok", "interval_ms", d.Milliseconds())
	return nil
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.mu.Lock()
	stopCh := s.stopCh
	reloadCh := s.reloadCh
	s.mu.Unlock()

	// Run immediately on start
	s.tick()

	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-reloadCh:
			ticker.Reset(s.Interval())
		case <-stopCh:
			return
		}
	}
}

func (s *Scheduler) tick() {
	// A tick should never outlive its interval.
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval())

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	if s.captureOnTick {
		if _, err := s.captures.CaptureNow(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("scheduled capture failed", "module", "scheduler", "action", "capture", "resource", "timelapse", "result", "failed", "error", err)
		}
	}

	if _, err := s.uploads.Sweep(ctx); err != nil {
		switch {
		case errors.Is(err, service.ErrUploadsDisabled), errors.Is(err, service.ErrSweepInProgress):
			// expected in capture-only mode or when a manual sweep runs
		case errors.Is(err, service.ErrOffline):
			logger.Warn("sweep skipped while offline", "module", "scheduler", "action", "upload", "resource", "timelapse", "result", "skipped")
		case ctx.Err() != nil:
			return
		default:
			logger.Error("scheduled sweep failed", "module", "scheduler", "action", "upload", "resource", "timelapse", "result", "failed", "error", err)
		}
	}

	if s.retention != nil {
		if _, err := s.retention.Prune(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scheduled prune failed", "module", "scheduler", "action", "prune", "resource", "timelapse", "result", "failed", "error", err)
		}
	}
}
