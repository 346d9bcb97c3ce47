package service

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"lapsecam/internal/logger"
	"lapsecam/internal/metrics"
	"lapsecam/internal/model"
	"lapsecam/internal/repository"
)

const maxConcurrentPrunes = 4

// RetentionService removes uploaded captures that have aged out or exceed
// the configured count. Pending and failed captures are never pruned.
type RetentionService interface {
	Prune(ctx context.Context) (int, error)
}

type retentionService struct {
	captures  repository.CaptureRepository
	framePath func(filename string) string
	maxAge    time.Duration // 0 disables age pruning
	maxCount  int           // 0 disables count pruning
}

func NewRetentionService(captures repository.CaptureRepository, framePath func(filename string) string, maxAge time.Duration, maxCount int) RetentionService {
	return &retentionService{
		captures:  captures,
		framePath: framePath,
		maxAge:    maxAge,
		maxCount:  maxCount,
	}
}

func (s *retentionService) Prune(ctx context.Context) (int, error) {
	victims := map[int64]model.Capture{}

	if s.maxAge > 0 {
		aged, err := s.captures.ListUploadedBefore(ctx, time.Now().UTC().Add(-s.maxAge))
		if err != nil {
			return 0, err
		}
		for _, c := range aged {
			victims[c.ID] = c
		}
	}

	if s.maxCount > 0 {
		excess, err := s.captures.ListUploadedBeyond(ctx, s.maxCount)
		if err != nil {
			return 0, err
		}
		for _, c := range excess {
			victims[c.ID] = c
		}
	}

	if len(victims) == 0 {
		return 0, nil
	}

	var pruned atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPrunes)

	for _, capture := range victims {
		capture := capture
		g.Go(func() error {
			if err := s.captures.Delete(gctx, capture.ID); err != nil {
				logger.Warn("prune delete failed", "module", "service", "action", "prune", "resource", "capture", "result", "failed", "capture_id", capture.ID, "error", err)
				return nil // keep pruning the rest
			}
			if err := os.Remove(s.framePath(capture.Filename)); err != nil && !os.IsNotExist(err) {
				logger.Warn("prune file removal failed", "module", "service", "action", "prune", "resource", "capture", "result", "failed", "capture_id", capture.ID, "error", err)
			}
			pruned.Add(1)
			metrics.PrunedTotal.Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(pruned.Load()), err
	}

	count := int(pruned.Load())
	if count > 0 {
		logger.Info("retention pruned captures", "module", "service", "action", "prune", "resource", "capture", "result", "ok", "count", count)
	}
	return count, nil
}
