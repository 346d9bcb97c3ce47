package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"lapsecam/internal/camera"
	"lapsecam/internal/logger"
	"lapsecam/internal/metrics"
	"lapsecam/internal/model"
	"lapsecam/internal/repository"
)

const frameDirName = "frames"

type CaptureService interface {
	// CaptureNow grabs a frame from the source and stores it.
	CaptureNow(ctx context.Context) (model.Capture, error)
	// Ingest stores an externally produced frame (spool drop-ins).
	Ingest(ctx context.Context, frame camera.Frame) (model.Capture, error)
	GetByID(ctx context.Context, id int64) (model.Capture, error)
	List(ctx context.Context, filter repository.CaptureListFilter) ([]model.Capture, error)
	Delete(ctx context.Context, id int64) error
	GetStatusCounts(ctx context.Context) (map[string]int, error)
	// FramePath returns the on-disk location of a stored frame.
	FramePath(filename string) string
}

type captureService struct {
	dataDir  string
	source   camera.Source
	captures repository.CaptureRepository
}

func NewCaptureService(dataDir string, source camera.Source, captures repository.CaptureRepository) CaptureService {
	return &captureService{
		dataDir:  dataDir,
		source:   source,
		captures: captures,
	}
}

func (s *captureService) CaptureNow(ctx context.Context) (model.Capture, error) {
	if s.source == nil {
		// Spool mode has no pull source; frames arrive via Ingest.
		return model.Capture{}, fmt.Errorf("%w: no capture source configured", ErrInvalid)
	}
	frame, err := s.source.Capture(ctx)
	if err != nil {
		metrics.CaptureFailuresTotal.Inc()
		return model.Capture{}, fmt.Errorf("capture frame: %w", err)
	}
	return s.Ingest(ctx, frame)
}

func (s *captureService) Ingest(ctx context.Context, frame camera.Frame) (model.Capture, error) {
	if len(frame.Bytes) == 0 {
		metrics.CaptureFailuresTotal.Inc()
		return model.Capture{}, camera.ErrEmptyFrame
	}

	sum := sha256.Sum256(frame.Bytes)
	digest := hex.EncodeToString(sum[:])

	// A spool file may fire both Create and Write events; index it once.
	existing, err := s.captures.FindBySHA256(ctx, digest)
	if err != nil {
		return model.Capture{}, fmt.Errorf("dedupe lookup: %w", err)
	}
	if existing != nil {
		logger.Debug("duplicate frame skipped", "module", "service", "action", "ingest", "resource", "capture", "result", "ok", "capture_id", existing.ID)
		return *existing, nil
	}

	filename := frame.TakenAt.UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8] + ".jpg"
	fullPath := s.FramePath(filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return model.Capture{}, fmt.Errorf("create frames dir: %w", err)
	}
	if err := os.WriteFile(fullPath, frame.Bytes, 0o644); err != nil {
		metrics.CaptureFailuresTotal.Inc()
		return model.Capture{}, fmt.Errorf("write frame: %w", err)
	}

	capture, err := s.captures.Create(ctx, model.Capture{
		Filename:  filename,
		SizeBytes: int64(len(frame.Bytes)),
		SHA256:    digest,
		Source:    frame.Origin,
		TakenAt:   frame.TakenAt,
	})
	if err != nil {
		// Keep disk and index consistent.
		_ = os.Remove(fullPath)
		return model.Capture{}, fmt.Errorf("index capture: %w", err)
	}

	metrics.CapturesTotal.WithLabelValues(frame.Origin).Inc()
	logger.Info("frame captured", "module", "service", "action", "ingest", "resource", "capture", "result", "ok", "capture_id", capture.ID, "source", frame.Origin, "size_bytes", capture.SizeBytes)
	return capture, nil
}

func (s *captureService) GetByID(ctx context.Context, id int64) (model.Capture, error) {
	capture, err := s.captures.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Capture{}, ErrNotFound
		}
		return model.Capture{}, err
	}
	return capture, nil
}

func (s *captureService) List(ctx context.Context, filter repository.CaptureListFilter) ([]model.Capture, error) {
	if filter.Status != nil {
		switch *filter.Status {
		case model.UploadPending, model.UploadUploaded, model.UploadFailed:
		default:
			return nil, ErrInvalid
		}
	}
	return s.captures.List(ctx, filter)
}

func (s *captureService) Delete(ctx context.Context, id int64) error {
	capture, err := s.captures.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := s.captures.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := os.Remove(s.FramePath(capture.Filename)); err != nil && !os.IsNotExist(err) {
		logger.Warn("frame file removal failed", "module", "service", "action", "delete", "resource", "capture", "result", "failed", "capture_id", id, "error", err)
	}

	logger.Info("capture deleted", "module", "service", "action", "delete", "resource", "capture", "result", "ok", "capture_id", id)
	return nil
}

func (s *captureService) GetStatusCounts(ctx context.Context) (map[string]int, error) {
	counts, err := s.captures.GetStatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	result := map[string]int{
		model.UploadPending:  0,
		model.UploadUploaded: 0,
		model.UploadFailed:   0,
	}
	for _, sc := range counts {
		result[sc.Status] = sc.Count
	}
	return result, nil
}

func (s *captureService) FramePath(filename string) string {
	// Clean to prevent path traversal
	return filepath.Join(s.dataDir, frameDirName, filepath.Clean(filename))
}
