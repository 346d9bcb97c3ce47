package service

import (
	"context"
	"fmt"
	"time"

	"lapsecam/internal/logger"
	"lapsecam/internal/mailer"
	"lapsecam/internal/metrics"
	"lapsecam/internal/model"
	"lapsecam/internal/repository"
)

// NotifyService emails the operator after a successful upload. When no
// mailer is configured the trigger feed remains the only fan-out, matching
// the original device setup where email was wired on the feed side.
type NotifyService interface {
	Notifier
}

type notifyService struct {
	mail     mailer.Mailer // nil when SMTP is not configured
	captures repository.CaptureRepository
}

func NewNotifyService(mail mailer.Mailer, captures repository.CaptureRepository) NotifyService {
	return &notifyService{mail: mail, captures: captures}
}

func (s *notifyService) CaptureUploaded(ctx context.Context, capture model.Capture) error {
	if s.mail == nil {
		return nil
	}
	if capture.Notified {
		return nil
	}

	subject := fmt.Sprintf("lapsecam: frame %d uploaded", capture.ID)
	body := fmt.Sprintf(
		"A new frame was captured and uploaded.\n\nCapture:   %d\nSource:    %s\nTaken at:  %s\nSize:      %d bytes\nAttempts:  %d\n",
		capture.ID,
		capture.Source,
		capture.TakenAt.UTC().Format(time.RFC3339),
		capture.SizeBytes,
		capture.UploadAttempts,
	)

	if err := s.mail.Send(ctx, subject, body); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	metrics.NotificationsTotal.Inc()
	if err := s.captures.MarkNotified(ctx, capture.ID); err != nil {
		logger.Warn("mark notified failed", "module", "service", "action", "notify", "resource", "capture", "result", "failed", "capture_id", capture.ID, "error", err)
	}

	logger.Info("notification sent", "module", "service", "action", "notify", "resource", "capture", "result", "ok", "capture_id", capture.ID)
	return nil
}
