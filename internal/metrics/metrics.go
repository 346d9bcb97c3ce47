// Package metrics exposes the agent's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CapturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lapsecam_captures_total",
		Help: "Frames captured, by source.",
	}, []string{"source"})

	CaptureFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lapsecam_capture_failures_total",
		Help: "Capture attempts that produced no stored frame.",
	})

	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lapsecam_uploads_total",
		Help: "Frames successfully uploaded to the feed API.",
	})

	UploadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lapsecam_upload_failures_total",
		Help: "Upload sweeps that exhausted their retry budget for a frame.",
	})

	UploadAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lapsecam_upload_attempts_total",
		Help: "Individual upload attempts, including retries.",
	})

	NotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lapsecam_notifications_total",
		Help: "Email notifications sent.",
	})

	PrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lapsecam_pruned_total",
		Help: "Captures removed by retention.",
	})

	Online = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lapsecam_online",
		Help: "1 while the connectivity probe succeeds, 0 otherwise.",
	})
)
