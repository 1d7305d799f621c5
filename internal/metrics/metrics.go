// Package metrics exposes Prometheus instrumentation for the writer pipeline.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gozcu/camera-event-writer/internal/log"
)

var (
	// Stream consumption metrics
	RecordsReadTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camera_writer_records_read_total",
			Help: "Total number of raw records read from the stream",
		},
	)

	RecordsAckedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camera_writer_records_acked_total",
			Help: "Total number of records acknowledged after persistence",
		},
	)

	AckFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camera_writer_ack_failures_total",
			Help: "Total number of failed acknowledgment calls",
		},
	)

	PendingRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "camera_writer_pending_records",
			Help: "Records delivered to this consumer but not yet acknowledged",
		},
	)

	// Transformation metrics
	EventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camera_writer_events_total",
			Help: "Total number of validated events produced",
		},
	)

	DetectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camera_writer_detections_total",
			Help: "Total number of detections carried by validated events",
		},
	)

	RecordsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camera_writer_records_dropped_total",
			Help: "Total number of records dropped during transformation",
		},
	)

	// Persistence metrics
	BatchesLoadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camera_writer_batches_loaded_total",
			Help: "Total number of batches persisted to the store",
		},
	)

	LoadErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "camera_writer_load_errors_total",
			Help: "Total number of failed bulk load attempts",
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "camera_writer_batch_duration_seconds",
			Help:    "Duration of one read-transform-load-ack cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Serve starts the metrics HTTP endpoint on addr. The server runs until
// Shutdown is called on the returned handle.
func Serve(addr string, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics endpoint listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics endpoint failed: %v", err)
		}
	}()

	return srv
}

// Shutdown stops the metrics endpoint, waiting up to the given timeout.
func Shutdown(srv *http.Server, timeout time.Duration, logger *log.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Metrics endpoint shutdown: %v", err)
	}
}
