// Package writer orchestrates the read-transform-load-acknowledge pipeline:
// one worker pulls record batches from the stream, turns them into validated
// events, bulk-loads them into the store, and acknowledges only what was
// persisted.
package writer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gozcu/camera-event-writer/internal/config"
	"github.com/gozcu/camera-event-writer/internal/event"
	"github.com/gozcu/camera-event-writer/internal/log"
	"github.com/gozcu/camera-event-writer/internal/message"
	"github.com/gozcu/camera-event-writer/internal/metrics"
	"github.com/gozcu/camera-event-writer/internal/retry"
)

// ErrAlreadyRunning is returned by Start when the writer is not stopped.
var ErrAlreadyRunning = errors.New("writer already running")

// Consumer is the stream side of the pipeline.
type Consumer interface {
	Initialize(ctx context.Context) error
	Read(ctx context.Context, count int64, block time.Duration) (message.Batch, error)
	Acknowledge(ctx context.Context, ids []string) (int64, error)
	PendingInfo(ctx context.Context) (message.PendingInfo, error)
}

// Transformer converts raw batches into validated events.
type Transformer interface {
	Transform(batch message.Batch) []event.CameraEvent
}

// Loader is the store side of the pipeline.
type Loader interface {
	BulkInsert(ctx context.Context, events []event.CameraEvent) (int64, error)
}

// Lifecycle states
const (
	stateStopped int32 = iota
	stateStarting
	stateRunning
	stateStopping
)

func stateName(s int32) string {
	switch s {
	case stateStopped:
		return "stopped"
	case stateStarting:
		return "starting"
	case stateRunning:
		return "running"
	case stateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Status is a read-only snapshot of the writer.
type Status struct {
	Running      bool
	State        string
	BatchSize    int
	BatchTimeout time.Duration
	MaxRetries   int
	Pending      message.PendingInfo
}

// batchResult carries the counters of one completed batch attempt.
type batchResult struct {
	records    int
	events     int
	detections int
	acked      int64
	duration   time.Duration
}

// Writer is the pipeline orchestrator. A single goroutine runs the batch
// loop; Start and Stop drive the state machine from outside.
type Writer struct {
	consumer    Consumer
	transformer Transformer
	loader      Loader

	processing      config.ProcessingConfig
	shutdownTimeout time.Duration
	policy          retry.Policy

	state  atomic.Int32
	stopCh chan struct{}
	doneCh chan struct{}

	// Cumulative counters, owned by the run goroutine
	totalRecords    uint64
	totalEvents     uint64
	totalDetections uint64
	totalBatches    uint64

	log *log.Logger
}

// New creates a writer wired to its collaborators. The retry policy follows
// the configured ceiling with 1s base delay doubling per attempt.
func New(consumer Consumer, transformer Transformer, loader Loader, cfg *config.Config, logger *log.Logger) *Writer {
	w := &Writer{
		consumer:        consumer,
		transformer:     transformer,
		loader:          loader,
		processing:      cfg.Processing,
		shutdownTimeout: cfg.Pipeline.ShutdownTimeout,
		policy:          retry.Default(cfg.Processing.MaxRetries),
		log:             logger,
	}
	w.policy.OnFailure = func(attempt int, delay time.Duration, err error) {
		w.log.Warn("Batch attempt %d/%d failed: %v (backing off %s)",
			attempt+1, w.processing.MaxRetries, err, delay)
	}
	return w
}

// Start transitions Stopped -> Starting -> Running and launches the batch
// loop. Initialization failure aborts the startup and leaves the writer
// stopped.
func (w *Writer) Start(ctx context.Context) error {
	if !w.state.CompareAndSwap(stateStopped, stateStarting) {
		return fmt.Errorf("%w: state is %s", ErrAlreadyRunning, stateName(w.state.Load()))
	}

	if err := w.consumer.Initialize(ctx); err != nil {
		w.state.Store(stateStopped)
		return fmt.Errorf("initialize consumer: %w", err)
	}

	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.state.Store(stateRunning)

	w.log.Info("Writer started (batch_size=%d, batch_timeout=%s, max_retries=%d)",
		w.processing.BatchSize, w.processing.BatchTimeout, w.processing.MaxRetries)

	go w.run(ctx)
	return nil
}

// Stop signals the loop, waits for the in-flight batch attempt to finish
// (bounded by the shutdown timeout) and marks the writer stopped. Stopping a
// writer that is not running is a no-op.
func (w *Writer) Stop() {
	if !w.state.CompareAndSwap(stateRunning, stateStopping) {
		w.log.Info("Stop requested while %s, nothing to do", stateName(w.state.Load()))
		return
	}

	w.log.Info("Stopping writer")
	close(w.stopCh)

	select {
	case <-w.doneCh:
		w.log.Info("Writer stopped")
	case <-time.After(w.shutdownTimeout):
		w.log.Warn("Writer did not stop within %s, abandoning wait", w.shutdownTimeout)
	}
	w.state.Store(stateStopped)
}

// Status reports the writer state and pending-record counts. Read-only.
func (w *Writer) Status(ctx context.Context) (Status, error) {
	s := Status{
		Running:      w.state.Load() == stateRunning,
		State:        stateName(w.state.Load()),
		BatchSize:    w.processing.BatchSize,
		BatchTimeout: w.processing.BatchTimeout,
		MaxRetries:   w.processing.MaxRetries,
	}

	pending, err := w.consumer.PendingInfo(ctx)
	if err != nil {
		return s, fmt.Errorf("pending info: %w", err)
	}
	s.Pending = pending
	return s, nil
}

// run is the batch loop. It exits on stop signal or context cancellation.
func (w *Writer) run(ctx context.Context) {
	defer close(w.doneCh)
	defer w.state.CompareAndSwap(stateRunning, stateStopped)

	// readCtx ends when Stop is called, so a blocked read or a backoff
	// sleep is interrupted instead of running out its full timeout. Loads
	// and acknowledgments stay on the parent context and run to
	// completion.
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-readCtx.Done():
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}

		res, err := w.processWithRetry(readCtx, ctx)
		if err != nil {
			// Exhausted retries: leave the records unacknowledged and
			// keep draining; the broker redelivers them later. A
			// cancellation is the loop winding down, not a batch failure.
			if !errors.Is(err, context.Canceled) {
				w.log.Error("Batch abandoned after %d attempts: %v", w.processing.MaxRetries, err)
			}
			continue
		}

		if res.records == 0 {
			w.idleWait(ctx)
			continue
		}

		w.accumulate(res)
	}
}

// processWithRetry runs one batch attempt under the backoff policy. An empty
// read is a success, not a retryable condition. The policy sleeps on
// readCtx, so a stop request cuts the backoff chain short.
func (w *Writer) processWithRetry(readCtx, ctx context.Context) (batchResult, error) {
	var res batchResult
	err := w.policy.Do(readCtx, func(attemptCtx context.Context) error {
		var attemptErr error
		res, attemptErr = w.processBatch(attemptCtx, ctx)
		return attemptErr
	})
	return res, err
}

// processBatch performs one read-transform-load-acknowledge cycle.
// Acknowledgment strictly follows a successful load; a load failure leaves
// every record of the batch unacknowledged. The read is bounded by readCtx
// so a stop request interrupts it; once records are in hand, the load and
// the acknowledgment use the parent context and are never cut off mid-batch.
func (w *Writer) processBatch(readCtx, ctx context.Context) (batchResult, error) {
	var res batchResult
	start := time.Now()

	batch, err := w.consumer.Read(readCtx, int64(w.processing.BatchSize), w.processing.BatchTimeout)
	if err != nil {
		return res, err
	}
	if batch.Empty() {
		return res, nil
	}

	res.records = len(batch.Records)
	metrics.RecordsReadTotal.Add(float64(res.records))

	events := w.transformer.Transform(batch)
	res.events = len(events)
	for i := range events {
		res.detections += len(events[i].Detections)
	}
	metrics.EventsTotal.Add(float64(res.events))
	metrics.DetectionsTotal.Add(float64(res.detections))
	metrics.RecordsDroppedTotal.Add(float64(res.records - res.events))

	if _, err := w.loader.BulkInsert(ctx, events); err != nil {
		metrics.LoadErrorsTotal.Inc()
		return batchResult{}, err
	}
	metrics.BatchesLoadedTotal.Inc()

	acked, err := w.consumer.Acknowledge(ctx, batch.IDs())
	if err != nil {
		// The rows are already persisted; the unacknowledged records will
		// be redelivered and produce duplicates, which at-least-once
		// delivery permits
		metrics.AckFailuresTotal.Inc()
		w.log.Error("Failed to acknowledge %d records after load: %v", res.records, err)
	} else {
		res.acked = acked
		metrics.RecordsAckedTotal.Add(float64(acked))
	}

	res.duration = time.Since(start)
	metrics.BatchDuration.Observe(res.duration.Seconds())

	w.log.Debug("Batch done: %d records, %d events, %d detections, %d acked in %s",
		res.records, res.events, res.detections, res.acked, res.duration.Round(time.Millisecond))
	return res, nil
}

// accumulate folds one batch into the cumulative counters and emits the
// periodic stats line.
func (w *Writer) accumulate(res batchResult) {
	w.totalRecords += uint64(res.records)
	w.totalEvents += uint64(res.events)
	w.totalDetections += uint64(res.detections)
	w.totalBatches++

	if w.processing.StatsInterval > 0 && w.totalBatches%uint64(w.processing.StatsInterval) == 0 {
		w.logStats()
	}
}

// logStats emits the cumulative counters and refreshes the pending gauge.
// When the broker cannot report pending counts, the fields are omitted
// rather than logged as zero.
func (w *Writer) logStats() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	fields := logrus.Fields{
		"batches":    w.totalBatches,
		"records":    w.totalRecords,
		"events":     w.totalEvents,
		"detections": w.totalDetections,
	}

	pending, err := w.consumer.PendingInfo(ctx)
	if err != nil {
		w.log.Warn("Pending counts unavailable for stats: %v", err)
	} else {
		metrics.PendingRecords.Set(float64(pending.BrokerCount))
		fields["broker_pending"] = pending.BrokerCount
		fields["local_pending"] = pending.LocalCount
	}

	w.log.InfoWithFields(fields, "Pipeline stats")
}

// idleWait pauses after an empty batch so an idle stream does not spin the
// loop. Interruptible by stop or cancellation.
func (w *Writer) idleWait(ctx context.Context) {
	timer := time.NewTimer(w.processing.IdleSleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-w.stopCh:
	case <-timer.C:
	}
}
