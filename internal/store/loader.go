package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gozcu/camera-event-writer/internal/event"
	"github.com/gozcu/camera-event-writer/internal/log"
)

const eventTable = "camera_events_raw"

// Column order matches the COPY target; rows are built in the same order.
var eventColumns = []string{"camera_id", "event_time", "event_data"}

// Loader performs bulk COPY writes of validated camera events. Failures
// propagate to the caller; no retry logic lives here.
type Loader struct {
	store *Store
	log   *log.Logger
}

// NewLoader creates a bulk loader on top of a connected store.
func NewLoader(store *Store, logger *log.Logger) *Loader {
	return &Loader{store: store, log: logger}
}

// BulkInsert persists the events in one COPY round trip and returns the
// number of rows the store reports as inserted. An empty input is a no-op,
// not an error. The COPY runs inside an explicit transaction so the batch
// is all-or-nothing even if the underlying primitive ever applies rows
// partially.
func (l *Loader) BulkInsert(ctx context.Context, events []event.CameraEvent) (int64, error) {
	if len(events) == 0 {
		l.log.Debug("No events to insert")
		return 0, nil
	}
	if l.store == nil || l.store.pool == nil {
		return 0, ErrNotInitialized
	}

	rows := make([][]interface{}, len(events))
	for i := range events {
		e := &events[i]
		rows[i] = []interface{}{e.CameraID, e.EventTime, e.EncodeDetections()}
	}

	start := time.Now()

	tx, err := l.store.pool.Begin(ctx)
	if err != nil {
		return 0, classify("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after commit

	inserted, err := tx.CopyFrom(ctx, pgx.Identifier{eventTable}, eventColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, classify("copy", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, classify("commit", err)
	}

	l.log.Info("Inserted %d camera events in %s", inserted, time.Since(start).Round(time.Millisecond))
	return inserted, nil
}

// classify maps a pgx error onto the loader's error kinds. SQLSTATE class
// 23 covers every integrity-constraint violation.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return fmt.Errorf("%w: %s: %s (%s)", ErrConstraintViolation, op, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
