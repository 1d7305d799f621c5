// Package redis wraps the broker's consumer-group primitives for the camera
// event stream: group creation, batched reads, explicit acknowledgment and
// pending-entry introspection. No retry or batching policy lives here.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	"github.com/gozcu/camera-event-writer/internal/config"
	"github.com/gozcu/camera-event-writer/internal/log"
	"github.com/gozcu/camera-event-writer/internal/message"
)

// Consumer manages consumer-group-scoped reads of the camera event stream.
// Record IDs are tracked in a local pending set from read until acknowledge.
type Consumer struct {
	rdb    *redis.Client
	stream string
	group  string
	name   string
	log    *log.Logger

	mu        sync.Mutex
	pending   map[string]struct{}
	ready     bool
	recovered bool // first read after Initialize checks the group PEL
}

// NewConsumer creates a consumer and verifies broker connectivity.
func NewConsumer(cfg *config.RedisConfig, logger *log.Logger) (*Consumer, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		// Explicitly disable maintenance notifications
		// This prevents the client from sending extra commands to Redis
		// which can add unnecessary load.
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: ping %s: %v", ErrBrokerUnavailable, cfg.Address, err)
	}

	return &Consumer{
		rdb:     rdb,
		stream:  cfg.Stream,
		group:   cfg.Group,
		name:    cfg.Consumer,
		pending: make(map[string]struct{}),
		log:     logger,
	}, nil
}

// Initialize idempotently ensures the durable consumer group exists,
// creating the stream if absent. Any broker error other than an existing
// group propagates and must be treated as fatal by the caller.
func (c *Consumer) Initialize(ctx context.Context) error {
	err := c.rdb.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil {
		if !isBusyGroup(err) {
			return fmt.Errorf("%w: create consumer group '%s' on stream '%s': %v",
				ErrBrokerUnavailable, c.group, c.stream, err)
		}
		c.log.Info("Consumer group '%s' already exists for stream '%s', joining existing group", c.group, c.stream)
	} else {
		c.log.Info("Created consumer group '%s' for stream '%s'", c.group, c.stream)
	}

	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	return nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

// Read fetches up to count new records, blocking up to block when the
// stream is idle. A timeout yields an empty batch, not an error. When this
// consumer still owns pending entries (failed batch or restart), they are
// redelivered from the group's pending position before any new records.
// Every returned ID is recorded in the local pending set.
func (c *Consumer) Read(ctx context.Context, count int64, block time.Duration) (message.Batch, error) {
	if !c.isReady() {
		return message.Batch{}, ErrNotInitialized
	}

	if c.needsRecovery() {
		batch, err := c.readAt(ctx, "0", count, -1)
		if err != nil {
			return message.Batch{}, err
		}
		if !batch.Empty() {
			c.track(batch)
			c.log.Debug("Redelivered %d pending records from stream '%s'", len(batch.Records), c.stream)
			return batch, nil
		}
	}

	batch, err := c.readAt(ctx, ">", count, block)
	if err != nil {
		return message.Batch{}, err
	}
	c.track(batch)
	if !batch.Empty() {
		c.log.Debug("Read %d records from stream '%s'", len(batch.Records), c.stream)
	}
	return batch, nil
}

// readAt issues one XREADGROUP at the given cursor: ">" for new records,
// "0" for this consumer's own pending entries.
func (c *Consumer) readAt(ctx context.Context, cursor string, count int64, block time.Duration) (message.Batch, error) {
	result, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.stream, cursor},
		Count:    count,
		Block:    block,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			// No records available within the blocking window
			return message.Batch{}, nil
		}
		if ctx.Err() != nil {
			return message.Batch{}, ctx.Err()
		}
		return message.Batch{}, fmt.Errorf("%w: xreadgroup: %v", ErrBrokerUnavailable, err)
	}

	records := make([]message.Record, 0, count)
	for _, streamResult := range result {
		for _, msg := range streamResult.Messages {
			records = append(records, message.Record{
				ID:     msg.ID,
				Stream: streamResult.Stream,
				Fields: msg.Values,
			})
		}
	}

	return message.Batch{Records: records}, nil
}

// Acknowledge acknowledges the given IDs with the broker and removes them
// from the local pending set regardless of how many the broker accepted;
// re-acknowledging an already-acked ID is harmless. Whether unacknowledged
// records matter is the caller's decision.
func (c *Consumer) Acknowledge(ctx context.Context, ids []string) (int64, error) {
	if !c.isReady() {
		return 0, ErrNotInitialized
	}
	if len(ids) == 0 {
		c.log.Debug("No record IDs to acknowledge")
		return 0, nil
	}

	acked, err := c.rdb.XAck(ctx, c.stream, c.group, ids...).Result()
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: xack: %v", ErrBrokerUnavailable, err)
	}

	c.untrack(ids)

	if int(acked) < len(ids) {
		c.log.Warn("Broker acknowledged %d of %d records in stream '%s'", acked, len(ids), c.stream)
	} else {
		c.log.Debug("Acknowledged %d records in stream '%s'", acked, c.stream)
	}
	return acked, nil
}

// PendingInfo returns the broker's view of this consumer's un-acked records
// plus the local pending count. Observability only; never mutates state.
func (c *Consumer) PendingInfo(ctx context.Context) (message.PendingInfo, error) {
	if !c.isReady() {
		return message.PendingInfo{}, ErrNotInitialized
	}

	pending, err := c.rdb.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream:   c.stream,
		Group:    c.group,
		Start:    "-",
		End:      "+",
		Count:    100,
		Consumer: c.name,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return message.PendingInfo{}, fmt.Errorf("%w: xpending: %v", ErrBrokerUnavailable, err)
	}

	return message.PendingInfo{
		BrokerCount: len(pending),
		LocalCount:  c.LocalPending(),
	}, nil
}

// LocalPending returns the size of the locally tracked pending set.
func (c *Consumer) LocalPending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Consumer) isReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *Consumer) needsRecovery() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.recovered || len(c.pending) > 0
}

func (c *Consumer) track(batch message.Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recovered = true
	for i := range batch.Records {
		c.pending[batch.Records[i].ID] = struct{}{}
	}
}

func (c *Consumer) untrack(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.pending, id)
	}
}

// Close closes the broker connection.
func (c *Consumer) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}
