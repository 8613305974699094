// Package outbox records integration events alongside writes and delivers
// them to Kafka.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/segmentio/kafka-go"

	"example.com/runtracker/internal/logging"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// DispatcherConfig tunes the polling loop.
type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// LockRows claims rows with FOR UPDATE SKIP LOCKED so several
	// dispatchers can share one PostgreSQL table.
	LockRows bool
}

// Dispatcher drains unpublished outbox rows and delivers them to Kafka.
type Dispatcher struct {
	db               *sqlx.DB
	dialect          goqu.DialectWrapper
	producer         messageWriter
	log              *logging.Logger
	cfg              DispatcherConfig
	now              func() time.Time
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher. dialect is a goqu dialect name.
func NewDispatcher(db *sqlx.DB, dialect string, producer messageWriter, log *logging.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Dispatcher{
		db:               db,
		dialect:          goqu.Dialect(dialect),
		producer:         producer,
		log:              log.With("component", "outbox_dispatcher"),
		cfg:              cfg,
		now:              time.Now,
		shutdownComplete: make(chan struct{}),
	}
}

// Start runs the polling loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if _, err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error("outbox batch failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Wait blocks until Start has returned.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

// processBatch claims up to BatchSize rows, publishes them and marks them
// published. On delivery failure the rows stay pending with their attempt
// count raised.
func (d *Dispatcher) processBatch(ctx context.Context) (int, error) {
	start := time.Now()

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	records, err := d.claim(ctx, tx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, tx.Commit()
	}
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.EventID)
	}

	if deliverErr := d.deliver(ctx, records); deliverErr != nil {
		failedCounter.Add(float64(len(records)))
		if err := d.markFailed(ctx, tx, ids, deliverErr); err != nil {
			return 0, errors.Join(deliverErr, err)
		}
		if err := tx.Commit(); err != nil {
			return 0, errors.Join(deliverErr, err)
		}
		return 0, fmt.Errorf("outbox: deliver: %w", deliverErr)
	}

	if err := d.markPublished(ctx, tx, ids); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	deliveredCounter.Add(float64(len(records)))
	return len(records), nil
}

func (d *Dispatcher) claim(ctx context.Context, tx *sqlx.Tx) ([]Record, error) {
	ds := d.dialect.From(TableName).
		Select("event_id", "aggregate_type", "aggregate_id", "event_type", "topic", "partition_key", "payload", "attempts").
		Where(goqu.C("published_at").IsNull()).
		Order(goqu.C("event_id").Asc()).
		Limit(uint(d.cfg.BatchSize)).
		Prepared(true)
	if d.cfg.LockRows {
		ds = ds.ForUpdate(exp.SkipLocked)
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("outbox: build claim query: %w", err)
	}

	var records []Record
	if err := tx.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("outbox: claim: %w", err)
	}
	return records, nil
}

func (d *Dispatcher) deliver(ctx context.Context, records []Record) error {
	batches := make(map[string][]kafka.Message)
	order := make([]string, 0)
	for _, r := range records {
		if _, seen := batches[r.Topic]; !seen {
			order = append(order, r.Topic)
		}
		batches[r.Topic] = append(batches[r.Topic], kafka.Message{
			Key:   []byte(r.PartitionKey),
			Value: []byte(r.Payload),
			Time:  d.now().UTC(),
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(r.EventType)},
				{Key: "aggregate_type", Value: []byte(r.AggregateType)},
			},
		})
	}

	for _, topic := range order {
		msgs := batches[topic]
		pendingGauge.WithLabelValues(topic).Set(float64(len(msgs)))
		if err := d.producer.WriteMessages(ctx, topic, msgs...); err != nil {
			return fmt.Errorf("topic %s: %w", topic, err)
		}
	}
	return nil
}

func (d *Dispatcher) markPublished(ctx context.Context, tx *sqlx.Tx, ids []int64) error {
	query, args, err := d.dialect.Update(TableName).
		Set(goqu.Record{"published_at": d.now().UTC()}).
		Where(goqu.C("event_id").In(ids)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("outbox: build publish update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("outbox: mark published: %w", err)
	}
	return nil
}

func (d *Dispatcher) markFailed(ctx context.Context, tx *sqlx.Tx, ids []int64, cause error) error {
	query, args, err := d.dialect.Update(TableName).
		Set(goqu.Record{
			"attempts":   goqu.L("attempts + 1"),
			"last_error": cause.Error(),
		}).
		Where(goqu.C("event_id").In(ids)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("outbox: build failure update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("outbox: mark failed: %w", err)
	}
	return nil
}
