package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"example.com/runtracker/internal/logging"
)

type stubWriter struct {
	mu       sync.Mutex
	err      error
	messages map[string][]kafka.Message
}

func (w *stubWriter) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if w.messages == nil {
		w.messages = make(map[string][]kafka.Message)
	}
	w.messages[topic] = append(w.messages[topic], msgs...)
	return nil
}

func newOutboxDB(t *testing.T) (*gorm.DB, *sqlx.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&Record{}))
	return gdb, sqlx.NewDb(sqlDB, "sqlite3")
}

func seed(t *testing.T, gdb *gorm.DB, events ...Event) {
	t.Helper()
	for _, e := range events {
		rec, err := NewRecord(e, time.Now())
		require.NoError(t, err)
		require.NoError(t, gdb.Create(&rec).Error)
	}
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	gdb, db := newOutboxDB(t)
	seed(t, gdb,
		ActivityCreated{ActivityID: 1, UserID: 10, ActivityType: "Run"},
		ActivityCreated{ActivityID: 2, UserID: 11, ActivityType: "Swim"},
		WorkoutCreated{WorkoutID: 1, UserID: 10, ActivityIDs: []int64{1}},
	)

	writer := &stubWriter{}
	d := NewDispatcher(db, "sqlite3", writer, logging.Nop(), DispatcherConfig{BatchSize: 10})
	delivered := testutil.ToFloat64(deliveredCounter)

	n, err := d.processBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, delivered+3, testutil.ToFloat64(deliveredCounter))

	require.Len(t, writer.messages["activity_events"], 2)
	require.Len(t, writer.messages["workout_events"], 1)

	first := writer.messages["activity_events"][0]
	require.Equal(t, "10", string(first.Key))
	require.JSONEq(t, `{"activityId":1,"userId":10,"activityType":"Run","distanceInMeters":0,"duration":"","date":"","location":""}`, string(first.Value))
	require.Contains(t, first.Headers, kafka.Header{Key: "event_type", Value: []byte(EventActivityCreated)})
	require.Contains(t, first.Headers, kafka.Header{Key: "aggregate_type", Value: []byte("activity")})

	var pending int64
	require.NoError(t, gdb.Model(&Record{}).Where("published_at IS NULL").Count(&pending).Error)
	require.Zero(t, pending)

	n, err = d.processBatch(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestProcessBatchRespectsBatchSize(t *testing.T) {
	gdb, db := newOutboxDB(t)
	seed(t, gdb,
		ActivityCreated{ActivityID: 1, UserID: 1},
		ActivityCreated{ActivityID: 2, UserID: 1},
		ActivityCreated{ActivityID: 3, UserID: 1},
	)

	writer := &stubWriter{}
	d := NewDispatcher(db, "sqlite3", writer, logging.Nop(), DispatcherConfig{BatchSize: 2})

	n, err := d.processBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "1", string(writer.messages["activity_events"][0].Key))

	n, err = d.processBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestProcessBatchRecordsFailure(t *testing.T) {
	gdb, db := newOutboxDB(t)
	seed(t, gdb, WorkoutCreated{WorkoutID: 4, UserID: 2})

	writer := &stubWriter{err: errors.New("broker unavailable")}
	d := NewDispatcher(db, "sqlite3", writer, logging.Nop(), DispatcherConfig{})
	failed := testutil.ToFloat64(failedCounter)

	n, err := d.processBatch(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, writer.err)
	require.Zero(t, n)
	require.Equal(t, failed+1, testutil.ToFloat64(failedCounter))

	var rec Record
	require.NoError(t, gdb.First(&rec).Error)
	require.Nil(t, rec.PublishedAt)
	require.Equal(t, 1, rec.Attempts)
	require.Contains(t, rec.LastError, "broker unavailable")

	writer.err = nil
	n, err = d.processBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestStartStopsOnCancel(t *testing.T) {
	gdb, db := newOutboxDB(t)
	seed(t, gdb, ActivityCreated{ActivityID: 9, UserID: 9})

	writer := &stubWriter{}
	d := NewDispatcher(db, "sqlite3", writer, logging.Nop(), DispatcherConfig{PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	require.Eventually(t, func() bool {
		writer.mu.Lock()
		defer writer.mu.Unlock()
		return len(writer.messages["activity_events"]) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	d.Wait()
}

func TestNewRecordRejectsUnknownEvent(t *testing.T) {
	_, err := NewRecord(unknownEvent{}, time.Now())
	require.Error(t, err)
}

type unknownEvent struct{}

func (unknownEvent) EventType() string     { return "thing.happened" }
func (unknownEvent) AggregateType() string { return "thing" }
func (unknownEvent) AggregateID() int64    { return 1 }
