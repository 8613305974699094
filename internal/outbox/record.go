package outbox

import (
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/datatypes"
)

// TableName is the outbox table shared by the write store and the dispatcher.
const TableName = "outbox"

var payloadJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one pending integration event. It is inserted in the same
// transaction as the change it describes.
type Record struct {
	EventID       int64          `gorm:"column:event_id;primaryKey;autoIncrement" db:"event_id"`
	AggregateType string         `gorm:"size:64;not null" db:"aggregate_type"`
	AggregateID   int64          `gorm:"not null" db:"aggregate_id"`
	EventType     string         `gorm:"size:128;not null" db:"event_type"`
	Topic         string         `gorm:"size:255;not null" db:"topic"`
	PartitionKey  string         `gorm:"size:255;not null" db:"partition_key"`
	Payload       datatypes.JSON `gorm:"not null" db:"payload"`
	CreatedAt     time.Time      `gorm:"not null" db:"created_at"`
	PublishedAt   *time.Time     `gorm:"index" db:"published_at"`
	Attempts      int            `gorm:"not null;default:0" db:"attempts"`
	LastError     string         `gorm:"not null;default:''" db:"last_error"`
}

func (Record) TableName() string { return TableName }

// Event is a payload that knows how it is routed.
type Event interface {
	EventType() string
	AggregateType() string
	AggregateID() int64
}

// route describes where an event type is published.
type route struct {
	Topic        string
	PartitionKey func(Event) string
}

var catalog = map[string]route{
	EventActivityCreated: {
		Topic:        "activity_events",
		PartitionKey: userPartition,
	},
	EventWorkoutCreated: {
		Topic:        "workout_events",
		PartitionKey: userPartition,
	},
}

func userPartition(e Event) string {
	if owned, ok := e.(interface{ OwnerID() int64 }); ok {
		return strconv.FormatInt(owned.OwnerID(), 10)
	}
	return strconv.FormatInt(e.AggregateID(), 10)
}

// NewRecord encodes e into an unpublished outbox row.
func NewRecord(e Event, now time.Time) (Record, error) {
	r, ok := catalog[e.EventType()]
	if !ok {
		return Record{}, fmt.Errorf("outbox: unknown event type %s", e.EventType())
	}
	body, err := payloadJSON.Marshal(e)
	if err != nil {
		return Record{}, fmt.Errorf("outbox: encode %s: %w", e.EventType(), err)
	}
	return Record{
		AggregateType: e.AggregateType(),
		AggregateID:   e.AggregateID(),
		EventType:     e.EventType(),
		Topic:         r.Topic,
		PartitionKey:  r.PartitionKey(e),
		Payload:       datatypes.JSON(body),
		CreatedAt:     now.UTC(),
	}, nil
}
