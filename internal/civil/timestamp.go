package civil

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.9999999"

// Timestamp is a wall-clock date and time. Values are held in UTC and
// rendered without an offset.
type Timestamp struct {
	time.Time
}

// TimestampOf drops t's zone after converting it to UTC.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// ParseTimestamp accepts 2006-01-02T15:04:05[.fffffff] with an optional
// RFC 3339 offset, which is normalised to UTC.
func ParseTimestamp(raw string) (Timestamp, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return TimestampOf(t), nil
	}
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return TimestampOf(t), nil
	}
	return Timestamp{}, fmt.Errorf("civil: invalid timestamp %q", raw)
}

func (t Timestamp) String() string {
	return t.UTC().Format(timestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return invalidJSON(data, *t)
	}
	if raw == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return invalidJSON(data, *t)
	}
	*t = parsed
	return nil
}

// GormDataType maps Timestamp to a zone-less TIMESTAMP column.
func (Timestamp) GormDataType() string {
	return "timestamp"
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.UTC(), nil
}

func (t *Timestamp) Scan(src any) error {
	v, err := scanTime(src)
	if err != nil {
		return fmt.Errorf("civil: scan timestamp: %w", err)
	}
	*t = TimestampOf(v)
	return nil
}
