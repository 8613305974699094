package activities

import (
	"context"
	"fmt"

	"go.uber.org/zap/zapcore"

	"example.com/runtracker/internal/mediator"
)

// GetActivity looks up one activity.
type GetActivity struct {
	ActivityID int64 `json:"activityId" validate:"gt=0"`
}

func (GetActivity) RequestName() string { return "activities.GetActivity" }

func (q GetActivity) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("activityId", q.ActivityID)
	return nil
}

// Details is the read projection of an activity.
type Details struct {
	ActivityID       int64   `json:"activityId"`
	UserID           int64   `json:"userId"`
	ActivityType     string  `json:"activityType"`
	DistanceInMeters float64 `json:"distanceInMeters"`
	Date             string  `json:"date"`
	Duration         string  `json:"duration"`
	Location         string  `json:"location"`
	Notes            string  `json:"notes"`
}

func (d *Details) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if d == nil {
		enc.AddBool("found", false)
		return nil
	}
	enc.AddBool("found", true)
	enc.AddInt64("activityId", d.ActivityID)
	enc.AddInt64("userId", d.UserID)
	enc.AddString("activityType", d.ActivityType)
	enc.AddFloat64("distanceInMeters", d.DistanceInMeters)
	enc.AddString("date", d.Date)
	enc.AddString("duration", d.Duration)
	enc.AddString("location", d.Location)
	enc.AddString("notes", d.Notes)
	return nil
}

// NewGetHandler returns nil Details when the activity does not exist.
func NewGetHandler(store Store) mediator.HandlerFunc[GetActivity, *Details] {
	return func(ctx context.Context, q GetActivity) (*Details, error) {
		activity, err := store.Find(ctx, q.ActivityID)
		if err != nil {
			return nil, fmt.Errorf("get activity %d: %w", q.ActivityID, err)
		}
		if activity == nil {
			return nil, nil
		}
		return &Details{
			ActivityID:       activity.ID,
			UserID:           activity.UserID,
			ActivityType:     activity.Kind.String(),
			DistanceInMeters: activity.DistanceInMeters,
			Date:             activity.Date.Short(),
			Duration:         activity.Duration.String(),
			Location:         activity.Location,
			Notes:            activity.Notes,
		}, nil
	}
}
