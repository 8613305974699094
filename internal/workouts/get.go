package workouts

import (
	"context"
	"fmt"

	"go.uber.org/zap/zapcore"

	"example.com/runtracker/internal/civil"
	"example.com/runtracker/internal/mediator"
)

// GetWorkout looks up one workout with its linked activity ids.
type GetWorkout struct {
	WorkoutID int64 `json:"workoutId" validate:"gt=0"`
}

func (GetWorkout) RequestName() string { return "workouts.GetWorkout" }

func (q GetWorkout) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("workoutId", q.WorkoutID)
	return nil
}

// Details is the read projection of a workout.
type Details struct {
	WorkoutID   int64           `json:"workoutId"`
	UserID      int64           `json:"userId"`
	ActivityIDs []int64         `json:"activityIds"`
	StartTime   civil.Timestamp `json:"startTime"`
	EndTime     civil.Timestamp `json:"endTime"`
	Notes       string          `json:"notes"`
}

func (d *Details) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if d == nil {
		enc.AddBool("found", false)
		return nil
	}
	enc.AddBool("found", true)
	enc.AddInt64("workoutId", d.WorkoutID)
	enc.AddInt64("userId", d.UserID)
	if err := enc.AddArray("activityIds", int64s(d.ActivityIDs)); err != nil {
		return err
	}
	enc.AddString("startTime", d.StartTime.String())
	enc.AddString("endTime", d.EndTime.String())
	enc.AddString("notes", d.Notes)
	return nil
}

// NewGetHandler returns nil Details when the workout does not exist.
func NewGetHandler(store Store) mediator.HandlerFunc[GetWorkout, *Details] {
	return func(ctx context.Context, q GetWorkout) (*Details, error) {
		workout, err := store.Find(ctx, q.WorkoutID)
		if err != nil {
			return nil, fmt.Errorf("get workout %d: %w", q.WorkoutID, err)
		}
		if workout == nil {
			return nil, nil
		}
		return &Details{
			WorkoutID:   workout.ID,
			UserID:      workout.UserID,
			ActivityIDs: workout.ActivityIDs(),
			StartTime:   workout.StartTime,
			EndTime:     workout.EndTime,
			Notes:       workout.Notes,
		}, nil
	}
}
