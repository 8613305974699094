package workouts

import (
	"context"
	"fmt"

	"go.uber.org/zap/zapcore"

	"example.com/runtracker/internal/civil"
	"example.com/runtracker/internal/domain"
	"example.com/runtracker/internal/mediator"
)

// CreateWorkout groups existing activities into a new workout.
type CreateWorkout struct {
	UserID      int64           `json:"userId" validate:"gt=0"`
	ActivityIDs []int64         `json:"activityIds" validate:"notempty,dive,gt=0"`
	StartTime   civil.Timestamp `json:"startTime" validate:"required"`
	EndTime     civil.Timestamp `json:"endTime" validate:"required"`
	Notes       string          `json:"notes"`
}

func (CreateWorkout) RequestName() string { return "workouts.CreateWorkout" }

func (c CreateWorkout) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("userId", c.UserID)
	if err := enc.AddArray("activityIds", int64s(c.ActivityIDs)); err != nil {
		return err
	}
	enc.AddString("startTime", c.StartTime.String())
	enc.AddString("endTime", c.EndTime.String())
	enc.AddString("notes", c.Notes)
	return nil
}

// Created identifies the stored workout.
type Created struct {
	WorkoutID int64 `json:"workoutId"`
}

func (c Created) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("workoutId", c.WorkoutID)
	return nil
}

// NewCreateHandler saves validated CreateWorkout commands. Activity ids that
// do not resolve to a stored activity are dropped, so the workout may link
// fewer activities than were requested.
func NewCreateHandler(store Store) mediator.HandlerFunc[CreateWorkout, Created] {
	return func(ctx context.Context, cmd CreateWorkout) (Created, error) {
		activities, err := store.Activities(ctx, cmd.ActivityIDs)
		if err != nil {
			return Created{}, fmt.Errorf("create workout: load activities: %w", err)
		}

		workout := &domain.Workout{
			UserID:     cmd.UserID,
			StartTime:  cmd.StartTime,
			EndTime:    cmd.EndTime,
			Notes:      cmd.Notes,
			Activities: activities,
		}
		if err := store.Save(ctx, workout); err != nil {
			return Created{}, fmt.Errorf("create workout: %w", err)
		}
		return Created{WorkoutID: workout.ID}, nil
	}
}

type int64s []int64

func (ids int64s) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, id := range ids {
		enc.AppendInt64(id)
	}
	return nil
}
