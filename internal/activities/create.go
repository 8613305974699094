package activities

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"

	"example.com/runtracker/internal/civil"
	"example.com/runtracker/internal/domain"
	"example.com/runtracker/internal/mediator"
	"example.com/runtracker/internal/validation"
)

// KindRule accepts the names of the defined activity kinds in any case.
var KindRule = validation.Rule{
	Tag: "activitykind",
	Func: func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseActivityKind(fl.Field().String())
		return ok
	},
	Message: "'{Name}' has a range of values which does not include '{Value}'.",
}

// CreateActivity records a new activity for a user.
type CreateActivity struct {
	UserID           int64      `json:"userId" validate:"gt=0"`
	ActivityType     string     `json:"activityType" validate:"activitykind"`
	DistanceInMeters float64    `json:"distanceInMeters" validate:"gt=0"`
	Duration         civil.Span `json:"duration" validate:"gte=30s"`
	Date             civil.Date `json:"date" validate:"required"`
	Location         string     `json:"location" validate:"notempty"`
	Notes            string     `json:"notes"`
}

func (CreateActivity) RequestName() string { return "activities.CreateActivity" }

func (c CreateActivity) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("userId", c.UserID)
	enc.AddString("activityType", c.ActivityType)
	enc.AddFloat64("distanceInMeters", c.DistanceInMeters)
	enc.AddString("duration", c.Duration.String())
	enc.AddString("date", c.Date.String())
	enc.AddString("location", c.Location)
	enc.AddString("notes", c.Notes)
	return nil
}

// Created identifies the stored activity.
type Created struct {
	ActivityID int64 `json:"activityId"`
}

func (c Created) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("activityId", c.ActivityID)
	return nil
}

// NewCreateHandler saves validated CreateActivity commands.
func NewCreateHandler(store Store) mediator.HandlerFunc[CreateActivity, Created] {
	return func(ctx context.Context, cmd CreateActivity) (Created, error) {
		kind, ok := domain.ParseActivityKind(cmd.ActivityType)
		if !ok {
			return Created{}, fmt.Errorf("create activity: unknown kind %q", cmd.ActivityType)
		}

		activity := &domain.Activity{
			UserID:           cmd.UserID,
			Kind:             kind,
			DistanceInMeters: cmd.DistanceInMeters,
			Duration:         cmd.Duration,
			Date:             cmd.Date,
			Location:         cmd.Location,
			Notes:            cmd.Notes,
		}
		if err := store.Save(ctx, activity); err != nil {
			return Created{}, fmt.Errorf("create activity: %w", err)
		}
		return Created{ActivityID: activity.ID}, nil
	}
}
