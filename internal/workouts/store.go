// Package workouts implements the create and get workout use cases.
package workouts

import (
	"context"
	"errors"

	"example.com/runtracker/internal/domain"
	"example.com/runtracker/internal/mediator"
)

// Store persists workouts.
type Store interface {
	// Activities loads the tracked activities whose ids appear in ids.
	// Unknown ids are skipped.
	Activities(ctx context.Context, ids []int64) ([]domain.Activity, error)
	// Save stores the workout and links its activities to it.
	Save(ctx context.Context, workout *domain.Workout) error
	// Find returns nil when the workout does not exist.
	Find(ctx context.Context, id int64) (*domain.Workout, error)
}

// Register adds the workout handlers to m.
func Register(m *mediator.Mediator, store Store) error {
	return errors.Join(
		mediator.Register(m, NewCreateHandler(store)),
		mediator.Register(m, NewGetHandler(store)),
	)
}
