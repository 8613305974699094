// Package activities implements the create and get activity use cases.
package activities

import (
	"context"
	"errors"

	"example.com/runtracker/internal/domain"
	"example.com/runtracker/internal/mediator"
)

// Store persists activities. Save goes through the change-tracked write
// model; Find reads a flat projection and returns nil when the id is unknown.
type Store interface {
	Save(ctx context.Context, activity *domain.Activity) error
	Find(ctx context.Context, id int64) (*domain.Activity, error)
}

// Register adds the activity handlers to m.
func Register(m *mediator.Mediator, store Store) error {
	return errors.Join(
		mediator.Register(m, NewCreateHandler(store)),
		mediator.Register(m, NewGetHandler(store)),
	)
}
