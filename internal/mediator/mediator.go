// Package mediator routes commands and queries to their single handler
// through an ordered chain of behaviors.
//
// Handlers are registered once at startup. Bind resolves a handler and
// pre-builds its behavior chain, so a missing or mistyped registration is
// reported while the process wires itself up rather than on a request.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap/zapcore"
)

var (
	// ErrHandlerNotFound is returned by Bind when no handler is registered for a request.
	ErrHandlerNotFound = errors.New("mediator: no handler registered")
	// ErrResponseMismatch is returned by Bind when the registered handler produces a different response type.
	ErrResponseMismatch = errors.New("mediator: handler response type mismatch")
	// ErrDuplicateHandler is returned by Register when a request already has a handler.
	ErrDuplicateHandler = errors.New("mediator: handler already registered")
)

// Request is a command or query. RequestName must be constant for the type
// and callable on its zero value. MarshalLogObject exposes the fields that
// the logging behavior records.
type Request interface {
	zapcore.ObjectMarshaler
	RequestName() string
}

// Response is the value a handler produces.
type Response interface {
	zapcore.ObjectMarshaler
}

// Next invokes the remainder of the chain.
type Next func(ctx context.Context) (Response, error)

// Behavior wraps request handling. Implementations call next at most once
// and return its result or an error.
type Behavior func(ctx context.Context, req Request, next Next) (Response, error)

// HandlerFunc handles one request type.
type HandlerFunc[Req Request, Resp Response] func(ctx context.Context, req Req) (Resp, error)

// Sender dispatches a request through the bound behavior chain.
type Sender[Req Request, Resp Response] func(ctx context.Context, req Req) (Resp, error)

// Mediator holds handler registrations and the behaviors applied to every request.
type Mediator struct {
	behaviors []Behavior
	handlers  map[string]any
}

// New creates a Mediator. Behaviors run outermost first.
func New(behaviors ...Behavior) *Mediator {
	return &Mediator{
		behaviors: slices.Clone(behaviors),
		handlers:  make(map[string]any),
	}
}

// Register adds the handler for Req.
func Register[Req Request, Resp Response](m *Mediator, handler HandlerFunc[Req, Resp]) error {
	var zero Req
	name := zero.RequestName()
	if _, exists := m.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, name)
	}
	m.handlers[name] = handler
	return nil
}

// Bind resolves the handler for Req and returns a Sender that runs it
// inside the behavior chain.
func Bind[Req Request, Resp Response](m *Mediator) (Sender[Req, Resp], error) {
	var zero Req
	name := zero.RequestName()

	registered, ok := m.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, name)
	}
	handler, ok := registered.(HandlerFunc[Req, Resp])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResponseMismatch, name)
	}

	behaviors := slices.Clone(m.behaviors)
	return func(ctx context.Context, req Req) (Resp, error) {
		next := Next(func(ctx context.Context) (Response, error) {
			return handler(ctx, req)
		})
		for i := len(behaviors) - 1; i >= 0; i-- {
			behavior, inner := behaviors[i], next
			next = func(ctx context.Context) (Response, error) {
				return behavior(ctx, req, inner)
			}
		}

		resp, err := next(ctx)
		if err != nil {
			var empty Resp
			return empty, err
		}
		typed, _ := resp.(Resp)
		return typed, nil
	}, nil
}
