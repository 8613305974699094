package mediator

import (
	"context"
	"errors"
	"time"

	"example.com/runtracker/internal/observability"
	"example.com/runtracker/internal/validation"
)

// Metrics observes latency per request name and outcome. Place it outside
// Validation so rejected requests are counted under the "invalid" outcome.
func Metrics() Behavior {
	return func(ctx context.Context, req Request, next Next) (Response, error) {
		start := time.Now()
		resp, err := next(ctx)
		observability.ObserveRequest(req.RequestName(), outcomeOf(err), time.Since(start))
		return resp, err
	}
}

func outcomeOf(err error) string {
	var invalid *validation.Error
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &invalid):
		return "invalid"
	default:
		return "error"
	}
}
