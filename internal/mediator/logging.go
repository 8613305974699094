package mediator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/runtracker/internal/logging"
)

// Logging records each request's parameters, result and elapsed time. Errors
// from the rest of the chain are logged and returned unchanged.
func Logging(log *logging.Logger) Behavior {
	return func(ctx context.Context, req Request, next Next) (Response, error) {
		start := time.Now()
		reqLog := log.With("request", req.RequestName(), "dispatch_id", uuid.NewString())

		reqLog.Info("handling request",
			"started_at", start.UTC(),
			zap.Object("params", req),
		)

		resp, err := next(ctx)
		elapsed := time.Since(start)
		if err != nil {
			reqLog.Error("request failed",
				"elapsed_ms", elapsed.Milliseconds(),
				zap.Error(err),
			)
			return resp, err
		}

		fields := []interface{}{"elapsed_ms", elapsed.Milliseconds()}
		if resp != nil {
			fields = append(fields, zap.Object("result", resp))
		}
		reqLog.Info("handled request", fields...)
		return resp, nil
	}
}
