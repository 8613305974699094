package mediator

import "context"

// RequestValidator checks a request and reports every failed rule.
type RequestValidator interface {
	Validate(ctx context.Context, req any) error
}

// Validation stops the chain when the request fails validation. Valid
// requests pass through untouched.
func Validation(v RequestValidator) Behavior {
	return func(ctx context.Context, req Request, next Next) (Response, error) {
		if err := v.Validate(ctx, req); err != nil {
			return nil, err
		}
		return next(ctx)
	}
}
