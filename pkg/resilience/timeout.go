package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// TimeoutError reports an operation that ran past its limit. It matches both
// apperrors.ErrTimeout and context.DeadlineExceeded, and keeps whatever
// error the operation returned when it noticed the deadline.
type TimeoutError struct {
	Op    string
	Limit time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil || errors.Is(e.Err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s: timed out after %v", e.Op, e.Limit)
	}
	return fmt.Sprintf("%s: timed out after %v: %v", e.Op, e.Limit, e.Err)
}

func (e *TimeoutError) Unwrap() []error {
	errs := []error{apperrors.ErrTimeout, context.DeadlineExceeded}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// WithTimeout runs fn under a context that expires after limit and waits for
// it to return; fn must stop once its context is done. A failure after the
// deadline becomes a *TimeoutError, while cancellation of ctx itself is
// returned as is. A zero limit runs fn under ctx unchanged.
func WithTimeout(ctx context.Context, limit time.Duration, op string, fn func(ctx context.Context) error) error {
	if limit <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	err := fn(tctx)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Limit: limit, Err: err}
	}
	return err
}
