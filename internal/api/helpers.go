package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/noah-isme/codemission/internal/observability"
)

// Call is a deferred backend request.
type Call[T any] func(ctx context.Context) Envelope[T]

// WithRetry invokes fn up to maxAttempts+1 times and returns the first successful envelope.
// After failed attempt n it waits baseDelay*n. Validation failures and cancellation are not retried.
func WithRetry[T any](ctx context.Context, fn Call[T], maxAttempts int, baseDelay time.Duration) Envelope[T] {
	if maxAttempts < 0 {
		maxAttempts = 0
	}

	var last Envelope[T]
	for attempt := 1; attempt <= maxAttempts+1; attempt++ {
		last = fn(ctx)
		if last.Success {
			return last
		}

		failure := last.failure()
		if attempt > maxAttempts || failure.Kind == KindValidation || failure.Kind == KindCanceled {
			break
		}

		observability.ClientRetries().WithLabelValues(retryLabel(failure)).Inc()

		wait := time.NewTimer(baseDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			wait.Stop()
			return Fail[T](contextError(ctx, ctx.Err(), 0))
		case <-wait.C:
		}
	}

	return Fail[T](last.failure())
}

// WithTimeout races fn against a timer. When the timer wins the call is abandoned: its context is
// cancelled but its result is never awaited.
func WithTimeout[T any](ctx context.Context, fn Call[T], timeout time.Duration) Envelope[T] {
	callCtx, cancel := context.WithCancel(ctx)

	result := make(chan Envelope[T], 1)
	go func() {
		result <- fn(callCtx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case env := <-result:
		cancel()
		return env
	case <-timer.C:
		cancel()
		return Fail[T](timeoutError(timeout, nil))
	case <-ctx.Done():
		cancel()
		return Fail[T](contextError(ctx, ctx.Err(), timeout))
	}
}

// Parallel runs every call concurrently and waits for all of them. Successful payloads keep their
// original order. The result fails only when every call failed.
func Parallel[T any](ctx context.Context, calls []Call[T]) Envelope[[]T] {
	settled := iter.Map(calls, func(call *Call[T]) Envelope[T] {
		return (*call)(ctx)
	})

	succeeded := make([]T, 0, len(settled))
	var reasons []string
	for i, env := range settled {
		if env.Success {
			succeeded = append(succeeded, env.Data)
			continue
		}
		reasons = append(reasons, fmt.Sprintf("Request %d: %s", i, env.failure().Message))
	}

	if len(calls) > 0 && len(reasons) == len(calls) {
		return Fail[[]T](&Error{
			Kind:    KindApplication,
			Message: "All requests failed: " + strings.Join(reasons, ", "),
		})
	}

	message := "All requests succeeded"
	if len(reasons) > 0 {
		message = fmt.Sprintf("%d succeeded, %d failed", len(succeeded), len(reasons))
	}

	env := Ok(succeeded, message)
	count := len(succeeded)
	env.Count = &count
	return env
}

func retryLabel(err *Error) string {
	if err.Route != "" {
		return err.Route
	}
	return string(err.Kind)
}
