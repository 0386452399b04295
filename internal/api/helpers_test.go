package api

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func failingThenOk(failures int32, calls *int32) Call[string] {
	return func(context.Context) Envelope[string] {
		n := atomic.AddInt32(calls, 1)
		if n <= failures {
			return Fail[string](NewStatusError(503, ""))
		}
		return Ok("done", "")
	}
}

func TestWithRetryBacksOffLinearly(t *testing.T) {
	var calls int32
	delay := 20 * time.Millisecond

	start := time.Now()
	env := WithRetry(context.Background(), failingThenOk(3, &calls), 3, delay)
	elapsed := time.Since(start)

	require.True(t, env.Success)
	require.Equal(t, "done", env.Data)
	require.Equal(t, int32(4), atomic.LoadInt32(&calls))
	require.GreaterOrEqual(t, elapsed, delay+2*delay+3*delay)
}

func TestWithRetryReturnsLastMappedFailure(t *testing.T) {
	var calls int32
	env := WithRetry(context.Background(), failingThenOk(10, &calls), 2, time.Millisecond)

	require.False(t, env.Success)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Equal(t, "Service under maintenance.", env.Message)
	require.Equal(t, KindStatus, KindOf(env.Err()))
}

func TestWithRetrySkipsValidationFailures(t *testing.T) {
	var calls int32
	env := WithRetry(context.Background(), func(context.Context) Envelope[int] {
		atomic.AddInt32(&calls, 1)
		return Fail[int](NewValidationError("too big"))
	}, 5, time.Millisecond)

	require.False(t, env.Success)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWithRetryStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	env := WithRetry(ctx, failingThenOk(10, &calls), 5, time.Second)
	require.False(t, env.Success)
	require.Equal(t, KindCanceled, KindOf(env.Err()))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWithRetryDeadlineDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var calls int32
	env := WithRetry(ctx, failingThenOk(10, &calls), 5, time.Second)
	require.False(t, env.Success)
	require.Equal(t, KindTimeout, KindOf(env.Err()))
	require.Equal(t, "Request timeout.", env.Message)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWithTimeoutAbandonsHungCall(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	timeout := 30 * time.Millisecond
	start := time.Now()
	env := WithTimeout(context.Background(), func(context.Context) Envelope[int] {
		<-block
		return Ok(1, "")
	}, timeout)

	require.False(t, env.Success)
	require.Equal(t, KindTimeout, KindOf(env.Err()))
	require.Equal(t, "Request timeout after 30ms", env.Message)
	require.Less(t, time.Since(start), timeout+250*time.Millisecond)
}

func TestWithTimeoutPassesThroughFastResult(t *testing.T) {
	env := WithTimeout(context.Background(), func(context.Context) Envelope[int] {
		return Ok(42, "fast")
	}, time.Second)

	require.True(t, env.Success)
	require.Equal(t, 42, env.Data)
}

func TestParallelKeepsOrderOfSuccesses(t *testing.T) {
	calls := make([]Call[int], 0, 5)
	for i := 0; i < 5; i++ {
		i := i
		calls = append(calls, func(context.Context) Envelope[int] {
			time.Sleep(time.Duration(5-i) * 5 * time.Millisecond)
			if i%2 == 1 {
				return Fail[int](NewStatusError(404, ""))
			}
			return Ok(i*10, "")
		})
	}

	env := Parallel(context.Background(), calls)
	require.True(t, env.Success)
	require.Equal(t, []int{0, 20, 40}, env.Data)
	require.Equal(t, "3 succeeded, 2 failed", env.Message)
}

func TestParallelAllSucceeded(t *testing.T) {
	env := Parallel(context.Background(), []Call[string]{
		func(context.Context) Envelope[string] { return Ok("a", "") },
		func(context.Context) Envelope[string] { return Ok("b", "") },
	})

	require.True(t, env.Success)
	require.Equal(t, []string{"a", "b"}, env.Data)
	require.Equal(t, "All requests succeeded", env.Message)
}

func TestParallelAllFailed(t *testing.T) {
	calls := []Call[int]{
		func(context.Context) Envelope[int] { return Fail[int](NewStatusError(500, "")) },
		func(context.Context) Envelope[int] { return Fail[int](NewStatusError(404, "")) },
	}

	env := Parallel(context.Background(), calls)
	require.False(t, env.Success)
	require.Equal(t, fmt.Sprintf("All requests failed: Request 0: %s, Request 1: %s",
		StatusMessage(500, ""), StatusMessage(404, "")), env.Message)
}
