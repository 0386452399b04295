// Package viewstate holds the client-side state behind each screen: what was fetched, whether a
// fetch is running and the last error message. Stores are safe for concurrent use and discard
// responses that were superseded by a newer request.
package viewstate

import (
	"context"
	"sync"

	"github.com/noah-isme/codemission/internal/api"
)

// Status is the lifecycle of a fetched resource.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Snapshot is a copy of a resource's state at one point in time.
type Snapshot[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Loading reports whether a fetch is in flight.
func (s Snapshot[T]) Loading() bool {
	return s.Status == StatusLoading
}

// ErrorMessage is the user-facing message of the last failure, or "".
func (s Snapshot[T]) ErrorMessage() string {
	return errorMessage(s.Err)
}

// Resource tracks one fetched value. Every Load takes a new generation; only the newest generation
// may settle the state. Data from the last success is kept while a later fetch runs or fails.
type Resource[T any] struct {
	mu         sync.RWMutex
	generation uint64
	snapshot   Snapshot[T]
}

// Load runs fetch and records its outcome unless a newer Load started meanwhile. The fetch result is
// returned either way.
func (r *Resource[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	generation := r.begin()
	data, err := fetch(ctx)
	r.settle(generation, data, err)
	return data, err
}

// Snapshot returns the current state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := r.snapshot
	if snapshot.Status == "" {
		snapshot.Status = StatusIdle
	}
	return snapshot
}

// Set replaces the data and marks the resource successful.
func (r *Resource[T]) Set(data T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot.Data = data
	r.snapshot.Err = nil
	if r.snapshot.Status != StatusLoading {
		r.snapshot.Status = StatusSuccess
	}
}

// Update applies fn to the current data in place.
func (r *Resource[T]) Update(fn func(T) T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot.Data = fn(r.snapshot.Data)
}

// Fail records err without touching the data.
func (r *Resource[T]) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot.Err = err
	if r.snapshot.Status != StatusLoading {
		r.snapshot.Status = StatusError
	}
}

// ClearError drops the last failure.
func (r *Resource[T]) ClearError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot.Err = nil
	if r.snapshot.Status == StatusError {
		r.snapshot.Status = StatusIdle
	}
}

// Reset returns the resource to idle and invalidates any fetch in flight.
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.snapshot = Snapshot[T]{Status: StatusIdle}
}

func (r *Resource[T]) begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.snapshot.Status = StatusLoading
	r.snapshot.Err = nil
	return r.generation
}

func (r *Resource[T]) settle(generation uint64, data T, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if generation != r.generation {
		return false
	}
	if err != nil {
		r.snapshot.Status = StatusError
		r.snapshot.Err = err
		return true
	}
	r.snapshot.Status = StatusSuccess
	r.snapshot.Data = data
	r.snapshot.Err = nil
	return true
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return api.AsError(err).Message
}
