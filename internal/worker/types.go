package worker

import (
	"context"
	"time"
)

// Task is one unit of work. ID is echoed in the Result so callers can
// match results that arrive out of order.
type Task[T any] struct {
	ID int
	Fn func(ctx context.Context) (T, error)
}

// Result is the outcome of one Task.
type Result[T any] struct {
	ID       int
	Value    T
	Err      error
	Duration time.Duration
}
