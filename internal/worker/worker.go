package worker

import (
	"context"
	"fmt"
	"time"
)

type worker[T any] struct {
	id       int
	ctx      context.Context
	taskCh   <-chan Task[T]
	resultCh chan<- Result[T]
}

func newWorker[T any](ctx context.Context, id int, taskCh <-chan Task[T], resultCh chan<- Result[T]) *worker[T] {
	return &worker[T]{
		id:       id,
		ctx:      ctx,
		taskCh:   taskCh,
		resultCh: resultCh,
	}
}

// run executes tasks until the task channel is closed. Every task produces
// exactly one result.
func (w *worker[T]) run() {
	for task := range w.taskCh {
		start := time.Now()
		v, err := w.execute(task)
		w.resultCh <- Result[T]{
			ID:       task.ID,
			Value:    v,
			Err:      err,
			Duration: time.Since(start),
		}
	}
}

func (w *worker[T]) execute(task Task[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: worker %d task %d: %v", ErrTaskPanic, w.id, task.ID, r)
		}
	}()
	if err := w.ctx.Err(); err != nil {
		return v, err
	}
	return task.Fn(w.ctx)
}
