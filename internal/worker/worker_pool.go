// Package worker runs independent tasks on a fixed set of goroutines.
//
// Lifecycle: NewPool, Start(n), any number of Submit/ReceiveResult calls,
// then Stop. Stop closes the task channel, waits for in-flight tasks and
// closes the result channel. Run wraps the whole cycle for a known batch.
package worker

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var (
	ErrPoolClosed     = errors.New("worker pool is closed")
	ErrPoolNotStarted = errors.New("worker pool not started")
	ErrPoolStarted    = errors.New("worker pool already started")
	// ErrTaskPanic wraps a panic recovered from a task function.
	ErrTaskPanic = errors.New("worker task panicked")
)

// Pool distributes tasks over its workers through a shared channel.
type Pool[T any] struct {
	taskCh   chan Task[T]
	resultCh chan Result[T]
	wg       sync.WaitGroup
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewPool creates a pool whose task and result channels hold bufferSize
// entries each.
func NewPool[T any](bufferSize int) *Pool[T] {
	return &Pool[T]{
		taskCh:   make(chan Task[T], bufferSize),
		resultCh: make(chan Result[T], bufferSize),
	}
}

// Start launches workerCount workers. Tasks see ctx; once it is done,
// tasks still queued fail with its error without running.
func (p *Pool[T]) Start(ctx context.Context, workerCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrPoolStarted
	}
	for i := 0; i < workerCount; i++ {
		w := newWorker(ctx, i, p.taskCh, p.resultCh)
		p.wg.Add(1)
		go func(w *worker[T]) {
			defer p.wg.Done()
			w.run()
		}(w)
	}
	p.started = true
	return nil
}

// Submit queues a task, blocking while the task buffer is full.
func (p *Pool[T]) Submit(task Task[T]) error {
	// Holding the lock across the send keeps Stop from closing taskCh
	// underneath it.
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolClosed
	}
	p.taskCh <- task
	return nil
}

// ReceiveResult blocks for the next result. It returns ErrPoolClosed once
// the pool is stopped and every result has been drained.
func (p *Pool[T]) ReceiveResult() (Result[T], error) {
	result, ok := <-p.resultCh
	if !ok {
		return Result[T]{}, ErrPoolClosed
	}
	return result, nil
}

// Stop stops accepting tasks, waits for the workers to finish what is
// queued, and closes the result channel. Results still buffered can be
// read afterwards.
func (p *Pool[T]) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.taskCh)
	p.mu.Unlock()

	p.wg.Wait()
	close(p.resultCh)
}

// Run executes tasks on up to workers goroutines and returns one result
// per task, sorted by task ID.
func Run[T any](ctx context.Context, workers int, tasks []Task[T]) ([]Result[T], error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	workers = max(1, min(workers, len(tasks)))

	p := NewPool[T](len(tasks))
	if err := p.Start(ctx, workers); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if err := p.Submit(t); err != nil {
			p.Stop()
			return nil, err
		}
	}
	p.Stop()

	results := make([]Result[T], 0, len(tasks))
	for {
		r, err := p.ReceiveResult()
		if errors.Is(err, ErrPoolClosed) {
			break
		}
		results = append(results, r)
	}
	slices.SortFunc(results, func(a, b Result[T]) int { return a.ID - b.ID })
	return results, nil
}
