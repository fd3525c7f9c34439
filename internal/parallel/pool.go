// Package parallel runs independent solves on a bounded set of goroutines.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolShutdown is returned when trying to submit tasks to a shutdown pool.
var ErrPoolShutdown = errors.New("worker pool has been shutdown")

// WorkerPool manages a fixed number of goroutines fed through a buffered task channel.
type WorkerPool struct {
	maxWorkers   int
	taskChan     chan func()
	shutdownChan chan struct{}
	workerWg     sync.WaitGroup
	once         sync.Once
}

// NewWorkerPool creates a pool of maxWorkers goroutines, one per CPU when maxWorkers is not positive.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		maxWorkers:   maxWorkers,
		taskChan:     make(chan func(), maxWorkers*2),
		shutdownChan: make(chan struct{}),
	}

	for range maxWorkers {
		pool.workerWg.Add(1)
		go pool.worker()
	}

	return pool
}

func (pool *WorkerPool) worker() {
	defer pool.workerWg.Done()

	for task := range pool.taskChan {
		task()
	}
}

// Submit queues task, blocking while the queue is full.
func (pool *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case <-pool.shutdownChan:
		return ErrPoolShutdown
	default:
	}

	select {
	case pool.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-pool.shutdownChan:
		return ErrPoolShutdown
	}
}

// Workers returns the number of goroutines of the pool.
func (pool *WorkerPool) Workers() int {
	return pool.maxWorkers
}

// Shutdown stops accepting tasks, runs the queued ones and waits for the workers to exit.
// Shutdown must not race with Submit.
func (pool *WorkerPool) Shutdown() {
	pool.once.Do(func() {
		close(pool.shutdownChan)
		close(pool.taskChan)
		pool.workerWg.Wait()
	})
}
