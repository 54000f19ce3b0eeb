package concurrent

import (
	"fmt"
	"sync"
	"time"
)

// ErrScheduleTimeout returned by Pool to indicate that there no free
// goroutines during some period of time.
var ErrScheduleTimeout = fmt.Errorf("schedule error: timed out")

type JobFunc[T any, G any] func(job T) G

// WorkerPool is a bounded pool of worker goroutines. It carries two call
// styles: Start/AddJob/Wait/CollectResults for batch fan-out jobs with typed
// results, and Spawn/Schedule/ScheduleTimeout for fire-and-forget tasks
// dispatched from the netpoll readiness loop.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup

	sem  chan struct{}
	work chan func()
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[any, G]) worker(id int, jobFunc JobFunc[any, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		res := jobFunc(job)
		wp.results <- res
	}
}

func (wp *WorkerPool[any, G]) Start(jobFunc JobFunc[any, G]) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i, jobFunc)
	}
}

func (wp *WorkerPool[any, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[any, G]) AddJob(job any) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[any, G]) CollectResults() chan G {
	return wp.results
}

func (wp *WorkerPool[any, G]) Close() {
	close(wp.jobQueue)
	if wp.work != nil {
		close(wp.work)
	}
}

/*
goroutine pool for the websocket accept/read loop, in the style of
https://sergey.kamardin.org/articles/million-websocket-and-go/

at most numWorkers goroutines are alive at once; spawn of them are started
eagerly, the rest are spawned lazily when Schedule cannot hand the task to an
idle worker.
*/

func (wp *WorkerPool[any, G]) Spawn(spawn int) {
	wp.sem = make(chan struct{}, wp.numWorkers)
	wp.work = make(chan func())

	for i := 0; i < spawn; i++ {
		wp.sem <- struct{}{}
		go wp.funcWorker(func() {})
	}
}

func (wp *WorkerPool[any, G]) Schedule(task func()) {
	_ = wp.schedule(task, nil)
}

func (wp *WorkerPool[any, G]) ScheduleTimeout(timeout time.Duration, task func()) error {
	return wp.schedule(task, time.After(timeout))
}

func (wp *WorkerPool[any, G]) schedule(task func(), timeout <-chan time.Time) error {
	select {
	case <-timeout:
		return ErrScheduleTimeout
	case wp.work <- task:
		return nil
	case wp.sem <- struct{}{}:
		go wp.funcWorker(task)
		return nil
	}
}

func (wp *WorkerPool[any, G]) funcWorker(task func()) {
	defer func() { <-wp.sem }()

	task()
	for task := range wp.work {
		task()
	}
}
