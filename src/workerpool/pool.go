package workerpool

import (
	"errors"
	"runtime/debug"
	"sync"

	"quote-server/src/logger"
)

var (
	ErrInvalidPoolSize = errors.New("worker pool size must be positive")
	ErrPoolStopped     = errors.New("worker pool is stopped")
	ErrTaskPanicked    = errors.New("task panicked")
)

// PoolStats is a point-in-time view of the pool counters.
type PoolStats struct {
	Workers   int    `json:"workers"`
	Busy      int    `json:"busy"`
	Queued    int    `json:"queued"`
	Completed uint64 `json:"completed"`
	Panicked  uint64 `json:"panicked"`
}

type job struct {
	task func()
	done chan error // nil for fire-and-forget submissions
}

// -----------------------------------------------------------------------------
// WorkerPool runs submitted tasks on a fixed set of long-lived goroutines.
//
// Tasks beyond the worker count wait in an unbounded FIFO queue. At most
// `workers` tasks execute at any instant and no task is dropped while the
// pool is running.
// -----------------------------------------------------------------------------

type WorkerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []job
	stopped bool

	workers   int
	busy      int
	completed uint64
	panicked  uint64

	wg     sync.WaitGroup
	logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewWorkerPool starts exactly n workers.
func NewWorkerPool(n int, log *logger.Logger) (*WorkerPool, error) {
	if n <= 0 {
		return nil, ErrInvalidPoolSize
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	p := &WorkerPool{workers: n, logger: log}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	p.logger.Debug("Started %d workers", n)
	return p, nil
}

// -----------------------------------------------------------------------------

// Submit enqueues task and returns immediately.
func (p *WorkerPool) Submit(task func()) error {
	return p.enqueue(job{task: task})
}

// -----------------------------------------------------------------------------

// SubmitAndWait enqueues task and blocks until it has run. It returns
// ErrTaskPanicked when the task panicked, and ErrPoolStopped when the pool
// was stopped before the task could start.
func (p *WorkerPool) SubmitAndWait(task func()) error {
	done := make(chan error, 1)
	if err := p.enqueue(job{task: task, done: done}); err != nil {
		return err
	}
	return <-done
}

// -----------------------------------------------------------------------------

func (p *WorkerPool) enqueue(j job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}
	p.queue = append(p.queue, j)
	p.cond.Signal()
	return nil
}

// -----------------------------------------------------------------------------

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			return
		}
		j := p.queue[0]
		p.queue[0] = job{}
		p.queue = p.queue[1:]
		p.busy++
		p.mu.Unlock()

		err := p.run(id, j.task)

		p.mu.Lock()
		p.busy--
		if err != nil {
			p.panicked++
		} else {
			p.completed++
		}
		p.mu.Unlock()

		if j.done != nil {
			j.done <- err
		}
	}
}

// -----------------------------------------------------------------------------

func (p *WorkerPool) run(id int, task func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker %d recovered from panic: %v\n%s", id, r, debug.Stack())
			err = ErrTaskPanicked
		}
	}()
	task()
	return nil
}

// -----------------------------------------------------------------------------

// Stats returns the current counters.
func (p *WorkerPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Workers:   p.workers,
		Busy:      p.busy,
		Queued:    len(p.queue),
		Completed: p.completed,
		Panicked:  p.panicked,
	}
}

// -----------------------------------------------------------------------------

// Stop rejects new submissions, discards queued tasks and waits for the
// running ones to return. Calling Stop more than once is a no-op.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	dropped := p.queue
	p.queue = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, j := range dropped {
		if j.done != nil {
			j.done <- ErrPoolStopped
		}
	}
	if len(dropped) > 0 {
		p.logger.Warning("Discarded %d queued tasks on stop", len(dropped))
	}

	p.wg.Wait()
	p.logger.Debug("All workers stopped")
}
