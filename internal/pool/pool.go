package pool

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/metrics"
)

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("pool: stopped")

// Task is one unit of background work. The context is the pool's own, never
// the context of the request that submitted the task.
type Task func(ctx context.Context)

// WorkerPool runs tasks in the background. With size <= 0 every task gets its
// own goroutine; otherwise a fixed number of workers drain a bounded queue.
type WorkerPool struct {
	size   int
	tasks  chan Task
	logger *zap.Logger

	ctx context.Context
	wg  sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewWorkerPool creates a pool. queueDepth is ignored in unbounded mode.
func NewWorkerPool(size, queueDepth int, logger *zap.Logger) *WorkerPool {
	p := &WorkerPool{
		size:   size,
		logger: logger,
		ctx:    context.Background(),
	}
	if size > 0 {
		if queueDepth < 0 {
			queueDepth = 0
		}
		p.tasks = make(chan Task, queueDepth)
	}
	return p
}

// Bounded reports whether the pool uses a fixed number of workers.
func (p *WorkerPool) Bounded() bool {
	return p.size > 0
}

// Start launches the workers of a bounded pool. Tasks receive ctx.
// Call Stop to drain the queue and wait for them to finish.
func (p *WorkerPool) Start(ctx context.Context) {
	p.ctx = ctx
	if !p.Bounded() {
		p.logger.Info("Starting worker pool", zap.String("mode", "unbounded"))
		return
	}

	p.logger.Info("Starting worker pool",
		zap.Int("pool_size", p.size),
		zap.Int("queue_depth", cap(p.tasks)),
	)
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit schedules a task without waiting for it. A bounded pool whose queue
// is full rejects the task with domain.ErrQueueFull.
func (p *WorkerPool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	if !p.Bounded() {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(-1, task)
		}()
		return nil
	}

	select {
	case p.tasks <- task:
		metrics.QueueDepth.Inc()
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Stop rejects further tasks, lets queued and running tasks finish, and waits.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		if p.tasks != nil {
			close(p.tasks)
		}
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for task := range p.tasks {
		metrics.QueueDepth.Dec()
		p.run(id, task)
	}
	p.logger.Debug("Task queue closed", zap.Int("worker_id", id))
}

// run executes one task and keeps a panic from taking the worker down.
func (p *WorkerPool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.Int("worker_id", id),
				zap.Any("panic", r),
			)
		}
	}()
	task(p.ctx)
}
