package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/metrics"
)

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 256
)

// Task is a detached unit of best-effort work.
type Task func(ctx context.Context) error

type job struct {
	name string
	task Task
}

// Background runs detached tasks at most once on a bounded queue drained by
// a fixed set of workers. When the queue is full a task runs on its own
// goroutine, up to as many overflow goroutines as the queue holds. Failures
// are logged and counted, never retried.
type Background struct {
	metrics *metrics.Metrics

	mu       sync.RWMutex
	closed   bool
	queue    chan job
	overflow chan struct{}
	wg       sync.WaitGroup
}

// NewBackground starts workers goroutines draining a queue of size queue.
// Non-positive values use the defaults.
func NewBackground(workers, queue int, m *metrics.Metrics) *Background {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queue <= 0 {
		queue = DefaultQueueSize
	}
	b := &Background{metrics: m, queue: make(chan job, queue), overflow: make(chan struct{}, queue)}
	b.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go b.work()
	}
	return b
}

// Go schedules task without blocking. It reports false when the task was
// dropped because the pool is closed or both the queue and the overflow
// goroutines are saturated.
func (b *Background) Go(name string, task Task) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.drop(name, "closed")
		return false
	}
	j := job{name: name, task: task}
	select {
	case b.queue <- j:
		return true
	default:
	}
	select {
	case b.overflow <- struct{}{}:
		b.metrics.Background(name, "overflow")
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer func() { <-b.overflow }()
			b.execute(j)
		}()
		return true
	default:
		b.drop(name, "saturated")
		return false
	}
}

func (b *Background) drop(name, reason string) {
	b.metrics.Background(name, "dropped")
	log.Warn().Str("task", name).Str("reason", reason).Msg("background task dropped")
}

// Close stops accepting tasks, runs what is queued and waits for the workers
// and overflow goroutines.
func (b *Background) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Background) work() {
	defer b.wg.Done()
	for j := range b.queue {
		b.execute(j)
	}
}

func (b *Background) execute(j job) {
	if err := b.run(j); err != nil {
		b.metrics.Background(j.name, "failed")
		log.Warn().Err(err).Str("task", j.name).Msg("background task failed")
		return
	}
	b.metrics.Background(j.name, "ok")
}

func (b *Background) run(j job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return j.task(context.Background())
}
