// Package parallel implements the bounded worker pool backing
// session.Session's thread pool: a fixed concurrency budget with blocking
// drain semantics, grounded on gogpu-gg's internal/parallel.WorkerPool but
// simplified to a counting semaphore rather than per-worker work-stealing
// queues, since the Session only needs "at most N in flight" and "wait for
// everything enqueued so far", not raw rendering throughput.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool bounds concurrent execution of submitted work to Size()
// goroutines in flight at once. Run enqueues (blocking once the pool is
// saturated); WaitForAll drains every run submitted before the call
// returns; TrySynchronize is a non-blocking probe of the same condition.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	active atomic.Int64
}

// New creates a pool with the given concurrency budget. size <= 0 uses
// runtime.GOMAXPROCS(0), matching the teacher's WorkerPool default.
func New(size int) *WorkerPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &WorkerPool{sem: make(chan struct{}, size)}
}

// Size returns the pool's concurrency budget (maxThreads in the data
// model).
func (p *WorkerPool) Size() int { return cap(p.sem) }

// ActiveCount returns the number of runnables currently executing. Always
// <= Size(), per the Session invariant threadPool.activeCount <= maxThreads.
func (p *WorkerPool) ActiveCount() int { return int(p.active.Load()) }

// Run enqueues fn to execute on a pool goroutine. Ordering across
// concurrently running fns is not guaranteed; Run itself may block if the
// pool is already at its concurrency budget.
func (p *WorkerPool) Run(fn func()) {
	p.wg.Add(1)
	p.sem <- struct{}{}
	p.active.Add(1)
	go func() {
		defer func() {
			p.active.Add(-1)
			<-p.sem
			p.wg.Done()
		}()
		fn()
	}()
}

// WaitForAll blocks until every runnable submitted via Run up to this call
// has completed.
func (p *WorkerPool) WaitForAll() { p.wg.Wait() }

// TrySynchronize is WaitForAll's non-blocking variant: it reports whether
// the pool currently has no in-flight work, without waiting.
func (p *WorkerPool) TrySynchronize() bool { return p.active.Load() == 0 }
