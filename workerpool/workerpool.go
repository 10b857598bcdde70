// Package workerpool is the Worker Pool (C8): an unbounded pool of
// short-lived tasks used by tablespaces for asynchronous work. There is
// no ecosystem worker-pool library in play here (see DESIGN.md) - a task
// is simply run on its own goroutine, with Submit itself never blocking.
package workerpool

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/squareup/shardnode/common"
)

// Pool runs submitted tasks on their own goroutines and tracks them with
// a WaitGroup so Close can wait for in-flight work to finish. Once
// stopped, further submissions are rejected: the rejection is logged, not
// propagated to the caller, since Submit's contract is fire-and-forget.
type Pool struct {
	wg      sync.WaitGroup
	stopped common.AtomicBool
}

func New() *Pool {
	return &Pool{}
}

// Submit runs task on its own goroutine. Tasks are not guaranteed to run
// if the pool is shutting down concurrently with the call.
func (p *Pool) Submit(task func()) {
	if p.stopped.Get() {
		log.Warn("workerpool: rejecting task submitted after Close")
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer common.PanicHandler()
		task()
	}()
}

// Close stops accepting new work and waits for tasks already running to
// finish.
func (p *Pool) Close() {
	p.stopped.Set(true)
	p.wg.Wait()
}
