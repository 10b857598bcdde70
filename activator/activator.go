// Package activator is the Activator Loop (C6): the single background
// task that reconciles the tablespace registry against the metadata
// store and evicts tablespaces that have reported failure.
package activator

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/squareup/shardnode/common"
	"github.com/squareup/shardnode/metadata"
	"github.com/squareup/shardnode/metrics"
	"github.com/squareup/shardnode/pagestore"
	"github.com/squareup/shardnode/registry"
	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/tablespace"
	"github.com/squareup/shardnode/walog"
)

// LogFactory creates a fresh Log for a tablespace about to be booted.
type LogFactory func(name statement.TableSpaceName) (walog.Log, error)

// ManagerFactory constructs the Manager for a tablespace about to be
// booted, but does not start it.
type ManagerFactory func(deps tablespace.Deps) tablespace.Manager

// Loop is the Activator: it owns no lock of its own - it takes the
// node's general lock by reference and acquires/releases it exactly the
// way spec'd, so statement dispatch and reconciliation never interleave
// mid-boot.
type Loop struct {
	nodeId     statement.NodeId
	lock       *sync.RWMutex
	metadata   metadata.Store
	pageStore  pagestore.Store
	registry   *registry.Registry
	view       tablespace.NodeView
	newLog     LogFactory
	newManager ManagerFactory

	wakeupCh chan struct{}
	doneCh   chan struct{}
	stopped  common.AtomicBool

	bootSuccesses metrics.Counter
	bootFailures  metrics.Counter
	evictions     metrics.Counter
}

type Deps struct {
	NodeId     statement.NodeId
	Lock       *sync.RWMutex
	Metadata   metadata.Store
	PageStore  pagestore.Store
	Registry   *registry.Registry
	View       tablespace.NodeView
	NewLog     LogFactory
	NewManager ManagerFactory

	BootSuccesses metrics.Counter
	BootFailures  metrics.Counter
	Evictions     metrics.Counter
}

func New(d Deps) *Loop {
	return &Loop{
		nodeId:        d.NodeId,
		lock:          d.Lock,
		metadata:      d.Metadata,
		pageStore:     d.PageStore,
		registry:      d.Registry,
		view:          d.View,
		newLog:        d.NewLog,
		newManager:    d.NewManager,
		bootSuccesses: d.BootSuccesses,
		bootFailures:  d.BootFailures,
		evictions:     d.Evictions,
		wakeupCh:      make(chan struct{}, 1),
		doneCh:        make(chan struct{}),
	}
}

// Start launches the loop's goroutine. It does not fire an initial
// wakeup itself - callers (the Node Manager, on start) trigger the first
// reconciliation explicitly.
func (a *Loop) Start() {
	go a.run()
}

// Trigger requests a reconciliation pass. It never blocks: if a wakeup
// is already pending, this one collapses into it.
func (a *Loop) Trigger() {
	select {
	case a.wakeupCh <- struct{}{}:
	default:
	}
}

// Stop requests termination and waits for the loop to perform orderly
// shutdown: close every manager (best-effort), then the Page Store, then
// the Metadata Store.
func (a *Loop) Stop() {
	a.stopped.Set(true)
	a.Trigger()
	<-a.doneCh
}

func (a *Loop) run() {
	for {
		if a.stopped.Get() {
			a.shutdown()
			close(a.doneCh)
			return
		}
		<-a.wakeupCh
		if a.stopped.Get() {
			a.shutdown()
			close(a.doneCh)
			return
		}
		a.reconcile()
	}
}

func (a *Loop) reconcile() {
	a.lock.Lock()
	assigned, err := a.metadata.ListTableSpaces()
	if err != nil {
		a.lock.Unlock()
		log.Errorf("activator: failed to list tablespaces, will retry: %v", err)
		return
	}
	for _, name := range assigned {
		if _, ok := a.registry.Lookup(name); ok {
			continue
		}
		a.bootTableSpace(name)
	}
	a.lock.Unlock()

	failed := a.collectFailed()

	a.lock.Lock()
	for _, name := range failed {
		mgr, ok := a.registry.Lookup(name)
		if !ok {
			continue
		}
		if err := mgr.Close(); err != nil {
			log.Errorf("activator: error closing failed tablespace %s: %v", name, err)
		}
		a.registry.Remove(name)
		if a.evictions != nil {
			a.evictions.Inc()
		}
	}
	a.lock.Unlock()
}

// bootTableSpace must be called with the exclusive lock held. On any
// failure it logs and returns, leaving the tablespace unregistered so it
// is retried on the next wakeup.
func (a *Loop) bootTableSpace(name statement.TableSpaceName) {
	descriptor, err := a.metadata.Describe(name)
	if err != nil {
		log.Errorf("activator: failed to describe tablespace %s: %v", name, err)
		a.bumpFailure()
		return
	}
	if !descriptor.HostsReplica(a.nodeId) {
		return
	}

	tsLog, err := a.newLog(name)
	if err != nil {
		log.Errorf("activator: failed to create log for tablespace %s: %v", name, err)
		a.bumpFailure()
		return
	}

	mgr := a.newManager(tablespace.Deps{
		Descriptor: descriptor,
		NodeId:     a.nodeId,
		Log:        tsLog,
		View:       a.view,
	})
	if err := mgr.Start(); err != nil {
		log.Errorf("activator: failed to boot tablespace %s: %v", name, err)
		if closeErr := tsLog.Close(); closeErr != nil {
			log.Errorf("activator: failed to close log after failed boot of %s: %v", name, closeErr)
		}
		a.bumpFailure()
		return
	}

	a.registry.Insert(name, mgr)
	if a.bootSuccesses != nil {
		a.bootSuccesses.Inc()
	}
}

func (a *Loop) bumpFailure() {
	if a.bootFailures != nil {
		a.bootFailures.Inc()
	}
}

// collectFailed scans the registry for isFailed managers without holding
// the exclusive lock - a manager transitioning to failed between this
// scan and the eviction pass just gets caught on the next reconciliation.
func (a *Loop) collectFailed() []statement.TableSpaceName {
	a.lock.RLock()
	snap := a.registry.Snapshot()
	a.lock.RUnlock()

	var failed []statement.TableSpaceName
	for name, mgr := range snap {
		if mgr.IsFailed() {
			failed = append(failed, name)
		}
	}
	return failed
}

func (a *Loop) shutdown() {
	a.lock.Lock()
	defer a.lock.Unlock()
	for name, mgr := range a.registry.Snapshot() {
		if err := mgr.Close(); err != nil {
			log.Errorf("activator: error closing tablespace %s during shutdown: %v", name, err)
		}
		a.registry.Remove(name)
	}
	if err := a.pageStore.Close(); err != nil {
		log.Errorf("activator: error closing page store during shutdown: %v", err)
	}
	if err := a.metadata.Close(); err != nil {
		log.Errorf("activator: error closing metadata store during shutdown: %v", err)
	}
}
