// Package node is the Node Manager (C7): the public façade that owns a
// node's tablespace registry, drives the Activator, and dispatches
// statements to the right Tablespace Manager.
package node

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/squareup/shardnode/activator"
	"github.com/squareup/shardnode/conf"
	"github.com/squareup/shardnode/errors"
	"github.com/squareup/shardnode/interruptor"
	"github.com/squareup/shardnode/metadata"
	"github.com/squareup/shardnode/metrics"
	"github.com/squareup/shardnode/pagestore"
	"github.com/squareup/shardnode/registry"
	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/tablespace"
	"github.com/squareup/shardnode/workerpool"
)

const waitForInterruptName = "node.waitFor"

// Manager is the Node Manager. It exclusively owns the Registry, the
// Activator task and the Worker Pool; it shares the Metadata Store and
// Page Store by reference, tying their lifecycle to its own.
type Manager struct {
	cnf *conf.Config

	generalLock lockView
	registry    *registry.Registry
	pool        *workerpool.Pool
	activatorLp *activator.Loop

	metadataStore metadata.Store
	pageStore     pagestore.Store
	newLog        activator.LogFactory
	newManager    activator.ManagerFactory

	stopped bool

	metricsFactory   metrics.Factory
	statementCounter metrics.Counter
	bootSuccesses    metrics.Counter
	bootFailures     metrics.Counter
	evictions        metrics.Counter
}

// Config bundles the collaborators a Manager needs; concrete
// implementations of these are the extension points between local and
// clustered deployments.
type Config struct {
	NodeConfig    *conf.Config
	MetadataStore metadata.Store
	PageStore     pagestore.Store
	NewLog        activator.LogFactory
	NewManager    activator.ManagerFactory

	MetricsFactory metrics.Factory
}

func New(c Config) *Manager {
	newManager := c.NewManager
	if newManager == nil {
		newManager = func(deps tablespace.Deps) tablespace.Manager {
			return tablespace.NewReference(deps)
		}
	}
	return &Manager{
		cnf:            c.NodeConfig,
		registry:       registry.New(),
		pool:           workerpool.New(),
		metadataStore:  c.MetadataStore,
		pageStore:      c.PageStore,
		newLog:         c.NewLog,
		newManager:     newManager,
		metricsFactory: c.MetricsFactory,
	}
}

// initMetrics creates the node's counters if a Factory was configured and
// started; a nil factory (the common case in tests) leaves every counter
// nil, and callers already guard nil counters before use.
func (m *Manager) initMetrics() {
	if m.metricsFactory == nil {
		return
	}
	if c, err := m.metricsFactory.CreateCounter("shardnode_statements_total", "statements dispatched to a tablespace"); err == nil {
		m.statementCounter = c
	} else {
		log.Warnf("node: metrics disabled, failed to create statement counter: %v", err)
	}
	if c, err := m.metricsFactory.CreateCounter("shardnode_tablespace_boots_total", "successful tablespace boots"); err == nil {
		m.bootSuccesses = c
	}
	if c, err := m.metricsFactory.CreateCounter("shardnode_tablespace_boot_failures_total", "failed tablespace boot attempts"); err == nil {
		m.bootFailures = c
	}
	if c, err := m.metricsFactory.CreateCounter("shardnode_tablespace_evictions_total", "tablespaces evicted after failure"); err == nil {
		m.evictions = c
	}
}

// nodeView implements tablespace.NodeView on behalf of a Manager without
// exposing the Manager itself to tablespace implementations.
type nodeView struct {
	m *Manager
}

func (v nodeView) Submit(task func()) {
	v.m.Submit(task)
}

func (v nodeView) Lookup(name statement.TableSpaceName) (tablespace.Manager, bool) {
	v.m.generalLock.RLock()
	defer v.m.generalLock.RUnlock()
	return v.m.registry.Lookup(name)
}

func (v nodeView) MetadataStore() metadata.Store {
	return v.m.metadataStore
}

func (v nodeView) PageStore() pagestore.Store {
	return v.m.pageStore
}

// Start starts the Metadata Store, ensures the configured default
// tablespace exists assigned to this node, starts the Page Store,
// launches the Activator, and fires one wakeup. Any failure here is
// fatal: the node cannot come up in a half-started state.
func (m *Manager) Start() error {
	m.initMetrics()

	if err := m.metadataStore.Start(); err != nil {
		return errors.NewMetadataUnavailableError(err)
	}
	nodeId := statement.NodeId(m.cnf.NodeID)
	defaultTS := statement.TableSpaceName(m.cnf.DefaultTableSpace)
	if err := m.metadataStore.EnsureDefaultTableSpace(nodeId, defaultTS); err != nil {
		return errors.NewMetadataUnavailableError(err)
	}

	m.generalLock.Lock()
	err := m.pageStore.Start()
	m.generalLock.Unlock()
	if err != nil {
		return errors.NewStorageUnavailableError(err)
	}

	m.activatorLp = activator.New(activator.Deps{
		NodeId:        nodeId,
		Lock:          &m.generalLock.RWMutex,
		Metadata:      m.metadataStore,
		PageStore:     m.pageStore,
		Registry:      m.registry,
		View:          nodeView{m: m},
		NewLog:        m.newLog,
		NewManager:    m.newManager,
		BootSuccesses: m.bootSuccesses,
		BootFailures:  m.bootFailures,
		Evictions:     m.evictions,
	})
	m.activatorLp.Start()
	m.activatorLp.Trigger()
	return nil
}

// Close sets stopped, fires a wakeup, joins the Activator (which performs
// collaborator teardown), then shuts down the worker pool.
func (m *Manager) Close() error {
	m.generalLock.Lock()
	m.stopped = true
	m.generalLock.Unlock()

	m.activatorLp.Stop()
	m.pool.Close()
	return nil
}

// ExecuteStatement dispatches stmt to the tablespace it names, or handles
// CreateTableSpace directly.
func (m *Manager) ExecuteStatement(stmt statement.Statement) (statement.StatementResult, error) {
	if stmt.TableSpace == "" {
		return statement.StatementResult{}, errors.NewInvalidStatementError("statement must name a tablespace")
	}
	if stmt.Kind == statement.KindCreateTableSpace {
		if stmt.TransactionId != 0 {
			return statement.StatementResult{}, errors.NewInvalidStatementError("CreateTableSpace cannot run inside a transaction")
		}
		return m.createTableSpace(stmt)
	}

	m.generalLock.RLock()
	mgr, ok := m.registry.Lookup(stmt.TableSpace)
	m.generalLock.RUnlock()
	if !ok {
		return statement.StatementResult{}, errors.NewNoSuchTableSpaceError(string(stmt.TableSpace))
	}
	if m.statementCounter != nil {
		m.statementCounter.Inc()
	}
	return mgr.ExecuteStatement(stmt)
}

func (m *Manager) createTableSpace(stmt statement.Statement) (statement.StatementResult, error) {
	if stmt.CreateTableSpace == nil {
		return statement.StatementResult{}, errors.NewInvalidStatementError("CreateTableSpace statement missing payload")
	}
	payload := stmt.CreateTableSpace
	builder := statement.NewTableSpaceDescriptorBuilder(payload.Name, payload.Leader)
	for _, r := range payload.Replicas {
		builder.AddReplica(r)
	}
	descriptor, err := builder.Build()
	if err != nil {
		return statement.StatementResult{}, err
	}
	if err := m.metadataStore.Register(descriptor); err != nil {
		return statement.StatementResult{}, err
	}
	m.activatorLp.Trigger()
	return statement.DDLResult(), nil
}

// Get is a narrow wrapper over ExecuteStatement that asserts the result
// shape.
func (m *Manager) Get(stmt statement.Statement) (statement.StatementResult, error) {
	stmt.Kind = statement.KindGet
	res, err := m.ExecuteStatement(stmt)
	if err != nil {
		return res, err
	}
	if res.Kind != statement.ResultKindGet {
		return statement.StatementResult{}, errors.NewStatementExecutionError("get did not produce a get result")
	}
	return res, nil
}

// ExecuteUpdate is a narrow wrapper over ExecuteStatement for DML.
func (m *Manager) ExecuteUpdate(stmt statement.Statement) (statement.StatementResult, error) {
	return m.ExecuteStatement(stmt)
}

// WaitForTableSpace polls the registry until name exists (and, if
// requireLeader, reports isLeader), sleeping the configured poll interval
// between attempts.
func (m *Manager) WaitForTableSpace(name statement.TableSpaceName, timeout time.Duration, requireLeader bool) bool {
	itor := &interruptor.Interruptor{}
	deadline := time.Now().Add(timeout)
	for {
		m.generalLock.RLock()
		mgr, ok := m.registry.Lookup(name)
		m.generalLock.RUnlock()
		if ok && (!requireLeader || mgr.IsLeader()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		if interruptor.GetInterruptManager().MaybeInterrupt(waitForInterruptName, itor) {
			return false
		}
		time.Sleep(m.pollInterval())
	}
}

// WaitForTable is as WaitForTableSpace but additionally requires the
// tablespace's table catalog to contain table.
func (m *Manager) WaitForTable(space statement.TableSpaceName, table string, timeout time.Duration, requireLeader bool) bool {
	itor := &interruptor.Interruptor{}
	deadline := time.Now().Add(timeout)
	for {
		m.generalLock.RLock()
		mgr, ok := m.registry.Lookup(space)
		m.generalLock.RUnlock()
		if ok && (!requireLeader || mgr.IsLeader()) {
			if _, hasTable := mgr.GetTableManager(table); hasTable {
				return true
			}
		}
		if time.Now().After(deadline) {
			return false
		}
		if interruptor.GetInterruptManager().MaybeInterrupt(waitForInterruptName, itor) {
			return false
		}
		time.Sleep(m.pollInterval())
	}
}

func (m *Manager) pollInterval() time.Duration {
	if m.cnf != nil && m.cnf.WaitPollInterval > 0 {
		return m.cnf.WaitPollInterval
	}
	return conf.DefaultWaitPollInterval
}

// Flush snapshots the registry under the shared lock, then flushes each
// manager without holding the lock. The first flush error encountered is
// returned; the rest are attempted regardless.
func (m *Manager) Flush() error {
	m.generalLock.RLock()
	snap := m.registry.Snapshot()
	m.generalLock.RUnlock()

	var first error
	for name, mgr := range snap {
		if err := mgr.Flush(); err != nil {
			log.Errorf("node: flush failed for tablespace %s: %v", name, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Submit offers task to the Worker Pool for background execution.
func (m *Manager) Submit(task func()) {
	m.pool.Submit(task)
}
