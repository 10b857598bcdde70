// Package tablespace is the Tablespace Manager (C4): an opaque per-
// tablespace executor whose lifecycle is owned by the node that booted it.
package tablespace

import (
	"github.com/squareup/shardnode/metadata"
	"github.com/squareup/shardnode/pagestore"
	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/walog"
)

// Manager is the Tablespace Manager's contract.
type Manager interface {
	Start() error
	Close() error
	ExecuteStatement(stmt statement.Statement) (statement.StatementResult, error)
	Flush() error
	IsLeader() bool
	IsFailed() bool
	GetTableManager(name string) (TableManager, bool)
}

// TableManager is an opaque handle to a single table within a tablespace.
type TableManager interface {
	Name() string
}

// NodeView is the narrow capability a Manager is given at boot time: it
// can submit background work and look up sibling tablespaces, but it
// never sees the whole node manager - a tablespace cannot, for instance,
// close another tablespace or read the node's configuration.
type NodeView interface {
	Submit(task func())
	Lookup(name statement.TableSpaceName) (Manager, bool)
	MetadataStore() metadata.Store
	PageStore() pagestore.Store
}

// Deps bundles what a Manager needs to construct itself; kept as a struct
// rather than a long parameter list since implementations vary in which
// fields they use.
type Deps struct {
	Descriptor statement.TableSpaceDescriptor
	NodeId     statement.NodeId
	Log        walog.Log
	View       NodeView
}
