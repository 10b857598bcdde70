// Package statement defines the data model exchanged between the Node
// Manager and its callers: tablespace identity and descriptors, and the
// tagged Statement/StatementResult variants dispatched to a tablespace.
package statement

import (
	"fmt"

	"github.com/squareup/shardnode/errors"
)

// NodeId identifies a process within the cluster. It is opaque and
// immutable for the lifetime of a node.
type NodeId string

// TableSpaceName is a non-empty identifier, unique cluster-wide.
type TableSpaceName string

// TableSpaceDescriptor is the cluster-level record of a tablespace's
// identity, leader and replica set. Descriptors are owned by the Metadata
// Store; the Node Manager only ever holds read copies.
type TableSpaceDescriptor struct {
	Name     TableSpaceName
	Leader   NodeId
	Replicas map[NodeId]struct{}
}

// HostsReplica reports whether nodeId is a replica of this tablespace.
func (d TableSpaceDescriptor) HostsReplica(nodeId NodeId) bool {
	_, ok := d.Replicas[nodeId]
	return ok
}

// TableSpaceDescriptorBuilder validates a descriptor before it is admitted
// to the catalog: the leader must be one of the replicas, and the replica
// set must be non-empty.
type TableSpaceDescriptorBuilder struct {
	name     TableSpaceName
	leader   NodeId
	replicas map[NodeId]struct{}
}

func NewTableSpaceDescriptorBuilder(name TableSpaceName, leader NodeId) *TableSpaceDescriptorBuilder {
	return &TableSpaceDescriptorBuilder{name: name, leader: leader, replicas: make(map[NodeId]struct{})}
}

func (b *TableSpaceDescriptorBuilder) AddReplica(nodeId NodeId) *TableSpaceDescriptorBuilder {
	b.replicas[nodeId] = struct{}{}
	return b
}

func (b *TableSpaceDescriptorBuilder) Build() (TableSpaceDescriptor, error) {
	if b.name == "" {
		return TableSpaceDescriptor{}, errors.NewInvalidStatementError("tablespace name must not be empty")
	}
	if len(b.replicas) == 0 {
		return TableSpaceDescriptor{}, errors.NewInvalidStatementError(
			fmt.Sprintf("tablespace %s must have at least one replica", b.name))
	}
	if _, ok := b.replicas[b.leader]; !ok {
		return TableSpaceDescriptor{}, errors.NewInvalidStatementError(
			fmt.Sprintf("tablespace %s leader %s is not one of its replicas", b.name, b.leader))
	}
	return TableSpaceDescriptor{Name: b.name, Leader: b.leader, Replicas: b.replicas}, nil
}

// Kind identifies the variant carried by a Statement.
type Kind int

const (
	KindCreateTableSpace Kind = iota
	KindInsert
	KindUpdate
	KindDelete
	KindGet
)

// CreateTableSpacePayload is the payload of a KindCreateTableSpace
// statement: the descriptor to register.
type CreateTableSpacePayload struct {
	Name     TableSpaceName
	Leader   NodeId
	Replicas []NodeId
}

// Statement is the tagged variant dispatched to the Node Manager.
// TransactionId == 0 denotes "no transaction".
type Statement struct {
	TableSpace    TableSpaceName
	TransactionId int64
	Kind          Kind
	CreateTableSpace *CreateTableSpacePayload
	Key           []byte
	Value         []byte
}

// ResultKind identifies the variant carried by a StatementResult.
type ResultKind int

const (
	ResultKindDDL ResultKind = iota
	ResultKindDML
	ResultKindGet
)

// StatementResult is the tagged variant returned by the Node Manager,
// matching the Kind of the Statement it answers.
type StatementResult struct {
	Kind        ResultKind
	UpdateCount int64
	Key         []byte
	Record      []byte
	Found       bool
}

func DDLResult() StatementResult {
	return StatementResult{Kind: ResultKindDDL}
}

func DMLResult(updateCount int64, key []byte) StatementResult {
	return StatementResult{Kind: ResultKindDML, UpdateCount: updateCount, Key: key}
}

func GetResult(record []byte, found bool) StatementResult {
	return StatementResult{Kind: ResultKindGet, Record: record, Found: found}
}
