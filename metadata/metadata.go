// Package metadata is the Metadata Store (C1): the cluster-wide catalog of
// tablespaces and their replica assignments.
package metadata

import (
	"github.com/squareup/shardnode/statement"
)

// Store is the Metadata Store's contract. Implementations are the
// extension point between an in-memory single-node deployment and a
// replicated, cluster-wide one; the Node Manager and Activator hold it
// only by this interface.
type Store interface {
	Start() error
	Close() error

	// EnsureDefaultTableSpace idempotently registers a tablespace named by
	// the node's configured default, with nodeId as its sole replica and
	// leader, if no such tablespace already exists.
	EnsureDefaultTableSpace(nodeId statement.NodeId, name statement.TableSpaceName) error

	ListTableSpaces() ([]statement.TableSpaceName, error)

	// Describe fails with errors.NoSuchTableSpace if name is not registered.
	Describe(name statement.TableSpaceName) (statement.TableSpaceDescriptor, error)

	// Register fails if a descriptor with the same name already exists.
	// Registration is atomic: readers never observe a partially written
	// descriptor.
	Register(descriptor statement.TableSpaceDescriptor) error
}
