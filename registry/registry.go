// Package registry is the Tablespace Registry (C5): a concurrent map from
// tablespace name to its live manager. Structural mutation (insert,
// remove) is the Activator's job, performed only while the caller holds
// the node's general exclusive lock; lookups and snapshots need no lock
// of their own beyond what the caller already provides.
package registry

import (
	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/tablespace"
)

// Registry holds the plain map; it does not lock internally, since every
// operation on it is already made under the node's general lock (readers
// under the shared side, insert/remove under the exclusive side) - a
// second lock here would only mask misuse.
type Registry struct {
	managers map[statement.TableSpaceName]tablespace.Manager
}

func New() *Registry {
	return &Registry{managers: make(map[statement.TableSpaceName]tablespace.Manager)}
}

// Lookup returns the manager registered for name, if any. Callers must
// hold at least the shared side of the general lock.
func (r *Registry) Lookup(name statement.TableSpaceName) (tablespace.Manager, bool) {
	m, ok := r.managers[name]
	return m, ok
}

// Insert registers manager under name. Callers must hold the exclusive
// side of the general lock, and must only call this after manager.Start()
// has returned successfully.
func (r *Registry) Insert(name statement.TableSpaceName, manager tablespace.Manager) {
	r.managers[name] = manager
}

// Remove deregisters name, if present. Callers must hold the exclusive
// side of the general lock.
func (r *Registry) Remove(name statement.TableSpaceName) {
	delete(r.managers, name)
}

// Snapshot returns every registered name/manager pair by value, so the
// caller can iterate without holding any lock. Callers must hold at least
// the shared side of the general lock while calling Snapshot itself.
func (r *Registry) Snapshot() map[statement.TableSpaceName]tablespace.Manager {
	out := make(map[statement.TableSpaceName]tablespace.Manager, len(r.managers))
	for k, v := range r.managers {
		out[k] = v
	}
	return out
}
