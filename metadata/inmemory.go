package metadata

import (
	"sync"

	"github.com/google/btree"

	"github.com/squareup/shardnode/errors"
	"github.com/squareup/shardnode/statement"
)

// InMemory is a Store backed by an in-process btree, ordered by tablespace
// name. It never persists anything and never talks over the network - it
// exists for tests and single-node deployments that have no cluster to
// consult.
type InMemory struct {
	lock    sync.RWMutex
	started bool
	tree    *btree.BTree
}

func NewInMemory() *InMemory {
	return &InMemory{tree: btree.New(3)}
}

var _ Store = (*InMemory)(nil)

type descItem struct {
	desc statement.TableSpaceDescriptor
}

func (d *descItem) Less(than btree.Item) bool {
	return d.desc.Name < than.(*descItem).desc.Name //nolint:forcetypeassert
}

func (m *InMemory) Start() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.started = true
	return nil
}

func (m *InMemory) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.started = false
	return nil
}

func (m *InMemory) EnsureDefaultTableSpace(nodeId statement.NodeId, name statement.TableSpaceName) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.tree.Get(&descItem{desc: statement.TableSpaceDescriptor{Name: name}}) != nil {
		return nil
	}
	desc := statement.TableSpaceDescriptor{
		Name:     name,
		Leader:   nodeId,
		Replicas: map[statement.NodeId]struct{}{nodeId: {}},
	}
	m.tree.ReplaceOrInsert(&descItem{desc: desc})
	return nil
}

func (m *InMemory) ListTableSpaces() ([]statement.TableSpaceName, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	var names []statement.TableSpaceName
	m.tree.Ascend(func(i btree.Item) bool {
		names = append(names, i.(*descItem).desc.Name) //nolint:forcetypeassert
		return true
	})
	return names, nil
}

func (m *InMemory) Describe(name statement.TableSpaceName) (statement.TableSpaceDescriptor, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	item := m.tree.Get(&descItem{desc: statement.TableSpaceDescriptor{Name: name}})
	if item == nil {
		return statement.TableSpaceDescriptor{}, errors.NewNoSuchTableSpaceError(string(name))
	}
	return item.(*descItem).desc, nil //nolint:forcetypeassert
}

func (m *InMemory) Register(descriptor statement.TableSpaceDescriptor) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	key := &descItem{desc: statement.TableSpaceDescriptor{Name: descriptor.Name}}
	if m.tree.Get(key) != nil {
		return errors.NewDDLError("tablespace " + string(descriptor.Name) + " already exists")
	}
	m.tree.ReplaceOrInsert(&descItem{desc: descriptor})
	return nil
}
