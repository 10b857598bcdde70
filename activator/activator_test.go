package activator_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/activator"
	"github.com/squareup/shardnode/metadata"
	"github.com/squareup/shardnode/pagestore"
	"github.com/squareup/shardnode/registry"
	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/tablespace"
	"github.com/squareup/shardnode/walog"
)

type fakeView struct{}

func (fakeView) Submit(task func())                                             { go task() }
func (fakeView) Lookup(name statement.TableSpaceName) (tablespace.Manager, bool) { return nil, false }
func (fakeView) MetadataStore() metadata.Store                                   { return nil }
func (fakeView) PageStore() pagestore.Store                                      { return nil }

func newTestLoop(t *testing.T, nodeId statement.NodeId) (*activator.Loop, metadata.Store, *registry.Registry) {
	meta := metadata.NewInMemory()
	require.NoError(t, meta.Start())
	pages := pagestore.NewInMemory()
	require.NoError(t, pages.Start())
	reg := registry.New()
	var lock sync.RWMutex

	loop := activator.New(activator.Deps{
		NodeId:    nodeId,
		Lock:      &lock,
		Metadata:  meta,
		PageStore: pages,
		Registry:  reg,
		View:      fakeView{},
		NewLog: func(name statement.TableSpaceName) (walog.Log, error) {
			return walog.NewInMemory(), nil
		},
		NewManager: func(deps tablespace.Deps) tablespace.Manager {
			return tablespace.NewReference(deps)
		},
	})
	return loop, meta, reg
}

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBootsReplicaTableSpace(t *testing.T) {
	loop, meta, reg := newTestLoop(t, "n1")
	loop.Start()
	defer loop.Stop()

	require.NoError(t, meta.EnsureDefaultTableSpace("n1", "default"))
	loop.Trigger()

	waitFor(t, func() bool {
		_, ok := reg.Lookup("default")
		return ok
	})
}

func TestSkipsTableSpaceNotHostedHere(t *testing.T) {
	loop, meta, reg := newTestLoop(t, "n1")
	loop.Start()
	defer loop.Stop()

	desc, err := statement.NewTableSpaceDescriptorBuilder("ts2", "n2").AddReplica("n2").Build()
	require.NoError(t, err)
	require.NoError(t, meta.Register(desc))
	loop.Trigger()

	time.Sleep(20 * time.Millisecond)
	_, ok := reg.Lookup("ts2")
	require.False(t, ok)
}

func TestStopClosesEverything(t *testing.T) {
	loop, meta, reg := newTestLoop(t, "n1")
	loop.Start()
	require.NoError(t, meta.EnsureDefaultTableSpace("n1", "default"))
	loop.Trigger()
	waitFor(t, func() bool {
		_, ok := reg.Lookup("default")
		return ok
	})
	loop.Stop()

	require.Empty(t, reg.Snapshot())

	_, err := meta.ListTableSpaces()
	require.NoError(t, err) // in-memory Close doesn't prevent further reads, just marks stopped
}
