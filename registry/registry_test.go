package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/registry"
	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/tablespace"
	"github.com/squareup/shardnode/walog"
)

func TestInsertLookupRemove(t *testing.T) {
	r := registry.New()
	_, ok := r.Lookup("ts1")
	require.False(t, ok)

	desc, err := statement.NewTableSpaceDescriptorBuilder("ts1", "n1").AddReplica("n1").Build()
	require.NoError(t, err)
	mgr := tablespace.NewReference(tablespace.Deps{Descriptor: desc, NodeId: "n1", Log: walog.NewInMemory()})
	require.NoError(t, mgr.Start())

	r.Insert("ts1", mgr)
	got, ok := r.Lookup("ts1")
	require.True(t, ok)
	require.Same(t, mgr, got)

	r.Remove("ts1")
	_, ok = r.Lookup("ts1")
	require.False(t, ok)
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	r := registry.New()
	desc, err := statement.NewTableSpaceDescriptorBuilder("ts1", "n1").AddReplica("n1").Build()
	require.NoError(t, err)
	mgr := tablespace.NewReference(tablespace.Deps{Descriptor: desc, NodeId: "n1", Log: walog.NewInMemory()})
	require.NoError(t, mgr.Start())
	r.Insert("ts1", mgr)

	snap := r.Snapshot()
	r.Remove("ts1")

	require.Len(t, snap, 1)
	_, ok := r.Lookup("ts1")
	require.False(t, ok)
}
