package tablespace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/tablespace"
	"github.com/squareup/shardnode/walog"
)

func newTestManager(t *testing.T) *tablespace.Reference {
	desc, err := statement.NewTableSpaceDescriptorBuilder("ts1", "n1").AddReplica("n1").Build()
	require.NoError(t, err)
	mgr := tablespace.NewReference(tablespace.Deps{
		Descriptor: desc,
		NodeId:     "n1",
		Log:        walog.NewInMemory(),
	})
	require.NoError(t, mgr.Start())
	return mgr
}

func TestInsertThenGet(t *testing.T) {
	mgr := newTestManager(t)
	defer mgr.Close() //nolint:errcheck

	_, err := mgr.ExecuteStatement(statement.Statement{Kind: statement.KindInsert, Key: []byte("k1"), Value: []byte("v1")})
	require.NoError(t, err)

	res, err := mgr.ExecuteStatement(statement.Statement{Kind: statement.KindGet, Key: []byte("k1")})
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, []byte("v1"), res.Record)
}

func TestDeleteRemovesKey(t *testing.T) {
	mgr := newTestManager(t)
	defer mgr.Close() //nolint:errcheck

	_, err := mgr.ExecuteStatement(statement.Statement{Kind: statement.KindInsert, Key: []byte("k1"), Value: []byte("v1")})
	require.NoError(t, err)
	_, err = mgr.ExecuteStatement(statement.Statement{Kind: statement.KindDelete, Key: []byte("k1")})
	require.NoError(t, err)

	res, err := mgr.ExecuteStatement(statement.Statement{Kind: statement.KindGet, Key: []byte("k1")})
	require.NoError(t, err)
	require.False(t, res.Found)
}

func TestIsLeaderReflectsDescriptor(t *testing.T) {
	mgr := newTestManager(t)
	defer mgr.Close() //nolint:errcheck
	require.True(t, mgr.IsLeader())
	require.False(t, mgr.IsFailed())
}
