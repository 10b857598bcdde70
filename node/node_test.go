package node_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/conf"
	"github.com/squareup/shardnode/errors"
	"github.com/squareup/shardnode/metadata"
	"github.com/squareup/shardnode/node"
	"github.com/squareup/shardnode/pagestore"
	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/tablespace"
	"github.com/squareup/shardnode/walog"
)

func newTestNode(t *testing.T, nodeID string) *node.Manager {
	cnf := conf.NewTestConfig(nodeID)
	m := node.New(node.Config{
		NodeConfig:    cnf,
		MetadataStore: metadata.NewInMemory(),
		PageStore:     pagestore.NewInMemory(),
		NewLog: func(name statement.TableSpaceName) (walog.Log, error) {
			return walog.NewInMemory(), nil
		},
		NewManager: func(deps tablespace.Deps) tablespace.Manager {
			return tablespace.NewReference(deps)
		},
	})
	require.NoError(t, m.Start())
	return m
}

func TestDefaultBoot(t *testing.T) {
	m := newTestNode(t, "n1")
	defer m.Close() //nolint:errcheck

	require.True(t, m.WaitForTableSpace("default", 5*time.Second, true))
}

func TestCreateAndUseTableSpace(t *testing.T) {
	m := newTestNode(t, "n1")
	defer m.Close() //nolint:errcheck

	require.True(t, m.WaitForTableSpace("default", 5*time.Second, true))

	_, err := m.ExecuteStatement(statement.Statement{
		TableSpace: "ts2",
		Kind:       statement.KindCreateTableSpace,
		CreateTableSpace: &statement.CreateTableSpacePayload{
			Name:     "ts2",
			Leader:   "n1",
			Replicas: []statement.NodeId{"n1"},
		},
	})
	require.NoError(t, err)

	require.True(t, m.WaitForTableSpace("ts2", 5*time.Second, true))

	res, err := m.ExecuteUpdate(statement.Statement{
		TableSpace: "ts2",
		Kind:       statement.KindInsert,
		Key:        []byte("k1"),
		Value:      []byte("v1"),
	})
	require.NoError(t, err)
	require.Equal(t, statement.ResultKindDML, res.Kind)
}

func TestNotAReplicaFailsWithNoSuchTableSpace(t *testing.T) {
	m := newTestNode(t, "n1")
	defer m.Close() //nolint:errcheck

	require.True(t, m.WaitForTableSpace("default", 5*time.Second, true))

	_, err := m.ExecuteStatement(statement.Statement{
		TableSpace: "ts3",
		Kind:       statement.KindCreateTableSpace,
		CreateTableSpace: &statement.CreateTableSpacePayload{
			Name:     "ts3",
			Leader:   "n2",
			Replicas: []statement.NodeId{"n2"},
		},
	})
	require.NoError(t, err)

	require.False(t, m.WaitForTableSpace("ts3", 200*time.Millisecond, false))

	_, err = m.ExecuteStatement(statement.Statement{TableSpace: "ts3", Kind: statement.KindGet, Key: []byte("k1")})
	require.Error(t, err)
	require.Equal(t, errors.NoSuchTableSpace, errors.KindOf(err))
}

func TestCreateTableSpaceInTransactionFails(t *testing.T) {
	m := newTestNode(t, "n1")
	defer m.Close() //nolint:errcheck

	_, err := m.ExecuteStatement(statement.Statement{
		TableSpace:    "ts2",
		TransactionId: 1,
		Kind:          statement.KindCreateTableSpace,
		CreateTableSpace: &statement.CreateTableSpacePayload{
			Name:     "ts2",
			Leader:   "n1",
			Replicas: []statement.NodeId{"n1"},
		},
	})
	require.Error(t, err)
}

func TestCreateTableSpaceLeaderNotInReplicasFails(t *testing.T) {
	m := newTestNode(t, "n1")
	defer m.Close() //nolint:errcheck

	_, err := m.ExecuteStatement(statement.Statement{
		TableSpace: "ts2",
		Kind:       statement.KindCreateTableSpace,
		CreateTableSpace: &statement.CreateTableSpacePayload{
			Name:     "ts2",
			Leader:   "n2",
			Replicas: []statement.NodeId{"n1"},
		},
	})
	require.Error(t, err)
}

func TestFlush(t *testing.T) {
	m := newTestNode(t, "n1")
	defer m.Close() //nolint:errcheck

	require.True(t, m.WaitForTableSpace("default", 5*time.Second, true))
	require.NoError(t, m.Flush())
}
