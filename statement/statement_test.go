package statement_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/errors"
	"github.com/squareup/shardnode/statement"
)

func TestBuilderRequiresLeaderInReplicas(t *testing.T) {
	_, err := statement.NewTableSpaceDescriptorBuilder("ts1", "n2").
		AddReplica("n1").
		Build()
	require.Error(t, err)
	require.Equal(t, errors.InvalidStatement, errors.KindOf(err))
}

func TestBuilderRequiresNonEmptyReplicas(t *testing.T) {
	_, err := statement.NewTableSpaceDescriptorBuilder("ts1", "n1").Build()
	require.Error(t, err)
	require.Equal(t, errors.InvalidStatement, errors.KindOf(err))
}

func TestBuilderOK(t *testing.T) {
	desc, err := statement.NewTableSpaceDescriptorBuilder("ts1", "n1").
		AddReplica("n1").
		AddReplica("n2").
		Build()
	require.NoError(t, err)
	require.Equal(t, statement.TableSpaceName("ts1"), desc.Name)
	require.True(t, desc.HostsReplica("n1"))
	require.True(t, desc.HostsReplica("n2"))
	require.False(t, desc.HostsReplica("n3"))
}
