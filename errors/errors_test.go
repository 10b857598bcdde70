package errors_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/errors"
)

func TestKindOfNodeError(t *testing.T) {
	err := errors.NewNoSuchTableSpaceError("ts1")
	require.Equal(t, errors.NoSuchTableSpace, errors.KindOf(err))
}

func TestKindOfWrappedNodeError(t *testing.T) {
	err := errors.Wrap(errors.NewInvalidStatementError("bad"), "context")
	require.Equal(t, errors.InvalidStatement, errors.KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	require.Equal(t, errors.InternalError, errors.KindOf(err))
}
