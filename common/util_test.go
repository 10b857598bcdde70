package common_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/common"
)

func TestByteSliceMap(t *testing.T) {
	bsl := common.NewByteSliceMap()
	k := []byte("somekey")
	v := []byte("somevalue")
	bsl.Put(k, v)

	v2, ok := bsl.Get(k)
	require.True(t, ok)
	require.Equal(t, "somevalue", string(v2))

	_, ok = bsl.Get([]byte("not_exists"))
	require.False(t, ok)
}

func TestAtomicBool(t *testing.T) {
	var b common.AtomicBool
	require.False(t, b.Get())
	b.Set(true)
	require.True(t, b.Get())
	require.True(t, b.CompareAndSet(true, false))
	require.False(t, b.Get())
	require.False(t, b.CompareAndSet(true, false))
}

func TestIncrementBytesBigEndian(t *testing.T) {
	inced := common.IncrementBytesBigEndian([]byte{0, 0, 255})
	require.Equal(t, []byte{0, 1, 0}, inced)
}
