package common_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/common"
)

func TestKeyEncodeInt64RoundTrip(t *testing.T) {
	for _, v := range []int64{math.MinInt64, -1000, -1, 0, 1, 1000, math.MaxInt64} {
		buff := common.KeyEncodeInt64(nil, v)
		got, off := common.DecodeInt64Key(buff, 0)
		require.Equal(t, v, got)
		require.Equal(t, 8, off)
	}
}

func TestKeyEncodeInt64Ordering(t *testing.T) {
	vals := []int64{math.MinInt64, -1000, -1, 0, 1, 1000, math.MaxInt64}
	for i := 0; i < len(vals)-1; i++ {
		a := common.KeyEncodeInt64(nil, vals[i])
		b := common.KeyEncodeInt64(nil, vals[i+1])
		require.Negative(t, common.CompareKeys(a, b))
	}
}

func TestKeyEncodeTimestampMillisNullOrdersFirst(t *testing.T) {
	null := common.KeyEncodeTimestampMillis(nil, -1)
	real := common.KeyEncodeTimestampMillis(nil, 0)
	require.Negative(t, common.CompareKeys(null, real))

	got, _ := common.DecodeTimestampMillisKey(null, 0)
	require.Equal(t, int64(-1), got)
}

func TestKeyEncodeStringPrefixOrdersFirst(t *testing.T) {
	short := common.KeyEncodeString(nil, "ab")
	long := common.KeyEncodeString(nil, "abc")
	require.Negative(t, common.CompareKeys(short, long))
	require.Equal(t, "ab", common.DecodeStringKey(short, 0))
}
