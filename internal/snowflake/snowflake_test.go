package snowflake_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"feedtrans/internal/snowflake"
)

func TestNextID_Unique(t *testing.T) {
	seen := map[int64]struct{}{}
	for i := 0; i < 1000; i++ {
		id := snowflake.NextID()
		require.Positive(t, id)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestInit_RejectsInvalidNode(t *testing.T) {
	require.Error(t, snowflake.Init(4096))
	require.NoError(t, snowflake.Init(7))
	require.Positive(t, snowflake.NextID())
}

func TestInit_NodeIDIsEncoded(t *testing.T) {
	require.NoError(t, snowflake.Init(42))
	first := snowflake.NextID()
	require.EqualValues(t, 42, (first>>12)&0x3FF)

	require.NoError(t, snowflake.Init(42))
	require.Greater(t, snowflake.NextID(), first, "re-initialising the same node keeps the sequence")
}
