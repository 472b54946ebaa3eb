package memutils_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/pagealloc/memutils"
)

func TestAlignUp(t *testing.T) {
	require.Equal(t, 0, memutils.AlignUp(0, 8))
	require.Equal(t, 8, memutils.AlignUp(1, 8))
	require.Equal(t, 8, memutils.AlignUp(8, 8))
	require.Equal(t, 16, memutils.AlignUp(11, 8))
	require.Equal(t, 24, memutils.AlignUp(20, 8))
	require.Equal(t, 4096, memutils.AlignUp(4095, 4096))
}

func TestAlignDown(t *testing.T) {
	require.Equal(t, 0, memutils.AlignDown(7, 8))
	require.Equal(t, 16, memutils.AlignDown(23, 8))
	require.Equal(t, 24, memutils.AlignDown(24, 8))
}

func TestCeilLog2(t *testing.T) {
	require.Equal(t, 0, memutils.CeilLog2(0))
	require.Equal(t, 0, memutils.CeilLog2(1))
	require.Equal(t, 1, memutils.CeilLog2(2))
	require.Equal(t, 2, memutils.CeilLog2(3))
	require.Equal(t, 5, memutils.CeilLog2(20))
	require.Equal(t, 5, memutils.CeilLog2(32))
	require.Equal(t, 9, memutils.CeilLog2(300))
	require.Equal(t, 11, memutils.CeilLog2(2048))
	require.Equal(t, 12, memutils.CeilLog2(2049))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(4096, "pageSize"))
	require.NoError(t, memutils.CheckPow2(uint(1), "one"))

	err := memutils.CheckPow2(4000, "pageSize")
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
	require.Contains(t, err.Error(), "pageSize is 4000")

	require.Error(t, memutils.CheckPow2(0, "zero"))
}

func TestPoison(t *testing.T) {
	data := make([]byte, 64)
	require.False(t, memutils.IsPoisoned(data))

	memutils.Poison(data)
	require.True(t, memutils.IsPoisoned(data))

	data[63] = 0
	require.False(t, memutils.IsPoisoned(data))
	require.True(t, memutils.IsPoisoned(data[:63]))
	require.True(t, memutils.IsPoisoned(nil))
}
