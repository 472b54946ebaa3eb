package metadata_test

import (
	"math"
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/pagealloc/memutils"
	"github.com/vkngwrapper/pagealloc/memutils/metadata"
)

func TestBumpAlloc(t *testing.T) {
	var region metadata.BumpRegion
	region.Init(24, 1000)

	var stats memutils.DetailedStatistics
	stats.Clear()
	region.AddDetailedStatistics(&stats)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			PageCount:       1,
			PageBytes:       1000,
			AllocationCount: 0,
			AllocationBytes: 0,
		},
		UnusedRangeCount:   1,
		AllocationSizeMin:  math.MaxInt,
		AllocationSizeMax:  0,
		UnusedRangeSizeMin: 976,
		UnusedRangeSizeMax: 976,
	}, stats)

	offset, ok := region.Alloc(104)
	require.True(t, ok)
	require.Equal(t, 24, offset)

	offset, ok = region.Alloc(48)
	require.True(t, ok)
	require.Equal(t, 128, offset)
	require.Equal(t, 176, region.Cursor())

	stats.Clear()
	region.AddDetailedStatistics(&stats)
	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			PageCount:       1,
			PageBytes:       1000,
			AllocationCount: 2,
			AllocationBytes: 152,
		},
		UnusedRangeCount:   1,
		AllocationSizeMin:  48,
		AllocationSizeMax:  104,
		UnusedRangeSizeMin: 824,
		UnusedRangeSizeMax: 824,
	}, stats)

	require.NoError(t, region.Validate())
}

func TestBumpAllocFull(t *testing.T) {
	var region metadata.BumpRegion
	region.Init(24, 128)

	require.True(t, region.CanAlloc(104))
	require.False(t, region.CanAlloc(105))

	_, ok := region.Alloc(105)
	require.False(t, ok)
	require.Equal(t, 24, region.Cursor())
	require.True(t, region.IsEmpty())

	offset, ok := region.Alloc(104)
	require.True(t, ok)
	require.Equal(t, 24, offset)
	require.Equal(t, 0, region.SumFreeSize())

	_, ok = region.Alloc(8)
	require.False(t, ok)

	var stats memutils.DetailedStatistics
	stats.Clear()
	region.AddDetailedStatistics(&stats)
	require.Equal(t, 0, stats.UnusedRangeCount)
	require.NoError(t, region.Validate())
}

func TestBumpResize(t *testing.T) {
	var region metadata.BumpRegion
	region.Init(24, 256)

	first, ok := region.Alloc(24)
	require.True(t, ok)
	second, ok := region.Alloc(16)
	require.True(t, ok)

	require.False(t, region.IsLast(first, 24))
	require.True(t, region.IsLast(second, 16))

	// Only the most recent allocation can move the cursor
	require.False(t, region.Resize(first, 24, 8))
	require.Equal(t, 64, region.Cursor())

	require.True(t, region.Resize(second, 16, 8))
	require.Equal(t, 56, region.Cursor())

	require.True(t, region.Resize(second, 8, 200))
	require.Equal(t, 248, region.Cursor())

	require.False(t, region.Resize(second, 200, 209))
	require.Equal(t, 248, region.Cursor())

	require.True(t, region.Resize(second, 200, 208))
	require.Equal(t, 256, region.Cursor())
	require.Equal(t, 0, region.SumFreeSize())

	require.NoError(t, region.Validate())
}

func TestBumpClear(t *testing.T) {
	var region metadata.BumpRegion
	region.Init(24, 256)

	_, ok := region.Alloc(40)
	require.True(t, ok)
	_, ok = region.Alloc(40)
	require.True(t, ok)

	region.MarkFreed()
	require.Equal(t, 1, region.AllocationCount())
	require.Equal(t, 104, region.Cursor())

	region.MarkFreed()
	require.True(t, region.IsEmpty())

	region.MarkFreed()
	require.Equal(t, 0, region.AllocationCount())

	region.Clear()
	require.Equal(t, 24, region.Cursor())
	require.Equal(t, 232, region.SumFreeSize())
	require.NoError(t, region.Validate())
}

func TestBumpJson(t *testing.T) {
	var region metadata.BumpRegion
	region.Init(24, 128)

	_, ok := region.Alloc(40)
	require.True(t, ok)

	writer := jwriter.NewWriter()
	obj := writer.Object()
	region.PrintJson(&obj)
	obj.End()

	require.NoError(t, writer.Error())
	require.JSONEq(t, `{
		"TotalBytes": 128,
		"HeaderBytes": 24,
		"Cursor": 64,
		"UnusedBytes": 64,
		"Allocations": 1,
		"UnusedRanges": 1
	}`, string(writer.Bytes()))
}

func TestBumpHugeSizes(t *testing.T) {
	var region metadata.BumpRegion
	region.Init(24, 256)

	require.False(t, region.CanAlloc(math.MaxInt-7))
	require.False(t, region.CanAlloc(math.MaxInt))

	_, ok := region.Alloc(math.MaxInt - 7)
	require.False(t, ok)
	require.Equal(t, 24, region.Cursor())

	offset, ok := region.Alloc(8)
	require.True(t, ok)

	require.False(t, region.Resize(offset, 8, math.MaxInt-7))
	require.False(t, region.Resize(offset, 8, math.MaxInt))
	require.False(t, region.IsLast(offset, math.MaxInt))
	require.Equal(t, 32, region.Cursor())

	require.NoError(t, region.Validate())
}

func TestBumpResizeStats(t *testing.T) {
	var region metadata.BumpRegion
	region.Init(24, 256)

	_, ok := region.Alloc(24)
	require.True(t, ok)
	second, ok := region.Alloc(16)
	require.True(t, ok)

	require.True(t, region.Resize(second, 16, 200))
	minSize, maxSize, ok := region.AllocationSizeRange()
	require.True(t, ok)
	require.Equal(t, 24, minSize)
	require.Equal(t, 200, maxSize)

	require.True(t, region.Resize(second, 200, 8))

	var stats memutils.DetailedStatistics
	stats.Clear()
	region.AddDetailedStatistics(&stats)
	require.Equal(t, 8, stats.AllocationSizeMin)
	require.Equal(t, 24, stats.AllocationSizeMax)
	require.Equal(t, 32, stats.AllocationBytes)

	region.Clear()
	_, _, ok = region.AllocationSizeRange()
	require.False(t, ok)
}
