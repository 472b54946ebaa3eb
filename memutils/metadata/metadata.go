package metadata

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/pagealloc/memutils"
)

// RegionMetadata represents the bookkeeping for a single contiguous region of memory, usually one
// page, that allocations are carved out of. The region itself lives elsewhere: the metadata only
// deals in offsets, so the same implementation can manage a caller-owned buffer, an mmap'd page,
// or anything else addressable as a byte slice.
type RegionMetadata interface {
	// Init must be called before the RegionMetadata is used. start is the first offset that may be
	// handed out (offsets before it are reserved for a header) and end is the size of the region.
	Init(start, end int)
	// Size retrieves the end offset that the region was initialized with
	Size() int

	// Validate performs internal consistency checks on the metadata. When the implementation is
	// functioning correctly, it should not be possible for this method to return an error.
	Validate() error
	// AllocationCount returns the number of allocations currently counted as live in the region
	AllocationCount() int
	// SumFreeSize returns the number of bytes that can still be handed out
	SumFreeSize() int
	// IsEmpty will return true if this region has no live allocations
	IsEmpty() bool

	// AddDetailedStatistics sums this region's allocation statistics into the statistics currently present
	// in the provided memutils.DetailedStatistics object.
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
	// AddStatistics sums this region's allocation statistics into the statistics currently present in the
	// provided memutils.Statistics object.
	AddStatistics(stats *memutils.Statistics)

	// Clear instantly frees all allocations
	Clear()
	// PrintJson populates a json object with information about this region
	PrintJson(json *jwriter.ObjectState)
}
