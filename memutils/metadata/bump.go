package metadata

import (
	"math"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/pagealloc/memutils"
)

// BumpRegion is a RegionMetadata implementation that represents a simple stack-style memory
// arena. Allocations are always made at the cursor, which only moves forward, except that the
// allocation that ends exactly at the cursor may be grown or shrunk in place. Individual
// allocations are never tracked, so memory before the cursor is only reclaimed by Clear.
//
// Sizes passed to BumpRegion are used as-is: rounding to an alignment or a size class is the
// responsibility of the consumer. Bounds are checked by subtraction, so sizes up to math.MaxInt are
// rejected rather than wrapping the cursor.
type BumpRegion struct {
	start  int
	end    int
	cursor int

	allocationCount int
	// Sizes of every allocation except the most recent one, which is the only one that can still
	// be resized
	settledSizeMin int
	settledSizeMax int
	lastSize       int
}

var _ RegionMetadata = &BumpRegion{}

// Init prepares this structure for allocations. The first allocation will be placed at start and
// no allocation may extend past end.
func (r *BumpRegion) Init(start, end int) {
	if start < 0 || end < start {
		panic("attempted to initialize a bump region with an invalid range")
	}

	r.start = start
	r.end = end
	r.Clear()
}

// Size returns the end offset of the region
func (r *BumpRegion) Size() int { return r.end }

// Start returns the first offset that allocations may be placed at
func (r *BumpRegion) Start() int { return r.start }

// Cursor returns the offset where the next allocation will be placed
func (r *BumpRegion) Cursor() int { return r.cursor }

// UsedBytes returns the number of bytes between the start of the region and the cursor
func (r *BumpRegion) UsedBytes() int { return r.cursor - r.start }

// SumFreeSize returns the number of bytes between the cursor and the end of the region
func (r *BumpRegion) SumFreeSize() int { return r.end - r.cursor }

// AllocationCount returns the number of allocations made since the last Clear, minus the
// number reported through MarkFreed
func (r *BumpRegion) AllocationCount() int { return r.allocationCount }

// IsEmpty will return true if this region has no live allocations
func (r *BumpRegion) IsEmpty() bool { return r.allocationCount == 0 }

// CanAlloc returns true if an allocation of size bytes would fit between the cursor and the
// end of the region
func (r *BumpRegion) CanAlloc(size int) bool {
	return size >= 0 && size <= r.end-r.cursor
}

// Alloc reserves size bytes at the cursor and returns their offset. If the allocation does not
// fit, the region is left unchanged and false is returned.
func (r *BumpRegion) Alloc(size int) (int, bool) {
	if !r.CanAlloc(size) {
		return 0, false
	}

	offset := r.cursor
	r.cursor += size
	r.allocationCount++

	if r.lastSize >= 0 {
		r.settle(r.lastSize)
	}
	r.lastSize = size

	return offset, true
}

func (r *BumpRegion) settle(size int) {
	if size < r.settledSizeMin {
		r.settledSizeMin = size
	}
	if size > r.settledSizeMax {
		r.settledSizeMax = size
	}
}

// AllocationSizeRange returns the smallest and largest allocation sizes in the region, reflecting
// any resize of the most recent allocation. ok is false if nothing has been allocated since the
// last Clear.
func (r *BumpRegion) AllocationSizeRange() (minSize, maxSize int, ok bool) {
	if r.lastSize < 0 {
		return 0, 0, false
	}

	minSize, maxSize = r.settledSizeMin, r.settledSizeMax
	if r.lastSize < minSize {
		minSize = r.lastSize
	}
	if r.lastSize > maxSize {
		maxSize = r.lastSize
	}

	return minSize, maxSize, true
}

// IsLast returns true if the allocation at offset with the provided size ends exactly at
// the cursor, that is, if it is the most recent allocation in the region
func (r *BumpRegion) IsLast(offset, size int) bool {
	return offset >= r.start && size >= 0 && size == r.cursor-offset
}

// Resize grows or shrinks the allocation at offset from oldSize to newSize without moving it.
// This only succeeds for the most recent allocation, and only if the new size still fits inside
// the region. When it fails, the region is left unchanged.
func (r *BumpRegion) Resize(offset, oldSize, newSize int) bool {
	if newSize < 0 || !r.IsLast(offset, oldSize) {
		return false
	}

	if newSize > r.end-offset {
		return false
	}

	r.cursor = offset + newSize
	r.lastSize = newSize
	return true
}

// MarkFreed reports that one of the region's allocations is no longer live. The cursor
// does not move.
func (r *BumpRegion) MarkFreed() {
	if r.allocationCount > 0 {
		r.allocationCount--
	}
}

// Clear instantly frees all allocations and returns the cursor to the start of the region
func (r *BumpRegion) Clear() {
	r.cursor = r.start
	r.allocationCount = 0
	r.settledSizeMin = math.MaxInt
	r.settledSizeMax = 0
	r.lastSize = -1
}

// Validate performs internal consistency checks on the metadata. When the implementation is
// functioning correctly, it should not be possible for this method to return an error.
func (r *BumpRegion) Validate() error {
	if r.start < 0 || r.end < r.start {
		return errors.Errorf("the region range [%d, %d) is invalid", r.start, r.end)
	}

	if r.cursor < r.start {
		return errors.Errorf("the cursor %d is before the start of the region %d", r.cursor, r.start)
	}

	if r.cursor > r.end {
		return errors.Errorf("the cursor %d is past the end of the region %d", r.cursor, r.end)
	}

	if r.allocationCount < 0 {
		return errors.Errorf("the region reports a negative allocation count %d", r.allocationCount)
	}

	if r.allocationCount == 0 && r.cursor == r.start {
		return nil
	}

	if r.cursor > r.start && r.lastSize < 0 {
		return errors.Errorf("the cursor has advanced %d bytes but no allocation was ever recorded", r.cursor-r.start)
	}

	return nil
}

// AddDetailedStatistics sums this region's allocation statistics into the statistics currently present
// in the provided memutils.DetailedStatistics object.
func (r *BumpRegion) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.Statistics.PageCount++
	stats.Statistics.PageBytes += r.end
	stats.Statistics.AllocationCount += r.allocationCount
	stats.Statistics.AllocationBytes += r.UsedBytes()

	if minSize, maxSize, ok := r.AllocationSizeRange(); ok && r.allocationCount > 0 {
		stats.AddAllocationSize(minSize)
		stats.AddAllocationSize(maxSize)
	}

	if free := r.SumFreeSize(); free > 0 {
		stats.AddUnusedRange(free)
	}
}

// AddStatistics sums this region's allocation statistics into the statistics currently present in the
// provided memutils.Statistics object.
func (r *BumpRegion) AddStatistics(stats *memutils.Statistics) {
	stats.PageCount++
	stats.PageBytes += r.end
	stats.AllocationCount += r.allocationCount
	stats.AllocationBytes += r.UsedBytes()
}

// PrintJson populates a json object with information about this region
func (r *BumpRegion) PrintJson(json *jwriter.ObjectState) {
	unusedRanges := 0
	if r.SumFreeSize() > 0 {
		unusedRanges = 1
	}

	json.Name("TotalBytes").Int(r.end)
	json.Name("HeaderBytes").Int(r.start)
	json.Name("Cursor").Int(r.cursor)
	json.Name("UnusedBytes").Int(r.SumFreeSize())
	json.Name("Allocations").Int(r.allocationCount)
	json.Name("UnusedRanges").Int(unusedRanges)
}
