package alloc

import "fmt"

// MemoryBlock is the result of a successful allocation. It identifies the page or region the
// block was carved out of, the block's offset inside it, and Size, the allocator's rounded size
// for the block. Callers hand the same MemoryBlock (or the one most recently returned from
// ResizeInPlace) back to the allocator, so the allocator never has to remember per-block sizes.
type MemoryBlock struct {
	region []byte
	offset int
	span   int

	// Size is the number of usable bytes in the block. It is always the rounded size: a multiple
	// of memutils.Alignment, or a power of two for BucketAllocator.
	Size int
}

// Bytes returns the usable memory of this block. The returned slice has a capacity of exactly
// Size, so appending to it will never write into a neighboring block.
func (b MemoryBlock) Bytes() []byte {
	if b.region == nil {
		return nil
	}

	end := b.offset + b.Size
	return b.region[b.offset:end:end]
}

// Offset returns the position of the block's first byte inside its page or region
func (b MemoryBlock) Offset() int { return b.offset }

// End returns the offset just past the block's last usable byte
func (b MemoryBlock) End() int { return b.offset + b.Size }

// IsZero returns true for the zero MemoryBlock, which no allocator ever returns from a
// successful call
func (b MemoryBlock) IsZero() bool { return b.region == nil }

// SameRegion returns true if both blocks were carved out of the same page or region
func (b MemoryBlock) SameRegion(other MemoryBlock) bool {
	return sameBacking(b.region, other.region)
}

// Within returns true if this block was carved out of the provided page or region. The page
// must be the full slice the allocator was given, as returned from BucketAllocator.Head.
func (b MemoryBlock) Within(page []byte) bool {
	return sameBacking(b.region, page)
}

func (b MemoryBlock) String() string {
	if b.IsZero() {
		return "MemoryBlock{}"
	}

	return fmt.Sprintf("MemoryBlock{offset: %d, size: %d}", b.offset, b.Size)
}

func sameBacking(left, right []byte) bool {
	if len(left) == 0 || len(right) == 0 {
		return false
	}

	return &left[0] == &right[0]
}
