package alloc

import "github.com/vkngwrapper/pagealloc/memutils"

// Allocator is the contract shared by every allocation strategy in this package. Code that needs
// memory accepts an Allocator, which leaves the choice of strategy, and of where the memory lives,
// to its caller.
type Allocator interface {
	// Allocate returns a block of at least size usable bytes. It fails with an error wrapping
	// memutils.ErrInvalidSize if size is not positive, memutils.ErrCapacityExceeded if the allocator
	// could never satisfy the request, or memutils.ErrOutOfMemory if a new page could not be obtained.
	Allocate(size int) (MemoryBlock, error)
	// Release returns a block to the allocator. What this means depends on the strategy: it may do
	// nothing, free a single block, or free every block the allocator has handed out.
	Release(block MemoryBlock) error
	// ResizeInPlace attempts to grow or shrink a block without moving it. This succeeds only when
	// block is the most recent allocation in its page and the new rounded size still fits. On success,
	// the updated block and true are returned. Otherwise, the original block and false are returned
	// and the allocator is left unchanged.
	ResizeInPlace(block MemoryBlock, newSize int) (MemoryBlock, bool)
}

// StatisticsSource is implemented by allocators that can report how much memory they hold
type StatisticsSource interface {
	AddStatistics(stats *memutils.Statistics)
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
}

// ManagedAllocator is implemented by every allocator in this package
type ManagedAllocator interface {
	Allocator
	StatisticsSource
	memutils.Validatable

	// BuildStatsString returns a json document describing the allocator's pages. If detailed is
	// true, every page is listed individually.
	BuildStatsString(detailed bool) string
	// Destroy returns every page the allocator owns to its provider. The allocator must not be used
	// afterward.
	Destroy() error
}

var _ ManagedAllocator = &FixedBufferAllocator{}
var _ ManagedAllocator = &ArenaAllocator{}
var _ ManagedAllocator = &BucketAllocator{}
