package alloc

import "sync"

type synchronizedAllocator struct {
	mutex     sync.Mutex
	allocator Allocator
}

// Synchronized wraps any Allocator so that it can be shared between goroutines. Allocators in this
// package can instead be created with CreateSynchronized.
func Synchronized(allocator Allocator) Allocator {
	if _, alreadySynchronized := allocator.(*synchronizedAllocator); alreadySynchronized {
		return allocator
	}

	return &synchronizedAllocator{allocator: allocator}
}

func (a *synchronizedAllocator) Allocate(size int) (MemoryBlock, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.allocator.Allocate(size)
}

func (a *synchronizedAllocator) Release(block MemoryBlock) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.allocator.Release(block)
}

func (a *synchronizedAllocator) ResizeInPlace(block MemoryBlock, newSize int) (MemoryBlock, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.allocator.ResizeInPlace(block, newSize)
}
