package alloc

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/pagealloc/internal/utils"
	"github.com/vkngwrapper/pagealloc/memutils"
	"github.com/vkngwrapper/pagealloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// FixedBufferHeaderSize is the number of bytes reserved at the start of the caller's buffer for the
// allocator's own bookkeeping. The first allocation is placed immediately after it.
const FixedBufferHeaderSize int = 24

// FixedBufferAllocator bump-allocates out of a single caller-owned buffer. It never requests pages
// and never frees individual blocks: the memory goes back to the caller along with the buffer, or
// is recycled all at once with Reset.
type FixedBufferAllocator struct {
	logger *slog.Logger
	mutex  utils.OptionalMutex

	buffer []byte
	region metadata.BumpRegion
}

// NewFixedBufferAllocator creates a FixedBufferAllocator over buffer. The buffer's size includes the
// allocator header, so a buffer smaller than FixedBufferHeaderSize fails with
// memutils.ErrCapacityExceeded. Only options.Flags is used.
func NewFixedBufferAllocator(logger *slog.Logger, buffer []byte, options CreateOptions) (*FixedBufferAllocator, error) {
	if len(buffer) < FixedBufferHeaderSize {
		return nil, errors.Wrapf(memutils.ErrCapacityExceeded, "a fixed buffer must be at least %d bytes, but the provided buffer is %d bytes",
			FixedBufferHeaderSize, len(buffer))
	}

	allocator := &FixedBufferAllocator{
		logger: resolveLogger(logger),
		mutex:  utils.OptionalMutex{UseMutex: options.Flags&CreateSynchronized != 0},
		buffer: buffer,
	}
	allocator.region.Init(FixedBufferHeaderSize, len(buffer))

	return allocator, nil
}

func (a *FixedBufferAllocator) Allocate(size int) (MemoryBlock, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("FixedBufferAllocator::Allocate", slog.Int("size", size))

	if size <= 0 {
		return MemoryBlock{}, errors.Wrapf(memutils.ErrInvalidSize, "requested %d bytes", size)
	}

	if size > a.region.SumFreeSize() {
		return MemoryBlock{}, errors.Wrapf(memutils.ErrCapacityExceeded, "requested %d bytes but the fixed buffer only has %d bytes remaining",
			size, a.region.SumFreeSize())
	}

	rounded := memutils.AlignUp(size, memutils.Alignment)
	offset, ok := a.region.Alloc(rounded)
	if !ok {
		return MemoryBlock{}, errors.Wrapf(memutils.ErrCapacityExceeded, "requested %d bytes but the fixed buffer only has %d bytes remaining",
			rounded, a.region.SumFreeSize())
	}

	memutils.DebugValidate(memutils.ValidateFunc(a.validate))

	return MemoryBlock{
		region: a.buffer,
		offset: offset,
		span:   rounded,
		Size:   rounded,
	}, nil
}

// Release does nothing: memory in a fixed buffer can only be reclaimed with Reset
func (a *FixedBufferAllocator) Release(block MemoryBlock) error {
	a.logger.Debug("FixedBufferAllocator::Release", slog.Int("offset", block.offset), slog.Int("size", block.Size))
	return nil
}

func (a *FixedBufferAllocator) ResizeInPlace(block MemoryBlock, newSize int) (MemoryBlock, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("FixedBufferAllocator::ResizeInPlace",
		slog.Int("offset", block.offset),
		slog.Int("size", block.Size),
		slog.Int("newSize", newSize))

	if newSize <= 0 || newSize > a.region.Size()-a.region.Start() || !block.Within(a.buffer) {
		return block, false
	}

	rounded := memutils.AlignUp(newSize, memutils.Alignment)
	if !a.region.Resize(block.offset, block.Size, rounded) {
		return block, false
	}

	memutils.DebugValidate(memutils.ValidateFunc(a.validate))

	block.Size = rounded
	block.span = rounded
	return block, true
}

// Reset rewinds the allocator to its freshly-created state. Every block previously handed out
// becomes invalid.
func (a *FixedBufferAllocator) Reset() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("FixedBufferAllocator::Reset", slog.Int("used", a.region.UsedBytes()))
	a.region.Clear()
}

// Remaining returns the number of bytes that can still be allocated
func (a *FixedBufferAllocator) Remaining() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.region.SumFreeSize()
}

// Destroy does nothing, since the buffer belongs to the caller
func (a *FixedBufferAllocator) Destroy() error {
	return nil
}

func (a *FixedBufferAllocator) Validate() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.validate()
}

func (a *FixedBufferAllocator) validate() error {
	if a.region.Start() != FixedBufferHeaderSize {
		return errors.Newf("the fixed buffer's first allocation offset is %d but should be %d", a.region.Start(), FixedBufferHeaderSize)
	}

	if a.region.Size() != len(a.buffer) {
		return errors.Newf("the fixed buffer tracks %d bytes but the buffer is %d bytes", a.region.Size(), len(a.buffer))
	}

	if a.region.Cursor()%int(memutils.Alignment) != 0 {
		return errors.Newf("the fixed buffer cursor %d is not aligned to %d", a.region.Cursor(), memutils.Alignment)
	}

	return a.region.Validate()
}

func (a *FixedBufferAllocator) AddStatistics(stats *memutils.Statistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.region.AddStatistics(stats)
}

func (a *FixedBufferAllocator) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.region.AddDetailedStatistics(stats)
}

func (a *FixedBufferAllocator) BuildStatsString(detailed bool) string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var stats memutils.DetailedStatistics
	stats.Clear()
	a.region.AddDetailedStatistics(&stats)

	if !detailed {
		return buildStatsString("FixedBuffer", &stats, nil)
	}

	return buildStatsString("FixedBuffer", &stats, func(json *jwriter.ObjectState) {
		bufferObj := json.Name("Buffer").Object()
		a.region.PrintJson(&bufferObj)
		bufferObj.End()
	})
}
