package alloc

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/pagealloc/internal/utils"
	"github.com/vkngwrapper/pagealloc/memutils"
	"github.com/vkngwrapper/pagealloc/memutils/pages"
	"golang.org/x/exp/slog"
)

// BucketPageHeaderSize is the number of bytes reserved at the start of every bucket page
const BucketPageHeaderSize int = 24

// BucketAllocator is a general-purpose allocator that sorts requests into memutils.BucketCount
// power-of-two size classes. Class k hands out 2^k-byte slots from a chain of pages that only
// holds slots of that size, always bumping from the newest page (the chain's head).
//
// Released blocks are overwritten with memutils.Sentinel, and releasing the same block twice fails
// with memutils.ErrInvalidBlock. After every release, the head page of
// the released block's class is checked, and if it holds no live blocks and every byte after
// its header is the sentinel, it is unlinked and returned to the provider. Only the head page is
// ever checked, so a page that empties out while it is not the head stays in the chain until the
// allocator is destroyed.
type BucketAllocator struct {
	logger   *slog.Logger
	mutex    utils.OptionalMutex
	provider pages.Provider
	pageSize int

	// The last page of each class is its head
	classes [memutils.BucketCount][]*pageRegion
}

// NewBucketAllocator creates a BucketAllocator. No pages are acquired until the first allocation
// in each size class.
func NewBucketAllocator(logger *slog.Logger, options CreateOptions) (*BucketAllocator, error) {
	base, err := options.build(logger)
	if err != nil {
		return nil, err
	}

	return &BucketAllocator{
		logger:   base.logger,
		mutex:    utils.OptionalMutex{UseMutex: base.synchronized},
		provider: base.provider,
		pageSize: base.pageSize,
	}, nil
}

// SizeClass returns the size class that a request of size bytes is served from, and the size of
// that class's slots
func SizeClass(size int) (class int, slotSize int) {
	class = memutils.CeilLog2(size)
	return class, 1 << class
}

// MaxAllocationSize returns the largest request this allocator can satisfy
func (a *BucketAllocator) MaxAllocationSize() int {
	for class := memutils.BucketCount - 1; class >= 0; class-- {
		slotSize := 1 << class
		if slotSize <= a.pageSize-BucketPageHeaderSize {
			return slotSize
		}
	}

	return 0
}

func (a *BucketAllocator) head(class int) *pageRegion {
	chain := a.classes[class]
	if len(chain) == 0 {
		return nil
	}

	return chain[len(chain)-1]
}

func (a *BucketAllocator) Allocate(size int) (MemoryBlock, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("BucketAllocator::Allocate", slog.Int("size", size))

	if size <= 0 {
		return MemoryBlock{}, errors.Wrapf(memutils.ErrInvalidSize, "requested %d bytes", size)
	}

	class, slotSize := SizeClass(size)
	if class >= memutils.BucketCount || slotSize > a.pageSize-BucketPageHeaderSize {
		return MemoryBlock{}, errors.Wrapf(memutils.ErrCapacityExceeded, "requested %d bytes but the largest size class holds %d bytes",
			size, a.MaxAllocationSize())
	}

	page := a.head(class)
	if page == nil || !page.region.CanAlloc(slotSize) {
		var err error
		page, err = acquirePageRegion(a.provider, a.pageSize, BucketPageHeaderSize)
		if err != nil {
			return MemoryBlock{}, err
		}

		a.classes[class] = append(a.classes[class], page)
		a.logger.Debug("    Created new page", slog.Int("class", class), slog.Int("pageCount", len(a.classes[class])))
	}

	offset, ok := page.region.Alloc(slotSize)
	if !ok {
		panic("a bucket head page could not hold a slot after being checked for room")
	}

	memutils.DebugCheckPoisoned(page.data[offset:offset+slotSize], "a freshly-allocated bucket slot")
	memutils.DebugValidate(memutils.ValidateFunc(a.validate))

	return page.block(offset, slotSize), nil
}

// Release overwrites the block with memutils.Sentinel and returns the head page of its size class
// to the provider if that page no longer holds anything
func (a *BucketAllocator) Release(block MemoryBlock) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("BucketAllocator::Release", slog.Int("offset", block.offset), slog.Int("size", block.Size))

	if block.IsZero() {
		return errors.Wrap(memutils.ErrInvalidBlock, "cannot release the zero block")
	}

	class, page, err := a.owningPage(block)
	if err != nil {
		return err
	}

	slot := uint((block.offset - page.region.Start()) / block.span)
	if !page.markReleased(slot) {
		return errors.Wrapf(memutils.ErrInvalidBlock, "%s was already released", block)
	}

	memutils.Poison(page.data[block.offset : block.offset+block.span])
	page.region.MarkFreed()

	err = a.reclaimHead(class)
	if err != nil {
		return err
	}

	memutils.DebugValidate(memutils.ValidateFunc(a.validate))
	return nil
}

func (a *BucketAllocator) owningPage(block MemoryBlock) (int, *pageRegion, error) {
	if memutils.CheckPow2(block.span, "block size") != nil {
		return 0, nil, errors.Wrapf(memutils.ErrInvalidBlock, "%s does not hold a size class slot", block)
	}

	class := memutils.CeilLog2(block.span)
	if class >= memutils.BucketCount {
		return 0, nil, errors.Wrapf(memutils.ErrInvalidBlock, "%s does not hold a size class slot", block)
	}

	_, page := findPage(a.classes[class], block)
	if page == nil {
		return 0, nil, errors.Wrapf(memutils.ErrInvalidBlock, "%s is not in any page of size class %d", block, class)
	}

	if block.offset < page.region.Start() ||
		block.offset+block.span > page.region.Cursor() ||
		(block.offset-page.region.Start())%block.span != 0 {
		return 0, nil, errors.Wrapf(memutils.ErrInvalidBlock, "%s is not a slot of size class %d", block, class)
	}

	return class, page, nil
}

func (a *BucketAllocator) reclaimHead(class int) error {
	page := a.head(class)
	if page == nil || !page.region.IsEmpty() {
		return nil
	}

	if !memutils.IsPoisoned(page.data[BucketPageHeaderSize:]) {
		return nil
	}

	chain := a.classes[class]
	chain[len(chain)-1] = nil
	a.classes[class] = chain[:len(chain)-1]

	a.logger.Debug("    Reclaimed empty page", slog.Int("class", class), slog.Int("pageCount", len(a.classes[class])))

	err := a.provider.ReleasePage(page.data)
	if err != nil {
		return errors.Wrapf(err, "failed to release an empty page from size class %d", class)
	}

	return nil
}

// ResizeInPlace changes the reported size of a block without moving it. This only succeeds for the
// most recent allocation in its size class, and only within that class. Shrinking overwrites the
// bytes past newSize with memutils.Sentinel. The block continues to occupy its original slot, so
// growing it back later succeeds as long as it stays the most recent allocation.
func (a *BucketAllocator) ResizeInPlace(block MemoryBlock, newSize int) (MemoryBlock, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("BucketAllocator::ResizeInPlace",
		slog.Int("offset", block.offset),
		slog.Int("size", block.Size),
		slog.Int("newSize", newSize))

	if newSize <= 0 || block.IsZero() || memutils.CheckPow2(block.span, "block size") != nil {
		return block, false
	}

	class := memutils.CeilLog2(block.span)
	if class >= memutils.BucketCount {
		return block, false
	}

	head := a.head(class)
	if head == nil || !block.Within(head.data) || !head.region.IsLast(block.offset, block.span) {
		return block, false
	}

	newClass, newSlotSize := SizeClass(newSize)
	if newClass > class {
		return block, false
	}

	// Size is caller-visible, so never trust it past the slot
	oldEnd := block.Size
	if oldEnd > block.span {
		oldEnd = block.span
	}

	if newSize < oldEnd {
		memutils.Poison(head.data[block.offset+newSize : block.offset+oldEnd])
	}

	block.Size = newSlotSize
	return block, true
}

// Head returns the newest page of a size class, which is the page new slots of that class are
// allocated from, or nil if the class has no pages
func (a *BucketAllocator) Head(class int) []byte {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if class < 0 || class >= memutils.BucketCount {
		return nil
	}

	page := a.head(class)
	if page == nil {
		return nil
	}

	return page.data
}

// PageCount returns the number of pages in a size class's chain
func (a *BucketAllocator) PageCount(class int) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if class < 0 || class >= memutils.BucketCount {
		return 0
	}

	return len(a.classes[class])
}

// Destroy returns every page to the provider. Blocks that were never released are logged, and
// Destroy returns an error if there were any, although their pages are released regardless.
func (a *BucketAllocator) Destroy() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("BucketAllocator::Destroy")

	leaked := 0
	var err error
	for class := range a.classes {
		for _, page := range a.classes[class] {
			if !page.region.IsEmpty() {
				leaked += page.region.AllocationCount()
				a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] page destroyed with live blocks",
					slog.Int("class", class),
					slog.Int("slotSize", 1<<class),
					slog.Int("liveBlocks", page.region.AllocationCount()),
				)
			}
		}

		err = errors.CombineErrors(err, releasePages(a.provider, a.classes[class]))
		a.classes[class] = nil
	}

	if err != nil {
		return errors.Wrap(err, "failed to release bucket pages")
	}

	if leaked > 0 {
		return errors.Newf("%d blocks were not released before the destruction of this allocator", leaked)
	}

	return nil
}

func (a *BucketAllocator) Validate() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.validate()
}

func (a *BucketAllocator) validate() error {
	for class := range a.classes {
		err := validatePageChain(a.classes[class], a.pageSize, BucketPageHeaderSize)
		if err != nil {
			return errors.Wrapf(err, "size class %d chain is invalid", class)
		}

		slotSize := 1 << class
		for index, page := range a.classes[class] {
			used := page.region.UsedBytes()
			if used%slotSize != 0 {
				return errors.Newf("size class %d page %d has used %d bytes, which is not a multiple of the %d-byte slot size",
					class, index, used, slotSize)
			}

			if page.region.AllocationCount() > used/slotSize {
				return errors.Newf("size class %d page %d reports %d live blocks but has only handed out %d",
					class, index, page.region.AllocationCount(), used/slotSize)
			}
		}
	}

	return nil
}

func (a *BucketAllocator) AddStatistics(stats *memutils.Statistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for class := range a.classes {
		for _, page := range a.classes[class] {
			page.region.AddStatistics(stats)
		}
	}
}

func (a *BucketAllocator) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.addDetailedStatistics(stats)
}

func (a *BucketAllocator) addDetailedStatistics(stats *memutils.DetailedStatistics) {
	for class := range a.classes {
		for _, page := range a.classes[class] {
			page.region.AddDetailedStatistics(stats)
		}
	}
}

func (a *BucketAllocator) BuildStatsString(detailed bool) string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var stats memutils.DetailedStatistics
	stats.Clear()
	a.addDetailedStatistics(&stats)

	if !detailed {
		return buildStatsString("Bucket", &stats, nil)
	}

	return buildStatsString("Bucket", &stats, func(json *jwriter.ObjectState) {
		classesObj := json.Name("Classes").Object()
		defer classesObj.End()

		for class := range a.classes {
			if len(a.classes[class]) == 0 {
				continue
			}

			classObj := classesObj.Name(strconv.Itoa(class)).Object()
			classObj.Name("SlotSize").Int(1 << class)
			printPages(&classObj, "Pages", a.classes[class])
			classObj.End()
		}
	})
}
