package alloc

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/pagealloc/internal/utils"
	"github.com/vkngwrapper/pagealloc/memutils"
	"github.com/vkngwrapper/pagealloc/memutils/pages"
	"golang.org/x/exp/slog"
)

// ArenaPageHeaderSize is the number of bytes reserved at the start of every arena page
const ArenaPageHeaderSize int = 24

// ArenaAllocator bump-allocates out of a chain of pages. Each allocation goes to the first page in
// the chain with room for it, and a new page is appended to the end of the chain when none has
// room. Individual blocks are never freed: Release returns the entire chain to the provider.
type ArenaAllocator struct {
	logger   *slog.Logger
	mutex    utils.OptionalMutex
	provider pages.Provider
	pageSize int

	pages []*pageRegion
}

// NewArenaAllocator creates an ArenaAllocator and acquires its first page
func NewArenaAllocator(logger *slog.Logger, options CreateOptions) (*ArenaAllocator, error) {
	base, err := options.build(logger)
	if err != nil {
		return nil, err
	}

	allocator := &ArenaAllocator{
		logger:   base.logger,
		mutex:    utils.OptionalMutex{UseMutex: base.synchronized},
		provider: base.provider,
		pageSize: base.pageSize,
	}

	_, err = allocator.appendPage()
	if err != nil {
		return nil, err
	}

	return allocator, nil
}

func (a *ArenaAllocator) appendPage() (*pageRegion, error) {
	page, err := acquirePageRegion(a.provider, a.pageSize, ArenaPageHeaderSize)
	if err != nil {
		return nil, err
	}

	a.pages = append(a.pages, page)
	a.logger.Debug("ArenaAllocator::appendPage", slog.Int("pageCount", len(a.pages)))

	return page, nil
}

// MaxAllocationSize returns the largest request this allocator can satisfy
func (a *ArenaAllocator) MaxAllocationSize() int {
	return a.pageSize - ArenaPageHeaderSize
}

func (a *ArenaAllocator) Allocate(size int) (MemoryBlock, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("ArenaAllocator::Allocate", slog.Int("size", size))

	if size <= 0 {
		return MemoryBlock{}, errors.Wrapf(memutils.ErrInvalidSize, "requested %d bytes", size)
	}

	if size > a.MaxAllocationSize() {
		return MemoryBlock{}, errors.Wrapf(memutils.ErrCapacityExceeded, "requested %d bytes but an arena page holds at most %d bytes",
			size, a.MaxAllocationSize())
	}

	rounded := memutils.AlignUp(size, memutils.Alignment)

	for index, page := range a.pages {
		offset, ok := page.region.Alloc(rounded)
		if ok {
			a.logger.Debug("    Returned from existing page", slog.Int("page", index))
			memutils.DebugValidate(memutils.ValidateFunc(a.validate))
			return page.block(offset, rounded), nil
		}
	}

	page, err := a.appendPage()
	if err != nil {
		return MemoryBlock{}, err
	}

	offset, ok := page.region.Alloc(rounded)
	if !ok {
		panic("a freshly-acquired arena page could not hold an allocation that passed the capacity check")
	}

	memutils.DebugValidate(memutils.ValidateFunc(a.validate))
	return page.block(offset, rounded), nil
}

// Release returns every page in the arena to the provider, no matter which block is passed.
// Every block previously handed out becomes invalid. The arena may continue to be used
// afterward: the next allocation acquires a fresh page.
func (a *ArenaAllocator) Release(block MemoryBlock) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("ArenaAllocator::Release", slog.Int("pageCount", len(a.pages)))

	return a.releaseAll()
}

func (a *ArenaAllocator) releaseAll() error {
	err := releasePages(a.provider, a.pages)
	a.pages = nil

	if err != nil {
		return errors.Wrap(err, "failed to release arena pages")
	}

	return nil
}

func (a *ArenaAllocator) ResizeInPlace(block MemoryBlock, newSize int) (MemoryBlock, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("ArenaAllocator::ResizeInPlace",
		slog.Int("offset", block.offset),
		slog.Int("size", block.Size),
		slog.Int("newSize", newSize))

	if newSize <= 0 || newSize > a.MaxAllocationSize() {
		return block, false
	}

	_, page := findPage(a.pages, block)
	if page == nil {
		return block, false
	}

	rounded := memutils.AlignUp(newSize, memutils.Alignment)
	if !page.region.Resize(block.offset, block.Size, rounded) {
		return block, false
	}

	memutils.DebugValidate(memutils.ValidateFunc(a.validate))

	block.Size = rounded
	block.span = rounded
	return block, true
}

// PageCount returns the number of pages currently in the chain
func (a *ArenaAllocator) PageCount() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return len(a.pages)
}

// Destroy returns every page to the provider
func (a *ArenaAllocator) Destroy() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.logger.Debug("ArenaAllocator::Destroy", slog.Int("pageCount", len(a.pages)))

	return a.releaseAll()
}

func (a *ArenaAllocator) Validate() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.validate()
}

func (a *ArenaAllocator) validate() error {
	err := validatePageChain(a.pages, a.pageSize, ArenaPageHeaderSize)
	if err != nil {
		return errors.Wrap(err, "arena chain is invalid")
	}

	for index, page := range a.pages {
		if page.region.Cursor()%int(memutils.Alignment) != 0 {
			return errors.Newf("arena page %d cursor %d is not aligned to %d", index, page.region.Cursor(), memutils.Alignment)
		}
	}

	return nil
}

func (a *ArenaAllocator) AddStatistics(stats *memutils.Statistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	for _, page := range a.pages {
		page.region.AddStatistics(stats)
	}
}

func (a *ArenaAllocator) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.addDetailedStatistics(stats)
}

func (a *ArenaAllocator) addDetailedStatistics(stats *memutils.DetailedStatistics) {
	for _, page := range a.pages {
		page.region.AddDetailedStatistics(stats)
	}
}

func (a *ArenaAllocator) BuildStatsString(detailed bool) string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var stats memutils.DetailedStatistics
	stats.Clear()
	a.addDetailedStatistics(&stats)

	if !detailed {
		return buildStatsString("Arena", &stats, nil)
	}

	return buildStatsString("Arena", &stats, func(json *jwriter.ObjectState) {
		printPages(json, "Pages", a.pages)
	})
}
