package alloc

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/pagealloc/memutils"
	"github.com/vkngwrapper/pagealloc/memutils/metadata"
	"github.com/vkngwrapper/pagealloc/memutils/pages"
)

// pageRegion is one page acquired from a provider, along with the cursor that hands out its bytes.
// The first headerSize bytes of the page are reserved and never handed out.
type pageRegion struct {
	data   []byte
	region metadata.BumpRegion

	// Slots that have been released, for allocators that hand out fixed-size slots
	released *bitset.BitSet
}

func acquirePageRegion(provider pages.Provider, pageSize, headerSize int) (*pageRegion, error) {
	data, err := provider.AcquirePage(pageSize)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to acquire a %d-byte page", pageSize)
	}

	if len(data) != pageSize {
		// Return it so that the provider's accounting is not thrown off
		releaseErr := provider.ReleasePage(data)
		return nil, errors.CombineErrors(
			errors.Newf("provider returned a %d-byte page when %d bytes were requested", len(data), pageSize),
			releaseErr)
	}

	page := &pageRegion{data: data}
	page.region.Init(headerSize, pageSize)
	return page, nil
}

func (p *pageRegion) block(offset, size int) MemoryBlock {
	return MemoryBlock{
		region: p.data,
		offset: offset,
		span:   size,
		Size:   size,
	}
}

// markReleased records that the slot at index has been released. It returns false if the slot
// had already been released.
func (p *pageRegion) markReleased(index uint) bool {
	if p.released == nil {
		p.released = bitset.New(0)
	}

	if p.released.Test(index) {
		return false
	}

	p.released.Set(index)
	return true
}

func (p *pageRegion) validate(pageSize, headerSize int) error {
	if len(p.data) != pageSize {
		return errors.Newf("page is %d bytes but should be %d bytes", len(p.data), pageSize)
	}

	if p.region.Start() != headerSize || p.region.Size() != pageSize {
		return errors.Newf("page region [%d, %d) should be [%d, %d)", p.region.Start(), p.region.Size(), headerSize, pageSize)
	}

	return p.region.Validate()
}

func findPage(pageRegions []*pageRegion, block MemoryBlock) (int, *pageRegion) {
	for index, page := range pageRegions {
		if block.Within(page.data) {
			return index, page
		}
	}

	return -1, nil
}

func releasePages(provider pages.Provider, pageRegions []*pageRegion) error {
	var err error
	for _, page := range pageRegions {
		err = errors.CombineErrors(err, provider.ReleasePage(page.data))
	}

	return err
}

func validatePageChain(pageRegions []*pageRegion, pageSize, headerSize int) error {
	seen := swiss.NewMap[*byte, int](uint32(len(pageRegions)))
	for index, page := range pageRegions {
		if page == nil || len(page.data) == 0 {
			return errors.Newf("page %d in the chain is empty", index)
		}

		key := &page.data[0]
		if previous, duplicate := seen.Get(key); duplicate {
			return errors.Newf("page %d appears in the chain again at %d", previous, index)
		}
		seen.Put(key, index)

		err := page.validate(pageSize, headerSize)
		if err != nil {
			return errors.Wrapf(err, "page %d", index)
		}

		memutils.DebugCheckPow2(len(page.data), "page size")
	}

	return nil
}
