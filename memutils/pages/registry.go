package pages

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/pagealloc/memutils"
)

// pageRegistry tracks outstanding pages by the address of their first byte
type pageRegistry struct {
	pages     *swiss.Map[*byte, int]
	liveBytes int
	maxBytes  int
}

func newPageRegistry(maxBytes int) pageRegistry {
	return pageRegistry{
		pages:    swiss.NewMap[*byte, int](42),
		maxBytes: maxBytes,
	}
}

func (r *pageRegistry) checkLimit(size int) error {
	if size <= 0 {
		return errors.Wrapf(memutils.ErrInvalidSize, "page size %d", size)
	}

	if r.maxBytes > 0 && r.liveBytes+size > r.maxBytes {
		return errors.Wrapf(memutils.ErrOutOfMemory, "acquiring a %d-byte page would exceed the %d-byte limit (%d bytes live)",
			size, r.maxBytes, r.liveBytes)
	}

	return nil
}

func (r *pageRegistry) add(page []byte) {
	key := &page[0]
	if r.pages.Has(key) {
		panic("a newly-acquired page is already present in the page registry")
	}

	r.pages.Put(key, len(page))
	r.liveBytes += len(page)
}

func (r *pageRegistry) remove(page []byte) error {
	if len(page) == 0 {
		return errors.Wrap(memutils.ErrUnknownPage, "released page is empty")
	}

	key := &page[0]
	size, ok := r.pages.Get(key)
	if !ok {
		return errors.Wrapf(memutils.ErrUnknownPage, "released %d-byte page", len(page))
	}

	if size != len(page) {
		return errors.Wrapf(memutils.ErrUnknownPage, "released page is %d bytes but %d bytes were acquired", len(page), size)
	}

	r.pages.Delete(key)
	r.liveBytes -= size
	return nil
}

func (r *pageRegistry) livePages() int {
	return r.pages.Count()
}
