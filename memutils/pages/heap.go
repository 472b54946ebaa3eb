package pages

import (
	"github.com/vkngwrapper/pagealloc/memutils"
	"golang.org/x/exp/slog"
)

// HeapProvider is a Provider that hands out pages allocated on the Go heap. It is used on
// platforms without mmap, and anywhere a hard limit on the memory handed out is useful.
type HeapProvider struct {
	logger   *slog.Logger
	registry pageRegistry
}

var _ Provider = &HeapProvider{}

// NewHeapProvider creates a HeapProvider. If maxBytes is positive, AcquirePage fails with
// memutils.ErrOutOfMemory once that many bytes are outstanding.
func NewHeapProvider(logger *slog.Logger, maxBytes int) *HeapProvider {
	return &HeapProvider{
		logger:   discardLogger(logger),
		registry: newPageRegistry(maxBytes),
	}
}

func (p *HeapProvider) AcquirePage(size int) ([]byte, error) {
	p.logger.Debug("HeapProvider::AcquirePage", slog.Int("size", size))

	err := p.registry.checkLimit(size)
	if err != nil {
		return nil, err
	}

	page := make([]byte, size)
	memutils.Poison(page)
	p.registry.add(page)

	return page, nil
}

func (p *HeapProvider) ReleasePage(page []byte) error {
	p.logger.Debug("HeapProvider::ReleasePage", slog.Int("size", len(page)))

	return p.registry.remove(page)
}

func (p *HeapProvider) LivePages() int { return p.registry.livePages() }

func (p *HeapProvider) LiveBytes() int { return p.registry.liveBytes }
