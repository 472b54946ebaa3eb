//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package pages

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/pagealloc/memutils"
	"golang.org/x/exp/slog"
	"golang.org/x/sys/unix"
)

// MmapProvider is a Provider that maps anonymous private pages directly from the operating system
type MmapProvider struct {
	logger   *slog.Logger
	registry pageRegistry
}

var _ Provider = &MmapProvider{}

// NewMmapProvider creates an MmapProvider. If maxBytes is positive, AcquirePage fails with
// memutils.ErrOutOfMemory once that many bytes are mapped.
func NewMmapProvider(logger *slog.Logger, maxBytes int) *MmapProvider {
	return &MmapProvider{
		logger:   discardLogger(logger),
		registry: newPageRegistry(maxBytes),
	}
}

// NewDefaultProvider returns the provider best suited to the current platform
func NewDefaultProvider(logger *slog.Logger) Provider {
	return NewMmapProvider(logger, 0)
}

func (p *MmapProvider) AcquirePage(size int) ([]byte, error) {
	p.logger.Debug("MmapProvider::AcquirePage", slog.Int("size", size))

	err := p.registry.checkLimit(size)
	if err != nil {
		return nil, err
	}

	page, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to map a %d-byte page", size), memutils.ErrOutOfMemory)
	}

	memutils.Poison(page)
	p.registry.add(page)

	return page, nil
}

func (p *MmapProvider) ReleasePage(page []byte) error {
	p.logger.Debug("MmapProvider::ReleasePage", slog.Int("size", len(page)))

	err := p.registry.remove(page)
	if err != nil {
		return err
	}

	err = unix.Munmap(page)
	if err != nil {
		return errors.Wrapf(err, "failed to unmap a %d-byte page", len(page))
	}

	return nil
}

func (p *MmapProvider) LivePages() int { return p.registry.livePages() }

func (p *MmapProvider) LiveBytes() int { return p.registry.liveBytes }
