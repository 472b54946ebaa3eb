package pages

import (
	"io"
	"sync"

	"golang.org/x/exp/slog"
)

//go:generate mockgen -source provider.go -destination ./mocks/provider.go -package mock_pages

// Provider hands out whole pages of memory and takes them back. Every page returned from AcquirePage
// is filled with memutils.Sentinel. Providers are not safe for concurrent use unless wrapped with
// Synchronized.
type Provider interface {
	// AcquirePage returns a new page of exactly size bytes. It fails with an error wrapping
	// memutils.ErrInvalidSize if size is not positive, and with an error wrapping
	// memutils.ErrOutOfMemory if the memory could not be obtained.
	AcquirePage(size int) ([]byte, error)
	// ReleasePage returns a page previously acquired from this provider. The page must be the full
	// slice that AcquirePage returned. Releasing an unknown page fails with an error wrapping
	// memutils.ErrUnknownPage.
	ReleasePage(page []byte) error

	// LivePages returns the number of pages that have been acquired but not released
	LivePages() int
	// LiveBytes returns the total size of the pages that have been acquired but not released
	LiveBytes() int
}

type synchronizedProvider struct {
	mutex    sync.Mutex
	provider Provider
}

// Synchronized wraps a Provider so that it can be shared by allocators running on different
// goroutines
func Synchronized(provider Provider) Provider {
	if _, alreadySynchronized := provider.(*synchronizedProvider); alreadySynchronized {
		return provider
	}

	return &synchronizedProvider{provider: provider}
}

func (p *synchronizedProvider) AcquirePage(size int) ([]byte, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.provider.AcquirePage(size)
}

func (p *synchronizedProvider) ReleasePage(page []byte) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.provider.ReleasePage(page)
}

func (p *synchronizedProvider) LivePages() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.provider.LivePages()
}

func (p *synchronizedProvider) LiveBytes() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.provider.LiveBytes()
}

func discardLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}

	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
