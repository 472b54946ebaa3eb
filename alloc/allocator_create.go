package alloc

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/pagealloc/internal/utils"
	"github.com/vkngwrapper/pagealloc/memutils"
	"github.com/vkngwrapper/pagealloc/memutils/pages"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = utils.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateSynchronized causes the allocator to lock an internal mutex around every operation, and
	// wraps its page provider with pages.Synchronized. Without this flag, an allocator must only be
	// used from one goroutine at a time.
	CreateSynchronized CreateFlags = 1 << iota
)

func init() {
	CreateSynchronized.Register("CreateSynchronized")
}

const (
	// minPageSize is the smallest page size that leaves room for a page header and a few slots
	minPageSize int = 64
)

// CreateOptions contains optional settings when creating an allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags
	// Provider is the source of pages for ArenaAllocator and BucketAllocator. If left nil, the
	// platform's default provider is used. FixedBufferAllocator ignores it.
	Provider pages.Provider
	// PageSize is the size of each page requested from Provider. It must be a power of two no
	// smaller than 64. If left 0, memutils.PageSize is used. FixedBufferAllocator ignores it.
	PageSize int
}

type allocatorBase struct {
	logger       *slog.Logger
	provider     pages.Provider
	pageSize     int
	synchronized bool
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return logger
}

func (o CreateOptions) build(logger *slog.Logger) (allocatorBase, error) {
	logger = resolveLogger(logger)

	base := allocatorBase{
		logger:       logger,
		provider:     o.Provider,
		pageSize:     o.PageSize,
		synchronized: o.Flags&CreateSynchronized != 0,
	}

	if base.pageSize == 0 {
		base.pageSize = memutils.PageSize
	}

	err := memutils.CheckPow2(base.pageSize, "CreateOptions.PageSize")
	if err != nil {
		return base, err
	}

	if base.pageSize < minPageSize {
		return base, errors.Wrapf(memutils.ErrInvalidSize, "CreateOptions.PageSize is %d but must be at least %d", base.pageSize, minPageSize)
	}

	if base.provider == nil {
		base.provider = pages.NewDefaultProvider(logger)
	}

	if base.synchronized {
		base.provider = pages.Synchronized(base.provider)
	}

	return base, nil
}
