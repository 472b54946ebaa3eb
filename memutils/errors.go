package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

var (
	// ErrInvalidSize is returned when a zero or negative number of bytes is requested
	ErrInvalidSize = errors.New("requested size must be a positive number of bytes")
	// ErrCapacityExceeded is returned when a request can never be satisfied by the allocator, because
	// it is larger than a page, a size class, or the caller-provided region
	ErrCapacityExceeded = errors.New("requested size exceeds the capacity of the allocator")
	// ErrOutOfMemory is returned when the operating system (or a configured limit) refuses to hand
	// out another page
	ErrOutOfMemory = errors.New("out of memory")
	// ErrUnknownPage is returned when a page is returned to a provider that did not hand it out, or
	// that has already been released
	ErrUnknownPage = errors.New("page was not acquired from this provider")
	// ErrInvalidBlock is returned when a MemoryBlock passed back to an allocator could not have been
	// produced by that allocator
	ErrInvalidBlock = errors.New("memory block does not belong to this allocator")
)
