package memutils

import (
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

const (
	// PageSize is the size in bytes of the pages requested from a page provider when no other
	// size has been configured
	PageSize int = 4096
	// Alignment is the byte alignment that bump allocators round every request up to
	Alignment uint = 8
	// BucketCount is the number of power-of-two size classes managed by a bucket allocator. Class k
	// holds slots of 2^k bytes, so the largest slot is 2048 bytes.
	BucketCount int = 12
	// Sentinel is the byte pattern written over fresh pages and released memory. A page whose
	// usable bytes all hold this value is considered free.
	Sentinel byte = 0xAA
)

type Number interface {
	constraints.Integer
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

// CeilLog2 returns the smallest k such that 1<<k >= value. Values of 1 or less map to 0.
func CeilLog2(value int) int {
	if value <= 1 {
		return 0
	}

	return bits.Len(uint(value - 1))
}

// Poison overwrites every byte of data with Sentinel
func Poison(data []byte) {
	for i := range data {
		data[i] = Sentinel
	}
}

// IsPoisoned returns true if every byte of data holds Sentinel
func IsPoisoned(data []byte) bool {
	for _, b := range data {
		if b != Sentinel {
			return false
		}
	}

	return true
}
