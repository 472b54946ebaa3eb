package memutils

import (
	"math"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics is a running total of the pages owned by one or more allocators and the
// allocations carved out of them
type Statistics struct {
	PageCount       int
	AllocationCount int
	PageBytes       int
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.PageCount = 0
	s.AllocationCount = 0
	s.PageBytes = 0
	s.AllocationBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.PageCount += other.PageCount
	s.AllocationCount += other.AllocationCount
	s.PageBytes += other.PageBytes
	s.AllocationBytes += other.AllocationBytes
}

// DetailedStatistics extends Statistics with the extremes of allocation sizes and of the unused
// tails left at the end of each page. Call Clear before summing into a new value, since the
// minimums must start at math.MaxInt.
type DetailedStatistics struct {
	Statistics
	UnusedRangeCount   int
	AllocationSizeMin  int
	AllocationSizeMax  int
	UnusedRangeSizeMin int
	UnusedRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.UnusedRangeCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.UnusedRangeSizeMin = math.MaxInt
	s.UnusedRangeSizeMax = 0
}

func (s *DetailedStatistics) AddUnusedRange(size int) {
	s.UnusedRangeCount++

	if size < s.UnusedRangeSizeMin {
		s.UnusedRangeSizeMin = size
	}

	if size > s.UnusedRangeSizeMax {
		s.UnusedRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	s.AddAllocationSize(size)
}

// AddAllocationSize folds size into the minimum and maximum allocation sizes without
// counting a new allocation
func (s *DetailedStatistics) AddAllocationSize(size int) {
	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.UnusedRangeCount += other.UnusedRangeCount

	if other.UnusedRangeSizeMin < s.UnusedRangeSizeMin {
		s.UnusedRangeSizeMin = other.UnusedRangeSizeMin
	}

	if other.UnusedRangeSizeMax > s.UnusedRangeSizeMax {
		s.UnusedRangeSizeMax = other.UnusedRangeSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}

// PrintJson writes the statistics as fields of the provided json object. Minimums that were
// never lowered from their cleared value are written as 0.
func (s *DetailedStatistics) PrintJson(json *jwriter.ObjectState) {
	json.Name("PageCount").Int(s.PageCount)
	json.Name("PageBytes").Int(s.PageBytes)
	json.Name("AllocationCount").Int(s.AllocationCount)
	json.Name("AllocationBytes").Int(s.AllocationBytes)
	json.Name("UnusedRangeCount").Int(s.UnusedRangeCount)

	if s.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(s.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(s.AllocationSizeMax)
	}

	if s.UnusedRangeCount > 0 {
		json.Name("UnusedRangeSizeMin").Int(s.UnusedRangeSizeMin)
		json.Name("UnusedRangeSizeMax").Int(s.UnusedRangeSizeMax)
	}
}
