package promstats

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vkngwrapper/pagealloc/alloc"
	"github.com/vkngwrapper/pagealloc/memutils"
)

// Collector is a prometheus.Collector that reports the statistics of a fixed set of allocators,
// labelled by name
type Collector struct {
	names   []string
	sources map[string]alloc.StatisticsSource

	pages           *prometheus.Desc
	pageBytes       *prometheus.Desc
	allocations     *prometheus.Desc
	allocationBytes *prometheus.Desc
}

var _ prometheus.Collector = &Collector{}

func NewCollector(namespace string, sources map[string]alloc.StatisticsSource) *Collector {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Collector{
		names:   names,
		sources: sources,
		pages: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "pages"),
			"Number of pages currently held by the allocator",
			[]string{"allocator"},
			nil,
		),
		pageBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "page_bytes"),
			"Total size in bytes of the pages currently held by the allocator",
			[]string{"allocator"},
			nil,
		),
		allocations: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "allocations"),
			"Number of live allocations in the allocator's pages",
			[]string{"allocator"},
			nil,
		),
		allocationBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "allocation_bytes"),
			"Bytes of the allocator's pages that have been handed out",
			[]string{"allocator"},
			nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pages
	ch <- c.pageBytes
	ch <- c.allocations
	ch <- c.allocationBytes
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, name := range c.names {
		var stats memutils.Statistics
		c.sources[name].AddStatistics(&stats)

		ch <- prometheus.MustNewConstMetric(c.pages, prometheus.GaugeValue, float64(stats.PageCount), name)
		ch <- prometheus.MustNewConstMetric(c.pageBytes, prometheus.GaugeValue, float64(stats.PageBytes), name)
		ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.GaugeValue, float64(stats.AllocationCount), name)
		ch <- prometheus.MustNewConstMetric(c.allocationBytes, prometheus.GaugeValue, float64(stats.AllocationBytes), name)
	}
}
