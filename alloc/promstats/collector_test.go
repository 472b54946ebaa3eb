package promstats_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/pagealloc/alloc"
	"github.com/vkngwrapper/pagealloc/alloc/promstats"
	"github.com/vkngwrapper/pagealloc/memutils/pages"
)

func TestCollector(t *testing.T) {
	provider := pages.NewHeapProvider(nil, 0)

	arena, err := alloc.NewArenaAllocator(nil, alloc.CreateOptions{Provider: provider})
	require.NoError(t, err)
	defer arena.Destroy()

	bucket, err := alloc.NewBucketAllocator(nil, alloc.CreateOptions{Provider: provider})
	require.NoError(t, err)
	defer bucket.Destroy()

	_, err = arena.Allocate(100)
	require.NoError(t, err)
	_, err = bucket.Allocate(20)
	require.NoError(t, err)
	_, err = bucket.Allocate(2000)
	require.NoError(t, err)

	collector := promstats.NewCollector("pagealloc", map[string]alloc.StatisticsSource{
		"arena":  arena,
		"bucket": bucket,
	})

	require.Equal(t, 8, testutil.CollectAndCount(collector))

	expected := `
# HELP pagealloc_pages Number of pages currently held by the allocator
# TYPE pagealloc_pages gauge
pagealloc_pages{allocator="arena"} 1
pagealloc_pages{allocator="bucket"} 2
# HELP pagealloc_allocation_bytes Bytes of the allocator's pages that have been handed out
# TYPE pagealloc_allocation_bytes gauge
pagealloc_allocation_bytes{allocator="arena"} 104
pagealloc_allocation_bytes{allocator="bucket"} 2080
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"pagealloc_pages", "pagealloc_allocation_bytes"))

	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(collector))

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 4)
}
