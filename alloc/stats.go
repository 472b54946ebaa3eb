package alloc

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/pagealloc/memutils"
)

func buildStatsString(kind string, total *memutils.DetailedStatistics, details func(json *jwriter.ObjectState)) string {
	writer := jwriter.NewWriter()
	obj := writer.Object()

	obj.Name("Allocator").String(kind)

	totalObj := obj.Name("Total").Object()
	total.PrintJson(&totalObj)
	totalObj.End()

	if details != nil {
		details(&obj)
	}

	obj.End()

	if writer.Error() != nil {
		panic(writer.Error())
	}

	return string(writer.Bytes())
}

func printPages(json *jwriter.ObjectState, name string, pageRegions []*pageRegion) {
	pagesArray := json.Name(name).Array()
	defer pagesArray.End()

	for _, page := range pageRegions {
		pageObj := pagesArray.Object()
		page.region.PrintJson(&pageObj)
		pageObj.End()
	}
}
