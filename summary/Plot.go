package summary

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Plot renders an HTML page to w with one line chart per tag, plotting
// the value of each event against its global step
func Plot(events []Event, title string, w io.Writer) error {
	tags := Tags(events, "")
	if len(tags) == 0 {
		return fmt.Errorf("plot: no events to plot")
	}

	byTag := make(map[string][]Event)
	for _, e := range events {
		byTag[e.Tag] = append(byTag[e.Tag], e)
	}

	page := components.NewPage()
	page.PageTitle = title
	for _, tag := range tags {
		tagEvents := byTag[tag]
		sort.SliceStable(tagEvents, func(i, j int) bool {
			return tagEvents[i].Step < tagEvents[j].Step
		})

		steps := make([]string, 0, len(tagEvents))
		items := make([]opts.LineData, 0, len(tagEvents))
		for _, e := range tagEvents {
			steps = append(steps, fmt.Sprintf("%d", e.Step))
			items = append(items, opts.LineData{Value: e.Value})
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title: tag,
			}),
			charts.WithInitializationOpts(opts.Initialization{
				Theme: "shine",
			}),
			charts.WithXAxisOpts(opts.XAxis{
				Name: "step",
			}),
		)
		line.SetXAxis(steps).AddSeries(tag, items)
		page.AddCharts(line)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("plot: %v", err)
	}
	return nil
}
