package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const chartTime = "2006-01-02 15:04:05"

// WriteHTML renders a page with the score summary lines and a scatter of
// individual events.
func WriteHTML(w io.Writer, tl *Timeline) error {
	page := components.NewPage()
	page.PageTitle = "Motion report"
	page.AddCharts(summaryChart(tl), eventChart(tl))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func summaryChart(tl *Timeline) *charts.Line {
	x := make([]string, len(tl.Summaries))
	mean := make([]opts.LineData, len(tl.Summaries))
	p95 := make([]opts.LineData, len(tl.Summaries))
	mx := make([]opts.LineData, len(tl.Summaries))
	limit := make([]opts.LineData, len(tl.Summaries))
	for i, s := range tl.Summaries {
		x[i] = s.TakenAt.Format(chartTime)
		mean[i] = opts.LineData{Value: s.Mean}
		p95[i] = opts.LineData{Value: s.P95}
		mx[i] = opts.LineData{Value: s.Max}
		limit[i] = opts.LineData{Value: s.Threshold}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Motion report", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Score summaries", Subtitle: tl.subtitle()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "edge count"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(x).
		AddSeries("mean", mean).
		AddSeries("p95", p95).
		AddSeries("max", mx).
		AddSeries("threshold", limit)
	return line
}

func eventChart(tl *Timeline) *charts.Scatter {
	saved := make([]opts.ScatterData, 0, len(tl.Events))
	failed := make([]opts.ScatterData, 0)
	for _, e := range tl.Events {
		pt := opts.ScatterData{
			Name:  e.Path,
			Value: []interface{}{e.CapturedAt.Format(time.RFC3339Nano), e.Score},
		}
		if e.SaveError == "" {
			saved = append(saved, pt)
		} else {
			failed = append(failed, pt)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Motion events"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time", Name: "captured"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score"}),
	)
	scatter.AddSeries("saved", saved, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	scatter.AddSeries("not saved", failed, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 9}))
	return scatter
}
