// Package chart renders revenue series as embeddable line charts.
package chart

import (
	"fmt"
	"html/template"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"asicrev/internal/core"
)

const (
	// DefaultHeight is the chart height in pixels when Options.Height is unset.
	DefaultHeight = 400

	// ElementID is the DOM id of the chart container.
	ElementID = "revenue-chart"

	// OptionAttr holds the chart's echarts option as JSON.
	OptionAttr = "data-echarts-option"

	// AssetsHost serves the echarts runtime the page initializes charts with.
	AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
)

// ScriptURL is the echarts runtime the page layout must load before any chart.
func ScriptURL() string {
	return AssetsHost + "echarts.min.js"
}

// Options controls chart presentation.
type Options struct {
	Height     int
	SeriesName string
}

// Render returns the chart container for points. The echarts option is carried
// as JSON in the OptionAttr attribute; the page script initializes the chart
// from it after every load or swap, so the markup holds no inline script.
// The x axis is the timestamp and the y axis is scaled to the value range.
// Non-finite values are plotted as gaps.
func Render(points []core.DisplayPoint, o Options) template.HTML {
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.SeriesName == "" {
		o.SeriesName = "Revenue"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Type: "dashed"},
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Type: "dashed"},
			},
		}),
	)

	xLabels := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		xLabels[i] = p.Timestamp
		data[i] = opts.LineData{Value: plotValue(p.Value)}
	}

	line.SetXAxis(xLabels).
		AddSeries(o.SeriesName, data,
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:     opts.Bool(true),
				ShowSymbol: opts.Bool(false),
			}),
		)

	snippet := line.RenderSnippet()
	return template.HTML(fmt.Sprintf(
		`<div id="%s" class="revenue-chart" style="width:100%%;height:%dpx" %s="%s"></div>`,
		ElementID, o.Height, OptionAttr, template.HTMLEscapeString(snippet.Option)))
}

// plotValue maps NaN and ±Inf to echarts' missing-data marker, since JSON cannot
// carry them.
func plotValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}
