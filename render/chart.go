package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/guptarohit/asciigraph"
	"github.com/kv-base-hack/crypto-dashboard/common"
)

const seriesName = "Harga"

// Chart is the price line of the selected coin. X values are raw epoch
// milliseconds, no timezone conversion is applied.
type Chart struct {
	Title  string             `json:"title"`
	Days   int                `json:"days"`
	Points common.PriceSeries `json:"points"`
}

// NewChart returns nil for the "no data" sentinel, the chart block is skipped.
func NewChart(coin string, series *common.PriceSeries, days int) *Chart {
	if series == nil {
		return nil
	}
	return &Chart{
		Title:  fmt.Sprintf("%s price, last %d days", coin, days),
		Days:   days,
		Points: *series,
	}
}

func (c *Chart) line() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.Title,
			Width:     "900px",
			Height:    "450px",
		}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "timestamp"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "price"}),
	)

	data := make([]opts.LineData, 0, len(c.Points))
	for _, p := range c.Points {
		data = append(data, opts.LineData{Value: []interface{}{p.Timestamp, p.Price}})
	}
	line.AddSeries(seriesName, data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: false}),
	)
	return line
}

// Render writes a standalone html page holding the chart.
func (c *Chart) Render(w io.Writer) error {
	return c.line().Render(w)
}

// Plot draws the chart for a terminal.
func (c *Chart) Plot(width, height int) string {
	if len(c.Points) == 0 {
		return ""
	}
	return asciigraph.Plot(c.Points.Prices(),
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(c.Title),
	)
}
