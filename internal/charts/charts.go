// Package charts renders interactive HTML charts of valuation results.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string // Chart title
	Subtitle   string // Chart subtitle
	YAxisLabel string // Y-axis label
	XAxisLabel string // X-axis label
	Width      string // Chart width (e.g., "900px")
	Height     string // Chart height (e.g., "500px")
	Theme      string // Chart theme
	ShowLegend bool   // Show legend
	Color      string // Bar color
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:      "Precon Deck Values",
		YAxisLabel: "USD",
		XAxisLabel: "Deck",
		Width:      "1200px",
		Height:     "600px",
		Theme:      "light",
		ShowLegend: false,
		Color:      "#5470C6",
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// RankingPoints converts ranking entries into chart points, keeping rank order.
func RankingPoints(rankings []analysis.RankingEntry) []DataPoint {
	points := make([]DataPoint, len(rankings))
	for i, r := range rankings {
		points[i] = DataPoint{
			Label: fmt.Sprintf("%d. %s", r.Rank, r.Deck.Name),
			Value: r.TotalValue,
		}
	}
	return points
}

// RenderBarChart writes an interactive bar chart HTML page to w.
func RenderBarChart(w io.Writer, series string, data []DataPoint, config ChartConfig) error {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: config.Title,
			Width:     config.Width,
			Height:    config.Height,
			Theme:     config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: config.XAxisLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: config.YAxisLabel,
		}),
		charts.WithColorsOpts(opts.Colors{config.Color}),
	)

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(series, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderRankingChart writes the deck ranking as a bar chart page.
func RenderRankingChart(w io.Writer, rankings []analysis.RankingEntry, config ChartConfig) error {
	if config.Subtitle == "" {
		config.Subtitle = fmt.Sprintf("%d decks ranked by live market value", len(rankings))
	}
	return RenderBarChart(w, "Total value", RankingPoints(rankings), config)
}
