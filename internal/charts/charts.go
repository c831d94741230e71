// Package charts renders simulation results as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/DeckOps/internal/storage/models"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/simulator"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title          string   // Page title
	Width          string   // Chart width (e.g., "900px")
	Height         string   // Chart height (e.g., "500px")
	Theme          string   // Chart theme
	TopAppearances int      // Cards shown in the appearance chart
	Colors         []string // Custom colors
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:          "Opening Hand Simulation",
		Width:          "900px",
		Height:         "500px",
		Theme:          "light",
		TopAppearances: 15,
		Colors:         []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData represents a data series for multi-series charts.
type SeriesData struct {
	Name   string
	Points []DataPoint
}

var roleLabels = map[deck.Role]string{
	deck.RoleStarter:  "Starters",
	deck.RoleBrick:    "Bricks",
	deck.RoleNeutral:  "Neutral",
	deck.RoleHandTrap: "Handtraps",
}

// RoleAveragePoints returns the average per hand of every role, in reporting order.
func RoleAveragePoints(res *simulator.Result) []DataPoint {
	points := make([]DataPoint, 0, len(deck.Roles))
	for _, r := range deck.Roles {
		points = append(points, DataPoint{Label: roleLabels[r], Value: res.Averages.ByRole[r]})
	}
	return points
}

// CategoryAveragePoints returns the average per hand of every category.
func CategoryAveragePoints(res *simulator.Result) []DataPoint {
	points := make([]DataPoint, 0, len(deck.Categories))
	for _, c := range deck.Categories {
		points = append(points, DataPoint{Label: string(c), Value: res.Averages.ByCategory[c]})
	}
	return points
}

// AppearancePoints returns the appearance percentage of the top n cards.
func AppearancePoints(res *simulator.Result, n int) []DataPoint {
	if n <= 0 || n > len(res.Appearances) {
		n = len(res.Appearances)
	}
	points := make([]DataPoint, n)
	for i, a := range res.Appearances[:n] {
		points[i] = DataPoint{Label: a.Card.Name, Value: a.Percentage}
	}
	return points
}

// HistorySeries turns recorded runs, newest first, into per-role series in chronological order.
func HistorySeries(runs []*models.SimulationRun) []SeriesData {
	series := []SeriesData{{Name: "Starters"}, {Name: "Bricks"}, {Name: "Handtraps"}, {Name: "Neutral"}}
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		label := r.CreatedAt.Format("2006-01-02 15:04")
		for j, v := range []float64{r.AvgStarters, r.AvgBricks, r.AvgHandTraps, r.AvgNeutral} {
			series[j].Points = append(series[j].Points, DataPoint{Label: label, Value: v})
		}
	}
	return series
}

// NewBarChart builds a single-series bar chart.
func NewBarChart(title, seriesName string, data []DataPoint, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(title, config)...)

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(seriesName, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	return bar
}

// NewPieChart builds a pie chart.
func NewPieChart(title string, data []DataPoint, config ChartConfig) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOptions(title, config)...)

	items := make([]opts.PieData, len(data))
	for i, point := range data {
		items[i] = opts.PieData{Name: point.Label, Value: point.Value}
	}

	pie.AddSeries(title, items).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
		)

	return pie
}

// NewMultiLineChart builds a multi-series line chart. All series share the first series' labels.
func NewMultiLineChart(title string, series []SeriesData, config ChartConfig) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(title, config)...)

	if len(series) > 0 {
		xLabels := make([]string, len(series[0].Points))
		for i, point := range series[0].Points {
			xLabels[i] = point.Label
		}
		line.SetXAxis(xLabels)
	}

	for _, s := range series {
		yData := make([]opts.LineData, len(s.Points))
		for i, point := range s.Points {
			yData[i] = opts.LineData{Value: point.Value}
		}
		line.AddSeries(s.Name, yData)
	}

	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{
			Smooth: opts.Bool(true),
		}),
	)

	return line
}

// RenderSimulation writes an HTML page with role averages, category mix and card appearance rates.
func RenderSimulation(w io.Writer, deckName string, res *simulator.Result, config ChartConfig) error {
	heading := fmt.Sprintf("%s: average cards per hand by role (%d hands of %d)", deckName, res.Runs, res.DrawCount)

	page := components.NewPage()
	page.PageTitle = config.Title
	page.AddCharts(
		NewBarChart(heading, "Cards per hand", RoleAveragePoints(res), config),
		NewPieChart("Average cards per hand by category", CategoryAveragePoints(res), config),
		NewBarChart("Appearance rate (%)", "Appearance %", AppearancePoints(res, config.TopAppearances), config),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderHistory writes an HTML page charting a deck's recorded simulations over time.
func RenderHistory(w io.Writer, deckName string, runs []*models.SimulationRun, config ChartConfig) error {
	page := components.NewPage()
	page.PageTitle = config.Title
	page.AddCharts(NewMultiLineChart(deckName+": average cards per hand", HistorySeries(runs), config))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteFile renders into the file at outputPath.
func WriteFile(outputPath string, render func(io.Writer) error) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return render(f)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func globalOptions(title string, config ChartConfig) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithColorsOpts(opts.Colors(config.Colors)),
	}
}
