package http

import (
	"strconv"
	"strings"

	"econguide/internal/core"
)

// SVG canvas for line charts, in user units.
const (
	chartWidth   = 600
	chartHeight  = 300
	chartPadding = 40
)

type barView struct {
	Label string
	Value string
	Width int // percent of the largest value
}

type pointView struct {
	X, Y  float64
	Label string
	Value string
}

type chartView struct {
	Title  string
	Kind   core.ChartKind
	XLabel string
	YLabel string

	Bars []barView

	Width    int
	Height   int
	LabelY   int
	Polyline string
	Points   []pointView
	Max      string
	Min      string
}

func newChartView(c core.Chart) chartView {
	v := chartView{
		Title:  c.Title,
		Kind:   c.Kind,
		XLabel: c.XLabel,
		YLabel: c.YLabel,
		Max:    core.FormatNumber(c.MaxValue()),
		Min:    core.FormatNumber(c.MinValue()),
	}
	switch c.Kind {
	case core.ChartBar:
		v.Bars = barsFor(c)
	case core.ChartLine:
		v.Width, v.Height = chartWidth, chartHeight
		v.LabelY = chartHeight - chartPadding/3
		v.Points = linePoints(c)
		v.Polyline = polyline(v.Points)
	}
	return v
}

// barsFor scales every bar against the largest value. Non-positive values
// get no bar; tiny positive ones stay visible at 2%.
func barsFor(c core.Chart) []barView {
	max := c.MaxValue()
	bars := make([]barView, 0, len(c.Points))
	for _, p := range c.Points {
		width := 0
		if max > 0 && p.Value > 0 {
			width = int(p.Value*100/max + 0.5)
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		bars = append(bars, barView{Label: p.Label, Value: core.FormatNumber(p.Value), Width: width})
	}
	return bars
}

// linePoints maps values into the padded canvas with y growing downwards.
// A flat series is drawn through the middle.
func linePoints(c core.Chart) []pointView {
	n := len(c.Points)
	min, max := c.MinValue(), c.MaxValue()
	innerW := float64(chartWidth - 2*chartPadding)
	innerH := float64(chartHeight - 2*chartPadding)

	out := make([]pointView, 0, n)
	for i, p := range c.Points {
		x := float64(chartPadding) + innerW/2
		if n > 1 {
			x = float64(chartPadding) + innerW*float64(i)/float64(n-1)
		}
		y := float64(chartPadding) + innerH/2
		if max > min {
			y = float64(chartPadding) + innerH*(1-(p.Value-min)/(max-min))
		}
		out = append(out, pointView{X: round1(x), Y: round1(y), Label: p.Label, Value: core.FormatNumber(p.Value)})
	}
	return out
}

func polyline(points []pointView) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = strconv.FormatFloat(p.X, 'f', 1, 64) + "," + strconv.FormatFloat(p.Y, 'f', 1, 64)
	}
	return strings.Join(parts, " ")
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
