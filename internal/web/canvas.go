package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/hpungsan/wxdash/internal/dashboard"
)

const (
	chartWidth  = 720
	chartHeight = 280
)

// svgCanvas draws series as inline SVG. Only the latest instance is shown;
// a destroyed instance renders nothing.
type svgCanvas struct {
	width, height int
	logger        *slog.Logger

	mu   sync.Mutex
	live *svgChart
}

type svgChart struct {
	canvas *svgCanvas
	svg    template.HTML
}

func newSVGCanvas(logger *slog.Logger) *svgCanvas {
	return &svgCanvas{width: chartWidth, height: chartHeight, logger: logger}
}

// Draw implements dashboard.Canvas.
func (c *svgCanvas) Draw(s dashboard.Series) dashboard.Chart {
	data, err := renderSeriesSVG(s, c.width, c.height)
	if err != nil {
		c.logger.Warn("chart render failed", "metric", s.Metric, "error", err)
		data = emptyChartSVG(c.width, c.height, s.Label)
	}
	ch := &svgChart{canvas: c, svg: template.HTML(data)}

	c.mu.Lock()
	c.live = ch
	c.mu.Unlock()
	return ch
}

// Destroy implements dashboard.Chart.
func (ch *svgChart) Destroy() {
	c := ch.canvas
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == ch {
		c.live = nil
	}
	ch.svg = ""
}

// SVG returns the live chart's markup, or "" when there is none.
func (c *svgCanvas) SVG() template.HTML {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		return ""
	}
	return c.live.svg
}

func renderSeriesSVG(s dashboard.Series, width, height int) ([]byte, error) {
	n := len(s.Values)
	if n == 0 {
		return emptyChartSVG(width, height, s.Label), nil
	}

	xs := make([]float64, n)
	ticks := make([]chart.Tick, n)
	for i := range s.Values {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: s.Labels[i]}
	}
	xMax := float64(n - 1)
	if n == 1 {
		xMax = 1
	}

	minY, maxY := s.Values[0], s.Values[0]
	for _, v := range s.Values[1:] {
		minY = min(minY, v)
		maxY = max(maxY, v)
	}
	if minY == maxY {
		minY--
		maxY++
	}

	color := drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#"))
	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  s.Label,
			Range: &chart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    s.Label,
				XValues: xs,
				YValues: s.Values,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 3,
					FillColor:   color.WithAlpha(51),
					DotColor:    drawing.ColorWhite,
					DotWidth:    4,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render %s chart: %w", s.Metric, err)
	}
	return buf.Bytes(), nil
}

func emptyChartSVG(width, height int, label string) []byte {
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" class="chart-empty">`+
			`<text x="50%%" y="50%%" text-anchor="middle">%s: no forecast data</text></svg>`,
		width, height, template.HTMLEscapeString(label)))
}
