package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/hpungsan/wxdash/internal/dashboard"
	"github.com/hpungsan/wxdash/internal/errors"
)

var iconGlyphs = map[dashboard.Icon]string{
	dashboard.IconSun:          "☀",
	dashboard.IconPartlyCloudy: "⛅",
	dashboard.IconRain:         "🌧",
	dashboard.IconHeavyShowers: "⛆",
	dashboard.IconThunder:      "⚡",
	dashboard.IconCloud:        "☁",
}

// terminalView collects what the dashboard renders so it can be printed once
// the pipeline settles.
type terminalView struct {
	mu       sync.Mutex
	district string
	readouts dashboard.Readouts
	icon     dashboard.IconTreatment
	loaded   bool
	history  []dashboard.HistoryItem
	offline  bool
	notices  []string
}

func (v *terminalView) ShowNotice(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	msg := err.Error()
	if wx := errors.As(err); wx != nil {
		msg = wx.Message
	}
	v.notices = append(v.notices, msg)
}

func (v *terminalView) SetDistrict(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.district = name
}

func (v *terminalView) SetReadouts(r dashboard.Readouts) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.readouts = r
	v.loaded = true
}

func (v *terminalView) SetIcon(t dashboard.IconTreatment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.icon = t
}

func (v *terminalView) SetHistory(items []dashboard.HistoryItem) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = items
}

func (v *terminalView) SetOffline(offline bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offline = offline
}

// render prints the dashboard followed by the live chart.
func (v *terminalView) render(w io.Writer, chart string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.offline {
		fmt.Fprintln(w, "!! You are offline.")
	}
	for _, n := range v.notices {
		fmt.Fprintf(w, "!! %s\n", n)
	}
	if v.district == "" {
		return
	}

	fmt.Fprintf(w, "== %s ==\n", v.district)
	if !v.loaded {
		fmt.Fprintln(w, "   -- no data --")
		return
	}

	r := v.readouts
	glyph := iconGlyphs[v.icon.Icon]
	if glyph == "" {
		glyph = iconGlyphs[dashboard.IconCloud]
	}
	fmt.Fprintf(w, "%s\n", r.DateTime)
	fmt.Fprintf(w, "%s  %s  %s (feels like %s)\n", glyph, r.Condition, r.Temperature, r.FeelsLike)
	fmt.Fprintf(w, "   Wind %-12s Humidity %s\n", r.Wind, r.Humidity)
	fmt.Fprintf(w, "   Pressure %-8s Rain %s\n", r.Pressure, r.Rain)
	fmt.Fprintf(w, "   Clouds %-10s Visibility %s\n", r.Clouds, r.Visibility)

	if chart != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, chart)
	}

	if len(v.history) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recent searches:")
		for _, h := range v.history {
			fmt.Fprintf(w, "   %-20s %d°\n", h.District, h.Temperature)
		}
	}
}

// textCanvas draws series as horizontal bar charts.
type textCanvas struct {
	width int

	mu   sync.Mutex
	live *textChart
}

type textChart struct {
	canvas *textCanvas
	text   string
}

func newTextCanvas() *textCanvas {
	return &textCanvas{width: 30}
}

// Draw implements dashboard.Canvas.
func (c *textCanvas) Draw(s dashboard.Series) dashboard.Chart {
	ch := &textChart{canvas: c, text: drawBars(s, c.width)}
	c.mu.Lock()
	c.live = ch
	c.mu.Unlock()
	return ch
}

// Destroy implements dashboard.Chart.
func (ch *textChart) Destroy() {
	c := ch.canvas
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == ch {
		c.live = nil
	}
}

// String returns the live chart, or "" when there is none.
func (c *textCanvas) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		return ""
	}
	return c.live.text
}

func drawBars(s dashboard.Series, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Label)

	peak := 0.0
	for _, v := range s.Values {
		peak = math.Max(peak, math.Abs(v))
	}
	for i, v := range s.Values {
		n := 0
		if peak > 0 {
			n = int(math.Round(math.Abs(v) / peak * float64(width)))
		}
		fmt.Fprintf(&b, "   %-6s %s %g\n", s.Labels[i], strings.Repeat("█", n), v)
	}
	return b.String()
}

// terminalNav records where the pipeline asked to go.
type terminalNav struct {
	mu     sync.Mutex
	target string
}

func (n *terminalNav) ToResult(district string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = dashboard.ResultHref(district)
}

func (n *terminalNav) ToSelection() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = "/"
}

func (n *terminalNav) take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	t := n.target
	n.target = ""
	return t
}
