package dashboard

import (
	"strconv"
	"sync"
	"time"

	"github.com/hpungsan/wxdash/internal/weather"
)

// Metric names a forecast field the chart can plot.
type Metric string

const (
	MetricTemp     Metric = "temp"
	MetricHumidity Metric = "humidity"
	MetricWind     Metric = "wind"
	MetricClouds   Metric = "clouds"
)

// MetricSpec is a metric's fixed label, color and projection.
type MetricSpec struct {
	Metric Metric
	Label  string
	Color  string
	value  func(weather.ForecastPoint) float64
}

var metricSpecs = []MetricSpec{
	{MetricTemp, "Temperature (°C)", "#3b82f6", func(p weather.ForecastPoint) float64 { return p.Temp }},
	{MetricHumidity, "Humidity (%)", "#10b981", func(p weather.ForecastPoint) float64 { return p.Humidity }},
	{MetricWind, "Wind (km/h)", "#f59e0b", func(p weather.ForecastPoint) float64 { return p.Wind }},
	{MetricClouds, "Clouds (%)", "#6366f1", func(p weather.ForecastPoint) float64 { return p.Clouds }},
}

// Metrics returns every chartable metric in tab order.
func Metrics() []MetricSpec {
	out := make([]MetricSpec, len(metricSpecs))
	copy(out, metricSpecs)
	return out
}

// LookupMetric returns the MetricSpec for m.
func LookupMetric(m Metric) (MetricSpec, bool) {
	for _, s := range metricSpecs {
		if s.Metric == m {
			return s, true
		}
	}
	return MetricSpec{}, false
}

// Series is one metric projected over the cached forecast.
type Series struct {
	Metric Metric
	Label  string
	Color  string
	Labels []string
	Values []float64
}

// Chart is a live chart instance.
type Chart interface {
	Destroy()
}

// Canvas creates chart instances. It is the chart mount point.
type Canvas interface {
	Draw(s Series) Chart
}

// Tab is a metric tab control.
type Tab struct {
	Metric Metric
	Label  string
	Active bool
}

// ChartRenderer owns the forecast cache and the single live chart
// instance. The previous instance is destroyed before a new one is drawn.
type ChartRenderer struct {
	canvas Canvas

	mu       sync.Mutex
	forecast []weather.ForecastPoint
	active   Chart
	metric   Metric
	onRender func(Series)
}

// NewChartRenderer creates a renderer drawing on canvas. A nil canvas makes
// every render a no-op.
func NewChartRenderer(canvas Canvas) *ChartRenderer {
	return &ChartRenderer{canvas: canvas, metric: MetricTemp}
}

// OnRender registers fn to be called with each drawn series.
func (r *ChartRenderer) OnRender(fn func(Series)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRender = fn
}

// SetForecast replaces the forecast cache and renders temperature.
func (r *ChartRenderer) SetForecast(points []weather.ForecastPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forecast = append([]weather.ForecastPoint(nil), points...)
	r.render(MetricTemp)
}

// Render draws m from the cached forecast. Unknown metrics and a missing
// canvas leave the current chart in place.
func (r *ChartRenderer) Render(m Metric) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.render(m)
}

func (r *ChartRenderer) render(m Metric) bool {
	spec, ok := LookupMetric(m)
	if !ok || r.canvas == nil {
		return false
	}
	s := project(spec, r.forecast)

	if r.active != nil {
		r.active.Destroy()
		r.active = nil
	}
	r.active = r.canvas.Draw(s)
	r.metric = m

	if r.onRender != nil {
		r.onRender(s)
	}
	return true
}

func project(spec MetricSpec, points []weather.ForecastPoint) Series {
	s := Series{
		Metric: spec.Metric,
		Label:  spec.Label,
		Color:  spec.Color,
		Labels: make([]string, len(points)),
		Values: make([]float64, len(points)),
	}
	for i, p := range points {
		s.Labels[i] = HourLabel(p.Time)
		s.Values[i] = spec.value(p)
	}
	return s
}

// Series returns the series for m without drawing it.
func (r *ChartRenderer) Series(m Metric) (Series, bool) {
	spec, ok := LookupMetric(m)
	if !ok {
		return Series{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return project(spec, r.forecast), true
}

// Active returns the metric on display.
func (r *ChartRenderer) Active() Metric {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metric
}

// Tabs returns the metric tabs with exactly one marked active.
func (r *ChartRenderer) Tabs() []Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	tabs := make([]Tab, len(metricSpecs))
	for i, s := range metricSpecs {
		tabs[i] = Tab{Metric: s.Metric, Label: s.Label, Active: s.Metric == r.metric}
	}
	return tabs
}

// HasForecast reports whether a forecast has been cached.
func (r *ChartRenderer) HasForecast() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forecast != nil
}

// Close destroys the live instance.
func (r *ChartRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.Destroy()
		r.active = nil
	}
}

// HourLabel formats t as a 12-hour clock hour, e.g. "1 PM" or "12 AM".
func HourLabel(t time.Time) string {
	h := t.Hour()
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return strconv.Itoa(h) + " " + suffix
}
