package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hpungsan/wxdash/internal/weather"
)

var ist = time.FixedZone("IST", 19800)

// fakeView records every call as an event.
type fakeView struct {
	mu       sync.Mutex
	district string
	readouts []Readouts
	icons    []IconTreatment
	history  [][]HistoryItem
	notices  []error
	offline  []bool
	log      *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func newFakeView(log *eventLog) *fakeView {
	if log == nil {
		log = &eventLog{}
	}
	return &fakeView{log: log}
}

func (v *fakeView) ShowNotice(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, err)
	v.log.add("notice")
}

func (v *fakeView) SetDistrict(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.district = name
	v.log.add("district:" + name)
}

func (v *fakeView) SetReadouts(r Readouts) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.readouts = append(v.readouts, r)
	v.log.add("readouts")
}

func (v *fakeView) SetIcon(t IconTreatment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.icons = append(v.icons, t)
	v.log.add("icon")
}

func (v *fakeView) SetHistory(items []HistoryItem) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = append(v.history, items)
	v.log.add("history")
}

func (v *fakeView) SetOffline(offline bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offline = append(v.offline, offline)
}

func (v *fakeView) snapshot() (notices []error, readouts []Readouts, history [][]HistoryItem) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]error(nil), v.notices...),
		append([]Readouts(nil), v.readouts...),
		append([][]HistoryItem(nil), v.history...)
}

// fakeCanvas hands out charts and tracks which are still live.
type fakeCanvas struct {
	mu     sync.Mutex
	charts []*fakeChart
	log    *eventLog
}

type fakeChart struct {
	series    Series
	destroyed bool
	canvas    *fakeCanvas
}

func (c *fakeChart) Destroy() {
	c.canvas.mu.Lock()
	defer c.canvas.mu.Unlock()
	c.destroyed = true
}

func (c *fakeCanvas) Draw(s Series) Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := &fakeChart{series: s, canvas: c}
	c.charts = append(c.charts, ch)
	if c.log != nil {
		c.log.add("draw:" + string(s.Metric))
	}
	return ch
}

func (c *fakeCanvas) live() []*fakeChart {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeChart
	for _, ch := range c.charts {
		if !ch.destroyed {
			out = append(out, ch)
		}
	}
	return out
}

func (c *fakeCanvas) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.charts)
}

type fakeNav struct {
	mu        sync.Mutex
	results   []string
	selection int
}

func (n *fakeNav) ToResult(d string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results = append(n.results, d)
}

func (n *fakeNav) ToSelection() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selection++
}

// fakeWeather serves fixed snapshots. A gate, when set for a district,
// blocks that fetch until the channel is closed.
type fakeWeather struct {
	mu    sync.Mutex
	snaps map[string]*weather.Snapshot
	err   error
	gates map[string]chan struct{}
	calls int
}

func (w *fakeWeather) Weather(ctx context.Context, d string) (*weather.Snapshot, error) {
	w.mu.Lock()
	w.calls++
	gate := w.gates[d]
	snap, err := w.snaps[d], w.err
	w.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("no snapshot for %s", d)
	}
	return snap, nil
}

func (w *fakeWeather) callCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []HistoryEntry
	err     error
	calls   int
	// gates[i] blocks the i-th call (0-based) until closed.
	gates map[int]chan struct{}
	// results[i] overrides entries for the i-th call.
	results map[int][]HistoryEntry
}

func (h *fakeHistory) History(ctx context.Context) ([]HistoryEntry, error) {
	h.mu.Lock()
	n := h.calls
	h.calls++
	gate := h.gates[n]
	entries, err := h.entries, h.err
	if r, ok := h.results[n]; ok {
		entries = r
	}
	h.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return entries, err
}

func (h *fakeHistory) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

type fakeConn struct {
	mu     sync.Mutex
	online bool
	subs   map[int]func(bool)
	next   int
}

func newFakeConn(online bool) *fakeConn {
	return &fakeConn{online: online, subs: map[int]func(bool){}}
}

func (c *fakeConn) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

func (c *fakeConn) Subscribe(fn func(bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *fakeConn) set(online bool) {
	c.mu.Lock()
	c.online = online
	var fns []func(bool)
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(online)
	}
}

func (c *fakeConn) subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// testForecast returns n hourly points starting at 1 PM IST.
func testForecast(n int) []weather.ForecastPoint {
	base := time.Date(2025, 6, 1, 13, 0, 0, 0, ist)
	pts := make([]weather.ForecastPoint, n)
	for i := range pts {
		pts[i] = weather.ForecastPoint{
			Time:     base.Add(time.Duration(i) * time.Hour),
			Temp:     28 + float64(i),
			Humidity: 70 + float64(i)*2,
			Wind:     10 + float64(i)*0.5,
			Clouds:   float64(i) * 20,
		}
	}
	return pts
}

func testSnapshot(district string, code int) *weather.Snapshot {
	return &weather.Snapshot{
		District: district,
		Current: weather.Current{
			Temperature:     28.6,
			FeelsLike:       33.4,
			ConditionCode:   code,
			WindSpeed:       11.2,
			Humidity:        78,
			Pressure:        1008.4,
			RainProbability: 40,
			CloudCover:      90,
			Visibility:      24140,
		},
		Forecast: testForecast(5),
	}
}
