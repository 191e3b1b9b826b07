package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hpungsan/wxdash/internal/errors"
	"github.com/hpungsan/wxdash/internal/observability"
	"github.com/hpungsan/wxdash/internal/weather"
)

// Controller loads a district's snapshot into the view, icon, chart and
// history list.
//
// Each Open takes a new generation. A snapshot or failure that arrives after
// a newer Open has started is discarded without touching the view.
type Controller struct {
	source  WeatherSource
	conn    Connectivity
	view    View
	chart   *ChartRenderer
	history *HistoryList
	nav     Navigator
	clock   clockwork.Clock
	loc     *time.Location
	logger  *slog.Logger

	mu       sync.Mutex
	gen      uint64
	district string
	snap     *weather.Snapshot
	readouts Readouts
	icon     IconTreatment
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Source       WeatherSource
	Connectivity Connectivity
	View         View
	Chart        *ChartRenderer
	History      *HistoryList
	Navigator    Navigator
	Clock        clockwork.Clock
	Location     *time.Location
	Logger       *slog.Logger
}

// NewController creates a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Connectivity == nil {
		opts.Connectivity = alwaysOnline{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = observability.Discard()
	}
	if opts.Chart == nil {
		opts.Chart = NewChartRenderer(nil)
	}
	return &Controller{
		source:  opts.Source,
		conn:    opts.Connectivity,
		view:    opts.View,
		chart:   opts.Chart,
		history: opts.History,
		nav:     opts.Navigator,
		clock:   opts.Clock,
		loc:     opts.Location,
		logger:  opts.Logger,
	}
}

// Open loads district into the dashboard. The name is expected to be
// canonical already; an empty name redirects to the selection view.
//
// The history list is refreshed once at load regardless of the outcome.
// When offline no fetch is attempted. A failed fetch leaves the previous
// rendering untouched. The returned error has already been shown.
func (c *Controller) Open(ctx context.Context, district string) error {
	district = strings.TrimSpace(district)
	if district == "" {
		if c.nav != nil {
			c.nav.ToSelection()
		}
		return nil
	}

	gen := c.begin(district)

	var wg sync.WaitGroup
	if c.history != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.history.Refresh(ctx)
		}()
	}
	defer wg.Wait()

	if !c.conn.Online() {
		err := errors.NewOfflineUnavailable()
		c.fail(gen, err)
		return err
	}

	snap, err := c.source.Weather(ctx, district)
	if err == nil {
		err = snap.Validate()
	}
	if err != nil {
		c.logger.Warn("weather fetch failed", "district", district, "error", err)
		wxErr := asNotice(err)
		c.fail(gen, wxErr)
		return wxErr
	}

	if !c.apply(gen, snap) {
		c.logger.Debug("discarding stale snapshot", "district", district)
		return nil
	}
	if c.history != nil {
		c.history.Refresh(ctx)
	}
	return nil
}

func (c *Controller) begin(district string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.district = district
	if c.view != nil {
		c.view.SetDistrict(district)
	}
	return c.gen
}

func (c *Controller) fail(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.view == nil {
		return
	}
	c.view.ShowNotice(err)
}

// apply runs the post-fetch steps in order: readouts, icon, chart. The
// header takes the snapshot's district spelling.
func (c *Controller) apply(gen uint64, snap *weather.Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}

	readouts := BuildReadouts(snap.Current, c.clock.Now().In(c.loc))
	icon := TreatmentFor(snap.Current.ConditionCode)

	c.snap = snap
	c.readouts = readouts
	c.icon = icon
	if snap.District != "" {
		c.district = snap.District
	}
	if c.view != nil {
		c.view.SetDistrict(c.district)
		c.view.SetReadouts(readouts)
		c.view.SetIcon(icon)
	}
	c.chart.SetForecast(snap.Forecast)
	return true
}

// asNotice keeps offline and fetch errors as they are and wraps anything
// else as a fetch failure.
func asNotice(err error) *errors.WxError {
	if wx := errors.As(err); wx != nil {
		if wx.Code == errors.ErrFetchFailure || wx.Code == errors.ErrOfflineUnavailable {
			return wx
		}
	}
	return errors.NewFetchFailure(err)
}

// District returns the district of the latest Open.
func (c *Controller) District() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.district
}

// Snapshot returns the last applied snapshot, or nil.
func (c *Controller) Snapshot() *weather.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Readouts returns the last applied readouts and icon. ok is false before
// the first successful load.
func (c *Controller) Readouts() (r Readouts, icon IconTreatment, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readouts, c.icon, c.snap != nil
}
