package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hpungsan/wxdash/internal/district"
	"github.com/hpungsan/wxdash/internal/observability"
)

// Options wires a Session to its host and data sources.
type Options struct {
	Directory    DirectorySource
	Weather      WeatherSource
	History      HistorySource
	Connectivity Connectivity
	View         View
	Canvas       Canvas
	Navigator    Navigator
	Clock        clockwork.Clock
	Location     *time.Location
	Logger       *slog.Logger
}

// Session is one user's dashboard: the selector for the selection view and
// the controller, chart and history list for the dashboard view.
type Session struct {
	Selector   *Selector
	Controller *Controller
	Chart      *ChartRenderer
	History    *HistoryList

	directory   DirectorySource
	logger      *slog.Logger
	unsubscribe func()
}

// NewSession wires the components and subscribes the view's offline banner
// to connectivity changes. Call Close to release the subscription and the
// live chart instance.
func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = observability.Discard()
	}
	if opts.Connectivity == nil {
		opts.Connectivity = alwaysOnline{}
	}
	if opts.View == nil {
		opts.View = nopView{}
	}
	view := &syncView{v: opts.View}

	chart := NewChartRenderer(opts.Canvas)
	history := NewHistoryList(opts.History, view, opts.Navigator, opts.Logger)
	s := &Session{
		Selector: NewSelector(nil, view, opts.Navigator),
		Chart:    chart,
		History:  history,
		Controller: NewController(ControllerOptions{
			Source:       opts.Weather,
			Connectivity: opts.Connectivity,
			View:         view,
			Chart:        chart,
			History:      history,
			Navigator:    opts.Navigator,
			Clock:        opts.Clock,
			Location:     opts.Location,
			Logger:       opts.Logger,
		}),
		directory: opts.Directory,
		logger:    opts.Logger,
	}

	view.SetOffline(!opts.Connectivity.Online())
	s.unsubscribe = opts.Connectivity.Subscribe(func(online bool) {
		view.SetOffline(!online)
	})
	return s
}

// LoadDirectory fetches the district names into the selector. On failure
// the selector keeps its previous directory and every lookup misses.
func (s *Session) LoadDirectory(ctx context.Context) error {
	if s.directory == nil {
		return nil
	}
	names, err := s.directory.Districts(ctx)
	if err != nil {
		s.logger.Warn("directory load failed", "error", err)
		return err
	}
	s.Selector.SetDirectory(district.FromNames(names))
	return nil
}

// SwitchMetric handles a metric tab selection.
func (s *Session) SwitchMetric(m Metric) bool {
	return s.Chart.Render(m)
}

// Close releases the connectivity subscription and the chart instance.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.Chart.Close()
}
