package dashboard

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/hpungsan/wxdash/internal/weather"
)

// DateTimeLayout formats the dashboard's date label.
const DateTimeLayout = "Monday, 03:04 PM"

// Notifier surfaces a user-facing notice for a failed action.
type Notifier interface {
	ShowNotice(err error)
}

// View is the set of binding points a host renders.
type View interface {
	Notifier
	SetDistrict(name string)
	SetReadouts(r Readouts)
	SetIcon(t IconTreatment)
	SetHistory(items []HistoryItem)
	SetOffline(offline bool)
}

// Readout is a formatted value with its unit.
type Readout struct {
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

func (r Readout) String() string {
	if r.Unit == "" {
		return r.Value
	}
	return r.Value + " " + r.Unit
}

// Readouts is the formatted text of every readout field.
type Readouts struct {
	DateTime    string  `json:"date_time"`
	Temperature Readout `json:"temperature"`
	FeelsLike   Readout `json:"feels_like"`
	Condition   string  `json:"condition"`
	Wind        Readout `json:"wind"`
	Humidity    Readout `json:"humidity"`
	Pressure    Readout `json:"pressure"`
	Rain        Readout `json:"rain"`
	Clouds      Readout `json:"clouds"`
	Visibility  Readout `json:"visibility"`
}

// BuildReadouts formats current conditions. Temperatures are rounded to
// whole degrees; every other reading keeps its precision.
func BuildReadouts(c weather.Current, now time.Time) Readouts {
	return Readouts{
		DateTime:    now.Format(DateTimeLayout),
		Temperature: Readout{Value: strconv.Itoa(Round(c.Temperature)), Unit: "°C"},
		FeelsLike:   Readout{Value: strconv.Itoa(Round(c.FeelsLike)), Unit: "°C"},
		Condition:   weather.Describe(c.ConditionCode),
		Wind:        Readout{Value: formatNumber(c.WindSpeed), Unit: "km/h"},
		Humidity:    Readout{Value: formatNumber(c.Humidity), Unit: "%"},
		Pressure:    Readout{Value: formatNumber(c.Pressure), Unit: "hPa"},
		Rain:        Readout{Value: formatNumber(c.RainProbability), Unit: "%"},
		Clouds:      Readout{Value: formatNumber(c.CloudCover), Unit: "%"},
		Visibility:  Readout{Value: formatNumber(c.Visibility), Unit: "m"},
	}
}

// Round rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// syncView serializes calls into a host view. The load-time history refresh
// runs alongside the weather fetch and both write to the same view.
type syncView struct {
	mu sync.Mutex
	v  View
}

func (s *syncView) ShowNotice(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.ShowNotice(err)
}

func (s *syncView) SetDistrict(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.SetDistrict(name)
}

func (s *syncView) SetReadouts(r Readouts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.SetReadouts(r)
}

func (s *syncView) SetIcon(t IconTreatment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.SetIcon(t)
}

func (s *syncView) SetHistory(items []HistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.SetHistory(items)
}

func (s *syncView) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.SetOffline(offline)
}

type nopView struct{}

func (nopView) ShowNotice(error)         {}
func (nopView) SetDistrict(string)       {}
func (nopView) SetReadouts(Readouts)     {}
func (nopView) SetIcon(IconTreatment)    {}
func (nopView) SetHistory([]HistoryItem) {}
func (nopView) SetOffline(bool)          {}
