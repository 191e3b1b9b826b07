package ops

import (
	"context"

	"github.com/hpungsan/wxdash/internal/dashboard"
	"github.com/hpungsan/wxdash/internal/weather"
)

// LocalSource serves a dashboard session from in-process operations.
type LocalSource struct {
	Env *Env
}

// Districts implements dashboard.DirectorySource.
func (s LocalSource) Districts(context.Context) ([]string, error) {
	return ListDistricts(s.Env).Districts, nil
}

// Weather implements dashboard.WeatherSource.
func (s LocalSource) Weather(ctx context.Context, district string) (*weather.Snapshot, error) {
	out, err := Weather(ctx, s.Env, WeatherInput{District: district})
	if err != nil {
		return nil, err
	}
	return out.Snapshot(), nil
}

// History implements dashboard.HistorySource.
func (s LocalSource) History(ctx context.Context) ([]dashboard.HistoryEntry, error) {
	out, err := History(ctx, s.Env, HistoryInput{})
	if err != nil {
		return nil, err
	}
	entries := make([]dashboard.HistoryEntry, len(out.Items))
	for i, r := range out.Items {
		entries[i] = dashboard.HistoryEntry{District: r.District, Temperature: r.Temperature}
	}
	return entries, nil
}

var (
	_ dashboard.DirectorySource = LocalSource{}
	_ dashboard.WeatherSource   = LocalSource{}
	_ dashboard.HistorySource   = LocalSource{}
)
