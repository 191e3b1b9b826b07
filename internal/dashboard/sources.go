// Package dashboard holds the per-user dashboard pipeline: the selector that
// turns free text into a directory entry, and the controller, chart renderer
// and history list that turn a fetched snapshot into synchronized views.
//
// Components are plain structs wired together by NewSession. Hosts (the web
// server and the terminal dashboard) supply the View, Canvas and Navigator.
package dashboard

import (
	"context"

	"github.com/hpungsan/wxdash/internal/weather"
)

// DirectorySource supplies the canonical district names.
type DirectorySource interface {
	Districts(ctx context.Context) ([]string, error)
}

// WeatherSource fetches a snapshot for a canonical district name.
type WeatherSource interface {
	Weather(ctx context.Context, district string) (*weather.Snapshot, error)
}

// HistorySource fetches recent lookups, most recent first.
type HistorySource interface {
	History(ctx context.Context) ([]HistoryEntry, error)
}

// HistoryEntry is one recent lookup.
type HistoryEntry struct {
	District    string  `json:"district"`
	Temperature float64 `json:"temperature"`
}

// Navigator moves the host between the selection view and the dashboard.
type Navigator interface {
	ToResult(district string)
	ToSelection()
}

// Connectivity reports whether the network is reachable.
type Connectivity interface {
	Online() bool
	Subscribe(fn func(online bool)) (unsubscribe func())
}

type alwaysOnline struct{}

func (alwaysOnline) Online() bool                        { return true }
func (alwaysOnline) Subscribe(func(bool)) (unsub func()) { return func() {} }
