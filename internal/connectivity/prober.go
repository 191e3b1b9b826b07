package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hpungsan/wxdash/internal/observability"
)

// Prober periodically checks that the upstream endpoint answers and feeds
// the result into a Monitor.
type Prober struct {
	URL      string
	Interval time.Duration
	Client   *http.Client
	Monitor  *Monitor
	Metrics  *observability.Metrics
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Run probes once immediately, then every Interval until ctx is done.
func (p *Prober) Run(ctx context.Context) {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := p.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	p.ProbeOnce(ctx)

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.ProbeOnce(ctx)
		}
	}
}

// ProbeOnce issues one probe and records the result. Any HTTP response
// counts as online; only transport errors mean offline.
func (p *Prober) ProbeOnce(ctx context.Context) bool {
	online := p.probe(ctx)
	if ctx.Err() != nil {
		return p.Monitor.Online()
	}

	if was := p.Monitor.Online(); was != online && p.Logger != nil {
		p.Logger.Info("connectivity changed", "online", online, "url", p.URL)
	}
	p.Monitor.Set(online)
	if p.Metrics != nil {
		v := 0.0
		if online {
			v = 1
		}
		p.Metrics.ConnectivityOnline.Set(v)
	}
	return online
}

func (p *Prober) probe(ctx context.Context) bool {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
