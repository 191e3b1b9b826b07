package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hpungsan/wxdash/internal/config"
	"github.com/hpungsan/wxdash/internal/connectivity"
	"github.com/hpungsan/wxdash/internal/dashboard"
	"github.com/hpungsan/wxdash/internal/observability"
	"github.com/hpungsan/wxdash/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options configures the web server.
type Options struct {
	Env     *ops.Env
	Config  *config.Config
	Monitor *connectivity.Monitor // optional; nil means always online
	Metrics *observability.Metrics
	Clock   clockwork.Clock
	Logger  *slog.Logger
	Version string
}

// NewServer creates and configures the HTTP server for the dashboard.
func NewServer(opts Options) *http.Server {
	handler, _ := newHandler(opts)
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Config.Bind, opts.Config.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newHandler(opts Options) (http.Handler, *Handlers) {
	if opts.Logger == nil {
		opts.Logger = observability.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("template sub-FS: %v", err))
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static sub-FS: %v", err))
	}

	h := &Handlers{
		env:      opts.Env,
		cfg:      opts.Config,
		renderer: NewRenderer(templateSub, opts.Version, opts.Logger),
		monitor:  opts.Monitor,
		logger:   opts.Logger,
	}
	h.sessions = &sessionStore{
		idle:     opts.Config.SessionIdle(),
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		sessions: make(map[string]*browserSession),
		build:    sessionBuilder(opts),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.HandleHome)
	mux.HandleFunc("GET /suggest", h.HandleSuggest)
	mux.HandleFunc("POST /select", h.HandleSelect)
	mux.HandleFunc("GET /result", h.HandleResult)
	mux.HandleFunc("GET /result/chart", h.HandleChart)

	mux.HandleFunc("GET /api/districts", h.HandleAPIDistricts)
	mux.HandleFunc("GET /api/weather", h.HandleAPIWeather)
	mux.HandleFunc("GET /api/history", h.HandleAPIHistory)

	mux.HandleFunc("GET /healthz", h.HandleHealthz)
	mux.HandleFunc("GET /readyz", h.HandleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return securityHeaders(mux), h
}

// sessionBuilder returns the factory for per-browser dashboard sessions,
// all served by in-process operations.
func sessionBuilder(opts Options) func(*pageView, *svgCanvas, *redirectNav) *dashboard.Session {
	src := ops.LocalSource{Env: opts.Env}
	var conn dashboard.Connectivity
	if opts.Monitor != nil {
		conn = opts.Monitor
	}
	return func(view *pageView, canvas *svgCanvas, nav *redirectNav) *dashboard.Session {
		s := dashboard.NewSession(dashboard.Options{
			Directory:    src,
			Weather:      src,
			History:      src,
			Connectivity: conn,
			View:         view,
			Canvas:       canvas,
			Navigator:    nav,
			Clock:        opts.Clock,
			Location:     opts.Config.Location(),
			Logger:       opts.Logger,
		})
		if opts.Metrics != nil {
			s.Chart.OnRender(func(series dashboard.Series) {
				opts.Metrics.ChartRenders.WithLabelValues(string(series.Metric)).Inc()
			})
		}
		_ = s.LoadDirectory(context.Background())
		return s
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
// Inline styles are allowed for the SVG chart markup.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *slog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("wxdash running", "url", "http://"+srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
