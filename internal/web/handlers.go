package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/wxdash/internal/config"
	"github.com/hpungsan/wxdash/internal/connectivity"
	"github.com/hpungsan/wxdash/internal/dashboard"
	"github.com/hpungsan/wxdash/internal/db"
	"github.com/hpungsan/wxdash/internal/district"
	"github.com/hpungsan/wxdash/internal/errors"
	"github.com/hpungsan/wxdash/internal/ops"
)

// Handlers contains HTTP route handlers for the dashboard and its API.
type Handlers struct {
	env      *ops.Env
	cfg      *config.Config
	renderer *Renderer
	sessions *sessionStore
	monitor  *connectivity.Monitor
	logger   *slog.Logger
}

func (h *Handlers) pageData(title, nav string, sess *browserSession) PageData {
	return PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
		Offline: sess.view.isOffline(),
	}
}

// HandleHome handles GET / and renders the district selection view.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	h.renderHome(w, r, sess, http.StatusOK)
}

func (h *Handlers) renderHome(w http.ResponseWriter, r *http.Request, sess *browserSession, status int) {
	h.renderer.renderPageStatus(w, r, status, "home", HomePageData{
		PageData: h.pageData("Select a district", "home", sess),
		Value:    sess.dash.Selector.Value(),
		Panel:    sess.dash.Selector.Panel(),
		Notice:   sess.view.takeNotice(),
	})
}

// HandleSuggest handles GET /suggest?q= and renders the suggestion panel for the
// current input text.
func (h *Handlers) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	panel := sess.dash.Selector.Input(r.URL.Query().Get("q"))

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, panel)
		return
	}
	h.renderer.renderBlock(w, http.StatusOK, "home", "suggestions", panel)
}

// HandleSelect handles POST /select. It validates the input and navigates to
// the dashboard.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	sess := h.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sel := sess.dash.Selector
	sel.Input(r.FormValue("district"))
	sel.Dismiss()

	name, err := sel.Commit()
	if err != nil {
		if wantsJSON(r) {
			sess.view.takeNotice()
			wxErr := errors.As(err)
			renderJSONError(w, wxErr, wxErr.Message)
			return
		}
		h.renderHome(w, r, sess, http.StatusBadRequest)
		return
	}

	target := sess.nav.take()
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"district": name,
			"redirect": target,
		})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleResult handles GET /result?district= and renders the dashboard view.
func (h *Handlers) HandleResult(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	raw := strings.TrimSpace(r.URL.Query().Get("district"))
	if d, ok := h.env.Directory.Resolve(raw); ok && d.Name != raw {
		http.Redirect(w, r, dashboard.ResultHref(d.Name), http.StatusFound)
		return
	}

	// Errors are surfaced through the view's notice.
	_ = sess.dash.Controller.Open(r.Context(), raw)

	if target := sess.nav.take(); target != "" {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	h.renderer.renderPage(w, r, "result", h.resultData(sess))
}

func (h *Handlers) resultData(sess *browserSession) ResultPageData {
	v := sess.view
	v.mu.Lock()
	data := ResultPageData{
		District: v.district,
		Loaded:   v.loaded,
		Readouts: v.readouts,
		Icon:     v.icon,
		History:  v.history,
	}
	v.mu.Unlock()

	data.PageData = h.pageData(data.District, "result", sess)
	data.Notice = v.takeNotice()
	data.Chart.Tabs = sess.dash.Chart.Tabs()
	if data.Loaded {
		data.Chart.SVG = sess.canvas.SVG()
		temps, _ := sess.dash.Chart.Series(dashboard.MetricTemp)
		data.Outlook = renderMarkdown(composeOutlook(data.District, data.Readouts, temps))
	}
	return data
}

// HandleChart handles GET /result/chart?metric= and switches the chart metric
// using the session's cached forecast.
func (h *Handlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	metric := dashboard.Metric(r.URL.Query().Get("metric"))
	if _, ok := dashboard.LookupMetric(metric); !ok {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("unknown metric: "+string(metric)))
		return
	}

	sess := h.sessions.get(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	// The cached forecast belongs to the last applied snapshot; after a
	// failed or skipped switch it is some other district's.
	snap := sess.dash.Controller.Snapshot()
	if !sess.dash.Chart.HasForecast() || snap == nil ||
		district.Normalize(snap.District) != district.Normalize(sess.dash.Controller.District()) {
		h.renderer.renderError(w, r, errors.NewNotFound("forecast"))
		return
	}
	sess.dash.SwitchMetric(metric)

	h.renderer.renderBlock(w, http.StatusOK, "result", "chart", ChartData{
		Tabs: sess.dash.Chart.Tabs(),
		SVG:  sess.canvas.SVG(),
	})
}

// HandleAPIDistricts handles GET /api/districts.
func (h *Handlers) HandleAPIDistricts(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, ops.ListDistricts(h.env).Districts)
}

// HandleAPIWeather handles GET /api/weather?district=.
func (h *Handlers) HandleAPIWeather(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Weather(r.Context(), h.env, ops.WeatherInput{District: r.URL.Query().Get("district")})
	if err != nil {
		h.renderAPIError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleAPIHistory handles GET /api/history.
func (h *Handlers) HandleAPIHistory(w http.ResponseWriter, r *http.Request) {
	out, err := ops.History(r.Context(), h.env, ops.HistoryInput{Limit: parseIntParam(r, "limit", 0)})
	if err != nil {
		h.renderAPIError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out.Items)
}

func (h *Handlers) renderAPIError(w http.ResponseWriter, r *http.Request, err error) {
	wxErr := errors.As(err)
	if wxErr == nil {
		wxErr = errors.NewInternal(err)
	}
	message := wxErr.Message
	if wxErr.Code == errors.ErrInternal {
		h.logger.Error("api request failed", "path", r.URL.Path, "error", err)
		message = "internal error"
	}
	renderJSONError(w, wxErr, message)
}

// HandleHealthz handles GET /healthz.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadyz handles GET /readyz. The history store must answer; upstream
// connectivity is reported but does not make the server unready.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), h.env.DB); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		renderJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	online := true
	if h.monitor != nil {
		online = h.monitor.Online()
	}
	renderJSON(w, http.StatusOK, map[string]any{"status": "ready", "online": online})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
