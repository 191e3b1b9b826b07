package web

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/wxdash/internal/dashboard"
	"github.com/hpungsan/wxdash/internal/errors"
	"github.com/hpungsan/wxdash/internal/observability"
)

const sessionCookie = "wxdash_session"

// pageView records what the dashboard components last rendered so a
// handler can turn it into a page.
type pageView struct {
	mu       sync.Mutex
	district string
	readouts dashboard.Readouts
	icon     dashboard.IconTreatment
	loaded   bool
	history  []dashboard.HistoryItem
	notice   error
	offline  bool
}

func (v *pageView) ShowNotice(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notice = err
}

func (v *pageView) SetDistrict(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if name != v.district {
		v.loaded = false
	}
	v.district = name
}

func (v *pageView) SetReadouts(r dashboard.Readouts) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.readouts = r
	v.loaded = true
}

func (v *pageView) SetIcon(t dashboard.IconTreatment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.icon = t
}

func (v *pageView) SetHistory(items []dashboard.HistoryItem) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = items
}

func (v *pageView) SetOffline(offline bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offline = offline
}

// takeNotice returns the pending notice message and clears it.
func (v *pageView) takeNotice() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.notice == nil {
		return ""
	}
	msg := v.notice.Error()
	if wx := errors.As(v.notice); wx != nil {
		msg = wx.Message
	}
	v.notice = nil
	return msg
}

func (v *pageView) isOffline() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offline
}

// redirectNav records the navigation target for the handler to answer with.
type redirectNav struct {
	mu     sync.Mutex
	target string
}

func (n *redirectNav) ToResult(district string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = dashboard.ResultHref(district)
}

func (n *redirectNav) ToSelection() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = "/"
}

func (n *redirectNav) take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	t := n.target
	n.target = ""
	return t
}

// browserSession is the dashboard state behind one session cookie.
// Requests for the same session are serialized by mu.
type browserSession struct {
	mu       sync.Mutex
	id       string
	dash     *dashboard.Session
	view     *pageView
	canvas   *svgCanvas
	nav      *redirectNav
	lastSeen time.Time
}

// sessionStore maps cookies to dashboard sessions and expires idle ones.
type sessionStore struct {
	idle    time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	build   func(view *pageView, canvas *svgCanvas, nav *redirectNav) *dashboard.Session
	secure  bool
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*browserSession
}

func (s *sessionStore) get(w http.ResponseWriter, r *http.Request) *browserSession {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)

	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok {
			sess.lastSeen = now
			return sess
		}
	}

	sess := &browserSession{
		id:       newSessionID(now),
		view:     &pageView{},
		canvas:   newSVGCanvas(s.logger),
		nav:      &redirectNav{},
		lastSeen: now,
	}
	sess.dash = s.build(sess.view, sess.canvas, sess.nav)
	s.sessions[sess.id] = sess
	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// sweep closes sessions idle for longer than the idle timeout.
// Caller holds s.mu.
func (s *sessionStore) sweep(now time.Time) {
	if s.idle <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) <= s.idle {
			continue
		}
		delete(s.sessions, id)
		sess.dash.Close()
		if s.metrics != nil {
			s.metrics.SessionsActive.Dec()
		}
	}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func newSessionID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
