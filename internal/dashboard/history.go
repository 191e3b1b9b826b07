package dashboard

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/hpungsan/wxdash/internal/observability"
)

// ResultPath is the dashboard entry point; history items link back to it.
const ResultPath = "/result"

// HistoryItem is a rendered history entry.
type HistoryItem struct {
	District    string `json:"district"`
	Temperature int    `json:"temperature"`
	Href        string `json:"href"`
}

// ResultHref returns the dashboard link for district.
func ResultHref(district string) string {
	return ResultPath + "?district=" + url.QueryEscape(district)
}

// HistoryList fetches recent lookups and re-renders them wholesale.
// Fetch failures are logged and otherwise ignored.
type HistoryList struct {
	source HistorySource
	view   View
	nav    Navigator
	logger *slog.Logger

	mu      sync.Mutex
	issued  uint64
	applied uint64
	items   []HistoryItem
}

// NewHistoryList creates a history list.
func NewHistoryList(source HistorySource, view View, nav Navigator, logger *slog.Logger) *HistoryList {
	if logger == nil {
		logger = observability.Discard()
	}
	return &HistoryList{source: source, view: view, nav: nav, logger: logger}
}

// Refresh fetches the history and replaces the rendered list. When
// refreshes overlap, a response older than one already applied is dropped.
func (h *HistoryList) Refresh(ctx context.Context) {
	if h.source == nil {
		return
	}
	h.mu.Lock()
	h.issued++
	ticket := h.issued
	h.mu.Unlock()

	entries, err := h.source.History(ctx)
	if err != nil {
		h.logger.Debug("history refresh failed", "error", err)
		return
	}

	items := make([]HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = HistoryItem{
			District:    e.District,
			Temperature: Round(e.Temperature),
			Href:        ResultHref(e.District),
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if ticket < h.applied {
		return
	}
	h.applied = ticket
	h.items = items
	if h.view != nil {
		h.view.SetHistory(items)
	}
}

// Items returns the rendered items.
func (h *HistoryList) Items() []HistoryItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HistoryItem(nil), h.items...)
}

// Select re-navigates to the dashboard for the i-th item.
func (h *HistoryList) Select(i int) bool {
	h.mu.Lock()
	if i < 0 || i >= len(h.items) {
		h.mu.Unlock()
		return false
	}
	name := h.items[i].District
	h.mu.Unlock()
	if h.nav != nil {
		h.nav.ToResult(name)
	}
	return true
}
