// Package client talks to a running wxdash server's JSON API and serves a
// dashboard session from it.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/wxdash/internal/dashboard"
	"github.com/hpungsan/wxdash/internal/errors"
	"github.com/hpungsan/wxdash/internal/ops"
	"github.com/hpungsan/wxdash/internal/weather"
)

// Client handles wxdash API interactions.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client

	// HistoryLimit is sent as ?limit= when positive.
	HistoryLimit int
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserAgent:  "wxdash-client/1.0",
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// apiError is the server's JSON error envelope.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

// get fetches path and decodes the JSON body into v. Transport errors,
// non-2xx answers and undecodable bodies all become fetch failures.
func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return errors.NewFetchFailure(err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.NewFetchFailure(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewFetchFailure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Error.Code != "" {
			return errors.NewFetchFailure(fmt.Errorf("wxdash API %s: %s (%s)", resp.Status, ae.Error.Message, ae.Error.Code))
		}
		return errors.NewFetchFailure(fmt.Errorf("wxdash API error: %s", resp.Status))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewFetchFailure(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

// Districts implements dashboard.DirectorySource.
func (c *Client) Districts(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.get(ctx, "/api/districts", &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Weather implements dashboard.WeatherSource. The snapshot is validated
// before it is returned.
func (c *Client) Weather(ctx context.Context, district string) (*weather.Snapshot, error) {
	var out ops.WeatherOutput
	if err := c.get(ctx, "/api/weather?district="+url.QueryEscape(district), &out); err != nil {
		return nil, err
	}
	snap := out.Snapshot()
	if err := snap.Validate(); err != nil {
		return nil, errors.NewFetchFailure(err)
	}
	return snap, nil
}

// History implements dashboard.HistorySource.
func (c *Client) History(ctx context.Context) ([]dashboard.HistoryEntry, error) {
	records, err := c.HistoryRecords(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]dashboard.HistoryEntry, len(records))
	for i, r := range records {
		entries[i] = dashboard.HistoryEntry{District: r.District, Temperature: r.Temperature}
	}
	return entries, nil
}

// HistoryRecords returns the full history rows, most recent first.
func (c *Client) HistoryRecords(ctx context.Context) ([]ops.HistoryRecord, error) {
	path := "/api/history"
	if c.HistoryLimit > 0 {
		path += "?limit=" + strconv.Itoa(c.HistoryLimit)
	}
	var records []ops.HistoryRecord
	if err := c.get(ctx, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

var (
	_ dashboard.DirectorySource = (*Client)(nil)
	_ dashboard.WeatherSource   = (*Client)(nil)
	_ dashboard.HistorySource   = (*Client)(nil)
)
