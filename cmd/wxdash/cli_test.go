package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hpungsan/wxdash/internal/config"
	"github.com/hpungsan/wxdash/internal/dashboard"
	"github.com/hpungsan/wxdash/internal/db"
	"github.com/hpungsan/wxdash/internal/district"
	"github.com/hpungsan/wxdash/internal/observability"
	"github.com/hpungsan/wxdash/internal/ops"
	"github.com/hpungsan/wxdash/internal/weather"
	"github.com/hpungsan/wxdash/internal/web"
)

type stubProvider struct{}

func (stubProvider) Snapshot(_ context.Context, d district.District) (*weather.Snapshot, error) {
	base := time.Date(2025, 6, 2, 14, 0, 0, 0, time.FixedZone("IST", 19800))
	var forecast []weather.ForecastPoint
	for i := 0; i < 5; i++ {
		forecast = append(forecast, weather.ForecastPoint{
			Time:     base.Add(time.Duration(i) * time.Hour),
			Temp:     28 + float64(i),
			Humidity: 75,
			Wind:     9,
			Clouds:   80,
		})
	}
	return &weather.Snapshot{
		District: d.Name,
		Current: weather.Current{
			Temperature:     28.5,
			FeelsLike:       32.4,
			ConditionCode:   61,
			WindSpeed:       9.4,
			Humidity:        84,
			Pressure:        1006,
			RainProbability: 70,
			CloudCover:      88,
			Visibility:      18000,
		},
		Forecast:  forecast,
		FetchedAt: time.Date(2025, 6, 2, 8, 5, 0, 0, time.UTC),
	}, nil
}

func (stubProvider) Name() string { return "stub" }

// setupTestEnv creates a temporary database and operation environment.
func setupTestEnv(t *testing.T) *ops.Env {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return &ops.Env{
		DB:        database,
		Directory: district.Kerala(),
		Provider:  stubProvider{},
		Clock:     clockwork.NewFakeClockAt(time.Date(2025, 6, 2, 8, 5, 0, 0, time.UTC)),
		Logger:    observability.Discard(),
	}
}

// runCLI runs the app with args and returns what it wrote.
func runCLI(t *testing.T, env *ops.Env, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(env, config.DefaultConfig())
	var buf bytes.Buffer
	app.Writer = &buf
	err := app.Run(append([]string{"wxdash"}, args...))
	return buf.String(), err
}

func TestCLIDistricts(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env, "districts")
	if err != nil {
		t.Fatalf("districts command failed: %v", err)
	}
	var output ops.ListDistrictsOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if len(output.Districts) != 14 {
		t.Errorf("districts = %d, want 14", len(output.Districts))
	}
}

func TestCLISuggest(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env, "suggest", "ko")
	if err != nil {
		t.Fatalf("suggest command failed: %v", err)
	}
	var output ops.SuggestOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	var names []string
	for _, m := range output.Matches {
		names = append(names, m.Name)
	}
	if got := strings.Join(names, ","); got != "Kollam,Kottayam,Kozhikode" {
		t.Errorf("matches = %s", got)
	}
}

func TestCLIWeather(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env, "weather", "thrissur")
	if err != nil {
		t.Fatalf("weather command failed: %v", err)
	}
	var output ops.WeatherOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if output.District != "Thrissur" || output.Condition != "Light Rain" {
		t.Errorf("got %s / %s", output.District, output.Condition)
	}
}

func TestCLIWeather_Markdown(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env, "weather", "--format", "markdown", "Kannur")
	if err != nil {
		t.Fatalf("weather command failed: %v", err)
	}
	for _, want := range []string{"# Kannur", "**Light Rain**, 29 °C (feels like 32 °C)", "## Next hours", "- 2 PM: 28 °C"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestCLIWeather_Errors(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown district", []string{"weather", "Kochi"}, "[INVALID_SELECTION]"},
		{"missing district", []string{"weather"}, "[INVALID_REQUEST]"},
		{"bad format", []string{"weather", "--format", "xml", "Kollam"}, "[INVALID_REQUEST]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, env, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %s", err.Error(), tt.want)
			}
		})
	}
}

func TestCLIHistory(t *testing.T) {
	env := setupTestEnv(t)

	for _, d := range []string{"Kollam", "Wayanad"} {
		if _, err := runCLI(t, env, "weather", d); err != nil {
			t.Fatalf("weather %s: %v", d, err)
		}
		env.Clock.(*clockwork.FakeClock).Advance(time.Second)
	}

	out, err := runCLI(t, env, "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history command failed: %v", err)
	}
	var output ops.HistoryOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(output.Items) != 1 || output.Items[0].District != "Wayanad" {
		t.Errorf("unexpected history: %+v", output.Items)
	}
}

func TestCLIPurge(t *testing.T) {
	env := setupTestEnv(t)
	clock := env.Clock.(*clockwork.FakeClock)

	if _, err := runCLI(t, env, "weather", "Kollam"); err != nil {
		t.Fatalf("weather: %v", err)
	}
	clock.Advance(10 * 24 * time.Hour)
	if _, err := runCLI(t, env, "weather", "Wayanad"); err != nil {
		t.Fatalf("weather: %v", err)
	}

	out, err := runCLI(t, env, "purge", "--older-than", "7d")
	if err != nil {
		t.Fatalf("purge command failed: %v", err)
	}
	var output ops.PurgeOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if output.Purged != 1 {
		t.Errorf("expected 1 purged, got %d", output.Purged)
	}

	if _, err := runCLI(t, env, "purge", "--older-than", "7"); err == nil {
		t.Error("expected error for duration without unit")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input       string
		expected    int
		expectError bool
	}{
		{"7d", 7, false},
		{"0d", 0, false},
		{"365d", 365, false},
		{"-7d", 0, true},
		{"7", 0, true},
		{"7h", 0, true},
		{"xd", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := parseDuration(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestCLIDash_Local(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env, "dash", "ernakulam")
	if err != nil {
		t.Fatalf("dash command failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"== Ernakulam ==",
		"Monday, 01:35 PM",
		"Light Rain  29 °C (feels like 32 °C)",
		"Temperature (°C)",
		"2 PM",
		"Recent searches:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestCLIDash_Metric(t *testing.T) {
	env := setupTestEnv(t)

	out, err := runCLI(t, env, "dash", "--metric", "humidity", "Idukki")
	if err != nil {
		t.Fatalf("dash command failed: %v", err)
	}
	if !strings.Contains(out, "Humidity (%)") {
		t.Errorf("expected humidity chart in:\n%s", out)
	}
	if strings.Contains(out, "Temperature (°C)") {
		t.Error("temperature chart should have been replaced")
	}

	_, err = runCLI(t, env, "dash", "--metric", "pollen", "Idukki")
	if err == nil || !strings.Contains(err.Error(), "unknown metric") {
		t.Errorf("expected unknown metric error, got %v", err)
	}
}

func TestCLIDash_InvalidSelection(t *testing.T) {
	env := setupTestEnv(t)

	_, err := runCLI(t, env, "dash", "Atlantis")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Please select a valid district") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestCLIDash_Server(t *testing.T) {
	serverEnv := setupTestEnv(t)
	srv := web.NewServer(web.Options{Env: serverEnv, Config: config.DefaultConfig(), Clock: serverEnv.Clock})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	out, err := runCLI(t, setupTestEnv(t), "dash", "--server", ts.URL, "Kasaragod")
	if err != nil {
		t.Fatalf("dash command failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "== Kasaragod ==") || !strings.Contains(out, "Kasaragod") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "offline") {
		t.Error("server is reachable, should not be offline")
	}
}

func TestCLIDash_ServerUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	out, err := runCLI(t, setupTestEnv(t), "dash", "--server", url, "Kollam")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(out, "You are offline.") {
		t.Errorf("expected offline banner in:\n%s", out)
	}
}

func TestDrawBars(t *testing.T) {
	got := drawBars(dashboard.Series{
		Label:  "Wind (km/h)",
		Labels: []string{"1 PM", "2 PM"},
		Values: []float64{5, 10},
	}, 10)

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), got)
	}
	if strings.Count(lines[1], "█") != 5 || strings.Count(lines[2], "█") != 10 {
		t.Errorf("bars not scaled to the peak:\n%s", got)
	}
}

func TestTextCanvas_DestroyOnlyClearsLive(t *testing.T) {
	c := newTextCanvas()
	s := dashboard.Series{Label: "Clouds (%)", Labels: []string{"1 PM"}, Values: []float64{0}}

	old := c.Draw(s)
	c.Draw(s)
	old.Destroy()
	if c.String() == "" {
		t.Error("live chart should survive destroying an older instance")
	}
}

func TestNewProvider_Chain(t *testing.T) {
	cfg := config.DefaultConfig()
	p := newProvider(cfg, observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	if p.Name() != "open-meteo [rate limited] [cached]" {
		t.Errorf("provider = %q", p.Name())
	}

	cfg.CacheTTLSeconds = -1
	cfg.RateLimitRPS = 0
	p = newProvider(cfg, nil, nil)
	if p.Name() != "open-meteo" {
		t.Errorf("provider = %q, want bare client", p.Name())
	}
}

func TestCLIErrorHandling(t *testing.T) {
	_, err := runCLI(t, setupTestEnv(t), "weather", "--format")
	if err == nil {
		t.Error("expected flag parsing error")
	}
}

func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"wxdash"}, false},
		{"serve command", []string{"wxdash", "serve"}, true},
		{"dash command", []string{"wxdash", "dash"}, true},
		{"help flag", []string{"wxdash", "--help"}, true},
		{"short version flag", []string{"wxdash", "-v"}, true},
		{"unknown arg defaults to MCP", []string{"wxdash", "--unknown"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if got := isCLIMode(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		args     []string
		expected bool
	}{
		{[]string{"wxdash"}, false},
		{[]string{"wxdash", "help"}, true},
		{[]string{"wxdash", "--version"}, true},
		{[]string{"wxdash", "serve"}, false},
	}

	for _, tt := range tests {
		oldArgs := os.Args
		os.Args = tt.args
		got := isHelpOrVersion()
		os.Args = oldArgs
		if got != tt.expected {
			t.Errorf("isHelpOrVersion(%v) = %v, want %v", tt.args, got, tt.expected)
		}
	}
}
