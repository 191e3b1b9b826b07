package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Bind and Port control the web dashboard listener.
	Bind string `json:"bind,omitempty"`
	Port int    `json:"port,omitempty"`

	// WeatherBaseURL is the Open-Meteo forecast endpoint.
	WeatherBaseURL string `json:"weather_base_url,omitempty"`

	// RequestTimeoutSeconds bounds every upstream HTTP request.
	RequestTimeoutSeconds int `json:"request_timeout_seconds,omitempty"`

	// ForecastHours is the number of hourly points after the current hour
	// included in a snapshot. ForecastDays is how many days are requested
	// upstream so late-evening lookups still have enough points.
	ForecastHours int `json:"forecast_hours,omitempty"`
	ForecastDays  int `json:"forecast_days,omitempty"`

	// HistoryLimit is the number of recent lookups returned by /api/history.
	HistoryLimit int `json:"history_limit,omitempty"`

	// CacheTTLSeconds is how long a fetched snapshot is reused per district.
	// 0 keeps the default; a negative value disables the cache.
	CacheTTLSeconds int `json:"cache_ttl_seconds,omitempty"`

	// RateLimitRPS and RateLimitBurst throttle upstream weather requests.
	RateLimitRPS   float64 `json:"rate_limit_rps,omitempty"`
	RateLimitBurst int     `json:"rate_limit_burst,omitempty"`

	// ProbeIntervalSeconds is how often upstream connectivity is checked.
	ProbeIntervalSeconds int `json:"probe_interval_seconds,omitempty"`

	// Timezone is the IANA zone used for the dashboard date label.
	Timezone string `json:"timezone,omitempty"`

	// SessionIdleMinutes expires idle web dashboard sessions.
	SessionIdleMinutes int `json:"session_idle_minutes,omitempty"`

	// LogLevel (debug|info|warn|error) and LogFormat (text|json).
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bind:                  "127.0.0.1",
		Port:                  8080,
		WeatherBaseURL:        "https://api.open-meteo.com/v1/forecast",
		RequestTimeoutSeconds: 10,
		ForecastHours:         5,
		ForecastDays:          2,
		HistoryLimit:          10,
		CacheTTLSeconds:       300,
		RateLimitRPS:          5,
		RateLimitBurst:        5,
		ProbeIntervalSeconds:  30,
		Timezone:              "Asia/Kolkata",
		SessionIdleMinutes:    30,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// RequestTimeout returns RequestTimeoutSeconds as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns the snapshot cache lifetime; zero means disabled.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds < 0 {
		return 0
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ProbeInterval returns ProbeIntervalSeconds as a duration.
func (c *Config) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalSeconds) * time.Second
}

// SessionIdle returns SessionIdleMinutes as a duration.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// Location resolves Timezone, falling back to IST when the zone database
// is unavailable.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+30*60)
}

// Load loads configuration from baseDir/config.json, then applies
// WXDASH_* environment overrides.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.wxdash.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithRepo loads configuration from both global (~/.wxdash) and project
// (.wxdash) directories. The project config is found by walking upward from
// startDir. Project config takes precedence for scalar values; arrays are
// merged (deduplicated). Environment overrides are applied last.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .wxdash/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".wxdash", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Bind:                  pickString(overlay.Bind, base.Bind),
		Port:                  pickInt(overlay.Port, base.Port),
		WeatherBaseURL:        pickString(overlay.WeatherBaseURL, base.WeatherBaseURL),
		RequestTimeoutSeconds: pickInt(overlay.RequestTimeoutSeconds, base.RequestTimeoutSeconds),
		ForecastHours:         pickInt(overlay.ForecastHours, base.ForecastHours),
		ForecastDays:          pickInt(overlay.ForecastDays, base.ForecastDays),
		HistoryLimit:          pickInt(overlay.HistoryLimit, base.HistoryLimit),
		CacheTTLSeconds:       pickInt(overlay.CacheTTLSeconds, base.CacheTTLSeconds),
		RateLimitBurst:        pickInt(overlay.RateLimitBurst, base.RateLimitBurst),
		ProbeIntervalSeconds:  pickInt(overlay.ProbeIntervalSeconds, base.ProbeIntervalSeconds),
		Timezone:              pickString(overlay.Timezone, base.Timezone),
		SessionIdleMinutes:    pickInt(overlay.SessionIdleMinutes, base.SessionIdleMinutes),
		LogLevel:              pickString(overlay.LogLevel, base.LogLevel),
		LogFormat:             pickString(overlay.LogFormat, base.LogFormat),
		DBMaxOpenConns:        pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:        pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	result.RateLimitRPS = overlay.RateLimitRPS
	if result.RateLimitRPS == 0 {
		result.RateLimitRPS = base.RateLimitRPS
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// ApplyEnv overrides fields from WXDASH_* environment variables.
// Callers that want .env support load it (godotenv) before calling Load.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("WXDASH_BIND"); v != "" {
		cfg.Bind = v
	}
	if v := os.Getenv("WXDASH_WEATHER_BASE_URL"); v != "" {
		cfg.WeatherBaseURL = v
	}
	if v := os.Getenv("WXDASH_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("WXDASH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WXDASH_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"WXDASH_PORT", &cfg.Port},
		{"WXDASH_REQUEST_TIMEOUT_SECONDS", &cfg.RequestTimeoutSeconds},
		{"WXDASH_FORECAST_HOURS", &cfg.ForecastHours},
		{"WXDASH_HISTORY_LIMIT", &cfg.HistoryLimit},
		{"WXDASH_CACHE_TTL_SECONDS", &cfg.CacheTTLSeconds},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", e.key, err)
		}
		*e.dst = n
	}

	if v := os.Getenv("WXDASH_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid WXDASH_RATE_LIMIT_RPS %q", v)
		}
		cfg.RateLimitRPS = f
	}

	return nil
}

func pickString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
