package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hpungsan/wxdash/internal/district"
)

const (
	currentFields = "temperature_2m,relative_humidity_2m,surface_pressure,wind_speed_10m,weather_code," +
		"precipitation_probability,apparent_temperature,cloud_cover,visibility"
	hourlyFields = "temperature_2m,relative_humidity_2m,wind_speed_10m,cloud_cover"

	// openMeteoTimeLayout is the local-time layout Open-Meteo uses with timezone=auto.
	openMeteoTimeLayout = "2006-01-02T15:04"
)

// ClientOptions configures an Open-Meteo client.
type ClientOptions struct {
	BaseURL       string
	Timeout       time.Duration
	UserAgent     string
	ForecastHours int
	ForecastDays  int
	Clock         clockwork.Clock
}

// Client fetches snapshots from the Open-Meteo forecast API.
type Client struct {
	BaseURL       string
	UserAgent     string
	HTTPClient    *http.Client
	ForecastHours int
	ForecastDays  int
	clock         clockwork.Clock
}

// NewClient creates an Open-Meteo client.
func NewClient(opts ClientOptions) *Client {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "wxdash/1.0"
	}
	if opts.ForecastHours <= 0 {
		opts.ForecastHours = 5
	}
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = 2
	}
	return &Client{
		BaseURL:       opts.BaseURL,
		UserAgent:     opts.UserAgent,
		HTTPClient:    &http.Client{Timeout: opts.Timeout},
		ForecastHours: opts.ForecastHours,
		ForecastDays:  opts.ForecastDays,
		clock:         opts.Clock,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "open-meteo"
}

// forecastResponse is the subset of the Open-Meteo response we read.
type forecastResponse struct {
	UTCOffsetSeconds     int    `json:"utc_offset_seconds"`
	TimezoneAbbreviation string `json:"timezone_abbreviation"`
	Current              struct {
		Temperature         *float64 `json:"temperature_2m"`
		RelativeHumidity    *float64 `json:"relative_humidity_2m"`
		SurfacePressure     *float64 `json:"surface_pressure"`
		WindSpeed           *float64 `json:"wind_speed_10m"`
		WeatherCode         *int     `json:"weather_code"`
		PrecipProbability   *float64 `json:"precipitation_probability"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		CloudCover          *float64 `json:"cloud_cover"`
		Visibility          *float64 `json:"visibility"`
	} `json:"current"`
	Hourly struct {
		Time             []string   `json:"time"`
		Temperature      []*float64 `json:"temperature_2m"`
		RelativeHumidity []*float64 `json:"relative_humidity_2m"`
		WindSpeed        []*float64 `json:"wind_speed_10m"`
		CloudCover       []*float64 `json:"cloud_cover"`
	} `json:"hourly"`
}

// Snapshot fetches current conditions and the next ForecastHours hourly
// points for d.
func (c *Client) Snapshot(ctx context.Context, d district.District) (*Snapshot, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(d.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(d.Longitude, 'f', 4, 64))
	q.Set("current", currentFields)
	q.Set("hourly", hourlyFields)
	q.Set("forecast_days", strconv.Itoa(c.ForecastDays))
	q.Set("timezone", "auto")

	data, err := c.get(ctx, c.BaseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode open-meteo response: %w", err)
	}

	return c.toSnapshot(d.Name, &resp)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo error: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) toSnapshot(name string, resp *forecastResponse) (*Snapshot, error) {
	cur := resp.Current
	if cur.Temperature == nil || cur.WeatherCode == nil {
		return nil, fmt.Errorf("open-meteo response missing current temperature or weather code")
	}

	h := resp.Hourly
	n := len(h.Time)
	if len(h.Temperature) != n || len(h.RelativeHumidity) != n || len(h.WindSpeed) != n || len(h.CloudCover) != n {
		return nil, fmt.Errorf("open-meteo hourly arrays have mismatched lengths")
	}

	loc := time.FixedZone(resp.TimezoneAbbreviation, resp.UTCOffsetSeconds)
	points := make([]ForecastPoint, 0, n)
	for i := 0; i < n; i++ {
		t, err := time.ParseInLocation(openMeteoTimeLayout, h.Time[i], loc)
		if err != nil {
			return nil, fmt.Errorf("hourly time %q: %w", h.Time[i], err)
		}
		if h.Temperature[i] == nil {
			continue
		}
		points = append(points, ForecastPoint{
			Time:     t,
			Temp:     *h.Temperature[i],
			Humidity: orZero(h.RelativeHumidity[i]),
			Wind:     orZero(h.WindSpeed[i]),
			Clouds:   orZero(h.CloudCover[i]),
		})
	}

	now := c.clock.Now()
	snap := &Snapshot{
		District: name,
		Current: Current{
			Temperature:     *cur.Temperature,
			FeelsLike:       orZero(cur.ApparentTemperature),
			ConditionCode:   *cur.WeatherCode,
			WindSpeed:       orZero(cur.WindSpeed),
			Humidity:        orZero(cur.RelativeHumidity),
			Pressure:        orZero(cur.SurfacePressure),
			RainProbability: orZero(cur.PrecipProbability),
			CloudCover:      orZero(cur.CloudCover),
			Visibility:      orZero(cur.Visibility),
		},
		Forecast:  NextHours(points, now.In(loc), c.ForecastHours),
		FetchedAt: now.UTC(),
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// NextHours returns up to n points that fall strictly after the start of
// now's hour, in order. now's location decides where the hour starts.
func NextHours(points []ForecastPoint, now time.Time, n int) []ForecastPoint {
	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	out := make([]ForecastPoint, 0, n)
	for _, p := range points {
		if len(out) == n {
			break
		}
		if p.Time.After(hourStart) {
			out = append(out, p)
		}
	}
	return out
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
