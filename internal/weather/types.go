package weather

import (
	"fmt"
	"math"
	"time"
)

// Current is the current-conditions record of a snapshot. Only
// ConditionCode is interpreted; every other field is a plain reading.
type Current struct {
	Temperature     float64 `json:"temperature"`    // °C
	FeelsLike       float64 `json:"feels_like"`     // °C
	ConditionCode   int     `json:"condition_code"` // WMO weather code
	WindSpeed       float64 `json:"wind_speed"`     // km/h
	Humidity        float64 `json:"humidity"`       // %
	Pressure        float64 `json:"pressure"`       // hPa
	RainProbability float64 `json:"rain_prob"`      // %
	CloudCover      float64 `json:"cloud_cover"`    // %
	Visibility      float64 `json:"visibility"`     // m
}

// ForecastPoint is one hourly forecast step.
type ForecastPoint struct {
	Time     time.Time `json:"time"`
	Temp     float64   `json:"temp"`
	Humidity float64   `json:"humidity"`
	Wind     float64   `json:"wind"`
	Clouds   float64   `json:"clouds"`
}

// Snapshot is one fetched bundle of current conditions and forecast for a
// district. Forecast is in chronological order.
type Snapshot struct {
	District  string          `json:"district"`
	Current   Current         `json:"current"`
	Forecast  []ForecastPoint `json:"forecast"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Validate checks the invariants every consumer relies on: a district name,
// finite readings, and a strictly chronological forecast.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if s.District == "" {
		return fmt.Errorf("snapshot has no district")
	}
	c := s.Current
	for name, v := range map[string]float64{
		"temperature": c.Temperature, "feels_like": c.FeelsLike, "wind_speed": c.WindSpeed,
		"humidity": c.Humidity, "pressure": c.Pressure, "rain_prob": c.RainProbability,
		"cloud_cover": c.CloudCover, "visibility": c.Visibility,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("current %s is not finite", name)
		}
	}
	for i, p := range s.Forecast {
		if p.Time.IsZero() {
			return fmt.Errorf("forecast point %d has no time", i)
		}
		if i > 0 && !p.Time.After(s.Forecast[i-1].Time) {
			return fmt.Errorf("forecast point %d is not after point %d", i, i-1)
		}
	}
	return nil
}
