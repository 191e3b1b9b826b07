package ops

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/wxdash/internal/db"
	"github.com/hpungsan/wxdash/internal/errors"
	"github.com/hpungsan/wxdash/internal/weather"
)

// WeatherInput contains parameters for the Weather operation.
type WeatherInput struct {
	District string `json:"district"`
}

// WeatherOutput is a snapshot plus its condition description.
type WeatherOutput struct {
	District  string                  `json:"district"`
	Condition string                  `json:"condition"`
	Current   weather.Current         `json:"current"`
	Forecast  []weather.ForecastPoint `json:"forecast"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// Snapshot converts the output back into a snapshot.
func (o *WeatherOutput) Snapshot() *weather.Snapshot {
	return &weather.Snapshot{
		District:  o.District,
		Current:   o.Current,
		Forecast:  o.Forecast,
		FetchedAt: o.FetchedAt,
	}
}

// Weather resolves the district case-insensitively, fetches its snapshot and
// records the lookup in history. A history write failure is logged and does
// not fail the lookup.
func Weather(ctx context.Context, env *Env, input WeatherInput) (*WeatherOutput, error) {
	name := strings.TrimSpace(input.District)
	if name == "" {
		return nil, errors.NewInvalidRequest("district is required")
	}
	d, ok := env.Directory.Resolve(name)
	if !ok {
		return nil, errors.NewInvalidSelection(name)
	}

	snap, err := env.Provider.Snapshot(ctx, d)
	if err != nil {
		env.logger().Warn("weather fetch failed", "district", d.Name, "provider", env.Provider.Name(), "error", err)
		return nil, errors.NewFetchFailure(err)
	}

	condition := weather.Describe(snap.Current.ConditionCode)
	recordHistory(ctx, env, d.Name, snap.Current.Temperature, condition)

	forecast := snap.Forecast
	if forecast == nil {
		forecast = []weather.ForecastPoint{}
	}
	return &WeatherOutput{
		District:  d.Name,
		Condition: condition,
		Current:   snap.Current,
		Forecast:  forecast,
		FetchedAt: snap.FetchedAt,
	}, nil
}

func recordHistory(ctx context.Context, env *Env, district string, temp float64, condition string) {
	if env.DB == nil {
		return
	}
	now := env.now()
	outcome := "success"
	defer func() {
		if env.Metrics != nil {
			env.Metrics.HistoryWrites.WithLabelValues(outcome).Inc()
		}
	}()

	id, err := generateULID(now)
	if err == nil {
		err = db.InsertHistory(ctx, env.DB, &db.HistoryRow{
			ID:          id,
			District:    district,
			Temperature: temp,
			Condition:   condition,
			SearchedAt:  now.Unix(),
		})
	}
	if err != nil {
		outcome = "error"
		env.logger().Error("history write failed", "district", district, "error", err)
	}
}
