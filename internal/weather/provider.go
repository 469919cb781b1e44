package weather

import (
	"context"
)

// Provider abstracts the weather data source the dashboard reads from
// (e.g. OpenWeatherMap). Place lookups resolve coordinates; air quality and
// UV index need those coordinates.
type Provider interface {
	Name() string
	CurrentConditions(ctx context.Context, place string) (CurrentConditions, error)
	Forecast(ctx context.Context, place string, count int) (ForecastSeries, error)
	AirQuality(ctx context.Context, coords Coordinates) (AirQualitySample, error)
	UVIndex(ctx context.Context, coords Coordinates) (UVSample, error)
}

// HistoryStore persists the search history list under a single key.
// Implementations wrap every failure with ErrStorageUnavailable.
type HistoryStore interface {
	LoadHistory(ctx context.Context) ([]string, error)
	SaveHistory(ctx context.Context, entries []string) error
	ClearHistory(ctx context.Context) error
}
