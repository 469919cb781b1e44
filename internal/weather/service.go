package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/metrics"
)

// Service orchestrates the four provider lookups that make up a snapshot.
type Service struct {
	provider Provider
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewService creates a new Service. collector may be nil.
func NewService(provider Provider, collector *metrics.Collector) *Service {
	return &Service{
		provider: provider,
		metrics:  collector,
		now:      time.Now,
	}
}

// FetchSnapshot resolves place and returns a complete snapshot.
//
// Current conditions and forecast are fetched concurrently by name; air
// quality and UV index are then fetched concurrently with the coordinates
// from current conditions. Any failure fails the whole lookup with
// ErrLookupFailed. There are no retries.
func (s *Service) FetchSnapshot(ctx context.Context, place string) (snap WeatherSnapshot, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveLookup(start, err) }()

	place = common.NormalizePlace(place)
	if place == "" {
		return WeatherSnapshot{}, fmt.Errorf("%w: %w", ErrLookupFailed, ErrEmptyPlace)
	}
	if s.provider == nil {
		return WeatherSnapshot{}, fmt.Errorf("%w: no weather provider configured", ErrLookupFailed)
	}

	log.Printf("DEBUG: FetchSnapshot called for %q via %s", place, s.provider.Name())

	var (
		wg          sync.WaitGroup
		current     CurrentConditions
		forecast    ForecastSeries
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = s.provider.CurrentConditions(ctx, place)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = s.provider.Forecast(ctx, place, ForecastSampleCount)
	}()
	wg.Wait()

	if currentErr != nil {
		return WeatherSnapshot{}, s.lookupError(place, "current conditions", currentErr)
	}
	if forecastErr != nil {
		return WeatherSnapshot{}, s.lookupError(place, "forecast", forecastErr)
	}

	coords := current.Coordinates

	var (
		airQuality AirQualitySample
		uv         UVSample
		airErr     error
		uvErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		airQuality, airErr = s.provider.AirQuality(ctx, coords)
	}()
	go func() {
		defer wg.Done()
		uv, uvErr = s.provider.UVIndex(ctx, coords)
	}()
	wg.Wait()

	if airErr != nil {
		return WeatherSnapshot{}, s.lookupError(place, "air quality", airErr)
	}
	if uvErr != nil {
		return WeatherSnapshot{}, s.lookupError(place, "uv index", uvErr)
	}

	return WeatherSnapshot{
		Place:      place,
		FetchedAt:  s.now().UTC(),
		Current:    current,
		Forecast:   forecast,
		AirQuality: airQuality,
		UV:         uv,
	}, nil
}

func (s *Service) lookupError(place, what string, err error) error {
	log.Printf("provider %s %s failed for %q: %v", s.provider.Name(), what, place, err)
	return fmt.Errorf("%w: %s for %q: %v", ErrLookupFailed, what, place, err)
}
