package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultOpenWeatherTileURL = "https://tile.openweathermap.org/map"
)

// OpenWeatherConfig configures an OpenWeatherProvider.
type OpenWeatherConfig struct {
	APIKey      string
	BaseURL     string
	TileBaseURL string

	// Location is applied to forecast sample times. Defaults to time.Local.
	Location *time.Location
}

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	tileURL  string
	location *time.Location
	http     requester
}

func NewOpenWeatherProvider(client *http.Client, cfg OpenWeatherConfig, collector *metrics.Collector) *OpenWeatherProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	tileURL := cfg.TileBaseURL
	if tileURL == "" {
		tileURL = DefaultOpenWeatherTileURL
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &OpenWeatherProvider{
		name:     "openweathermap",
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		tileURL:  tileURL,
		location: loc,
		http: requester{
			client:  client,
			circuit: newCircuitBreaker("openweather"),
			metrics: collector,
		},
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// get issues GET baseURL/path with the credential and metric units applied.
func (p *OpenWeatherProvider) get(ctx context.Context, path string, params url.Values, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		for k, v := range params {
			values[k] = v
		}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	return p.http.getJSON(ctx, path, buildRequest, out)
}

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

func (p *OpenWeatherProvider) CurrentConditions(ctx context.Context, place string) (weather.CurrentConditions, error) {
	var payload struct {
		Name  string `json:"name"`
		Coord struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		} `json:"coord"`
		Sys struct {
			Country string `json:"country"`
			State   string `json:"state"`
		} `json:"sys"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Visibility float64       `json:"visibility"`
		Weather    []owCondition `json:"weather"`
	}

	params := url.Values{}
	params.Set("q", place)
	if err := p.get(ctx, "weather", params, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	if payload.Coord.Lat == nil || payload.Coord.Lon == nil {
		return weather.CurrentConditions{}, fmt.Errorf("%w: missing coordinates", errMalformedBody)
	}
	if len(payload.Weather) == 0 {
		return weather.CurrentConditions{}, fmt.Errorf("%w: missing weather conditions", errMalformedBody)
	}

	return weather.CurrentConditions{
		Name:         payload.Name,
		Country:      payload.Sys.Country,
		State:        payload.Sys.State,
		Coordinates:  weather.Coordinates{Lat: *payload.Coord.Lat, Lon: *payload.Coord.Lon},
		TemperatureC: payload.Main.Temp,
		FeelsLikeC:   payload.Main.FeelsLike,
		Humidity:     payload.Main.Humidity,
		Pressure:     payload.Main.Pressure,
		Description:  payload.Weather[0].Description,
		WindSpeedMS:  payload.Wind.Speed,
		WindDeg:      payload.Wind.Deg,
		VisibilityM:  payload.Visibility,
		Condition:    mapOpenWeatherCondition(payload.Weather),
	}, nil
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, place string, count int) (weather.ForecastSeries, error) {
	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Weather []owCondition `json:"weather"`
		} `json:"list"`
	}

	params := url.Values{}
	params.Set("q", place)
	params.Set("cnt", strconv.Itoa(count))
	if err := p.get(ctx, "forecast", params, &payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("%w: empty forecast list", errMalformedBody)
	}

	series := make(weather.ForecastSeries, 0, len(payload.List))
	for _, item := range payload.List {
		sample := weather.ForecastSample{
			Time:         time.Unix(item.Dt, 0).In(p.location),
			TemperatureC: item.Main.Temp,
			WindSpeedMS:  item.Wind.Speed,
			Condition:    mapOpenWeatherCondition(item.Weather),
		}
		if len(item.Weather) > 0 {
			sample.Description = item.Weather[0].Description
		}
		series = append(series, sample)
	}

	return series, nil
}

func (p *OpenWeatherProvider) AirQuality(ctx context.Context, coords weather.Coordinates) (weather.AirQualitySample, error) {
	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components struct {
				CO   float64 `json:"co"`
				NO2  float64 `json:"no2"`
				O3   float64 `json:"o3"`
				PM25 float64 `json:"pm2_5"`
				PM10 float64 `json:"pm10"`
			} `json:"components"`
		} `json:"list"`
	}

	if err := p.get(ctx, "air_pollution", coordParams(coords), &payload); err != nil {
		return weather.AirQualitySample{}, err
	}
	if len(payload.List) == 0 {
		return weather.AirQualitySample{}, fmt.Errorf("%w: empty air quality list", errMalformedBody)
	}

	first := payload.List[0]
	return weather.AirQualitySample{
		AQI:  first.Main.AQI,
		CO:   first.Components.CO,
		NO2:  first.Components.NO2,
		O3:   first.Components.O3,
		PM25: first.Components.PM25,
		PM10: first.Components.PM10,
	}, nil
}

func (p *OpenWeatherProvider) UVIndex(ctx context.Context, coords weather.Coordinates) (weather.UVSample, error) {
	var payload struct {
		Value *float64 `json:"value"`
	}

	if err := p.get(ctx, "uvi", coordParams(coords), &payload); err != nil {
		return weather.UVSample{}, err
	}
	if payload.Value == nil {
		return weather.UVSample{}, fmt.Errorf("%w: missing uv value", errMalformedBody)
	}

	return weather.UVSample{Value: *payload.Value}, nil
}

func coordParams(c weather.Coordinates) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	return values
}

func mapOpenWeatherCondition(items []owCondition) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionOther
	}
	switch main := items[0].Main; {
	case main == "Clear":
		return weather.ConditionClear
	case main == "Clouds":
		return weather.ConditionClouds
	case main == "Rain" || main == "Drizzle":
		return weather.ConditionRain
	case main == "Thunderstorm":
		return weather.ConditionThunderstorm
	case main == "Snow":
		return weather.ConditionSnow
	case common.HasAny(main, "mist", "fog", "haze"):
		return weather.ConditionMist
	default:
		return weather.ConditionOther
	}
}
