package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionClear        Condition = "clear"
	ConditionClouds       Condition = "clouds"
	ConditionRain         Condition = "rain"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionSnow         Condition = "snow"
	ConditionMist         Condition = "mist"
	ConditionOther        Condition = "other"
)

// ForecastSampleCount is the number of 3-hour samples requested per forecast.
const ForecastSampleCount = 56

// Coordinates are only meaningful alongside the CurrentConditions they came from.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CurrentConditions is the current-weather view of a resolved place.
type CurrentConditions struct {
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	State       string      `json:"state,omitempty"`
	Coordinates Coordinates `json:"coord"`

	TemperatureC float64   `json:"temperatureC"`
	FeelsLikeC   float64   `json:"feelsLikeC"`
	Humidity     float64   `json:"humidityPercent"`
	Pressure     float64   `json:"pressureHpa"`
	Description  string    `json:"description"`
	WindSpeedMS  float64   `json:"windSpeedMs"`
	WindDeg      float64   `json:"windDeg"`
	VisibilityM  float64   `json:"visibilityM"`
	Condition    Condition `json:"condition"`
}

// ForecastSample is one timestamped forecast point.
type ForecastSample struct {
	Time         time.Time `json:"time"`
	TemperatureC float64   `json:"temperatureC"`
	WindSpeedMS  float64   `json:"windSpeedMs"`
	Condition    Condition `json:"condition"`
	Description  string    `json:"description,omitempty"`
}

// ForecastSeries is ordered by Time ascending, as returned upstream.
type ForecastSeries []ForecastSample

// AirQualitySample holds the 1-5 AQI and pollutant concentrations in μg/m3.
type AirQualitySample struct {
	AQI  int     `json:"aqi"`
	CO   float64 `json:"co"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
}

// UVSample is a single UV index reading.
type UVSample struct {
	Value float64 `json:"value"`
}

// WeatherSnapshot is the complete data set for one resolved place.
// It is only ever produced whole by Service.FetchSnapshot.
type WeatherSnapshot struct {
	Place      string            `json:"place"`
	FetchedAt  time.Time         `json:"fetchedAt"`
	Current    CurrentConditions `json:"current"`
	Forecast   ForecastSeries    `json:"forecast"`
	AirQuality AirQualitySample  `json:"airQuality"`
	UV         UVSample          `json:"uv"`
}
