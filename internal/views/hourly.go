package views

import (
	"math"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	// HourlyWindowSize caps the number of samples in the wind chart.
	HourlyWindowSize = 24

	msToKmh         = 3.6
	axisHeadroom    = 1.2
	hourLabelLayout = "03 PM"
)

type WindPoint struct {
	Label   string  `json:"time"`
	WindKmh float64 `json:"wind"`
}

type HourlyWindow struct {
	Points []WindPoint `json:"points"`
	// AxisMin and AxisMax bound the chart's Y axis.
	AxisMin float64 `json:"axisMin"`
	AxisMax float64 `json:"axisMax"`
	// Current is the wind speed of the first point.
	Current float64 `json:"current"`
}

// Hourly converts the first HourlyWindowSize samples to km/h wind points.
func Hourly(series weather.ForecastSeries) HourlyWindow {
	n := min(len(series), HourlyWindowSize)

	w := HourlyWindow{Points: make([]WindPoint, 0, n)}
	maxWind := 0.0

	for _, s := range series[:n] {
		kmh := round2(s.WindSpeedMS * msToKmh)
		w.Points = append(w.Points, WindPoint{
			Label:   s.Time.Format(hourLabelLayout),
			WindKmh: kmh,
		})
		maxWind = math.Max(maxWind, kmh)
	}

	if n > 0 {
		w.Current = w.Points[0].WindKmh
	}
	w.AxisMax = math.Ceil(maxWind * axisHeadroom)

	return w
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
