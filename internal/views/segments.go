// Package views reduces forecast series into the shapes the dashboard
// charts consume. Every function here is pure.
package views

import (
	"math"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Segment is a fixed band of the 24-hour clock, inclusive on both ends.
type Segment struct {
	Label     string
	StartHour int
	EndHour   int
}

// Segments are reported in this order.
var Segments = []Segment{
	{Label: "Morning", StartHour: 6, EndHour: 11},
	{Label: "Afternoon", StartHour: 12, EndHour: 17},
	{Label: "Evening", StartHour: 18, EndHour: 23},
	{Label: "Night", StartHour: 0, EndHour: 5},
}

type SegmentAverage struct {
	Label string `json:"label"`
	Temp  int    `json:"temp"`
}

// SegmentAverages averages sample temperatures per band across the whole
// series. A band with no samples reports 0.
func SegmentAverages(series weather.ForecastSeries) []SegmentAverage {
	out := make([]SegmentAverage, 0, len(Segments))

	for _, seg := range Segments {
		var (
			sum   float64
			count int
		)
		for _, s := range series {
			h := s.Time.Hour()
			if h >= seg.StartHour && h <= seg.EndHour {
				sum += s.TemperatureC
				count++
			}
		}

		divisor := float64(count)
		if count == 0 {
			divisor = 1
		}

		out = append(out, SegmentAverage{
			Label: seg.Label,
			Temp:  roundHalfUp(sum / divisor),
		})
	}

	return out
}

// roundHalfUp rounds .5 toward positive infinity (-2.5 -> -2).
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
