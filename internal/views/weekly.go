package views

import (
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DayForecast pairs a calendar day of the current week with a sample.
//
// Fallback is set when no sample falls on Date and Sample is the first
// sample of the series instead; the day label and the data then disagree.
type DayForecast struct {
	Date     time.Time              `json:"date"`
	Weekday  string                 `json:"weekday"`
	Sample   weather.ForecastSample `json:"sample"`
	IsToday  bool                   `json:"isToday"`
	Fallback bool                   `json:"fallback"`
}

// Week lays the series over Monday..Sunday of the week containing now.
// Dates are compared in now's location.
func Week(series weather.ForecastSeries, now time.Time) []DayForecast {
	loc := now.Location()
	today := dateOf(now, loc)

	// Monday is day 0, so Sunday belongs to the week that began six days before.
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)

	week := make([]DayForecast, 0, 7)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		entry := DayForecast{
			Date:    day,
			Weekday: day.Weekday().String()[:3],
			IsToday: day.Equal(today),
		}

		sample, ok := firstOnDate(series, day, loc)
		if !ok {
			entry.Fallback = true
			if len(series) > 0 {
				sample = series[0]
			}
		}
		entry.Sample = sample

		week = append(week, entry)
	}

	return week
}

func firstOnDate(series weather.ForecastSeries, day time.Time, loc *time.Location) (weather.ForecastSample, bool) {
	for _, s := range series {
		if dateOf(s.Time, loc).Equal(day) {
			return s, true
		}
	}
	return weather.ForecastSample{}, false
}

// dateOf truncates t to midnight in loc.
func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
