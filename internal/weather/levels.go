package weather

import "math"

// AirQualityLevel maps the 1-5 AQI scale to its label. Anything outside
// 1-4 reads as "Very Poor".
func AirQualityLevel(aqi int) string {
	switch aqi {
	case 1:
		return "Good"
	case 2:
		return "Fair"
	case 3:
		return "Moderate"
	case 4:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// UVLevel maps a UV index to its exposure category.
func UVLevel(value float64) string {
	switch {
	case value <= 2:
		return "Low"
	case value <= 5:
		return "Moderate"
	case value <= 7:
		return "High"
	case value <= 10:
		return "Very High"
	default:
		return "Extreme"
	}
}

// Visibility summarizes a visibility distance for display.
type Visibility struct {
	Kilometers float64 `json:"km"`
	Status     string  `json:"status"`
	Note       string  `json:"note"`
}

// VisibilityReport converts meters to km (one decimal) and classifies it.
func VisibilityReport(meters float64) Visibility {
	v := Visibility{Kilometers: math.Round(meters/100) / 10}

	switch {
	case meters >= 10000:
		v.Status = "Clear"
	case meters >= 5000:
		v.Status = "Good"
	case meters >= 2000:
		v.Status = "Moderate"
	default:
		v.Status = "Poor"
	}

	switch {
	case meters < 1000:
		v.Note = "Heavy haze"
	case meters < 2000:
		v.Note = "Hazy"
	case meters < 5000:
		v.Note = "Slight haze"
	default:
		v.Note = "Clear"
	}

	return v
}
