package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAirQualityLevel(t *testing.T) {
	want := map[int]string{1: "Good", 2: "Fair", 3: "Moderate", 4: "Poor", 5: "Very Poor", 0: "Very Poor"}
	for aqi, label := range want {
		assert.Equal(t, label, AirQualityLevel(aqi), "aqi %d", aqi)
	}
}

func TestUVLevel(t *testing.T) {
	assert.Equal(t, "Low", UVLevel(0))
	assert.Equal(t, "Low", UVLevel(2))
	assert.Equal(t, "Moderate", UVLevel(2.5))
	assert.Equal(t, "High", UVLevel(7))
	assert.Equal(t, "Very High", UVLevel(10))
	assert.Equal(t, "Extreme", UVLevel(11.2))
}

func TestVisibilityReport(t *testing.T) {
	v := VisibilityReport(10000)
	assert.Equal(t, 10.0, v.Kilometers)
	assert.Equal(t, "Clear", v.Status)
	assert.Equal(t, "Clear", v.Note)

	v = VisibilityReport(4350)
	assert.Equal(t, 4.4, v.Kilometers)
	assert.Equal(t, "Moderate", v.Status)
	assert.Equal(t, "Slight haze", v.Note)

	v = VisibilityReport(800)
	assert.Equal(t, 0.8, v.Kilometers)
	assert.Equal(t, "Poor", v.Status)
	assert.Equal(t, "Heavy haze", v.Note)
}
