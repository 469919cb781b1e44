package providers

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// MapLayer selects an OpenWeatherMap raster overlay.
type MapLayer string

const (
	LayerTemperature   MapLayer = "temp_new"
	LayerPrecipitation MapLayer = "precipitation_new"
	LayerClouds        MapLayer = "clouds_new"
	LayerPressure      MapLayer = "pressure_new"
	LayerWind          MapLayer = "wind_new"
)

// DefaultMapZoom is the zoom level the map opens at.
const DefaultMapZoom = 6

// ErrUnknownLayer is returned for layer names outside the MapLayer set.
var ErrUnknownLayer = errors.New("unknown map layer")

var layerLabels = map[MapLayer]string{
	LayerTemperature:   "Temperature",
	LayerPrecipitation: "Precipitation",
	LayerClouds:        "Clouds",
	LayerPressure:      "Pressure",
	LayerWind:          "Wind",
}

// MapLayers lists the supported layers in display order.
func MapLayers() []MapLayer {
	return []MapLayer{LayerTemperature, LayerPrecipitation, LayerClouds, LayerPressure, LayerWind}
}

// ParseMapLayer validates a layer name.
func ParseMapLayer(s string) (MapLayer, error) {
	l := MapLayer(s)
	if _, ok := layerLabels[l]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLayer, s)
	}
	return l, nil
}

// Label returns the human readable layer name, or "" for unknown layers.
func (l MapLayer) Label() string {
	return layerLabels[l]
}

// TileURLTemplate returns an XYZ template with {z}/{x}/{y} placeholders.
func (p *OpenWeatherProvider) TileURLTemplate(layer MapLayer) (string, error) {
	if _, ok := layerLabels[layer]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	return fmt.Sprintf("%s/%s/{z}/{x}/{y}.png?appid=%s", p.tileURL, layer, url.QueryEscape(p.apiKey)), nil
}

// TileURL returns the URL of a single tile.
func (p *OpenWeatherProvider) TileURL(layer MapLayer, z, x, y int) (string, error) {
	tmpl, err := p.TileURLTemplate(layer)
	if err != nil {
		return "", err
	}
	r := strings.NewReplacer("{z}", fmt.Sprint(z), "{x}", fmt.Sprint(x), "{y}", fmt.Sprint(y))
	return r.Replace(tmpl), nil
}

// TileForCoordinates converts coordinates into Web Mercator tile indices.
func TileForCoordinates(c weather.Coordinates, zoom int) (x, y int) {
	n := math.Exp2(float64(zoom))
	latRad := c.Lat * math.Pi / 180

	x = int(math.Floor((c.Lon + 180) / 360 * n))
	y = int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))

	maxIdx := int(n) - 1
	x = min(max(x, 0), maxIdx)
	y = min(max(y, 0), maxIdx)
	return x, y
}
