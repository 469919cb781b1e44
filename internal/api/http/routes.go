package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/views"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

var validate = validator.New()

// TileSource builds map overlay URLs.
type TileSource interface {
	TileURLTemplate(layer providers.MapLayer) (string, error)
	TileURL(layer providers.MapLayer, z, x, y int) (string, error)
}

// Deps are the collaborators the HTTP API needs.
type Deps struct {
	Dashboard *dashboard.Dashboard
	Tiles     TileSource
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
	// Now is the reference clock for the weekly view. Defaults to time.Now.
	Now func() time.Time
	// Location is applied to the reference clock. Defaults to time.Local.
	Location *time.Location
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	d := deps.Dashboard

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(d.State())
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"history": d.History()})
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		req, err := parsePlaceRequest(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return searchResponse(c, d.Search, req.Place)
	})

	v1.Post("/history/select", func(c *fiber.Ctx) error {
		req, err := parsePlaceRequest(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return searchResponse(c, d.SelectHistoryEntry, req.Place)
	})

	v1.Post("/logout", func(c *fiber.Ctx) error {
		return c.JSON(d.Logout(c.UserContext()))
	})

	v1.Get("/views/segments", func(c *fiber.Ctx) error {
		snap, err := displayedSnapshot(d)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"segments": views.SegmentAverages(snap.Forecast)})
	})

	v1.Get("/views/hourly", func(c *fiber.Ctx) error {
		snap, err := displayedSnapshot(d)
		if err != nil {
			return err
		}
		return c.JSON(views.Hourly(snap.Forecast))
	})

	v1.Get("/views/week", func(c *fiber.Ctx) error {
		snap, err := displayedSnapshot(d)
		if err != nil {
			return err
		}
		now := deps.Now().In(deps.Location)
		return c.JSON(fiber.Map{
			"month": now.Format("January 2006"),
			"today": now.Format("Monday, 2 January"),
			"days":  views.Week(snap.Forecast, now),
		})
	})

	v1.Get("/views/details", func(c *fiber.Ctx) error {
		snap, err := displayedSnapshot(d)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"airQuality": fiber.Map{
				"level":  weather.AirQualityLevel(snap.AirQuality.AQI),
				"sample": snap.AirQuality,
			},
			"uv": fiber.Map{
				"level": weather.UVLevel(snap.UV.Value),
				"value": snap.UV.Value,
			},
			"visibility": weather.VisibilityReport(snap.Current.VisibilityM),
		})
	})

	v1.Get("/map/tiles", func(c *fiber.Ctx) error {
		if deps.Tiles == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "map tiles not configured")
		}

		layer, err := providers.ParseMapLayer(c.Query("layer", string(providers.LayerTemperature)))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		tmpl, err := deps.Tiles.TileURLTemplate(layer)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		resp := fiber.Map{
			"layer": layer,
			"label": layer.Label(),
			"url":   tmpl,
			"zoom":  providers.DefaultMapZoom,
		}
		if snap, ok := d.Snapshot(); ok {
			center := snap.Current.Coordinates
			x, y := providers.TileForCoordinates(center, providers.DefaultMapZoom)
			tileURL, err := deps.Tiles.TileURL(layer, providers.DefaultMapZoom, x, y)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			resp["center"] = center
			resp["centerTile"] = fiber.Map{"x": x, "y": y, "url": tileURL}
		}
		return c.JSON(resp)
	})
}

// placeRequest is the body of search and history selection requests.
type placeRequest struct {
	Place string `json:"place" validate:"required"`
}

func parsePlaceRequest(c *fiber.Ctx) (placeRequest, error) {
	var req placeRequest
	if err := c.BodyParser(&req); err != nil {
		return req, err
	}
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

type searchFunc func(ctx context.Context, place string) (dashboard.State, error)

func searchResponse(c *fiber.Ctx, search searchFunc, place string) error {
	st, err := search(c.UserContext(), place)
	switch {
	case errors.Is(err, weather.ErrEmptyPlace):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case err != nil:
		return c.Status(fiber.StatusNotFound).JSON(st)
	}
	return c.JSON(st)
}

func displayedSnapshot(d *dashboard.Dashboard) (weather.WeatherSnapshot, error) {
	snap, ok := d.Snapshot()
	if !ok {
		return weather.WeatherSnapshot{}, fiber.NewError(fiber.StatusNotFound, "no weather data displayed; search for a place first")
	}
	return snap, nil
}
