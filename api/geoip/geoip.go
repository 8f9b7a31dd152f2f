// Package geoip resolves the caller's approximate position from its public
// IP address using an ip-api.com compatible endpoint.
package geoip

import (
	"context"
	"errors"
	"fmt"

	"where2eat/api"
	"where2eat/config"
	"where2eat/models"
	"where2eat/utils"
)

// ErrDisabled is returned by Locate when lookups are switched off in config.
var ErrDisabled = errors.New("ip geolocation disabled")

type Client struct {
	api     *api.Client
	enabled bool
	logger  *utils.Logger
}

// Location is the resolved position with a human readable place name.
type Location struct {
	Coordinates models.Coordinates
	City        string
	Region      string
	Country     string
}

func (l Location) String() string {
	switch {
	case l.City != "" && l.Region != "":
		return l.City + ", " + l.Region
	case l.City != "":
		return l.City
	}
	return models.FormatLatLng(l.Coordinates)
}

type lookupResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Country    string  `json:"country"`
}

func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		api: api.NewClient(api.Options{
			BaseURL:        cfg.GeoIP.BaseURL,
			Timeout:        cfg.Timeout(),
			MaxRetries:     cfg.HTTP.MaxRetries,
			RetryBaseDelay: cfg.RetryBaseDelay(),
			Logger:         logger,
		}),
		enabled: cfg.GeoIP.Enabled,
		logger:  logger,
	}
}

// Locate looks up the current public IP address.
func (c *Client) Locate(ctx context.Context) (*Location, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}

	var resp lookupResponse
	if err := c.api.GetJSON(ctx, "/json", nil, &resp); err != nil {
		return nil, fmt.Errorf("geoip: %w", err)
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("geoip: lookup failed: %s", resp.Message)
	}
	if resp.Lat < -90 || resp.Lat > 90 || resp.Lon < -180 || resp.Lon > 180 {
		return nil, fmt.Errorf("geoip: coordinates %v,%v out of range", resp.Lat, resp.Lon)
	}

	loc := &Location{
		Coordinates: models.Coordinates{Latitude: resp.Lat, Longitude: resp.Lon},
		City:        resp.City,
		Region:      resp.RegionName,
		Country:     resp.Country,
	}
	c.logger.Debug("geoip: located %s (%s)", loc, models.FormatLatLng(loc.Coordinates))
	return loc, nil
}
