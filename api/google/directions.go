// Package google is a client for the Google Directions API.
package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"where2eat/api"
	"where2eat/config"
	"where2eat/models"
	"where2eat/utils"
)

var (
	// ErrInvalidRequest is returned before any request for an incomplete request.
	ErrInvalidRequest = errors.New("invalid directions request")
	// ErrNoRoute is returned when Google finds no route between the points.
	ErrNoRoute = errors.New("no route found")
)

type Client struct {
	api    *api.Client
	apiKey string
	logger *utils.Logger
}

type textValue struct {
	Text string `json:"text"`
}

type rawStep struct {
	HTMLInstructions string    `json:"html_instructions"`
	Distance         textValue `json:"distance"`
	Duration         textValue `json:"duration"`
	TravelMode       string    `json:"travel_mode"`
	Steps            []rawStep `json:"steps"`
	TransitDetails   *struct {
		Line struct {
			ShortName string `json:"short_name"`
			Name      string `json:"name"`
			Vehicle   struct {
				Name string `json:"name"`
			} `json:"vehicle"`
		} `json:"line"`
		DepartureStop struct {
			Name string `json:"name"`
		} `json:"departure_stop"`
		ArrivalStop struct {
			Name string `json:"name"`
		} `json:"arrival_stop"`
		NumStops int `json:"num_stops"`
	} `json:"transit_details"`
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Legs []struct {
			StartAddress string    `json:"start_address"`
			EndAddress   string    `json:"end_address"`
			Distance     textValue `json:"distance"`
			Duration     textValue `json:"duration"`
			Steps        []rawStep `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// New creates a Directions client. The caller is expected to have checked
// cfg.RequireGoogle.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		api: api.NewClient(api.Options{
			BaseURL:        cfg.Google.BaseURL,
			Timeout:        cfg.Timeout(),
			MaxRetries:     cfg.HTTP.MaxRetries,
			RetryBaseDelay: cfg.RetryBaseDelay(),
			RateLimitMs:    cfg.HTTP.RateLimitMs,
			Logger:         logger,
		}),
		apiKey: strings.TrimSpace(cfg.Google.APIKey),
		logger: logger,
	}
}

// Directions returns the first leg of the first route Google suggests.
func (c *Client) Directions(ctx context.Context, req models.DirectionsRequest) (*models.Route, error) {
	if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidRequest)
	}
	if _, err := models.ParseTravelMode(string(req.Mode)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	params := url.Values{}
	params.Set("origin", req.Origin)
	params.Set("destination", req.Destination)
	params.Set("mode", string(req.Mode))
	params.Set("key", c.apiKey)

	var resp directionsResponse
	if err := c.api.GetJSON(ctx, "/maps/api/directions/json", params, &resp); err != nil {
		return nil, fmt.Errorf("google: directions: %w", err)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, fmt.Errorf("google: directions from %q to %q: %w", req.Origin, req.Destination, ErrNoRoute)
	default:
		msg := resp.Status
		if resp.ErrorMessage != "" {
			msg += ": " + resp.ErrorMessage
		}
		return nil, fmt.Errorf("google: directions: %s", msg)
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("google: directions: %w", ErrNoRoute)
	}

	leg := resp.Routes[0].Legs[0]
	route := &models.Route{
		StartAddress: leg.StartAddress,
		EndAddress:   leg.EndAddress,
		Distance:     leg.Distance.Text,
		Duration:     leg.Duration.Text,
		Mode:         req.Mode,
		Steps:        convertSteps(leg.Steps),
	}
	c.logger.Debug("google: %d steps, %s, %s", len(route.Steps), route.Distance, route.Duration)
	return route, nil
}

func convertSteps(raw []rawStep) []models.Step {
	steps := make([]models.Step, 0, len(raw))
	for _, rs := range raw {
		s := models.Step{
			Instruction: InstructionText(rs.HTMLInstructions),
			Distance:    rs.Distance.Text,
			Duration:    rs.Duration.Text,
			TravelMode:  rs.TravelMode,
		}
		if len(rs.Steps) > 0 {
			s.SubSteps = convertSteps(rs.Steps)
		}
		if td := rs.TransitDetails; td != nil {
			line := td.Line.ShortName
			if line == "" {
				line = td.Line.Name
			}
			s.Transit = &models.TransitDetails{
				Vehicle:       td.Line.Vehicle.Name,
				Line:          line,
				DepartureStop: td.DepartureStop.Name,
				ArrivalStop:   td.ArrivalStop.Name,
				NumStops:      td.NumStops,
			}
		}
		steps = append(steps, s)
	}
	return steps
}

// InstructionText flattens Google's html_instructions to plain text. Each
// <div> opens a new sentence, other tags are dropped and non-breaking
// spaces are removed.
func InstructionText(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				// unparseable markup; fall back to the raw text
				return s
			}
			return strings.TrimSpace(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "div" {
				b.WriteString(". ")
			}
		case html.TextToken:
			b.WriteString(strings.ReplaceAll(string(z.Text()), "\u00a0", ""))
		}
	}
}
