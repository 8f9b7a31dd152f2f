// Package yelp is a client for the Yelp Fusion business endpoints.
package yelp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"where2eat/api"
	"where2eat/config"
	"where2eat/models"
	"where2eat/utils"
)

// pageSize is the largest page Yelp's search endpoint serves.
const pageSize = 50

// ErrInvalidQuery is returned, before any request is made, for a search or
// lookup that Yelp would reject.
var ErrInvalidQuery = errors.New("invalid query")

type Client struct {
	api      *api.Client
	defaults config.YelpConfig
	logger   *utils.Logger
}

type searchResponse struct {
	Businesses []models.RawBusiness `json:"businesses"`
	Total      int                  `json:"total"`
}

type reviewsResponse struct {
	Reviews []models.RawReview `json:"reviews"`
}

// New creates a Yelp client. The caller is expected to have checked
// cfg.RequireYelp.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		api: api.NewClient(api.Options{
			BaseURL:        cfg.Yelp.BaseURL,
			Timeout:        cfg.Timeout(),
			MaxRetries:     cfg.HTTP.MaxRetries,
			RetryBaseDelay: cfg.RetryBaseDelay(),
			RateLimitMs:    cfg.HTTP.RateLimitMs,
			Headers:        map[string]string{"Authorization": "Bearer " + strings.TrimSpace(cfg.Yelp.APIKey)},
			Logger:         logger,
		}),
		defaults: cfg.Yelp,
		logger:   logger,
	}
}

// Search pages through /v3/businesses/search, starting q.Offset results in,
// until q.Limit businesses have been collected or Yelp runs out. Businesses repeated across pages are
// returned once.
func (c *Client) Search(ctx context.Context, q models.SearchQuery) ([]models.RawBusiness, error) {
	q = c.withDefaults(q)
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	base := url.Values{}
	base.Set("term", q.Term)
	if q.Coordinates != nil {
		base.Set("latitude", strconv.FormatFloat(q.Coordinates.Latitude, 'f', -1, 64))
		base.Set("longitude", strconv.FormatFloat(q.Coordinates.Longitude, 'f', -1, 64))
	} else {
		base.Set("location", q.Location)
	}
	if q.Radius > 0 {
		base.Set("radius", strconv.Itoa(q.Radius))
	}
	if p := models.PriceParam(q.PriceTiers); p != "" {
		base.Set("price", p)
	}

	seen := utils.NewIDSet()
	var results []models.RawBusiness

	for fetched := 0; fetched < q.Limit; {
		limit := min(q.Limit-fetched, pageSize)
		offset := q.Offset + fetched
		params := cloneValues(base)
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))

		var page searchResponse
		if err := c.api.GetJSON(ctx, "/v3/businesses/search", params, &page); err != nil {
			return nil, fmt.Errorf("yelp: search: %w", err)
		}

		for _, b := range page.Businesses {
			if b.ID != nil && !seen.Add(*b.ID) {
				continue
			}
			results = append(results, b)
		}
		c.logger.Debug("yelp: page offset=%d got %d businesses, %d unique so far (total %d)", offset, len(page.Businesses), seen.Size(), page.Total)

		fetched += limit
		if len(page.Businesses) < limit || (page.Total > 0 && offset+limit >= page.Total) {
			break
		}
	}

	return results, nil
}

// Business fetches a single business by id.
func (c *Client) Business(ctx context.Context, id string) (*models.RawBusiness, error) {
	path, err := businessPath(id)
	if err != nil {
		return nil, err
	}
	var b models.RawBusiness
	if err := c.api.GetJSON(ctx, path, nil, &b); err != nil {
		return nil, fmt.Errorf("yelp: business %s: %w", id, err)
	}
	return &b, nil
}

// Reviews fetches the review excerpts Yelp exposes for a business.
func (c *Client) Reviews(ctx context.Context, id string) ([]models.RawReview, error) {
	path, err := businessPath(id)
	if err != nil {
		return nil, err
	}
	var resp reviewsResponse
	if err := c.api.GetJSON(ctx, path+"/reviews", nil, &resp); err != nil {
		return nil, fmt.Errorf("yelp: reviews %s: %w", id, err)
	}
	return resp.Reviews, nil
}

func (c *Client) withDefaults(q models.SearchQuery) models.SearchQuery {
	if strings.TrimSpace(q.Term) == "" {
		q.Term = c.defaults.DefaultTerm
	}
	if q.Coordinates == nil && strings.TrimSpace(q.Location) == "" {
		q.Location = c.defaults.DefaultLocation
	}
	if q.Coordinates != nil && q.Location != "" {
		c.logger.Warn("yelp: location %q is ignored when coordinates are given", q.Location)
		q.Location = ""
	}
	if q.Limit == 0 {
		q.Limit = c.defaults.SearchLimit
	}
	return q
}

func validateQuery(q models.SearchQuery) error {
	switch {
	case q.Radius < 0 || q.Radius > config.MaxRadius:
		return fmt.Errorf("%w: radius must be between 0 and %d meters, got %d", ErrInvalidQuery, config.MaxRadius, q.Radius)
	case q.Limit < 1 || q.Limit > config.MaxSearchLimit:
		return fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidQuery, config.MaxSearchLimit, q.Limit)
	case q.Offset < 0 || q.Offset+q.Limit > config.MaxSearchLimit:
		return fmt.Errorf("%w: offset %d with limit %d goes past result %d", ErrInvalidQuery, q.Offset, q.Limit, config.MaxSearchLimit)
	case q.Coordinates == nil && strings.TrimSpace(q.Location) == "":
		return fmt.Errorf("%w: a location or coordinates are required", ErrInvalidQuery)
	}
	if c := q.Coordinates; c != nil {
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			return fmt.Errorf("%w: coordinates %s out of range", ErrInvalidQuery, models.FormatLatLng(*c))
		}
	}
	for _, t := range q.PriceTiers {
		if !t.Known() {
			return fmt.Errorf("%w: price level %d", ErrInvalidQuery, int(t))
		}
	}
	return nil
}

func businessPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: business id is required", ErrInvalidQuery)
	}
	return "/v3/businesses/" + url.PathEscape(id), nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
