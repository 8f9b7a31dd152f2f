package services

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"where2eat/models"
)

// reviewTimeLayouts are the timestamp formats Yelp has used for
// time_created, tried in order.
var reviewTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Normalize converts raw search results into Restaurant records, in input
// order. Records that cannot be displayed or referenced (no id or name) or
// that carry a non-finite or out-of-range rating or distance are dropped;
// the caller can log len(raw)-len(result).
func Normalize(raw []models.RawBusiness) []models.Restaurant {
	result := make([]models.Restaurant, 0, len(raw))
	for i := range raw {
		if r, ok := normalizeBusiness(&raw[i]); ok {
			result = append(result, r)
		}
	}
	return result
}

func normalizeBusiness(b *models.RawBusiness) (models.Restaurant, bool) {
	id := strings.TrimSpace(deref(b.ID))
	name := normaliseText(deref(b.Name))
	if id == "" || name == "" {
		return models.Restaurant{}, false
	}

	rating := models.Unrated
	if b.Rating != nil {
		if !finite(*b.Rating) || *b.Rating < 0 || *b.Rating > models.MaxRating {
			return models.Restaurant{}, false
		}
		rating = *b.Rating
	}

	distance := models.UnknownDistance
	if b.Distance != nil {
		if !finite(*b.Distance) || *b.Distance < 0 {
			return models.Restaurant{}, false
		}
		distance = *b.Distance
	}

	reviewCount := 0
	if b.ReviewCount != nil && *b.ReviewCount > 0 {
		reviewCount = *b.ReviewCount
	}

	r := models.Restaurant{
		ID:          id,
		Name:        name,
		Rating:      rating,
		PriceTier:   models.ParsePriceTier(deref(b.Price)),
		Distance:    distance,
		ReviewCount: reviewCount,
		Phone:       strings.TrimSpace(deref(b.Phone)),
		URL:         strings.TrimSpace(deref(b.URL)),
	}

	if c := b.Coordinates; c != nil && c.Latitude != nil && c.Longitude != nil &&
		validLatLng(*c.Latitude, *c.Longitude) {
		r.Coordinates = &models.Coordinates{Latitude: *c.Latitude, Longitude: *c.Longitude}
	}

	if b.Location != nil {
		lines := make([]string, 0, len(b.Location.DisplayAddress))
		for _, line := range b.Location.DisplayAddress {
			if line = normaliseText(line); line != "" {
				lines = append(lines, line)
			}
		}
		r.Address = strings.Join(lines, ", ")
	}

	return r, true
}

// NormalizeReviews turns raw reviews into at most models.MaxReviews
// snippets, most recent first. Reviews without text are dropped; reviews
// with an unparseable timestamp sort last.
func NormalizeReviews(raw []models.RawReview) []models.Review {
	reviews := make([]models.Review, 0, len(raw))
	for _, rr := range raw {
		text := strings.TrimSpace(strings.ReplaceAll(deref(rr.Text), "\n", ""))
		if text == "" {
			continue
		}
		rev := models.Review{
			Text:    text,
			Rating:  models.Unrated,
			URL:     strings.TrimSpace(deref(rr.URL)),
			Created: parseReviewTime(deref(rr.TimeCreated)),
		}
		if rr.Rating != nil && finite(*rr.Rating) {
			rev.Rating = *rr.Rating
		}
		if rr.User != nil {
			rev.Author = normaliseText(deref(rr.User.Name))
		}
		reviews = append(reviews, rev)
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Created.After(reviews[j].Created)
	})

	if len(reviews) > models.MaxReviews {
		reviews = reviews[:models.MaxReviews]
	}
	return reviews
}

func parseReviewTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range reviewTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validLatLng(lat, lng float64) bool {
	return finite(lat) && finite(lng) && lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
