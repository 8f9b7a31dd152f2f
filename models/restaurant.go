package models

import (
	"strings"
	"time"
)

const (
	// Unrated marks a restaurant the source returned without a rating.
	Unrated = -1.0
	// UnknownDistance marks a restaurant the source returned without a distance.
	UnknownDistance = -1.0
	// MaxRating is the top of Yelp's rating scale.
	MaxRating = 5.0
	// MaxReviews is how many review snippets a record keeps.
	MaxReviews = 3
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RawBusiness mirrors one element of Yelp's "businesses" array. Every field
// may be absent, so everything is a pointer.
type RawBusiness struct {
	ID          *string         `json:"id,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Rating      *float64        `json:"rating,omitempty"`
	Price       *string         `json:"price,omitempty"`
	Distance    *float64        `json:"distance,omitempty"`
	ReviewCount *int            `json:"review_count,omitempty"`
	Phone       *string         `json:"display_phone,omitempty"`
	URL         *string         `json:"url,omitempty"`
	Coordinates *RawCoordinates `json:"coordinates,omitempty"`
	Location    *RawLocation    `json:"location,omitempty"`
}

// RawCoordinates is Yelp's coordinate object; either side may be null.
type RawCoordinates struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// RawLocation carries the address lines Yelp pre-formats for display.
type RawLocation struct {
	DisplayAddress []string `json:"display_address,omitempty"`
}

// RawReview mirrors one element of Yelp's "reviews" array.
type RawReview struct {
	Text        *string  `json:"text,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	TimeCreated *string  `json:"time_created,omitempty"`
	URL         *string  `json:"url,omitempty"`
	User        *struct {
		Name *string `json:"name,omitempty"`
	} `json:"user,omitempty"`
}

// Review is a normalized review snippet.
type Review struct {
	Author  string
	Rating  float64
	Text    string
	URL     string
	Created time.Time
}

// Restaurant is the validated, uniformly shaped record the ranking works on.
// Treat it as a value: WithReviews returns a copy instead of mutating.
type Restaurant struct {
	ID          string
	Name        string
	Rating      float64
	PriceTier   PriceTier
	Distance    float64
	ReviewCount int
	Reviews     []Review
	Coordinates *Coordinates

	Address string
	Phone   string
	URL     string
}

// IsRated reports whether the source supplied a rating.
func (r Restaurant) IsRated() bool { return r.Rating >= 0 }

// HasDistance reports whether the source supplied a distance.
func (r Restaurant) HasDistance() bool { return r.Distance >= 0 }

// DistanceMiles converts the distance to miles rounded to one decimal, the
// unit the shortlist is displayed in.
func (r Restaurant) DistanceMiles() float64 {
	if !r.HasDistance() {
		return UnknownDistance
	}
	return float64(int(r.Distance/MetersPerMile*10+0.5)) / 10
}

// WithReviews returns a copy of r carrying at most MaxReviews of reviews,
// in the order given.
func (r Restaurant) WithReviews(reviews []Review) Restaurant {
	if len(reviews) > MaxReviews {
		reviews = reviews[:MaxReviews]
	}
	out := r
	out.Reviews = append([]Review(nil), reviews...)
	return out
}

// Destination is the string handed to a directions service: coordinates
// when known, the display address otherwise.
func (r Restaurant) Destination() string {
	if r.Coordinates != nil {
		return FormatLatLng(*r.Coordinates)
	}
	return r.Address
}

// PriceTier is Yelp's ordinal price level. PriceUnknown sorts after every
// known tier.
type PriceTier int

const (
	PriceUnknown PriceTier = iota
	PriceInexpensive
	PriceModerate
	PricePricey
	PriceUltraHighEnd
)

// ParsePriceTier converts Yelp's "$".."$$$$" label to a tier.
func ParsePriceTier(label string) PriceTier {
	label = strings.TrimSpace(label)
	if label == "" || strings.Trim(label, "$") != "" {
		return PriceUnknown
	}
	if n := len(label); n <= int(PriceUltraHighEnd) {
		return PriceTier(n)
	}
	return PriceUnknown
}

// Known reports whether t is one of the four real tiers.
func (t PriceTier) Known() bool {
	return t >= PriceInexpensive && t <= PriceUltraHighEnd
}

func (t PriceTier) String() string {
	if !t.Known() {
		return "?"
	}
	return strings.Repeat("$", int(t))
}
