package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MetersPerMile is the conversion used for every distance shown to the user.
const MetersPerMile = 1609.0

// Criterion names the dimension a shortlist is ordered by.
type Criterion string

const (
	ByRating         Criterion = "rating"
	ByPrice          Criterion = "price"
	ByDistance       Criterion = "distance"
	ByComposite      Criterion = "composite"
	ByReviewCount    Criterion = "review_count"
	ByRatingDistance Criterion = "rating_distance"
)

// Criteria lists every criterion in menu order.
var Criteria = []Criterion{ByRating, ByRatingDistance, ByReviewCount, ByDistance, ByPrice, ByComposite}

// Describe returns the menu text for c.
func (c Criterion) Describe() string {
	switch c {
	case ByRating:
		return "Yelp rating, ties broken by number of reviews"
	case ByRatingDistance:
		return "Yelp rating, ties broken by distance"
	case ByReviewCount:
		return "Number of reviews"
	case ByDistance:
		return "Distance from the starting point"
	case ByPrice:
		return "Price level, cheapest first"
	case ByComposite:
		return "Balanced score of rating, price and distance"
	}
	return string(c)
}

// Constraints filter candidates before they are ranked. Nil or empty
// fields do not filter.
type Constraints struct {
	MaxDistance *float64
	MinRating   *float64
	PriceTiers  []PriceTier
}

// AllowsTier reports whether t passes the PriceTiers filter.
func (c Constraints) AllowsTier(t PriceTier) bool {
	if len(c.PriceTiers) == 0 {
		return true
	}
	for _, allowed := range c.PriceTiers {
		if allowed == t {
			return true
		}
	}
	return false
}

// SearchQuery is what the search collaborator needs. Exactly one of
// Location or Coordinates should be set.
type SearchQuery struct {
	Term        string
	Location    string
	Coordinates *Coordinates
	Radius      int
	PriceTiers  []PriceTier
	Limit       int

	// Offset skips that many results, for paging.
	Offset int
}

// PriceParam renders tiers the way Yelp's price filter expects: "1,2,3".
func PriceParam(tiers []PriceTier) string {
	parts := make([]string, 0, len(tiers))
	for _, t := range tiers {
		if t.Known() {
			parts = append(parts, strconv.Itoa(int(t)))
		}
	}
	return strings.Join(parts, ",")
}

// ParsePriceTiers parses a comma delimited list of levels such as "1, 2,3".
func ParsePriceTiers(s string) ([]PriceTier, error) {
	var tiers []PriceTier
	seen := make(map[PriceTier]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || !PriceTier(n).Known() {
			return nil, fmt.Errorf("invalid price level %q: use 1 to 4", part)
		}
		if !seen[PriceTier(n)] {
			seen[PriceTier(n)] = true
			tiers = append(tiers, PriceTier(n))
		}
	}
	return tiers, nil
}

// Origin is where the user starts from: an address or a coordinate.
type Origin struct {
	Address     string
	Coordinates *Coordinates
}

func (o Origin) String() string {
	if o.Coordinates != nil {
		return FormatLatLng(*o.Coordinates)
	}
	return o.Address
}

// Preferences is everything the interactive session collects up front.
type Preferences struct {
	Origin      Origin
	Term        string
	Radius      int
	PriceTiers  []PriceTier
	Criterion   Criterion
	ResultCount int
}

// Query builds the search request for p.
func (p Preferences) Query(limit int) SearchQuery {
	return SearchQuery{
		Term:        p.Term,
		Location:    p.Origin.Address,
		Coordinates: p.Origin.Coordinates,
		Radius:      p.Radius,
		PriceTiers:  p.PriceTiers,
		Limit:       limit,
	}
}

// Constraints derives the pre-ranking filter for p. Yelp treats radius as a
// suggestion, so it is enforced again here.
func (p Preferences) Constraints() Constraints {
	c := Constraints{PriceTiers: p.PriceTiers}
	if p.Radius > 0 {
		d := float64(p.Radius)
		c.MaxDistance = &d
	}
	return c
}

// FormatLatLng renders "lat,lng" as the directions API expects.
func FormatLatLng(c Coordinates) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
