package prompt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"where2eat/config"
	"where2eat/models"
	"where2eat/services"
)

// MaxMiles is the largest whole-mile radius that stays within Yelp's limit.
const MaxMiles = config.MaxRadius / int(models.MetersPerMile)

// ParseMiles converts a whole number of miles to a search radius in meters.
func ParseMiles(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > MaxMiles {
		return 0, fmt.Errorf("enter a whole number of miles from 1 to %d", MaxMiles)
	}
	return n * int(models.MetersPerMile), nil
}

// ParseCount validates the shortlist size.
func ParseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > services.MaxShortlist {
		return 0, fmt.Errorf("enter a whole number from 1 to %d", services.MaxShortlist)
	}
	return n, nil
}

// ParseCoordinate parses a latitude (limit 90) or longitude (limit 180).
func ParseCoordinate(s string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f < -limit || f > limit {
		return 0, fmt.Errorf("enter a number between -%g and %g", limit, limit)
	}
	return f, nil
}

func defaultMiles(radius int) string {
	if radius <= 0 {
		return "5"
	}
	miles := int(math.Round(float64(radius) / models.MetersPerMile))
	return strconv.Itoa(min(max(miles, 1), MaxMiles))
}
