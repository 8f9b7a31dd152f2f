package models

import "fmt"

// TravelMode is a Google Directions travel mode.
type TravelMode string

const (
	Driving TravelMode = "driving"
	Walking TravelMode = "walking"
	Transit TravelMode = "transit"
)

// TravelModes lists the supported modes.
var TravelModes = []TravelMode{Driving, Walking, Transit}

// ParseTravelMode validates a user supplied mode.
func ParseTravelMode(s string) (TravelMode, error) {
	for _, m := range TravelModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid travel mode %q: use driving, walking or transit", s)
}

// DirectionsRequest asks for a route from Origin to Destination.
type DirectionsRequest struct {
	Origin      string
	Destination string
	Mode        TravelMode
}

// Route is the first leg of the first route Google returns.
type Route struct {
	StartAddress string
	EndAddress   string
	Distance     string
	Duration     string
	Mode         TravelMode
	Steps        []Step
}

// Step is one instruction. Walking steps may carry finer SubSteps; transit
// steps carry Transit.
type Step struct {
	Instruction string
	Distance    string
	Duration    string
	TravelMode  string
	SubSteps    []Step
	Transit     *TransitDetails
}

// TransitDetails describes the vehicle taken on a transit step.
type TransitDetails struct {
	Vehicle       string
	Line          string
	DepartureStop string
	ArrivalStop   string
	NumStops      int
}
