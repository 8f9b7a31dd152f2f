package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"where2eat/config"
	"where2eat/models"
	"where2eat/utils"
)

const transitResponse = `{
  "status": "OK",
  "routes": [{
    "legs": [{
      "start_address": "Union Square, New York, NY 10003, USA",
      "end_address": "575 Henry St, Brooklyn, NY 11231, USA",
      "distance": {"text": "5.1 mi"},
      "duration": {"text": "34 mins"},
      "steps": [
        {
          "html_instructions": "Walk to <b>14 St - Union Sq</b>",
          "distance": {"text": "0.1 mi"},
          "duration": {"text": "3 mins"},
          "travel_mode": "WALKING",
          "steps": [
            {"html_instructions": "Head <b>south</b> on <b>Broadway</b><div style=\"font-size:0.9em\">Destination&nbsp;will be on the left</div>",
             "distance": {"text": "0.1 mi"}, "duration": {"text": "2 mins"}, "travel_mode": "WALKING"}
          ]
        },
        {
          "html_instructions": "Subway towards Coney Island",
          "distance": {"text": "4.8 mi"},
          "duration": {"text": "22 mins"},
          "travel_mode": "TRANSIT",
          "transit_details": {
            "line": {"short_name": "F", "vehicle": {"name": "Subway"}},
            "departure_stop": {"name": "14 St"},
            "arrival_stop": {"name": "Carroll St"},
            "num_stops": 7
          }
        }
      ]
    }]
  }]
}`

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Google: config.GoogleConfig{APIKey: "g-key", BaseURL: baseURL},
		HTTP:   config.HTTPConfig{TimeoutMs: 2000},
	}
}

func TestDirectionsTransit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/maps/api/directions/json", r.URL.Path)
		assert.Equal(t, "40.7359,-73.9911", q.Get("origin"))
		assert.Equal(t, "575 Henry St, Brooklyn", q.Get("destination"))
		assert.Equal(t, "transit", q.Get("mode"))
		assert.Equal(t, "g-key", q.Get("key"))
		fmt.Fprint(w, transitResponse)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewTestLogger(t))
	route, err := c.Directions(context.Background(), models.DirectionsRequest{
		Origin:      "40.7359,-73.9911",
		Destination: "575 Henry St, Brooklyn",
		Mode:        models.Transit,
	})
	require.NoError(t, err)

	assert.Equal(t, "Union Square, New York, NY 10003, USA", route.StartAddress)
	assert.Equal(t, "5.1 mi", route.Distance)
	assert.Equal(t, models.Transit, route.Mode)
	require.Len(t, route.Steps, 2)

	walk := route.Steps[0]
	assert.Equal(t, "Walk to 14 St - Union Sq", walk.Instruction)
	require.Len(t, walk.SubSteps, 1)
	assert.Equal(t, "Head south on Broadway. Destinationwill be on the left", walk.SubSteps[0].Instruction)

	ride := route.Steps[1]
	require.NotNil(t, ride.Transit)
	assert.Equal(t, "Subway", ride.Transit.Vehicle)
	assert.Equal(t, "F", ride.Transit.Line)
	assert.Equal(t, "Carroll St", ride.Transit.ArrivalStop)
	assert.Equal(t, 7, ride.Transit.NumStops)
}

func TestDirectionsStatuses(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantMsg string
	}{
		{"zero results", `{"status":"ZERO_RESULTS","routes":[]}`, ErrNoRoute, ""},
		{"not found", `{"status":"NOT_FOUND"}`, ErrNoRoute, ""},
		{"denied", `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`, nil, "REQUEST_DENIED: The provided API key is invalid."},
		{"ok but empty", `{"status":"OK","routes":[]}`, ErrNoRoute, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(testConfig(srv.URL), utils.NewNopLogger()).Directions(context.Background(),
				models.DirectionsRequest{Origin: "a", Destination: "b", Mode: models.Driving})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestDirectionsInvalidRequest(t *testing.T) {
	c := New(testConfig("http://127.0.0.1:1"), utils.NewNopLogger())

	_, err := c.Directions(context.Background(), models.DirectionsRequest{Destination: "b", Mode: models.Walking})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = c.Directions(context.Background(), models.DirectionsRequest{Origin: "a", Destination: "b", Mode: "teleport"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestInstructionText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Turn <b>left</b> onto <b>E 14th St</b>", "Turn left onto E 14th St"},
		{"Continue<div style=\"font-size:0.9em\">Pass by Starbucks</div>", "Continue. Pass by Starbucks"},
		{"Toll&nbsp;road", "Tollroad"},
		{"Fish &amp; Chips", "Fish & Chips"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := InstructionText(tt.in); got != tt.want {
			t.Errorf("InstructionText(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
