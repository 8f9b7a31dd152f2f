package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"where2eat/api"
	"where2eat/config"
	"where2eat/models"
	"where2eat/utils"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Yelp: config.YelpConfig{
			APIKey:          "secret",
			BaseURL:         baseURL,
			DefaultTerm:     "restaurant",
			DefaultLocation: "Union Square, New York, NY 10003",
			Radius:          15000,
			SearchLimit:     40,
		},
		HTTP: config.HTTPConfig{TimeoutMs: 2000, MaxRetries: 0},
	}
}

func business(id string) map[string]any {
	return map[string]any{"id": id, "name": "Place " + id, "rating": 4.0}
}

// fakeSearch serves total businesses named b0..b{total-1}, honouring limit
// and offset, and records every query it sees.
type fakeSearch struct {
	mu      sync.Mutex
	total   int
	queries []map[string]string
}

func (f *fakeSearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	seen := map[string]string{"auth": r.Header.Get("Authorization")}
	for k := range q {
		seen[k] = q.Get(k)
	}
	f.queries = append(f.queries, seen)
	f.mu.Unlock()

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	var page []map[string]any
	for i := offset; i < offset+limit && i < f.total; i++ {
		page = append(page, business(fmt.Sprintf("b%d", i)))
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"businesses": page, "total": f.total})
}

func TestSearchPaginates(t *testing.T) {
	fake := &fakeSearch{total: 1000}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewTestLogger(t))
	got, err := c.Search(context.Background(), models.SearchQuery{
		Term:       "ramen",
		Location:   "Brooklyn",
		Radius:     5000,
		PriceTiers: []models.PriceTier{1, 2},
		Limit:      120,
	})
	require.NoError(t, err)
	assert.Len(t, got, 120)

	require.Len(t, fake.queries, 3)
	assert.Equal(t, []string{"50", "50", "20"}, []string{fake.queries[0]["limit"], fake.queries[1]["limit"], fake.queries[2]["limit"]})
	assert.Equal(t, []string{"0", "50", "100"}, []string{fake.queries[0]["offset"], fake.queries[1]["offset"], fake.queries[2]["offset"]})

	first := fake.queries[0]
	assert.Equal(t, "Bearer secret", first["auth"])
	assert.Equal(t, "ramen", first["term"])
	assert.Equal(t, "Brooklyn", first["location"])
	assert.Equal(t, "5000", first["radius"])
	assert.Equal(t, "1,2", first["price"])
}

func TestSearchOffset(t *testing.T) {
	fake := &fakeSearch{total: 1000}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger())
	got, err := c.Search(context.Background(), models.SearchQuery{Limit: 5, Offset: 10})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "b10", *got[0].ID)
	assert.Equal(t, "b14", *got[4].ID)
	require.Len(t, fake.queries, 1)
	assert.Equal(t, "10", fake.queries[0]["offset"])

	fake.queries = nil
	got, err = c.Search(context.Background(), models.SearchQuery{Limit: 60, Offset: 30})
	require.NoError(t, err)
	assert.Len(t, got, 60)
	require.Len(t, fake.queries, 2)
	assert.Equal(t, []string{"30", "80"}, []string{fake.queries[0]["offset"], fake.queries[1]["offset"]})
	assert.Equal(t, []string{"50", "10"}, []string{fake.queries[0]["limit"], fake.queries[1]["limit"]})
}

func TestSearchOffsetNearTotal(t *testing.T) {
	fake := &fakeSearch{total: 12}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	got, err := New(testConfig(srv.URL), utils.NewNopLogger()).Search(context.Background(), models.SearchQuery{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, fake.queries, 1)
}

func TestSearchStopsOnShortPage(t *testing.T) {
	fake := &fakeSearch{total: 7}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	got, err := New(testConfig(srv.URL), utils.NewNopLogger()).Search(context.Background(), models.SearchQuery{Limit: 200})
	require.NoError(t, err)
	assert.Len(t, got, 7)
	assert.Len(t, fake.queries, 1)
}

func TestSearchDefaultsAndCoordinates(t *testing.T) {
	fake := &fakeSearch{total: 3}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger())

	_, err := c.Search(context.Background(), models.SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, "restaurant", fake.queries[0]["term"])
	assert.Equal(t, "Union Square, New York, NY 10003", fake.queries[0]["location"])
	assert.Equal(t, "40", fake.queries[0]["limit"])

	_, err = c.Search(context.Background(), models.SearchQuery{
		Location:    "ignored",
		Coordinates: &models.Coordinates{Latitude: 40.7359, Longitude: -73.9911},
	})
	require.NoError(t, err)
	assert.Equal(t, "40.7359", fake.queries[1]["latitude"])
	assert.Equal(t, "-73.9911", fake.queries[1]["longitude"])
	_, hasLocation := fake.queries[1]["location"]
	assert.False(t, hasLocation)
}

func TestSearchDeduplicatesAcrossPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		page := make([]map[string]any, 0, 50)
		for i := 0; i < 50; i++ {
			// second page repeats the tail of the first
			page = append(page, business(fmt.Sprintf("b%d", offset+i-offset/50*10)))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"businesses": page, "total": 500})
	}))
	defer srv.Close()

	got, err := New(testConfig(srv.URL), utils.NewNopLogger()).Search(context.Background(), models.SearchQuery{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, got, 90)
}

func TestSearchInvalidQueryMakesNoRequest(t *testing.T) {
	fake := &fakeSearch{total: 10}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger())

	tests := []struct {
		name string
		q    models.SearchQuery
	}{
		{"radius too large", models.SearchQuery{Radius: 20001}},
		{"negative radius", models.SearchQuery{Radius: -5}},
		{"limit too large", models.SearchQuery{Limit: 501}},
		{"negative limit", models.SearchQuery{Limit: -1}},
		{"bad latitude", models.SearchQuery{Coordinates: &models.Coordinates{Latitude: 91}}},
		{"bad price", models.SearchQuery{PriceTiers: []models.PriceTier{5}}},
		{"negative offset", models.SearchQuery{Limit: 5, Offset: -1}},
		{"offset past cap", models.SearchQuery{Limit: 5, Offset: 498}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Search(context.Background(), tt.q)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
	assert.Empty(t, fake.queries)
}

func TestSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":"LOCATION_NOT_FOUND"}}`)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL), utils.NewNopLogger()).Search(context.Background(), models.SearchQuery{Location: "Atlantis"})
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, err.Error(), "yelp: search:")
}

func TestBusinessAndReviews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3/businesses/joes-pizza-new-york":
			fmt.Fprint(w, `{"id":"joes-pizza-new-york","name":"Joe's Pizza",
				"location":{"display_address":["7 Carmine St","New York, NY 10014"]},
				"coordinates":{"latitude":40.7305,"longitude":-74.0021}}`)
		case "/v3/businesses/joes-pizza-new-york/reviews":
			fmt.Fprint(w, `{"reviews":[{"text":"Classic.","rating":5,"time_created":"2023-01-02 03:04:05","user":{"name":"Ann"}}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), utils.NewNopLogger())

	b, err := c.Business(context.Background(), "joes-pizza-new-york")
	require.NoError(t, err)
	assert.Equal(t, "Joe's Pizza", *b.Name)
	assert.Equal(t, []string{"7 Carmine St", "New York, NY 10014"}, b.Location.DisplayAddress)

	reviews, err := c.Reviews(context.Background(), "joes-pizza-new-york")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Ann", *reviews[0].User.Name)

	_, err = c.Business(context.Background(), "missing")
	assert.Error(t, err)

	_, err = c.Reviews(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
