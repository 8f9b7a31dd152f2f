package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"where2eat/utils"
)

type payload struct {
	Name string `json:"name"`
}

func newTestClient(t *testing.T, srv *httptest.Server, retries int) *Client {
	return NewClient(Options{
		BaseURL:        srv.URL,
		Timeout:        time.Second,
		MaxRetries:     retries,
		RetryBaseDelay: time.Millisecond,
		Headers:        map[string]string{"Authorization": "Bearer test-key"},
		Logger:         utils.NewTestLogger(t),
	})
}

func TestGetJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/thing", r.URL.Path)
		assert.Equal(t, "ramen", r.URL.Query().Get("term"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"name":"ok"}`)
	}))
	defer srv.Close()

	var out payload
	err := newTestClient(t, srv, 0).GetJSON(context.Background(), "/v3/thing", url.Values{"term": {"ramen"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Name)
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"name":"third time"}`)
	}))
	defer srv.Close()

	var out payload
	err := newTestClient(t, srv, 2).GetJSON(context.Background(), "/", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "third time", out.Name)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":"TOKEN_INVALID"}}`)
	}))
	defer srv.Close()

	var out payload
	err := newTestClient(t, srv, 3).GetJSON(context.Background(), "/", nil, &out)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Body, "TOKEN_INVALID")
	assert.False(t, se.Retryable())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSONGivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestClient(t, srv, 1).GetJSON(context.Background(), "/", nil, &payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetJSONMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":`)
	}))
	defer srv.Close()

	err := newTestClient(t, srv, 3).GetJSON(context.Background(), "/", nil, &payload{})
	var de *DecodeError
	assert.True(t, errors.As(err, &de))
}

func TestGetJSONCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestClient(t, srv, 3).GetJSON(ctx, "/", nil, &payload{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"429", &StatusError{StatusCode: 429}, true},
		{"500", &StatusError{StatusCode: 500}, true},
		{"404", &StatusError{StatusCode: 404}, false},
		{"wrapped 502", fmt.Errorf("yelp: %w", &StatusError{StatusCode: 502}), true},
		{"decode", &DecodeError{Err: errors.New("eof")}, false},
		{"deadline", context.DeadlineExceeded, false},
		{"network", errors.New("connection reset by peer"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
