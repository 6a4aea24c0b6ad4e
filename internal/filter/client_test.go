package filter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthgate/hearthgate/internal/common"
)

func TestClient_CheckURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/check-url", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com", req["url"])

		json.NewEncoder(w).Encode(Verdict{Allowed: false, Reason: "phishing", Score: 0.93})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	v, err := c.CheckURL(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, "phishing", v.Reason)
	assert.InDelta(t, 0.93, v.Score, 1e-9)
}

func TestClient_CheckText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/check-text", r.URL.Path)
		json.NewEncoder(w).Encode(Verdict{Allowed: true, Score: 0.02})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	v, err := c.CheckText(context.Background(), "homework help")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
}

func TestClient_ServerErrorMapsToUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.CheckURL(context.Background(), "https://example.com")
	assert.True(t, errors.Is(err, common.ErrUpstreamUnavailable))
}

func TestClient_UnreachableMapsToUpstreamUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := c.CheckURL(context.Background(), "https://example.com")
	assert.True(t, errors.Is(err, common.ErrUpstreamUnavailable))
}

func TestClient_TimeoutMapsToUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond)
	_, err := c.CheckText(context.Background(), "anything")
	assert.True(t, errors.Is(err, common.ErrUpstreamUnavailable))
}
