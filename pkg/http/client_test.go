package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Prices/History", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("productId"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "unit", r.Header.Get("X-Test"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/api/"), WithHeader("X-Test", "unit"))
	var out struct{ OK bool }
	err := c.GetJSON(context.Background(), "Prices/History", url.Values{"productId": {"42"}}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(WithBaseURL(srv.URL)).GetJSON(context.Background(), "/x", nil, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "slow down", se.Body)
}

func TestResolve(t *testing.T) {
	c := NewClient(WithBaseURL("https://example.test/api/"))
	assert.Equal(t, "https://example.test/api/a/b", c.resolve("/a/b"))
	assert.Equal(t, "http://other.test/x", c.resolve("http://other.test/x"))
	assert.Equal(t, "/plain", NewClient().resolve("/plain"))
}
