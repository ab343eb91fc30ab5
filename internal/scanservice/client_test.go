package scanservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/recongraph/internal/config"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(config.ScanServiceConfig{BaseURL: url, Timeout: 5 * time.Second}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.ScanServiceConfig{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestAttackSurfaceSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scan", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "93.184.216.34", req["query"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tor": {"exit_node": true}, "talos": {"blacklisted": false}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.AttackSurface(context.Background(), "93.184.216.34")

	require.NoError(t, err)
	require.NotNil(t, result.Tor)
	assert.True(t, result.Tor.ExitNode)
	require.NotNil(t, result.Blacklist)
	assert.False(t, result.Blacklist.Blacklisted)
	assert.Nil(t, result.EmailBreach, "absent sections stay nil")
}

func TestFootprintHitsFootprintPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"username_scan": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.Footprint(context.Background(), "someone")

	require.NoError(t, err)
	assert.Equal(t, "/footprint", gotPath)
	require.NotNil(t, result.Usernames, "an empty list must survive decoding as present")
	assert.Empty(t, *result.Usernames)
}

func TestErrorBodyIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A well-formed body carrying an explicit error, with a 200 status.
		w.Write([]byte(`{"error": "rate limited by upstream"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.AttackSurface(context.Background(), "example.com")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "rate limited by upstream")
}

func TestNon2xxStatusIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.AttackSurface(context.Background(), "example.com")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "502")
}

func TestMalformedBodyIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.AttackSurface(context.Background(), "example.com")
	require.Error(t, err)
}

func TestTransportErrorIsTerminal(t *testing.T) {
	// A closed server guarantees a connection failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.AttackSurface(context.Background(), "example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}
