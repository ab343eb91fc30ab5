package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/recongraph/api/schemas"
	"github.com/xkilldash9x/recongraph/internal/config"
)

func testConfig(endpoint string) config.InsightConfig {
	return config.InsightConfig{
		Model:       "gemini-2.5-flash",
		APIKey:      "test-key",
		Endpoint:    endpoint,
		APITimeout:  5 * time.Second,
		Temperature: 0.4,
		MaxTokens:   2048,
	}
}

func candidateResponse(text string) string {
	payload := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content":      map[string]interface{}{"parts": []map[string]string{{"text": text}}},
				"finishReason": "STOP",
			},
		},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.InsightConfig{Model: "gemini-2.5-flash"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewClientDefaultsEndpointFromModel(t *testing.T) {
	client, err := NewClient(config.InsightConfig{APIKey: "k", Model: "gemini-2.5-flash"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Contains(t, client.endpoint, "gemini-2.5-flash:generateContent")
}

func TestBuildRequestEmbedsScanResult(t *testing.T) {
	result := &schemas.ScanResult{
		Tor: &schemas.TorStatus{ExitNode: true},
	}

	req, err := BuildRequest(result, 0.4)
	require.NoError(t, err)

	assert.Equal(t, preamble, req.SystemPrompt)
	assert.Contains(t, req.UserPrompt, "Digital Footprint Data:")
	assert.Contains(t, req.UserPrompt, `"exit_node": true`)
	assert.InDelta(t, 0.4, req.Options.Temperature, 1e-6)
}

func TestGenerateResponseSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload, "contents")
		assert.Contains(t, payload, "system_instruction")

		w.Write([]byte(candidateResponse("* Rotate your passwords.")))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	text, err := client.GenerateResponse(context.Background(), schemas.GenerationRequest{
		SystemPrompt: "system",
		UserPrompt:   "user",
	})
	require.NoError(t, err)
	assert.Equal(t, "* Rotate your passwords.", text)
}

func TestGenerateResponseRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(candidateResponse("ok")))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	text, err := client.GenerateResponse(context.Background(), schemas.GenerationRequest{UserPrompt: "user"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateResponseClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid argument"}}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.GenerateResponse(context.Background(), schemas.GenerationRequest{UserPrompt: "user"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses must not be retried")
}

func TestGenerateResponseBlockedIsPermanent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"candidates": [{"content": {"parts": []}, "finishReason": "SAFETY"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.GenerateResponse(context.Background(), schemas.GenerationRequest{UserPrompt: "user"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFallbackMessageIsStable(t *testing.T) {
	// The fallback is user-visible copy; changing it breaks downstream
	// expectations.
	assert.Equal(t, "Unable to generate recommendations at this time. Please try again later.", FallbackMessage)
}
