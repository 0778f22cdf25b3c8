package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayuair/vayuair/internal/assistant/gemini"
	"github.com/vayuair/vayuair/internal/fault"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *gemini.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return gemini.NewClient(gemini.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
}

func TestClient_Generate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "contents")

		w.Write([]byte(`{
			"candidates": [
				{"content": {"parts": [{"text": "Limit outdoor activity today."}]}}
			]
		}`))
	})

	text, err := client.Generate(context.Background(), "AQI is 161 in Pune")
	require.NoError(t, err)
	assert.Equal(t, "Limit outdoor activity today.", text)
}

func TestClient_Generate_QuotaExhausted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"status":"RESOURCE_EXHAUSTED","message":"Quota exceeded"}}`))
	})

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindQuota))
}

func TestClient_Generate_InvalidKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":"PERMISSION_DENIED","message":"API key not valid"}}`))
	})

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindPermission))
}

func TestClient_Generate_NoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	})

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUnavailable))
}
