package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk-assistant/internal/common/config"
	apperrors "helpdesk-assistant/internal/common/errors"
)

func testClient(baseURL string) *Client {
	return NewClient(config.GenAIConfig{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Timeout:     5000,
		MaxTokens:   256,
		Temperature: 0.2,
	})
}

func TestInferSuccess(t *testing.T) {
	var gotReq inferRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(inferResponse{
			Text:       "TICKET_AGENT",
			Confidence: 0.93,
		})
	}))
	defer server.Close()

	text, err := testClient(server.URL).Infer(context.Background(), "classify this")

	require.NoError(t, err)
	assert.Equal(t, "TICKET_AGENT", text)
	assert.Equal(t, "classify this", gotReq.Prompt)
	assert.Equal(t, 256, gotReq.MaxTokens)
}

func TestInferServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Infer(context.Background(), "hello")

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLLMRequestFailed))
	assert.Contains(t, apperrors.Normalize(err).Details, "status 502")
}

func TestInferEmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":""}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Infer(context.Background(), "hello")

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLLMRequestFailed))
	assert.Contains(t, apperrors.Normalize(err).Details, "empty response")
}

func TestInferTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient(config.GenAIConfig{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		Timeout:   50,
		MaxTokens: 256,
	})

	_, err := client.Infer(context.Background(), "hello")

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLLMTimeout))
}

func TestInferContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(server.URL).Infer(ctx, "hello")
	require.Error(t, err)
}
