package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
)

func TestNewLLMService_Validation(t *testing.T) {
	_, err := NewLLMService(LLMConfig{Deployment: "gpt-4o-mini", APIKey: "k"})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewLLMService(LLMConfig{Endpoint: "https://r.openai.azure.com", APIKey: "k"})
	assert.ErrorContains(t, err, "deployment")

	_, err = NewLLMService(LLMConfig{Endpoint: "https://r.openai.azure.com", Deployment: "gpt-4o-mini"})
	assert.ErrorContains(t, err, "API key")
}

func TestSummarise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-4o-mini/chat/completions", r.URL.Path)
		assert.Equal(t, DefaultAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "key-123", r.Header.Get("api-key"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "payroll requirements")
		assert.Equal(t, 500, req.MaxTokens)

		fmt.Fprint(w, `{"choices": [{"message": {"content": "  An ABRD for the payroll platform.  "}, "finish_reason": "stop"}]}`)
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{Endpoint: server.URL, Deployment: "gpt-4o-mini", APIKey: "key-123"})
	require.NoError(t, err)

	summary, err := svc.Summarise(context.Background(), "payroll requirements", 500)
	require.NoError(t, err)
	assert.Equal(t, "An ABRD for the payroll platform.", summary)
}

func TestSummarise_ErrorHandling(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		transient bool
	}{
		{"rate limited", http.StatusTooManyRequests, "", true},
		{"server error", http.StatusInternalServerError, "", true},
		{"api error", http.StatusBadRequest, `{"error": {"message": "content filter", "code": "content_filter"}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			svc, err := NewLLMService(LLMConfig{Endpoint: server.URL, Deployment: "d", APIKey: "k"})
			require.NoError(t, err)

			_, err = svc.Summarise(context.Background(), "content", 100)
			require.Error(t, err)
			if tt.transient {
				assert.ErrorIs(t, err, domain.ErrTransient)
			} else {
				assert.NotErrorIs(t, err, domain.ErrTransient)
			}
		})
	}
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/text-embedding-3-small/embeddings", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("api-key"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"section content"}, req.Input)

		fmt.Fprint(w, `{"data": [{"embedding": [0.25, -0.5, 1.0], "index": 0}]}`)
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(EmbeddingConfig{
		Endpoint:   server.URL,
		Deployment: "text-embedding-3-small",
		APIKey:     "key-123",
		Dimensions: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, svc.Dimensions())

	vector, err := svc.Embed(context.Background(), "section content")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 1.0}, vector)
}

func TestEmbed_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(EmbeddingConfig{Endpoint: server.URL, Deployment: "d", APIKey: "k"})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "content")
	assert.ErrorContains(t, err, "no embedding returned")
}

func TestEmbed_TransientStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, err := NewEmbeddingService(EmbeddingConfig{Endpoint: server.URL, Deployment: "d", APIKey: "k"})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "content")
	assert.ErrorIs(t, err, domain.ErrTransient)
}
