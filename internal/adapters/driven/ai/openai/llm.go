// Package openai provides LLM and embedding service adapters for the
// Azure OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultAPIVersion = "2024-06-01"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Azure OpenAI LLM service.
type LLMConfig struct {
	// Endpoint is the Azure OpenAI resource URL, e.g.
	// https://myresource.openai.azure.com (required).
	Endpoint string

	// Deployment is the chat model deployment name (required).
	Deployment string

	// APIKey is the resource API key (required).
	APIKey string

	// APIVersion selects the REST API version (default: 2024-06-01).
	APIVersion string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService generates document summaries using Azure OpenAI.
type LLMService struct {
	client     *http.Client
	endpoint   string
	deployment string
	apiKey     string
	apiVersion string
}

// chatCompletionRequest is the chat completions request format.
type chatCompletionRequest struct {
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the chat completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// summarisePrompt frames the summarisation request. Business requirement
// documents are dense with tables, so the prompt asks for searchable prose.
const summarisePrompt = `Summarise the following business requirements document in 2-3 sentences.
Name the system or project, its purpose, and the main capabilities it requires.
Write plain prose suitable for a search result snippet.

Document:
%s

Summary:`

// NewLLMService creates a new Azure OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure openai: endpoint is required")
	}
	if cfg.Deployment == "" {
		return nil, fmt.Errorf("azure openai: deployment is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("azure openai: API key is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:   cfg.Endpoint,
		deployment: cfg.Deployment,
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
	}, nil
}

// Summarise creates a summary of document content, bounded by maxTokens.
func (s *LLMService) Summarise(ctx context.Context, content string, maxTokens int) (string, error) {
	reqBody := chatCompletionRequest{
		Messages: []chatCompletionMsg{
			{Role: "user", Content: fmt.Sprintf(summarisePrompt, content)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		s.endpoint, url.PathEscape(s.deployment), url.QueryEscape(s.apiVersion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %v: %w", err, domain.ErrTransient)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("azure openai status %d: %w", resp.StatusCode, domain.ErrTransient)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("azure openai error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("azure openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("azure openai: no response choices returned")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
