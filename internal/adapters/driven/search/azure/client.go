// Package azure provides a SearchIndex adapter for the Azure AI Search
// documents API.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.SearchIndex = (*Client)(nil)

// Default configuration values.
const (
	DefaultAPIVersion = "2024-07-01"
	DefaultTimeout    = 60 * time.Second

	// maxBatchSize is the Azure AI Search limit on documents per
	// indexing request.
	maxBatchSize = 1000
)

// Config holds configuration for the Azure AI Search client.
type Config struct {
	// Endpoint is the search service URL, e.g.
	// https://myservice.search.windows.net (required).
	Endpoint string

	// IndexName is the target index (required).
	IndexName string

	// APIKey is the admin or index API key (required).
	APIKey string

	// APIVersion selects the REST API version (default: 2024-07-01).
	APIVersion string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Client submits index records to Azure AI Search.
type Client struct {
	client     *http.Client
	endpoint   string
	indexName  string
	apiKey     string
	apiVersion string
}

// indexBatchResponse is the documents-index response format.
type indexBatchResponse struct {
	Value []struct {
		Key          string `json:"key"`
		Status       bool   `json:"status"`
		ErrorMessage string `json:"errorMessage"`
		StatusCode   int    `json:"statusCode"`
	} `json:"value"`
}

// NewClient creates a new Azure AI Search client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure search: endpoint is required")
	}
	if cfg.IndexName == "" {
		return nil, fmt.Errorf("azure search: index name is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("azure search: API key is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:   cfg.Endpoint,
		indexName:  cfg.IndexName,
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
	}, nil
}

// Upsert submits records in batches of at most maxBatchSize, using the
// mergeOrUpload action so re-indexing overwrites rather than duplicates.
func (c *Client) Upsert(ctx context.Context, records []domain.IndexRecord) ([]driven.UpsertResult, error) {
	results := make([]driven.UpsertResult, 0, len(records))

	for start := 0; start < len(records); start += maxBatchSize {
		end := min(start+maxBatchSize, len(records))

		actions := make([]map[string]any, 0, end-start)
		for _, record := range records[start:end] {
			action, err := recordAction(record, "mergeOrUpload")
			if err != nil {
				return nil, fmt.Errorf("encode record %s: %w", record.ID, err)
			}
			actions = append(actions, action)
		}

		batch, err := c.submitBatch(ctx, actions)
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}

	return results, nil
}

// Delete removes records by ID.
func (c *Client) Delete(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += maxBatchSize {
		end := min(start+maxBatchSize, len(ids))

		actions := make([]map[string]any, 0, end-start)
		for _, id := range ids[start:end] {
			actions = append(actions, map[string]any{
				"@search.action": "delete",
				"id":             id,
			})
		}

		results, err := c.submitBatch(ctx, actions)
		if err != nil {
			return err
		}
		for _, r := range results {
			if !r.Succeeded {
				return fmt.Errorf("delete record %s: %s", r.ID, r.Message)
			}
		}
	}
	return nil
}

// submitBatch posts one documents-index request and decodes the
// per-document results.
func (c *Client) submitBatch(ctx context.Context, actions []map[string]any) ([]driven.UpsertResult, error) {
	body, err := json.Marshal(map[string]any{"value": actions})
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	endpoint := fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s",
		c.endpoint, url.PathEscape(c.indexName), url.QueryEscape(c.apiVersion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %v: %w", err, domain.ErrTransient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// 207 means the batch was accepted but some documents failed; the
	// per-document status carries the detail either way.
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusMultiStatus:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("azure search status %d: %w", resp.StatusCode, domain.ErrTransient)
	default:
		return nil, fmt.Errorf("azure search status %d: %s", resp.StatusCode, truncateBody(respBody))
	}

	var batch indexBatchResponse
	if err := json.Unmarshal(respBody, &batch); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]driven.UpsertResult, len(batch.Value))
	for i, v := range batch.Value {
		results[i] = driven.UpsertResult{
			ID:        v.Key,
			Succeeded: v.Status,
			Message:   v.ErrorMessage,
		}
	}
	return results, nil
}

// recordAction flattens a record into a documents-index action.
func recordAction(record domain.IndexRecord, action string) (map[string]any, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	fields["@search.action"] = action
	return fields, nil
}

// truncateBody bounds error payloads quoted in messages.
func truncateBody(body []byte) string {
	const max = 300
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// Close releases resources.
func (c *Client) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
