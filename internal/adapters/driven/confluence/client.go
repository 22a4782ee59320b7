// Package confluence provides a PageSource adapter for the Confluence REST API.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.PageSource = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// spacePageLimit is the page size for space listing requests.
	spacePageLimit = 100
)

// Config holds configuration for the Confluence client.
type Config struct {
	// BaseURL is the Confluence site root, e.g.
	// https://example.atlassian.net/wiki (required).
	BaseURL string

	// Username is the account email for basic authentication.
	Username string

	// APIToken is the API token paired with Username (required).
	APIToken string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client fetches pages from the Confluence REST API.
type Client struct {
	client  *http.Client
	baseURL string
	user    string
	token   string
}

// contentResponse is the Confluence content-by-id response format.
type contentResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Version struct {
		Number int `json:"number"`
	} `json:"version"`
	Links struct {
		WebUI string `json:"webui"`
		Base  string `json:"base"`
	} `json:"_links"`
}

// contentListResponse is the Confluence content-search response format.
type contentListResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
	Size  int `json:"size"`
	Limit int `json:"limit"`
}

// NewClient creates a new Confluence client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("confluence: base URL is required")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("confluence: API token is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		user:    cfg.Username,
		token:   cfg.APIToken,
	}, nil
}

// FetchPage retrieves one page with its storage-format body and version.
func (c *Client) FetchPage(ctx context.Context, pageID string) (*domain.RawPage, error) {
	if err := parsePageID(pageID); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/rest/api/content/%s?expand=body.storage,version", c.baseURL, url.PathEscape(pageID))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", pageID, err)
	}

	var content contentResponse
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("decode page %s: %w", pageID, err)
	}

	pageURL := content.Links.WebUI
	if pageURL != "" {
		base := content.Links.Base
		if base == "" {
			base = c.baseURL
		}
		pageURL = base + pageURL
	}

	return &domain.RawPage{
		SourceID: content.ID,
		Title:    content.Title,
		Version:  content.Version.Number,
		Body:     content.Body.Storage.Value,
		URL:      pageURL,
	}, nil
}

// FetchSpacePageIDs lists the IDs of all pages in a space, following
// pagination until the API returns a short batch.
func (c *Client) FetchSpacePageIDs(ctx context.Context, spaceKey string) ([]string, error) {
	var ids []string
	for start := 0; ; start += spacePageLimit {
		endpoint := fmt.Sprintf("%s/rest/api/content?spaceKey=%s&type=page&limit=%d&start=%d",
			c.baseURL, url.QueryEscape(spaceKey), spacePageLimit, start)

		body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("list space %s: %w", spaceKey, err)
		}

		var list contentListResponse
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode space %s listing: %w", spaceKey, err)
		}

		for _, result := range list.Results {
			ids = append(ids, result.ID)
		}
		if list.Size < spacePageLimit {
			break
		}
	}
	return ids, nil
}

// get performs an authenticated GET and maps HTTP failures onto the
// domain error taxonomy.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.token)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport failures are worth a retry.
		return nil, fmt.Errorf("send request: %v: %w", err, domain.ErrTransient)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("confluence status %d: %w", resp.StatusCode, domain.ErrTransient)
	default:
		return nil, fmt.Errorf("confluence status %d: %s", resp.StatusCode, truncateBody(body))
	}
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

// parsePageID validates that a page ID is numeric, as Confluence content
// IDs are. Keeps obviously malformed input out of request paths.
func parsePageID(id string) error {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return fmt.Errorf("page id %q: %w", id, domain.ErrInvalidInput)
	}
	return nil
}
