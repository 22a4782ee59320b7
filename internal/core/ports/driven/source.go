package driven

import (
	"context"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
)

// PageSource fetches raw pages from the wiki content service.
type PageSource interface {
	// FetchPage retrieves one page with its body, version, and URL.
	// Returns domain.ErrNotFound for unknown IDs and wraps retryable
	// transport failures with domain.ErrTransient.
	FetchPage(ctx context.Context, pageID string) (*domain.RawPage, error)

	// FetchSpacePageIDs lists the IDs of all pages in a space.
	FetchSpacePageIDs(ctx context.Context, spaceKey string) ([]string, error)

	// Close releases resources.
	Close() error
}
