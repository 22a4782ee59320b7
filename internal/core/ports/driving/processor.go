// Package driving defines the interfaces through which the outside
// world drives the core (primary ports). The CLI adapter calls these.
package driving

import (
	"context"
	"time"
)

// Processor runs the ingest pipeline.
type Processor interface {
	// ProcessPage ingests a single page. Skips (unchanged content,
	// non-indexable status) are reported in the result, not as errors.
	ProcessPage(ctx context.Context, pageID string) (*PageResult, error)

	// ProcessSpace ingests every page of a space.
	ProcessSpace(ctx context.Context, spaceKey string) (*RunReport, error)

	// ProcessConfigured ingests all enabled configured pages and
	// spaces.
	ProcessConfigured(ctx context.Context) (*RunReport, error)
}

// PageOutcome classifies what happened to one page.
type PageOutcome string

const (
	// OutcomeIndexed means records were submitted (or would have been,
	// under dry-run).
	OutcomeIndexed PageOutcome = "indexed"

	// OutcomeSkipped means the cache or status gate decided no work
	// was needed.
	OutcomeSkipped PageOutcome = "skipped"

	// OutcomeFailed means the page could not be processed.
	OutcomeFailed PageOutcome = "failed"
)

// PageResult describes the outcome for one page.
type PageResult struct {
	PageID  string
	Outcome PageOutcome

	// Records is how many index records were produced.
	Records int

	// Reason explains a skip ("unchanged", "status Superseded").
	Reason string

	// Err holds the failure for OutcomeFailed.
	Err error
}

// RunReport aggregates a multi-page invocation. Per-page failures never
// abort the run; they are collected here.
type RunReport struct {
	// RunID identifies the invocation in logs.
	RunID string

	StartedAt  time.Time
	FinishedAt time.Time

	Indexed int
	Skipped int
	Failed  int

	// Pages holds every per-page result in completion order.
	Pages []PageResult
}

// Add folds one page result into the report tallies.
func (r *RunReport) Add(res PageResult) {
	r.Pages = append(r.Pages, res)
	switch res.Outcome {
	case OutcomeIndexed:
		r.Indexed++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}
