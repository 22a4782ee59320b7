package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driving"
	"github.com/custodia-labs/brdingest-cli/internal/logger"
	"github.com/custodia-labs/brdingest-cli/internal/parser"
)

// Ensure Processor implements the interface.
var _ driving.Processor = (*Processor)(nil)

// Default processing limits.
const (
	// DefaultWorkers bounds concurrent page processing in space and
	// run modes.
	DefaultWorkers = 4

	// DefaultRequestsPerSecond paces calls to external collaborators.
	DefaultRequestsPerSecond = 5.0

	// DefaultSummaryMaxTokens bounds generated summaries.
	DefaultSummaryMaxTokens = 500

	// DefaultAIMaxChars truncates content handed to the AI services to
	// keep token usage bounded.
	DefaultAIMaxChars = 8000
)

// Options configures a Processor.
type Options struct {
	// Summarise enables whole-document summaries via the LLM service.
	Summarise bool

	// Vectorise enables embeddings via the embedding service.
	Vectorise bool

	// EmbedSections extends embedding to section records. The
	// whole-document record is always embedded when Vectorise is set.
	EmbedSections bool

	// Force bypasses the change-detection skip.
	Force bool

	// DryRun exercises the full pipeline but submits nothing to the
	// index and commits nothing to the cache.
	DryRun bool

	// Workers bounds pool size for multi-page runs.
	Workers int

	// MaxAttempts bounds retries of transient collaborator failures.
	MaxAttempts int

	// RequestsPerSecond paces external calls.
	RequestsPerSecond float64

	// SummaryMaxTokens bounds summary generation.
	SummaryMaxTokens int
}

// Processor coordinates the ingest pipeline. External collaborators are
// injected through driven ports; the LLM and embedding services may be
// nil, in which case the corresponding record fields are omitted.
type Processor struct {
	source   driven.PageSource
	index    driven.SearchIndex
	cache    driven.FingerprintStore
	pages    driven.PageConfigStore
	llm      driven.LLMService
	embedder driven.EmbeddingService

	opts    Options
	limiter *rate.Limiter
}

// NewProcessor creates a processor. source, index, and cache are
// required; pages is required only for ProcessConfigured; llm and
// embedder are optional.
func NewProcessor(
	source driven.PageSource,
	index driven.SearchIndex,
	cache driven.FingerprintStore,
	pages driven.PageConfigStore,
	llm driven.LLMService,
	embedder driven.EmbeddingService,
	opts Options,
) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if opts.SummaryMaxTokens <= 0 {
		opts.SummaryMaxTokens = DefaultSummaryMaxTokens
	}

	return &Processor{
		source:   source,
		index:    index,
		cache:    cache,
		pages:    pages,
		llm:      llm,
		embedder: embedder,
		opts:     opts,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Workers),
	}
}

// ProcessPage ingests one page end to end.
func (p *Processor) ProcessPage(ctx context.Context, pageID string) (*driving.PageResult, error) {
	res := p.processOne(ctx, pageID)
	if res.Err != nil {
		return res, res.Err
	}
	return res, nil
}

// ProcessSpace ingests every page of a space through the worker pool.
func (p *Processor) ProcessSpace(ctx context.Context, spaceKey string) (*driving.RunReport, error) {
	ids, err := p.fetchSpaceIDs(ctx, spaceKey)
	if err != nil {
		return nil, fmt.Errorf("list space %s: %w", spaceKey, err)
	}
	logger.Info("Space %s has %d pages", spaceKey, len(ids))
	return p.processMany(ctx, ids), nil
}

// ProcessConfigured ingests all enabled configured pages and spaces.
func (p *Processor) ProcessConfigured(ctx context.Context) (*driving.RunReport, error) {
	if p.pages == nil {
		return nil, fmt.Errorf("process configured: page configuration not available")
	}

	var ids []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, page := range p.pages.Pages() {
		if page.Enabled {
			add(page.ID)
		}
	}
	for _, space := range p.pages.Spaces() {
		if !space.Enabled {
			continue
		}
		spaceIDs, err := p.fetchSpaceIDs(ctx, space.Key)
		if err != nil {
			// A dead space must not sink the whole run.
			logger.Warn("Skipping space %s: %v", space.Key, err)
			continue
		}
		for _, id := range spaceIDs {
			add(id)
		}
	}

	logger.Info("Processing %d configured pages", len(ids))
	return p.processMany(ctx, ids), nil
}

// processMany fans page IDs out over the worker pool. Stops scheduling
// on context cancellation; in-flight pages finish.
func (p *Processor) processMany(ctx context.Context, ids []string) *driving.RunReport {
	report := &driving.RunReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	work := make(chan string)
	results := make(chan driving.PageResult)

	var wg sync.WaitGroup
	for range p.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range work {
				results <- *p.processOne(ctx, id)
			}
		}()
	}

	go func() {
		defer close(work)
		for _, id := range ids {
			select {
			case <-ctx.Done():
				return
			case work <- id:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		report.Add(res)
	}
	report.FinishedAt = time.Now()

	logger.Info("Run %s finished: %d indexed, %d skipped, %d failed",
		report.RunID, report.Indexed, report.Skipped, report.Failed)
	return report
}

// processOne runs the full pipeline for a single page. All failures are
// captured in the result; only the page fails, never the run.
func (p *Processor) processOne(ctx context.Context, pageID string) *driving.PageResult {
	fail := func(err error) *driving.PageResult {
		logger.Warn("Page %s failed: %v", pageID, err)
		return &driving.PageResult{PageID: pageID, Outcome: driving.OutcomeFailed, Err: err}
	}
	skip := func(reason string) *driving.PageResult {
		logger.Info("Page %s skipped: %s", pageID, reason)
		return &driving.PageResult{PageID: pageID, Outcome: driving.OutcomeSkipped, Reason: reason}
	}

	// 1. Fetch.
	var page *domain.RawPage
	err := withRetry(ctx, p.opts.MaxAttempts, defaultRetryDelay, "fetch page "+pageID, func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		var ferr error
		page, ferr = p.source.FetchPage(ctx, pageID)
		return ferr
	})
	if err != nil {
		return fail(fmt.Errorf("fetch page: %w", err))
	}

	// 2. Parse.
	doc, err := parser.ParsePage(*page)
	if err != nil {
		return fail(fmt.Errorf("parse page: %w", err))
	}
	logger.Debug("Page %s parsed: %s, %d sections", pageID, doc.Metadata.DocumentID, len(doc.AllSections()))

	// 3. Status gate.
	if !doc.Metadata.IsIndexable() {
		return skip("status " + doc.Metadata.Status)
	}

	// 4. Change detection. Cache trouble fails open to processing:
	// reprocessing is cheaper than wrongly skipping a requested page.
	process, err := p.cache.ShouldProcess(ctx, pageID, page.Version, doc.Fingerprint, p.opts.Force)
	if err != nil {
		logger.Warn("Cache lookup for page %s failed, processing anyway: %v", pageID, err)
		process = true
	}
	if !process {
		return skip("unchanged")
	}

	// 5. Optional AI enrichment. Failures are logged and the field
	// omitted; the base records still index.
	p.enrich(ctx, doc)
	records := BuildRecords(doc)
	p.embedRecords(ctx, records)

	// 6. Submit.
	if p.opts.DryRun {
		logger.Info("Dry run: would index %d records for page %s", len(records), pageID)
		return &driving.PageResult{PageID: pageID, Outcome: driving.OutcomeIndexed, Records: len(records), Reason: "dry-run"}
	}

	if err := p.submit(ctx, records); err != nil {
		return fail(err)
	}

	// 7. Commit the cache only after every record is in the index, so
	// a partial failure retries the whole page next run.
	entry := domain.CacheEntry{
		SourceID:      pageID,
		LastVersion:   page.Version,
		Fingerprint:   doc.Fingerprint,
		LastIndexedAt: time.Now().UTC(),
	}
	if err := p.cache.Commit(ctx, entry); err != nil {
		return fail(fmt.Errorf("commit cache: %w", err))
	}

	logger.Info("Page %s indexed: %d records", pageID, len(records))
	return &driving.PageResult{PageID: pageID, Outcome: driving.OutcomeIndexed, Records: len(records)}
}

// enrich attaches the optional whole-document summary.
func (p *Processor) enrich(ctx context.Context, doc *domain.Document) {
	if !p.opts.Summarise || p.llm == nil {
		return
	}

	content := truncateForAI(doc.FullContent)
	err := withRetry(ctx, p.opts.MaxAttempts, defaultRetryDelay, "summarise", func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		summary, serr := p.llm.Summarise(ctx, content, p.opts.SummaryMaxTokens)
		if serr != nil {
			return serr
		}
		doc.Summary = summary
		return nil
	})
	if err != nil {
		logger.Warn("Summarisation failed for page %s, omitting summary: %v", doc.Page.SourceID, err)
	}
}

// embedRecords attaches vectors to records in place. Scope is the
// whole-document record, plus section records when configured.
func (p *Processor) embedRecords(ctx context.Context, records []domain.IndexRecord) {
	if !p.opts.Vectorise || p.embedder == nil {
		return
	}

	for i := range records {
		if records[i].IsSection && !p.opts.EmbedSections {
			continue
		}
		if records[i].Content == "" {
			continue
		}

		content := truncateForAI(records[i].Content)
		err := withRetry(ctx, p.opts.MaxAttempts, defaultRetryDelay, "embed "+records[i].ID, func() error {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
			vector, eerr := p.embedder.Embed(ctx, content)
			if eerr != nil {
				return eerr
			}
			records[i].Vector = vector
			return nil
		})
		if err != nil {
			logger.Warn("Embedding failed for record %s, omitting vector: %v", records[i].ID, err)
		}
	}
}

// submit upserts all records and verifies per-record acceptance.
func (p *Processor) submit(ctx context.Context, records []domain.IndexRecord) error {
	var results []driven.UpsertResult
	err := withRetry(ctx, p.opts.MaxAttempts, defaultRetryDelay, "index upsert", func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		var uerr error
		results, uerr = p.index.Upsert(ctx, records)
		return uerr
	})
	if err != nil {
		return fmt.Errorf("index upsert: %w", err)
	}

	var rejected []string
	for _, r := range results {
		if !r.Succeeded {
			rejected = append(rejected, fmt.Sprintf("%s (%s)", r.ID, r.Message))
		}
	}
	if len(rejected) > 0 {
		return fmt.Errorf("index rejected %d of %d records: %s",
			len(rejected), len(records), strings.Join(rejected, "; "))
	}
	return nil
}

// fetchSpaceIDs lists a space with retry and pacing.
func (p *Processor) fetchSpaceIDs(ctx context.Context, spaceKey string) ([]string, error) {
	var ids []string
	err := withRetry(ctx, p.opts.MaxAttempts, defaultRetryDelay, "list space "+spaceKey, func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		var lerr error
		ids, lerr = p.source.FetchSpacePageIDs(ctx, spaceKey)
		return lerr
	})
	return ids, err
}

// truncateForAI bounds content handed to AI collaborators.
func truncateForAI(content string) string {
	if len(content) <= DefaultAIMaxChars {
		return content
	}
	return content[:DefaultAIMaxChars]
}
