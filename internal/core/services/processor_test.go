package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driving"
)

// --- fakes -----------------------------------------------------------------

type fakeSource struct {
	mu     sync.Mutex
	pages  map[string]domain.RawPage
	spaces map[string][]string
	fetchN int
}

func (f *fakeSource) FetchPage(_ context.Context, pageID string) (*domain.RawPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchN++
	page, ok := f.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", pageID, domain.ErrNotFound)
	}
	return &page, nil
}

func (f *fakeSource) FetchSpacePageIDs(_ context.Context, spaceKey string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids, ok := f.spaces[spaceKey]
	if !ok {
		return nil, fmt.Errorf("space %s: %w", spaceKey, domain.ErrNotFound)
	}
	return ids, nil
}

func (f *fakeSource) Close() error { return nil }

type fakeIndex struct {
	mu        sync.Mutex
	upserts   [][]domain.IndexRecord
	rejectID  string
	failTimes int
}

func (f *fakeIndex) Upsert(_ context.Context, records []domain.IndexRecord) ([]driven.UpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTimes > 0 {
		f.failTimes--
		return nil, fmt.Errorf("search service unavailable: %w", domain.ErrTransient)
	}
	f.upserts = append(f.upserts, records)
	results := make([]driven.UpsertResult, len(records))
	for i, r := range records {
		results[i] = driven.UpsertResult{ID: r.ID, Succeeded: r.ID != f.rejectID}
		if r.ID == f.rejectID {
			results[i].Message = "schema mismatch"
		}
	}
	return results, nil
}

func (f *fakeIndex) Delete(context.Context, []string) error { return nil }

func (f *fakeIndex) Close() error { return nil }

func (f *fakeIndex) records() []domain.IndexRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.IndexRecord
	for _, batch := range f.upserts {
		all = append(all, batch...)
	}
	return all
}

type fakeCache struct {
	mu        sync.Mutex
	entries   map[string]domain.CacheEntry
	lookupErr error
}

func (f *fakeCache) Lookup(_ context.Context, sourceID string) (*domain.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[sourceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (f *fakeCache) ShouldProcess(_ context.Context, sourceID string, version int, fingerprint string, force bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	if force {
		return true, nil
	}
	entry, ok := f.entries[sourceID]
	if !ok {
		return true, nil
	}
	if entry.LastVersion == version && entry.Fingerprint == fingerprint {
		return false, nil
	}
	return true, nil
}

func (f *fakeCache) Commit(_ context.Context, entry domain.CacheEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = make(map[string]domain.CacheEntry)
	}
	f.entries[entry.SourceID] = entry
	return nil
}

func (f *fakeCache) Clear(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.entries)
	f.entries = nil
	return n, nil
}

func (f *fakeCache) Status(context.Context) (*driven.CacheStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &driven.CacheStatus{Entries: len(f.entries)}, nil
}

func (f *fakeCache) Close() error { return nil }

type fakePageConfig struct {
	pages  []driven.ConfiguredPage
	spaces []driven.ConfiguredSpace
}

func (f *fakePageConfig) Pages() []driven.ConfiguredPage { return f.pages }

func (f *fakePageConfig) Spaces() []driven.ConfiguredSpace { return f.spaces }

func (f *fakePageConfig) AddPage(string, string) error { return nil }

func (f *fakePageConfig) RemovePage(string) error { return nil }

func (f *fakePageConfig) SetPageEnabled(string, bool) error { return nil }

type fakeLLM struct {
	summary string
	err     error
}

func (f *fakeLLM) Summarise(context.Context, string, int) (string, error) {
	return f.summary, f.err
}

func (f *fakeLLM) Close() error { return nil }

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

func (f *fakeEmbedder) Close() error { return nil }

// --- fixtures --------------------------------------------------------------

const testBody = `
<table>
  <tbody>
    <tr><th>Document Control</th><th></th></tr>
    <tr><td>Document ID</td><td>ABRD-HRMS-2025-1.0</td></tr>
    <tr><td>Version</td><td>1.2</td></tr>
    <tr><td>Status</td><td>APPROVED</td></tr>
    <tr><td>Owner</td><td>Dana Whitfield</td></tr>
  </tbody>
</table>
<h1>1. Introduction</h1>
<p>The payroll platform replaces the legacy system.</p>
<h1>2. Functional Requirements</h1>
<h2>2.1 Onboarding</h2>
<p>FR-001 New hires must receive credentials within one day.</p>
<h2>2.2 Offboarding</h2>
<p>FR-002 Access must be revoked on the leaving date. See also PR-003.</p>
`

func testPage(id string, version int) domain.RawPage {
	return domain.RawPage{
		SourceID: id,
		Title:    "HRMS Payroll ABRD",
		Version:  version,
		Body:     testBody,
		URL:      "https://wiki.example.com/pages/" + id,
	}
}

type testDeps struct {
	source *fakeSource
	index  *fakeIndex
	cache  *fakeCache
	pages  *fakePageConfig
}

func newTestDeps() *testDeps {
	return &testDeps{
		source: &fakeSource{pages: map[string]domain.RawPage{
			"1001": testPage("1001", 3),
		}},
		index: &fakeIndex{},
		cache: &fakeCache{},
		pages: &fakePageConfig{},
	}
}

func (d *testDeps) processor(opts Options) *Processor {
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 1000 // keep tests fast
	}
	return NewProcessor(d.source, d.index, d.cache, d.pages, nil, nil, opts)
}

// --- tests -----------------------------------------------------------------

func TestProcessPage_IndexesDocumentAndSections(t *testing.T) {
	deps := newTestDeps()
	p := deps.processor(Options{})

	res, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeIndexed, res.Outcome)

	records := deps.index.records()
	// Whole document plus four sections (1, 2, 2.1, 2.2).
	require.Len(t, records, 5)

	full := records[0]
	assert.Equal(t, "1001_v3_full", full.ID)
	assert.False(t, full.IsSection)
	assert.Equal(t, domain.TypeABRD, full.DocumentType)
	assert.Equal(t, "HRMS", full.ProjectCode)
	assert.Equal(t, []string{"FR-001", "FR-002", "PR-003"}, full.RequirementIDs)

	assert.Equal(t, "1001_v3_section_2_1", records[3].ID)
	assert.Equal(t, []string{"FR-001"}, records[3].RequirementIDs)

	// Cache committed only after successful submission.
	entry, err := deps.cache.Lookup(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, 3, entry.LastVersion)
	assert.NotEmpty(t, entry.Fingerprint)
	assert.WithinDuration(t, time.Now(), entry.LastIndexedAt, time.Minute)
}

func TestProcessPage_SkipsUnchangedOnSecondRun(t *testing.T) {
	deps := newTestDeps()
	p := deps.processor(Options{})

	_, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	require.Len(t, deps.index.upserts, 1)

	res, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeSkipped, res.Outcome)
	assert.Equal(t, "unchanged", res.Reason)
	assert.Len(t, deps.index.upserts, 1)
}

func TestProcessPage_ForceBypassesCache(t *testing.T) {
	deps := newTestDeps()

	_, err := deps.processor(Options{}).ProcessPage(context.Background(), "1001")
	require.NoError(t, err)

	res, err := deps.processor(Options{Force: true}).ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeIndexed, res.Outcome)
	assert.Len(t, deps.index.upserts, 2)
}

func TestProcessPage_ChangedBodySameVersionReprocesses(t *testing.T) {
	deps := newTestDeps()
	p := deps.processor(Options{})

	_, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)

	// Fake a stale cache entry: same version, different fingerprint.
	// This models a wiki that edits content without bumping the
	// version number.
	deps.cache.mu.Lock()
	entry := deps.cache.entries["1001"]
	entry.Fingerprint = "deadbeef"
	deps.cache.entries["1001"] = entry
	deps.cache.mu.Unlock()

	res, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeIndexed, res.Outcome)
	assert.Len(t, deps.index.upserts, 2)
}

func TestProcessPage_CacheLookupFailureProcessesAnyway(t *testing.T) {
	deps := newTestDeps()
	deps.cache.lookupErr = fmt.Errorf("database locked")
	p := deps.processor(Options{})

	res, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeIndexed, res.Outcome)
	assert.Len(t, deps.index.upserts, 1)
}

func TestProcessPage_RejectedRecordFailsWithoutCommit(t *testing.T) {
	deps := newTestDeps()
	deps.index.rejectID = "1001_v3_section_2_2"
	p := deps.processor(Options{})

	res, err := p.ProcessPage(context.Background(), "1001")
	require.Error(t, err)
	assert.Equal(t, driving.OutcomeFailed, res.Outcome)
	assert.ErrorContains(t, err, "1001_v3_section_2_2")

	// No commit on partial failure: the next run retries the page.
	_, err = deps.cache.Lookup(context.Background(), "1001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessPage_RetriesTransientUpsert(t *testing.T) {
	deps := newTestDeps()
	deps.index.failTimes = 1
	p := deps.processor(Options{})

	res, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeIndexed, res.Outcome)
	assert.Len(t, deps.index.upserts, 1)
}

func TestProcessPage_DryRunSubmitsNothing(t *testing.T) {
	deps := newTestDeps()
	p := deps.processor(Options{DryRun: true})

	res, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeIndexed, res.Outcome)
	assert.Equal(t, 5, res.Records)
	assert.Equal(t, "dry-run", res.Reason)

	assert.Empty(t, deps.index.upserts)
	_, err = deps.cache.Lookup(context.Background(), "1001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessPage_StatusGateSkips(t *testing.T) {
	deps := newTestDeps()
	page := deps.source.pages["1001"]
	page.Body = `
<table><tbody>
  <tr><td>Document ID</td><td>ABRD-HRMS-2025-1.0</td></tr>
  <tr><td>Status</td><td>SUPERSEDED</td></tr>
</tbody></table>
<h1>1. Introduction</h1>
<p>Old content.</p>`
	deps.source.pages["1001"] = page
	p := deps.processor(Options{})

	res, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeSkipped, res.Outcome)
	assert.Equal(t, "status SUPERSEDED", res.Reason)
	assert.Empty(t, deps.index.upserts)
}

func TestProcessPage_UnknownPageFails(t *testing.T) {
	deps := newTestDeps()
	p := deps.processor(Options{})

	res, err := p.ProcessPage(context.Background(), "9999")
	require.Error(t, err)
	assert.Equal(t, driving.OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessPage_SummaryAttachedToDocumentRecordOnly(t *testing.T) {
	deps := newTestDeps()
	llm := &fakeLLM{summary: "Payroll platform requirements."}
	p := NewProcessor(deps.source, deps.index, deps.cache, deps.pages, llm, nil,
		Options{Summarise: true, RequestsPerSecond: 1000})

	_, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)

	records := deps.index.records()
	require.NotEmpty(t, records)
	assert.Equal(t, "Payroll platform requirements.", records[0].Summary)
	for _, rec := range records[1:] {
		assert.Empty(t, rec.Summary)
	}
}

func TestProcessPage_SummaryFailureStillIndexes(t *testing.T) {
	deps := newTestDeps()
	llm := &fakeLLM{err: fmt.Errorf("model overloaded")}
	p := NewProcessor(deps.source, deps.index, deps.cache, deps.pages, llm, nil,
		Options{Summarise: true, RequestsPerSecond: 1000})

	res, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeIndexed, res.Outcome)

	records := deps.index.records()
	require.NotEmpty(t, records)
	assert.Empty(t, records[0].Summary)
}

func TestProcessPage_EmbeddingScope(t *testing.T) {
	deps := newTestDeps()
	p := NewProcessor(deps.source, deps.index, deps.cache, deps.pages, nil, &fakeEmbedder{},
		Options{Vectorise: true, RequestsPerSecond: 1000})

	_, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)

	records := deps.index.records()
	require.NotEmpty(t, records)
	assert.NotEmpty(t, records[0].Vector)
	for _, rec := range records[1:] {
		assert.Empty(t, rec.Vector, "section records are not embedded unless configured")
	}
}

func TestProcessPage_EmbeddingFailureStillIndexes(t *testing.T) {
	deps := newTestDeps()
	embedder := &fakeEmbedder{err: fmt.Errorf("quota exceeded")}
	p := NewProcessor(deps.source, deps.index, deps.cache, deps.pages, nil, embedder,
		Options{Vectorise: true, RequestsPerSecond: 1000})

	res, err := p.ProcessPage(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeIndexed, res.Outcome)
	assert.Empty(t, deps.index.records()[0].Vector)
}

func TestProcessSpace_CollectsPerPageOutcomes(t *testing.T) {
	deps := newTestDeps()
	deps.source.pages["1002"] = testPage("1002", 1)
	deps.source.spaces = map[string][]string{
		"HRMS": {"1001", "1002", "9999"},
	}
	p := deps.processor(Options{Workers: 2})

	report, err := p.ProcessSpace(context.Background(), "HRMS")
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Indexed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Pages, 3)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestProcessSpace_UnknownSpaceErrors(t *testing.T) {
	deps := newTestDeps()
	deps.source.spaces = map[string][]string{}
	p := deps.processor(Options{})

	_, err := p.ProcessSpace(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessConfigured_OnlyEnabledAndDeduplicated(t *testing.T) {
	deps := newTestDeps()
	deps.source.pages["1002"] = testPage("1002", 1)
	deps.source.spaces = map[string][]string{
		"HRMS": {"1001", "1002"}, // 1001 also configured directly
	}
	deps.pages.pages = []driven.ConfiguredPage{
		{ID: "1001", Name: "Payroll ABRD", Enabled: true},
		{ID: "1003", Name: "Retired doc", Enabled: false},
	}
	deps.pages.spaces = []driven.ConfiguredSpace{
		{Key: "HRMS", Name: "HR space", Enabled: true},
		{Key: "ORD", Name: "Orders space", Enabled: false},
	}
	p := deps.processor(Options{Workers: 2})

	report, err := p.ProcessConfigured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Indexed)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, report.Pages, 2)
}

func TestProcessConfigured_DeadSpaceDoesNotAbortRun(t *testing.T) {
	deps := newTestDeps()
	deps.source.spaces = map[string][]string{}
	deps.pages.pages = []driven.ConfiguredPage{{ID: "1001", Enabled: true}}
	deps.pages.spaces = []driven.ConfiguredSpace{{Key: "GONE", Enabled: true}}
	p := deps.processor(Options{})

	report, err := p.ProcessConfigured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 0, report.Failed)
}

func TestProcessMany_CancelledContextStopsScheduling(t *testing.T) {
	deps := newTestDeps()
	deps.source.spaces = map[string][]string{"HRMS": {"1001", "1001", "1001"}}
	p := deps.processor(Options{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.ProcessSpace(ctx, "HRMS")
	require.NoError(t, err)
	// No new pages were scheduled after cancellation.
	assert.LessOrEqual(t, len(report.Pages), 1)
}
