package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brdingest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driving"
)

// mockProcessor implements driving.Processor for testing.
type mockProcessor struct {
	pageResult *driving.PageResult
	report     *driving.RunReport
	err        error
}

func (m *mockProcessor) ProcessPage(_ context.Context, pageID string) (*driving.PageResult, error) {
	if m.err != nil {
		return &driving.PageResult{PageID: pageID, Outcome: driving.OutcomeFailed, Err: m.err}, m.err
	}
	return m.pageResult, nil
}

func (m *mockProcessor) ProcessSpace(context.Context, string) (*driving.RunReport, error) {
	return m.report, m.err
}

func (m *mockProcessor) ProcessConfigured(context.Context) (*driving.RunReport, error) {
	return m.report, m.err
}

// mockCacheStore implements driven.FingerprintStore for testing.
type mockCacheStore struct {
	entries int
	cleared bool
}

func (m *mockCacheStore) Lookup(context.Context, string) (*domain.CacheEntry, error) {
	return nil, domain.ErrNotFound
}

func (m *mockCacheStore) ShouldProcess(context.Context, string, int, string, bool) (bool, error) {
	return true, nil
}

func (m *mockCacheStore) Commit(context.Context, domain.CacheEntry) error { return nil }

func (m *mockCacheStore) Clear(context.Context) (int, error) {
	m.cleared = true
	n := m.entries
	m.entries = 0
	return n, nil
}

func (m *mockCacheStore) Status(context.Context) (*driven.CacheStatus, error) {
	return &driven.CacheStatus{
		Entries:         m.entries,
		OldestIndexedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		NewestIndexedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		Path:            "/tmp/cache.db",
	}, nil
}

func (m *mockCacheStore) Close() error { return nil }

// mockPageStore implements driven.PageConfigStore for testing.
type mockPageStore struct {
	pages  []driven.ConfiguredPage
	spaces []driven.ConfiguredSpace
	addErr error
}

func (m *mockPageStore) Pages() []driven.ConfiguredPage { return m.pages }

func (m *mockPageStore) Spaces() []driven.ConfiguredSpace { return m.spaces }

func (m *mockPageStore) AddPage(id, name string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.pages = append(m.pages, driven.ConfiguredPage{ID: id, Name: name, Enabled: true})
	return nil
}

func (m *mockPageStore) RemovePage(id string) error {
	for i, p := range m.pages {
		if p.ID == id {
			m.pages = append(m.pages[:i], m.pages[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockPageStore) SetPageEnabled(id string, enabled bool) error {
	for i := range m.pages {
		if m.pages[i].ID == id {
			m.pages[i].Enabled = enabled
			return nil
		}
	}
	return domain.ErrNotFound
}

// execute runs the root command with injected services and captured output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldSettings := settings
	settings = &file.Settings{}
	t.Cleanup(func() {
		settings = oldSettings
		rootCmd.SetArgs(nil)
		dryRun = false
		force = false
		verboseFlag = false
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func withProcessor(t *testing.T, p driving.Processor) {
	t.Helper()
	old := processorService
	processorService = p
	t.Cleanup(func() { processorService = old })
}

func withCacheStore(t *testing.T, s driven.FingerprintStore) {
	t.Helper()
	old := cacheStore
	cacheStore = s
	t.Cleanup(func() { cacheStore = old })
}

func withPageStore(t *testing.T, s driven.PageConfigStore) {
	t.Helper()
	old := pageStore
	pageStore = s
	t.Cleanup(func() { pageStore = old })
}

func testReport(indexed, skipped, failed int) *driving.RunReport {
	report := &driving.RunReport{
		RunID:      "run-1",
		StartedAt:  time.Now(),
		FinishedAt: time.Now().Add(time.Second),
	}
	for range indexed {
		report.Add(driving.PageResult{PageID: "1001", Outcome: driving.OutcomeIndexed, Records: 4})
	}
	for range skipped {
		report.Add(driving.PageResult{PageID: "1002", Outcome: driving.OutcomeSkipped, Reason: "unchanged"})
	}
	for range failed {
		report.Add(driving.PageResult{PageID: "1003", Outcome: driving.OutcomeFailed, Err: errors.New("boom")})
	}
	return report
}

func TestVersionCmd(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "brdingest version test-version-1.0.0")
}

func TestPageCmd_Indexed(t *testing.T) {
	withProcessor(t, &mockProcessor{pageResult: &driving.PageResult{
		PageID: "1001", Outcome: driving.OutcomeIndexed, Records: 4,
	}})

	out, err := execute(t, "page", "1001")
	assert.NoError(t, err)
	assert.Contains(t, out, "Processing page 1001")
	assert.Contains(t, out, "indexed 4 records")
}

func TestPageCmd_Skipped(t *testing.T) {
	withProcessor(t, &mockProcessor{pageResult: &driving.PageResult{
		PageID: "1001", Outcome: driving.OutcomeSkipped, Reason: "unchanged",
	}})

	out, err := execute(t, "page", "1001")
	assert.NoError(t, err)
	assert.Contains(t, out, "skipped (unchanged)")
}

func TestPageCmd_DryRun(t *testing.T) {
	withProcessor(t, &mockProcessor{pageResult: &driving.PageResult{
		PageID: "1001", Outcome: driving.OutcomeIndexed, Records: 4, Reason: "dry-run",
	}})

	out, err := execute(t, "page", "1001", "--dry-run")
	assert.NoError(t, err)
	assert.Contains(t, out, "would index 4 records")
}

func TestPageCmd_Failure(t *testing.T) {
	withProcessor(t, &mockProcessor{err: errors.New("fetch page: connection refused")})

	_, err := execute(t, "page", "1001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPageCmd_RequiresArg(t *testing.T) {
	withProcessor(t, &mockProcessor{})
	_, err := execute(t, "page")
	assert.Error(t, err)
}

func TestSpaceCmd(t *testing.T) {
	withProcessor(t, &mockProcessor{report: testReport(2, 1, 0)})

	out, err := execute(t, "space", "HRMS")
	assert.NoError(t, err)
	assert.Contains(t, out, "Processing space HRMS")
	assert.Contains(t, out, "Indexed: 2")
	assert.Contains(t, out, "Skipped: 1")
}

func TestRunCmd(t *testing.T) {
	withProcessor(t, &mockProcessor{report: testReport(3, 0, 0)})

	out, err := execute(t, "run")
	assert.NoError(t, err)
	assert.Contains(t, out, "Indexed: 3")
}

func TestRunCmd_FailuresListedAndReported(t *testing.T) {
	withProcessor(t, &mockProcessor{report: testReport(1, 0, 2)})

	out, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 page(s) failed")
	assert.Contains(t, out, "Failures:")
	assert.Contains(t, out, "1003: boom")
}

func TestPagesListCmd_Empty(t *testing.T) {
	withPageStore(t, &mockPageStore{})

	out, err := execute(t, "pages", "list")
	assert.NoError(t, err)
	assert.Contains(t, out, "No pages or spaces configured")
}

func TestPagesListCmd(t *testing.T) {
	withPageStore(t, &mockPageStore{
		pages: []driven.ConfiguredPage{
			{ID: "1001", Name: "HRMS Payroll ABRD", Enabled: true},
			{ID: "1002", Name: "Retired doc", Enabled: false},
		},
		spaces: []driven.ConfiguredSpace{
			{Key: "HRMS", Name: "HR space", Enabled: true},
		},
	})

	out, err := execute(t, "pages", "list")
	assert.NoError(t, err)
	assert.Contains(t, out, "1001  HRMS Payroll ABRD")
	assert.Contains(t, out, "1002  Retired doc  (disabled)")
	assert.Contains(t, out, "HRMS  HR space")
}

func TestPagesAddCmd(t *testing.T) {
	store := &mockPageStore{}
	withPageStore(t, store)

	out, err := execute(t, "pages", "add", "1001", "HRMS", "Payroll", "ABRD")
	assert.NoError(t, err)
	assert.Contains(t, out, "Page 1001 registered")
	require.Len(t, store.pages, 1)
	assert.Equal(t, "HRMS Payroll ABRD", store.pages[0].Name)
}

func TestPagesAddCmd_Duplicate(t *testing.T) {
	withPageStore(t, &mockPageStore{addErr: domain.ErrAlreadyExists})

	_, err := execute(t, "pages", "add", "1001")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestPagesRemoveCmd(t *testing.T) {
	store := &mockPageStore{pages: []driven.ConfiguredPage{{ID: "1001"}}}
	withPageStore(t, store)

	out, err := execute(t, "pages", "remove", "1001")
	assert.NoError(t, err)
	assert.Contains(t, out, "Page 1001 removed")
	assert.Empty(t, store.pages)
}

func TestPagesRemoveCmd_Unknown(t *testing.T) {
	withPageStore(t, &mockPageStore{})

	_, err := execute(t, "pages", "remove", "9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPagesDisableCmd(t *testing.T) {
	store := &mockPageStore{pages: []driven.ConfiguredPage{{ID: "1001", Enabled: true}}}
	withPageStore(t, store)

	out, err := execute(t, "pages", "disable", "1001")
	assert.NoError(t, err)
	assert.Contains(t, out, "Page 1001 disabled")
	assert.False(t, store.pages[0].Enabled)
}

func TestPagesEnableCmd(t *testing.T) {
	store := &mockPageStore{pages: []driven.ConfiguredPage{{ID: "1001", Enabled: false}}}
	withPageStore(t, store)

	out, err := execute(t, "pages", "enable", "1001")
	assert.NoError(t, err)
	assert.Contains(t, out, "Page 1001 enabled")
	assert.True(t, store.pages[0].Enabled)
}

func TestPagesEnableCmd_Unknown(t *testing.T) {
	withPageStore(t, &mockPageStore{})

	_, err := execute(t, "pages", "enable", "9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCacheStatusCmd(t *testing.T) {
	withCacheStore(t, &mockCacheStore{entries: 12})

	out, err := execute(t, "cache", "status")
	assert.NoError(t, err)
	assert.Contains(t, out, "Entries: 12")
	assert.Contains(t, out, "/tmp/cache.db")
	assert.Contains(t, out, "Oldest indexed:")
}

func TestCacheStatusCmd_Empty(t *testing.T) {
	withCacheStore(t, &mockCacheStore{})

	out, err := execute(t, "cache", "status")
	assert.NoError(t, err)
	assert.Contains(t, out, "Entries: 0")
	assert.NotContains(t, out, "Oldest indexed:")
}

func TestCacheClearCmd(t *testing.T) {
	store := &mockCacheStore{entries: 5}
	withCacheStore(t, store)

	out, err := execute(t, "cache", "clear")
	assert.NoError(t, err)
	assert.Contains(t, out, "Removed 5 cache entries")
	assert.True(t, store.cleared)
}
