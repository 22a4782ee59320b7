// Package cli implements the brdingest command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brdingest-cli/internal/adapters/driven/ai/openai"
	"github.com/custodia-labs/brdingest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/brdingest-cli/internal/adapters/driven/confluence"
	"github.com/custodia-labs/brdingest-cli/internal/adapters/driven/search/azure"
	"github.com/custodia-labs/brdingest-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driving"
	"github.com/custodia-labs/brdingest-cli/internal/core/services"
	"github.com/custodia-labs/brdingest-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Persistent flags.
var (
	configPath  string
	verboseFlag bool
	dryRun      bool
	force       bool
)

// Wired services. Tests may inject fakes before calling a command.
var (
	settings         *file.Settings
	processorService driving.Processor
	cacheStore       driven.FingerprintStore
	pageStore        driven.PageConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "brdingest",
	Short: "Index business requirement documents from Confluence",
	Long: `brdingest pulls ABRD/FBRD pages from Confluence, parses their
structure and metadata, and publishes full-document and per-section
records to Azure AI Search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)

		if settings == nil {
			loaded, err := file.LoadSettings(configPath)
			if err != nil {
				return err
			}
			settings = loaded
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.brdingest/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Run the pipeline without submitting to the index")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Reprocess pages even when unchanged")
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command under ctx; cancelling ctx stops
// multi-page runs from scheduling further pages.
func ExecuteContext(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// ensurePageStore opens the page registry on first use.
func ensurePageStore() (driven.PageConfigStore, error) {
	if pageStore != nil {
		return pageStore, nil
	}

	store, err := file.NewPageStore("")
	if err != nil {
		return nil, fmt.Errorf("open page registry: %w", err)
	}
	pageStore = store
	return pageStore, nil
}

// ensureCacheStore opens the fingerprint cache on first use.
func ensureCacheStore() (driven.FingerprintStore, error) {
	if cacheStore != nil {
		return cacheStore, nil
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	cacheStore = store
	return cacheStore, nil
}

// ensureProcessor wires the full pipeline on first use.
func ensureProcessor() (driving.Processor, error) {
	if processorService != nil {
		return processorService, nil
	}

	if settings.Confluence.BaseURL == "" {
		return nil, errors.New("confluence is not configured: set confluence.base_url in the config file")
	}
	if settings.Search.Endpoint == "" && !dryRun {
		return nil, errors.New("search is not configured: set search.endpoint in the config file, or use --dry-run")
	}

	source, err := confluence.NewClient(confluence.Config{
		BaseURL:  settings.Confluence.BaseURL,
		Username: settings.Confluence.Username,
		APIToken: settings.Confluence.APIToken,
	})
	if err != nil {
		return nil, err
	}

	var index driven.SearchIndex = noopIndex{}
	if settings.Search.Endpoint != "" {
		index, err = azure.NewClient(azure.Config{
			Endpoint:  settings.Search.Endpoint,
			IndexName: settings.Search.IndexName,
			APIKey:    settings.Search.APIKey,
		})
		if err != nil {
			return nil, err
		}
	}

	cache, err := ensureCacheStore()
	if err != nil {
		return nil, err
	}
	pages, err := ensurePageStore()
	if err != nil {
		return nil, err
	}

	var llm driven.LLMService
	if settings.AI.Summarise {
		llm, err = openai.NewLLMService(openai.LLMConfig{
			Endpoint:   settings.AI.Endpoint,
			Deployment: settings.AI.ChatDeployment,
			APIKey:     settings.AI.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("configure summariser: %w", err)
		}
	}

	var embedder driven.EmbeddingService
	if settings.AI.Vectorise {
		embedder, err = openai.NewEmbeddingService(openai.EmbeddingConfig{
			Endpoint:   settings.AI.Endpoint,
			Deployment: settings.AI.EmbeddingDeployment,
			APIKey:     settings.AI.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("configure embedder: %w", err)
		}
	}

	processorService = services.NewProcessor(source, index, cache, pages, llm, embedder, services.Options{
		Summarise:         settings.AI.Summarise,
		Vectorise:         settings.AI.Vectorise,
		EmbedSections:     settings.AI.EmbedSections,
		Force:             force,
		DryRun:            dryRun,
		Workers:           settings.Processing.Workers,
		RequestsPerSecond: settings.Processing.RequestsPerSecond,
		SummaryMaxTokens:  settings.Processing.SummaryMaxTokens,
	})
	return processorService, nil
}

// closeServices releases any opened stores.
func closeServices() {
	if cacheStore != nil {
		if err := cacheStore.Close(); err != nil {
			logger.Warn("Closing cache: %v", err)
		}
	}
}

// noopIndex stands in for the search index under --dry-run when no
// index is configured. The processor never submits in dry-run mode, so
// the methods are unreachable.
type noopIndex struct{}

func (noopIndex) Upsert(context.Context, []domain.IndexRecord) ([]driven.UpsertResult, error) {
	return nil, errors.New("search index not configured")
}

func (noopIndex) Delete(context.Context, []string) error {
	return errors.New("search index not configured")
}

func (noopIndex) Close() error { return nil }
