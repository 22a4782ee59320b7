package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Settings is the full service configuration, loaded from a TOML file
// with secrets optionally overridden from the environment.
type Settings struct {
	// DataDir holds local state (the fingerprint cache). Defaults to
	// ~/.brdingest/data.
	DataDir string `toml:"data_dir"`

	Confluence ConfluenceSettings `toml:"confluence"`
	Search     SearchSettings     `toml:"search"`
	AI         AISettings         `toml:"ai"`
	Processing ProcessingSettings `toml:"processing"`
}

// ConfluenceSettings configures the wiki source.
type ConfluenceSettings struct {
	BaseURL  string `toml:"base_url"`
	Username string `toml:"username"`
	APIToken string `toml:"api_token"`
}

// SearchSettings configures the Azure AI Search target.
type SearchSettings struct {
	Endpoint  string `toml:"endpoint"`
	IndexName string `toml:"index_name"`
	APIKey    string `toml:"api_key"`
}

// AISettings configures the optional Azure OpenAI enrichment.
type AISettings struct {
	Endpoint            string `toml:"endpoint"`
	APIKey              string `toml:"api_key"`
	ChatDeployment      string `toml:"chat_deployment"`
	EmbeddingDeployment string `toml:"embedding_deployment"`

	// Summarise and Vectorise toggle the enrichment steps.
	Summarise bool `toml:"summarise"`
	Vectorise bool `toml:"vectorise"`

	// EmbedSections extends embedding to per-section records.
	EmbedSections bool `toml:"embed_sections"`
}

// ProcessingSettings tunes the pipeline.
type ProcessingSettings struct {
	Workers           int     `toml:"workers"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	SummaryMaxTokens  int     `toml:"summary_max_tokens"`
}

// Environment variables that override file-held secrets, so tokens can
// stay out of the config file entirely.
const (
	EnvConfluenceToken = "BRDINGEST_CONFLUENCE_TOKEN"
	EnvSearchAPIKey    = "BRDINGEST_SEARCH_API_KEY"
	EnvOpenAIAPIKey    = "BRDINGEST_OPENAI_API_KEY"
)

// DefaultSettingsPath returns ~/.brdingest/config.toml.
func DefaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".brdingest", "config.toml"), nil
}

// LoadSettings reads settings from path. If path is empty the default
// location is used; a missing file yields zero settings so that
// environment variables alone can configure the tool.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		var err error
		path, err = DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
	}

	var settings Settings
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file yet - that's fine, start empty
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	settings.applyEnv()
	return &settings, nil
}

// applyEnv overrides secrets from the environment.
func (s *Settings) applyEnv() {
	if v := os.Getenv(EnvConfluenceToken); v != "" {
		s.Confluence.APIToken = v
	}
	if v := os.Getenv(EnvSearchAPIKey); v != "" {
		s.Search.APIKey = v
	}
	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		s.AI.APIKey = v
	}
}
