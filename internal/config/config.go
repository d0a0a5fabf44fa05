// Package config loads LitAssist's process-wide configuration: the
// OpenRouter gateway endpoint/key, Google CSE identifiers, Jina Reader
// key, token-budget defaults, and web-scraping toggles.
package config

import (
	"fmt"
	"time"
)

// CSEConfig groups a single Google Custom Search Engine's identifiers.
type CSEConfig struct {
	APIKey string
	Legal  string // primary legal-DB CSE (Jade.io equivalent)
	Gov    string // secondary comprehensive/government CSE
	AustLII string // AustLII-restricted CSE
}

// Config is the single configuration record described in spec.md §6.
type Config struct {
	// OpenRouter
	OpenRouterBaseURL string
	OpenRouterAPIKey  string

	// Embeddings (opaque to the core; passed through to collaborators)
	EmbeddingModel  string
	EmbeddingAPIKey string

	// Google CSE
	CSE CSEConfig

	// Jina Reader
	JinaAPIKey string

	// Token budgeting
	TokenLimitEnabled bool
	MaxTokens         int

	// Heartbeat
	HeartbeatInterval time.Duration

	// Chunking
	CharLimit int

	// Logging
	LogFormat string // "json" | "markdown"

	// Citation pattern validation
	OfflineValidation bool

	// Web scraping
	WebFetchTimeout   time.Duration
	CSETimeout        time.Duration
	JinaTimeout       time.Duration
	AustLIITimeout    time.Duration
	PDFDownloadTimeout time.Duration
	CSEInterCallDelay time.Duration
	PerDomainDelay    time.Duration
	AustLIIMinDelay   time.Duration
	AustLIIMaxDelay   time.Duration

	// Directories
	LogDir    string
	OutputDir string
	CacheDir  string

	// On-disk HTTP cache maintenance (internal/cache.PurgeHTTPCacheByAge,
	// EnforceHTTPCacheLimits), run once at startup against CacheDir.
	CacheMaxAge   time.Duration
	CacheMaxBytes int64
	CacheMaxCount int

	// PDF archival of command outputs (supplemented feature, see SPEC_FULL.md)
	EnablePDF bool
}

// MissingConfigError names the dotted configuration path that was required
// but absent, matching spec.md §6's "missing required keys cause a startup
// error with a specific message naming the missing path" requirement.
type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Path)
}

// Defaults returns a Config populated with the non-secret defaults named in
// spec.md §6 (16384 max tokens, json log format, CSE
// inter-call delay 1.5s, per-domain fetch delay 0.5s, AustLII pacing
// 2.0-3.0s).
func Defaults() Config {
	return Config{
		MaxTokens:          16384,
		TokenLimitEnabled:  true,
		CharLimit:          8000,
		LogFormat:          "json",
		HeartbeatInterval:  10 * time.Second,
		CSETimeout:         10 * time.Second,
		JinaTimeout:        15 * time.Second,
		AustLIITimeout:     10 * time.Second,
		WebFetchTimeout:    10 * time.Second,
		PDFDownloadTimeout: 10 * time.Second,
		CSEInterCallDelay:  1500 * time.Millisecond,
		PerDomainDelay:     500 * time.Millisecond,
		AustLIIMinDelay:    2 * time.Second,
		AustLIIMaxDelay:    3 * time.Second,
		LogDir:             "logs",
		OutputDir:          "outputs",
	}
}

// Validate checks the fields required for the core to operate and returns a
// *MissingConfigError naming the first missing dotted path found, in a
// fixed, deterministic order.
func (c Config) Validate() error {
	if c.OpenRouterBaseURL == "" {
		return &MissingConfigError{Path: "openrouter.base_url"}
	}
	if c.OpenRouterAPIKey == "" {
		return &MissingConfigError{Path: "openrouter.api_key"}
	}
	if c.CSE.APIKey == "" {
		return &MissingConfigError{Path: "google_cse.api_key"}
	}
	if c.CSE.Legal == "" {
		return &MissingConfigError{Path: "google_cse.legal_id"}
	}
	if c.CSE.Gov == "" {
		return &MissingConfigError{Path: "google_cse.gov_id"}
	}
	if c.CSE.AustLII == "" {
		return &MissingConfigError{Path: "google_cse.austlii_id"}
	}
	return nil
}
