package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML schema, mirroring the nested-section style
// the teacher repo uses for its own configuration file.
type FileConfig struct {
	OpenRouter struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"openrouter"`

	Embedding struct {
		Model  string `yaml:"model"`
		APIKey string `yaml:"api_key"`
	} `yaml:"embedding"`

	GoogleCSE struct {
		APIKey    string `yaml:"api_key"`
		LegalID   string `yaml:"legal_id"`
		GovID     string `yaml:"gov_id"`
		AustLIIID string `yaml:"austlii_id"`
	} `yaml:"google_cse"`

	Jina struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"jina"`

	TokenLimit struct {
		Enabled   *bool `yaml:"enabled"`
		MaxTokens int   `yaml:"max_tokens"`
	} `yaml:"token_limit"`

	Heartbeat struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"heartbeat"`

	CharLimit int `yaml:"char_limit"`

	LogFormat string `yaml:"log_format"`

	OfflineValidation *bool `yaml:"offline_validation"`

	WebScraping struct {
		TimeoutSeconds        int  `yaml:"timeout_seconds"`
		CSETimeoutSeconds     int  `yaml:"cse_timeout_seconds"`
		JinaTimeoutSeconds    int  `yaml:"jina_timeout_seconds"`
		AustLIITimeoutSeconds int  `yaml:"austlii_timeout_seconds"`
		PDFTimeoutSeconds     int  `yaml:"pdf_timeout_seconds"`
		CSEDelayMillis        int  `yaml:"cse_delay_millis"`
		PerDomainDelayMillis  int  `yaml:"per_domain_delay_millis"`
		EnablePDFArchive      bool `yaml:"enable_pdf_archive"`
	} `yaml:"web_scraping"`

	Dirs struct {
		Logs    string `yaml:"logs"`
		Outputs string `yaml:"outputs"`
		Cache   string `yaml:"cache"`
	} `yaml:"dirs"`

	Cache struct {
		MaxAgeHours int   `yaml:"max_age_hours"`
		MaxBytes    int64 `yaml:"max_bytes"`
		MaxCount    int   `yaml:"max_count"`
	} `yaml:"cache"`
}

// LoadFile reads a YAML configuration file and merges it into cfg. The
// endpoint, API keys, CSE ids and cache limits already set on cfg
// (non-zero) take precedence over the file; every other field the file
// sets overwrites the value already on cfg.
func LoadFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if cfg.OpenRouterBaseURL == "" {
		cfg.OpenRouterBaseURL = fc.OpenRouter.BaseURL
	}
	if cfg.OpenRouterAPIKey == "" {
		cfg.OpenRouterAPIKey = fc.OpenRouter.APIKey
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = fc.Embedding.Model
	}
	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey = fc.Embedding.APIKey
	}
	if cfg.CSE.APIKey == "" {
		cfg.CSE.APIKey = fc.GoogleCSE.APIKey
	}
	if cfg.CSE.Legal == "" {
		cfg.CSE.Legal = fc.GoogleCSE.LegalID
	}
	if cfg.CSE.Gov == "" {
		cfg.CSE.Gov = fc.GoogleCSE.GovID
	}
	if cfg.CSE.AustLII == "" {
		cfg.CSE.AustLII = fc.GoogleCSE.AustLIIID
	}
	if cfg.JinaAPIKey == "" {
		cfg.JinaAPIKey = fc.Jina.APIKey
	}
	if fc.TokenLimit.Enabled != nil {
		cfg.TokenLimitEnabled = *fc.TokenLimit.Enabled
	}
	if fc.TokenLimit.MaxTokens > 0 {
		cfg.MaxTokens = fc.TokenLimit.MaxTokens
	}
	if fc.Heartbeat.IntervalSeconds > 0 {
		cfg.HeartbeatInterval = time.Duration(fc.Heartbeat.IntervalSeconds) * time.Second
	}
	if fc.CharLimit > 0 {
		cfg.CharLimit = fc.CharLimit
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	if fc.OfflineValidation != nil {
		cfg.OfflineValidation = *fc.OfflineValidation
	}
	if fc.WebScraping.TimeoutSeconds > 0 {
		cfg.WebFetchTimeout = time.Duration(fc.WebScraping.TimeoutSeconds) * time.Second
	}
	if fc.WebScraping.CSETimeoutSeconds > 0 {
		cfg.CSETimeout = time.Duration(fc.WebScraping.CSETimeoutSeconds) * time.Second
	}
	if fc.WebScraping.JinaTimeoutSeconds > 0 {
		cfg.JinaTimeout = time.Duration(fc.WebScraping.JinaTimeoutSeconds) * time.Second
	}
	if fc.WebScraping.AustLIITimeoutSeconds > 0 {
		cfg.AustLIITimeout = time.Duration(fc.WebScraping.AustLIITimeoutSeconds) * time.Second
	}
	if fc.WebScraping.PDFTimeoutSeconds > 0 {
		cfg.PDFDownloadTimeout = time.Duration(fc.WebScraping.PDFTimeoutSeconds) * time.Second
	}
	if fc.WebScraping.CSEDelayMillis > 0 {
		cfg.CSEInterCallDelay = time.Duration(fc.WebScraping.CSEDelayMillis) * time.Millisecond
	}
	if fc.WebScraping.PerDomainDelayMillis > 0 {
		cfg.PerDomainDelay = time.Duration(fc.WebScraping.PerDomainDelayMillis) * time.Millisecond
	}
	if fc.WebScraping.EnablePDFArchive {
		cfg.EnablePDF = true
	}
	if fc.Dirs.Logs != "" {
		cfg.LogDir = fc.Dirs.Logs
	}
	if fc.Dirs.Outputs != "" {
		cfg.OutputDir = fc.Dirs.Outputs
	}
	if fc.Dirs.Cache != "" {
		cfg.CacheDir = fc.Dirs.Cache
	}
	if fc.Cache.MaxAgeHours > 0 && cfg.CacheMaxAge == 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAgeHours) * time.Hour
	}
	if fc.Cache.MaxBytes > 0 && cfg.CacheMaxBytes == 0 {
		cfg.CacheMaxBytes = fc.Cache.MaxBytes
	}
	if fc.Cache.MaxCount > 0 && cfg.CacheMaxCount == 0 {
		cfg.CacheMaxCount = fc.Cache.MaxCount
	}
	return nil
}
