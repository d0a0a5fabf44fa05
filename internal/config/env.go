package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv populates unset fields of cfg from environment variables.
// Explicit cfg values (set by flags or a config file already merged into
// cfg) take precedence over env, per the teacher's ApplyEnvToConfig
// convention.
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.OpenRouterBaseURL == "" {
		cfg.OpenRouterBaseURL = os.Getenv("OPENROUTER_BASE_URL")
	}
	if cfg.OpenRouterAPIKey == "" {
		cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = os.Getenv("EMBEDDING_MODEL")
	}
	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey = os.Getenv("EMBEDDING_API_KEY")
	}
	if cfg.CSE.APIKey == "" {
		cfg.CSE.APIKey = os.Getenv("GOOGLE_CSE_API_KEY")
	}
	if cfg.CSE.Legal == "" {
		cfg.CSE.Legal = os.Getenv("GOOGLE_CSE_LEGAL_ID")
	}
	if cfg.CSE.Gov == "" {
		cfg.CSE.Gov = os.Getenv("GOOGLE_CSE_GOV_ID")
	}
	if cfg.CSE.AustLII == "" {
		cfg.CSE.AustLII = os.Getenv("GOOGLE_CSE_AUSTLII_ID")
	}
	if cfg.JinaAPIKey == "" {
		cfg.JinaAPIKey = os.Getenv("JINA_API_KEY")
	}
	if cfg.LogDir == "" {
		cfg.LogDir = os.Getenv("LITASSIST_LOG_DIR")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.Getenv("LITASSIST_OUTPUT_DIR")
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.Getenv("LITASSIST_CACHE_DIR")
	}
	if v := os.Getenv("LITASSIST_CACHE_MAX_AGE_HOURS"); v != "" && cfg.CacheMaxAge == 0 {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxAge = time.Duration(n) * time.Hour
		}
	}
	if v := os.Getenv("LITASSIST_CACHE_MAX_BYTES"); v != "" && cfg.CacheMaxBytes == 0 {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.CacheMaxBytes = n
		}
	}
	if v := os.Getenv("LITASSIST_CACHE_MAX_COUNT"); v != "" && cfg.CacheMaxCount == 0 {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxCount = n
		}
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = os.Getenv("LITASSIST_LOG_FORMAT")
	}
	if v := os.Getenv("LITASSIST_MAX_TOKENS"); v != "" && cfg.MaxTokens == 0 {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	setBoolIfUnset(&cfg.TokenLimitEnabled, "LITASSIST_TOKEN_LIMIT_ENABLED")
	setBoolIfUnset(&cfg.OfflineValidation, "LITASSIST_OFFLINE_VALIDATION")
	setBoolIfUnset(&cfg.EnablePDF, "LITASSIST_ENABLE_PDF")
	if v := os.Getenv("LITASSIST_HEARTBEAT_SECONDS"); v != "" && cfg.HeartbeatInterval == 0 {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HeartbeatInterval = time.Duration(n) * time.Second
		}
	}
}

// Load builds a Config by layering environment variables atop Defaults:
// env is applied to an empty Config first, and every field it leaves at
// its zero value is then taken from Defaults.
// Callers should call Validate explicitly once loading is complete so the
// caller controls when a MissingConfigError surfaces.
func Load() Config {
	var cfg Config
	ApplyEnv(&cfg)
	defaults := reflect.ValueOf(Defaults())
	v := reflect.ValueOf(&cfg).Elem()
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).IsZero() {
			v.Field(i).Set(defaults.Field(i))
		}
	}
	return cfg
}

func setBoolIfUnset(dst *bool, envKey string) {
	if *dst {
		return
	}
	s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey)))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		*dst = true
	}
}
