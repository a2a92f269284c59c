package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	GeminiURL     string
	GeminiAPIKey  string
	GeminiModel   string
	OracleTimeout time.Duration
	OracleRPS     float64
	OracleBurst   int

	RetryMaxAttempts     int
	RetryBaseDelayMillis int
	RetryMaxDelayMillis  int
	BreakerEnabled       bool
	BreakerMinSamples    int
	BreakerTripRatio     float64
	BreakerCooldownSecs  int

	ClassifierSnippetChars int
	TextEnhancementEnabled bool

	MaxUploadBytes int64
}

// overlay is the optional YAML file shape; only set fields override the
// environment values.
type overlay struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	Gemini struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`

	Oracle struct {
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		RPS            float64 `yaml:"rps"`
		Burst          int     `yaml:"burst"`
	} `yaml:"oracle"`

	ClassifierSnippetChars *int  `yaml:"classifier_snippet_chars"`
	TextEnhancementEnabled *bool `yaml:"text_enhancement_enabled"`
}

// Load reads configuration from the environment, then applies the
// optional YAML overlay named by CONFIG_FILE on top.
func Load() (Config, error) {
	cfg := Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		GeminiURL:     mustEnv("GEMINI_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIKey:  mustEnv("GEMINI_API_KEY", ""),
		GeminiModel:   mustEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OracleTimeout: time.Duration(mustEnvInt("ORACLE_TIMEOUT_SECONDS", 60)) * time.Second,
		OracleRPS:     mustEnvFloat("ORACLE_RPS", 2.0),
		OracleBurst:   mustEnvInt("ORACLE_BURST", 4),

		RetryMaxAttempts:     mustEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelayMillis: mustEnvInt("RETRY_BASE_DELAY_MS", 200),
		RetryMaxDelayMillis:  mustEnvInt("RETRY_MAX_DELAY_MS", 2000),
		BreakerEnabled:       mustEnvBool("BREAKER_ENABLED", true),
		BreakerMinSamples:    mustEnvInt("BREAKER_MIN_SAMPLES", 5),
		BreakerTripRatio:     mustEnvFloat("BREAKER_TRIP_RATIO", 0.5),
		BreakerCooldownSecs:  mustEnvInt("BREAKER_COOLDOWN_SECONDS", 30),

		ClassifierSnippetChars: mustEnvInt("CLASSIFIER_SNIPPET_CHARS", 2000),
		TextEnhancementEnabled: mustEnvBool("TEXT_ENHANCEMENT_ENABLED", true),

		MaxUploadBytes: int64(mustEnvInt("MAX_UPLOAD_MB", 32)) << 20,
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		return cfg, nil
	}
	if err := applyOverlay(&cfg, path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyOverlay(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var o overlay
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if o.APIPort != "" {
		cfg.APIPort = o.APIPort
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Gemini.URL != "" {
		cfg.GeminiURL = o.Gemini.URL
	}
	if o.Gemini.APIKey != "" {
		cfg.GeminiAPIKey = o.Gemini.APIKey
	}
	if o.Gemini.Model != "" {
		cfg.GeminiModel = o.Gemini.Model
	}
	if o.Oracle.TimeoutSeconds > 0 {
		cfg.OracleTimeout = time.Duration(o.Oracle.TimeoutSeconds) * time.Second
	}
	if o.Oracle.RPS > 0 {
		cfg.OracleRPS = o.Oracle.RPS
	}
	if o.Oracle.Burst > 0 {
		cfg.OracleBurst = o.Oracle.Burst
	}
	if o.ClassifierSnippetChars != nil {
		cfg.ClassifierSnippetChars = *o.ClassifierSnippetChars
	}
	if o.TextEnhancementEnabled != nil {
		cfg.TextEnhancementEnabled = *o.TextEnhancementEnabled
	}
	return nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
