package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the optional YAML config file.
const ConfigFileEnv = "NOTEGEST_CONFIG"

type Config struct {
	Port string `yaml:"port"`

	// Auth
	NotegestAPIKey string `yaml:"api_key"`

	LLM LLMConfig `yaml:"llm"`

	// Reply handling: "markdown" for plain replies, "json" for structured
	// replies carrying tags.
	ReplyFormat string `yaml:"reply_format"`
	RewriteTags bool   `yaml:"rewrite_tags"`

	// Worker pool
	WorkerCount        int `yaml:"worker_count"`
	MaxQueueSize       int `yaml:"max_queue_size"`
	MaxConcurrentNotes int `yaml:"max_concurrent_notes"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// Trello conversion; empty uses the built-in note template
	TrelloTemplate string `yaml:"trello_template"`
}

// LLMConfig points at an OpenAI-compatible chat completions server.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port: "8090",
		LLM: LLMConfig{
			BaseURL:     "http://localhost:1234/v1",
			Model:       "google/gemma-3-27b",
			Temperature: 0.3,
			Timeout:     120 * time.Second,
		},
		ReplyFormat:        "markdown",
		RewriteTags:        true,
		WorkerCount:        4,
		MaxQueueSize:       100,
		MaxConcurrentNotes: 2,
		MaxUploadBytes:     10 << 20, // 10MB
		JobTTL:             1 * time.Hour,
	}
}

// Load layers the YAML file named by NOTEGEST_CONFIG, a .env file, and the
// process environment over the defaults, in that order of precedence from
// lowest to highest.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.NotegestAPIKey = envOr("NOTEGEST_API_KEY", cfg.NotegestAPIKey)

	cfg.LLM.BaseURL = envOr("LM_STUDIO_API_BASE", cfg.LLM.BaseURL)
	cfg.LLM.Model = envOr("LM_STUDIO_MODEL", cfg.LLM.Model)
	cfg.LLM.APIKey = envOr("LM_STUDIO_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Temperature = envFloat("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.Timeout = envDuration("LLM_TIMEOUT", cfg.LLM.Timeout)

	cfg.ReplyFormat = envOr("REPLY_FORMAT", cfg.ReplyFormat)
	cfg.RewriteTags = envBool("REWRITE_TAGS", cfg.RewriteTags)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxConcurrentNotes = envInt("MAX_CONCURRENT_NOTES", cfg.MaxConcurrentNotes)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.TrelloTemplate = envOr("TRELLO_TEMPLATE", cfg.TrelloTemplate)

	return cfg, nil
}

// Validate checks the settings every entry point needs.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c.LLM,
		validation.Field(&c.LLM.BaseURL, validation.Required),
		validation.Field(&c.LLM.Model, validation.Required),
		validation.Field(&c.LLM.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.LLM.Timeout, validation.Required, validation.Min(time.Second)),
	); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.ReplyFormat, validation.In("markdown", "json")),
		validation.Field(&c.WorkerCount, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxQueueSize, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxConcurrentNotes, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.JobTTL, validation.Required, validation.Min(time.Minute)),
	)
}

// ValidateServer also requires the settings of the HTTP service.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.NotegestAPIKey, validation.Required.Error("NOTEGEST_API_KEY is required")),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
