package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		ConfigFileEnv, "PORT", "NOTEGEST_API_KEY", "LM_STUDIO_API_BASE", "LM_STUDIO_MODEL",
		"LM_STUDIO_API_KEY", "LLM_TEMPERATURE", "LLM_TIMEOUT", "REPLY_FORMAT", "REWRITE_TAGS",
		"WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_CONCURRENT_NOTES", "MAX_UPLOAD_BYTES", "JOB_TTL",
		"TRELLO_TEMPLATE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.BaseURL != "http://localhost:1234/v1" || cfg.LLM.Model != "google/gemma-3-27b" {
		t.Errorf("unexpected llm defaults %+v", cfg.LLM)
	}
	if cfg.LLM.Temperature != 0.3 || cfg.LLM.Timeout != 120*time.Second {
		t.Errorf("unexpected llm defaults %+v", cfg.LLM)
	}
	if cfg.ReplyFormat != "markdown" {
		t.Errorf("expected markdown replies by default, got %q", cfg.ReplyFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected server validation to require an API key")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "notegest.yaml")
	yml := `port: "9000"
api_key: from-file
reply_format: json
llm:
  model: file-model
  temperature: 0.7
  timeout: 30s
worker_count: 8
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("LM_STUDIO_MODEL", "env-model")
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("REWRITE_TAGS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.NotegestAPIKey != "from-file" || cfg.ReplyFormat != "json" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.LLM.Model != "env-model" {
		t.Errorf("env should override file, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.7 || cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("unexpected llm %+v", cfg.LLM)
	}
	if cfg.LLM.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("unset file keys should keep defaults, got %q", cfg.LLM.BaseURL)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("unparseable env should fall back to file value, got %d", cfg.WorkerCount)
	}
	if cfg.RewriteTags {
		t.Error("expected REWRITE_TAGS=false to apply")
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("ValidateServer: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad format", func(c *Config) { c.ReplyFormat = "xml" }, "ReplyFormat"},
		{"no workers", func(c *Config) { c.WorkerCount = 0 }, "WorkerCount"},
		{"hot model", func(c *Config) { c.LLM.Temperature = 3 }, "Temperature"},
		{"negative temperature", func(c *Config) { c.LLM.Temperature = -1 }, "Temperature"},
		{"no model", func(c *Config) { c.LLM.Model = "" }, "Model"},
		{"short timeout", func(c *Config) { c.LLM.Timeout = time.Millisecond }, "Timeout"},
		{"short ttl", func(c *Config) { c.JobTTL = time.Second }, "JobTTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error naming %s, got %v", tt.field, err)
			}
		})
	}

	cfg := Default()
	cfg.LLM.Temperature = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero temperature should be valid: %v", err)
	}
}
