package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/versematch/versematch/internal/config"
	"github.com/versematch/versematch/pkg/provider/embeddings"
	"github.com/versematch/versematch/pkg/provider/embeddings/mock"
)

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  metrics_addr: ":9090"
  log_level: debug
library:
  default_translation: kjv
embeddings:
  name: ollama
  base_url: "http://localhost:11434"
  model: nomic-embed-text
  timeout: 10s
  fallback:
    name: openai
    api_key_env: OPENAI_API_KEY
    model: text-embedding-3-small
matching:
  min_confidence: 0.65
  max_results: 5
  min_words: 4
  candidate_limit: 200
store:
  postgres_dsn: "postgres://localhost/versematch"
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.MetricsAddr != ":9090" {
		t.Errorf("metrics_addr: got %q, want %q", cfg.Server.MetricsAddr, ":9090")
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level: got %q, want %q", cfg.Server.LogLevel, config.LogDebug)
	}
	if cfg.Library.DefaultTranslation != "kjv" {
		t.Errorf("default_translation: got %q, want %q", cfg.Library.DefaultTranslation, "kjv")
	}
	if cfg.Embeddings.Name != "ollama" {
		t.Errorf("embeddings.name: got %q, want %q", cfg.Embeddings.Name, "ollama")
	}
	if cfg.Embeddings.Timeout.Std() != 10*time.Second {
		t.Errorf("embeddings.timeout: got %v, want %v", cfg.Embeddings.Timeout.Std(), 10*time.Second)
	}
	if cfg.Embeddings.Fallback == nil {
		t.Fatal("embeddings.fallback should be set")
	}
	if cfg.Embeddings.Fallback.Name != "openai" {
		t.Errorf("fallback.name: got %q, want %q", cfg.Embeddings.Fallback.Name, "openai")
	}
	if cfg.Matching.MinConfidence != 0.65 {
		t.Errorf("min_confidence: got %v, want 0.65", cfg.Matching.MinConfidence)
	}
	if cfg.Matching.MaxResults != 5 {
		t.Errorf("max_results: got %d, want 5", cfg.Matching.MaxResults)
	}
	if cfg.Store.PostgresDSN != "postgres://localhost/versematch" {
		t.Errorf("postgres_dsn: got %q", cfg.Store.PostgresDSN)
	}
}

func TestLoadFromReader_MinimalConfig(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader("server:\n  log_level: info\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embeddings.Name != "" {
		t.Errorf("embeddings.name should be empty, got %q", cfg.Embeddings.Name)
	}
	if cfg.Embeddings.Fallback != nil {
		t.Error("embeddings.fallback should be nil when absent")
	}
	if cfg.Matching.DisableSemantic {
		t.Error("disable_semantic should default to false")
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	t.Parallel()
	yaml := `
embeddings:
  name: ollama
  model: nomic-embed-text
  timeout: 1m30s
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := cfg.Embeddings.Timeout.Std(), 90*time.Second; got != want {
		t.Errorf("timeout: got %v, want %v", got, want)
	}
}

func TestDuration_InvalidString(t *testing.T) {
	t.Parallel()
	yaml := `
embeddings:
  name: ollama
  timeout: soon
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "duration") {
		t.Errorf("error should mention duration, got: %v", err)
	}
}

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()
	for _, l := range []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError} {
		if !l.IsValid() {
			t.Errorf("%q should be valid", l)
		}
	}
	for _, l := range []config.LogLevel{"", "verbose", "INFO"} {
		if l.IsValid() {
			t.Errorf("%q should be invalid", l)
		}
	}
}

func TestRegistry_CreateEmbeddings(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	reg.RegisterEmbeddings("mock", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		return &mock.Provider{DimensionsValue: 8, ModelIDValue: entry.Model}, nil
	})

	p, err := reg.CreateEmbeddings(config.ProviderEntry{Name: "mock", Model: "test-model"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "test-model" {
		t.Errorf("ModelID: got %q, want %q", p.ModelID(), "test-model")
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	t.Parallel()
	reg := config.NewRegistry()
	_, err := reg.CreateEmbeddings(config.ProviderEntry{Name: "unheard-of"})
	if err == nil {
		t.Fatal("expected error for unregistered provider, got nil")
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Errorf("error should mention registration, got: %v", err)
	}
}
