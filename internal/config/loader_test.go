package config_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/versematch/versematch/internal/config"
)

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: info
  verbosity: high
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
	if !strings.Contains(err.Error(), "verbosity") {
		t.Errorf("error should name the unknown field, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: loud
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_MinConfidenceOutOfRange(t *testing.T) {
	t.Parallel()
	yaml := `
matching:
  min_confidence: 1.5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for out-of-range min_confidence, got nil")
	}
	if !strings.Contains(err.Error(), "min_confidence") {
		t.Errorf("error should mention min_confidence, got: %v", err)
	}
}

func TestValidate_NegativeMatchingLimits(t *testing.T) {
	t.Parallel()
	yaml := `
matching:
  max_results: -1
  min_words: -2
  candidate_limit: -3
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative limits, got nil")
	}
	for _, field := range []string{"max_results", "min_words", "candidate_limit"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("joined error should mention %s, got: %v", field, err)
		}
	}
}

func TestValidate_NegativeTimeout(t *testing.T) {
	t.Parallel()
	yaml := `
embeddings:
  name: ollama
  model: nomic-embed-text
  timeout: -5s
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative timeout, got nil")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("error should mention timeout, got: %v", err)
	}
}

func TestValidate_FallbackWithoutPrimary(t *testing.T) {
	t.Parallel()
	yaml := `
embeddings:
  fallback:
    name: ollama
    model: nomic-embed-text
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for fallback without primary, got nil")
	}
	if !strings.Contains(err.Error(), "embeddings.name is empty") {
		t.Errorf("error should mention missing primary, got: %v", err)
	}
}

func TestValidate_FallbackWithoutName(t *testing.T) {
	t.Parallel()
	yaml := `
embeddings:
  name: openai
  api_key: sk-test
  fallback:
    model: nomic-embed-text
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for fallback block without name, got nil")
	}
	if !strings.Contains(err.Error(), "fallback.name") {
		t.Errorf("error should mention fallback.name, got: %v", err)
	}
}

func TestValidate_CorpusDirIsFile(t *testing.T) {
	t.Parallel()
	f, err := os.CreateTemp(t.TempDir(), "corpus-*")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	f.Close()

	cfg := &config.Config{
		Library: config.LibraryConfig{CorpusDir: f.Name()},
	}
	if err := config.Validate(cfg); err == nil {
		t.Fatal("expected error when corpus_dir is a regular file, got nil")
	}
}

func TestValidate_MissingCorpusDirIsNotAnError(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Library: config.LibraryConfig{CorpusDir: "/nonexistent/corpora"},
	}
	// An unreadable directory degrades to built-ins with a warning.
	if err := config.Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got: %v", err)
	}
}
