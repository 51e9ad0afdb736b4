package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known embedding provider names.
// Used by [Validate] to warn about unrecognised names.
var ValidProviderNames = []string{"openai", "ollama"}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Embeddings
	validateProviderName("embeddings", cfg.Embeddings.Name)
	if cfg.Embeddings.Fallback != nil {
		validateProviderName("embeddings.fallback", cfg.Embeddings.Fallback.Name)
		if cfg.Embeddings.Name == "" {
			errs = append(errs, errors.New("embeddings.fallback is set but embeddings.name is empty"))
		}
		if cfg.Embeddings.Fallback.Name == "" {
			errs = append(errs, errors.New("embeddings.fallback.name is required when a fallback block is present"))
		}
	}
	if cfg.Embeddings.Timeout < 0 {
		errs = append(errs, fmt.Errorf("embeddings.timeout %v must not be negative", cfg.Embeddings.Timeout))
	}

	// Matching thresholds
	if cfg.Matching.MinConfidence < 0 || cfg.Matching.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("matching.min_confidence %.2f is out of range [0, 1]", cfg.Matching.MinConfidence))
	}
	if cfg.Matching.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("matching.max_results %d must not be negative", cfg.Matching.MaxResults))
	}
	if cfg.Matching.MinWords < 0 {
		errs = append(errs, fmt.Errorf("matching.min_words %d must not be negative", cfg.Matching.MinWords))
	}
	if cfg.Matching.CandidateLimit < 0 {
		errs = append(errs, fmt.Errorf("matching.candidate_limit %d must not be negative", cfg.Matching.CandidateLimit))
	}

	// Library
	if cfg.Library.CorpusDir != "" {
		if info, err := os.Stat(cfg.Library.CorpusDir); err != nil {
			slog.Warn("library.corpus_dir is not readable; only built-in translations will be available",
				"dir", cfg.Library.CorpusDir, "err", err)
		} else if !info.IsDir() {
			errs = append(errs, fmt.Errorf("library.corpus_dir %q is not a directory", cfg.Library.CorpusDir))
		}
	}

	// Store availability
	if cfg.Store.PostgresDSN == "" && cfg.Embeddings.Name != "" {
		slog.Warn("store.postgres_dsn is empty; verse embeddings will be recomputed on every restart")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// [ValidProviderNames].
func validateProviderName(field, name string) {
	if name == "" {
		return
	}
	if slices.Contains(ValidProviderNames, name) {
		return
	}
	slog.Warn("unknown embedding provider name — may be a typo or third-party provider",
		"field", field,
		"name", name,
		"known", ValidProviderNames,
	)
}
