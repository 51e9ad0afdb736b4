package config_test

import (
	"testing"

	"github.com/versematch/versematch/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server:   config.ServerConfig{LogLevel: config.LogInfo},
		Matching: config.MatchingConfig{MinConfidence: 0.6, MaxResults: 3},
	}
	d := config.Diff(cfg, cfg)
	if d.LogLevelChanged {
		t.Error("expected LogLevelChanged=false for identical configs")
	}
	if d.MatchingChanged {
		t.Error("expected MatchingChanged=false for identical configs")
	}
	if d.LibraryChanged {
		t.Error("expected LibraryChanged=false for identical configs")
	}
	if d.RestartRequired {
		t.Error("expected RestartRequired=false for identical configs")
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Server: config.ServerConfig{LogLevel: config.LogInfo}}
	new := &config.Config{Server: config.ServerConfig{LogLevel: config.LogDebug}}

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("expected NewLogLevel=debug, got %q", d.NewLogLevel)
	}
	if d.RestartRequired {
		t.Error("log level change should not require a restart")
	}
}

func TestDiff_MatchingChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Matching: config.MatchingConfig{MinConfidence: 0.6}}
	new := &config.Config{Matching: config.MatchingConfig{MinConfidence: 0.8, MaxResults: 5}}

	d := config.Diff(old, new)
	if !d.MatchingChanged {
		t.Error("expected MatchingChanged=true")
	}
	if d.NewMatching.MinConfidence != 0.8 {
		t.Errorf("NewMatching.MinConfidence: got %v, want 0.8", d.NewMatching.MinConfidence)
	}
	if d.NewMatching.MaxResults != 5 {
		t.Errorf("NewMatching.MaxResults: got %d, want 5", d.NewMatching.MaxResults)
	}
	if d.RestartRequired {
		t.Error("matching change should not require a restart")
	}
}

func TestDiff_LibraryChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Library: config.LibraryConfig{DefaultTranslation: "kjv"}}
	new := &config.Config{Library: config.LibraryConfig{DefaultTranslation: "web"}}

	d := config.Diff(old, new)
	if !d.LibraryChanged {
		t.Error("expected LibraryChanged=true")
	}
	if d.NewLibrary.DefaultTranslation != "web" {
		t.Errorf("NewLibrary.DefaultTranslation: got %q, want %q", d.NewLibrary.DefaultTranslation, "web")
	}
}

func TestDiff_EmbeddingsChangeRequiresRestart(t *testing.T) {
	t.Parallel()
	old := &config.Config{
		Embeddings: config.EmbeddingsConfig{
			ProviderEntry: config.ProviderEntry{Name: "ollama", Model: "nomic-embed-text"},
		},
	}
	new := &config.Config{
		Embeddings: config.EmbeddingsConfig{
			ProviderEntry: config.ProviderEntry{Name: "openai", Model: "text-embedding-3-small"},
		},
	}

	d := config.Diff(old, new)
	if !d.RestartRequired {
		t.Error("expected RestartRequired=true for embedding backend change")
	}
}

func TestDiff_FallbackAddedRequiresRestart(t *testing.T) {
	t.Parallel()
	entry := config.ProviderEntry{Name: "ollama", Model: "nomic-embed-text"}
	old := &config.Config{Embeddings: config.EmbeddingsConfig{ProviderEntry: entry}}
	new := &config.Config{
		Embeddings: config.EmbeddingsConfig{
			ProviderEntry: entry,
			Fallback:      &config.ProviderEntry{Name: "openai"},
		},
	}

	d := config.Diff(old, new)
	if !d.RestartRequired {
		t.Error("expected RestartRequired=true when a fallback is added")
	}
}

func TestDiff_EqualFallbackPointersAreEqual(t *testing.T) {
	t.Parallel()
	entry := config.ProviderEntry{Name: "ollama", Model: "nomic-embed-text"}
	old := &config.Config{
		Embeddings: config.EmbeddingsConfig{
			ProviderEntry: entry,
			Fallback:      &config.ProviderEntry{Name: "openai"},
		},
	}
	new := &config.Config{
		Embeddings: config.EmbeddingsConfig{
			ProviderEntry: entry,
			Fallback:      &config.ProviderEntry{Name: "openai"},
		},
	}

	d := config.Diff(old, new)
	if d.RestartRequired {
		t.Error("identical fallback entries behind distinct pointers should not require a restart")
	}
}

func TestDiff_StoreChangeRequiresRestart(t *testing.T) {
	t.Parallel()
	old := &config.Config{}
	new := &config.Config{Store: config.StoreConfig{PostgresDSN: "postgres://localhost/versematch"}}

	d := config.Diff(old, new)
	if !d.RestartRequired {
		t.Error("expected RestartRequired=true for store DSN change")
	}
}

func TestDiff_MetricsAddrChangeRequiresRestart(t *testing.T) {
	t.Parallel()
	old := &config.Config{Server: config.ServerConfig{MetricsAddr: ":9090"}}
	new := &config.Config{Server: config.ServerConfig{MetricsAddr: ":9091"}}

	d := config.Diff(old, new)
	if !d.RestartRequired {
		t.Error("expected RestartRequired=true for metrics address change")
	}
}
