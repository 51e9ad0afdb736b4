// Command versematch is the main entry point for the versematch scripture
// matching server. It reads transcript chunks line by line from stdin and
// emits one NDJSON record per chunk that matched a verse.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/versematch/versematch/internal/app"
	"github.com/versematch/versematch/internal/config"
	"github.com/versematch/versematch/pkg/provider/embeddings"
	ollamaembed "github.com/versematch/versematch/pkg/provider/embeddings/ollama"
	oaembed "github.com/versematch/versematch/pkg/provider/embeddings/openai"

	"github.com/versematch/versematch/internal/observe"
	"github.com/versematch/versematch/internal/resilience"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	warm := flag.Bool("warm", false, "build the index and precompute embeddings for the default translation before reading input")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "versematch: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "versematch: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	levelVar := newLevelVar(cfg.Server.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	slog.Info("versematch starting",
		"config", *configPath,
		"metrics_addr", cfg.Server.MetricsAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "versematch"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Instantiate the embedding backend ─────────────────────────────────────
	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	application, err := app.New(ctx, cfg, providers, app.WithLogLevel(levelVar))
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	// ── Config watcher ────────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		application.ApplyDiff(config.Diff(old, new))
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Optional warmup ───────────────────────────────────────────────────────
	if *warm {
		start := time.Now()
		if err := application.Matcher().Warm(ctx, cfg.Library.DefaultTranslation); err != nil {
			slog.Warn("warmup failed; continuing cold", "err", err)
		} else {
			slog.Info("warmup complete", "took", time.Since(start))
		}
	}

	slog.Info("reading transcript from stdin — press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires the built-in embedding provider factories
// into reg. Each factory receives a config.ProviderEntry and constructs a
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		if entry.Timeout > 0 {
			opts = append(opts, oaembed.WithTimeout(entry.Timeout.Std()))
		}
		return oaembed.New(resolveAPIKey(entry), entry.Model, opts...)
	})

	reg.RegisterEmbeddings("ollama", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []ollamaembed.Option
		if entry.Timeout > 0 {
			opts = append(opts, ollamaembed.WithTimeout(entry.Timeout.Std()))
		}
		return ollamaembed.New(entry.BaseURL, entry.Model, opts...)
	})

	for _, name := range config.ValidProviderNames {
		slog.Debug("registered provider", "kind", "embeddings", "name", name)
	}
}

// buildProviders instantiates the configured embedding backend (and its
// fallback, chained) and returns them in an [app.Providers] struct.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ps := &app.Providers{}

	name := cfg.Embeddings.Name
	if name == "" {
		slog.Info("no embedding backend configured; matching will be lexical only")
		return ps, nil
	}

	primary, err := reg.CreateEmbeddings(cfg.Embeddings.ProviderEntry)
	if err != nil {
		return nil, fmt.Errorf("create embeddings provider %q: %w", name, err)
	}
	slog.Info("provider created", "kind", "embeddings", "name", name, "model", cfg.Embeddings.Model)

	if cfg.Embeddings.Fallback == nil {
		ps.Embeddings = primary
		return ps, nil
	}

	fallback, err := reg.CreateEmbeddings(*cfg.Embeddings.Fallback)
	if err != nil {
		return nil, fmt.Errorf("create fallback embeddings provider %q: %w", cfg.Embeddings.Fallback.Name, err)
	}
	slog.Info("provider created", "kind", "embeddings(fallback)",
		"name", cfg.Embeddings.Fallback.Name, "model", cfg.Embeddings.Fallback.Model)

	chain := resilience.NewEmbedFallback(primary, name, resilience.FallbackConfig{})
	chain.AddFallback(cfg.Embeddings.Fallback.Name, fallback)
	ps.Embeddings = chain
	return ps, nil
}

// resolveAPIKey prefers the environment variable named in api_key_env over
// the inline api_key.
func resolveAPIKey(entry config.ProviderEntry) string {
	if entry.APIKeyEnv != "" {
		if v := os.Getenv(entry.APIKeyEnv); v != "" {
			return v
		}
		slog.Warn("api_key_env is set but the variable is empty", "var", entry.APIKeyEnv)
	}
	return entry.APIKey
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║       versematch — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("Translation", cfg.Library.DefaultTranslation)
	printRow("Corpus dir", cfg.Library.CorpusDir)
	printRow("Embeddings", providerLabel(cfg.Embeddings.ProviderEntry))
	if cfg.Embeddings.Fallback != nil {
		printRow("Fallback", providerLabel(*cfg.Embeddings.Fallback))
	}
	if cfg.Store.PostgresDSN != "" {
		printRow("Vector store", "postgres")
	} else {
		printRow("Vector store", "")
	}
	printRow("Metrics addr", cfg.Server.MetricsAddr)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func providerLabel(entry config.ProviderEntry) string {
	if entry.Name == "" {
		return ""
	}
	if entry.Model == "" {
		return entry.Name
	}
	return entry.Name + " / " + entry.Model
}

func printRow(label, value string) {
	if value == "" {
		value = "(not configured)"
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-14s  : %-19s ║\n", label, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLevelVar(level config.LogLevel) *slog.LevelVar {
	lv := &slog.LevelVar{}
	switch level {
	case config.LogDebug:
		lv.Set(slog.LevelDebug)
	case config.LogWarn:
		lv.Set(slog.LevelWarn)
	case config.LogError:
		lv.Set(slog.LevelError)
	default:
		lv.Set(slog.LevelInfo)
	}
	return lv
}
