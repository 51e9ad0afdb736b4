// Package app wires all versematch subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run executes the transcript processing loop, and Shutdown tears
// everything down in order.
//
// For testing, inject doubles via functional options (WithLibrary, WithInput,
// WithOutput, etc.). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/versematch/versematch/internal/config"
	"github.com/versematch/versematch/internal/embedstore"
	"github.com/versematch/versematch/internal/engine"
	"github.com/versematch/versematch/internal/health"
	"github.com/versematch/versematch/internal/observe"
	"github.com/versematch/versematch/internal/scripture"
	"github.com/versematch/versematch/pkg/provider/embeddings"
)

// Providers holds the embedding backend slot. Nil means semantic scoring is
// not configured. Populated by main.go via the config registry.
type Providers struct {
	Embeddings embeddings.Provider
}

// App owns all subsystem lifetimes and runs the transcript analysis loop.
type App struct {
	cfg       *config.Config
	providers *Providers

	library *scripture.Library
	store   *embedstore.Store
	matcher *engine.Matcher

	// matchMu guards matchOpts, which is hot-reloadable via ApplyDiff.
	matchMu   sync.RWMutex
	matchOpts engine.Options

	// logLevel, when set, lets ApplyDiff change verbosity at runtime.
	logLevel *slog.LevelVar

	diagSrv *http.Server

	in  io.Reader
	out io.Writer

	// closers are called in order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithLibrary injects a scripture library instead of creating one from config.
func WithLibrary(l *scripture.Library) Option {
	return func(a *App) { a.library = l }
}

// WithStore injects an embedding store instead of connecting via config.
func WithStore(s *embedstore.Store) Option {
	return func(a *App) { a.store = s }
}

// WithInput sets the transcript source. Defaults to stdin.
func WithInput(r io.Reader) Option {
	return func(a *App) { a.in = r }
}

// WithOutput sets the match sink. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithLogLevel hands the App the level var backing the process logger so
// config reloads can adjust verbosity.
func WithLogLevel(lv *slog.LevelVar) Option {
	return func(a *App) { a.logLevel = lv }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry).
//
// New performs all initialisation synchronously: library construction, store
// connection and schema check, engine assembly and the diagnostics listener.
// The embedding backend itself is constructed by main.go so the provider
// registry stays out of this package.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	a := &App{
		cfg:       cfg,
		providers: providers,
		in:        os.Stdin,
		out:       os.Stdout,
	}
	for _, o := range opts {
		o(a)
	}

	a.matchOpts = matchOptions(cfg.Matching)

	if a.library == nil {
		a.library = scripture.NewLibrary(scripture.WithCorpusDir(cfg.Library.CorpusDir))
	}

	if err := a.initStore(ctx); err != nil {
		return nil, fmt.Errorf("app: init store: %w", err)
	}

	a.initMatcher()

	if err := a.initDiagnostics(); err != nil {
		return nil, fmt.Errorf("app: init diagnostics: %w", err)
	}

	return a, nil
}

// initStore connects to the pgvector store when a DSN is configured and an
// embedding backend exists to fill it.
func (a *App) initStore(ctx context.Context) error {
	if a.store != nil || a.cfg.Store.PostgresDSN == "" {
		return nil
	}
	if a.providers.Embeddings == nil {
		slog.Warn("store.postgres_dsn is set but no embedding backend is configured; skipping store")
		return nil
	}

	store, err := embedstore.New(ctx, a.cfg.Store.PostgresDSN, a.providers.Embeddings.ModelID())
	if err != nil {
		return err
	}
	if err := store.EnsureSchema(ctx, a.providers.Embeddings.Dimensions()); err != nil {
		store.Close()
		return err
	}
	a.store = store
	a.closers = append(a.closers, func() error {
		store.Close()
		return nil
	})
	slog.Info("embedding store connected", "model", a.providers.Embeddings.ModelID())
	return nil
}

// initMatcher assembles the matching engine from whatever subsystems exist.
func (a *App) initMatcher() {
	engOpts := []engine.Option{}
	if a.cfg.Library.DefaultTranslation != "" {
		engOpts = append(engOpts, engine.WithDefaultTranslation(a.cfg.Library.DefaultTranslation))
	}
	if a.providers.Embeddings != nil {
		engOpts = append(engOpts, engine.WithEmbeddings(a.providers.Embeddings))
	}
	if a.store != nil {
		engOpts = append(engOpts, engine.WithEmbeddingStore(a.store))
	}
	a.matcher = engine.New(a.library, engOpts...)
}

// initDiagnostics starts the metrics and health listener when configured.
func (a *App) initDiagnostics() error {
	addr := a.cfg.Server.MetricsAddr
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(a.healthCheckers()...).Register(mux)

	a.diagSrv = &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := a.diagSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("diagnostics server error", "addr", addr, "err", err)
		}
	}()
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.diagSrv.Shutdown(ctx)
	})

	slog.Info("diagnostics listening", "addr", addr)
	return nil
}

// healthCheckers builds the readiness checks for the subsystems in use.
func (a *App) healthCheckers() []health.Checker {
	checks := []health.Checker{
		{
			Name: "library",
			Check: func(context.Context) error {
				if len(a.library.Translations()) == 0 {
					return errors.New("no translations loaded")
				}
				return nil
			},
		},
	}
	if a.store != nil {
		checks = append(checks, health.Checker{
			Name:  "store",
			Check: a.store.Ping,
		})
	}
	if a.providers.Embeddings != nil {
		checks = append(checks, health.Checker{
			Name: "embeddings",
			Check: func(context.Context) error {
				if !a.matcher.SemanticActive() {
					return errors.New("semantic scoring degraded")
				}
				return nil
			},
		})
	}
	return checks
}

// Matcher returns the assembled engine, for callers that drive it directly.
func (a *App) Matcher() *engine.Matcher {
	return a.matcher
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// outputLine is the NDJSON record emitted for each analysed transcript chunk
// that produced at least one match.
type outputLine struct {
	Text        string        `json:"text"`
	Translation string        `json:"translation"`
	Matches     []outputMatch `json:"matches"`
}

type outputMatch struct {
	Reference  string  `json:"reference"`
	Confidence float64 `json:"confidence"`
	Phrase     string  `json:"phrase,omitempty"`
	VerseText  string  `json:"verse_text"`
	Citation   bool    `json:"citation,omitempty"`
}

// Run reads transcript chunks line by line from the input, analyses each and
// writes an NDJSON record per chunk that matched. It blocks until the input
// is exhausted or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	enc := json.NewEncoder(a.out)
	scanner := bufio.NewScanner(a.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		lineCtx, span := observe.StartSpan(ctx, "app.ProcessLine")
		res := a.matcher.Analyze(lineCtx, line, a.currentOpts())
		span.End()
		if len(res.Matches) == 0 {
			continue
		}

		out := outputLine{
			Text:        line,
			Translation: res.TranslationID,
			Matches:     make([]outputMatch, 0, len(res.Matches)),
		}
		for _, m := range res.Matches {
			out.Matches = append(out.Matches, outputMatch{
				Reference:  m.Ref.String(),
				Confidence: m.Confidence,
				Phrase:     m.Phrase,
				VerseText:  m.VerseText,
				Citation:   m.FromCitation,
			})
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("app: write output: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("app: read input: %w", err)
	}
	return nil
}

func (a *App) currentOpts() engine.Options {
	a.matchMu.RLock()
	defer a.matchMu.RUnlock()
	return a.matchOpts
}

// matchOptions converts the config matching block to engine options; zero
// config values fall through to the engine defaults.
func matchOptions(mc config.MatchingConfig) engine.Options {
	return engine.Options{
		MinConfidence:   mc.MinConfidence,
		MaxResults:      mc.MaxResults,
		MinWords:        mc.MinWords,
		CandidateLimit:  mc.CandidateLimit,
		DisableSemantic: mc.DisableSemantic,
	}
}

// ─── Hot reload ──────────────────────────────────────────────────────────────

// ApplyDiff applies a reloaded configuration. Matching thresholds and the log
// level take effect immediately; a library change triggers a refresh; changes
// that need a restart are logged and skipped.
func (a *App) ApplyDiff(d config.ConfigDiff) {
	if d.MatchingChanged {
		a.matchMu.Lock()
		a.matchOpts = matchOptions(d.NewMatching)
		a.matchMu.Unlock()
		slog.Info("matching thresholds reloaded")
	}
	if d.LogLevelChanged && a.logLevel != nil {
		a.logLevel.Set(slogLevel(d.NewLogLevel))
		slog.Info("log level changed", "level", d.NewLogLevel)
	}
	if d.LibraryChanged {
		a.matcher.Refresh()
		slog.Info("scripture library refreshed")
	}
	if d.RestartRequired {
		slog.Warn("config change requires a restart to take effect")
	}
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears down all subsystems in reverse-init order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
