package scripture

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// snapshot is one immutable, fully-built view of the library. The Library
// swaps snapshots atomically on refresh; readers that already obtained a
// snapshot keep a consistent view for the rest of their call.
type snapshot struct {
	translations map[string]*Translation
	summaries    []Summary
	aliases      []aliasEntry
}

// Library owns all installed translations and their alias index.
//
// Construction is cheap; corpora are loaded on first use and memoized.
// A zero-value Library is not usable — use [NewLibrary].
type Library struct {
	dir     string
	builtin []*CorpusFile

	loadMu sync.Mutex
	snap   atomic.Pointer[snapshot]
}

// LibraryOption configures a [Library].
type LibraryOption func(*Library)

// WithCorpusDir sets the directory scanned for user-supplied corpus YAML
// files (*.yaml, *.yml). An empty dir means builtin corpora only.
func WithCorpusDir(dir string) LibraryOption {
	return func(l *Library) {
		l.dir = dir
	}
}

// WithBuiltin replaces the embedded builtin corpora. Intended for tests that
// need a controlled corpus.
func WithBuiltin(corpora ...*CorpusFile) LibraryOption {
	return func(l *Library) {
		l.builtin = corpora
	}
}

// NewLibrary creates a library over the embedded builtin corpora plus any
// corpus files found via [WithCorpusDir]. No I/O happens until first use.
func NewLibrary(opts ...LibraryOption) *Library {
	l := &Library{builtin: builtinTranslations}
	for _, o := range opts {
		o(l)
	}
	return l
}

// load returns the current snapshot, building it on first use.
func (l *Library) load() *snapshot {
	if s := l.snap.Load(); s != nil {
		return s
	}
	l.loadMu.Lock()
	defer l.loadMu.Unlock()
	if s := l.snap.Load(); s != nil {
		return s
	}
	s := l.build()
	l.snap.Store(s)
	return s
}

// Refresh discards the memoized state and rebuilds the library from its
// sources, replacing the snapshot atomically. Call after installing a new
// corpus file.
func (l *Library) Refresh() {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()
	l.snap.Store(l.build())
}

// build loads every corpus source. Malformed sources are skipped with a
// warning; build never fails.
func (l *Library) build() *snapshot {
	var translations []*Translation

	for _, cf := range l.builtin {
		t, err := cf.Build()
		if err != nil {
			slog.Warn("skipping builtin corpus", "id", cf.Translation.ID, "error", err)
			continue
		}
		t.Builtin = true
		translations = append(translations, t)
	}

	if l.dir != "" {
		translations = append(translations, l.loadDir()...)
	}

	s := &snapshot{translations: make(map[string]*Translation, len(translations))}
	for _, t := range translations {
		if _, dup := s.translations[t.ID]; dup {
			slog.Warn("duplicate translation id, keeping first", "id", t.ID)
			continue
		}
		s.translations[t.ID] = t
		s.summaries = append(s.summaries, t.Summary())
	}
	sort.Slice(s.summaries, func(i, j int) bool { return s.summaries[i].ID < s.summaries[j].ID })

	ordered := make([]*Translation, 0, len(s.summaries))
	for _, sum := range s.summaries {
		ordered = append(ordered, s.translations[sum.ID])
	}
	s.aliases = buildAliases(ordered)
	return s
}

// loadDir reads every corpus file in the configured directory. Unreadable or
// malformed files are skipped, never fatal.
func (l *Library) loadDir() []*Translation {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		slog.Warn("cannot read corpus directory", "dir", l.dir, "error", err)
		return nil
	}

	var out []*Translation
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(l.dir, e.Name())
		cf, err := LoadCorpusFile(path)
		if err != nil {
			slog.Warn("skipping corpus file", "path", path, "error", err)
			continue
		}
		t, err := cf.Build()
		if err != nil {
			slog.Warn("skipping corpus file", "path", path, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out
}

// Translations lists the summaries of every translation that could be loaded.
// It never fails; at worst it returns an empty slice.
func (l *Library) Translations() []Summary {
	return l.load().summaries
}

// Translation returns the full translation for id, or nil when id is unknown.
func (l *Library) Translation(id string) *Translation {
	return l.load().translations[id]
}
