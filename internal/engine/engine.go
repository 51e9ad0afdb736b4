// Package engine orchestrates the full matching pipeline: citation
// detection, transcript windowing, candidate retrieval, lexical and semantic
// scoring and final ranking.
//
// The central type is [Matcher]. It is safe for concurrent use; per-verse
// token and embedding caches are shared across calls and grow lazily as
// verses are scored for the first time.
//
// Everything optional degrades instead of failing: an unknown translation, a
// broken embedding backend or an unreachable vector store all narrow the
// pipeline (fewer signals, lexical-only scoring) but never surface an error
// from [Matcher.Analyze].
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/versematch/versematch/internal/embedstore"
	"github.com/versematch/versematch/internal/index"
	"github.com/versematch/versematch/internal/observe"
	"github.com/versematch/versematch/internal/refparse"
	"github.com/versematch/versematch/internal/resilience"
	"github.com/versematch/versematch/internal/scripture"
	"github.com/versematch/versematch/internal/textwin"
	"github.com/versematch/versematch/pkg/provider/embeddings"
)

const (
	// embedFailureLimit is how many consecutive embedding failures the engine
	// tolerates before it stops calling the backend for the rest of its
	// lifetime (until [Matcher.RetrySemantic]).
	embedFailureLimit = 3

	// nearestTopK is how many approximate neighbours the vector store
	// contributes to the candidate set per analysis.
	nearestTopK = 20

	// warmBatchSize and warmConcurrency bound corpus warmup: batches of
	// verses per backend call, and concurrent in-flight batches.
	warmBatchSize   = 64
	warmConcurrency = 4
)

// Match is one accepted verse match.
type Match struct {
	// Ref is the canonical verse reference.
	Ref scripture.Reference

	// Confidence is the final score in [0, 1]. Explicit citations always
	// carry 1.
	Confidence float64

	// Phrase is the transcript fragment that produced the match: the raw
	// citation text, or the best-scoring window for a paraphrase.
	Phrase string

	// VerseText is the matched verse's full text in the selected translation.
	VerseText string

	// FromCitation reports whether the match came from an explicit citation
	// rather than paraphrase scoring.
	FromCitation bool
}

// Result is the outcome of one [Matcher.Analyze] call. An empty Matches slice
// is the normal outcome for most transcript chunks.
type Result struct {
	// TranslationID is the corpus the matches were resolved against.
	TranslationID string

	Matches []Match
}

// Matcher ties the scripture library, the lazy full-text indexes and the
// optional embedding backend into one analysis pipeline.
type Matcher struct {
	library *scripture.Library
	indexes *index.Cache

	provider embeddings.Provider
	store    *embedstore.Store
	metrics  *observe.Metrics

	defaultTranslation string
	windowCfg          textwin.Config

	// semBreaker latches semantic scoring off after embedFailureLimit
	// consecutive backend failures. semDisabled marks a backend that was
	// misconfigured at construction time and never participates.
	semBreaker  *resilience.Breaker
	semDisabled bool

	tokMu       sync.RWMutex
	verseTokens map[string]*verseData

	embMu     sync.RWMutex
	verseVecs map[string][]float32
	embGroup  singleflight.Group
}

// Option configures a [Matcher] at construction time.
type Option func(*Matcher)

// WithEmbeddings enables semantic scoring through p. Without this option the
// engine scores lexically only.
func WithEmbeddings(p embeddings.Provider) Option {
	return func(m *Matcher) { m.provider = p }
}

// WithEmbeddingStore persists verse embeddings in s and uses its
// nearest-neighbour search as an extra candidate source. Only useful together
// with [WithEmbeddings].
func WithEmbeddingStore(s *embedstore.Store) Option {
	return func(m *Matcher) { m.store = s }
}

// WithMetrics records engine metrics on met instead of the package default.
func WithMetrics(met *observe.Metrics) Option {
	return func(m *Matcher) { m.metrics = met }
}

// WithDefaultTranslation sets the translation used when a call does not name
// one. Defaults to "kjv".
func WithDefaultTranslation(id string) Option {
	return func(m *Matcher) { m.defaultTranslation = id }
}

// WithWindowConfig overrides the transcript windowing parameters.
func WithWindowConfig(cfg textwin.Config) Option {
	return func(m *Matcher) { m.windowCfg = cfg }
}

// New creates a Matcher over library. library must not be nil.
func New(library *scripture.Library, opts ...Option) *Matcher {
	m := &Matcher{
		library:            library,
		metrics:            observe.DefaultMetrics(),
		defaultTranslation: "kjv",
		verseTokens:        make(map[string]*verseData),
		verseVecs:          make(map[string][]float32),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.indexes = index.NewCache(library, index.WithMetrics(m.metrics))
	m.semBreaker = resilience.NewBreaker(resilience.BreakerConfig{
		Name:      "semantic",
		Threshold: embedFailureLimit,
		OnTrip: func(err error) {
			slog.Warn("engine: semantic scoring disabled after repeated embedding failures",
				"model", m.provider.ModelID(), "error", err)
		},
	})

	if m.provider != nil && m.provider.Dimensions() <= 0 {
		slog.Warn("engine: embedding backend reports no dimensions, semantic scoring disabled",
			"model", m.provider.ModelID())
		m.semDisabled = true
	}
	return m
}

// Analyze runs the full pipeline on one transcript chunk. Explicit citations
// take precedence: when at least one citation resolves to verses, paraphrase
// scoring is skipped entirely. Analyze never fails; anything that goes wrong
// narrows the result instead.
func (m *Matcher) Analyze(ctx context.Context, text string, opts Options) Result {
	opts = opts.withDefaults(m.defaultTranslation)
	ctx, span := observe.StartSpan(ctx, "engine.Analyze")
	defer span.End()
	start := time.Now()

	res := Result{TranslationID: opts.TranslationID}

	t := m.library.Translation(opts.TranslationID)
	if t == nil {
		slog.Warn("engine: unknown translation, skipping analysis", "translation", opts.TranslationID)
		return res
	}

	if dets := refparse.Detect(text, t); len(dets) > 0 {
		res.Matches = citationMatches(dets, opts.MaxResults)
		if len(res.Matches) > 0 {
			m.metrics.RecordAnalyze(ctx, "citation", len(res.Matches), time.Since(start))
			return res
		}
	}

	if len(strings.Fields(text)) < opts.MinWords {
		return res
	}

	windows := textwin.Build(text, m.windowCfg)
	if len(windows) == 0 {
		return res
	}
	res.Matches = m.matchParaphrase(ctx, t, windows, opts)
	m.metrics.RecordAnalyze(ctx, "paraphrase", len(res.Matches), time.Since(start))
	return res
}

// citationMatches flattens resolved detections into matches, preserving
// citation order and capping at max.
func citationMatches(dets []refparse.Detection, max int) []Match {
	var out []Match
	for _, d := range dets {
		for _, v := range d.Verses {
			out = append(out, Match{
				Ref:          v.Ref,
				Confidence:   1,
				Phrase:       d.Raw,
				VerseText:    v.Text,
				FromCitation: true,
			})
			if len(out) >= max {
				return out
			}
		}
	}
	return out
}

func (m *Matcher) matchParaphrase(ctx context.Context, t *scripture.Translation, windows []textwin.Window, opts Options) []Match {
	wds := make([]*windowData, len(windows))
	for i, w := range windows {
		wds[i] = newWindowData(w)
	}

	semantic := !opts.DisableSemantic && m.semanticAvailable()
	if semantic {
		for _, wd := range wds {
			vec, err := m.embed(ctx, wd.win.Text)
			if err != nil {
				slog.Warn("engine: window embedding failed, scoring lexically", "error", err)
				semantic = false
				break
			}
			wd.vec = vec
		}
	}

	cands := m.gatherCandidates(t.ID, windows, opts.CandidateLimit)
	if semantic && m.store != nil {
		cands = m.augmentNearest(ctx, t, wds, cands, opts.CandidateLimit)
	}

	best := make(map[scripture.Reference]*scoredVerse)
	for _, cand := range cands {
		vd := m.verseDataFor(ctx, t.ID, cand.ref, cand.text)

		var vvec []float32
		if semantic {
			vec, err := m.verseVecFor(ctx, t.ID, cand.ref, cand.text)
			if err != nil {
				slog.Debug("engine: verse embedding unavailable, scoring pair lexically",
					"ref", cand.ref.String(), "error", err)
			} else {
				vvec = vec
			}
		}

		for _, wd := range wds {
			score, ok := pairScore(wd, vd, vvec, semantic)
			if !ok {
				continue
			}
			if cur, seen := best[cand.ref]; !seen || score > cur.score {
				best[cand.ref] = &scoredVerse{
					ref:    cand.ref,
					text:   cand.text,
					score:  score,
					phrase: wd.win.Text,
				}
			}
		}
	}

	return rankMatches(best, opts.MinConfidence, opts.MaxResults)
}

// augmentNearest adds approximate nearest neighbours of the widest window to
// the candidate set, up to limit. Store failures are logged and ignored.
func (m *Matcher) augmentNearest(ctx context.Context, t *scripture.Translation, wds []*windowData, cands []candidate, limit int) []candidate {
	if len(wds) == 0 || len(wds[0].vec) == 0 || len(cands) >= limit {
		return cands
	}
	neighbors, err := m.store.Nearest(ctx, t.ID, wds[0].vec, nearestTopK)
	if err != nil {
		slog.Debug("engine: nearest-neighbour lookup failed", "translation", t.ID, "error", err)
		return cands
	}

	seen := make(map[scripture.Reference]bool, len(cands))
	for _, c := range cands {
		seen[c.ref] = true
	}
	for _, n := range neighbors {
		if seen[n.Ref] {
			continue
		}
		text, ok := t.VerseText(n.Ref)
		if !ok {
			continue
		}
		cands = append(cands, candidate{ref: n.Ref, text: text})
		if len(cands) >= limit {
			break
		}
	}
	return cands
}

func verseKey(translationID string, ref scripture.Reference) string {
	return translationID + "\x00" + ref.String()
}

// verseDataFor returns the cached token form of one verse, building it on
// first use.
func (m *Matcher) verseDataFor(ctx context.Context, translationID string, ref scripture.Reference, text string) *verseData {
	key := verseKey(translationID, ref)
	m.tokMu.RLock()
	vd := m.verseTokens[key]
	m.tokMu.RUnlock()
	m.metrics.RecordCacheEvent(ctx, "tokens", vd != nil)
	if vd != nil {
		return vd
	}
	vd = newVerseData(text)
	m.tokMu.Lock()
	m.verseTokens[key] = vd
	m.tokMu.Unlock()
	return vd
}

// verseVecFor returns the embedding of one verse through a read-through
// cache: memory, then the persistent store, then the backend. Concurrent
// requests for the same verse share one backend call.
func (m *Matcher) verseVecFor(ctx context.Context, translationID string, ref scripture.Reference, text string) ([]float32, error) {
	key := verseKey(translationID, ref)
	m.embMu.RLock()
	vec := m.verseVecs[key]
	m.embMu.RUnlock()
	m.metrics.RecordCacheEvent(ctx, "embeddings", vec != nil)
	if vec != nil {
		return vec, nil
	}

	v, err, _ := m.embGroup.Do(key, func() (any, error) {
		m.embMu.RLock()
		cached := m.verseVecs[key]
		m.embMu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		if m.store != nil {
			stored, ok, err := m.store.Get(ctx, translationID, ref)
			if err != nil {
				slog.Debug("engine: embedding store read failed", "ref", ref.String(), "error", err)
			} else if ok {
				m.storeVec(key, stored)
				return stored, nil
			}
		}

		vec, err := m.embed(ctx, text)
		if err != nil {
			return nil, err
		}
		m.storeVec(key, vec)
		if m.store != nil {
			if err := m.store.Put(ctx, translationID, ref, vec); err != nil {
				slog.Debug("engine: embedding store write failed", "ref", ref.String(), "error", err)
			}
		}
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

func (m *Matcher) storeVec(key string, vec []float32) {
	m.embMu.Lock()
	m.verseVecs[key] = vec
	m.embMu.Unlock()
}

// embed calls the backend once through the semantic failure latch.
func (m *Matcher) embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	var vec []float32
	err := m.semBreaker.Do(func() error {
		var callErr error
		vec, callErr = m.provider.Embed(ctx, text)
		return callErr
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.metrics.RecordEmbed(ctx, m.provider.ModelID(), status, time.Since(start))
	return vec, err
}

func (m *Matcher) semanticAvailable() bool {
	return m.provider != nil && !m.semDisabled && !m.semBreaker.Tripped()
}

// SemanticActive reports whether semantic scoring is currently in use.
func (m *Matcher) SemanticActive() bool {
	return m.semanticAvailable()
}

// breakerResetter is implemented by providers that carry per-backend
// breakers of their own, such as [resilience.EmbedFallback].
type breakerResetter interface {
	ResetBreakers()
}

// RetrySemantic re-arms semantic scoring after the failure latch tripped.
// Providers that implement [breakerResetter] have their backend breakers
// re-armed as well. A backend disabled at construction time stays disabled.
func (m *Matcher) RetrySemantic() {
	if m.provider == nil {
		return
	}
	m.semBreaker.ReArm()
	if r, ok := m.provider.(breakerResetter); ok {
		r.ResetBreakers()
	}
}

// DetectReferences exposes citation detection on its own, without paraphrase
// scoring. It returns nil when the translation is unknown.
func (m *Matcher) DetectReferences(text, translationID string) []refparse.Detection {
	if translationID == "" {
		translationID = m.defaultTranslation
	}
	t := m.library.Translation(translationID)
	if t == nil {
		return nil
	}
	return refparse.Detect(text, t)
}

// Search runs a raw full-text query against one translation's index. Fails
// open: an unknown translation yields no results.
func (m *Matcher) Search(translationID, query string, limit int, suggest bool) []index.Result {
	if translationID == "" {
		translationID = m.defaultTranslation
	}
	return m.indexes.Search(translationID, query, limit, index.Options{Suggest: suggest})
}

// Warm builds the full-text index for one translation and, when a backend is
// configured, precomputes every verse embedding. Unlike Analyze this is an
// explicit operation and reports failures.
func (m *Matcher) Warm(ctx context.Context, translationID string) error {
	if translationID == "" {
		translationID = m.defaultTranslation
	}
	if _, err := m.indexes.Get(translationID); err != nil {
		return fmt.Errorf("engine: warm %q: %w", translationID, err)
	}
	if !m.semanticAvailable() {
		return nil
	}
	t := m.library.Translation(translationID)
	if t == nil {
		return fmt.Errorf("engine: warm %q: unknown translation", translationID)
	}

	verses := t.Verses()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for start := 0; start < len(verses); start += warmBatchSize {
		end := start + warmBatchSize
		if end > len(verses) {
			end = len(verses)
		}
		batch := verses[start:end]
		g.Go(func() error {
			return m.warmBatch(ctx, translationID, batch)
		})
	}
	return g.Wait()
}

func (m *Matcher) warmBatch(ctx context.Context, translationID string, batch []scripture.VerseEntry) error {
	var (
		texts []string
		keys  []string
		refs  []scripture.Reference
	)
	for _, v := range batch {
		key := verseKey(translationID, v.Ref)
		m.embMu.RLock()
		_, ok := m.verseVecs[key]
		m.embMu.RUnlock()
		if ok {
			continue
		}
		texts = append(texts, v.Text)
		keys = append(keys, key)
		refs = append(refs, v.Ref)
	}
	if len(texts) == 0 {
		return nil
	}

	start := time.Now()
	vecs, err := m.provider.EmbedBatch(ctx, texts)
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.metrics.RecordEmbed(ctx, m.provider.ModelID(), status, time.Since(start))
	if err != nil {
		return fmt.Errorf("engine: warm batch: %w", err)
	}

	for i, vec := range vecs {
		m.storeVec(keys[i], vec)
		if m.store != nil {
			if err := m.store.Put(ctx, translationID, refs[i], vec); err != nil {
				slog.Debug("engine: embedding store write failed", "ref", refs[i].String(), "error", err)
			}
		}
	}
	return nil
}

// Refresh reloads the scripture library from disk and drops every derived
// cache, so the next analysis sees the new corpus set.
func (m *Matcher) Refresh() {
	m.library.Refresh()
	m.Reset()
}

// Reset drops all derived caches (indexes, verse tokens, verse embeddings)
// while keeping the library as-is.
func (m *Matcher) Reset() {
	m.indexes.Reset()
	m.tokMu.Lock()
	m.verseTokens = make(map[string]*verseData)
	m.tokMu.Unlock()
	m.embMu.Lock()
	m.verseVecs = make(map[string][]float32)
	m.embMu.Unlock()
}

// IndexBuilds reports how many full-text index builds have completed. Useful
// for verifying that concurrent analyses share one build.
func (m *Matcher) IndexBuilds() int64 {
	return m.indexes.Builds()
}

// Library returns the underlying scripture library.
func (m *Matcher) Library() *scripture.Library {
	return m.library
}
