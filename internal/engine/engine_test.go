package engine_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/versematch/versematch/internal/engine"
	"github.com/versematch/versematch/internal/scripture"
	"github.com/versematch/versematch/pkg/provider/embeddings/mock"
)

// john316Quote is a near-verbatim spoken rendition of John 3:16, with no
// explicit citation attached.
const john316Quote = "For God so loved the world that he gave his only begotten son " +
	"that whosoever believes in him should not perish but have everlasting life"

// shepherdParaphrase shares only two content tokens with Psalms 23:1, so it
// cannot clear the confidence threshold on lexical evidence alone.
const shepherdParaphrase = "the lord is the one who shepherds me and I lack nothing"

// shepherdEmbedder maps any text mentioning a shepherd onto one axis and
// everything else onto the other, making the paraphrase and Psalms 23:1
// semantically identical.
func shepherdEmbedder() *mock.Provider {
	return &mock.Provider{
		DimensionsValue: 2,
		ModelIDValue:    "mock-shepherd",
		EmbedFunc: func(text string) []float32 {
			if strings.Contains(strings.ToLower(text), "shepherd") {
				return []float32{1, 0}
			}
			return []float32{0, 1}
		},
	}
}

func newMatcher(t *testing.T, opts ...engine.Option) *engine.Matcher {
	t.Helper()
	return engine.New(scripture.NewLibrary(), opts...)
}

func TestAnalyze_CitationWins(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Analyze(context.Background(), "John 3:16 says for God so loved the world", engine.Options{})
	if res.TranslationID != "kjv" {
		t.Errorf("TranslationID: got %q, want kjv", res.TranslationID)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(res.Matches))
	}
	match := res.Matches[0]
	if !match.FromCitation {
		t.Error("match should come from the citation path")
	}
	if match.Confidence != 1 {
		t.Errorf("citation confidence: got %v, want 1", match.Confidence)
	}
	want := scripture.Reference{Book: "John", Chapter: 3, Verse: 16}
	if match.Ref != want {
		t.Errorf("ref: got %v, want %v", match.Ref, want)
	}
	if match.Phrase != "John 3:16" {
		t.Errorf("phrase: got %q, want the raw citation", match.Phrase)
	}
	if !strings.Contains(match.VerseText, "only begotten Son") {
		t.Errorf("verse text: got %q", match.VerseText)
	}
}

func TestAnalyze_ChapterCitationCapped(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Analyze(context.Background(), "turn with me to Psalms 23 tonight", engine.Options{})
	if len(res.Matches) != engine.DefaultMaxResults {
		t.Fatalf("got %d matches, want %d", len(res.Matches), engine.DefaultMaxResults)
	}
	for i, match := range res.Matches {
		if !match.FromCitation {
			t.Errorf("match %d should be a citation match", i)
		}
		if match.Ref.Verse != i+1 {
			t.Errorf("match %d: got verse %d, want %d", i, match.Ref.Verse, i+1)
		}
	}

	res = m.Analyze(context.Background(), "turn with me to Psalms 23 tonight", engine.Options{MaxResults: 2})
	if len(res.Matches) != 2 {
		t.Errorf("got %d matches, want MaxResults=2 honored", len(res.Matches))
	}
}

func TestAnalyze_ShortTextSkipped(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Analyze(context.Background(), "amen brother", engine.Options{})
	if len(res.Matches) != 0 {
		t.Errorf("short text should yield no matches, got %d", len(res.Matches))
	}
	if got := m.IndexBuilds(); got != 0 {
		t.Errorf("short text should not touch the index, got %d builds", got)
	}
}

func TestAnalyze_LexicalParaphrase(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Analyze(context.Background(), john316Quote, engine.Options{})
	if len(res.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(res.Matches))
	}
	match := res.Matches[0]
	if match.FromCitation {
		t.Error("paraphrase match should not be flagged as a citation")
	}
	want := scripture.Reference{Book: "John", Chapter: 3, Verse: 16}
	if match.Ref != want {
		t.Errorf("ref: got %v, want %v", match.Ref, want)
	}
	if match.Confidence < engine.DefaultMinConfidence || match.Confidence > 1 {
		t.Errorf("confidence out of range: %v", match.Confidence)
	}
	if match.Phrase == "" {
		t.Error("match should carry the source window text")
	}
}

func TestAnalyze_UnrelatedText(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Analyze(context.Background(),
		"the weather forecast for tomorrow calls for heavy rain across the valley region",
		engine.Options{})
	if len(res.Matches) != 0 {
		t.Errorf("unrelated text should yield no matches, got %+v", res.Matches)
	}
}

func TestAnalyze_UnknownTranslation(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	res := m.Analyze(context.Background(), john316Quote, engine.Options{TranslationID: "nope"})
	if res.TranslationID != "nope" {
		t.Errorf("TranslationID: got %q, want nope", res.TranslationID)
	}
	if len(res.Matches) != 0 {
		t.Errorf("unknown translation should yield zero matches, got %d", len(res.Matches))
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	a := m.Analyze(context.Background(), john316Quote, engine.Options{})
	b := m.Analyze(context.Background(), john316Quote, engine.Options{})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", a, b)
	}
}

func TestAnalyze_IndexBuiltOnce(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	m.Analyze(context.Background(), john316Quote, engine.Options{})
	m.Analyze(context.Background(), shepherdParaphrase, engine.Options{})
	if got := m.IndexBuilds(); got != 1 {
		t.Errorf("IndexBuilds: got %d, want 1", got)
	}

	m.Reset()
	m.Analyze(context.Background(), john316Quote, engine.Options{})
	if got := m.IndexBuilds(); got != 2 {
		t.Errorf("IndexBuilds after Reset: got %d, want 2", got)
	}
}

func TestAnalyze_SemanticLiftsParaphrase(t *testing.T) {
	t.Parallel()
	provider := shepherdEmbedder()
	lexOnly := newMatcher(t)
	semantic := newMatcher(t, engine.WithEmbeddings(provider))

	// Two shared tokens against a three-token verse is not enough lexically.
	res := lexOnly.Analyze(context.Background(), shepherdParaphrase, engine.Options{})
	if len(res.Matches) != 0 {
		t.Fatalf("lexical-only matcher should reject the paraphrase, got %+v", res.Matches)
	}

	res = semantic.Analyze(context.Background(), shepherdParaphrase, engine.Options{})
	if len(res.Matches) != 1 {
		t.Fatalf("semantic matcher: got %d matches, want 1", len(res.Matches))
	}
	match := res.Matches[0]
	want := scripture.Reference{Book: "Psalms", Chapter: 23, Verse: 1}
	if match.Ref != want {
		t.Errorf("ref: got %v, want %v", match.Ref, want)
	}
	if match.Confidence < 0.66 || match.Confidence > 0.68 {
		t.Errorf("confidence: got %v, want about 0.67", match.Confidence)
	}

	// A higher threshold rejects the same pair again.
	res = semantic.Analyze(context.Background(), shepherdParaphrase, engine.Options{MinConfidence: 0.7})
	if len(res.Matches) != 0 {
		t.Errorf("raised threshold should reject the match, got %+v", res.Matches)
	}
}

func TestAnalyze_WeakEvidenceRejectedWithSemanticActive(t *testing.T) {
	t.Parallel()
	// One shared token with Psalms 23:1, no shared bigrams, and orthogonal
	// embeddings: the pair fails the overlap gate and the semantic gate.
	provider := &mock.Provider{
		DimensionsValue: 2,
		ModelIDValue:    "mock-orthogonal",
		EmbedFunc: func(text string) []float32 {
			if strings.Contains(strings.ToLower(text), "quantum") {
				return []float32{1, 0}
			}
			return []float32{0, 1}
		},
	}
	m := newMatcher(t, engine.WithEmbeddings(provider))

	res := m.Analyze(context.Background(), "the shepherd quantum circuits hum tremendously", engine.Options{})
	if len(res.Matches) != 0 {
		t.Errorf("pair failing both gates must not match, got %+v", res.Matches)
	}
	if len(provider.EmbedCalls) < 2 {
		t.Errorf("semantic scoring should have been consulted, got %d backend calls", len(provider.EmbedCalls))
	}
}

func TestAnalyze_DisableSemantic(t *testing.T) {
	t.Parallel()
	provider := shepherdEmbedder()
	m := newMatcher(t, engine.WithEmbeddings(provider))

	res := m.Analyze(context.Background(), shepherdParaphrase, engine.Options{DisableSemantic: true})
	if len(res.Matches) != 0 {
		t.Errorf("DisableSemantic should fall back to lexical scoring, got %+v", res.Matches)
	}
	if len(provider.EmbedCalls) != 0 {
		t.Errorf("backend should not be called, got %d calls", len(provider.EmbedCalls))
	}
}

func TestAnalyze_EmbedFailureTripsBreaker(t *testing.T) {
	t.Parallel()
	provider := &mock.Provider{
		DimensionsValue: 2,
		ModelIDValue:    "mock-broken",
		EmbedErr:        errors.New("backend down"),
	}
	m := newMatcher(t, engine.WithEmbeddings(provider))

	if !m.SemanticActive() {
		t.Fatal("semantic scoring should start active")
	}

	// Each analysis attempts one window embedding, fails, and falls back to
	// lexical scoring. The lexical result is unaffected.
	for i := 0; i < 3; i++ {
		res := m.Analyze(context.Background(), john316Quote, engine.Options{})
		if len(res.Matches) != 1 {
			t.Fatalf("analysis %d: got %d matches, want lexical fallback match", i, len(res.Matches))
		}
	}
	if m.SemanticActive() {
		t.Fatal("breaker should trip after three consecutive failures")
	}

	calls := len(provider.EmbedCalls)
	m.Analyze(context.Background(), john316Quote, engine.Options{})
	if len(provider.EmbedCalls) != calls {
		t.Errorf("tripped breaker should stop backend calls, got %d new", len(provider.EmbedCalls)-calls)
	}

	provider.EmbedErr = nil
	provider.EmbedFunc = func(string) []float32 { return []float32{1, 1} }
	m.RetrySemantic()
	if !m.SemanticActive() {
		t.Fatal("RetrySemantic should re-arm semantic scoring")
	}
	// RetrySemantic touches breakers only; the mock's recorded calls must
	// survive it and grow once the backend is consulted again.
	if len(provider.EmbedCalls) != calls {
		t.Errorf("RetrySemantic changed recorded calls: got %d, want %d", len(provider.EmbedCalls), calls)
	}
	m.Analyze(context.Background(), john316Quote, engine.Options{})
	if len(provider.EmbedCalls) <= calls {
		t.Error("backend should be called again after RetrySemantic")
	}
}

func TestWarm(t *testing.T) {
	t.Parallel()
	provider := shepherdEmbedder()
	m := newMatcher(t, engine.WithEmbeddings(provider))

	if err := m.Warm(context.Background(), "kjv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.IndexBuilds(); got != 1 {
		t.Errorf("IndexBuilds: got %d, want 1", got)
	}
	if len(provider.EmbedBatchCalls) == 0 {
		t.Fatal("warmup should batch-embed the corpus")
	}

	// A second warmup finds everything cached and stays off the backend.
	batches := len(provider.EmbedBatchCalls)
	if err := m.Warm(context.Background(), "kjv"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(provider.EmbedBatchCalls) != batches {
		t.Errorf("second warmup issued %d extra batches", len(provider.EmbedBatchCalls)-batches)
	}
}

func TestWarm_UnknownTranslation(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)
	if err := m.Warm(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown translation, got nil")
	}
}

func TestDetectReferences(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	dets := m.DetectReferences("see John 3:16 and Psalms 23:1", "")
	if len(dets) != 2 {
		t.Fatalf("got %d detections, want 2", len(dets))
	}
	if dets := m.DetectReferences("see John 3:16", "nope"); dets != nil {
		t.Errorf("unknown translation should yield nil, got %v", dets)
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()
	m := newMatcher(t)

	results := m.Search("", "the lord is my shepherd", 5, false)
	if len(results) == 0 {
		t.Fatal("expected search results against the default translation")
	}
	want := scripture.Reference{Book: "Psalms", Chapter: 23, Verse: 1}
	if results[0].Ref != want {
		t.Errorf("top result: got %v, want %v", results[0].Ref, want)
	}

	if got := m.Search("nope", "shepherd", 5, false); got != nil {
		t.Errorf("unknown translation should fail open with nil, got %v", got)
	}
}
