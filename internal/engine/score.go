package engine

import (
	"math"

	"github.com/versematch/versematch/internal/textwin"
)

// Scoring weights and gates. See options.go for the rationale on treating
// these as tunable configuration.
const (
	// Lexical score composition.
	tokenF1Weight    = 0.6
	bigramDiceWeight = 0.4

	// Combined score composition when semantic scoring is active.
	semanticWeight        = 0.7
	lexicalResidualWeight = 0.3

	// Overlap gate: a window/verse pair needs at least this many shared
	// tokens or this much bigram Dice before lexical evidence counts.
	minSharedTokens = 2
	minBigramDice   = 0.15

	// Semantic gate: with embeddings active, a rescaled cosine at or above
	// this admits a pair even with no lexical overlap.
	semanticGate = 0.62

	// Verses under shortVerseTokens tokens score artificially high on
	// overlap; their final score is multiplied by shortVersePenalty.
	shortVerseTokens  = 6
	shortVersePenalty = 0.85
)

// verseData caches the tokenized form of one verse. Entries are built once
// per reference and reused across calls.
type verseData struct {
	tokens    []string
	tokenSet  map[string]struct{}
	bigramSet map[string]struct{}
}

func newVerseData(text string) *verseData {
	tokens := textwin.Tokenize(text)
	return &verseData{
		tokens:    tokens,
		tokenSet:  toSet(tokens),
		bigramSet: toSet(textwin.Bigrams(tokens)),
	}
}

// windowData is the precomputed set form of one scoring window.
type windowData struct {
	win       textwin.Window
	tokenSet  map[string]struct{}
	bigramSet map[string]struct{}
	vec       []float32
}

func newWindowData(w textwin.Window) *windowData {
	return &windowData{
		win:       w,
		tokenSet:  toSet(w.Tokens),
		bigramSet: toSet(w.Bigrams),
	}
}

func toSet(items []string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// lexical holds the lexical similarity of one window/verse pair together
// with the raw evidence the gate needs.
type lexical struct {
	score        float64
	sharedTokens int
	bigramDice   float64
}

// lexicalSimilarity computes 0.6 × token-overlap F1 + 0.4 × bigram Dice.
// Precision is overlap over the window's token set, recall overlap over the
// verse's token set.
func lexicalSimilarity(w *windowData, v *verseData) lexical {
	var l lexical
	l.sharedTokens = intersectionSize(w.tokenSet, v.tokenSet)

	var f1 float64
	if l.sharedTokens > 0 {
		p := float64(l.sharedTokens) / float64(len(w.tokenSet))
		r := float64(l.sharedTokens) / float64(len(v.tokenSet))
		f1 = 2 * p * r / (p + r)
	}

	if len(w.bigramSet)+len(v.bigramSet) > 0 {
		shared := intersectionSize(w.bigramSet, v.bigramSet)
		l.bigramDice = 2 * float64(shared) / float64(len(w.bigramSet)+len(v.bigramSet))
	}

	l.score = tokenF1Weight*f1 + bigramDiceWeight*l.bigramDice
	return l
}

// cosineSimilarity returns the cosine of two vectors in [-1, 1], or 0 when
// either vector is empty or their lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// rescaleCosine maps a cosine in [-1, 1] onto [0, 1].
func rescaleCosine(c float64) float64 {
	return (c + 1) / 2
}

// pairScore scores one window/verse pair. accepted is false when the pair
// fails both the overlap gate and (when active) the semantic gate.
func pairScore(w *windowData, v *verseData, verseVec []float32, semantic bool) (score float64, accepted bool) {
	lex := lexicalSimilarity(w, v)

	var sem float64
	semOK := false
	if semantic && len(w.vec) > 0 && len(verseVec) > 0 {
		sem = rescaleCosine(cosineSimilarity(w.vec, verseVec))
		semOK = sem >= semanticGate
	}

	lexOK := lex.sharedTokens >= minSharedTokens || lex.bigramDice >= minBigramDice
	if !lexOK && !semOK {
		return 0, false
	}

	score = lex.score
	if semantic && len(w.vec) > 0 && len(verseVec) > 0 {
		score = semanticWeight*sem + lexicalResidualWeight*lex.score
	}
	if len(v.tokens) < shortVerseTokens {
		score *= shortVersePenalty
	}
	return score, true
}
