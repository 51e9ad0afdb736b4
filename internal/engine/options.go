package engine

// Defaults for per-call analysis options. All of them are caller-tunable;
// they are configuration, not physical constants, and were chosen against a
// hand-labelled sermon transcript set.
const (
	// DefaultMinConfidence is the minimum penalized score a candidate needs
	// to be accepted as a match.
	DefaultMinConfidence = 0.6

	// DefaultMaxResults caps the ranked result list.
	DefaultMaxResults = 3

	// DefaultMinWords is the minimum transcript word count below which
	// analysis returns immediately without touching the index.
	DefaultMinWords = 4

	// DefaultCandidateLimit bounds the merged candidate set per analysis.
	DefaultCandidateLimit = 120

	// MinCandidateLimit is the lowest candidate limit a caller may request;
	// below this recall collapses.
	MinCandidateLimit = 30
)

// Options tunes one Analyze call. The zero value takes every default and the
// engine's default translation.
type Options struct {
	// TranslationID selects the corpus to match against. Empty means the
	// engine default.
	TranslationID string

	// MinConfidence overrides DefaultMinConfidence when > 0.
	MinConfidence float64

	// MaxResults overrides DefaultMaxResults when > 0.
	MaxResults int

	// MinWords overrides DefaultMinWords when > 0.
	MinWords int

	// CandidateLimit overrides DefaultCandidateLimit when > 0 and is clamped
	// to at least MinCandidateLimit.
	CandidateLimit int

	// DisableSemantic forces lexical-only scoring for this call even when an
	// embedding backend is available. Use when the call must stay inside a
	// strict latency budget.
	DisableSemantic bool
}

func (o Options) withDefaults(defaultTranslation string) Options {
	if o.TranslationID == "" {
		o.TranslationID = defaultTranslation
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultMinConfidence
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.MinWords <= 0 {
		o.MinWords = DefaultMinWords
	}
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = DefaultCandidateLimit
	} else if o.CandidateLimit < MinCandidateLimit {
		o.CandidateLimit = MinCandidateLimit
	}
	return o
}
