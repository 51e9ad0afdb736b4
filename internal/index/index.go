// Package index provides the per-translation keyword index used for
// paraphrase candidate retrieval, plus a process-lifetime cache that builds
// each index lazily on first use.
//
// The index is a plain inverted index over the normalized verse tokens
// produced by [textwin.Tokenize]. Exact search requires literal term hits;
// suggest mode additionally admits fuzzy vocabulary matches (Jaro-Winkler)
// and trades precision for recall, which retrieval uses as a fallback query
// mode — never as the only mode.
package index

import (
	"math"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/versematch/versematch/internal/scripture"
	"github.com/versematch/versematch/internal/textwin"
)

// suggestSimilarity is the minimum Jaro-Winkler score for a vocabulary term
// to stand in for an unmatched query term in suggest mode.
const suggestSimilarity = 0.86

// suggestExpansions caps how many vocabulary terms one query term may expand
// to in suggest mode.
const suggestExpansions = 2

// fuzzyWeight discounts the contribution of a fuzzy-matched term relative to
// an exact hit.
const fuzzyWeight = 0.8

// Result is one verse returned by a search, most relevant first.
type Result struct {
	Ref   scripture.Reference
	Text  string
	Score float64
}

// Options controls search behaviour.
type Options struct {
	// Suggest enables fuzzy (typo- and mistranscription-tolerant) term
	// matching at the cost of precision.
	Suggest bool
}

type posting struct {
	doc int
	tf  int
}

// Index is an immutable inverted index over one translation's verse text.
// Build one with [Build]; all methods are safe for concurrent use.
type Index struct {
	translationID string
	refs          []scripture.Reference
	texts         []string
	postings      map[string][]posting
	vocab         []string
}

// Build constructs the index for t by tokenizing every verse.
func Build(t *scripture.Translation) *Index {
	entries := t.Verses()
	ix := &Index{
		translationID: t.ID,
		refs:          make([]scripture.Reference, 0, len(entries)),
		texts:         make([]string, 0, len(entries)),
		postings:      make(map[string][]posting),
	}

	for _, e := range entries {
		doc := len(ix.refs)
		ix.refs = append(ix.refs, e.Ref)
		ix.texts = append(ix.texts, e.Text)

		counts := make(map[string]int)
		for _, tok := range textwin.Tokenize(e.Text) {
			counts[tok]++
		}
		for tok, tf := range counts {
			ix.postings[tok] = append(ix.postings[tok], posting{doc: doc, tf: tf})
		}
	}

	ix.vocab = make([]string, 0, len(ix.postings))
	for tok := range ix.postings {
		ix.vocab = append(ix.vocab, tok)
	}
	sort.Strings(ix.vocab)
	return ix
}

// TranslationID returns the id of the translation this index covers.
func (ix *Index) TranslationID() string { return ix.translationID }

// Len returns the number of indexed verses.
func (ix *Index) Len() int { return len(ix.refs) }

// Search returns up to limit verses ranked by query relevance. An empty or
// fully-unmatched query yields an empty result; Search never fails.
func (ix *Index) Search(query string, limit int, opts Options) []Result {
	if limit <= 0 || len(ix.refs) == 0 {
		return nil
	}
	terms := dedupe(textwin.Tokenize(query))
	if len(terms) == 0 {
		return nil
	}

	scores := make(map[int]float64)
	for _, term := range terms {
		if ps, ok := ix.postings[term]; ok {
			w := ix.idf(len(ps))
			for _, p := range ps {
				scores[p.doc] += w * (1 + 0.1*float64(p.tf-1))
			}
			continue
		}
		if !opts.Suggest {
			continue
		}
		for _, exp := range ix.expand(term) {
			ps := ix.postings[exp.term]
			w := ix.idf(len(ps)) * fuzzyWeight * exp.sim
			for _, p := range ps {
				scores[p.doc] += w
			}
		}
	}
	if len(scores) == 0 {
		return nil
	}

	docs := make([]int, 0, len(scores))
	for d := range scores {
		docs = append(docs, d)
	}
	// Deterministic: score descending, corpus order breaks ties.
	sort.Slice(docs, func(i, j int) bool {
		si, sj := scores[docs[i]], scores[docs[j]]
		if si != sj {
			return si > sj
		}
		return docs[i] < docs[j]
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}

	out := make([]Result, 0, len(docs))
	for _, d := range docs {
		out = append(out, Result{Ref: ix.refs[d], Text: ix.texts[d], Score: scores[d]})
	}
	return out
}

// idf weights rarer terms higher.
func (ix *Index) idf(df int) float64 {
	return math.Log(1 + float64(len(ix.refs))/float64(df))
}

type expansion struct {
	term string
	sim  float64
}

// expand finds the vocabulary terms most similar to an unmatched query term.
func (ix *Index) expand(term string) []expansion {
	var candidates []expansion
	for _, v := range ix.vocab {
		// Cheap prefilter: wildly different lengths cannot clear the
		// similarity threshold.
		if abs(len(v)-len(term)) > 3 {
			continue
		}
		if sim := matchr.JaroWinkler(term, v, true); sim >= suggestSimilarity {
			candidates = append(candidates, expansion{term: v, sim: sim})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].term < candidates[j].term
	})
	if len(candidates) > suggestExpansions {
		candidates = candidates[:suggestExpansions]
	}
	return candidates
}

func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
