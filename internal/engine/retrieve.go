package engine

import (
	"sort"
	"strings"

	"github.com/versematch/versematch/internal/index"
	"github.com/versematch/versematch/internal/scripture"
	"github.com/versematch/versematch/internal/textwin"
)

const (
	// maxQueryTerms caps the token count of each derived query.
	maxQueryTerms = 8

	// perQueryLimit caps how many verses a single index query may return
	// before merging.
	perQueryLimit = 40
)

// querySpec is one derived query with its search mode.
type querySpec struct {
	text    string
	suggest bool
}

// windowQueries derives the three retrieval queries for one window:
//
//	(a) most frequent tokens, exact mode — catches common-but-informative
//	    wording;
//	(b) longest tokens, suggest mode — rare, discriminating words survive
//	    mistranscription via fuzzy matching;
//	(c) most frequent bigram words, suggest mode — keeps adjacent-word
//	    evidence in play.
//
// A single strategy systematically misses one of those classes; the union
// with per-query caps keeps retrieval broad and bounded.
func windowQueries(w textwin.Window) []querySpec {
	var out []querySpec
	if q := frequentTerms(w.Tokens); q != "" {
		out = append(out, querySpec{text: q, suggest: false})
	}
	if q := longestTerms(w.Tokens); q != "" {
		out = append(out, querySpec{text: q, suggest: true})
	}
	if q := frequentBigramTerms(w.Bigrams); q != "" {
		out = append(out, querySpec{text: q, suggest: true})
	}
	return out
}

// frequentTerms joins the window's most frequent distinct tokens, most
// frequent first. First appearance breaks ties so derivation is
// deterministic.
func frequentTerms(tokens []string) string {
	return strings.Join(topByCount(tokens, maxQueryTerms), " ")
}

// longestTerms joins the window's longest distinct tokens.
func longestTerms(tokens []string) string {
	distinct := distinctInOrder(tokens)
	sort.SliceStable(distinct, func(i, j int) bool {
		return len(distinct[i]) > len(distinct[j])
	})
	if len(distinct) > maxQueryTerms {
		distinct = distinct[:maxQueryTerms]
	}
	return strings.Join(distinct, " ")
}

// frequentBigramTerms flattens the most frequent bigrams into a distinct
// word list capped at maxQueryTerms.
func frequentBigramTerms(bigrams []string) string {
	var words []string
	for _, bg := range topByCount(bigrams, maxQueryTerms) {
		words = append(words, strings.Fields(bg)...)
	}
	words = distinctInOrder(words)
	if len(words) > maxQueryTerms {
		words = words[:maxQueryTerms]
	}
	return strings.Join(words, " ")
}

// topByCount returns the n most frequent distinct items, ordered by count
// descending with first appearance breaking ties.
func topByCount(items []string, n int) []string {
	counts := make(map[string]int)
	first := make(map[string]int)
	for i, it := range items {
		if _, seen := counts[it]; !seen {
			first[it] = i
		}
		counts[it]++
	}
	distinct := make([]string, 0, len(counts))
	for it := range counts {
		distinct = append(distinct, it)
	}
	sort.Slice(distinct, func(i, j int) bool {
		if counts[distinct[i]] != counts[distinct[j]] {
			return counts[distinct[i]] > counts[distinct[j]]
		}
		return first[distinct[i]] < first[distinct[j]]
	})
	if len(distinct) > n {
		distinct = distinct[:n]
	}
	return distinct
}

func distinctInOrder(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

// candidate is one verse pulled from the index for the current analysis.
type candidate struct {
	ref  scripture.Reference
	text string
}

// gatherCandidates issues every distinct derived query across all windows
// and merges the results into a deduplicated, bounded candidate set.
func (m *Matcher) gatherCandidates(translationID string, windows []textwin.Window, limit int) []candidate {
	seenQuery := make(map[string]bool)
	seenRef := make(map[scripture.Reference]bool)
	var out []candidate

	for _, w := range windows {
		for _, q := range windowQueries(w) {
			key := q.text
			if q.suggest {
				key = "~" + key
			}
			if seenQuery[key] {
				continue
			}
			seenQuery[key] = true

			for _, res := range m.indexes.Search(translationID, q.text, perQueryLimit, index.Options{Suggest: q.suggest}) {
				if seenRef[res.Ref] {
					continue
				}
				seenRef[res.Ref] = true
				out = append(out, candidate{ref: res.Ref, text: res.Text})
				if len(out) >= limit {
					return out
				}
			}
		}
	}
	return out
}
