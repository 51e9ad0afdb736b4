// Package textwin turns a chunk of transcribed speech into overlapping
// scoring windows and provides the shared tokenizer used on both sides of
// the window/verse comparison.
//
// The tokenizer is deliberately light: lowercase, punctuation normalization,
// stopword removal and a small suffix stemmer. It is applied identically to
// transcript windows and verse text, so matching is insensitive to the exact
// inflections a speaker uses.
package textwin

import (
	"strings"
	"unicode"
)

// stopwords are tokens carrying no matching signal. The list includes the
// archaic pronouns and auxiliaries common in older translations so that a
// modern paraphrase and a 17th-century verse reduce to the same content words.
var stopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "these": true,
	"those": true, "for": true, "with": true, "from": true, "into": true,
	"unto": true, "upon": true, "out": true, "not": true, "nor": true,
	"but": true, "are": true, "was": true, "were": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "hath": true,
	"does": true, "did": true, "doth": true, "shall": true, "should": true,
	"will": true, "would": true, "can": true, "could": true, "may": true,
	"might": true, "must": true, "his": true, "her": true, "its": true,
	"their": true, "your": true, "you": true, "thou": true, "thee": true,
	"thy": true, "thine": true, "him": true, "them": true, "they": true,
	"she": true, "who": true, "whom": true, "which": true, "what": true,
	"when": true, "where": true, "there": true, "here": true, "then": true,
	"than": true, "too": true, "very": true, "saith": true, "also": true,
	"any": true, "all": true, "some": true, "such": true, "same": true,
	"own": true, "other": true, "more": true, "most": true, "because": true,
}

// quoteReplacer maps typographic punctuation variants to their ASCII forms
// before stripping, so "don’t" and "don't" tokenize identically.
var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
	"–", "-", "—", "-", "…", " ",
)

// Tokenize converts raw text into the normalized content-token sequence used
// for similarity scoring: lowercased, punctuation stripped, stopwords and
// tokens of two characters or fewer dropped, remaining words stemmed.
func Tokenize(text string) []string {
	cleaned := normalize(text)
	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 || stopwords[f] {
			continue
		}
		tokens = append(tokens, Stem(f))
	}
	return tokens
}

// normalize lowercases text, folds quote and dash variants, removes
// apostrophes, and replaces every remaining non-alphanumeric rune with a
// space.
func normalize(text string) string {
	text = quoteReplacer.Replace(strings.ToLower(text))
	text = strings.ReplaceAll(text, "'", "")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Stem applies light suffix stripping (-ing, -ed, -es, -ly, -s) to words long
// enough that removing the suffix leaves a usable root. It is not a full
// Porter stemmer; it only needs to make inflection variants of the same word
// collide.
func Stem(w string) string {
	switch {
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return w[:len(w)-3]
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "es") && len(w) > 4:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ly") && len(w) > 4:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return w[:len(w)-1]
	}
	return w
}

// Bigrams returns the adjacent token pairs of tokens, each joined with a
// single space. Fewer than two tokens yield nil.
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}
