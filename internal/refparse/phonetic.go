package refparse

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// Live transcription garbles book names ("Filipians", "Numbers" heard as
// "number's", "Habakkuk" as almost anything). When the exact table lookup
// fails, a phonetic pass tries to recover the intended book before the span
// is discarded.
//
// The algorithm proceeds in two stages:
//
//  1. Phonetic candidate filtering: Double Metaphone codes are computed for
//     each word of the input and each word of every canonical book name. A
//     book whose codes overlap the input's becomes a candidate.
//
//  2. Jaro-Winkler ranking: among phonetic candidates the highest-scoring
//     book wins, provided it clears phoneticThreshold. Without any phonetic
//     candidate a pure string-similarity pass applies, with the much tighter
//     fuzzyThreshold, because a wrongly "corrected" citation is worse than a
//     missed one.
const (
	phoneticThreshold = 0.70
	fuzzyThreshold    = 0.90

	// minPhoneticLen guards against "correcting" short stray words like
	// "and" or "the" that happen to precede a number.
	minPhoneticLen = 4
)

// bookNames is the deduplicated list of canonical book names, sorted for
// deterministic candidate iteration.
var bookNames = func() []string {
	seen := make(map[string]struct{}, 66)
	for _, canonical := range canonicalBooks {
		seen[canonical] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}()

// phoneticBook attempts to resolve a misheard book name to a canonical one.
// ok is false when nothing clears the thresholds; the caller should then
// discard the span.
func phoneticBook(name string) (canonical string, ok bool) {
	n := strings.Join(strings.Fields(strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))), " ")
	for spoken, digit := range map[string]string{"first ": "1 ", "second ": "2 ", "third ": "3 "} {
		if strings.HasPrefix(n, spoken) {
			n = digit + strings.TrimPrefix(n, spoken)
			break
		}
	}
	if len(n) < minPhoneticLen {
		return "", false
	}
	inputTokens := strings.Fields(n)
	inputCodes := codesForTokens(inputTokens)

	type candidate struct {
		book     string
		score    float64
		phonetic bool
	}
	var best candidate

	for _, book := range bookNames {
		bookLower := strings.ToLower(book)
		// Ordinal books only match ordinal inputs with the same digit, and
		// vice versa; phonetics cannot distinguish "1" from "2".
		if leadingDigit(n) != leadingDigit(bookLower) {
			continue
		}
		bookTokens := strings.Fields(bookLower)

		overlap := codesOverlap(inputCodes, codesForTokens(bookTokens))
		score := bestSimilarity(inputTokens, bookTokens, n, bookLower)

		if overlap {
			if score >= phoneticThreshold && (!best.phonetic || score > best.score) {
				best = candidate{book: book, score: score, phonetic: true}
			}
		} else if !best.phonetic && score >= fuzzyThreshold && score > best.score {
			best = candidate{book: book, score: score, phonetic: false}
		}
	}

	if best.book == "" {
		return "", false
	}
	return best.book, true
}

// leadingDigit returns the ordinal prefix of a normalized name, or 0.
func leadingDigit(s string) byte {
	if len(s) > 1 && s[0] >= '1' && s[0] <= '3' && s[1] == ' ' {
		return s[0]
	}
	return 0
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap returns true if the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestSimilarity computes the highest Jaro-Winkler similarity between the
// input and a book name using three strategies: full strings, space-stripped
// strings, and the best pairwise token score. The last one is what recovers
// "first korinthians" against "1 Corinthians".
func bestSimilarity(inputTokens, bookTokens []string, inputFull, bookFull string) float64 {
	score := matchr.JaroWinkler(inputFull, bookFull, false)

	if len(inputTokens) > 1 || len(bookTokens) > 1 {
		concatIn := strings.Join(inputTokens, "")
		concatBook := strings.Join(bookTokens, "")
		if s := matchr.JaroWinkler(concatIn, concatBook, false); s > score {
			score = s
		}
	}

	for _, it := range inputTokens {
		for _, bt := range bookTokens {
			if s := matchr.JaroWinkler(it, bt, false); s > score {
				score = s
			}
		}
	}

	return score
}
