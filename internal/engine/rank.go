package engine

import (
	"sort"

	"github.com/versematch/versematch/internal/scripture"
)

// scoredVerse tracks the best-scoring window seen so far for one candidate
// verse. A verse matches if any single window is a strong enough match, so
// aggregation keeps the maximum, never an average.
type scoredVerse struct {
	ref    scripture.Reference
	text   string
	score  float64
	phrase string
}

// rankMatches filters scored candidates by the confidence threshold, orders
// them confidence-descending and truncates to maxResults. Ties break on the
// canonical reference so identical inputs always produce identical output
// order.
func rankMatches(best map[scripture.Reference]*scoredVerse, minConfidence float64, maxResults int) []Match {
	accepted := make([]*scoredVerse, 0, len(best))
	for _, sv := range best {
		if sv.score >= minConfidence {
			accepted = append(accepted, sv)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].score != accepted[j].score {
			return accepted[i].score > accepted[j].score
		}
		return lessRef(accepted[i].ref, accepted[j].ref)
	})
	if len(accepted) > maxResults {
		accepted = accepted[:maxResults]
	}

	out := make([]Match, 0, len(accepted))
	for _, sv := range accepted {
		out = append(out, Match{
			Ref:        sv.ref,
			Confidence: sv.score,
			Phrase:     sv.phrase,
			VerseText:  sv.text,
		})
	}
	return out
}

func lessRef(a, b scripture.Reference) bool {
	if a.Book != b.Book {
		return a.Book < b.Book
	}
	if a.Chapter != b.Chapter {
		return a.Chapter < b.Chapter
	}
	return a.Verse < b.Verse
}
