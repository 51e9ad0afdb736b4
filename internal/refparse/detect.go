package refparse

import (
	"regexp"

	"github.com/versematch/versematch/internal/scripture"
)

// Detection is one explicit citation found in free text, resolved against a
// translation.
type Detection struct {
	// Raw is the citation text exactly as it appeared.
	Raw string

	// Start and End delimit Raw's byte span in the source text.
	Start, End int

	// Range is the parsed citation.
	Range Range

	// Verses are the concrete verses the citation resolves to, in canonical
	// order. Verses the translation does not contain are omitted.
	Verses []scripture.VerseEntry
}

// citationRe finds candidate citation spans: an optional leading ordinal, one
// to three book words, then a chapter number with optional verse and range
// parts. Spans whose book word resolves to no known book, neither through
// [NormalizeBook] nor through the phonetic recovery pass in [ParseRange], are
// discarded, which is what keeps phrases like "chapter 3" or "verse 16" out.
var citationRe = regexp.MustCompile(
	`(?i)\b((?:[1-3]|first|second|third)\s+)?` +
		`([A-Za-z]+(?:\s+of\s+[A-Za-z]+)?)\.?\s+` +
		`(\d+)(?:\s*[:.]\s*(\d+))?(?:\s*-\s*(\d+)(?:\s*[:.]\s*(\d+))?)?`)

// maxChapterExpansion bounds how many verses a chapter-only citation may
// resolve to; live display only ever needs the head of a chapter.
const maxChapterExpansion = 60

// Detect scans text for explicit citations and resolves each against t.
// Zero detections is a normal outcome. t must not be nil.
func Detect(text string, t *scripture.Translation) []Detection {
	var out []Detection
	for _, loc := range citationRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		r, err := ParseRange(raw)
		if err != nil {
			continue
		}
		verses := resolve(r, t)
		if len(verses) == 0 {
			continue
		}
		out = append(out, Detection{
			Raw:    raw,
			Start:  loc[0],
			End:    loc[1],
			Range:  r,
			Verses: verses,
		})
	}
	return out
}

// resolve expands a parsed citation into concrete verses of t.
//
// Same-chapter verse ranges expand verse by verse. Cross-chapter (and
// chapter-range) citations resolve only their starting point — a documented
// approximation rather than a silent error. Chapter-only citations expand to
// the chapter's verses, capped at maxChapterExpansion.
func resolve(r Range, t *scripture.Translation) []scripture.VerseEntry {
	if r.crossesChapter() {
		r.ChapterEnd, r.VerseEnd = 0, 0
	}

	// Chapter-only: "John 3" or cross-chapter start "Genesis 1-2".
	if r.VerseStart == 0 {
		verses := t.ChapterVerses(r.Book, r.ChapterStart)
		if len(verses) > maxChapterExpansion {
			verses = verses[:maxChapterExpansion]
		}
		return verses
	}

	end := r.VerseEnd
	if end == 0 {
		end = r.VerseStart
	}
	var out []scripture.VerseEntry
	for v := r.VerseStart; v <= end; v++ {
		ref := scripture.Reference{Book: r.Book, Chapter: r.ChapterStart, Verse: v}
		if text, ok := t.VerseText(ref); ok {
			out = append(out, scripture.VerseEntry{Ref: ref, Text: text})
		}
	}
	return out
}
