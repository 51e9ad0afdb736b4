// Package refparse recognizes explicit scripture citations ("John 3:16",
// "Genesis 1:1-5") in free text and resolves them to concrete verses of a
// translation. It is the first-pass path of the matching engine: when a
// citation is present it always wins over paraphrase matching.
package refparse

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// rangeExpr is the participle AST for one citation. It covers:
//
//	John 3          (whole chapter)
//	John 3:16       (single verse)
//	John 3:16-18    (verse range)
//	John 3:16-4:2   (cross-chapter range)
//	Genesis 1-2     (chapter range)
type rangeExpr struct {
	Book         string `parser:"@Book"`
	ChapterStart *int   `parser:"@Number"`
	VerseStart   *int   `parser:"( \":\" @Number )?"`
	ChapterEnd   *int   `parser:"( \"-\" ( @Number"`
	VerseEnd     *int   `parser:"    ( \":\" @Number )? )? )?"`
}

var citationLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Book names: optional leading ordinal digit, one or more words,
	// optional "of" connector ("Song of Solomon"), optional trailing period.
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var citationParser = participle.MustBuild[rangeExpr](
	participle.Lexer(citationLexer),
	participle.Elide("Whitespace"),
)

// Range is a parsed citation with the book name already canonicalized.
// Zero fields mean "absent": a chapter-only citation has VerseStart == 0,
// a single-point citation has both end fields == 0.
type Range struct {
	Book         string
	ChapterStart int
	VerseStart   int
	ChapterEnd   int
	VerseEnd     int
}

// IsRange reports whether the citation spans more than a single point.
func (r Range) IsRange() bool { return r.ChapterEnd != 0 || r.VerseEnd != 0 }

// crossesChapter reports whether the range ends in a different chapter than
// it starts.
func (r Range) crossesChapter() bool {
	return r.ChapterEnd != 0 && r.ChapterEnd != r.ChapterStart
}

// ParseRange parses a single citation string. Dot separators ("Jn.3.16") are
// normalized to the colon form first. The book name must resolve against the
// canonical book table; unknown books are an error so that free-text scanning
// can discard look-alike spans ("chapter 7", "verse 12").
func ParseRange(input string) (Range, error) {
	expr, err := citationParser.ParseString("", normalizeSeparators(input))
	if err != nil {
		return Range{}, fmt.Errorf("refparse: parse %q: %w", input, err)
	}

	book, ok := NormalizeBook(expr.Book)
	if !ok {
		// Table miss: the name may be a transcription artifact. Try the
		// phonetic pass before giving up on the span.
		book, ok = phoneticBook(expr.Book)
		if !ok {
			return Range{}, fmt.Errorf("refparse: unknown book %q", expr.Book)
		}
	}

	r := Range{Book: book}
	if expr.ChapterStart != nil {
		r.ChapterStart = *expr.ChapterStart
	}
	if expr.VerseStart != nil {
		r.VerseStart = *expr.VerseStart
	}
	if expr.ChapterEnd != nil {
		r.ChapterEnd = *expr.ChapterEnd
	}
	if expr.VerseEnd != nil {
		r.VerseEnd = *expr.VerseEnd
	}

	// "John 3:16-18" parses the 18 into ChapterEnd; when a start verse is
	// present and no end verse followed the dash, the number after the dash
	// is the end verse of the same chapter.
	if r.VerseStart != 0 && r.ChapterEnd != 0 && r.VerseEnd == 0 {
		r.VerseEnd = r.ChapterEnd
		r.ChapterEnd = 0
	}

	if r.ChapterStart <= 0 {
		return Range{}, fmt.Errorf("refparse: %q has no chapter", input)
	}
	return r, nil
}

// normalizeSeparators rewrites "Book.Chapter.Verse" and "Book Chapter.Verse"
// dot forms into the canonical "Book Chapter:Verse" shape.
func normalizeSeparators(input string) string {
	parts := strings.Split(input, ".")
	if len(parts) < 2 {
		return input
	}
	for _, p := range parts[1:] {
		for _, c := range strings.TrimSpace(p) {
			if c < '0' || c > '9' {
				return input
			}
		}
	}
	out := strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		// "Jn 3.16" → the chapter is already attached to the book part, so
		// the dot separates chapter from verse. "Jn.3" separates book from
		// chapter instead.
		if out != "" && out[len(out)-1] >= '0' && out[len(out)-1] <= '9' {
			return out + ":" + strings.TrimSpace(parts[1])
		}
		return out + " " + strings.TrimSpace(parts[1])
	}
	return out + " " + strings.TrimSpace(parts[1]) + ":" + strings.Join(trimAll(parts[2:]), ":")
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
