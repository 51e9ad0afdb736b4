// Package scripture owns the translation library: the authoritative mapping
// from translation identifier to verse text, and the alias index that resolves
// free-form utterances ("King James", "NIV", "the English Standard Version")
// to a translation id.
//
// Corpora come from two sources: translations embedded in the binary (see
// builtin.go) and user-supplied YAML corpus files loaded from a directory.
// Loading is memoized; [Library.Refresh] forces a full rebuild that replaces
// the cached state atomically, so readers holding an older snapshot are
// unaffected.
//
// All exported methods are safe for concurrent use.
package scripture

import "fmt"

// Reference identifies a single verse: book, chapter and verse number.
// The book name is always canonical (e.g. "John", "1 Corinthians").
type Reference struct {
	Book    string
	Chapter int
	Verse   int
}

// String returns the canonical "Book Chapter:Verse" form, e.g. "John 3:16".
func (r Reference) String() string {
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
}

// VerseEntry is one verse of a translation together with its reference.
type VerseEntry struct {
	Ref  Reference
	Text string
}

// Summary describes one installed translation without carrying its verse data.
type Summary struct {
	// ID is the unique translation identifier (e.g. "kjv").
	ID string

	// Name is the short display name (usually the common abbreviation).
	Name string

	// FullName is the complete edition name (e.g. "King James Version").
	FullName string

	// Language is a BCP 47 language tag (e.g. "en").
	Language string

	// Builtin reports whether the translation ships embedded in the binary.
	Builtin bool
}

// Translation is one scripture corpus. It is immutable after construction and
// may be shared freely across goroutines.
type Translation struct {
	ID       string
	Name     string
	FullName string
	Language string
	Source   string
	Aliases  []string
	Builtin  bool

	verses  map[Reference]string
	entries []VerseEntry
}

// VerseText returns the text of ref, or ok=false when the translation does
// not contain that verse.
func (t *Translation) VerseText(ref Reference) (text string, ok bool) {
	text, ok = t.verses[ref]
	return text, ok
}

// Verses returns every verse of the translation in corpus order. The returned
// slice is shared; callers must not modify it.
func (t *Translation) Verses() []VerseEntry {
	return t.entries
}

// ChapterVerses returns the verses of one chapter in ascending verse order.
// Missing chapters yield an empty slice.
func (t *Translation) ChapterVerses(book string, chapter int) []VerseEntry {
	var out []VerseEntry
	for _, e := range t.entries {
		if e.Ref.Book == book && e.Ref.Chapter == chapter {
			out = append(out, e)
		}
	}
	return out
}

// Summary returns the summary form of the translation.
func (t *Translation) Summary() Summary {
	return Summary{
		ID:       t.ID,
		Name:     t.Name,
		FullName: t.FullName,
		Language: t.Language,
		Builtin:  t.Builtin,
	}
}
