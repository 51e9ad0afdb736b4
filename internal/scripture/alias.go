package scripture

import (
	"regexp"
	"sort"
	"strings"
)

// shortAliasMax is the alias length (in characters) at or below which a
// free-text occurrence needs a contextual cue before it is trusted. Short
// abbreviations like "web" or "niv" collide with ordinary speech far too
// often to accept bare.
const shortAliasMax = 4

// cuePhraseRe matches the contextual phrases that make a short alias
// trustworthy, e.g. "in the NIV", "King James version", "the WEB translation".
var cuePhraseRe = regexp.MustCompile(`(?i)\b(translation|version|bible)\b|\bin the\b|\bfrom the\b`)

// aliasEntry maps one normalized alias to its owning translation id.
type aliasEntry struct {
	alias string
	id    string

	// re matches the alias on word boundaries, case-insensitively.
	re *regexp.Regexp
}

// normalizeToken lowercases s and collapses internal whitespace.
func normalizeToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// buildAliases constructs the alias table for a set of translations.
// Entries are ordered longest alias first so that a more specific alias
// ("king james version") is always tried before any of its substrings
// ("king james"). Ties break alphabetically for deterministic scans.
func buildAliases(translations []*Translation) []aliasEntry {
	seen := make(map[string]bool)
	var entries []aliasEntry
	for _, t := range translations {
		names := append([]string{t.Name, t.FullName}, t.Aliases...)
		for _, a := range names {
			norm := normalizeToken(a)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			entries = append(entries, aliasEntry{
				alias: norm,
				id:    t.ID,
				re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(norm) + `\b`),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].alias) != len(entries[j].alias) {
			return len(entries[i].alias) > len(entries[j].alias)
		}
		return entries[i].alias < entries[j].alias
	})
	return entries
}

// ResolveToken resolves an exact alias token (case and whitespace normalized)
// to a translation id. ok is false when no alias matches.
func (l *Library) ResolveToken(token string) (id string, ok bool) {
	norm := normalizeToken(token)
	if norm == "" {
		return "", false
	}
	for _, e := range l.load().aliases {
		if e.alias == norm {
			return e.id, true
		}
	}
	return "", false
}

// FindCue scans free text for a translation alias occurrence. Longer aliases
// are preferred by construction. An alias of shortAliasMax characters or
// fewer is only accepted when the text also carries a contextual cue phrase,
// or when it is the only alias that matches at all.
func (l *Library) FindCue(text string) (id string, ok bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	hasCue := cuePhraseRe.MatchString(text)

	shortIDs := make(map[string]bool)
	for _, e := range l.load().aliases {
		if !e.re.MatchString(text) {
			continue
		}
		if len(e.alias) > shortAliasMax || hasCue {
			return e.id, true
		}
		shortIDs[e.id] = true
	}

	// A bare short alias only wins when nothing else matched.
	if len(shortIDs) == 1 {
		for sid := range shortIDs {
			return sid, true
		}
	}
	return "", false
}
