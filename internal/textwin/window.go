package textwin

import "strings"

// Window is one scoring unit derived from a transcript chunk.
type Window struct {
	// Text is the raw window text as spoken.
	Text string

	// Tokens is the normalized content-token sequence of Text.
	Tokens []string

	// Bigrams is the adjacent-pair list built from Tokens.
	Bigrams []string
}

// Config bounds window generation. Zero fields take the defaults below.
type Config struct {
	// MaxWindows caps the total number of windows per chunk.
	MaxWindows int

	// MinWords discards any window with fewer raw words.
	MinWords int

	// MaxSentenceWords is the sentence length above which a sentence is
	// re-sliced with a sliding sub-window instead of scored whole.
	MaxSentenceWords int

	// SlideWords is the sliding sub-window size in words. The slide step is
	// a third of this size, so a phrase spanning a boundary still lands
	// fully inside some window.
	SlideWords int
}

const (
	defaultMaxWindows       = 16
	defaultMinWords         = 4
	defaultMaxSentenceWords = 18
	defaultSlideWords       = 12
)

func (c Config) withDefaults() Config {
	if c.MaxWindows <= 0 {
		c.MaxWindows = defaultMaxWindows
	}
	if c.MinWords <= 0 {
		c.MinWords = defaultMinWords
	}
	if c.MaxSentenceWords <= 0 {
		c.MaxSentenceWords = defaultMaxSentenceWords
	}
	if c.SlideWords <= 0 {
		c.SlideWords = defaultSlideWords
	}
	return c
}

// sentenceTerminators split a chunk into sentences. Semicolons count: spoken
// run-ons transcribed with semicolons behave like sentence breaks for
// matching purposes.
func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', ';':
			return true
		}
		return false
	})
}

// Build slices one transcript chunk into scoring windows.
//
// The whole trimmed input is always the first window, so a chunk that is
// itself a clean quotation scores at full strength. Sentences follow, and any
// sentence longer than MaxSentenceWords is re-sliced with a sliding window.
// Windows shorter than MinWords are discarded, duplicates (by token sequence)
// are removed, and the total is capped at MaxWindows.
func Build(text string, cfg Config) []Window {
	cfg = cfg.withDefaults()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var candidates []string
	candidates = append(candidates, trimmed)

	for _, sentence := range splitSentences(trimmed) {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		if len(words) <= cfg.MaxSentenceWords {
			candidates = append(candidates, strings.Join(words, " "))
			continue
		}
		step := cfg.SlideWords / 3
		if step < 1 {
			step = 1
		}
		for start := 0; start < len(words); start += step {
			end := start + cfg.SlideWords
			if end > len(words) {
				end = len(words)
			}
			candidates = append(candidates, strings.Join(words[start:end], " "))
			if end == len(words) {
				break
			}
		}
	}

	seen := make(map[string]bool)
	var windows []Window
	for _, c := range candidates {
		if len(windows) >= cfg.MaxWindows {
			break
		}
		if len(strings.Fields(c)) < cfg.MinWords {
			continue
		}
		tokens := Tokenize(c)
		if len(tokens) == 0 {
			continue
		}
		key := strings.Join(tokens, " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		windows = append(windows, Window{
			Text:    c,
			Tokens:  tokens,
			Bigrams: Bigrams(tokens),
		})
	}
	return windows
}
