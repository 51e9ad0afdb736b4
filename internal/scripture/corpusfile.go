package scripture

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// CorpusFile is the top-level structure of a translation corpus YAML file.
//
// Example:
//
//	translation:
//	  id: kjv
//	  name: KJV
//	  full_name: King James Version
//	  language: en
//	  aliases: ["kjv", "king james", "king james version"]
//	books:
//	  - name: John
//	    chapters:
//	      - number: 3
//	        verses:
//	          - number: 16
//	            text: "For God so loved the world..."
type CorpusFile struct {
	Translation CorpusMeta   `yaml:"translation"`
	Books       []CorpusBook `yaml:"books"`
}

// CorpusMeta holds the metadata block of a corpus file.
type CorpusMeta struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	FullName string   `yaml:"full_name"`
	Language string   `yaml:"language"`
	Source   string   `yaml:"source"`
	Aliases  []string `yaml:"aliases"`
}

// CorpusBook is one book with its chapters.
type CorpusBook struct {
	Name     string          `yaml:"name"`
	Chapters []CorpusChapter `yaml:"chapters"`
}

// CorpusChapter is one chapter with its verses.
type CorpusChapter struct {
	Number int           `yaml:"number"`
	Verses []CorpusVerse `yaml:"verses"`
}

// CorpusVerse is a single verse.
type CorpusVerse struct {
	Number int    `yaml:"number"`
	Text   string `yaml:"text"`
}

// LoadCorpusFile reads and parses a corpus YAML file from disk.
func LoadCorpusFile(path string) (*CorpusFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scripture: open corpus file %q: %w", path, err)
	}
	defer f.Close()

	cf, err := LoadCorpusFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("scripture: parse corpus file %q: %w", path, err)
	}
	return cf, nil
}

// LoadCorpusFromReader parses corpus YAML from an [io.Reader]. The reader is
// consumed entirely; the caller is responsible for closing it.
func LoadCorpusFromReader(r io.Reader) (*CorpusFile, error) {
	var cf CorpusFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("scripture: decode corpus yaml: %w", err)
	}
	return &cf, nil
}

// Build converts the parsed file into an immutable [Translation].
// Verses with empty text or non-positive numbers are skipped.
func (cf *CorpusFile) Build() (*Translation, error) {
	if cf.Translation.ID == "" {
		return nil, fmt.Errorf("scripture: corpus is missing translation.id")
	}

	t := &Translation{
		ID:       cf.Translation.ID,
		Name:     cf.Translation.Name,
		FullName: cf.Translation.FullName,
		Language: cf.Translation.Language,
		Source:   cf.Translation.Source,
		Aliases:  append([]string(nil), cf.Translation.Aliases...),
		verses:   make(map[Reference]string),
	}
	if t.Name == "" {
		t.Name = t.ID
	}

	for _, b := range cf.Books {
		if b.Name == "" {
			continue
		}
		chapters := append([]CorpusChapter(nil), b.Chapters...)
		sort.Slice(chapters, func(i, j int) bool { return chapters[i].Number < chapters[j].Number })
		for _, c := range chapters {
			if c.Number <= 0 {
				continue
			}
			verses := append([]CorpusVerse(nil), c.Verses...)
			sort.Slice(verses, func(i, j int) bool { return verses[i].Number < verses[j].Number })
			for _, v := range verses {
				if v.Number <= 0 || v.Text == "" {
					continue
				}
				ref := Reference{Book: b.Name, Chapter: c.Number, Verse: v.Number}
				if _, dup := t.verses[ref]; dup {
					continue
				}
				t.verses[ref] = v.Text
				t.entries = append(t.entries, VerseEntry{Ref: ref, Text: v.Text})
			}
		}
	}

	if len(t.entries) == 0 {
		return nil, fmt.Errorf("scripture: corpus %q contains no verses", t.ID)
	}
	return t, nil
}
