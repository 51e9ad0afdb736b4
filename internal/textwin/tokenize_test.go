package textwin_test

import (
	"reflect"
	"testing"

	"github.com/versematch/versematch/internal/textwin"
)

func TestTokenize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "lowercases and strips punctuation",
			in:   "For God so LOVED the world!",
			want: []string{"god", "lov", "world"},
		},
		{
			name: "drops stopwords and short tokens",
			in:   "and he said unto them, go ye in",
			want: []string{"said"},
		},
		{
			name: "plural folding",
			in:   "he leadeth me beside still waters",
			want: []string{"leadeth", "beside", "still", "water"},
		},
		{
			name: "typographic apostrophes",
			in:   "my cup runneth over; goodness and mercy",
			want: []string{"cup", "runneth", "over", "goodness", "mercy"},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
		{
			name: "only stopwords",
			in:   "and the but for with",
			want: []string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := textwin.Tokenize(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Tokenize(%q): got %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTokenize_ApostropheVariants(t *testing.T) {
	t.Parallel()
	straight := textwin.Tokenize("don't be afraid of sudden terror")
	curly := textwin.Tokenize("don’t be afraid of sudden terror")
	if !reflect.DeepEqual(straight, curly) {
		t.Errorf("apostrophe variants should tokenize identically: %v vs %v", straight, curly)
	}
}

func TestStem(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"loving", "lov"},
		{"loved", "lov"},
		{"loves", "lov"},
		{"surely", "sure"},
		{"paths", "path"},
		{"witness", "witness"}, // -ss is not a plural
		{"sing", "sing"},       // too short for -ing strip
		{"red", "red"},         // too short for -ed strip
		{"god", "god"},
	}
	for _, tc := range tests {
		if got := textwin.Stem(tc.in); got != tc.want {
			t.Errorf("Stem(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStem_InflectionsCollide(t *testing.T) {
	t.Parallel()
	if textwin.Stem("loved") != textwin.Stem("loving") {
		t.Errorf("loved and loving should share a stem: %q vs %q",
			textwin.Stem("loved"), textwin.Stem("loving"))
	}
}

func TestBigrams(t *testing.T) {
	t.Parallel()
	got := textwin.Bigrams([]string{"god", "love", "world"})
	want := []string{"god love", "love world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bigrams: got %v, want %v", got, want)
	}

	if got := textwin.Bigrams([]string{"solo"}); got != nil {
		t.Errorf("single token should yield nil, got %v", got)
	}
	if got := textwin.Bigrams(nil); got != nil {
		t.Errorf("nil tokens should yield nil, got %v", got)
	}
}
