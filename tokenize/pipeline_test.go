package tokenize

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testLexicon is a small fixture lexicon for rule model tests.
var testLexicon = map[string]string{
	"the":   "DT",
	"quick": "JJ",
	"fox":   "NN",
	"jumps": "VBZ",
	"went":  "VBD",
	"home":  "NN",
}

// newTestRuleModel builds a rule model directly from fixtures.
func newTestRuleModel() *ruleModel {
	return &ruleModel{
		lexicon: testLexicon,
		abbrevs: map[string]struct{}{"dr": {}, "mr": {}, "etc": {}},
	}
}

// writeModelFiles writes a valid installed model into dir.
func writeModelFiles(t *testing.T, dir string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	files := map[string]any{
		"meta.json":    modelMeta{Name: ModelName, Version: ModelVersion},
		"lexicon.json": testLexicon,
		"abbrev.json":  []string{"Dr.", "Mr.", "etc."},
	}
	for name, v := range files {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%s) error = %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
}

func TestLoadRuleModel(t *testing.T) {
	t.Run("loads valid model directory", func(t *testing.T) {
		dir := t.TempDir()
		writeModelFiles(t, dir)

		p, err := loadRuleModel(dir)
		if err != nil {
			t.Fatalf("loadRuleModel() error = %v", err)
		}
		if got := p.WordTokens("the fox"); len(got) != 2 {
			t.Errorf("WordTokens() = %v, want 2 tokens", got)
		}
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := loadRuleModel(filepath.Join(t.TempDir(), "nope"))
		if err == nil {
			t.Fatal("loadRuleModel() error = nil, want error")
		}
	})

	t.Run("version mismatch fails", func(t *testing.T) {
		dir := t.TempDir()
		writeModelFiles(t, dir)

		meta, _ := json.Marshal(modelMeta{Name: ModelName, Version: "0.0.1"})
		if err := os.WriteFile(filepath.Join(dir, "meta.json"), meta, 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := loadRuleModel(dir); err == nil {
			t.Fatal("loadRuleModel() error = nil, want version mismatch")
		}
	})

	t.Run("malformed lexicon fails", func(t *testing.T) {
		dir := t.TempDir()
		writeModelFiles(t, dir)

		if err := os.WriteFile(filepath.Join(dir, "lexicon.json"), []byte("{"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := loadRuleModel(dir); err == nil {
			t.Fatal("loadRuleModel() error = nil, want parse error")
		}
	})
}

func TestWordTokens(t *testing.T) {
	m := newTestRuleModel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain words preserve order",
			text: "the quick fox",
			want: []string{"the", "quick", "fox"},
		},
		{
			name: "trailing punctuation peels off",
			text: "Hello, world!",
			want: []string{"Hello", ",", "world", "!"},
		},
		{
			name: "leading punctuation peels off",
			text: `"quoted" text`,
			want: []string{`"`, "quoted", `"`, "text"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.WordTokens(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("WordTokens() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("WordTokens()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTaggedTokens(t *testing.T) {
	m := newTestRuleModel()

	t.Run("one pair per token in order", func(t *testing.T) {
		text := "the quick fox jumps"
		tokens := m.WordTokens(text)
		tagged := m.TaggedTokens(text)

		if len(tagged) != len(tokens) {
			t.Fatalf("TaggedTokens() returned %d pairs, want %d", len(tagged), len(tokens))
		}
		for i, tok := range tokens {
			if tagged[i].Text != tok {
				t.Errorf("pair %d text = %q, want %q", i, tagged[i].Text, tok)
			}
		}
	})

	t.Run("lexicon hit", func(t *testing.T) {
		tagged := m.TaggedTokens("fox")
		if tagged[0].Tag != "NN" {
			t.Errorf("tag = %q, want NN", tagged[0].Tag)
		}
	})

	t.Run("fallback tags", func(t *testing.T) {
		tests := []struct {
			token string
			want  string
		}{
			{"42", "CD"},
			{"3.14", "CD"},
			{"Paris", "NNP"},
			{"running", "VBG"},
			{"walked", "VBD"},
			{"swiftly", "RB"},
			{"blorp", "NN"},
		}
		for _, tt := range tests {
			if got := m.tag(tt.token); got != tt.want {
				t.Errorf("tag(%q) = %q, want %q", tt.token, got, tt.want)
			}
		}
	})

	t.Run("punctuation tags as itself", func(t *testing.T) {
		tagged := m.TaggedTokens("fox.")
		last := tagged[len(tagged)-1]
		if last.Text != "." || last.Tag != "." {
			t.Errorf("last pair = %+v, want (., .)", last)
		}
	})
}

func TestSentences(t *testing.T) {
	m := newTestRuleModel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "two sentences",
			text: "The fox jumps. The dog sleeps.",
			want: []string{"The fox jumps.", "The dog sleeps."},
		},
		{
			name: "abbreviation does not split",
			text: "Dr. Smith went home. It was late.",
			want: []string{"Dr. Smith went home.", "It was late."},
		},
		{
			name: "single initial does not split",
			text: "J. Smith arrived. Everyone cheered.",
			want: []string{"J. Smith arrived.", "Everyone cheered."},
		},
		{
			name: "terminator runs stay together",
			text: "Really?! Yes. Definitely...",
			want: []string{"Really?!", "Yes.", "Definitely..."},
		},
		{
			name: "no terminator yields whole input",
			text: "no punctuation here",
			want: []string{"no punctuation here"},
		},
		{
			name: "lowercase continuation does not split",
			text: "visit example.com for details. Thanks.",
			want: []string{"visit example.com for details.", "Thanks."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Sentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Sentences() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Sentences()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}

	t.Run("output covers input modulo whitespace", func(t *testing.T) {
		text := "Dr. Smith went home!  It was late. The end"
		got := m.Sentences(text)

		strip := func(s string) string {
			return strings.Join(strings.Fields(s), "")
		}
		if strip(strings.Join(got, " ")) != strip(text) {
			t.Errorf("sentence concatenation lost text: %q vs %q", got, text)
		}
	})
}

// Guard: loadRuleModel errors must not wrap install sentinels; install.go
// decides which sentinel applies based on where in the flow the load failed.
func TestLoadRuleModelErrorKind(t *testing.T) {
	_, err := loadRuleModel(filepath.Join(t.TempDir(), "missing"))
	if errors.Is(err, ErrLoadFailed) {
		t.Error("loadRuleModel() should return a plain error, not ErrLoadFailed")
	}
}
