package tokenize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TaggedToken is a token paired with its part-of-speech tag.
type TaggedToken struct {
	// Text is the token text, in original document order.
	Text string

	// Tag is the part-of-speech tag assigned by the pipeline.
	Tag string
}

// Pipeline is the text-processing engine behind the cached wrappers.
// Implementations must be safe to call repeatedly with the same input and
// must preserve original text order in all outputs.
type Pipeline interface {
	// WordTokens splits text into an ordered sequence of tokens.
	WordTokens(text string) []string

	// TaggedTokens returns one (token, tag) pair per token, in order.
	TaggedTokens(text string) []TaggedToken

	// Sentences splits text into an ordered sequence of sentences covering
	// the input without losing text (whitespace between sentences excepted).
	Sentences(text string) []string
}

// modelMeta is the meta.json file in an installed model directory.
type modelMeta struct {
	// Name is the model name, e.g. "en-core-sm".
	Name string `json:"name"`

	// Version is the model version, e.g. "3.8.0".
	Version string `json:"version"`
}

// ruleModel is the default Pipeline, built from the lexicon and abbreviation
// data shipped in the installed model directory.
type ruleModel struct {
	// lexicon maps lowercase token text to its part-of-speech tag.
	lexicon map[string]string

	// abbrevs holds lowercase abbreviations (without trailing period) that
	// do not end a sentence.
	abbrevs map[string]struct{}
}

// loadRuleModel loads the default pipeline from an installed model directory.
// Missing or malformed files, or a name/version mismatch, fail the load.
func loadRuleModel(dir string) (Pipeline, error) {
	metaData, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return nil, fmt.Errorf("reading meta.json: %w", err)
	}
	var meta modelMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("parsing meta.json: %w", err)
	}
	if meta.Name != ModelName || meta.Version != ModelVersion {
		return nil, fmt.Errorf("model is %s %s, want %s %s", meta.Name, meta.Version, ModelName, ModelVersion)
	}

	lexData, err := os.ReadFile(filepath.Join(dir, "lexicon.json"))
	if err != nil {
		return nil, fmt.Errorf("reading lexicon.json: %w", err)
	}
	var lexicon map[string]string
	if err := json.Unmarshal(lexData, &lexicon); err != nil {
		return nil, fmt.Errorf("parsing lexicon.json: %w", err)
	}

	abbrevData, err := os.ReadFile(filepath.Join(dir, "abbrev.json"))
	if err != nil {
		return nil, fmt.Errorf("reading abbrev.json: %w", err)
	}
	var abbrevList []string
	if err := json.Unmarshal(abbrevData, &abbrevList); err != nil {
		return nil, fmt.Errorf("parsing abbrev.json: %w", err)
	}

	abbrevs := make(map[string]struct{}, len(abbrevList))
	for _, a := range abbrevList {
		abbrevs[strings.ToLower(strings.TrimSuffix(a, "."))] = struct{}{}
	}

	return &ruleModel{lexicon: lexicon, abbrevs: abbrevs}, nil
}

// WordTokens splits text on whitespace, then peels leading and trailing
// punctuation runes off each field as separate tokens.
func (m *ruleModel) WordTokens(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(text) {
		tokens = append(tokens, splitField(field)...)
	}
	return tokens
}

// splitField separates punctuation glued to a word into its own tokens while
// preserving order: leading punctuation, the core, trailing punctuation.
func splitField(field string) []string {
	var leading []string
	for field != "" {
		r, size := utf8.DecodeRuneInString(field)
		if !isPunct(r) {
			break
		}
		leading = append(leading, field[:size])
		field = field[size:]
	}

	var trailing []string
	for field != "" {
		r, size := utf8.DecodeLastRuneInString(field)
		if !isPunct(r) {
			break
		}
		trailing = append([]string{field[len(field)-size:]}, trailing...)
		field = field[:len(field)-size]
	}

	tokens := leading
	if field != "" {
		tokens = append(tokens, field)
	}
	return append(tokens, trailing...)
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// TaggedTokens tags each token via lexicon lookup with shape-based fallbacks.
func (m *ruleModel) TaggedTokens(text string) []TaggedToken {
	tokens := m.WordTokens(text)
	tagged := make([]TaggedToken, len(tokens))
	for i, tok := range tokens {
		tagged[i] = TaggedToken{Text: tok, Tag: m.tag(tok)}
	}
	return tagged
}

// tag resolves a single token's part-of-speech tag.
func (m *ruleModel) tag(tok string) string {
	if t, ok := m.lexicon[strings.ToLower(tok)]; ok {
		return t
	}

	r, _ := utf8.DecodeRuneInString(tok)
	switch {
	case isPunct(r) && utf8.RuneCountInString(tok) == 1:
		// Penn treebank tags punctuation as itself.
		return tok
	case isNumeric(tok):
		return "CD"
	case unicode.IsUpper(r):
		return "NNP"
	case strings.HasSuffix(tok, "ing"):
		return "VBG"
	case strings.HasSuffix(tok, "ed"):
		return "VBD"
	case strings.HasSuffix(tok, "ly"):
		return "RB"
	default:
		return "NN"
	}
}

func isNumeric(tok string) bool {
	seen := false
	for _, r := range tok {
		if unicode.IsDigit(r) {
			seen = true
			continue
		}
		if r != '.' && r != ',' && r != '-' {
			return false
		}
	}
	return seen
}

// Sentences cuts after a run of sentence terminators followed by whitespace
// and an uppercase letter, unless the word before the terminator is a known
// abbreviation. Sentences are trimmed of surrounding whitespace; no other
// text is lost.
func (m *ruleModel) Sentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}

		// Swallow a run of terminators ("?!", "...").
		end := i
		for end+1 < len(runes) && isTerminator(runes[end+1]) {
			end++
		}

		if !boundaryFollows(runes, end) {
			i = end
			continue
		}

		if runes[i] == '.' && m.isAbbreviation(runes[start:i]) {
			i = end
			continue
		}

		if s := strings.TrimSpace(string(runes[start : end+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = end + 1
		i = end
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// boundaryFollows reports whether the text after position end looks like the
// start of a new sentence: whitespace then an uppercase letter or a digit.
func boundaryFollows(runes []rune, end int) bool {
	i := end + 1
	if i >= len(runes) {
		return true
	}
	if !unicode.IsSpace(runes[i]) {
		return false
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	if i >= len(runes) {
		return true
	}
	return unicode.IsUpper(runes[i]) || unicode.IsDigit(runes[i])
}

// isAbbreviation reports whether the text immediately before a period ends
// with a known abbreviation.
func (m *ruleModel) isAbbreviation(before []rune) bool {
	s := string(before)
	idx := strings.LastIndexFunc(s, unicode.IsSpace)
	word := s[idx+1:]
	// Single letters before a period ("J. Smith") behave like abbreviations.
	if utf8.RuneCountInString(word) == 1 && word != "" {
		return true
	}
	_, ok := m.abbrevs[strings.ToLower(word)]
	return ok
}
