package tokenize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// countingPipeline is a Pipeline mock that counts invocations per method.
type countingPipeline struct {
	mu        sync.Mutex
	wordCalls int
	posCalls  int
	sentCalls int
}

func (p *countingPipeline) WordTokens(text string) []string {
	p.mu.Lock()
	p.wordCalls++
	p.mu.Unlock()
	return strings.Fields(text)
}

func (p *countingPipeline) TaggedTokens(text string) []TaggedToken {
	p.mu.Lock()
	p.posCalls++
	p.mu.Unlock()
	var tagged []TaggedToken
	for _, tok := range strings.Fields(text) {
		tagged = append(tagged, TaggedToken{Text: tok, Tag: "NN"})
	}
	return tagged
}

func (p *countingPipeline) Sentences(text string) []string {
	p.mu.Lock()
	p.sentCalls++
	p.mu.Unlock()
	return []string{text}
}

// newTestTokenizer returns a Tokenizer whose load function yields the given
// pipeline without touching disk or network.
func newTestTokenizer(t *testing.T, p Pipeline) *Tokenizer {
	t.Helper()
	return New(
		WithModelDir(t.TempDir()),
		WithLockPath(filepath.Join(t.TempDir(), "install.lock")),
		WithLoadFunc(func(dir string) (Pipeline, error) {
			return p, nil
		}),
	)
}

func TestWordTokenize(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent and deterministic", func(t *testing.T) {
		p := &countingPipeline{}
		tok := newTestTokenizer(t, p)

		first, err := tok.WordTokenize(ctx, "the quick fox")
		if err != nil {
			t.Fatalf("WordTokenize() error = %v", err)
		}
		second, err := tok.WordTokenize(ctx, "the quick fox")
		if err != nil {
			t.Fatalf("WordTokenize() error = %v", err)
		}

		if len(first) != 3 || len(second) != 3 {
			t.Fatalf("WordTokenize() = %v then %v, want 3 tokens each", first, second)
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("token %d differs: %q vs %q", i, first[i], second[i])
			}
		}
		if p.wordCalls != 1 {
			t.Errorf("pipeline invoked %d times, want 1 (second call cached)", p.wordCalls)
		}
	})

	t.Run("callers never alias cache storage", func(t *testing.T) {
		p := &countingPipeline{}
		tok := newTestTokenizer(t, p)

		first, _ := tok.WordTokenize(ctx, "the quick fox")
		first[0] = "mutated"

		second, _ := tok.WordTokenize(ctx, "the quick fox")
		if second[0] != "the" {
			t.Errorf("cached value observed caller mutation: got %q", second[0])
		}
		if p.wordCalls != 1 {
			t.Errorf("pipeline invoked %d times, want 1", p.wordCalls)
		}
	})

	t.Run("pipeline loaded once across operations", func(t *testing.T) {
		loads := 0
		p := &countingPipeline{}
		tok := New(
			WithModelDir(t.TempDir()),
			WithLockPath(filepath.Join(t.TempDir(), "install.lock")),
			WithLoadFunc(func(dir string) (Pipeline, error) {
				loads++
				return p, nil
			}),
		)

		if _, err := tok.WordTokenize(ctx, "a"); err != nil {
			t.Fatal(err)
		}
		if _, err := tok.PosTag(ctx, "b"); err != nil {
			t.Fatal(err)
		}
		if _, err := tok.SentTokenize(ctx, "c"); err != nil {
			t.Fatal(err)
		}

		if loads != 1 {
			t.Errorf("load function invoked %d times, want 1", loads)
		}
	})
}

func TestCacheEviction(t *testing.T) {
	ctx := context.Background()
	p := &countingPipeline{}
	tok := newTestTokenizer(t, p)

	// Fill the cache past capacity: CacheMaxSize+1 distinct texts evict the
	// least-recently-used entry, which is the first.
	for i := 0; i <= CacheMaxSize; i++ {
		if _, err := tok.WordTokenize(ctx, fmt.Sprintf("text %d", i)); err != nil {
			t.Fatalf("WordTokenize() error = %v", err)
		}
	}
	if p.wordCalls != CacheMaxSize+1 {
		t.Fatalf("pipeline invoked %d times, want %d", p.wordCalls, CacheMaxSize+1)
	}

	// The first text was evicted, so this re-invokes the pipeline.
	if _, err := tok.WordTokenize(ctx, "text 0"); err != nil {
		t.Fatal(err)
	}
	if p.wordCalls != CacheMaxSize+2 {
		t.Errorf("pipeline invoked %d times after evicted re-query, want %d", p.wordCalls, CacheMaxSize+2)
	}

	// A recently used text is still cached.
	if _, err := tok.WordTokenize(ctx, fmt.Sprintf("text %d", CacheMaxSize)); err != nil {
		t.Fatal(err)
	}
	if p.wordCalls != CacheMaxSize+2 {
		t.Errorf("pipeline invoked %d times for cached text, want %d", p.wordCalls, CacheMaxSize+2)
	}
}

func TestPosTag(t *testing.T) {
	ctx := context.Background()
	p := &countingPipeline{}
	tok := newTestTokenizer(t, p)

	tagged, err := tok.PosTag(ctx, "the quick fox")
	if err != nil {
		t.Fatalf("PosTag() error = %v", err)
	}
	if len(tagged) != 3 {
		t.Fatalf("PosTag() returned %d pairs, want 3", len(tagged))
	}
	for i, want := range []string{"the", "quick", "fox"} {
		if tagged[i].Text != want {
			t.Errorf("pair %d = %q, want %q", i, tagged[i].Text, want)
		}
	}

	if _, err := tok.PosTag(ctx, "the quick fox"); err != nil {
		t.Fatal(err)
	}
	if p.posCalls != 1 {
		t.Errorf("pipeline invoked %d times, want 1", p.posCalls)
	}
}

func TestSentTokenize(t *testing.T) {
	ctx := context.Background()
	p := &countingPipeline{}
	tok := newTestTokenizer(t, p)

	sentences, err := tok.SentTokenize(ctx, "One sentence.")
	if err != nil {
		t.Fatalf("SentTokenize() error = %v", err)
	}
	if len(sentences) != 1 || sentences[0] != "One sentence." {
		t.Errorf("SentTokenize() = %v", sentences)
	}

	// The three caches are independent: sentence queries never touch the
	// word or tag caches.
	if p.wordCalls != 0 || p.posCalls != 0 {
		t.Errorf("unexpected cross-cache invocations: word=%d pos=%d", p.wordCalls, p.posCalls)
	}
}

func TestModelDir(t *testing.T) {
	dir := t.TempDir()
	tok := New(WithModelDir(dir))

	got, err := tok.ModelDir()
	if err != nil {
		t.Fatalf("ModelDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ModelDir() = %q, want %q", got, dir)
	}
}

func TestModelDirEnvOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv(envVarName(), base)

	tok := New()
	got, err := tok.ModelDir()
	if err != nil {
		t.Fatalf("ModelDir() error = %v", err)
	}
	want := filepath.Join(base, ModelName+"-"+ModelVersion)
	if got != want {
		t.Errorf("ModelDir() = %q, want %q", got, want)
	}
}
