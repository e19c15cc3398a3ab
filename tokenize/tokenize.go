package tokenize

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Tokenizer provides cached text-processing operations backed by a lazily
// installed model. The zero value is not usable; construct with New.
//
// The pipeline handle is process-scoped state with an explicit lifecycle:
// assigned at most once on the first successful load, immutable afterwards.
// Load errors are returned to the caller and not cached, so a later call
// retries the installation.
type Tokenizer struct {
	// cfg holds the resolved configuration.
	cfg *config

	// logger receives diagnostic messages. May be nil.
	logger Logger

	// mu guards the pipeline cell.
	mu sync.Mutex

	// pipeline is the loaded model handle. Nil until the first successful
	// load; never reassigned after that.
	pipeline Pipeline

	// Memoization caches, one per operation, each bounded to CacheMaxSize
	// entries with least-recently-used eviction. Values stored in a cache
	// are never handed to callers directly; see the clone helpers.
	wordCache *lru.Cache[string, []string]
	posCache  *lru.Cache[string, []TaggedToken]
	sentCache *lru.Cache[string, []string]
}

// New creates a Tokenizer with the given options.
func New(opts ...Option) *Tokenizer {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Cache construction only fails for non-positive sizes.
	wordCache, _ := lru.New[string, []string](CacheMaxSize)
	posCache, _ := lru.New[string, []TaggedToken](CacheMaxSize)
	sentCache, _ := lru.New[string, []string](CacheMaxSize)

	return &Tokenizer{
		cfg:       cfg,
		logger:    cfg.logger,
		wordCache: wordCache,
		posCache:  posCache,
		sentCache: sentCache,
	}
}

// lockPath returns the install lock file path for this Tokenizer.
func (t *Tokenizer) lockPath() string {
	if t.cfg.lockPath != "" {
		return t.cfg.lockPath
	}
	return defaultLockPath()
}

// handle returns the loaded pipeline, installing the model on first use.
func (t *Tokenizer) handle(ctx context.Context) (Pipeline, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pipeline != nil {
		return t.pipeline, nil
	}

	p, err := t.loadOrInstall(ctx)
	if err != nil {
		return nil, err
	}
	t.pipeline = p
	return p, nil
}

// Install ensures the model is installed and loaded, downloading it if
// necessary. Calling Install is optional; the text-processing methods load
// the model lazily on first use.
func (t *Tokenizer) Install(ctx context.Context) error {
	_, err := t.handle(ctx)
	return err
}

// ModelDir returns the live model directory this Tokenizer resolves to.
func (t *Tokenizer) ModelDir() (string, error) {
	return resolveModelDir(t.cfg)
}

// WordTokenize splits text into an ordered sequence of tokens.
// Results are memoized by input text; returned slices are copies.
func (t *Tokenizer) WordTokenize(ctx context.Context, text string) ([]string, error) {
	if cached, ok := t.wordCache.Get(text); ok {
		return cloneStrings(cached), nil
	}

	p, err := t.handle(ctx)
	if err != nil {
		return nil, err
	}

	tokens := p.WordTokens(text)
	t.wordCache.Add(text, tokens)
	return cloneStrings(tokens), nil
}

// PosTag returns one (token, tag) pair per token of text, in order.
// Results are memoized by input text; returned slices are copies.
func (t *Tokenizer) PosTag(ctx context.Context, text string) ([]TaggedToken, error) {
	if cached, ok := t.posCache.Get(text); ok {
		return cloneTagged(cached), nil
	}

	p, err := t.handle(ctx)
	if err != nil {
		return nil, err
	}

	tagged := p.TaggedTokens(text)
	t.posCache.Add(text, tagged)
	return cloneTagged(tagged), nil
}

// SentTokenize splits text into an ordered sequence of sentences.
// Results are memoized by input text; returned slices are copies.
func (t *Tokenizer) SentTokenize(ctx context.Context, text string) ([]string, error) {
	if cached, ok := t.sentCache.Get(text); ok {
		return cloneStrings(cached), nil
	}

	p, err := t.handle(ctx)
	if err != nil {
		return nil, err
	}

	sentences := p.Sentences(text)
	t.sentCache.Add(text, sentences)
	return cloneStrings(sentences), nil
}

// cloneStrings copies a cached slice so callers never alias cache storage.
func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	clone := make([]string, len(values))
	copy(clone, values)
	return clone
}

// cloneTagged copies a cached tagged-token slice.
func cloneTagged(values []TaggedToken) []TaggedToken {
	if len(values) == 0 {
		return nil
	}
	clone := make([]TaggedToken, len(values))
	copy(clone, values)
	return clone
}

// defaultTokenizer backs the package-level functions.
var (
	defaultTokenizer     *Tokenizer
	defaultTokenizerOnce sync.Once
)

// Default returns the shared Tokenizer used by the package-level functions.
func Default() *Tokenizer {
	defaultTokenizerOnce.Do(func() {
		defaultTokenizer = New()
	})
	return defaultTokenizer
}

// WordTokenize calls Tokenizer.WordTokenize on the shared default Tokenizer.
func WordTokenize(ctx context.Context, text string) ([]string, error) {
	return Default().WordTokenize(ctx, text)
}

// PosTag calls Tokenizer.PosTag on the shared default Tokenizer.
func PosTag(ctx context.Context, text string) ([]TaggedToken, error) {
	return Default().PosTag(ctx, text)
}

// SentTokenize calls Tokenizer.SentTokenize on the shared default Tokenizer.
func SentTokenize(ctx context.Context, text string) ([]string, error) {
	return Default().SentTokenize(ctx, text)
}
