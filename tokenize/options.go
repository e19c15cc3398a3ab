package tokenize

import (
	"net/http"
	"time"
)

// Cache and model constants.
const (
	// CacheMaxSize is the capacity of each text-processing memoization cache.
	CacheMaxSize = 128

	// ModelName is the name of the pinned language model.
	ModelName = "en-core-sm"

	// ModelVersion is the pinned model version.
	ModelVersion = "3.8.0"

	// DownloadTimeout is the socket-level timeout for the artifact download.
	DownloadTimeout = 120 * time.Second
)

// Pinned artifact location and digest. The digest is enforced before any
// part of the artifact reaches the live model directory.
const (
	// DefaultModelURL is the release URL of the pinned model artifact.
	DefaultModelURL = "https://github.com/prethora/docprep-models/releases/download/" +
		ModelName + "-" + ModelVersion + "/" + ModelName + "-" + ModelVersion + ".tar.gz"

	// DefaultModelSHA256 is the expected SHA-256 digest of the artifact,
	// lowercase hex-encoded.
	DefaultModelSHA256 = "1932429db727d4bff3deed6b34cfc05df17794f4a52eeb26cf8928f7c1a0fb85"
)

// Option configures a Tokenizer.
type Option func(*config)

// config holds configuration for Tokenizer construction.
type config struct {
	// modelDir overrides the live model directory.
	modelDir string

	// lockPath overrides the install lock file path.
	lockPath string

	// httpClient is used to download the model artifact.
	httpClient HTTPClient

	// logger receives diagnostic log messages.
	logger Logger

	// modelURL is the artifact URL.
	modelURL string

	// modelSHA256 is the expected artifact digest.
	modelSHA256 string

	// loadFn loads a Pipeline from an installed model directory.
	loadFn func(dir string) (Pipeline, error)
}

// newConfig returns a config with default values.
func newConfig() *config {
	return &config{
		httpClient:  http.DefaultClient,
		modelURL:    DefaultModelURL,
		modelSHA256: DefaultModelSHA256,
		loadFn:      loadRuleModel,
	}
}

// WithModelDir overrides the live model directory.
// If not set, a platform-appropriate default is used, which can also be
// overridden via the DOCPREP_MODELS_DIR environment variable.
func WithModelDir(dir string) Option {
	return func(c *config) {
		c.modelDir = dir
	}
}

// WithLockPath overrides the install lock file path.
// All processes sharing a model directory must agree on the lock path;
// the default lives in the system temp directory.
func WithLockPath(path string) Option {
	return func(c *config) {
		c.lockPath = path
	}
}

// WithHTTPClient sets a custom HTTP client for the artifact download.
// Useful for testing with mock servers. If not set, http.DefaultClient is
// used; either way the download enforces DownloadTimeout per request.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithLogger sets a logger for diagnostic output.
// If not set, logging is disabled.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithModelSource overrides the pinned artifact URL and SHA-256 digest.
// Intended for air-gapped mirrors and tests; the digest is still enforced.
func WithModelSource(url, sha256 string) Option {
	return func(c *config) {
		c.modelURL = url
		c.modelSHA256 = sha256
	}
}

// WithLoadFunc overrides how a Pipeline is constructed from an installed
// model directory. Intended for tests and for callers embedding their own
// engine behind the Pipeline interface.
func WithLoadFunc(fn func(dir string) (Pipeline, error)) Option {
	return func(c *config) {
		c.loadFn = fn
	}
}

// HTTPClient is the interface for HTTP operations.
// *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// Logger is the interface for diagnostic logging.
// Compatible with slog, zap, logrus, and other structured loggers.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)

	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, keysAndValues ...any)
}
