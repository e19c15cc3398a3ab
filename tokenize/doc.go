// Package tokenize provides word tokenization, part-of-speech tagging, and
// sentence splitting backed by a lazily installed language model.
//
// The package serves two primary use cases:
//
//  1. Package-level functions - WordTokenize, PosTag, and SentTokenize
//     operate on a shared default Tokenizer, loading the model on first use.
//
//  2. Explicit Tokenizer instances via New - Applications that need their own
//     model directory, HTTP client, or logger construct a Tokenizer and call
//     the same methods on it.
//
// # Model Installation
//
// The first call that needs the model attempts to load it from the local
// model directory. If it is absent, the pinned model artifact is downloaded
// over HTTPS, verified against its SHA-256 digest, extracted into a staging
// directory, and moved into place. Installation across processes is
// serialized by an exclusive lock file in the system temp directory, so
// concurrent processes never write the model directory simultaneously.
//
// # Caching
//
// Each text-processing function memoizes its results in a bounded LRU cache
// (128 entries, keyed by input text). Returned slices are copies; callers
// never alias cache-internal storage.
//
// # Storage
//
// The model is stored in platform-appropriate directories:
//   - Linux: $XDG_DATA_HOME/docprep/models/ or ~/.local/share/docprep/models/
//   - macOS: ~/Library/Application Support/docprep/models/
//   - Windows: %APPDATA%\docprep\models\
//
// The location can be overridden via the DOCPREP_MODELS_DIR environment
// variable or WithModelDir.
package tokenize
