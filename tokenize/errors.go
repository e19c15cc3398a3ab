package tokenize

import "errors"

// Sentinel errors for model installation and loading.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrDownloadFailed indicates the model artifact could not be fetched.
	ErrDownloadFailed = errors.New("tokenize: model download failed")

	// ErrHashMismatch indicates the downloaded artifact failed SHA-256
	// verification. The artifact is never installed in this case.
	ErrHashMismatch = errors.New("tokenize: hash verification failed")

	// ErrInstallFailed indicates a filesystem operation failed while moving
	// the verified artifact into the live model directory.
	ErrInstallFailed = errors.New("tokenize: model installation failed")

	// ErrLoadFailed indicates the model could not be loaded from the model
	// directory. After a successful install this signals a deeper
	// environment problem.
	ErrLoadFailed = errors.New("tokenize: model load failed")

	// ErrStorageError indicates a filesystem operation failed outside the
	// install move itself (lock file, staging, temp files).
	ErrStorageError = errors.New("tokenize: storage error")
)
