package tokenize

import (
	"fmt"
	"os"
	"path/filepath"
)

// appName determines the platform data directory name.
const appName = "docprep"

// envVarName returns the environment variable that overrides the model
// directory location.
func envVarName() string {
	return "DOCPREP_MODELS_DIR"
}

// resolveModelDir determines the live model directory for the pinned model.
// Priority: explicit config > environment variable > platform default.
// The returned directory is not created; installation creates it on demand.
func resolveModelDir(cfg *config) (string, error) {
	if cfg.modelDir != "" {
		return cfg.modelDir, nil
	}

	if envDir := os.Getenv(envVarName()); envDir != "" {
		return filepath.Join(envDir, ModelName+"-"+ModelVersion), nil
	}

	base, err := getDefaultDataDir(appName)
	if err != nil {
		return "", fmt.Errorf("%w: resolving model directory: %v", ErrStorageError, err)
	}
	return filepath.Join(base, ModelName+"-"+ModelVersion), nil
}

// defaultLockPath returns the well-known install lock file path.
// It lives in the system temp directory so that all cooperating processes
// agree on it regardless of working directory.
func defaultLockPath() string {
	return filepath.Join(os.TempDir(), ModelName+"-"+ModelVersion+".install.lock")
}

// ensureDir creates a directory and any missing parents.
func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %v", ErrStorageError, path, err)
	}
	return nil
}
