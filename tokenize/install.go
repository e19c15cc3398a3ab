package tokenize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// loadOrInstall returns a loaded Pipeline, installing the pinned model first
// if it is not already present.
//
// The flow is: a direct load attempt, then an exclusive cross-process lock,
// a second load attempt under the lock (another process may have installed
// while we waited), and only then download, verify, install, and a final
// load. The lock is released on every exit path.
func (t *Tokenizer) loadOrInstall(ctx context.Context) (Pipeline, error) {
	dir, err := resolveModelDir(t.cfg)
	if err != nil {
		return nil, err
	}

	if p, err := t.cfg.loadFn(dir); err == nil {
		return p, nil
	}

	// Serialize model installation across processes with an exclusive file
	// lock at a well-known path in the system temp dir. Wait indefinitely:
	// the holder is performing a bounded download plus local file moves.
	lock, err := newFileLock(t.lockPath(), 0)
	if err != nil {
		return nil, fmt.Errorf("%w: creating install lock: %v", ErrStorageError, err)
	}
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("%w: acquiring install lock: %v", ErrStorageError, err)
	}
	defer lock.Unlock()

	// Double-check: another process may have installed while we waited.
	if p, err := t.cfg.loadFn(dir); err == nil {
		return p, nil
	}

	if err := t.install(ctx, dir); err != nil {
		return nil, err
	}

	p, err := t.cfg.loadFn(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: installed %s %s but loading still failed: %v; "+
			"check model directory permissions and installation integrity", ErrLoadFailed, ModelName, ModelVersion, err)
	}
	return p, nil
}

// install downloads the pinned artifact, verifies its digest, extracts it
// into a staging directory, and moves the result into liveDir.
// The caller must hold the install lock.
func (t *Tokenizer) install(ctx context.Context, liveDir string) error {
	tmp, err := os.MkdirTemp("", appName+"-model-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp directory: %v", ErrStorageError, err)
	}
	defer os.RemoveAll(tmp)

	if t.logger != nil {
		t.logger.Info("downloading model", "name", ModelName, "version", ModelVersion)
	}

	archive := filepath.Join(tmp, ModelName+"-"+ModelVersion+".tar.gz")
	if err := fetchArtifact(ctx, t.cfg.httpClient, t.cfg.modelURL, archive, t.logger); err != nil {
		return err
	}

	// Verification failure is fatal; nothing reaches liveDir.
	if err := verifyFileHash(archive, t.cfg.modelSHA256); err != nil {
		return err
	}

	// Extract into a staging directory first so liveDir never holds a
	// partially extracted model.
	staging := filepath.Join(tmp, "staging")
	if err := ensureDir(staging); err != nil {
		return err
	}
	if err := extractTarGz(archive, staging); err != nil {
		return err
	}

	if err := ensureDir(liveDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("%w: reading staging directory: %v", ErrStorageError, err)
	}

	for _, entry := range entries {
		src := filepath.Join(staging, entry.Name())
		dst := filepath.Join(liveDir, entry.Name())

		// Any dst that already exists is a remnant of a previous failed
		// install (loading just failed twice under the lock), so remove it
		// before the move. This relies on the install lock being held: a
		// process that bypassed the lock could have its completed install
		// discarded here.
		if err := os.RemoveAll(dst); err != nil {
			return installError(liveDir, err)
		}
		if err := moveEntry(src, dst); err != nil {
			return installError(liveDir, err)
		}
	}

	if t.logger != nil {
		t.logger.Info("installed model", "name", ModelName, "version", ModelVersion, "dir", liveDir)
	}
	return nil
}

// installError wraps a filesystem failure during the final move with
// remediation guidance.
func installError(liveDir string, err error) error {
	return fmt.Errorf("%w: installing %s to %s: %v; ensure the model directory is writable, "+
		"or pre-install the model with: benchmark-partition install-model", ErrInstallFailed, ModelName, liveDir, err)
}

// moveEntry moves src to dst, falling back to a recursive copy when rename
// crosses filesystems (staging lives under the system temp dir, which may be
// a different mount than the model directory).
func moveEntry(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyRecursive(src, dst); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

// copyRecursive copies a file or directory tree from src to dst.
func copyRecursive(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if info.IsDir() {
		if err := os.MkdirAll(dst, 0755); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := copyRecursive(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
