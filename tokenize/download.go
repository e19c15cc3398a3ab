package tokenize

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// verifyHash computes the SHA-256 hash of data and compares it to expectedHash.
// Returns nil if the hash matches, ErrHashMismatch if verification fails.
// The expectedHash should be a lowercase hex-encoded string.
func verifyHash(data []byte, expectedHash string) error {
	h := sha256.Sum256(data)
	actual := hex.EncodeToString(h[:])
	if actual != expectedHash {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, expectedHash, actual)
	}
	return nil
}

// verifyFileHash computes the SHA-256 hash of a file's contents and compares
// it to expectedHash.
func verifyFileHash(path, expectedHash string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrStorageError, path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrStorageError, path, err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if actual != expectedHash {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, expectedHash, actual)
	}
	return nil
}

// fetchArtifact downloads url to dest, bounded by DownloadTimeout.
// The caller is responsible for verifying the digest afterwards.
func fetchArtifact(ctx context.Context, client HTTPClient, url, dest string, logger Logger) error {
	ctx, cancel := context.WithTimeout(ctx, DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %v; check your network connection and try again", ErrDownloadFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: fetching %s: status %d", ErrDownloadFailed, url, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStorageError, dest, err)
	}

	var written int64
	reader := &progressReader{reader: resp.Body, onProgress: func(delta int64) {
		written += delta
	}}

	_, copyErr := io.Copy(out, reader)
	closeErr := out.Close()

	if copyErr != nil {
		return fmt.Errorf("%w: reading %s: %v; check your network connection and try again", ErrDownloadFailed, url, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStorageError, dest, closeErr)
	}

	if logger != nil {
		logger.Debug("artifact downloaded", "url", url, "bytes", written)
	}
	return nil
}

// extractTarGz unpacks a tar.gz archive into destDir.
// Entry names are validated so the archive cannot write outside destDir.
func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: opening archive: %v", ErrStorageError, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: reading archive: %v", ErrStorageError, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: reading archive: %v", ErrStorageError, err)
		}

		name := filepath.Clean(hdr.Name)
		if name == "." || strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			continue
		}
		target := filepath.Join(destDir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := ensureDir(target); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := ensureDir(filepath.Dir(target)); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("%w: creating %s: %v", ErrStorageError, target, err)
			}
			_, copyErr := io.Copy(out, tr)
			closeErr := out.Close()
			if copyErr != nil {
				return fmt.Errorf("%w: writing %s: %v", ErrStorageError, target, copyErr)
			}
			if closeErr != nil {
				return fmt.Errorf("%w: writing %s: %v", ErrStorageError, target, closeErr)
			}
		}
	}
}

// progressReader wraps an io.Reader and reports progress as bytes are read.
type progressReader struct {
	reader     io.Reader
	onProgress func(delta int64)
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 && pr.onProgress != nil {
		pr.onProgress(int64(n))
	}
	return
}
