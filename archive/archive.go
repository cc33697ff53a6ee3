/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ExtractionError reports a bot package that could not be unpacked.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("archive.extract: failed to extract %v: %v", e.Archive,
		e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor unpacks bot packages next to the archive they came from.
type Extractor struct{}

func (Extractor) Extract(archivePath string) (string, error) {
	return Extract(archivePath)
}

// Extract unpacks the zip archive at archivePath into a sibling directory
// named after the archive (player-x.zip -> player-x/) and returns that
// directory.
func Extract(archivePath string) (string, error) {
	destDir := DestDir(archivePath)

	rdr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", &ExtractionError{Archive: archivePath, Err: err}
	}
	defer rdr.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", &ExtractionError{Archive: archivePath, Err: err}
	}
	for _, f := range rdr.File {
		if err := extractOne(f, destDir); err != nil {
			os.RemoveAll(destDir)
			return "", &ExtractionError{Archive: archivePath, Err: err}
		}
	}

	return destDir, nil
}

// DestDir returns the directory Extract unpacks archivePath into.
func DestDir(archivePath string) string {
	ext := filepath.Ext(archivePath)
	if ext == "" {
		return archivePath + "-extracted"
	}
	return strings.TrimSuffix(archivePath, ext)
}

func extractOne(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, f.Name)
	// reject entries such as ../../etc/passwd
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." ||
		strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("illegal entry path %q", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %q: %w", f.Name, err)
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write entry %q: %w", f.Name, err)
	}

	return dst.Close()
}
