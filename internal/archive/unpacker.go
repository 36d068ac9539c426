// Package archive extracts the vector dataset out of an uploaded zip.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FormatError reports an archive that could not be read or contained
// no usable shapefile.
type FormatError struct {
	Archive string
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("archive %s: %s", e.Archive, e.Reason)
}

// hiddenPrefix marks macOS resource-fork duplicates ("._foo.shp") that
// zip tools written on that platform leave next to the real files.
const hiddenPrefix = "._"

// Unpack extracts zipPath under scratchDir and returns the path of the
// extracted .shp file. When several candidates exist it prefers the
// first one whose basename does not carry the hidden-file prefix; the
// walk order is the deterministic lexical order of filepath.WalkDir.
// The caller owns cleanup of scratchDir.
func Unpack(zipPath, scratchDir string) (string, error) {
	extractDir := filepath.Join(scratchDir, "shp_extracted")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", fmt.Errorf("create extract dir: %w", err)
	}

	if err := extractAll(zipPath, extractDir); err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return "", &FormatError{Archive: filepath.Base(zipPath), Reason: "not a valid zip file"}
		}
		return "", err
	}

	var candidates []string
	err := filepath.WalkDir(extractDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".shp") {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk extracted files: %w", err)
	}

	for _, c := range candidates {
		if !strings.HasPrefix(filepath.Base(c), hiddenPrefix) {
			return c, nil
		}
	}
	if len(candidates) > 0 {
		return candidates[0], nil
	}
	return "", &FormatError{Archive: filepath.Base(zipPath), Reason: "no .shp file found"}
}

func extractAll(zipPath, dest string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, dest string) error {
	target := filepath.Join(dest, f.Name)
	// Reject entries that would escape the scratch directory.
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("illegal entry path in archive: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}
